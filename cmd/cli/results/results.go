package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cogtask/digitspan/cmd/cli/config"
	"github.com/cogtask/digitspan/cmd/cli/output"
	"github.com/spf13/cobra"
)

type result struct {
	ID         int       `json:"id"`
	TaskID     string    `json:"taskId"`
	Score      float64   `json:"score"`
	RecordedAt time.Time `json:"timestamp"`
}

type listResponse struct {
	Items []result `json:"items"`
	Total int      `json:"total"`
}

// Init registers the results command group on the root command.
func Init(rootCmd *cobra.Command) {
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect stored task results",
	}
	resultsCmd.AddCommand(listCmd(), exportCmd())
	rootCmd.AddCommand(resultsCmd)
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored results as a table (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := fetchResults()
			if err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(resp.Items))
			for _, res := range resp.Items {
				rows = append(rows, []interface{}{
					res.ID, res.TaskID, res.Score, res.RecordedAt.Format(time.RFC3339),
				})
			}
			output.RenderTable([]string{"ID", "Task ID", "Score", "Timestamp"}, rows)
			fmt.Printf("%d result(s)\n", resp.Total)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored results as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := fetchResults()
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			cw := csv.NewWriter(w)
			if err := cw.Write([]string{"taskId", "score", "timestamp"}); err != nil {
				return err
			}
			for _, res := range resp.Items {
				record := []string{
					res.TaskID,
					strconv.FormatFloat(res.Score, 'f', -1, 64),
					res.RecordedAt.Format(time.RFC3339),
				}
				if err := cw.Write(record); err != nil {
					return err
				}
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}

			if outPath != "" {
				fmt.Printf("Wrote %d result(s) to %s\n", resp.Total, outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file (stdout when omitted)")

	return cmd
}

func fetchResults() (*listResponse, error) {
	token, err := config.LoadToken()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("not logged in; run 'digitspan login' first")
	}

	req, err := http.NewRequest("GET", config.APIURL()+"/api/admin/results", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("token rejected; run 'digitspan login' again")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var out listResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
