package root

import (
	"fmt"
	"io"
	"net/http"

	"github.com/cogtask/digitspan/cmd/cli/config"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(healthCmd())
}

// healthCmd pings the service's /health endpoint. No auth required.
func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the results service is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(config.APIURL() + "/health")
			if err != nil {
				return fmt.Errorf("service unreachable: %w", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unhealthy: status %d: %s", resp.StatusCode, string(body))
			}

			fmt.Printf("Service at %s is healthy: %s\n", config.APIURL(), string(body))
			return nil
		},
	}
}
