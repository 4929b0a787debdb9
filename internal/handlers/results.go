package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cogtask/digitspan/internal/metrics"
	"github.com/cogtask/digitspan/internal/repo"
	"github.com/go-playground/validator/v10"
)

// ==========================
// Result Handler
// ==========================
type ResultHandler struct {
	Repo *repo.ResultRepo
}

// saveResultInput mirrors the payload the task page posts. Score is a pointer
// so "score": 0 and a missing score are distinguishable.
type saveResultInput struct {
	TaskID    string   `json:"taskId" validate:"required"`
	Score     *float64 `json:"score" validate:"required"`
	Timestamp string   `json:"timestamp" validate:"omitempty"`
}

// ==========================
// Save Result
// ==========================
// SaveResult accepts one task outcome and appends it to the result store.
// Missing taskId or score is a 400; a malformed timestamp is a 400; the
// timestamp defaults to now when omitted.
func (h *ResultHandler) SaveResult(w http.ResponseWriter, r *http.Request) {
	var input saveResultInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, "missing required fields: taskId and score", http.StatusBadRequest)
		return
	}

	recordedAt := time.Now()
	if input.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, input.Timestamp)
		if err != nil {
			JSONError(w, "timestamp must be RFC 3339", http.StatusBadRequest)
			return
		}
		recordedAt = parsed
	}

	result, err := h.Repo.Insert(r.Context(), input.TaskID, *input.Score, recordedAt)
	if err != nil {
		slog.Error("save result", "task_id", input.TaskID, "error", err)
		JSONError(w, "failed to save result", http.StatusInternalServerError)
		return
	}

	metrics.IncResultsSaved()
	slog.Info("result saved", "task_id", result.TaskID, "score", result.Score, "recorded_at", result.RecordedAt)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Result saved successfully",
	})
}
