package models

import "time"

// Result is one scored attempt at the memory task. Results are append-only:
// duplicate submissions create duplicate rows, and nothing updates or deletes them.
type Result struct {
	ID         int       `json:"id"`
	TaskID     string    `json:"taskId"`
	Score      float64   `json:"score"`
	RecordedAt time.Time `json:"timestamp"`
}
