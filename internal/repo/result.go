package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/cogtask/digitspan/internal/models"
)

// ==========================
// ResultRepo
// ==========================
type ResultRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewResultRepo(db *sql.DB) *ResultRepo {
	return &ResultRepo{DB: db}
}

// ==========================
// Insert Result
// ==========================
// Insert appends one result row. There is no idempotency key: resubmitting the
// same payload stores another row.
func (r *ResultRepo) Insert(ctx context.Context, taskID string, score float64, recordedAt time.Time) (*models.Result, error) {
	query := `
		INSERT INTO results (task_id, score, recorded_at)
		VALUES ($1, $2, $3)
		RETURNING id, task_id, score, recorded_at
	`

	result := &models.Result{}

	err := r.DB.QueryRowContext(ctx, query, taskID, score, recordedAt).
		Scan(&result.ID, &result.TaskID, &result.Score, &result.RecordedAt)

	if err != nil {
		return nil, err
	}

	return result, nil
}

// ==========================
// List All Results
// ==========================
// ListAll returns every result, newest first. The admin view renders the whole
// set per request; there is no pagination.
func (r *ResultRepo) ListAll(ctx context.Context) ([]models.Result, error) {
	query := `
		SELECT id, task_id, score, recorded_at
		FROM results
		ORDER BY recorded_at DESC, id DESC
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		var res models.Result
		if err := rows.Scan(&res.ID, &res.TaskID, &res.Score, &res.RecordedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

// ==========================
// Count Results
// ==========================
func (r *ResultRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&count)
	return count, err
}
