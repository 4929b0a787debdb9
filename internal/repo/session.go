package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/cogtask/digitspan/internal/models"
)

// SessionRepo persists admin login sessions.
type SessionRepo struct {
	DB *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db}
}

// Create stores a new session token for userID.
func (r *SessionRepo) Create(ctx context.Context, token string, userID int, expiresAt time.Time) (*models.Session, error) {
	query := `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING token, user_id, created_at, expires_at
	`

	sess := &models.Session{}

	err := r.DB.QueryRowContext(ctx, query, token, userID, expiresAt).
		Scan(&sess.Token, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)

	if err != nil {
		return nil, err
	}

	return sess, nil
}

// Get returns the session for token if it exists and has not expired.
// Expired or unknown tokens return sql.ErrNoRows.
func (r *SessionRepo) Get(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token, user_id, created_at, expires_at
		FROM sessions
		WHERE token = $1 AND expires_at > now()
	`

	sess := &models.Session{}

	err := r.DB.QueryRowContext(ctx, query, token).
		Scan(&sess.Token, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)

	if err != nil {
		return nil, err
	}

	return sess, nil
}

// Delete removes a session (logout). Deleting an unknown token is not an error.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// PurgeExpired deletes sessions past their expiry and returns how many were removed.
func (r *SessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
