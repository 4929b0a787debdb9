package repo

import (
	"errors"

	"github.com/lib/pq"
)

// ErrUsernameTaken is returned when a user insert hits the unique index on
// username. Uniqueness lives in the database, not in a check-then-insert, so
// concurrent signups with the same name cannot both succeed.
var ErrUsernameTaken = errors.New("username already taken")

// isUniqueViolation reports whether err is a postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
