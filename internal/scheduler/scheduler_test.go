package scheduler

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cogtask/digitspan/internal/repo"
)

func TestRun_PurgesOnStartup(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at <= now\(\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	c := Run(repo.NewSessionRepo(db))
	defer c.Stop()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
