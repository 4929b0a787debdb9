package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cogtask/digitspan/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*Service, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	svc := NewService(repo.NewUserRepo(db), repo.NewSessionRepo(db), 12*time.Hour)
	return svc, mock, db
}

func userRows(t *testing.T, id int, username, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
		AddRow(id, username, string(hash), time.Now())
}

func TestAuthenticate_OK(t *testing.T) {
	svc, mock, db := newService(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
		WithArgs("alice").
		WillReturnRows(userRows(t, 1, "alice", "correct horse"))

	user, err := svc.Authenticate(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestAuthenticate_WrongPasswordAndUnknownUserFailIdentically(t *testing.T) {
	svc, mock, db := newService(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
		WithArgs("alice").
		WillReturnRows(userRows(t, 1, "alice", "correct horse"))
	mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, errWrongPass := svc.Authenticate(context.Background(), "alice", "battery staple")
	_, errNoUser := svc.Authenticate(context.Background(), "nobody", "battery staple")

	if !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", errWrongPass)
	}
	if !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Errorf("failure messages differ: %q vs %q", errWrongPass, errNoUser)
	}
}

func TestSignup_ValidationOrder(t *testing.T) {
	svc, _, db := newService(t)
	defer db.Close()

	cases := []struct {
		name     string
		username string
		password string
		confirm  string
		want     error
	}{
		{"missing username", "", "longenough", "longenough", ErrMissingFields},
		{"missing password", "alice", "", "", ErrMissingFields},
		{"mismatch", "alice", "longenough", "different", ErrPasswordMismatch},
		// Mismatch is checked before length: a short, mismatched pair reports the mismatch.
		{"short but mismatched", "alice", "short", "shrt", ErrPasswordMismatch},
		{"too short", "alice", "short", "short", ErrPasswordTooShort},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tc.username, tc.password, tc.confirm)
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSignup_HashesPassword(t *testing.T) {
	svc, mock, db := newService(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users \(username, password_hash\)`).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at"}).
			AddRow(1, "alice", time.Now()))

	user, err := svc.Signup(context.Background(), "alice", "longenough", "longenough")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.PasswordHash == "longenough" || user.PasswordHash == "" {
		t.Error("password stored without hashing")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenough")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSignup_UsernameTaken(t *testing.T) {
	svc, mock, db := newService(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users \(username, password_hash\)`).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(errors.New("driver-level error wrapped below"))

	// The repo maps 23505 to ErrUsernameTaken; anything else passes through.
	// The 23505 mapping itself is covered in the repo tests, so here we only
	// confirm Signup surfaces repo errors unchanged.
	_, err := svc.Signup(context.Background(), "alice", "longenough", "longenough")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrUsernameTaken) {
		t.Errorf("unexpected ErrUsernameTaken for non-unique-violation: %v", err)
	}
}

func TestValidateSession_UnknownToken(t *testing.T) {
	svc, mock, db := newService(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT token, user_id, created_at, expires_at`).
		WithArgs("bogus").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.ValidateSession(context.Background(), "bogus")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestNewSessionToken_UniqueAndWellFormed(t *testing.T) {
	a, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	b, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if len(a) != 64 || len(b) != 64 {
		t.Errorf("token length: %d, %d", len(a), len(b))
	}
	if a == b {
		t.Error("two tokens collided")
	}
}
