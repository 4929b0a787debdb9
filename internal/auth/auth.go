package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cogtask/digitspan/internal/models"
	"github.com/cogtask/digitspan/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 8

// ErrInvalidCredentials is the single failure for login attempts. A missing
// username and a wrong password are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Signup validation failures. Each carries the human-readable reason shown on
// the signup form.
var (
	ErrMissingFields    = errors.New("username and password are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrUsernameTaken    = repo.ErrUsernameTaken
)

// dummyHash is a bcrypt hash of an unguessable throwaway value. When a login
// names an unknown user we still run a bcrypt compare against it, so the
// lookup-miss path costs about the same as a password mismatch.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service implements credential verification and signup over the user and
// session repos.
type Service struct {
	Users      *repo.UserRepo
	Sessions   *repo.SessionRepo
	SessionTTL time.Duration
}

func NewService(users *repo.UserRepo, sessions *repo.SessionRepo, sessionTTL time.Duration) *Service {
	return &Service{Users: users, Sessions: sessions, SessionTTL: sessionTTL}
}

// Authenticate verifies a username/password pair. Both unknown-user and
// wrong-password return ErrInvalidCredentials; storage failures pass through.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a compare so this path is not observably faster.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Signup validates and creates a new user. Validation short-circuits in order:
// fields present, passwords match, minimum length. The uniqueness check is the
// database's unique index, surfaced as ErrUsernameTaken.
func (s *Service) Signup(ctx context.Context, username, password, confirm string) (*models.User, error) {
	username = strings.TrimSpace(username)

	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.Users.Create(ctx, username, string(hash))
}

// StartSession issues a fresh opaque session token for userID and persists it.
func (s *Service) StartSession(ctx context.Context, userID int) (*models.Session, error) {
	token, err := NewSessionToken()
	if err != nil {
		return nil, err
	}
	return s.Sessions.Create(ctx, token, userID, time.Now().Add(s.SessionTTL))
}

// ValidateSession resolves a token to its session, or ErrInvalidCredentials if
// the token is unknown or expired.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.Session, error) {
	sess, err := s.Sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return sess, nil
}

// EndSession removes a session token (logout). Unknown tokens are a no-op.
func (s *Service) EndSession(ctx context.Context, token string) error {
	return s.Sessions.Delete(ctx, token)
}
