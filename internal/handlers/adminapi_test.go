package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cogtask/digitspan/internal/auth"
	"github.com/cogtask/digitspan/internal/repo"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func newAdminAPI(t *testing.T) (*AdminAPIHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	svc := auth.NewService(repo.NewUserRepo(db), repo.NewSessionRepo(db), 12*time.Hour)
	h := &AdminAPIHandler{
		Auth:     svc,
		Results:  repo.NewResultRepo(db),
		Secret:   []byte("test-secret"),
		TokenTTL: 24 * time.Hour,
	}
	return h, mock, db
}

func bcryptRow(t *testing.T, id int, username, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
		AddRow(id, username, string(hash), time.Now())
}

func TestAdminAPI_Login(t *testing.T) {
	h, mock, db := newAdminAPI(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
		WithArgs("alice").
		WillReturnRows(bcryptRow(t, 1, "alice", "longenough"))

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "longenough"})
	req := httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200 (body %s)", rr.Code, rr.Body)
	}
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID       int    `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Token == "" || out.User.Username != "alice" {
		t.Errorf("unexpected response: %+v", out)
	}

	token, err := jwt.Parse(out.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Errorf("issued token does not verify: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAdminAPI_Login_UniformFailure(t *testing.T) {
	h, mock, db := newAdminAPI(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
		WithArgs("alice").
		WillReturnRows(bcryptRow(t, 1, "alice", "longenough"))
	mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	attempt := func(username string) string {
		body, _ := json.Marshal(map[string]string{"username": username, "password": "wrong password"})
		req := httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		h.Login(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("Login %q status: got %d, want 401", username, rr.Code)
		}
		var out map[string]string
		if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out["error"]
	}

	wrongPass := attempt("alice")
	noUser := attempt("ghost")
	if wrongPass != noUser {
		t.Errorf("failure bodies differ: %q vs %q", wrongPass, noUser)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAdminAPI_ListResults(t *testing.T) {
	h, mock, db := newAdminAPI(t)
	defer db.Close()

	newer := time.Now()
	mock.ExpectQuery(`SELECT id, task_id, score, recorded_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id", "score", "recorded_at"}).
			AddRow(2, "ds-02", 5.0, newer).
			AddRow(1, "ds-01", 7.0, newer.Add(-time.Hour)))

	req := httptest.NewRequest("GET", "/api/admin/results", nil)
	rr := httptest.NewRecorder()
	h.ListResults(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ListResults status: got %d, want 200", rr.Code)
	}
	var out struct {
		Items []struct {
			TaskID string  `json:"taskId"`
			Score  float64 `json:"score"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Total != 2 || len(out.Items) != 2 {
		t.Fatalf("unexpected payload: %+v", out)
	}
	if out.Items[0].TaskID != "ds-02" {
		t.Errorf("expected newest first, got %+v", out.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAdminAPI_ListResults_Empty(t *testing.T) {
	h, mock, db := newAdminAPI(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, task_id, score, recorded_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id", "score", "recorded_at"}))

	req := httptest.NewRequest("GET", "/api/admin/results", nil)
	rr := httptest.NewRecorder()
	h.ListResults(rr, req)

	var out struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Items == nil {
		t.Error("items should be an empty array, not null")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
