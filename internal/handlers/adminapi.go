package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cogtask/digitspan/internal/auth"
	"github.com/cogtask/digitspan/internal/metrics"
	"github.com/cogtask/digitspan/internal/models"
	"github.com/cogtask/digitspan/internal/repo"
	"github.com/golang-jwt/jwt/v5"
)

// ==========================
// Admin API Handler
// ==========================
// AdminAPIHandler is the programmatic counterpart of the HTML admin surface:
// JSON login that issues a JWT, and a JWT-gated result listing. The CLI is its
// main consumer.
type AdminAPIHandler struct {
	Auth     *auth.Service
	Results  *repo.ResultRepo
	Secret   []byte
	TokenTTL time.Duration
}

// ==========================
// Login (JSON, returns JWT)
// ==========================
func (h *AdminAPIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.Auth.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.IncLogin("fail")
			JSONError(w, auth.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
			return
		}
		metrics.IncLogin("error")
		slog.Error("api login", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(h.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		metrics.IncLogin("error")
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	metrics.IncLogin("ok")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": signed,
		"user":  user,
	})
}

// ==========================
// List Results (JWT-gated)
// ==========================
func (h *AdminAPIHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.Results.ListAll(r.Context())
	if err != nil {
		slog.Error("api list results", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.Result{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items": results,
		"total": len(results),
	})
}
