package handlers

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cogtask/digitspan/internal/auth"
	"github.com/cogtask/digitspan/internal/metrics"
	"github.com/cogtask/digitspan/internal/repo"
	"github.com/cogtask/digitspan/internal/web"
)

// SessionCookieName carries the opaque admin session token. Credentials are
// never placed in URLs or cookies.
const SessionCookieName = "digitspan_session"

// ==========================
// Admin Handler (HTML surface)
// ==========================
type AdminHandler struct {
	Auth    *auth.Service
	Users   *repo.UserRepo
	Results *repo.ResultRepo
}

// currentSession resolves the session cookie, or nil when the request carries
// no valid session.
func (h *AdminHandler) currentSession(r *http.Request) *sessionInfo {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := h.Auth.ValidateSession(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	user, err := h.Users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		return nil
	}
	return &sessionInfo{Token: sess.Token, Username: user.Username}
}

type sessionInfo struct {
	Token    string
	Username string
}

// ==========================
// Admin Page
// ==========================
// AdminPage renders the results table for a logged-in operator, or the login
// form otherwise. A failed login redirects here with ?error=... for display.
func (h *AdminHandler) AdminPage(w http.ResponseWriter, r *http.Request) {
	sess := h.currentSession(r)
	if sess == nil {
		web.Render(w, "login.html", map[string]interface{}{
			"Error": r.URL.Query().Get("error"),
		})
		return
	}

	results, err := h.Results.ListAll(r.Context())
	if err != nil {
		slog.Error("admin list results", "error", err)
		http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	web.Render(w, "results.html", map[string]interface{}{
		"Username": sess.Username,
		"Results":  results,
		"Total":    len(results),
	})
}

// ==========================
// Login Submit
// ==========================
func (h *AdminHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.Auth.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.IncLogin("fail")
			redirectWithError(w, r, "/admin", auth.ErrInvalidCredentials.Error())
			return
		}
		metrics.IncLogin("error")
		slog.Error("admin login", "error", err)
		http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	sess, err := h.Auth.StartSession(r.Context(), user.ID)
	if err != nil {
		metrics.IncLogin("error")
		slog.Error("start session", "error", err)
		http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncLogin("ok")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin", http.StatusFound)
}

// ==========================
// Logout
// ==========================
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.Auth.EndSession(r.Context(), cookie.Value); err != nil {
			slog.Error("end session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/admin", http.StatusFound)
}

// ==========================
// CSV Export
// ==========================
// ExportCSV streams the full result set as CSV. encoding/csv quotes embedded
// commas and quotes, so free-text task IDs cannot corrupt the file.
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if h.currentSession(r) == nil {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}

	results, err := h.Results.ListAll(r.Context())
	if err != nil {
		slog.Error("export csv", "error", err)
		http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="digit_span_results.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"taskId", "score", "timestamp"})
	for _, res := range results {
		_ = cw.Write([]string{
			res.TaskID,
			strconv.FormatFloat(res.Score, 'f', -1, 64),
			res.RecordedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("export csv write", "error", err)
	}
}

// ==========================
// Signup
// ==========================
func (h *AdminHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	web.Render(w, "signup.html", map[string]interface{}{
		"Error": r.URL.Query().Get("error"),
	})
}

func (h *AdminHandler) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	user, err := h.Auth.Signup(r.Context(),
		r.FormValue("username"),
		r.FormValue("password"),
		r.FormValue("confirmPassword"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields),
			errors.Is(err, auth.ErrPasswordMismatch),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrUsernameTaken):
			metrics.IncSignup("rejected")
			redirectWithError(w, r, "/signup", err.Error())
		default:
			metrics.IncSignup("error")
			slog.Error("signup", "error", err)
			http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
		}
		return
	}

	metrics.IncSignup("created")
	slog.Info("operator created", "username", user.Username)
	web.Render(w, "signup_done.html", map[string]interface{}{
		"Username": user.Username,
	})
}

// redirectWithError 302s back to path carrying a human-readable reason in the
// error query parameter.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(msg), http.StatusFound)
}
