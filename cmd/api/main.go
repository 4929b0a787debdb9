package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cogtask/digitspan/internal/auth"
	"github.com/cogtask/digitspan/internal/config"
	"github.com/cogtask/digitspan/internal/db"
	"github.com/cogtask/digitspan/internal/handlers"
	"github.com/cogtask/digitspan/internal/middleware"
	"github.com/cogtask/digitspan/internal/repo"
	"github.com/cogtask/digitspan/internal/scheduler"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration; a missing DATABASE_URL is fatal.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogFormat)

	// Connect to database FIRST
	database, err := db.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	slog.Info("successfully connected to the database")

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		slog.Error("migrations", "error", err)
		os.Exit(1)
	}

	userRepo := repo.NewUserRepo(database)
	resultRepo := repo.NewResultRepo(database)
	sessionRepo := repo.NewSessionRepo(database)

	authSvc := auth.NewService(userRepo, sessionRepo,
		time.Duration(cfg.SessionTTLHours)*time.Hour)

	resultHandler := &handlers.ResultHandler{Repo: resultRepo}
	adminHandler := &handlers.AdminHandler{Auth: authSvc, Users: userRepo, Results: resultRepo}
	adminAPI := &handlers.AdminAPIHandler{
		Auth:     authSvc,
		Results:  resultRepo,
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: time.Duration(cfg.JWTExpireHours) * time.Hour,
	}

	authLimiter := middleware.AuthRateLimiter()
	ingestLimiter := middleware.IngestRateLimiter()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	// Result ingestion from the task page.
	r.Group(func(r chi.Router) {
		r.Use(ingestLimiter.Middleware)
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.Post("/api/save-result", resultHandler.SaveResult)
	})

	// JSON admin API (CLI and scripts).
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.Post("/api/admin/login", adminAPI.Login)
	})
	r.With(middleware.RequireJWT([]byte(cfg.JWTSecret))).
		Get("/api/admin/results", adminAPI.ListResults)

	// HTML admin surface (session-cookie gated).
	r.Get("/admin", adminHandler.AdminPage)
	r.Get("/admin/results.csv", adminHandler.ExportCSV)
	r.With(authLimiter.Middleware).Post("/admin-login", adminHandler.LoginSubmit)
	r.Get("/signup", adminHandler.SignupForm)
	r.With(authLimiter.Middleware).Post("/signup", adminHandler.SignupSubmit)
	r.Get("/logout", adminHandler.Logout)

	// Participant-facing page and script.
	r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))

	cronJobs := scheduler.Run(sessionRepo)
	defer cronJobs.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}
}

// setupLogger switches the default slog handler to JSON when configured, so
// logs can go straight into a collector in prod.
func setupLogger(format string) {
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}
}
