package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/planfit/planfit/internal/database"
	"github.com/planfit/planfit/internal/handlers"
	"github.com/planfit/planfit/internal/middleware"
	"github.com/planfit/planfit/internal/models"
)

func main() {
	// Determine database path — default to ./planfit.db, override with PLANFIT_DB_PATH.
	dbPath := os.Getenv("PLANFIT_DB_PATH")
	if dbPath == "" {
		dbPath = "planfit.db"
	}

	// Determine listen address — default to :8080, override with PLANFIT_ADDR.
	addr := os.Getenv("PLANFIT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Open database and run migrations.
	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Database ready: %s", filepath.Clean(dbPath))

	// Ensure a secret key exists for encrypting sensitive settings.
	if _, source, err := models.GetOrCreateSecretKey(db); err != nil {
		log.Fatalf("Failed to initialize secret key: %v", err)
	} else {
		log.Printf("Secret key loaded from %s", source)
	}

	// Set up session manager with SQLite store.
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.New(db)
	sessionManager.Lifetime = 30 * 24 * time.Hour // 30 days
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = os.Getenv("PLANFIT_SECURE_COOKIES") == "true"

	// Initialize handlers.
	auth := &handlers.Auth{DB: db, Sessions: sessionManager}
	profile := &handlers.Profile{DB: db}
	goal := &handlers.Goal{DB: db}
	plan := &handlers.Plan{DB: db}

	// Rate limit credential endpoints. Trusted proxy CIDRs come from
	// PLANFIT_TRUSTED_PROXIES (comma-separated), if set.
	var trustedProxies []string
	if raw := os.Getenv("PLANFIT_TRUSTED_PROXIES"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				trustedProxies = append(trustedProxies, p)
			}
		}
	}
	loginLimiter := middleware.NewRateLimiter(10, time.Minute, trustedProxies...)
	defer loginLimiter.Stop()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(sessionManager.LoadAndSave)

	r.Get("/health", handleHealth)

	// Credential endpoints — session loaded but no auth required.
	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.Limit)
		r.Post("/register", auth.Register)
		r.Post("/login", auth.Login)
	})
	r.Post("/logout", auth.Logout)
	r.Get("/session", auth.Session)

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return middleware.RequireAuth(sessionManager, db, next)
		})
		r.Use(func(next http.Handler) http.Handler {
			return middleware.CSRFProtect(sessionManager, next)
		})

		r.Get("/profile", profile.Get)
		r.Post("/profile", profile.Create)
		r.Put("/profile", profile.Update)
		r.Delete("/profile", profile.Delete)

		r.Get("/profile/goal", goal.Get)
		r.Post("/profile/goal", goal.Create)
		r.Put("/profile/goal", goal.Update)

		r.Get("/profile/goal/progress", goal.ListProgress)
		r.Post("/profile/goal/progress", goal.AddProgress)

		r.Get("/profile/plan", plan.Get)
		r.Post("/profile/plan/generate", plan.Generate)
	})

	// The write timeout must exceed the model call's 60s timeout so a slow
	// generation does not get its response truncated.
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("PlanFit listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
