package main

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Simplici0/nebula-roi/internal/config"
	"github.com/Simplici0/nebula-roi/internal/db"
	"github.com/Simplici0/nebula-roi/internal/lead"
	"github.com/Simplici0/nebula-roi/internal/migrations"
	"github.com/Simplici0/nebula-roi/internal/seed"
	"github.com/Simplici0/nebula-roi/internal/session"
)

const sessionSweepInterval = 5 * time.Minute

type server struct {
	auth        *authService
	sessions    session.Store
	leads       lead.Sink
	leadList    leadLister
	logger      *logrus.Logger
	templateDir string
	now         func() time.Time
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
	Admin          bool
}

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database.DB); err != nil {
			logger.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		logger.Fatalf("failed to seed database: %v", err)
	}
	logger.WithField("inserts", stats.Inserts).Info("seed complete")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := newSessionStore(ctx, cfg, logger)

	repo := lead.NewRepository(database)
	followers := []lead.Sink{lead.NewLogSink(logger)}
	if cfg.NotifyLeads() {
		followers = append(followers, lead.NewNotifier(lead.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.LeadNotifyFrom,
			To:       cfg.LeadNotifyTo,
		}, logger))
	}

	srv := &server{
		auth:        newAuthService(database, cfg.SessionSecret),
		sessions:    sessions,
		leads:       lead.NewMultiSink(logger, repo, followers...),
		leadList:    repo,
		logger:      logger,
		templateDir: cfg.TemplateDir,
		now:         time.Now,
	}

	leadLimiter := newIPRateLimiter(cfg.LeadRatePerMinute)
	go leadLimiter.run(ctx, rateLimiterCleanupInterval)
	apiLimiter := newIPRateLimiter(cfg.APIRatePerMinute)
	go apiLimiter.run(ctx, rateLimiterCleanupInterval)

	r := srv.routes(leadLimiter, apiLimiter, cfg.StaticDir)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Fatalf("server stopped: %v", err)
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("error during server shutdown: %v", err)
	}
}

func (s *server) routes(leadLimiter, apiLimiter *ipRateLimiter, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.authMiddleware)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	r.Get("/healthz", s.handleHealth)

	r.Get("/", s.handleCalculator)
	r.Post("/calc", s.handleCalcSubmit)
	r.Post("/mode", s.handleModeSubmit)
	r.Post("/reset", s.handleReset)
	r.With(leadLimiter.middleware).Post("/lead", s.handleLeadSubmit)
	r.Get("/report", s.handleReport)
	r.Get("/report.md", s.handleReportMarkdown)
	r.With(apiLimiter.middleware).Post("/api/roi", s.handleAPICompute)

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)
	r.Get("/admin/leads", s.handleAdminLeads)

	return r
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

func newSessionStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) session.Store {
	if cfg.RedisAddr != "" {
		store := session.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL)
		if err := store.Ping(ctx); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		logger.WithField("addr", cfg.RedisAddr).Info("using redis session store")
		return store
	}

	store := session.NewMemoryStore(cfg.SessionTTL)
	go store.RunSweeper(ctx, sessionSweepInterval)
	logger.Info("using in-memory session store")
	return store
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *server) renderTemplate(w http.ResponseWriter, page string, data any) {
	templates, err := template.ParseFiles(
		filepath.Join(s.templateDir, "layout.html"),
		filepath.Join(s.templateDir, page),
	)
	if err != nil {
		s.logger.WithError(err).WithField("page", page).Error("failed to parse template")
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		s.logger.WithError(err).WithField("page", page).Error("failed to render template")
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request handled")
	})
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/admin") {
			next.ServeHTTP(w, r)
			return
		}

		if !isAuthenticated(r, s.auth) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request, auth *authService) bool {
	cookie, err := r.Cookie(adminCookieName)
	if err != nil {
		return false
	}

	_, ok := auth.verifySessionValue(cookie.Value)
	return ok
}
