// Package main is the entrypoint for the SupaVacation server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/supavacation/supavacation/internal/auth"
	"github.com/supavacation/supavacation/internal/cache"
	"github.com/supavacation/supavacation/internal/config"
	"github.com/supavacation/supavacation/internal/handler"
	"github.com/supavacation/supavacation/internal/mailer"
	"github.com/supavacation/supavacation/internal/metrics"
	"github.com/supavacation/supavacation/internal/middleware"
	"github.com/supavacation/supavacation/internal/notify"
	"github.com/supavacation/supavacation/internal/render"
	"github.com/supavacation/supavacation/internal/repository"
	"github.com/supavacation/supavacation/internal/server"
	"github.com/supavacation/supavacation/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if err := repo.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize mailer
	smtpMailer, err := mailer.NewSMTP(mailer.SMTPConfig{
		Host:         cfg.SMTPHost,
		Port:         cfg.SMTPPort,
		Username:     cfg.SMTPUser,
		Password:     cfg.SMTPPassword,
		From:         cfg.EmailFrom,
		BaseURL:      cfg.BaseURL,
		SupportEmail: cfg.SupportEmail,
	})
	if err != nil {
		logger.Error("failed to initialize mailer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	notifier := notify.New(smtpMailer, logger, metricsRecorder)
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	authService := service.NewAuthService(
		repo,
		cacheClient,
		smtpMailer,
		sessions,
		notifier,
		cfg.BaseURL,
		cfg.SignInTokenTTL,
		metricsRecorder,
	)
	homeService := service.NewHomeService(repo, cacheClient, logger, metricsRecorder)
	renderer := render.New(homeService, cacheClient, logger, metricsRecorder)

	// Warm the page cache for existing listings. Homes created after
	// startup render on first request.
	if err := renderer.PrerenderAll(ctx); err != nil {
		logger.Warn("page pre-generation incomplete", slog.String("error", err.Error()))
	}

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	authHandler := handler.NewAuthHandler(authService, logger, cfg.IsProduction())
	homeHandler := handler.NewHomeHandler(homeService, logger)
	pageHandler := handler.NewPageHandler(renderer, logger)

	// Setup router
	r := setupRouter(routerDeps{
		base:    h,
		health:  healthHandler,
		metrics: metricsHandler,
		auth:    authHandler,
		home:    homeHandler,
		page:    pageHandler,
		sess:    sessions,
		cache:   cacheClient,
		cfg:     cfg,
		logger:  logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Hooks run LIFO after the HTTP server stops: the notifier drains its
	// queued welcome emails first, then the connections close.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})
	srv.OnShutdown("notifier", notifier.Close)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base    *handler.Handler
	health  *handler.HealthHandler
	metrics *handler.MetricsHandler
	auth    *handler.AuthHandler
	home    *handler.HomeHandler
	page    *handler.PageHandler
	sess    *auth.Sessions
	cache   *cache.Cache
	cfg     *config.Config
	logger  *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      d.cfg.IsDevelopment(),
		MaxRequestBodySize: d.cfg.MaxRequestBodySize,
	}))

	requireSession := middleware.RequireSession(d.sess, d.logger)

	rateLimitSignIn := middleware.RateLimitSignIn(middleware.RateLimitConfig{
		Logger:        d.logger,
		Cache:         d.cache,
		Enabled:       d.cfg.RateLimitSignInEnabled,
		RatePerMinute: d.cfg.RateLimitSignInRPM,
		Burst:         d.cfg.RateLimitSignInBurst,
	})

	// Health endpoints (no auth required)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)

	// Metrics endpoint, kept off the public API surface
	r.Get("/internal/metrics", d.metrics.Metrics)

	// Rendered pages. Sessions are optional here: signed-in visitors get
	// their user ID in the request context, everyone else browses anonymously.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalSession(d.sess))
		r.Get("/", d.page.Index)
		r.Get("/homes", d.page.Index)
		r.Get("/homes/{id}", d.page.Home)
		r.Get("/homes/{id}/edit", d.page.Edit)
	})

	// Auth API
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

		r.Route("/signin", func(r chi.Router) {
			r.With(rateLimitSignIn).Post("/", d.auth.SignIn)
			r.MethodNotAllowed(d.base.MethodNotAllowed(http.MethodPost))
		})
		r.Route("/callback", func(r chi.Router) {
			r.Get("/", d.auth.Callback)
			r.MethodNotAllowed(d.base.MethodNotAllowed(http.MethodGet))
		})
		r.Route("/signout", func(r chi.Router) {
			r.Post("/", d.auth.SignOut)
			r.MethodNotAllowed(d.base.MethodNotAllowed(http.MethodPost))
		})
		r.Route("/me", func(r chi.Router) {
			r.With(requireSession).Get("/", d.auth.Me)
			r.MethodNotAllowed(d.base.MethodNotAllowed(http.MethodGet))
		})
	})

	// Homes API
	r.Route("/api/homes", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

		r.With(requireSession).Post("/", d.home.Create)
		r.MethodNotAllowed(d.base.MethodNotAllowed(http.MethodPost))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", d.home.Get)
			r.With(requireSession).Patch("/", d.home.Update)
			r.With(requireSession).Delete("/", d.home.Delete)
			r.MethodNotAllowed(d.base.MethodNotAllowed(
				http.MethodGet, http.MethodPatch, http.MethodDelete))

			r.Route("/owner", func(r chi.Router) {
				r.Get("/", d.home.Owner)
				r.MethodNotAllowed(d.base.MethodNotAllowed(http.MethodGet))
			})
		})
	})

	// 404 handler
	r.NotFound(d.base.NotFound)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
