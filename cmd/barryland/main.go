// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/saramoussaya/barryland/internal/auth"
	"github.com/saramoussaya/barryland/internal/cache"
	"github.com/saramoussaya/barryland/internal/captcha"
	"github.com/saramoussaya/barryland/internal/config"
	"github.com/saramoussaya/barryland/internal/geoip"
	"github.com/saramoussaya/barryland/internal/handler"
	"github.com/saramoussaya/barryland/internal/handler/api"
	"github.com/saramoussaya/barryland/internal/imaging"
	"github.com/saramoussaya/barryland/internal/logging"
	"github.com/saramoussaya/barryland/internal/mail"
	"github.com/saramoussaya/barryland/internal/middleware"
	"github.com/saramoussaya/barryland/internal/scheduler"
	"github.com/saramoussaya/barryland/internal/search"
	"github.com/saramoussaya/barryland/internal/service"
	"github.com/saramoussaya/barryland/internal/storage"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/tasks"
	"github.com/saramoussaya/barryland/internal/version"
)

const siteName = "Barryland"

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Barryland - real-estate classifieds API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BARRYLAND_JWT_SECRET        Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BARRYLAND_DB_PATH           SQLite database path (default: ./data/barryland.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BARRYLAND_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BARRYLAND_ENV               Environment: development|production|test (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BARRYLAND_REDIS_URL         Redis URL for caching and rate limits (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BARRYLAND_MEILISEARCH_HOST  Meilisearch URL for listing search (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BARRYLAND_SMTP_HOST         SMTP server; mail is logged when unset (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("barryland %s\n", version.Current())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLevel(cfg.LogLevel)
	var textHandler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	if !cfg.IsDevelopment() {
		textHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	slog.SetDefault(slog.New(textHandler))
	slog.Info("starting barryland", "version", version.Current().String(), "env", cfg.Env)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and ERROR records also land in the events table.
	logger := slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Seed(ctx, db, store.SeedOptions{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	appCache := cache.NewCache(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTL,
		MaxSize:    1000,
	}, logger)
	defer func() { _ = appCache.Close() }()
	redisCache, _ := appCache.(*cache.RedisCache)

	dispatcher := tasks.NewDispatcher(logger, tasks.Config{
		Workers:   cfg.TaskWorkers,
		QueueSize: cfg.TaskQueueSize,
		Timeout:   cfg.TaskTimeout,
	})
	// Stopped explicitly after the server has shut down.
	dispatcher.Start(context.Background())

	var transport mail.Transport = mail.LogTransport{Logger: logger}
	if cfg.SMTPEnabled() {
		transport = mail.NewSMTPTransport(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
	} else {
		slog.Warn("SMTP not configured, emails will only be logged", "category", "mail")
	}
	mailer, err := mail.NewMailer(transport, cfg.MailFrom, siteName)
	if err != nil {
		return fmt.Errorf("loading mail templates: %w", err)
	}

	var indexer search.Indexer = search.Noop{}
	var meili *search.Meilisearch
	if cfg.SearchEnabled() {
		meili = search.NewMeilisearch(cfg.MeilisearchHost, cfg.MeilisearchKey, cfg.MeilisearchIndex)
		if err := meili.Init(); err != nil {
			slog.Warn("meilisearch unavailable, listing search uses the database", "category", "search", "error", err)
			meili = nil
		} else {
			indexer = meili
		}
	}

	geo, err := geoip.NewLookup(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database unavailable, country lookups disabled", "error", err)
		geo, _ = geoip.NewLookup("")
	}
	defer func() { _ = geo.Close() }()

	var verifier captcha.Verifier = captcha.Disabled{}
	if cfg.HCaptchaEnabled() {
		verifier = captcha.NewHCaptcha(cfg.HCaptchaSecretKey, "", logger)
	}

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	audit := service.NewAuditService(db, dispatcher, geo, logger)
	notifications := service.NewNotificationService(db, mailer, dispatcher, cfg.BaseURL, logger)
	stats := service.NewStatsService(db, appCache, cfg.CacheTTL, cfg.DashboardRecent, logger)
	properties := service.NewPropertyService(db, service.PropertyDeps{
		Notifications: notifications,
		Audit:         audit,
		Stats:         stats,
		Blobs:         storage.NewLocal(cfg.UploadsDir, "/uploads"),
		Images:        imaging.NewProcessor(imaging.DefaultMaxDimension, imaging.DefaultQuality),
		Indexer:       indexer,
		Runner:        dispatcher,
		ListingTTL:    cfg.ListingTTL,
		Logger:        logger,
	})
	favorites := service.NewFavoriteService(db, audit, logger)
	services := api.Services{
		Users: service.NewUserService(db, service.UserDeps{
			Tokens:     tokens,
			Sender:     mailer,
			Runner:     dispatcher,
			Audit:      audit,
			Stats:      stats,
			Properties: properties,
			Policy: service.AccountPolicy{
				MaxLoginAttempts: cfg.MaxLoginAttempts,
				LockoutDuration:  cfg.LockoutDuration,
				ResetCodeTTL:     cfg.ResetCodeTTL,
			},
			Logger: logger,
		}),
		Properties: properties,
		Moderation: service.NewModerationService(db, service.ModerationDeps{
			Notifications: notifications,
			Audit:         audit,
			Stats:         stats,
			Sender:        mailer,
			Indexer:       indexer,
			Runner:        dispatcher,
			ListingTTL:    cfg.ListingTTL,
			BaseURL:       cfg.BaseURL,
			Logger:        logger,
		}),
		Favorites:     favorites,
		Notifications: notifications,
		Contact: service.NewContactService(db, service.ContactDeps{
			Notifications: notifications,
			Audit:         audit,
			Captcha:       verifier,
			Sender:        mailer,
			Runner:        dispatcher,
			Logger:        logger,
		}),
		Settings: service.NewSettingsService(db, audit, logger),
		Audit:    audit,
		Stats:    stats,
	}

	maintenance := scheduler.Maintenance{
		Listings:       properties,
		Favorites:      favorites,
		Events:         audit,
		EventRetention: cfg.EventRetention,
		Logger:         logger,
	}
	if meili != nil {
		maintenance.Reindexer = properties
	}
	if geo.Enabled() {
		maintenance.Geo = geo
	}
	cron := scheduler.New(logger)
	if err := maintenance.Register(cron); err != nil {
		return fmt.Errorf("registering maintenance jobs: %w", err)
	}
	cron.Start()

	// Rate limiters share state through Redis when it is available.
	var apiLimiter, authLimiter middleware.Limiter
	if redisCache != nil {
		apiLimiter = middleware.NewRedisLimiter(redisCache.Client(), "ratelimit:api:", cfg.APIRateLimit, cfg.APIRateBurst, logger)
		authLimiter = middleware.NewRedisLimiter(redisCache.Client(), "ratelimit:auth:", cfg.LoginRateLimit, cfg.LoginRateBurst, logger)
	} else {
		apiLimiter = middleware.NewLocalLimiter(cfg.APIRateLimit, cfg.APIRateBurst)
		authLimiter = middleware.NewLocalLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst)
	}

	probes := map[string]handler.Probe{}
	if redisCache != nil {
		probes["redis"] = redisCache.Ping
	}
	if meili != nil {
		probes["search"] = func(context.Context) error {
			if !meili.Healthy() {
				return errors.New("meilisearch reports unhealthy")
			}
			return nil
		}
	}
	healthHandler := handler.NewHealthHandler(db, cfg.UploadsDir, probes)
	apiHandler := api.NewHandler(services, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.Authenticate(tokens, db, logger))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Uploads: cache for 1 week (604800 seconds)
	uploads := middleware.StaticCache(604800)(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	r.Handle("/uploads/*", uploads)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(chimw.Compress(5, "application/json"))
		r.Use(middleware.NoStore)
		r.Use(middleware.RateLimit(apiLimiter, middleware.KeyByActor, logger))
		r.Mount("/api/v1", apiHandler.Routes(middleware.RateLimit(authLimiter, middleware.KeyByIP, logger)))
	})
	slog.Info("REST API v1 mounted at /api/v1")

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	cron.Stop(shutdownCtx)
	dispatcher.Stop()

	slog.Info("server stopped")
	return nil
}
