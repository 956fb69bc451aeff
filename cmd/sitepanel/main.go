// Copyright (c) 2026 Sitepanel Authors
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

	"github.com/sitepanel/sitepanel-go/internal/access"
	"github.com/sitepanel/sitepanel-go/internal/cache"
	"github.com/sitepanel/sitepanel-go/internal/config"
	"github.com/sitepanel/sitepanel-go/internal/handler/api"
	"github.com/sitepanel/sitepanel-go/internal/imaging"
	"github.com/sitepanel/sitepanel-go/internal/linkable"
	"github.com/sitepanel/sitepanel-go/internal/logging"
	"github.com/sitepanel/sitepanel-go/internal/middleware"
	"github.com/sitepanel/sitepanel-go/internal/scheduler"
	"github.com/sitepanel/sitepanel-go/internal/service"
	"github.com/sitepanel/sitepanel-go/internal/session"
	"github.com/sitepanel/sitepanel-go/internal/storage"
	"github.com/sitepanel/sitepanel-go/internal/store"
	"github.com/sitepanel/sitepanel-go/internal/tenancy"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	showHelp := flag.Bool("help", false, "print usage and exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: sitepanel [flags]\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_SESSION_SECRET      Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_DB_PATH             SQLite database path (default: ./data/sitepanel.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_LOCALES             Supported locales, comma-separated (default: en)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_UPLOADS_DIR         Upload storage directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_REDIS_URL           Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_TENANCY_ENABLED     Scope sections and menus per tenant (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("sitepanel %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
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

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	var queries *store.Queries
	if cfg.TenancyEnabled {
		queries = store.NewWithTenancy(db, tenancy.NewPolicy(cfg.TenancyColumn, nil))
		slog.Info("tenancy enabled", "column", cfg.TenancyColumn)
	} else {
		queries = store.New(db)
	}

	// Upgrade logger to also write WARN and ERROR logs to the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, store.New(db)))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	resolver := translate.NewResolver(cfg.EffectiveLocales(), cfg.LocaleFallbacks)
	slog.Info("locales configured", "locales", cfg.EffectiveLocales())

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	cacheConfig := cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}
	cacher, err := cache.New(cacheConfig)
	if err != nil {
		slog.Warn("cache backend unavailable, using in-memory fallback", "error", err)
		cacher = cache.NewSimpleMemoryCache(cacheConfig.DefaultTTL)
	}
	defer func() { _ = cacher.Close() }()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory")
	}
	menuCache := cache.NewMenuCache(cacher, cacheConfig.DefaultTTL)

	registry := linkable.NewRegistry(logger)
	sectionService := service.NewSectionService(queries, resolver)
	pageService := service.NewPageService(queries, resolver)
	registry.Register(service.LinkableTypeSection, sectionService)
	registry.Register(service.LinkableTypePage, pageService)

	files := storage.NewStore(cfg.UploadsDir)
	images := imaging.NewProcessor(cfg.UploadsDir)

	menuService := service.NewMenuService(queries, registry, resolver, menuCache, logger)
	bannerService := service.NewBannerService(queries, files, images, resolver, logger)
	userService := service.NewUserService(queries, logger)

	policies := access.NewPolicies(access.NewRoleChecker())
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	sched := scheduler.New(queries, bannerService, menuService,
		time.Duration(cfg.TrashRetentionDays)*24*time.Hour, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	apiHandler := api.NewHandler(api.Deps{
		Sessions: sessionManager,
		Users:    userService,
		Menus:    menuService,
		Banners:  bannerService,
		Sections: sectionService,
		Pages:    pageService,
		Registry: registry,
		Policies: policies,
		Resolver: resolver,
		LoginLP:  loginProtection,
		Logger:   logger,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Locale(resolver))
	r.Use(middleware.Tenant(cfg.TenancyEnabled))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, queries))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/api", apiHandler.Routes())

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads can be slow
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
