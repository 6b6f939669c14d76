package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/weltrada/product-research/internal/api"
	"github.com/weltrada/product-research/internal/assets"
	"github.com/weltrada/product-research/internal/config"
	"github.com/weltrada/product-research/internal/database"
	"github.com/weltrada/product-research/internal/extractor"
	"github.com/weltrada/product-research/internal/fetch"
	"github.com/weltrada/product-research/internal/resolver"
	"github.com/weltrada/product-research/internal/runner"
	"github.com/weltrada/product-research/internal/taskstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := os.MkdirAll(cfg.Runner.BaseDir, 0755); err != nil {
		logger.Error("failed to create base directory", "dir", cfg.Runner.BaseDir, "error", err)
		os.Exit(1)
	}

	// Task store: Redis when configured, in-memory otherwise.
	var tasks taskstore.Store
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		tasks = taskstore.NewRedisStore(redisClient, cfg.Tasks.TTL)
		logger.Info("task store: redis", "addr", cfg.Redis.Addr)
	} else {
		memStore := taskstore.NewMemoryStore(cfg.Tasks.TTL)
		defer memStore.Close()
		tasks = memStore
		logger.Info("task store: memory")
	}

	// Run history is optional.
	var history *database.RunRepository
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		history = database.NewRunRepository(db)
		if err := history.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare run history schema", "error", err)
			os.Exit(1)
		}
		logger.Info("run history: enabled")
	}

	pages := fetch.NewClient(cfg.Fetch.PageTimeout, cfg.Fetch.UserAgent)
	brands := resolver.Default(pages, extractor.SearchCredentials{
		Endpoint: cfg.Search.Endpoint,
		APIKey:   cfg.Search.APIKey,
	}, logger)

	saver := assets.NewFetcher(assets.FetcherOptions{
		ImageTimeout:    cfg.Fetch.ImageTimeout,
		DocumentTimeout: cfg.Fetch.DocumentTimeout,
		UserAgent:       cfg.Fetch.UserAgent,
		Quality:         cfg.Runner.ImageQuality,
	}, logger)

	run := runner.New(brands, saver, nil, runner.Options{
		BaseDir:  cfg.Runner.BaseDir,
		ImageCap: cfg.Runner.ImageCap,
	}, logger)

	handlers := api.NewHandlers(run, tasks, history, cfg.Server.BaseURL, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Synchronous runs process every row inside the request.
	r.Use(middleware.Timeout(15 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", handlers.CreateRun)
		r.Get("/runs/tasks/{taskID}", handlers.GetTask)
		r.Get("/runs/history", handlers.ListHistory)
	})

	// Finished archives are served straight from the base directory.
	fileServer := http.StripPrefix("/downloads/", http.FileServer(http.Dir(cfg.Runner.BaseDir)))
	r.Get("/downloads/*", fileServer.ServeHTTP)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
