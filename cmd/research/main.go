package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/weltrada/product-research/internal/assets"
	"github.com/weltrada/product-research/internal/config"
	"github.com/weltrada/product-research/internal/extractor"
	"github.com/weltrada/product-research/internal/fetch"
	"github.com/weltrada/product-research/internal/resolver"
	"github.com/weltrada/product-research/internal/runner"
)

// One-shot pipeline run from the command line. The same environment
// variables as the API apply; -out overrides BASE_DIR.
func main() {
	inputPath := flag.String("input", "", "path to the input spreadsheet (xlsx)")
	outDir := flag.String("out", "", "output directory (overrides BASE_DIR)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *inputPath == "" {
		logger.Error("missing required flag -input")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Runner.BaseDir = *outDir
	}

	if err := os.MkdirAll(cfg.Runner.BaseDir, 0755); err != nil {
		logger.Error("failed to create output directory", "dir", cfg.Runner.BaseDir, "error", err)
		os.Exit(1)
	}

	file, err := os.Open(*inputPath)
	if err != nil {
		logger.Error("failed to open input spreadsheet", "path", *inputPath, "error", err)
		os.Exit(1)
	}
	defer file.Close()

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

	result, err := run.Run(context.Background(), file, nil)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("run complete",
		"processed", result.RowsProcessed, "skipped", result.RowsSkipped, "archive", result.ArchivePath)
	os.Stdout.WriteString(result.ArchivePath + "\n")
}
