// Command export dumps the evaluation history to a parquet file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/marketguard/listing-sentinel/internal/config"
	"github.com/marketguard/listing-sentinel/internal/export"
	"github.com/marketguard/listing-sentinel/internal/history"
	"github.com/marketguard/listing-sentinel/internal/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		output     = flag.String("output", "evaluations.parquet", "Output parquet file")
		since      = flag.Duration("since", 30*24*time.Hour, "Export evaluations newer than this age")
		timeout    = flag.Duration("timeout", 10*time.Minute, "Overall export timeout")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if !cfg.History.Enabled {
		log.Fatal("History is disabled in configuration; nothing to export")
	}

	store, err := history.NewStore(cfg.History, log.WithComponent("history").Logger)
	if err != nil {
		log.Fatal("Failed to open history store", zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := export.New(store, log.WithComponent("export").Logger).
		Run(ctx, *output, time.Now().Add(-*since))
	if err != nil {
		log.Fatal("Export failed", zap.Error(err))
	}

	fmt.Printf("Exported %d evaluations to %s in %s\n", result.Rows, result.Path, result.Duration.Round(time.Millisecond))
}
