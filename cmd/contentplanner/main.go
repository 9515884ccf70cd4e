package main

import (
	"context"
	"os"
	"time"

	"ContentPlanner/internal/app"
	"ContentPlanner/internal/config"
	"ContentPlanner/internal/infrastructure/storage"
	"ContentPlanner/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	ledger, err := storage.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("open history ledger", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	application, err := app.New(cfg, ledger, logger)
	if err != nil {
		logger.Error("build application", "error", err)
		os.Exit(1)
	}

	// "plan" generates and publishes a calendar immediately; the default
	// mode runs the posting loop.
	if len(os.Args) > 1 && os.Args[1] == "plan" {
		if err := application.PlanOnce(ctx, time.Now().In(cfg.Posting.Location())); err != nil {
			logger.Error("planning run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
