// Command jobtrack is a terminal client for the job-application tracker
// service. All business logic lives behind the remote API; this binary
// renders state and orchestrates requests.
//
// main stays minimal: read configuration, build the dependency chain
// (credential store → gateway → session → controllers → terminal app) and
// run it. Everything else lives in internal packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfekih/jobtrack/internal/api"
	"github.com/mfekih/jobtrack/internal/cli"
	"github.com/mfekih/jobtrack/internal/config"
	"github.com/mfekih/jobtrack/internal/repository/sqlite"
	"github.com/mfekih/jobtrack/internal/service"
	"github.com/mfekih/jobtrack/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// The credential store is the entire persisted footprint of the client;
	// it lives in a small sqlite file so a login survives restarts.
	store, err := sqlite.New(cfg.StateDB)
	if err != nil {
		logger.Error("failed to open state database",
			slog.String("path", cfg.StateDB),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	defer store.Close()

	gateway := api.New(cfg.APIURL, store, logger)

	resolver := session.NewResolver(gateway, store, logger)
	guard := session.NewGuard(store, resolver, logger)

	listSvc := service.NewApplicationService(gateway, cfg.PageLimit, logger)
	statsSvc := service.NewStatsService(gateway, logger)
	formSvc := service.NewFormService(gateway, listSvc, statsSvc, logger)
	exportSvc := service.NewExportService(gateway, logger)

	app := cli.New(cli.Options{
		Gateway: gateway,
		Store:   store,
		Guard:   guard,
		List:    listSvc,
		Stats:   statsSvc,
		Form:    formSvc,
		Export:  exportSvc,
		Logger:  logger,
		In:      os.Stdin,
		Out:     os.Stdout,
	})

	// Ctrl+C cancels in-flight requests and unwinds the prompt loop.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("client error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
