package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/splitpocket/splitpocket-sync/api/routes"
	"github.com/splitpocket/splitpocket-sync/internal/connectivity"
	"github.com/splitpocket/splitpocket-sync/internal/queue"
	"github.com/splitpocket/splitpocket-sync/internal/remote"
	"github.com/splitpocket/splitpocket-sync/internal/syncer"
	"github.com/splitpocket/splitpocket-sync/pkg/config"
	"github.com/splitpocket/splitpocket-sync/pkg/db"
	"github.com/splitpocket/splitpocket-sync/pkg/instance"
	"github.com/splitpocket/splitpocket-sync/pkg/logger"
	"github.com/splitpocket/splitpocket-sync/pkg/metrics"
	"github.com/splitpocket/splitpocket-sync/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "syncd"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "syncd",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		requireResource(logg, "dev migrations", err)
	}

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)

	queueRepo := queue.NewRepository(dbClient.DB())
	queueService := queue.NewService(queueRepo, logg)

	remoteClient := remote.NewHTTPClient(cfg.Remote)
	dispatchRegistry := syncer.NewRemoteRegistry(remoteClient, validator.New())

	probeAddress := cfg.Connectivity.ProbeAddress
	if probeAddress == "" {
		probeAddress, err = connectivity.ProbeAddressFromURL(cfg.Remote.BaseURL)
		requireResource(logg, "probe address", err)
	}

	monitor, err := connectivity.NewMonitor(connectivity.MonitorParams{
		Logger:   logg,
		Probe:    connectivity.DialProbe{Address: probeAddress, Timeout: cfg.Connectivity.ProbeTimeout},
		Interval: cfg.Connectivity.ProbeInterval,
	})
	requireResource(logg, "connectivity monitor", err)

	coordinator, err := syncer.NewCoordinator(syncer.CoordinatorParams{
		Logger:       logg,
		Queue:        queueService,
		Dispatcher:   dispatchRegistry,
		Connectivity: monitor,
		Metrics:      syncMetrics,
		PollInterval: cfg.Sync.PollInterval,
	})
	requireResource(logg, "sync coordinator", err)
	monitor.SetOnOnline(func() {
		coordinator.TriggerSync(context.Background())
	})

	server := &http.Server{
		Addr:              ":" + cfg.Status.Port,
		Handler:           routes.NewRouter(cfg, logg, coordinator, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logg.Info(logg.WithField(ctx, "addr", server.Addr), "status server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "status server stopped unexpectedly", err)
		}
	}()

	go func() {
		if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "connectivity monitor stopped unexpectedly", err)
		}
	}()

	logg.Info(ctx, "starting sync daemon")
	if err := coordinator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sync coordinator stopped unexpectedly", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "status server shutdown failed", err)
	}

	logg.Info(ctx, "sync daemon shutting down gracefully")
}

func requireResource(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), fmt.Sprintf("failed to bootstrap %s", name), err)
	os.Exit(1)
}
