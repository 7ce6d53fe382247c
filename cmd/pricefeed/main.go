package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"PriceFeed/internal/collector"
	"PriceFeed/internal/config"
	"PriceFeed/internal/dashboard"
	"PriceFeed/internal/logger"
	"PriceFeed/internal/metrics"
	"PriceFeed/internal/recorder"
	"PriceFeed/internal/scheduler"
	"PriceFeed/internal/server"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog().Fatal().Err(err).Msg("load config")
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	if err != nil {
		bootLog().Fatal().Err(err).Msg("init logger")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Msg("PriceFeed starting...")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init store
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	// Init metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Init collector + scheduler
	var sched *scheduler.Scheduler
	if cfg.Collector.Enabled {
		fetcher := collector.NewHTTPFetcher(cfg.Upstream.URL, cfg.Upstream.APIKey, cfg.Proxy, cfg.Upstream.Timeout)
		log.Info().Str("source", fetcher.Name()).Dur("interval", cfg.Collector.Interval).Msg("collector enabled")

		col := collector.NewCollector(fetcher, store, m, log)
		sched = scheduler.NewScheduler(ctx, col, log)
		if err := sched.Register(cfg.Collector.Interval); err != nil {
			log.Fatal().Err(err).Msg("register collector task")
		}
		sched.Start()

		// Optional: run immediately on start
		if cfg.Collector.RunOnStart {
			log.Info().Msg("run_on_start enabled, collecting now")
			go sched.RunNow()
		}
	}

	// Init dashboard
	var srv *server.Server
	var srvErr <-chan error
	if cfg.Dashboard.Enabled {
		h, err := dashboard.NewHandler(store, m, log, dashboard.Options{
			DefaultWindowDays: cfg.Dashboard.DefaultWindowDays,
			MAWindow:          cfg.Dashboard.MAWindow,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("init dashboard")
		}
		srv = server.New(h, log,
			server.WithHost(cfg.Dashboard.Host),
			server.WithPort(cfg.Dashboard.Port),
			server.WithGatherer(reg),
		)
		srv.Start()
		srvErr = srv.Err()
	}

	log.Info().Msg("PriceFeed is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case err := <-srvErr:
		log.Error().Err(err).Msg("dashboard server failed, stopping...")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Dashboard.ShutdownTimeout)
	defer stop()
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("collector did not stop in time")
		}
	}
	if srv != nil {
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("dashboard did not stop cleanly")
		}
	}
	cancel()
	log.Info().Msg("PriceFeed stopped")
}

// openStore builds the configured recorder.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (recorder.Recorder, error) {
	driver := cfg.Database.Driver
	if driver == "" {
		driver = recorder.DriverFromDSN(cfg.Database.DSN)
	}
	if driver == recorder.DriverMemory {
		log.Warn().Msg("using in-memory store, readings are lost on exit")
		return recorder.NewMemoryRecorder(), nil
	}

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return recorder.NewSQLRecorder(openCtx, driver, cfg.Database.DSN, log)
}

func bootLog() *zerolog.Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return &l
}
