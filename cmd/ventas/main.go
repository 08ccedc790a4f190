package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"ventas/internal/amqp"
	"ventas/internal/analytics"
	"ventas/internal/backend"
	"ventas/internal/cache"
	"ventas/internal/cli"
	"ventas/internal/config"
	apphttp "ventas/internal/http"
	"ventas/internal/log"
	"ventas/internal/middleware/ratelimit"
	"ventas/internal/render"
	"ventas/internal/services"
	appweb "ventas/web"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Stdout)
	cfg := cli.MustLoadConfig(logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(startCtx, backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize data backend", err)
	}

	dataset := cache.NewDatasetReader(result.Reader, cfg.DataBackend, cfg.DatasetCacheTTL)
	caches := cache.NewManager()
	if c := dataset.Cleaner(); c != nil {
		caches.Register(c)
		caches.StartCleanup(cfg.DatasetCacheTTL)
		logger.Info("Dataset cache enabled", "ttl", cfg.DatasetCacheTTL.String())
	}

	opts := analytics.Options{
		TopN:          cfg.TopN,
		Window:        cfg.MovingAverageWindow,
		LowSalesRatio: cfg.LowSalesRatio,
		Holidays:      cfg.HolidayDates(),
	}
	dashboards := services.NewDashboardService(
		dataset,
		services.NewLogoSource(cfg.LogoPath, appweb.DefaultLogo),
		render.New(),
		opts,
	)

	readyChecks := map[string]apphttp.ReadyCheck{}
	if result.Pinger != nil {
		readyChecks[cfg.DataBackend] = result.Pinger.Ping
	}

	// Dataset events from ventas-import drop the cached table.
	var listener *services.DatasetListener
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(startCtx, cfg.AMQPURL, cfg.AMQPExchange, instanceQueue(cfg))
		if err != nil {
			logger.Warn("AMQP unavailable, dataset events disabled", log.FieldError, err)
		} else {
			listener = services.NewDatasetListener(events, dataset)
			if err := listener.Start(context.Background()); err != nil {
				cli.Fatal(logger, "Failed to start dataset listener", err)
			}
			logger.Info("Dataset listener started", "exchange", cfg.AMQPExchange)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Dashboards:   dashboards,
		Logger:       logger,
		DefaultMonth: cfg.DefaultMonth,
		ReadyChecks:  readyChecks,
		RateLimit:    ratelimit.DefaultConfig(),
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) error {
		var errs []error
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server: %w", err))
		}
		if listener != nil {
			if err := listener.Stop(ctx); err != nil {
				errs = append(errs, fmt.Errorf("dataset listener: %w", err))
			}
		}
		if events != nil {
			if err := events.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		caches.Stop()
		if err := result.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("backend: %w", err))
		}
		return errors.Join(errs...)
	})

	logger.Info("Starting ventas server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"default_month", cfg.DefaultMonth)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// instanceQueue gives every server its own queue so each one sees every event.
func instanceQueue(cfg *config.Config) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return cfg.AMQPQueue
	}
	return cfg.AMQPQueue + "." + host
}
