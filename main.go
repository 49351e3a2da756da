package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"time"

	"klineDataCore/config"
	"klineDataCore/internal/app"
	"klineDataCore/internal/bootstrap"
	"klineDataCore/internal/metrics"
	"klineDataCore/internal/pipeline"
	"klineDataCore/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := bootstrap.NewLogger(cfg)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{
		"level":  cfg.LogLevel.String(),
		"format": cfg.LogFormat,
	})

	// 3. Initialize Snapshot Cache
	repo, err := bootstrap.NewRepository(cfg, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize snapshot cache")
		log.Fatalf("FATAL: Failed to initialize snapshot cache: %v", err)
	}
	if repo != nil {
		defer func() {
			if err := repo.Close(); err != nil {
				appLogger.Error(context.Background(), err, "Error closing snapshot cache")
			}
		}()
	}

	// 4. Initialize Kline Source
	source, err := bootstrap.NewSource(cfg, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize kline source")
		log.Fatalf("FATAL: Failed to initialize kline source: %v", err)
	}
	appLogger.Info(context.Background(), "Kline source initialized", map[string]interface{}{"source": source.Name()})

	// 5. Metrics
	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr, m, appLogger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	// 6. Indicator Pipeline
	indicators, err := pipeline.NewIndicatorService(appLogger,
		pipeline.WithMaxCandles(cfg.MaxCandles),
		pipeline.WithObserver(m),
	)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize indicator pipeline: %v", err)
	}
	appLogger.Info(context.Background(), "Indicator pipeline initialized", map[string]interface{}{
		"entries":    len(pipeline.DefaultCatalogue()),
		"maxCandles": indicators.MaxCandles(),
	})

	// 7. Application Service
	opts := []app.Option{app.WithRecorder(m)}
	if repo != nil {
		opts = append(opts, app.WithRepository(repo))
	}
	klineService, err := app.NewKlineService(cfg, appLogger, source, indicators, opts...)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize kline service")
		log.Fatalf("FATAL: Failed to initialize kline service: %v", err)
	}

	// 8. Run until SIGINT/SIGTERM
	if err := klineService.Run(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Kline service exited with error")
		log.Fatalf("FATAL: Kline service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}


func startMetricsServer(addr string, m *metrics.Metrics, logger ports.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info(context.Background(), "Metrics server listening", map[string]interface{}{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), err, "Metrics server stopped")
		}
	}()
	return srv
}
