// cmd/soc-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"soc-dashboard/internal/api"
	"soc-dashboard/internal/common/config"
	"soc-dashboard/internal/common/database"
	"soc-dashboard/internal/common/logger"
	"soc-dashboard/internal/common/observability"
	"soc-dashboard/internal/datastore"
	"soc-dashboard/internal/reports"
	"soc-dashboard/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// loadCatalog returns the report catalog to route, read from path when set,
// after checking it against the report implementations.
func loadCatalog(path string, service *reports.Service) (*registry.ReportRegistry, error) {
	catalog := registry.Default()
	if path != "" {
		var err error
		if catalog, err = registry.LoadRegistry(path); err != nil {
			return nil, fmt.Errorf("failed to load report catalog %s: %w", path, err)
		}
	}

	if err := service.ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("invalid report catalog: %w", err)
	}
	return catalog, nil
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting SOC dashboard API...",
		zap.String("driver", cfg.Datastore.Driver),
		zap.String("index", cfg.Datastore.IndexPattern),
	)

	obs := observability.New(cfg.App.Name, cfg.Tracing, zapLog)
	defer obs.Shutdown()

	store, err := datastore.New(cfg.Datastore, log)
	if err != nil {
		zapLog.Fatal("datastore client init failed", zap.Error(err))
	}

	var cache reports.Cache = reports.NoopCache{}
	if cfg.Cache.Enabled {
		rdb, err := database.NewRedis(cfg.Cache)
		if err != nil {
			zapLog.Fatal("redis client init failed", zap.Error(err))
		}
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx); err != nil {
			zapLog.Warn("redis unreachable, report cache will miss until it recovers", zap.Error(err))
		}
		cancel()

		cache = reports.NewRedisCache(rdb.Client, config.GetDuration(cfg.Cache.TTL), log)
		zapLog.Info("Report cache enabled", zap.String("address", cfg.Cache.Address))
	}

	service := reports.NewService(store, cache, log)

	catalog, err := loadCatalog(cfg.Server.CatalogFile, service)
	if err != nil {
		zapLog.Fatal("report catalog rejected", zap.Error(err))
	}
	zapLog.Info("Report catalog loaded",
		zap.String("file", cfg.Server.CatalogFile),
		zap.Int("reports", len(catalog.Reports)),
	)

	router := api.NewRouter(api.Options{
		Reports:        service,
		Datastore:      store,
		Catalog:        catalog,
		Observability:  obs,
		Logger:         log,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: config.GetDuration(cfg.Server.ReadHeaderTimeout),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The health route must serve even while the datastore is down, so the
	// connectivity check only logs.
	go func() {
		err := retryWithBackoff(ctx, func() error {
			return store.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Datastore connection")
		if err != nil {
			zapLog.Warn("datastore still unreachable, serving anyway", zap.Error(err))
			return
		}
		zapLog.Info("Datastore connected successfully", zap.String("index", store.Index()))
	}()

	go func() {
		zapLog.Info("SOC dashboard API listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("SOC dashboard API stopped gracefully")
}
