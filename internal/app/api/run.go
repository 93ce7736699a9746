package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	orderworkflows "github.com/Apurer/storekeeper/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/storekeeper/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/storekeeper/internal/platform/observability"
	"github.com/Apurer/storekeeper/internal/transport/httpapi"
)

const serviceName = "storekeeper-api"

// Run boots the store HTTP API with observability, repositories, and workflows
// wired, and blocks until a shutdown signal has been handled. It returns the
// process exit code.
func Run(ctx context.Context) (int, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return 1, fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdownTelemetry, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return 1, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := instruments.Logger

	var committer ordersports.Committer
	var temporalClient client.Client
	if cfg.TemporalEnabled {
		temporalClient, err = ConnectTemporal(cfg, instruments, "temporal-client")
		if err != nil {
			logger.Warn("Temporal workflows unavailable, committing orders in process", slog.String("error", err.Error()))
		} else {
			committer = orderworkflows.NewTemporalCommitter(temporalClient, cfg.TemporalTaskQueue)
			logger.Info("Temporal order commits enabled",
				slog.String("namespace", cfg.TemporalNamespace),
				slog.String("taskQueue", cfg.TemporalTaskQueue))
		}
	}

	stack, err := Build(ctx, cfg, instruments, committer)
	if err != nil {
		if temporalClient != nil {
			temporalClient.Close()
		}
		_ = shutdownTelemetry(context.Background())
		return 1, err
	}

	router := httpapi.NewRouter(stack.Services,
		httpapi.WithLogger(logger),
		httpapi.WithTracing(serviceName),
	)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	purgeCtx, stopPurge := context.WithCancel(ctx)
	if cfg.BasketStore != BasketStoreRedis {
		go RunBasketPurger(purgeCtx, stack.Orders, cfg.BasketPurgeInterval, logger)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("store API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("store API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			serveErr <- err
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
		"basket-purger": func(context.Context) error {
			stopPurge()
			return nil
		},
	})

	select {
	case code := <-wait:
		finish(stack, temporalClient, shutdownTelemetry, logger)
		return code, nil
	case err := <-serveErr:
		stopPurge()
		finish(stack, temporalClient, shutdownTelemetry, logger)
		return 1, err
	}
}

func finish(stack *Stack, temporalClient client.Client, shutdownTelemetry func(context.Context) error, logger *slog.Logger) {
	stack.Close()
	if temporalClient != nil {
		temporalClient.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTelemetry(ctx); err != nil {
		logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
	}
}

// RunBasketPurger removes expired baskets every interval until ctx ends.
func RunBasketPurger(ctx context.Context, orders ordersports.Service, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := orders.PurgeExpiredBaskets(ctx)
			if err != nil {
				logger.Error("basket purge failed", slog.String("error", err.Error()))
				continue
			}
			if removed > 0 {
				logger.Info("expired baskets purged", slog.Int64("removed", removed))
			}
		}
	}
}

// ConnectTemporal dials Temporal with the OpenTelemetry tracing interceptor.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
