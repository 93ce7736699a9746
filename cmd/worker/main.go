package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/storekeeper/internal/app/api"
	orderworkflows "github.com/Apurer/storekeeper/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/Apurer/storekeeper/internal/platform/observability"
	orderactivities "github.com/Apurer/storekeeper/internal/platform/temporal/activities/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "storekeeper-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger
	if cfg.DatabaseDriver == api.DriverMemory {
		logger.Warn("worker is using in-memory repositories; commits are invisible to the API process")
	}

	// The worker's order engine commits in process; routing it through
	// Temporal again would start a workflow from inside the activity.
	stack, err := api.Build(ctx, cfg, instruments, nil)
	if err != nil {
		logger.Error("failed to build store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stack.Close()
	activities := orderactivities.NewActivities(stack.Orders)

	temporalClient, err := api.ConnectTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		stack.Close()
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, cfg.TemporalTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.CommitOrderWorkflow, workflow.RegisterOptions{Name: orderworkflows.CommitOrderWorkflowName})
	w.RegisterActivityWithOptions(activities.CommitOrder, activity.RegisterOptions{Name: orderactivities.CommitOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", cfg.TemporalTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
