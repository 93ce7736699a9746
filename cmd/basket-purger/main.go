package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/storekeeper/internal/app/api"
	platformobservability "github.com/Apurer/storekeeper/internal/platform/observability"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := platformobservability.NewLogger(os.Stdout, "storekeeper-basket-purger", os.Getenv("LOG_LEVEL"))
	if cfg.BasketStore == api.BasketStoreRedis {
		logger.Info("redis expires baskets natively, nothing to purge")
		return
	}
	if cfg.BasketStore == api.BasketStoreMemory {
		log.Fatal("BASKET_STORE=memory lives inside the API process; set DATABASE_DRIVER to purge persisted baskets")
	}

	stack, err := api.Build(ctx, cfg, &platformobservability.Instruments{Logger: logger}, nil)
	if err != nil {
		log.Fatalf("failed to build store: %v", err)
	}
	defer stack.Close()

	removed, err := stack.Orders.PurgeExpiredBaskets(ctx)
	if err != nil {
		logger.Error("failed to purge baskets", slog.String("error", err.Error()))
		stack.Close()
		os.Exit(1)
	}
	logger.Info("basket purge completed", slog.Int64("removed", removed))
}
