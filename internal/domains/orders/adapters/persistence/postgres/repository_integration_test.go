//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	catalogpostgres "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/storekeeper/internal/domains/catalog/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/adapters/persistence/postgres"
	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/platform/database"
	"github.com/Apurer/storekeeper/internal/platform/migrations"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("storekeeper_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, closeDB, err := database.Open(ctx, database.Config{Driver: database.DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		closeDB()
		_ = pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func TestPostgresConcurrentCommitsNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	catalog := catalogpostgres.NewRepository(db)
	product, err := catalogdomain.NewProduct(ownerID, "Green tea", decimal.NewFromInt(10), decimal.NewFromInt(15), 5)
	require.NoError(t, err)
	product, err = catalog.CreateProduct(ctx, product)
	require.NoError(t, err)

	orders := postgres.NewRepository(db)
	numbers, err := domain.NewNumberGenerator()
	require.NoError(t, err)

	const buyers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orders.Commit(ctx, ports.CommitRequest{
				OwnerID:    ownerID,
				Lines:      []domain.Line{{ProductID: product.ID, Quantity: 2}},
				NextNumber: numbers,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected commit error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, buyers-2, rejected)
	reloaded, err := catalog.GetProduct(ctx, ownerID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.Quantity)
}

func TestPostgresBasketStoreUsesArrays(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Now().UTC()

	store := postgres.NewBasketStore(db)
	key := domain.Key{OwnerID: ownerID, ConversationID: "chat-1"}
	basket := newBasket(t, key, now)
	require.NoError(t, basket.SelectPositions([]int{1, 2}))
	require.NoError(t, basket.EnterQuantities([]int64{2, 1}, map[int64]domain.StockLevel{
		1: {ProductID: 1, Available: 5},
		2: {ProductID: 2, Available: 2},
	}))
	require.NoError(t, store.Save(ctx, basket))

	loaded, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.StateQuantitiesEntered, loaded.State)
	assert.Equal(t, []int64{1, 2}, loaded.Selected)
	assert.Equal(t, []int64{2, 1}, loaded.Quantities)
}
