//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	platformredis "github.com/Apurer/storekeeper/internal/platform/redis"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

func setupRedisContainer(t *testing.T) (*BasketStore, func()) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client, err := platformredis.Connect(ctx, addr)
	require.NoError(t, err)

	cleanup := func() {
		_ = client.Close()
		_ = container.Terminate(ctx)
	}
	return NewBasketStore(client, "test:"), cleanup
}

func openBasket(t *testing.T, key domain.Key, now time.Time, ttl time.Duration) *domain.Basket {
	t.Helper()
	basket, err := domain.NewBasket(key, []domain.OfferEntry{
		{ProductID: 1, Name: "Green tea", PurchasePrice: decimal.NewFromInt(10), SalePrice: decimal.RequireFromString("15.50"), Available: 5},
	}, now, ttl)
	require.NoError(t, err)
	return basket
}

func TestRedisBasketStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	store, cleanup := setupRedisContainer(t)
	defer cleanup()
	ctx := context.Background()
	key := domain.Key{OwnerID: 7, ConversationID: "chat-1"}

	basket := openBasket(t, key, time.Now(), time.Minute)
	require.NoError(t, basket.SelectPositions([]int{1}))
	require.NoError(t, store.Save(ctx, basket))

	loaded, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.StateProductsSelected, loaded.State)
	assert.Equal(t, []int64{1}, loaded.Selected)
	assert.True(t, loaded.Offer[0].SalePrice.Equal(decimal.RequireFromString("15.50")))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRedisBasketStoreExpiresKeys(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	store, cleanup := setupRedisContainer(t)
	defer cleanup()
	ctx := context.Background()
	key := domain.Key{OwnerID: 7, ConversationID: "short"}

	require.NoError(t, store.Save(ctx, openBasket(t, key, time.Now(), time.Second)))
	require.Eventually(t, func() bool {
		_, err := store.Get(ctx, key)
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)
}

func TestRedisBasketStoreDeleteByOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	store, cleanup := setupRedisContainer(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Now()

	mine := []domain.Key{{OwnerID: 7, ConversationID: "a"}, {OwnerID: 7, ConversationID: "b"}}
	theirs := domain.Key{OwnerID: 70, ConversationID: "a"}
	for _, key := range append(mine, theirs) {
		require.NoError(t, store.Save(ctx, openBasket(t, key, now, time.Minute)))
	}

	require.NoError(t, store.DeleteByOwner(ctx, 7))
	for _, key := range mine {
		_, err := store.Get(ctx, key)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	}
	_, err := store.Get(ctx, theirs)
	require.NoError(t, err)
}
