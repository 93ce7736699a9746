package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/storekeeper/internal/domains/catalog/domain"
	ordercatalog "github.com/Apurer/storekeeper/internal/domains/orders/adapters/catalog"
	ordermemory "github.com/Apurer/storekeeper/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/storekeeper/internal/domains/orders/application"
	orderdomain "github.com/Apurer/storekeeper/internal/domains/orders/domain"
	ordersports "github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/domains/owners/adapters/memory"
	"github.com/Apurer/storekeeper/internal/domains/owners/domain"
	"github.com/Apurer/storekeeper/internal/domains/owners/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

type stack struct {
	catalog *catalogmemory.Repository
	orders  *ordermemory.Repository
	baskets *ordermemory.BasketStore
	svc     *Service
}

func newStack() *stack {
	s := &stack{catalog: catalogmemory.NewRepository(), baskets: ordermemory.NewBasketStore()}
	s.orders = ordermemory.NewRepository(s.catalog)
	s.svc = NewService(memory.NewRepository(),
		WithDependents(s.orders, s.baskets, s.catalog),
		WithCounters(s.catalog, s.orders),
	)
	return s
}

func register(t *testing.T, svc *Service, chatID int64, email string) *domain.Owner {
	t.Helper()
	owner, err := svc.Register(context.Background(), ports.RegisterInput{ChatID: chatID, Email: email, StoreName: "Corner Shop"})
	require.NoError(t, err)
	return owner
}

func TestRegister(t *testing.T) {
	s := newStack()
	owner := register(t, s.svc, 42, "Shop@Example.com")
	assert.NotZero(t, owner.ID)
	assert.Equal(t, "shop@example.com", owner.Email)
	assert.Equal(t, domain.LanguageRussian, owner.Language)
	assert.True(t, owner.Active)

	found, err := s.svc.GetByChatID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, found.ID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := newStack()
	register(t, s.svc, 42, "shop@example.com")

	_, err := s.svc.Register(context.Background(), ports.RegisterInput{ChatID: 43, Email: "SHOP@example.com", StoreName: "Other"})
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)

	_, err = s.svc.Register(context.Background(), ports.RegisterInput{ChatID: 42, Email: "other@example.com", StoreName: "Other"})
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "chatId", conflict.Field)
}

func TestRegisterValidation(t *testing.T) {
	s := newStack()
	tests := []struct {
		name  string
		input ports.RegisterInput
		field string
	}{
		{"email", ports.RegisterInput{ChatID: 1, Email: "not-an-email", StoreName: "Shop"}, "email"},
		{"store", ports.RegisterInput{ChatID: 1, Email: "a@b.io", StoreName: " "}, "storeName"},
		{"language", ports.RegisterInput{ChatID: 1, Email: "a@b.io", StoreName: "Shop", Language: "de"}, "language"},
		{"chat", ports.RegisterInput{Email: "a@b.io", StoreName: "Shop"}, "chatId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.svc.Register(context.Background(), tt.input)
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestUpdateSettingsAndDeactivate(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	owner := register(t, s.svc, 42, "shop@example.com")

	name := "  New Name "
	lang := domain.LanguageEnglish
	updated, err := s.svc.UpdateSettings(ctx, owner.ID, ports.SettingsInput{StoreName: &name, Language: &lang})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.StoreName)
	assert.Equal(t, domain.LanguageEnglish, updated.Language)

	bad := domain.Language("xx")
	_, err = s.svc.UpdateSettings(ctx, owner.ID, ports.SettingsInput{Language: &bad})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	deactivated, err := s.svc.Deactivate(ctx, owner.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	_, err = s.svc.Deactivate(ctx, 999)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStoreInfoAndCascadingDelete(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	owner := register(t, s.svc, 42, "shop@example.com")
	other := register(t, s.svc, 43, "other@example.com")

	category, err := catalogdomain.NewCategory(owner.ID, "Tea", "")
	require.NoError(t, err)
	_, err = s.catalog.CreateCategory(ctx, category)
	require.NoError(t, err)
	product, err := catalogdomain.NewProduct(owner.ID, "Green tea", decimal.NewFromInt(10), decimal.NewFromInt(15), 5)
	require.NoError(t, err)
	created, err := s.catalog.CreateProduct(ctx, product)
	require.NoError(t, err)
	foreign, err := catalogdomain.NewProduct(other.ID, "Foreign", decimal.NewFromInt(1), decimal.NewFromInt(2), 5)
	require.NoError(t, err)
	_, err = s.catalog.CreateProduct(ctx, foreign)
	require.NoError(t, err)

	orders := ordersapp.NewService(s.orders, ordercatalog.NewStockReader(s.catalog), s.baskets)
	_, err = orders.PlaceOrder(ctx, ordersports.PlaceOrderInput{OwnerID: owner.ID, Lines: []orderdomain.Line{{ProductID: created.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = orders.BeginBasket(ctx, owner.ID, "chat-1")
	require.NoError(t, err)

	info, err := s.svc.StoreInfo(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.ProductCount)
	assert.Equal(t, int64(1), info.OrderCount)

	require.NoError(t, s.svc.Delete(ctx, owner.ID))

	_, err = s.svc.Get(ctx, owner.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	n, err := s.orders.CountByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = s.catalog.CountByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	categories, err := s.catalog.ListCategories(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, categories)
	_, err = s.baskets.Get(ctx, orderdomain.Key{OwnerID: owner.ID, ConversationID: "chat-1"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	n, err = s.catalog.CountByOwner(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

type failingDependent struct{}

func (failingDependent) DeleteByOwner(context.Context, int64) error {
	return errors.New("disk full")
}

func TestDeleteStopsOnDependentFailure(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewService(repo, WithDependents(failingDependent{}))
	owner := register(t, svc, 42, "shop@example.com")

	err := svc.Delete(context.Background(), owner.ID)
	require.ErrorIs(t, err, apperrors.ErrPersistence)

	_, err = svc.Get(context.Background(), owner.ID)
	require.NoError(t, err)
}
