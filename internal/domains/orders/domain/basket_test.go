package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var basketNow = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

func newTestBasket(t *testing.T) *Basket {
	t.Helper()
	offer := []OfferEntry{
		{ProductID: 11, Name: "Green tea", PurchasePrice: dec("10"), SalePrice: dec("15"), Available: 5},
		{ProductID: 12, Name: "Mug", PurchasePrice: dec("2"), SalePrice: dec("6"), Available: 3},
		{ProductID: 13, Name: "Honey", PurchasePrice: dec("4"), SalePrice: dec("5"), Available: 1},
	}
	b, err := NewBasket(Key{OwnerID: 1, ConversationID: "chat-1"}, offer, basketNow, 30*time.Minute)
	require.NoError(t, err)
	return b
}

func stockOf(b *Basket) map[int64]StockLevel {
	stock := map[int64]StockLevel{}
	for _, e := range b.Offer {
		stock[e.ProductID] = StockLevel{ProductID: e.ProductID, Name: e.Name, PurchasePrice: e.PurchasePrice, SalePrice: e.SalePrice, Available: e.Available}
	}
	return stock
}

func TestBasketHappyPath(t *testing.T) {
	b := newTestBasket(t)
	assert.Equal(t, StateEmpty, b.State)
	assert.Equal(t, basketNow.Add(30*time.Minute), b.ExpiresAt)

	require.NoError(t, b.SelectPositions([]int{1, 3, 1}))
	assert.Equal(t, StateProductsSelected, b.State)
	assert.Equal(t, []int64{11, 13}, b.Selected)

	require.NoError(t, b.EnterQuantities([]int64{3, 1}, stockOf(b)))
	assert.Equal(t, StateQuantitiesEntered, b.State)
	assert.Equal(t, []Line{{11, 3}, {13, 1}}, b.Lines())

	lines, amount, profit := b.Preview()
	require.Len(t, lines, 2)
	assert.True(t, amount.Equal(dec("50")))
	assert.True(t, profit.Equal(dec("16")))

	require.NoError(t, b.MarkConfirmed())
	assert.True(t, b.Terminal())
}

func TestBasketSelectionErrors(t *testing.T) {
	b := newTestBasket(t)

	err := b.SelectPositions(nil)
	require.ErrorIs(t, err, apperrors.ErrSelection)

	err = b.SelectPositions([]int{4})
	require.ErrorIs(t, err, apperrors.ErrSelection)
	assert.Contains(t, err.Error(), "1..3")

	err = b.SelectProducts([]int64{99})
	require.ErrorIs(t, err, apperrors.ErrSelection)
	assert.Equal(t, StateEmpty, b.State)

	require.NoError(t, b.SelectProducts([]int64{12}))
	assert.Equal(t, []int64{12}, b.Selected)
}

func TestBasketWithEmptyOffer(t *testing.T) {
	b, err := NewBasket(Key{OwnerID: 1, ConversationID: "c"}, nil, basketNow, time.Minute)
	require.NoError(t, err)
	require.ErrorIs(t, b.SelectPositions([]int{1}), apperrors.ErrSelection)
}

func TestBasketQuantityValidation(t *testing.T) {
	b := newTestBasket(t)
	require.NoError(t, b.SelectPositions([]int{1, 2}))

	err := b.EnterQuantities([]int64{1}, stockOf(b))
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "expected 2 quantities")

	err = b.EnterQuantities([]int64{1, 0}, stockOf(b))
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "quantities[1]", vErr.Field)

	stock := stockOf(b)
	stock[12] = StockLevel{ProductID: 12, Name: "Mug", Available: 2}
	err = b.EnterQuantities([]int64{1, 3}, stock)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	var stockErr *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Mug", stockErr.Shortages[0].Name)
	assert.Equal(t, int64(2), stockErr.Shortages[0].Available)

	assert.Equal(t, StateProductsSelected, b.State)
	assert.Empty(t, b.Quantities)
}

func TestBasketTransitionsAreGuarded(t *testing.T) {
	b := newTestBasket(t)

	err := b.EnterQuantities([]int64{1}, stockOf(b))
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.ErrorIs(t, b.MarkConfirmed(), ErrInvalidTransition)

	require.NoError(t, b.Cancel())
	assert.Equal(t, StateCancelled, b.State)
	require.ErrorIs(t, b.SelectPositions([]int{1}), ErrInvalidTransition)
	require.ErrorIs(t, b.Cancel(), ErrInvalidTransition)
}

func TestReselectResetsQuantities(t *testing.T) {
	b := newTestBasket(t)
	require.NoError(t, b.SelectPositions([]int{1}))
	require.NoError(t, b.EnterQuantities([]int64{2}, stockOf(b)))
	require.NoError(t, b.EnterQuantities([]int64{4}, stockOf(b)))
	assert.Equal(t, []int64{4}, b.Quantities)

	require.NoError(t, b.SelectPositions([]int{2}))
	assert.Equal(t, StateProductsSelected, b.State)
	assert.Nil(t, b.Quantities)
}

func TestBasketExpiry(t *testing.T) {
	b := newTestBasket(t)
	assert.False(t, b.Expired(basketNow.Add(29*time.Minute)))
	assert.True(t, b.Expired(basketNow.Add(30*time.Minute)))

	b.Touch(basketNow.Add(20*time.Minute), 30*time.Minute)
	assert.False(t, b.Expired(basketNow.Add(40*time.Minute)))
}

func TestKeyValidation(t *testing.T) {
	_, err := NewBasket(Key{OwnerID: 0, ConversationID: "c"}, nil, basketNow, time.Minute)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = NewBasket(Key{OwnerID: 1, ConversationID: "  "}, nil, basketNow, time.Minute)
	require.ErrorIs(t, err, ErrEmptyConversation)

	_, err = NewBasket(Key{OwnerID: 1, ConversationID: strings.Repeat("ж", MaxConversationIDLength)}, nil, basketNow, time.Minute)
	require.NoError(t, err)
	_, err = NewBasket(Key{OwnerID: 1, ConversationID: strings.Repeat("a", MaxConversationIDLength+1)}, nil, basketNow, time.Minute)
	require.ErrorIs(t, err, ErrLongConversation)
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "conversationId", vErr.Field)
}
