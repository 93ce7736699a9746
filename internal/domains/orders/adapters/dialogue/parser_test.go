package dialogue

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

func TestParsePositions(t *testing.T) {
	positions, err := ParsePositions(" 1, 3 ;4 ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4}, positions)

	_, err = ParsePositions("   ")
	require.ErrorIs(t, err, apperrors.ErrSelection)
	_, err = ParsePositions("1, two")
	require.ErrorIs(t, err, apperrors.ErrSelection)
}

func TestParseQuantities(t *testing.T) {
	quantities, err := ParseQuantities("2, 5")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, quantities)

	_, err = ParseQuantities("2, 1.5")
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "quantities[1]", vErr.Field)
}

func TestFormatSummary(t *testing.T) {
	offer := []domain.OfferEntry{
		{ProductID: 1, Name: "Green tea", PurchasePrice: decimal.NewFromInt(10), SalePrice: decimal.NewFromInt(15), Available: 5},
	}
	basket, err := domain.NewBasket(domain.Key{OwnerID: 1, ConversationID: "c"}, offer, time.Now(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "1. Green tea - 15.00 (5 in stock)", FormatOffer(basket))

	require.NoError(t, basket.SelectPositions([]int{1}))
	require.NoError(t, basket.EnterQuantities([]int64{3}, map[int64]domain.StockLevel{1: {ProductID: 1, Available: 5}}))
	assert.Equal(t, "Green tea x3 = 45.00\nTotal: 45.00\nProfit: 15.00", FormatSummary(basket))
}
