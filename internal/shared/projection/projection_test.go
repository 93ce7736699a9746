package projection

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoneyAndPercent(t *testing.T) {
	assert.Equal(t, "45.00", Money(decimal.NewFromInt(45)))
	assert.Equal(t, "-10.50", Money(decimal.RequireFromString("-10.5")))
	assert.Equal(t, "33.33", Percent(decimal.RequireFromString("33.3333")))
}

func TestTimestamps(t *testing.T) {
	assert.Equal(t, "", Timestamp(time.Time{}))
	at := time.Date(2024, 6, 12, 10, 0, 0, 0, time.FixedZone("x", 3600))
	assert.Equal(t, "2024-06-12T09:00:00Z", Timestamp(at))
	assert.Nil(t, OptionalTimestamp(nil))
	assert.Equal(t, "2024-06-12T09:00:00Z", *OptionalTimestamp(&at))
}
