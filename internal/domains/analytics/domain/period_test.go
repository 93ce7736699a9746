package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

// Wednesday.
var periodNow = time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

func TestParseNamedPeriods(t *testing.T) {
	tests := []struct {
		kind string
		from time.Time
	}{
		{"today", time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)},
		{"week", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{"month", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"YEAR", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			p, err := ParsePeriod(tt.kind, "", "", periodNow, time.UTC)
			require.NoError(t, err)
			require.NotNil(t, p.From)
			assert.Equal(t, tt.from, *p.From)
			assert.Equal(t, periodNow, p.To)
		})
	}
}

func TestWeekStartsOnMonday(t *testing.T) {
	sunday := time.Date(2024, 6, 16, 9, 0, 0, 0, time.UTC)
	p, err := ParsePeriod("week", "", "", sunday, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), *p.From)

	monday := time.Date(2024, 6, 10, 0, 0, 1, 0, time.UTC)
	p, err = ParsePeriod("week", "", "", monday, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), *p.From)
}

func TestAllTimeIsUnbounded(t *testing.T) {
	for _, kind := range []string{"all", ""} {
		p, err := ParsePeriod(kind, "", "", periodNow, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, PeriodAll, p.Kind)
		assert.Nil(t, p.From)
		assert.Equal(t, periodNow, p.To)
		assert.Equal(t, "All time", p.Label())
	}
}

func TestCustomPeriodFormats(t *testing.T) {
	for _, start := range []string{"2024-05-01", "01.05.2024", "01/05/2024"} {
		p, err := ParsePeriod("custom", start, "2024-05-31", periodNow, time.UTC)
		require.NoError(t, err, start)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *p.From)
		assert.Equal(t, time.Date(2024, 5, 31, 23, 59, 59, 999999999, time.UTC), p.To)
		assert.True(t, p.Contains(time.Date(2024, 5, 31, 22, 0, 0, 0, time.UTC)))
		assert.Equal(t, "2024-05-01 - 2024-05-31", p.Label())
	}

	p, err := ParsePeriod("", "2024-05-01T10:00:00Z", "2024-05-02T10:00:00Z", periodNow, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, PeriodCustom, p.Kind)
	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), p.To)
}

func TestCustomPeriodDefaultsEndToNow(t *testing.T) {
	p, err := ParsePeriod("custom", "2024-06-01", "", periodNow, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, periodNow, p.To)
}

func TestPeriodUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	late := time.Date(2024, 6, 12, 22, 0, 0, 0, time.UTC)
	p, err := ParsePeriod("today", "", "", late, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 13, 0, 0, 0, 0, loc), *p.From)
}

func TestPeriodErrors(t *testing.T) {
	tests := []struct {
		name, kind, start, end, field string
		want                          error
	}{
		{"unknown kind", "decade", "", "", "period", ErrUnknownPeriod},
		{"missing start", "custom", "", "2024-01-01", "start", ErrStartRequired},
		{"bad start", "custom", "yesterday", "", "start", ErrBadDate},
		{"bad end", "custom", "2024-01-01", "2024-13-01", "end", ErrBadDate},
		{"reversed", "custom", "2024-02-01", "2024-01-01", "start", ErrStartAfterEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePeriod(tt.kind, tt.start, tt.end, periodNow, time.UTC)
			require.ErrorIs(t, err, apperrors.ErrValidation)
			require.ErrorIs(t, err, tt.want)
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}
