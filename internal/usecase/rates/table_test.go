package rates

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/stockledger-backend/internal/domain"
)

func TestTableConverter_EmptyTableIsUnavailable(t *testing.T) {
	c := NewTableConverter()

	_, err := c.Convert(decimal.NewFromInt(10), "EUR", "USD", time.Now().UTC())

	assert.ErrorIs(t, err, domain.ErrConversionUnavailable)
}

func TestTableConverter_IdentityNeedsNoRate(t *testing.T) {
	c := NewTableConverter()

	got, err := c.Convert(decimal.NewFromInt(10), "EUR", "EUR", time.Now().UTC())

	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(10)))
}

func TestTableConverter_PicksRateEffectiveAtTimestamp(t *testing.T) {
	c := NewTableConverter()
	jan := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	jul := time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.SetRate("EUR", "USD", decimal.RequireFromString("1.10"), jan))
	require.NoError(t, c.SetRate("EUR", "USD", decimal.RequireFromString("1.20"), jul))

	tests := []struct {
		name string
		asOf time.Time
		want string
	}{
		{name: "between quotes", asOf: jan.AddDate(0, 2, 0), want: "11.0"},
		{name: "after second quote", asOf: jul.AddDate(0, 1, 0), want: "12.0"},
		{name: "exactly on quote date", asOf: jul, want: "12.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(decimal.NewFromInt(10), "EUR", "USD", tt.asOf)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestTableConverter_BeforeFirstQuoteIsUnavailable(t *testing.T) {
	c := NewTableConverter()
	jul := time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.SetRate("EUR", "USD", decimal.RequireFromString("1.20"), jul))

	_, err := c.Convert(decimal.NewFromInt(10), "EUR", "USD", jul.AddDate(0, 0, -1))

	assert.ErrorIs(t, err, domain.ErrConversionUnavailable)
}

func TestTableConverter_RegistersInverse(t *testing.T) {
	c := NewTableConverter()
	jan := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.SetRate("EUR", "USD", decimal.NewFromInt(2), jan))

	got, err := c.Convert(decimal.NewFromInt(10), "USD", "EUR", jan)

	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(5)))
}

func TestTableConverter_RejectsBadInput(t *testing.T) {
	c := NewTableConverter()
	now := time.Now().UTC()

	assert.ErrorIs(t, c.SetRate("EUR", "NOPE", decimal.NewFromInt(1), now), domain.ErrIncompatibleOperand)
	assert.ErrorIs(t, c.SetRate("EUR", "USD", decimal.Zero, now), domain.ErrIncompatibleOperand)
	assert.ErrorIs(t, c.SetRate("EUR", "USD", decimal.NewFromInt(-1), now), domain.ErrIncompatibleOperand)
}
