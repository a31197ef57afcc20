package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRateConverter converts any pair with a single fixed rate. Used by
// tests across the package.
type fixedRateConverter struct {
	rate decimal.Decimal
}

func (c fixedRateConverter) Convert(amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error) {
	return amount.Mul(c.rate), nil
}

// failingConverter always reports the pair as unavailable.
type failingConverter struct{}

func (failingConverter) Convert(amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error) {
	return decimal.Decimal{}, fmt.Errorf("%w: no rate for %s->%s", ErrConversionUnavailable, from, to)
}

func mustMoney(t *testing.T, amount string, currency string) Money {
	t.Helper()
	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	m, err := NewMoney(d, currency)
	require.NoError(t, err)
	return m
}

func TestNewMoney_RejectsUnknownCurrency(t *testing.T) {
	_, err := NewMoney(decimal.NewFromInt(10), "NOPE")
	assert.ErrorIs(t, err, ErrIncompatibleOperand)
}

func TestMoney_Add_SameCurrency(t *testing.T) {
	a := mustMoney(t, "10", "EUR")
	b := mustMoney(t, "5", "EUR")

	sum, err := a.Add(b, nil)

	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, "EUR", sum.Currency)
	// Inputs are untouched; Money is immutable.
	assert.True(t, a.Amount.Equal(decimal.NewFromInt(10)))
	assert.True(t, b.Amount.Equal(decimal.NewFromInt(5)))
}

func TestMoney_Add_TimestampIsMaxOfInputs(t *testing.T) {
	early := time.Date(2020, 7, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2020, 7, 8, 10, 0, 0, 0, time.UTC)

	a := Money{Amount: decimal.NewFromInt(1), Currency: "EUR", Timestamp: late}
	b := Money{Amount: decimal.NewFromInt(2), Currency: "EUR", Timestamp: early}

	sum, err := a.Add(b, nil)
	require.NoError(t, err)
	assert.True(t, sum.Timestamp.Equal(late))

	sum, err = b.Add(a, nil)
	require.NoError(t, err)
	assert.True(t, sum.Timestamp.Equal(late))
}

func TestMoney_Add_CrossCurrencyWithoutConverter(t *testing.T) {
	a := mustMoney(t, "10", "EUR")
	b := mustMoney(t, "5", "USD")

	_, err := a.Add(b, nil)

	assert.ErrorIs(t, err, ErrConversionUnavailable)
}

func TestMoney_Add_CrossCurrencyWithConverter(t *testing.T) {
	a := mustMoney(t, "10", "EUR")
	b := mustMoney(t, "5", "USD")

	sum, err := a.Add(b, fixedRateConverter{rate: decimal.NewFromInt(2)})

	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(decimal.NewFromInt(20))) // 10 + 5*2
	assert.Equal(t, "EUR", sum.Currency)
}

func TestMoney_Add_NilOperand(t *testing.T) {
	a := mustMoney(t, "10", "EUR")

	_, err := a.Add(nil, nil)

	assert.ErrorIs(t, err, ErrIncompatibleOperand)
}

func TestMoney_Multiply(t *testing.T) {
	tests := []struct {
		name    string
		scalar  any
		want    string
		wantErr bool
	}{
		{name: "int", scalar: 3, want: "30"},
		{name: "int64", scalar: int64(4), want: "40"},
		{name: "float64", scalar: 2.5, want: "25"},
		{name: "decimal", scalar: decimal.NewFromInt(7), want: "70"},
		{name: "numeric string", scalar: "1.5", want: "15"},
		{name: "garbage string", scalar: "not-a-number", wantErr: true},
		{name: "unsupported type", scalar: struct{}{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustMoney(t, "10", "EUR")
			before := time.Now().UTC()

			got, err := m.Multiply(tt.scalar)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncompatibleOperand)
				return
			}
			require.NoError(t, err)
			want, _ := decimal.NewFromString(tt.want)
			assert.True(t, got.Amount.Equal(want), "got %s want %s", got.Amount, want)
			assert.Equal(t, "EUR", got.Currency)
			// timestamp is reset to "now"
			assert.False(t, got.Timestamp.Before(before))
		})
	}
}

func TestMoney_Convert_Identity(t *testing.T) {
	m := mustMoney(t, "10", "EUR")

	got, err := m.Convert("EUR", nil)

	require.NoError(t, err)
	assert.True(t, got.Equal(m))
}

func TestMoney_Convert_NoConverter(t *testing.T) {
	m := mustMoney(t, "10", "EUR")

	_, err := m.Convert("USD", nil)

	assert.ErrorIs(t, err, ErrConversionUnavailable)
}

func TestMoney_Convert_ConverterFailurePropagates(t *testing.T) {
	m := mustMoney(t, "10", "EUR")

	_, err := m.Convert("USD", failingConverter{})

	assert.ErrorIs(t, err, ErrConversionUnavailable)
}

func TestMoney_Convert_KeepsTimestamp(t *testing.T) {
	ts := time.Date(2020, 7, 1, 12, 0, 0, 0, time.UTC)
	m := Money{Amount: decimal.NewFromInt(10), Currency: "EUR", Timestamp: ts}

	got, err := m.Convert("USD", fixedRateConverter{rate: decimal.NewFromFloat(1.1)})

	require.NoError(t, err)
	assert.Equal(t, "USD", got.Currency)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(11)))
	assert.True(t, got.Timestamp.Equal(ts))
}

func TestMoney_Equal_IsStructural(t *testing.T) {
	ts := time.Date(2020, 7, 1, 12, 0, 0, 0, time.UTC)
	a := Money{Amount: decimal.NewFromInt(10), Currency: "EUR", Timestamp: ts}
	b := Money{Amount: decimal.NewFromInt(10), Currency: "EUR", Timestamp: ts}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(Money{Amount: decimal.NewFromInt(10), Currency: "USD", Timestamp: ts}))
	assert.False(t, a.Equal(Money{Amount: decimal.NewFromInt(11), Currency: "EUR", Timestamp: ts}))
	assert.False(t, a.Equal(Money{Amount: decimal.NewFromInt(10), Currency: "EUR", Timestamp: ts.Add(time.Second)}))
}
