package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTrade() *TradeEvent {
	ts := time.Date(2020, 7, 1, 10, 0, 0, 0, time.UTC)
	return &TradeEvent{
		ID:           uuid.New(),
		PortfolioID:  uuid.New(),
		InstrumentID: uuid.New(),
		Side:         TradeSideBuy,
		Quantity:     4,
		UnitPrice:    Money{Amount: decimal.RequireFromString("2.90"), Currency: "EUR", Timestamp: ts},
		Fee:          Money{Amount: decimal.RequireFromString("33.10"), Currency: "EUR", Timestamp: ts},
		Timestamp:    ts,
	}
}

func TestTradeEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TradeEvent)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid buy",
			mutate: func(tr *TradeEvent) {},
		},
		{
			name:   "valid sell",
			mutate: func(tr *TradeEvent) { tr.Side = TradeSideSell },
		},
		{
			name:    "unknown side",
			mutate:  func(tr *TradeEvent) { tr.Side = "SHORT" },
			wantErr: true,
			errMsg:  "trade side must be BUY or SELL",
		},
		{
			name:    "zero quantity",
			mutate:  func(tr *TradeEvent) { tr.Quantity = 0 },
			wantErr: true,
			errMsg:  "trade quantity must be positive",
		},
		{
			name:    "negative quantity",
			mutate:  func(tr *TradeEvent) { tr.Quantity = -1 },
			wantErr: true,
			errMsg:  "trade quantity must be positive",
		},
		{
			name:    "negative price",
			mutate:  func(tr *TradeEvent) { tr.UnitPrice.Amount = decimal.NewFromInt(-1) },
			wantErr: true,
			errMsg:  "trade unit price must not be negative",
		},
		{
			name:    "negative fee",
			mutate:  func(tr *TradeEvent) { tr.Fee.Amount = decimal.NewFromInt(-1) },
			wantErr: true,
			errMsg:  "trade fee must not be negative",
		},
		{
			name:    "mixed currencies",
			mutate:  func(tr *TradeEvent) { tr.Fee.Currency = "USD" },
			wantErr: true,
			errMsg:  "trade unit price and fee must share a currency",
		},
		{
			name:    "missing timestamp",
			mutate:  func(tr *TradeEvent) { tr.Timestamp = time.Time{} },
			wantErr: true,
			errMsg:  "trade timestamp must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTrade()
			tt.mutate(tr)

			err := tr.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTradeEvent_Volume(t *testing.T) {
	tr := validTrade()

	vol := tr.Volume()

	assert.True(t, vol.Amount.Equal(decimal.RequireFromString("11.60")))
	assert.Equal(t, "EUR", vol.Currency)
	// volume keeps the trade's own timestamp, not "now"
	assert.True(t, vol.Timestamp.Equal(tr.Timestamp))
}

func TestTradeEvent_RebaseCurrency(t *testing.T) {
	tr := validTrade()

	err := tr.RebaseCurrency("USD", fixedRateConverter{rate: decimal.NewFromInt(2)})

	require.NoError(t, err)
	assert.Equal(t, "USD", tr.UnitPrice.Currency)
	assert.Equal(t, "USD", tr.Fee.Currency)
	assert.True(t, tr.UnitPrice.Amount.Equal(decimal.RequireFromString("5.80")))
	assert.True(t, tr.Fee.Amount.Equal(decimal.RequireFromString("66.20")))
}

func TestTradeEvent_RebaseCurrency_NoConverter(t *testing.T) {
	tr := validTrade()

	err := tr.RebaseCurrency("USD", nil)

	assert.ErrorIs(t, err, ErrConversionUnavailable)
	assert.Equal(t, "EUR", tr.UnitPrice.Currency)
	assert.Equal(t, "EUR", tr.Fee.Currency)
}
