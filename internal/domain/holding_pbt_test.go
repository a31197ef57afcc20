package domain

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// genTradeSpec produces the raw material for a random trade: side flag,
// quantity, price and fee in cents, and an offset in minutes from a base
// instant.
type tradeSpec struct {
	Sell       bool
	Quantity   int64
	PriceCents int64
	FeeCents   int64
	OffsetMin  int64
}

func genTradeSpec() gopter.Gen {
	return gen.Struct(reflect.TypeOf(tradeSpec{}), map[string]gopter.Gen{
		"Sell":       gen.Bool(),
		"Quantity":   gen.Int64Range(1, 500),
		"PriceCents": gen.Int64Range(1, 100_000),
		"FeeCents":   gen.Int64Range(0, 10_000),
		"OffsetMin":  gen.Int64Range(0, 60*24*365),
	})
}

func specsToTrades(h *HoldingAggregate, specs []tradeSpec) []*TradeEvent {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := make([]*TradeEvent, 0, len(specs))
	for _, s := range specs {
		side := TradeSideBuy
		if s.Sell {
			side = TradeSideSell
		}
		ts := base.Add(time.Duration(s.OffsetMin) * time.Minute)
		trades = append(trades, &TradeEvent{
			ID:           uuid.New(),
			PortfolioID:  h.PortfolioID,
			InstrumentID: h.InstrumentID,
			Side:         side,
			Quantity:     s.Quantity,
			UnitPrice:    Money{Amount: decimal.New(s.PriceCents, -2), Currency: h.Currency, Timestamp: ts},
			Fee:          Money{Amount: decimal.New(s.FeeCents, -2), Currency: h.Currency, Timestamp: ts},
			Timestamp:    ts,
		})
	}
	return trades
}

func TestHolding_ReapplyHistory_IdempotenceProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("replaying the same ordered history twice yields identical state", prop.ForAll(
		func(specs []tradeSpec) bool {
			h := NewHolding(uuid.New(), uuid.New(), "EUR")
			trades := specsToTrades(h, specs)

			if err := h.ReapplyHistory(trades, nil); err != nil {
				return false
			}
			first := *h
			if err := h.ReapplyHistory(trades, nil); err != nil {
				return false
			}

			return first.QuantityHeld == h.QuantityHeld &&
				first.CashIn.Amount.Equal(h.CashIn.Amount) &&
				first.CashOut.Amount.Equal(h.CashOut.Amount) &&
				first.Fees.Amount.Equal(h.Fees.Amount) &&
				first.MarketValue.Amount.Equal(h.MarketValue.Amount)
		},
		gen.SliceOf(genTradeSpec()),
	))

	properties.Property("cash totals equal the sum of per-side volumes", prop.ForAll(
		func(specs []tradeSpec) bool {
			h := NewHolding(uuid.New(), uuid.New(), "EUR")
			trades := specsToTrades(h, specs)
			if err := h.ReapplyHistory(trades, nil); err != nil {
				return false
			}

			wantIn, wantOut, wantQty := decimal.Zero, decimal.Zero, int64(0)
			for _, tr := range trades {
				vol := tr.Volume().Amount
				if tr.Side == TradeSideBuy {
					wantIn = wantIn.Add(vol)
					wantQty += tr.Quantity
				} else {
					wantOut = wantOut.Add(vol)
					wantQty -= tr.Quantity
				}
			}
			return h.CashIn.Amount.Equal(wantIn) &&
				h.CashOut.Amount.Equal(wantOut) &&
				h.QuantityHeld == wantQty
		},
		gen.SliceOf(genTradeSpec()),
	))

	properties.TestingRun(t)
}

func TestPriceSeries_MonotonicityProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("latest timestamp never decreases and dates stay unique", prop.ForAll(
		func(offsets []int64, cents []int64) bool {
			series := &PriceSeries{InstrumentID: uuid.New(), Currency: "EUR"}
			base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

			n := len(offsets)
			if len(cents) < n {
				n = len(cents)
			}

			var lastLatest time.Time
			for i := 0; i < n; i++ {
				obs := Money{
					Amount:    decimal.New(cents[i], -2),
					Currency:  "EUR",
					Timestamp: base.Add(time.Duration(offsets[i]) * time.Minute),
				}
				if _, _, err := series.Report(obs, nil); err != nil {
					return false
				}
				latest, err := series.Latest()
				if err != nil {
					return false
				}
				if latest.Timestamp.Before(lastLatest) {
					return false
				}
				lastLatest = latest.Timestamp
			}

			// at most one point per calendar date
			seen := map[string]bool{}
			for _, p := range series.Points {
				date := p.Timestamp.UTC().Format("2006-01-02")
				if seen[date] {
					return false
				}
				seen[date] = true
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(0, 60*24*30)),
		gen.SliceOf(gen.Int64Range(1, 100_000)),
	))

	properties.TestingRun(t)
}
