package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeSide represents the direction of a trade
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Valid reports whether the side is one of the known values
func (s TradeSide) Valid() bool {
	return s == TradeSideBuy || s == TradeSideSell
}

// TradeEvent represents a single buy or sell of an instrument inside a
// portfolio. Trades form an append-only, replayable history: the holding
// aggregate can always be recomputed from scratch by folding the ordered
// trade list.
type TradeEvent struct {
	ID           uuid.UUID
	PortfolioID  uuid.UUID
	InstrumentID uuid.UUID
	Side         TradeSide
	Quantity     int64 // number of units, always positive
	UnitPrice    Money
	Fee          Money
	Timestamp    time.Time
}

// Validate ensures the trade adheres to domain rules
// Returns an error if validation fails
func (t *TradeEvent) Validate() error {
	if !t.Side.Valid() {
		return errors.New("trade side must be BUY or SELL")
	}
	if t.Quantity <= 0 {
		return errors.New("trade quantity must be positive")
	}
	if t.UnitPrice.Amount.IsNegative() {
		return errors.New("trade unit price must not be negative")
	}
	if t.Fee.Amount.IsNegative() {
		return errors.New("trade fee must not be negative")
	}
	if t.UnitPrice.Currency != t.Fee.Currency {
		return errors.New("trade unit price and fee must share a currency")
	}
	if t.Timestamp.IsZero() {
		return errors.New("trade timestamp must be set")
	}
	return nil
}

// Volume returns the traded volume (unit price times quantity), carrying the
// trade's own currency and timestamp.
func (t *TradeEvent) Volume() Money {
	return Money{
		Amount:    t.UnitPrice.Amount.Mul(quantityDecimal(t.Quantity)),
		Currency:  t.UnitPrice.Currency,
		Timestamp: t.Timestamp,
	}
}

func quantityDecimal(q int64) decimal.Decimal { return decimal.NewFromInt(q) }

// RebaseCurrency converts the trade's money fields into newCurrency. Either
// both fields are converted or neither is.
func (t *TradeEvent) RebaseCurrency(newCurrency string, conv Converter) error {
	price, err := t.UnitPrice.Convert(newCurrency, conv)
	if err != nil {
		return err
	}
	fee, err := t.Fee.Convert(newCurrency, conv)
	if err != nil {
		return err
	}
	t.UnitPrice = price
	t.Fee = fee
	return nil
}
