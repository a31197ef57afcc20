package domain

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// HoldingAggregate tracks one instrument inside one portfolio: the running
// totals of money paid in, money received out, fees incurred, the held
// quantity and the mark-to-market value. There is exactly one aggregate per
// (portfolio, instrument) pair; it is created on the first trade for the
// pair and owned by the portfolio.
//
// All money fields are denominated in the aggregate's Currency, which is
// inherited from the owning portfolio. The aggregate must be mutated by at
// most one logical operation at a time; serialization per (portfolio,
// instrument) key is the caller's responsibility.
type HoldingAggregate struct {
	ID           uuid.UUID
	PortfolioID  uuid.UUID
	InstrumentID uuid.UUID
	Currency     string
	QuantityHeld int64
	CashIn       Money
	CashOut      Money
	Fees         Money
	MarketValue  Money
}

// NewHolding creates a zero-state aggregate for the given pair.
func NewHolding(portfolioID, instrumentID uuid.UUID, currency string) *HoldingAggregate {
	return &HoldingAggregate{
		ID:           uuid.New(),
		PortfolioID:  portfolioID,
		InstrumentID: instrumentID,
		Currency:     currency,
		CashIn:       ZeroMoney(currency),
		CashOut:      ZeroMoney(currency),
		Fees:         ZeroMoney(currency),
		MarketValue:  ZeroMoney(currency),
	}
}

// IsActive reports whether the portfolio currently holds any units of the
// instrument. Collaborators may skip price-update delivery for inactive
// holdings.
func (h *HoldingAggregate) IsActive() bool { return h.QuantityHeld != 0 }

// ApplyTrade folds a single trade into the running totals and revalues the
// position at the trade's unit price.
//
// With enforceOverdraftCheck enabled (the default for live trades), a SELL
// for more units than held fails with ErrInsufficientHoldings and the
// aggregate is left untouched. The check is disabled only when replaying a
// trade history that is trusted to be internally consistent; in that mode
// the held quantity is permitted to go negative.
//
// The trade must belong to this aggregate's (portfolio, instrument) pair.
// Cross-currency trades require a Converter.
func (h *HoldingAggregate) ApplyTrade(t *TradeEvent, enforceOverdraftCheck bool, conv Converter) error {
	if t == nil {
		return fmt.Errorf("%w: nil trade", ErrIncompatibleOperand)
	}
	if t.PortfolioID != h.PortfolioID || t.InstrumentID != h.InstrumentID {
		return fmt.Errorf("trade %s does not belong to holding %s/%s", t.ID, h.PortfolioID, h.InstrumentID)
	}
	if err := t.Validate(); err != nil {
		return err
	}

	if t.Side == TradeSideSell && enforceOverdraftCheck && t.Quantity > h.QuantityHeld {
		return fmt.Errorf("%w: selling %d of %d held", ErrInsufficientHoldings, t.Quantity, h.QuantityHeld)
	}

	// Compute every new value before assigning anything, so a conversion
	// failure leaves the aggregate unmodified.
	fees, err := h.Fees.Add(t.Fee, conv)
	if err != nil {
		return err
	}

	var (
		cashIn   = h.CashIn
		cashOut  = h.CashOut
		quantity = h.QuantityHeld
	)
	switch t.Side {
	case TradeSideBuy:
		cashIn, err = h.CashIn.Add(t.Volume(), conv)
		quantity += t.Quantity
	case TradeSideSell:
		cashOut, err = h.CashOut.Add(t.Volume(), conv)
		quantity -= t.Quantity
	}
	if err != nil {
		return err
	}

	value, err := h.valueAt(quantity, t.UnitPrice, conv)
	if err != nil {
		return err
	}

	h.Fees = fees
	h.CashIn = cashIn
	h.CashOut = cashOut
	h.QuantityHeld = quantity
	h.MarketValue = value
	return nil
}

// RecomputeMarketValue refreshes only the mark-to-market value:
// (unitPrice or the instrument's latest price) times (quantity or the held
// quantity), converted into the aggregate's currency. It is invoked after
// every trade and directly whenever the instrument's price series produces a
// new latest price.
func (h *HoldingAggregate) RecomputeMarketValue(ctx context.Context, quantity *int64, unitPrice *Money, prices PriceSource, conv Converter) error {
	count := h.QuantityHeld
	if quantity != nil {
		count = *quantity
	}

	var price Money
	switch {
	case unitPrice != nil:
		price = *unitPrice
	case prices != nil:
		latest, err := prices.LatestPrice(ctx, h.InstrumentID)
		if err != nil {
			return err
		}
		price = latest
	default:
		return fmt.Errorf("%w: no unit price and no price source", ErrNoPriceAvailable)
	}

	value, err := h.valueAt(count, price, conv)
	if err != nil {
		return err
	}
	h.QuantityHeld = count
	h.MarketValue = value
	return nil
}

// ReapplyHistory resets the aggregate to its zero state (currency preserved)
// and folds the trades back in, in ascending timestamp order, with the
// overdraft check disabled. Replaying the same history twice yields identical
// totals. A negative final quantity is not an error here; the caller should
// surface it as a data-integrity warning.
func (h *HoldingAggregate) ReapplyHistory(trades []*TradeEvent, conv Converter) error {
	ordered := make([]*TradeEvent, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	h.QuantityHeld = 0
	h.CashIn = ZeroMoney(h.Currency)
	h.CashOut = ZeroMoney(h.Currency)
	h.Fees = ZeroMoney(h.Currency)
	h.MarketValue = ZeroMoney(h.Currency)

	for _, t := range ordered {
		if err := h.ApplyTrade(t, false, conv); err != nil {
			return fmt.Errorf("reapply trade %s: %w", t.ID, err)
		}
	}
	return nil
}

// RebaseCurrency converts cash in, cash out, fees and market value into
// newCurrency and then switches the aggregate's currency. It fails
// atomically: when any conversion fails, no field is updated.
func (h *HoldingAggregate) RebaseCurrency(newCurrency string, conv Converter) error {
	cashIn, err := h.CashIn.Convert(newCurrency, conv)
	if err != nil {
		return err
	}
	cashOut, err := h.CashOut.Convert(newCurrency, conv)
	if err != nil {
		return err
	}
	fees, err := h.Fees.Convert(newCurrency, conv)
	if err != nil {
		return err
	}
	value, err := h.MarketValue.Convert(newCurrency, conv)
	if err != nil {
		return err
	}

	h.CashIn = cashIn
	h.CashOut = cashOut
	h.Fees = fees
	h.MarketValue = value
	h.Currency = newCurrency
	return nil
}

// valueAt prices count units at unitPrice in the aggregate's currency.
func (h *HoldingAggregate) valueAt(count int64, unitPrice Money, conv Converter) (Money, error) {
	value, err := unitPrice.Multiply(count)
	if err != nil {
		return Money{}, err
	}
	return value.Convert(h.Currency, conv)
}
