package domain

import (
	"context"

	"github.com/google/uuid"
)

// Event contracts through which external collaborators (event dispatchers,
// persistence layers) deliver events into the engine. Implementations are
// in-process; there is no wire format at this boundary.
//
// Callers must deliver trade-created events exactly once per trade, in
// per-holding timestamp order, and must not invoke a handler re-entrantly
// for the same holding while a call is outstanding. Price-updated events are
// idempotent and order-independent across instruments.

// TradeEventHandler consumes trade-created events.
type TradeEventHandler interface {
	HandleTradeCreated(ctx context.Context, t *TradeEvent) error
}

// PriceEventHandler consumes price-updated events.
type PriceEventHandler interface {
	HandlePriceUpdated(ctx context.Context, instrumentID uuid.UUID, observed Money) error
}
