package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Converter is the pluggable currency conversion strategy. Conversion
// requires externally supplied, timestamp-matched exchange rates, so it is a
// collaborator responsibility: the engine never ships rates of its own.
// Implementations must return an error wrapping ErrConversionUnavailable when
// no rate is known for the requested pair and point in time.
type Converter interface {
	Convert(amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error)
}

// PriceSource supplies the latest known price for an instrument. It is owned
// by the collaborator holding instrument data (typically backed by the price
// point repository) and must fail with ErrNoPriceAvailable when the
// instrument has no price history yet.
type PriceSource interface {
	LatestPrice(ctx context.Context, instrumentID uuid.UUID) (Money, error)
}
