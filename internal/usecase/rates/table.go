// Package rates provides a date-aware exchange-rate table implementing
// domain.Converter. The engine itself never owns rates; this converter is
// the reference collaborator, fed from whatever source the deployment has
// (fixtures, a nightly import, an admin endpoint). Without any loaded rate a
// conversion fails with ErrConversionUnavailable, exactly like running with
// no converter at all.
package rates

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/stockledger-backend/internal/domain"
)

type pair struct {
	from string
	to   string
}

type datedRate struct {
	effective time.Time
	rate      decimal.Decimal
}

// TableConverter resolves conversions from an in-memory table of dated
// rates. For a conversion as of time T it picks the newest rate whose
// effective date is not after T. Safe for concurrent use.
type TableConverter struct {
	mu    sync.RWMutex
	rates map[pair][]datedRate // sorted by effective, ascending
}

// NewTableConverter creates an empty table.
func NewTableConverter() *TableConverter {
	return &TableConverter{rates: make(map[pair][]datedRate)}
}

// SetRate registers a conversion rate effective from the given instant. The
// inverse rate is registered as well, so one quote serves both directions.
func (c *TableConverter) SetRate(from, to string, rate decimal.Decimal, effective time.Time) error {
	if !domain.ValidCurrency(from) || !domain.ValidCurrency(to) {
		return fmt.Errorf("%w: unknown currency pair %s/%s", domain.ErrIncompatibleOperand, from, to)
	}
	if rate.Sign() <= 0 {
		return fmt.Errorf("%w: rate must be positive", domain.ErrIncompatibleOperand)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(pair{from, to}, datedRate{effective: effective, rate: rate})
	c.insert(pair{to, from}, datedRate{effective: effective, rate: decimal.NewFromInt(1).Div(rate)})
	return nil
}

func (c *TableConverter) insert(p pair, r datedRate) {
	list := append(c.rates[p], r)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].effective.Before(list[j].effective)
	})
	c.rates[p] = list
}

// Convert implements domain.Converter.
func (c *TableConverter) Convert(amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	list := c.rates[pair{from, to}]
	var best *datedRate
	for i := range list {
		if list[i].effective.After(asOf) {
			break
		}
		best = &list[i]
	}
	if best == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: no %s->%s rate effective at %s",
			domain.ErrConversionUnavailable, from, to, asOf.Format(time.RFC3339))
	}
	return amount.Mul(best.rate), nil
}
