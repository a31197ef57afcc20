package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Instrument represents a tradeable instrument in the domain layer. The
// instrument is the ledger root for its own price series: the series and all
// its points are denominated in the instrument's currency. An instrument
// cannot be deleted while any holding references it.
type Instrument struct {
	ID       uuid.UUID
	Symbol   string
	Name     string
	Currency string
}

// Validate ensures the instrument adheres to domain rules
// Returns an error if validation fails
func (i *Instrument) Validate() error {
	if i.Symbol == "" {
		return errors.New("instrument symbol cannot be empty")
	}
	if !ValidCurrency(i.Currency) {
		return errors.New("instrument currency must be a known ISO 4217 code")
	}
	return nil
}
