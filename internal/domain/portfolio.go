package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Portfolio represents a portfolio entity in the domain layer. A portfolio
// is a ledger root: it owns the currency code that every money field of its
// holdings and trades must match. Changing the currency cascades through all
// dependents (see the denomination service).
type Portfolio struct {
	ID       uuid.UUID
	Name     string
	Currency string
}

// Validate ensures the portfolio adheres to domain rules
// Returns an error if validation fails
func (p *Portfolio) Validate() error {
	if p.Name == "" {
		return errors.New("portfolio name cannot be empty")
	}
	if !ValidCurrency(p.Currency) {
		return errors.New("portfolio currency must be a known ISO 4217 code")
	}
	return nil
}
