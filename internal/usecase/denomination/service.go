// Package denomination implements the currency cascade: changing the
// currency of a ledger root (a portfolio, or an instrument for its price
// series) re-denominates every dependent money field and only then updates
// the root's own currency code.
package denomination

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/stockledger-backend/internal/domain"
)

// DenominationService performs currency re-denomination of ledger roots.
type DenominationService struct {
	PortfolioRepo  domain.PortfolioRepository
	InstrumentRepo domain.InstrumentRepository
	HoldingRepo    domain.HoldingRepository
	TradeRepo      domain.TradeRepository
	PriceRepo      domain.PricePointRepository
	Converter      domain.Converter
	Log            *logrus.Logger
}

// NewDenominationService creates a new DenominationService instance.
func NewDenominationService(
	portfolioRepo domain.PortfolioRepository,
	instrumentRepo domain.InstrumentRepository,
	holdingRepo domain.HoldingRepository,
	tradeRepo domain.TradeRepository,
	priceRepo domain.PricePointRepository,
	converter domain.Converter,
	log *logrus.Logger,
) *DenominationService {
	if log == nil {
		log = logrus.New()
	}
	return &DenominationService{
		PortfolioRepo:  portfolioRepo,
		InstrumentRepo: instrumentRepo,
		HoldingRepo:    holdingRepo,
		TradeRepo:      tradeRepo,
		PriceRepo:      priceRepo,
		Converter:      converter,
		Log:            log,
	}
}

// SetPortfolioCurrency converts every holding and every trade of the
// portfolio into newCurrency, then updates the portfolio's currency code.
// Every dependent is converted in memory before anything is persisted, so a
// failing conversion leaves the whole tree untouched; the root's code is
// written only after all dependents were stored.
func (s *DenominationService) SetPortfolioCurrency(ctx context.Context, portfolioID uuid.UUID, newCurrency string) error {
	if !domain.ValidCurrency(newCurrency) {
		return errors.New("target currency must be a known ISO 4217 code")
	}

	portfolio, err := s.PortfolioRepo.GetByID(ctx, portfolioID)
	if err != nil {
		return err
	}
	if portfolio.Currency == newCurrency {
		return nil
	}

	holdings, err := s.HoldingRepo.ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return err
	}
	trades, err := s.TradeRepo.ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return err
	}

	// Convert the full tree first; the conversions are independent of each
	// other, so the first failure aborts with nothing persisted.
	for _, h := range holdings {
		if err := h.RebaseCurrency(newCurrency, s.Converter); err != nil {
			return fmt.Errorf("rebase holding %s: %w", h.ID, err)
		}
	}
	for _, t := range trades {
		if err := t.RebaseCurrency(newCurrency, s.Converter); err != nil {
			return fmt.Errorf("rebase trade %s: %w", t.ID, err)
		}
	}

	for _, h := range holdings {
		if err := s.HoldingRepo.Save(ctx, h); err != nil {
			return err
		}
	}
	for _, t := range trades {
		if err := s.TradeRepo.Update(ctx, t); err != nil {
			return err
		}
	}

	if err := s.PortfolioRepo.UpdateCurrency(ctx, portfolioID, newCurrency); err != nil {
		return err
	}

	s.Log.WithFields(logrus.Fields{
		"portfolio_id": portfolioID,
		"from":         portfolio.Currency,
		"to":           newCurrency,
		"holdings":     len(holdings),
		"trades":       len(trades),
	}).Info("portfolio currency changed")
	return nil
}

// SetInstrumentCurrency converts the instrument's full price series into
// newCurrency, then updates the instrument's currency code.
func (s *DenominationService) SetInstrumentCurrency(ctx context.Context, instrumentID uuid.UUID, newCurrency string) error {
	if !domain.ValidCurrency(newCurrency) {
		return errors.New("target currency must be a known ISO 4217 code")
	}

	instrument, err := s.InstrumentRepo.GetByID(ctx, instrumentID)
	if err != nil {
		return err
	}
	if instrument.Currency == newCurrency {
		return nil
	}

	series, err := s.PriceRepo.SeriesByInstrument(ctx, instrumentID)
	if err != nil {
		return err
	}
	if err := series.RebaseCurrency(newCurrency, s.Converter); err != nil {
		return err
	}

	if err := s.PriceRepo.SaveAll(ctx, series.Points); err != nil {
		return err
	}
	if err := s.InstrumentRepo.UpdateCurrency(ctx, instrumentID, newCurrency); err != nil {
		return err
	}

	s.Log.WithFields(logrus.Fields{
		"instrument_id": instrumentID,
		"from":          instrument.Currency,
		"to":            newCurrency,
		"points":        len(series.Points),
	}).Info("instrument currency changed")
	return nil
}
