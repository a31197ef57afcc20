package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/stockledger-backend/internal/domain"
	"github.com/simaogato/stockledger-backend/internal/usecase/keylock"
)

// ValuationCache is the invalidation sink for cached holding valuations.
type ValuationCache interface {
	Invalidate(ctx context.Context, portfolioID, instrumentID uuid.UUID) error
}

// PricingService maintains per-instrument price series and propagates new
// latest prices into the holdings that reference the instrument.
type PricingService struct {
	PriceRepo   domain.PricePointRepository
	HoldingRepo domain.HoldingRepository
	Converter   domain.Converter
	Cache       ValuationCache
	Locks       *keylock.KeyedMutex
	Log         *logrus.Logger
}

// NewPricingService creates a new PricingService instance.
func NewPricingService(
	priceRepo domain.PricePointRepository,
	holdingRepo domain.HoldingRepository,
	converter domain.Converter,
	cache ValuationCache,
	locks *keylock.KeyedMutex,
	log *logrus.Logger,
) *PricingService {
	if locks == nil {
		locks = keylock.New()
	}
	if log == nil {
		log = logrus.New()
	}
	return &PricingService{
		PriceRepo:   priceRepo,
		HoldingRepo: holdingRepo,
		Converter:   converter,
		Cache:       cache,
		Locks:       locks,
		Log:         log,
	}
}

// ReportPrice folds one price observation into the instrument's series.
// Stale observations are discarded; a new latest price triggers a
// mark-to-market recompute of every active holding referencing the
// instrument. Inactive holdings are skipped.
func (s *PricingService) ReportPrice(ctx context.Context, instrumentID uuid.UUID, observed domain.Money) (domain.ReportOutcome, error) {
	seriesKey := "series:" + instrumentID.String()
	s.Locks.Lock(seriesKey)
	series, err := s.PriceRepo.SeriesByInstrument(ctx, instrumentID)
	if err != nil {
		s.Locks.Unlock(seriesKey)
		return domain.ReportUnchanged, err
	}

	outcome, point, err := series.Report(observed, s.Converter)
	if err != nil || outcome == domain.ReportUnchanged {
		s.Locks.Unlock(seriesKey)
		return outcome, err
	}

	if err := s.PriceRepo.Save(ctx, point); err != nil {
		s.Locks.Unlock(seriesKey)
		return domain.ReportUnchanged, err
	}
	latest, err := series.Latest()
	s.Locks.Unlock(seriesKey)
	if err != nil {
		return domain.ReportUnchanged, err
	}

	s.Log.WithFields(logrus.Fields{
		"instrument_id": instrumentID,
		"price":         latest.Amount,
		"currency":      latest.Currency,
	}).Info("price series updated")

	if err := s.revalueHoldings(ctx, instrumentID, latest); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// HandlePriceUpdated implements domain.PriceEventHandler for event-driven
// collaborators (the Kafka intake).
func (s *PricingService) HandlePriceUpdated(ctx context.Context, instrumentID uuid.UUID, observed domain.Money) error {
	_, err := s.ReportPrice(ctx, instrumentID, observed)
	return err
}

// LatestPrice implements domain.PriceSource on top of the price repository.
func (s *PricingService) LatestPrice(ctx context.Context, instrumentID uuid.UUID) (domain.Money, error) {
	series, err := s.PriceRepo.SeriesByInstrument(ctx, instrumentID)
	if err != nil {
		return domain.Money{}, err
	}
	return series.Latest()
}

// revalueHoldings recomputes the market value of every active holding that
// references the instrument, at the new latest price.
func (s *PricingService) revalueHoldings(ctx context.Context, instrumentID uuid.UUID, latest domain.Money) error {
	holdings, err := s.HoldingRepo.ListActiveByInstrument(ctx, instrumentID)
	if err != nil {
		return err
	}

	for _, h := range holdings {
		key := "holding:" + h.PortfolioID.String() + ":" + h.InstrumentID.String()
		s.Locks.Lock(key)
		err := h.RecomputeMarketValue(ctx, nil, &latest, nil, s.Converter)
		if err == nil {
			err = s.HoldingRepo.Save(ctx, h)
		}
		s.Locks.Unlock(key)
		if err != nil {
			return err
		}

		if s.Cache != nil {
			if cerr := s.Cache.Invalidate(ctx, h.PortfolioID, h.InstrumentID); cerr != nil {
				s.Log.WithError(cerr).Warn("failed to invalidate valuation cache")
			}
		}
	}
	return nil
}
