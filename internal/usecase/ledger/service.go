package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/stockledger-backend/internal/domain"
	"github.com/simaogato/stockledger-backend/internal/usecase/keylock"
)

// ValuationCache is the invalidation sink for cached holding valuations.
// The ledger service only evicts; reads happen in the query path.
type ValuationCache interface {
	Invalidate(ctx context.Context, portfolioID, instrumentID uuid.UUID) error
}

// LedgerService folds trade events into holding aggregates. It is the live
// write path: trades arrive here exactly once, in per-holding timestamp
// order, and the overdraft check is always enforced. Historical replays go
// through ReplayHolding instead, which trusts the stored history.
type LedgerService struct {
	PortfolioRepo domain.PortfolioRepository
	HoldingRepo   domain.HoldingRepository
	TradeRepo     domain.TradeRepository
	Converter     domain.Converter
	Cache         ValuationCache
	Locks         *keylock.KeyedMutex
	Log           *logrus.Logger
}

// NewLedgerService creates a new LedgerService instance. Converter and cache
// may be nil: without a converter, cross-currency trades fail with
// ErrConversionUnavailable; without a cache, invalidation is skipped.
func NewLedgerService(
	portfolioRepo domain.PortfolioRepository,
	holdingRepo domain.HoldingRepository,
	tradeRepo domain.TradeRepository,
	converter domain.Converter,
	cache ValuationCache,
	locks *keylock.KeyedMutex,
	log *logrus.Logger,
) *LedgerService {
	if locks == nil {
		locks = keylock.New()
	}
	if log == nil {
		log = logrus.New()
	}
	return &LedgerService{
		PortfolioRepo: portfolioRepo,
		HoldingRepo:   holdingRepo,
		TradeRepo:     tradeRepo,
		Converter:     converter,
		Cache:         cache,
		Locks:         locks,
		Log:           log,
	}
}

func holdingKey(portfolioID, instrumentID uuid.UUID) string {
	return "holding:" + portfolioID.String() + ":" + instrumentID.String()
}

// RecordTrade applies a live trade to its holding aggregate, creating the
// aggregate on the first trade for the pair, and persists both the trade and
// the updated aggregate. A SELL without (enough) holdings fails with
// ErrInsufficientHoldings and nothing is stored.
func (s *LedgerService) RecordTrade(ctx context.Context, t *domain.TradeEvent) (*domain.HoldingAggregate, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	key := holdingKey(t.PortfolioID, t.InstrumentID)
	s.Locks.Lock(key)
	defer s.Locks.Unlock(key)

	holding, err := s.HoldingRepo.GetByKey(ctx, t.PortfolioID, t.InstrumentID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		// First trade for this pair. Selling an instrument that was never
		// bought is an overdraft by definition.
		if t.Side == domain.TradeSideSell {
			return nil, fmt.Errorf("%w: no holding for instrument %s", domain.ErrInsufficientHoldings, t.InstrumentID)
		}
		portfolio, perr := s.PortfolioRepo.GetByID(ctx, t.PortfolioID)
		if perr != nil {
			return nil, perr
		}
		holding = domain.NewHolding(t.PortfolioID, t.InstrumentID, portfolio.Currency)
	}

	if err := holding.ApplyTrade(t, true, s.Converter); err != nil {
		return nil, err
	}

	if err := s.TradeRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	if err := s.HoldingRepo.Save(ctx, holding); err != nil {
		return nil, err
	}

	s.invalidate(ctx, t.PortfolioID, t.InstrumentID)

	s.Log.WithFields(logrus.Fields{
		"portfolio_id":  t.PortfolioID,
		"instrument_id": t.InstrumentID,
		"side":          t.Side,
		"quantity":      t.Quantity,
	}).Info("trade recorded")

	return holding, nil
}

// HandleTradeCreated implements domain.TradeEventHandler for event-driven
// collaborators (the Kafka intake).
func (s *LedgerService) HandleTradeCreated(ctx context.Context, t *domain.TradeEvent) error {
	_, err := s.RecordTrade(ctx, t)
	return err
}

// ReplayHolding resets a holding aggregate and reapplies its full trade
// history in timestamp order with the overdraft check disabled. Used to
// recover from currency changes or data corrections. A negative final
// quantity is logged as a data-integrity warning, not returned as an error.
func (s *LedgerService) ReplayHolding(ctx context.Context, portfolioID, instrumentID uuid.UUID) (*domain.HoldingAggregate, error) {
	key := holdingKey(portfolioID, instrumentID)
	s.Locks.Lock(key)
	defer s.Locks.Unlock(key)

	holding, err := s.HoldingRepo.GetByKey(ctx, portfolioID, instrumentID)
	if err != nil {
		return nil, err
	}

	trades, err := s.TradeRepo.ListByHolding(ctx, portfolioID, instrumentID)
	if err != nil {
		return nil, err
	}

	if err := holding.ReapplyHistory(trades, s.Converter); err != nil {
		return nil, err
	}

	if holding.QuantityHeld < 0 {
		s.Log.WithFields(logrus.Fields{
			"portfolio_id":  portfolioID,
			"instrument_id": instrumentID,
			"quantity_held": holding.QuantityHeld,
		}).Warn("trade history is inconsistent: negative quantity after replay")
	}

	if err := s.HoldingRepo.Save(ctx, holding); err != nil {
		return nil, err
	}

	s.invalidate(ctx, portfolioID, instrumentID)
	return holding, nil
}

// GetHolding retrieves one aggregate.
func (s *LedgerService) GetHolding(ctx context.Context, portfolioID, instrumentID uuid.UUID) (*domain.HoldingAggregate, error) {
	return s.HoldingRepo.GetByKey(ctx, portfolioID, instrumentID)
}

// ListHoldings retrieves all aggregates of a portfolio.
func (s *LedgerService) ListHoldings(ctx context.Context, portfolioID uuid.UUID) ([]*domain.HoldingAggregate, error) {
	return s.HoldingRepo.ListByPortfolio(ctx, portfolioID)
}

func (s *LedgerService) invalidate(ctx context.Context, portfolioID, instrumentID uuid.UUID) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, portfolioID, instrumentID); err != nil {
		// The cache is best-effort; stale entries expire via TTL.
		s.Log.WithError(err).Warn("failed to invalidate valuation cache")
	}
}
