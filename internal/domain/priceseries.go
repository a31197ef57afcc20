package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricePoint is one dated price observation for an instrument. At most one
// point exists per instrument per calendar date; intraday updates overwrite
// the point in place.
type PricePoint struct {
	ID           uuid.UUID
	InstrumentID uuid.UUID
	Amount       decimal.Decimal
	Timestamp    time.Time
}

// Price returns the observation as Money. The currency is owned by the
// instrument, not the point, so it has to be supplied by the series.
func (p *PricePoint) Price(currency string) Money {
	return Money{Amount: p.Amount, Currency: currency, Timestamp: p.Timestamp}
}

// ReportOutcome describes what Report did with an observation.
type ReportOutcome int

const (
	// ReportUnchanged means the observation was stale and discarded.
	ReportUnchanged ReportOutcome = iota
	// ReportCreated means a new point was created for a new date.
	ReportCreated
	// ReportUpdated means the same-date point was overwritten in place.
	ReportUpdated
)

// PriceSeries is the date-deduplicated price history of one instrument.
// Price feeds may deliver out-of-order or multiple updates per day; the
// series keeps at most one canonical observation per day while always
// reflecting the most recent intraday value. The stored latest timestamp
// never decreases.
type PriceSeries struct {
	InstrumentID uuid.UUID
	Currency     string
	Points       []PricePoint
}

// Report folds one observation into the series.
//
//   - empty series: a new point is created
//   - observation not newer than the stored latest: discarded
//   - newer observation on a new calendar date: a new point is created
//   - newer observation on the same date: the latest point is overwritten
//
// Observations in a foreign currency are converted into the series currency
// first, which requires a Converter. The affected point is returned so a
// storage collaborator knows what to persist.
func (s *PriceSeries) Report(observed Money, conv Converter) (ReportOutcome, *PricePoint, error) {
	if observed.Currency != s.Currency {
		converted, err := observed.Convert(s.Currency, conv)
		if err != nil {
			return ReportUnchanged, nil, err
		}
		observed = converted
	}

	latest := s.latestPoint()
	if latest == nil {
		s.Points = append(s.Points, PricePoint{
			ID:           uuid.New(),
			InstrumentID: s.InstrumentID,
			Amount:       observed.Amount,
			Timestamp:    observed.Timestamp,
		})
		return ReportCreated, &s.Points[len(s.Points)-1], nil
	}

	// Monotonicity invariant: the stored latest timestamp never decreases.
	if !observed.Timestamp.After(latest.Timestamp) {
		return ReportUnchanged, nil, nil
	}

	if dateAfter(observed.Timestamp, latest.Timestamp) {
		s.Points = append(s.Points, PricePoint{
			ID:           uuid.New(),
			InstrumentID: s.InstrumentID,
			Amount:       observed.Amount,
			Timestamp:    observed.Timestamp,
		})
		return ReportCreated, &s.Points[len(s.Points)-1], nil
	}

	// Same calendar date, strictly newer: overwrite in place.
	latest.Amount = observed.Amount
	latest.Timestamp = observed.Timestamp
	return ReportUpdated, latest, nil
}

// Latest returns the Money of the point with the maximum timestamp. It fails
// with ErrNoPriceAvailable when the series is empty.
func (s *PriceSeries) Latest() (Money, error) {
	latest := s.latestPoint()
	if latest == nil {
		return Money{}, ErrNoPriceAvailable
	}
	return latest.Price(s.Currency), nil
}

// RebaseCurrency converts every point into newCurrency and then switches the
// series currency. No point is modified when any conversion fails.
func (s *PriceSeries) RebaseCurrency(newCurrency string, conv Converter) error {
	converted := make([]Money, len(s.Points))
	for i := range s.Points {
		value, err := s.Points[i].Price(s.Currency).Convert(newCurrency, conv)
		if err != nil {
			return err
		}
		converted[i] = value
	}
	for i := range s.Points {
		s.Points[i].Amount = converted[i].Amount
		s.Points[i].Timestamp = converted[i].Timestamp
	}
	s.Currency = newCurrency
	return nil
}

func (s *PriceSeries) latestPoint() *PricePoint {
	var latest *PricePoint
	for i := range s.Points {
		if latest == nil || s.Points[i].Timestamp.After(latest.Timestamp) {
			latest = &s.Points[i]
		}
	}
	return latest
}

// dateAfter reports whether a falls on a later UTC calendar date than b.
func dateAfter(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
