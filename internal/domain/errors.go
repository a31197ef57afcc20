package domain

import "errors"

// Sentinel errors for the ledger engine. All of them are reported
// synchronously to the immediate caller; nothing is retried or swallowed
// internally. Use errors.Is to classify wrapped instances.
var (
	// ErrIncompatibleOperand signals a malformed arithmetic operand (nil
	// operand, unsupported scalar type). This indicates an integration bug
	// and should be treated as fatal by the caller.
	ErrIncompatibleOperand = errors.New("incompatible operand")

	// ErrConversionUnavailable signals that a currency conversion was
	// required but no Converter was supplied, or the supplied Converter
	// could not produce a rate.
	ErrConversionUnavailable = errors.New("currency conversion unavailable")

	// ErrInsufficientHoldings signals an overdraft: a SELL for more units
	// than currently held. The triggering operation is aborted without
	// mutation.
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrNoPriceAvailable signals that a valuation was requested before any
	// price point exists for the instrument.
	ErrNoPriceAvailable = errors.New("no price available")

	// ErrNotFound is returned by repositories when an entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInstrumentInUse is returned when deleting an instrument that is
	// still referenced by at least one holding.
	ErrInstrumentInUse = errors.New("instrument is referenced by holdings")
)
