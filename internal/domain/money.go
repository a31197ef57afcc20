package domain

import (
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is the value object used for every monetary figure in the ledger:
// an amount, a 3-letter currency code and the instant the figure was
// established. Money is immutable; every operation returns a new instance,
// so values are safe to share between goroutines.
type Money struct {
	Amount    decimal.Decimal
	Currency  string
	Timestamp time.Time
}

// Operand is the typed contract for anything that can participate in Money
// arithmetic: it must expose an amount, a currency and a timestamp.
type Operand interface {
	MoneyAmount() decimal.Decimal
	MoneyCurrency() string
	MoneyTimestamp() time.Time
}

// ValidCurrency reports whether code is a known ISO 4217 currency code.
func ValidCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// NewMoney creates a Money with the given amount and currency, timestamped
// now. The currency code must be a known ISO 4217 code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if !ValidCurrency(currency) {
		return Money{}, fmt.Errorf("%w: unknown currency code %q", ErrIncompatibleOperand, currency)
	}
	return Money{Amount: amount, Currency: currency, Timestamp: time.Now().UTC()}, nil
}

// NewMoneyAt creates a Money with an explicit timestamp.
func NewMoneyAt(amount decimal.Decimal, currency string, ts time.Time) (Money, error) {
	m, err := NewMoney(amount, currency)
	if err != nil {
		return Money{}, err
	}
	m.Timestamp = ts
	return m, nil
}

// ZeroMoney returns a zero-amount Money in the given currency, timestamped
// now. The currency code is taken as-is; it is validated at the ledger-root
// boundary.
func ZeroMoney(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency, Timestamp: time.Now().UTC()}
}

// MoneyAmount implements Operand.
func (m Money) MoneyAmount() decimal.Decimal { return m.Amount }

// MoneyCurrency implements Operand.
func (m Money) MoneyCurrency() string { return m.Currency }

// MoneyTimestamp implements Operand.
func (m Money) MoneyTimestamp() time.Time { return m.Timestamp }

// Add sums the receiver and the operand. If currencies differ, the operand is
// converted into the receiver's currency first, which requires a Converter;
// a nil Converter makes the addition fail with ErrConversionUnavailable. The
// result carries the later of the two input timestamps.
func (m Money) Add(other Operand, conv Converter) (Money, error) {
	if other == nil {
		return Money{}, fmt.Errorf("%w: nil summand", ErrIncompatibleOperand)
	}

	amount := other.MoneyAmount()
	ts := other.MoneyTimestamp()
	if other.MoneyCurrency() != m.Currency {
		converted, err := Money{Amount: amount, Currency: other.MoneyCurrency(), Timestamp: ts}.Convert(m.Currency, conv)
		if err != nil {
			return Money{}, err
		}
		amount = converted.Amount
		ts = converted.Timestamp
	}

	result := Money{Amount: m.Amount.Add(amount), Currency: m.Currency, Timestamp: m.Timestamp}
	if ts.After(result.Timestamp) {
		result.Timestamp = ts
	}
	return result, nil
}

// Multiply scales the amount by scalar, leaving the currency untouched and
// resetting the timestamp to now. The scalar may be any integer, float,
// string or decimal.Decimal; anything else fails with ErrIncompatibleOperand.
func (m Money) Multiply(scalar any) (Money, error) {
	factor, err := toDecimal(scalar)
	if err != nil {
		return Money{}, err
	}
	return Money{
		Amount:    m.Amount.Mul(factor),
		Currency:  m.Currency,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Convert returns the value denominated in target. Converting into the
// receiver's own currency is the identity. Any other conversion is delegated
// to the Converter; with a nil Converter the operation fails with
// ErrConversionUnavailable.
func (m Money) Convert(target string, conv Converter) (Money, error) {
	if target == m.Currency {
		return m, nil
	}
	if conv == nil {
		return Money{}, fmt.Errorf("%w: no converter configured for %s->%s", ErrConversionUnavailable, m.Currency, target)
	}
	amount, err := conv.Convert(m.Amount, m.Currency, target, m.Timestamp)
	if err != nil {
		return Money{}, fmt.Errorf("convert %s->%s: %w", m.Currency, target, err)
	}
	return Money{Amount: amount, Currency: target, Timestamp: m.Timestamp}, nil
}

// Equal reports structural equality: amount, currency and timestamp all match.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency &&
		m.Amount.Equal(other.Amount) &&
		m.Timestamp.Equal(other.Timestamp)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

func (m Money) String() string {
	return fmt.Sprintf("%s %s (%s)", m.Currency, m.Amount, m.Timestamp.Format(time.RFC3339))
}

// toDecimal coerces the supported scalar types into a decimal.Decimal.
func toDecimal(scalar any) (decimal.Decimal, error) {
	switch v := scalar.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint32:
		return decimal.NewFromInt(int64(v)), nil
	case uint64:
		return decimal.NewFromUint64(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", ErrIncompatibleOperand, v)
		}
		return d, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: cannot coerce %T to decimal", ErrIncompatibleOperand, scalar)
	}
}
