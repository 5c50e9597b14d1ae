package ledger

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Limits are the validation bounds applied to every record.
type Limits struct {
	MinYear            int
	AmountCeiling      decimal.Decimal
	CounterpartyMinLen int
	CounterpartyMaxLen int
}

// DefaultLimits returns the standard validation bounds.
func DefaultLimits() Limits {
	return Limits{
		MinYear:            2000,
		AmountCeiling:      decimal.New(1, 9),
		CounterpartyMinLen: 2,
		CounterpartyMaxLen: 200,
	}
}

var one = decimal.New(1, 0)

// Validate applies the per-record business rules and returns the
// violations found, in rule order. It also canonicalizes the VAT fields:
// an inferred rate is clamped into [0,1] and a negative VAT amount is
// folded to its absolute value, so vat_amount >= 0 always holds after
// validation. Records are never discarded here.
func Validate(tx *Transaction, now time.Time, limits Limits) []Violation {
	var violations []Violation

	switch {
	case tx.Date.IsZero():
		violations = append(violations, ViolationDateUnparseable)
	case tx.Date.After(now):
		violations = append(violations, ViolationDateInFuture)
	case tx.Date.Year() < limits.MinYear:
		violations = append(violations, ViolationDateTooOld)
	}

	if tx.Amount.IsZero() {
		violations = append(violations, ViolationAmountZero)
	} else if tx.Amount.Abs().GreaterThan(limits.AmountCeiling) {
		violations = append(violations, ViolationAmountTooLarge)
	}

	if tx.VATRate.IsNegative() || tx.VATRate.GreaterThan(one) {
		violations = append(violations, ViolationVATRateOutOfRange)
		tx.VATRate = clampRate(tx.VATRate)
	}

	if tx.VATAmount.IsNegative() {
		violations = append(violations, ViolationVATAmountNegative)
		tx.VATAmount = tx.VATAmount.Abs()
	}

	violations = append(violations, counterpartyViolations(tx.Counterparty, limits)...)
	return violations
}

func counterpartyViolations(label string, limits Limits) []Violation {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return []Violation{ViolationCounterpartyMissing}
	}
	length := len([]rune(trimmed))
	switch {
	case length < limits.CounterpartyMinLen:
		return []Violation{ViolationCounterpartyTooShort}
	case length > limits.CounterpartyMaxLen:
		return []Violation{ViolationCounterpartyTooLong}
	}
	if purelyNumeric(trimmed) {
		return []Violation{ViolationCounterpartyNumeric}
	}
	return nil
}

func purelyNumeric(s string) bool {
	seen := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
		seen = true
	}
	return seen
}

func clampRate(rate decimal.Decimal) decimal.Decimal {
	if rate.IsNegative() {
		return decimal.Zero
	}
	return one
}
