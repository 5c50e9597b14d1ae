// Package ledger defines the canonical transaction record and the logic
// that builds, validates and aggregates it.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction classifies which VAT bucket a transaction feeds.
type Direction string

const (
	// DirectionInput marks VAT paid on purchases, deductible against
	// liability.
	DirectionInput Direction = "INPUT"
	// DirectionOutput marks VAT collected on sales, payable to the tax
	// authority.
	DirectionOutput Direction = "OUTPUT"
)

// Violation is a per-record business rule failure. Violated records stay
// in the output set but are excluded from aggregate totals.
type Violation string

const (
	ViolationDateUnparseable      Violation = "date_unparseable"
	ViolationDateInFuture         Violation = "date_in_future"
	ViolationDateTooOld           Violation = "date_too_old"
	ViolationAmountZero           Violation = "amount_zero"
	ViolationAmountTooLarge       Violation = "amount_too_large"
	ViolationVATRateOutOfRange    Violation = "vat_rate_out_of_range"
	ViolationVATAmountNegative    Violation = "vat_amount_negative"
	ViolationCounterpartyMissing  Violation = "counterparty_missing"
	ViolationCounterpartyTooShort Violation = "counterparty_too_short"
	ViolationCounterpartyTooLong  Violation = "counterparty_too_long"
	ViolationCounterpartyNumeric  Violation = "counterparty_numeric"
)

// Transaction is the canonical output record, one per statement data
// row. Immutable after validation; the amount sign encodes debit/credit
// and is independent of Direction.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	VATAmount    decimal.Decimal `json:"vat_amount"`
	Counterparty string          `json:"counterparty"`
	Direction    Direction       `json:"direction"`
	Source       string          `json:"source"`
	Violations   []Violation     `json:"violations,omitempty"`
}

// Valid reports whether the record carries no violations.
func (t Transaction) Valid() bool {
	return len(t.Violations) == 0
}

// MonthKey returns the calendar year-month the transaction falls into.
func (t Transaction) MonthKey() string {
	return t.Date.Format("2006-01")
}

// Totals summarizes VAT across a transaction set. Net > 0 is a liability
// to the tax authority; net < 0 is a refund owed to the taxpayer.
type Totals struct {
	InputVAT  decimal.Decimal `json:"input_vat"`
	OutputVAT decimal.Decimal `json:"output_vat"`
	NetVAT    decimal.Decimal `json:"net_vat"`
}

// MonthlyBucket is the net VAT contribution of one calendar month.
type MonthlyBucket struct {
	Month     string          `json:"month"`
	InputVAT  decimal.Decimal `json:"input_vat"`
	OutputVAT decimal.Decimal `json:"output_vat"`
	NetVAT    decimal.Decimal `json:"net_vat"`
}
