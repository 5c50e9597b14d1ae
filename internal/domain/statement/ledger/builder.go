package ledger

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fiscalgo/vatledger/internal/domain/statement/normalizer"
	"github.com/fiscalgo/vatledger/internal/domain/statement/sniffer"
	"github.com/fiscalgo/vatledger/internal/domain/statement/vattext"
)

// counterpartyFallbackLen caps the purpose-derived counterparty label.
const counterpartyFallbackLen = 60

// Builder assembles one canonical Transaction per statement data row
// under a fixed column role map.
type Builder struct {
	source    string
	roles     sniffer.ColumnRoleMap
	extractor *vattext.Extractor
}

// NewBuilder returns a builder for one statement file.
func NewBuilder(source string, roles sniffer.ColumnRoleMap, extractor *vattext.Extractor) *Builder {
	if extractor == nil {
		extractor = vattext.New()
	}
	return &Builder{source: source, roles: roles, extractor: extractor}
}

// Build converts a raw row into a Transaction. Rows that are empty
// across all cells are skipped, reported via ok == false.
func (b *Builder) Build(rowIndex int, row []string) (Transaction, bool) {
	if emptyRow(row) {
		return Transaction{}, false
	}

	purpose, _ := b.roles.Cell(row, sniffer.RolePurpose)

	amount, debit, credit, doubleEntry := b.resolveAmount(row)
	direction := b.resolveDirection(row, debit, credit, doubleEntry, amount)
	rate := b.resolveRate(row, purpose)
	vat := b.resolveVAT(row, purpose, amount, rate)

	tx := Transaction{
		ID:           rowID(b.source, rowIndex),
		Amount:       amount,
		VATRate:      rate,
		VATAmount:    vat,
		Counterparty: b.resolveCounterparty(row, purpose),
		Direction:    direction,
		Source:       b.source,
	}
	if cell, ok := b.roles.Cell(row, sniffer.RoleDate); ok {
		if date, parsed := normalizer.Date(cell); parsed {
			tx.Date = date
		}
	}
	return tx, true
}

// resolveAmount prefers an explicit debit/credit pair over the single
// signed amount column. Credits are positive, debits negative.
func (b *Builder) resolveAmount(row []string) (amount, debit, credit decimal.Decimal, doubleEntry bool) {
	debitCell, hasDebit := b.roles.Cell(row, sniffer.RoleDebitAmount)
	creditCell, hasCredit := b.roles.Cell(row, sniffer.RoleCreditAmount)

	if hasDebit || hasCredit {
		doubleEntry = true
		if d, ok := normalizer.Number(debitCell); ok {
			debit = d.Abs()
		}
		if c, ok := normalizer.Number(creditCell); ok {
			credit = c.Abs()
		}
		switch {
		case !credit.IsZero():
			amount = credit
		case !debit.IsZero():
			amount = debit.Neg()
		}
		return amount, debit, credit, doubleEntry
	}

	if cell, ok := b.roles.Cell(row, sniffer.RoleAmount); ok {
		if a, parsed := normalizer.Number(cell); parsed {
			amount = a
		}
	}
	return amount, debit, credit, doubleEntry
}

// resolveDirection classifies in strict priority order: recognized
// operation code, then debit/credit column placement, then amount sign.
// Incoming money (credit, positive) collects output VAT; outgoing money
// (debit, negative) carries deductible input VAT.
func (b *Builder) resolveDirection(row []string, debit, credit decimal.Decimal, doubleEntry bool, amount decimal.Decimal) Direction {
	if cell, ok := b.roles.Cell(row, sniffer.RoleOperationCode); ok {
		if dir, recognized := operationDirection(cell); recognized {
			return dir
		}
	}
	if doubleEntry {
		if !credit.IsZero() {
			return DirectionOutput
		}
		if !debit.IsZero() {
			return DirectionInput
		}
	}
	if amount.IsNegative() {
		return DirectionInput
	}
	return DirectionOutput
}

// operationDirection recognizes textual operation codes used by Russian
// statements. Unrecognized codes fall through to the next tier.
func operationDirection(code string) (Direction, bool) {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "" {
		return "", false
	}
	for _, token := range []string{"поступ", "приход", "зачисл", "кредит", "credit", "incoming"} {
		if strings.Contains(c, token) {
			return DirectionOutput, true
		}
	}
	for _, token := range []string{"списан", "расход", "дебет", "выдача", "debit", "outgoing"} {
		if strings.Contains(c, token) {
			return DirectionInput, true
		}
	}
	return "", false
}

// resolveRate prefers the explicit rate column; a non-empty cell wins
// even when it normalizes to zero. Otherwise the rate is inferred from a
// percentage near the VAT keyword in the purpose text.
func (b *Builder) resolveRate(row []string, purpose string) decimal.Decimal {
	if cell, ok := b.roles.Cell(row, sniffer.RoleVATRate); ok && strings.TrimSpace(cell) != "" {
		return normalizer.VATRate(cell)
	}
	return b.extractor.Rate(purpose)
}

// resolveVAT tries, in order: the explicit VAT amount column, extraction
// from the purpose text, and |amount| x rate rounded to 2 places.
func (b *Builder) resolveVAT(row []string, purpose string, amount, rate decimal.Decimal) decimal.Decimal {
	if cell, ok := b.roles.Cell(row, sniffer.RoleVATAmount); ok {
		if v, parsed := normalizer.Number(cell); parsed {
			return v.Abs()
		}
	}
	if extracted := b.extractor.Amount(purpose); !extracted.IsZero() {
		return extracted.Abs()
	}
	return amount.Abs().Mul(rate).Round(2)
}

func (b *Builder) resolveCounterparty(row []string, purpose string) string {
	if cell, ok := b.roles.Cell(row, sniffer.RoleCounterparty); ok && strings.TrimSpace(cell) != "" {
		return strings.TrimSpace(cell)
	}
	label := strings.TrimSpace(purpose)
	if runes := []rune(label); len(runes) > counterpartyFallbackLen {
		label = strings.TrimSpace(string(runes[:counterpartyFallbackLen]))
	}
	return label
}

// rowID derives a stable identity from the source filename and row
// index, so re-parsing the same file yields the same ids.
func rowID(source string, rowIndex int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("vatledger:%s:%d", source, rowIndex)))
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
