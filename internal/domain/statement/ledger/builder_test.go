package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fiscalgo/vatledger/internal/domain/statement/sniffer"
)

func doubleEntryRoles() sniffer.ColumnRoleMap {
	return sniffer.ColumnRoleMap{
		sniffer.RoleDate:         0,
		sniffer.RoleDebitAmount:  1,
		sniffer.RoleCreditAmount: 2,
		sniffer.RoleCounterparty: 3,
		sniffer.RolePurpose:      4,
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func TestBuild_CreditRowIsOutput(t *testing.T) {
	b := NewBuilder("statement.csv", doubleEntryRoles(), nil)
	tx, ok := b.Build(1, []string{"15.01.2024", "", "100000", "ООО Ромашка", "Оплата по договору НДС 20% - 16666.67"})
	if !ok {
		t.Fatal("credit row was skipped")
	}
	if tx.Direction != DirectionOutput {
		t.Errorf("direction = %s, want OUTPUT", tx.Direction)
	}
	if !tx.Amount.Equal(mustDecimal(t, "100000")) {
		t.Errorf("amount = %s, want 100000", tx.Amount)
	}
	if !tx.VATAmount.Equal(mustDecimal(t, "16666.67")) {
		t.Errorf("vat amount = %s, want 16666.67 (extracted from text)", tx.VATAmount)
	}
}

func TestBuild_DebitRowIsInputWithNegativeAmount(t *testing.T) {
	b := NewBuilder("statement.csv", doubleEntryRoles(), nil)
	tx, ok := b.Build(2, []string{"20.01.2024", "50000", "", "АО Вектор", "Оплата поставщику"})
	if !ok {
		t.Fatal("debit row was skipped")
	}
	if tx.Direction != DirectionInput {
		t.Errorf("direction = %s, want INPUT", tx.Direction)
	}
	if !tx.Amount.Equal(mustDecimal(t, "-50000")) {
		t.Errorf("amount = %s, want -50000", tx.Amount)
	}
}

func TestBuild_OperationCodeBeatsColumnPlacement(t *testing.T) {
	roles := doubleEntryRoles()
	roles[sniffer.RoleOperationCode] = 5
	b := NewBuilder("statement.csv", roles, nil)

	// Debit column is filled but the operation code names an incoming
	// payment; the code wins.
	tx, ok := b.Build(3, []string{"20.01.2024", "50000", "", "АО Вектор", "Возврат", "поступление"})
	if !ok {
		t.Fatal("row was skipped")
	}
	if tx.Direction != DirectionOutput {
		t.Errorf("direction = %s, want OUTPUT from operation code", tx.Direction)
	}
}

func TestBuild_SignFallbackForSingleAmountColumn(t *testing.T) {
	roles := sniffer.ColumnRoleMap{
		sniffer.RoleDate:    0,
		sniffer.RoleAmount:  1,
		sniffer.RolePurpose: 2,
	}
	b := NewBuilder("statement.csv", roles, nil)

	tx, _ := b.Build(1, []string{"15.01.2024", "-1200,50", "Оплата услуг"})
	if tx.Direction != DirectionInput {
		t.Errorf("negative amount direction = %s, want INPUT", tx.Direction)
	}
	if !tx.Amount.Equal(mustDecimal(t, "-1200.5")) {
		t.Errorf("amount = %s, want -1200.5", tx.Amount)
	}

	tx, _ = b.Build(2, []string{"16.01.2024", "800", "Выручка"})
	if tx.Direction != DirectionOutput {
		t.Errorf("positive amount direction = %s, want OUTPUT", tx.Direction)
	}
}

func TestBuild_ExplicitVATColumnWinsOverText(t *testing.T) {
	roles := doubleEntryRoles()
	roles[sniffer.RoleVATAmount] = 5
	b := NewBuilder("statement.csv", roles, nil)

	tx, _ := b.Build(1, []string{"15.01.2024", "", "60000", "ООО Ромашка", "НДС 20% - 9999.99", "-8333.33"})
	if !tx.VATAmount.Equal(mustDecimal(t, "8333.33")) {
		t.Errorf("vat amount = %s, want absolute explicit column value 8333.33", tx.VATAmount)
	}
}

func TestBuild_ComputedVATFallback(t *testing.T) {
	roles := doubleEntryRoles()
	roles[sniffer.RoleVATRate] = 5
	b := NewBuilder("statement.csv", roles, nil)

	// No VAT column, no amount in text: |amount| x rate, 2 decimals.
	tx, _ := b.Build(1, []string{"15.01.2024", "", "1000", "ООО Ромашка", "Оплата", "20%"})
	if !tx.VATRate.Equal(mustDecimal(t, "0.2")) {
		t.Errorf("vat rate = %s, want 0.2", tx.VATRate)
	}
	if !tx.VATAmount.Equal(mustDecimal(t, "200")) {
		t.Errorf("vat amount = %s, want 200", tx.VATAmount)
	}
}

func TestBuild_RateInferredFromText(t *testing.T) {
	b := NewBuilder("statement.csv", doubleEntryRoles(), nil)
	tx, _ := b.Build(1, []string{"15.01.2024", "", "1000", "ООО Ромашка", "В т.ч. НДС (10%) 90-91"})
	if !tx.VATRate.Equal(mustDecimal(t, "0.1")) {
		t.Errorf("vat rate = %s, want 0.1 inferred from text", tx.VATRate)
	}
	if !tx.VATAmount.Equal(mustDecimal(t, "90.91")) {
		t.Errorf("vat amount = %s, want 90.91", tx.VATAmount)
	}
}

func TestBuild_CounterpartyFallsBackToPurpose(t *testing.T) {
	roles := sniffer.ColumnRoleMap{
		sniffer.RoleDate:    0,
		sniffer.RoleAmount:  1,
		sniffer.RolePurpose: 2,
	}
	b := NewBuilder("statement.csv", roles, nil)
	tx, _ := b.Build(1, []string{"15.01.2024", "100", "Оплата аренды за январь"})
	if tx.Counterparty != "Оплата аренды за январь" {
		t.Errorf("counterparty = %q, want purpose fallback", tx.Counterparty)
	}
}

func TestBuild_EmptyRowSkipped(t *testing.T) {
	b := NewBuilder("statement.csv", doubleEntryRoles(), nil)
	if _, ok := b.Build(1, []string{"", "  ", "", "", ""}); ok {
		t.Error("entirely empty row must be skipped")
	}
}

func TestBuild_DeterministicIDs(t *testing.T) {
	b := NewBuilder("statement.csv", doubleEntryRoles(), nil)
	row := []string{"15.01.2024", "", "100", "ООО Ромашка", "Оплата"}

	first, _ := b.Build(7, row)
	second, _ := b.Build(7, row)
	if first.ID != second.ID {
		t.Errorf("same file row produced different ids: %s vs %s", first.ID, second.ID)
	}

	other, _ := b.Build(8, row)
	if first.ID == other.ID {
		t.Error("different rows must get different ids")
	}

	otherFile, _ := NewBuilder("other.csv", doubleEntryRoles(), nil).Build(7, row)
	if first.ID == otherFile.ID {
		t.Error("different source files must get different ids")
	}
}
