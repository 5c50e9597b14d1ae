// Package sniffer locates the real header row inside a statement and
// maps column positions to semantic roles. Bank exports carry preamble
// rows and name the same column differently across languages, so
// matching runs over a multilingual synonym table with a guarded fuzzy
// fallback for typo'd headers.
package sniffer

import (
	"strings"
	"unicode"

	"github.com/schollz/closestmatch"
)

// Role identifies the semantic meaning of a statement column.
type Role string

const (
	RoleDate          Role = "date"
	RoleAmount        Role = "amount"
	RoleDebitAmount   Role = "debit_amount"
	RoleCreditAmount  Role = "credit_amount"
	RoleVATRate       Role = "vat_rate"
	RoleVATAmount     Role = "vat_amount"
	RoleCounterparty  Role = "counterparty"
	RolePurpose       Role = "payment_purpose"
	RoleOperationCode Role = "operation_code"
)

// ColumnRoleMap maps a role to a zero-based column index. Built once per
// file from its header row; absent roles mean "no data for this row".
type ColumnRoleMap map[Role]int

// Cell returns the cell for a role in the given row, reporting whether
// the role is mapped and in range.
func (m ColumnRoleMap) Cell(row []string, role Role) (string, bool) {
	idx, ok := m[role]
	if !ok || idx < 0 || idx >= len(row) {
		return "", false
	}
	return row[idx], true
}

// Header phrases that mark the date column; their presence identifies
// the header row itself.
var (
	dateHeaderExact   = []string{"дата", "date", "日付"}
	dateHeaderPartial = []string{"дата проводки", "дата операции"}
)

type roleSynonyms struct {
	role    Role
	exact   []string
	partial []string
	exclude []string
}

// Ordered so that specific roles (VAT, debit/credit) claim their columns
// before the generic amount role can substring-match them.
var synonymTable = []roleSynonyms{
	{
		role:    RoleVATRate,
		exact:   []string{"ставка ндс", "ндс %", "% ндс", "vat rate", "税率"},
		partial: []string{"ставка ндс", "ставка налога", "vat rate"},
	},
	{
		role:    RoleVATAmount,
		exact:   []string{"ндс", "сумма ндс", "vat", "vat amount", "税額"},
		partial: []string{"сумма ндс", "в т ч ндс", "including vat"},
		exclude: []string{"ставка", "rate", "%"},
	},
	{
		role:    RoleDate,
		exact:   dateHeaderExact,
		partial: []string{"дата проводки", "дата операции", "дата документа", "transaction date", "booking date"},
	},
	{
		role:    RoleDebitAmount,
		exact:   []string{"дебет", "debit", "расход", "списание"},
		partial: []string{"по дебету", "сумма списания", "debit amount"},
	},
	{
		role:    RoleCreditAmount,
		exact:   []string{"кредит", "credit", "приход", "поступление", "зачисление"},
		partial: []string{"по кредиту", "сумма поступления", "credit amount"},
	},
	{
		role:    RoleAmount,
		exact:   []string{"сумма", "amount", "金額"},
		partial: []string{"сумма операции", "сумма платежа", "transaction amount"},
		exclude: []string{"ндс", "vat", "дебет", "кредит", "debit", "credit"},
	},
	{
		role:    RoleCounterparty,
		exact:   []string{"контрагент", "counterparty", "плательщик", "получатель", "受取人"},
		partial: []string{"наименование контрагента", "наименование плательщика", "payer name", "beneficiary"},
	},
	{
		role:    RolePurpose,
		exact:   []string{"назначение платежа", "назначение", "описание", "description", "purpose", "摘要"},
		partial: []string{"назначение платежа", "описание операции", "payment details", "комментарий"},
	},
	{
		role:    RoleOperationCode,
		exact:   []string{"вид операции", "код операции", "operation code", "вид оп", "код"},
		partial: []string{"код вида операции", "вид операции", "operation type"},
	},
}

// FindHeader scans the first maxScan rows top-down for a cell naming the
// date column. When nothing matches, row 0 is assumed (degraded mode).
func FindHeader(rows [][]string, maxScan int) int {
	if maxScan <= 0 || maxScan > len(rows) {
		maxScan = len(rows)
	}
	for i := 0; i < maxScan; i++ {
		for _, cell := range rows[i] {
			c := normalizeHeader(cell)
			if c == "" {
				continue
			}
			for _, phrase := range dateHeaderExact {
				if c == phrase {
					return i
				}
			}
			for _, phrase := range dateHeaderPartial {
				if strings.Contains(c, phrase) {
					return i
				}
			}
		}
	}
	return 0
}

// ResolveColumns maps header cells to roles. First match wins per role;
// later duplicate headers for an already-claimed role are ignored. A
// single column may legitimately serve more than one role.
func ResolveColumns(header []string) ColumnRoleMap {
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = normalizeHeader(h)
	}

	roles := make(ColumnRoleMap)
	for _, syn := range synonymTable {
		for i, cell := range cells {
			if cell == "" || excluded(cell, syn.exclude) {
				continue
			}
			if matchPhrase(cell, syn.exact, syn.partial) {
				roles[syn.role] = i
				break
			}
		}
	}

	resolveFuzzy(cells, roles)
	return roles
}

// resolveFuzzy tries to recover typo'd headers for roles the synonym
// table left unmatched. A fuzzy hit is only accepted when the header and
// the matched phrase agree on their leading runes, which keeps the
// closest-match lookup from inventing mappings.
func resolveFuzzy(cells []string, roles ColumnRoleMap) {
	var phrases []string
	phraseRole := make(map[string]Role)
	for _, syn := range synonymTable {
		if _, claimed := roles[syn.role]; claimed {
			continue
		}
		for _, p := range append(append([]string{}, syn.exact...), syn.partial...) {
			phrases = append(phrases, p)
			phraseRole[p] = syn.role
		}
	}
	if len(phrases) == 0 {
		return
	}

	claimed := make(map[int]bool)
	for _, idx := range roles {
		claimed[idx] = true
	}

	cm := closestmatch.New(phrases, []int{2, 3})
	for i, cell := range cells {
		if cell == "" || claimed[i] || len([]rune(cell)) < 4 {
			continue
		}
		best := cm.Closest(cell)
		if best == "" || !samePrefix(cell, best, 4) {
			continue
		}
		role := phraseRole[best]
		if _, taken := roles[role]; !taken {
			roles[role] = i
		}
	}
}

// normalizeHeader lower-cases a header cell and strips punctuation while
// preserving Cyrillic and CJK letters, digits and the percent sign.
func normalizeHeader(cell string) string {
	lowered := strings.ToLower(strings.TrimSpace(cell))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '%':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, lowered)
	return strings.Join(strings.Fields(cleaned), " ")
}

func matchPhrase(cell string, exact, partial []string) bool {
	for _, p := range exact {
		if cell == p {
			return true
		}
	}
	for _, p := range partial {
		if strings.Contains(cell, p) {
			return true
		}
	}
	return false
}

func excluded(cell string, exclude []string) bool {
	for _, e := range exclude {
		if strings.Contains(cell, e) {
			return true
		}
	}
	return false
}

func samePrefix(a, b string, n int) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < n || len(rb) < n {
		return false
	}
	return string(ra[:n]) == string(rb[:n])
}
