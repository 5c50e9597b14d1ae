// Package vattext recovers VAT amounts and rates from free-text payment
// purpose strings, e.g. "Оплата по счету 12 В т.ч. НДС (20%) 202-83 руб.".
package vattext

import (
	"regexp"
	"strings"

	"github.com/fiscalgo/vatledger/internal/domain/statement/normalizer"
	"github.com/shopspring/decimal"
)

const defaultWindow = 48

// Phrases that mark a transaction as VAT-exempt regardless of any
// numbers present in the text.
var exemptPhrases = []string{
	"без ндс",
	"ндс не облагается",
	"не облагается ндс",
	"без налога ндс",
	"without vat",
	"not subject to vat",
	"vat exempt",
	"vat free",
}

var keywords = []string{"ндс", "vat"}

var (
	// digits, optional space-separated thousands, then . , or - plus
	// exactly two decimals
	amountToken = regexp.MustCompile(`\d{1,3}(?:[ \x{00a0}]\d{3})+[.,-]\d{2}|\d+[.,-]\d{2}`)
	// a YYYY-MM prefix of an ISO date, which would otherwise read as a
	// kopeck-style amount
	truncatedDate = regexp.MustCompile(`^\d{4}-\d{2}$`)
	rateToken     = regexp.MustCompile(`(\d{1,2}(?:[.,]\d+)?)\s*%`)
)

// Extractor scans a bounded window after the VAT keyword. It is
// stateless; the same text always yields the same result.
type Extractor struct {
	window int
}

// New returns an extractor with the default scan window.
func New() *Extractor {
	return NewWindowed(defaultWindow)
}

// NewWindowed returns an extractor scanning n runes after the keyword.
func NewWindowed(n int) *Extractor {
	if n <= 0 {
		n = defaultWindow
	}
	return &Extractor{window: n}
}

// Amount extracts the VAT amount embedded in a payment purpose string.
// Exempt phrases short-circuit to zero; otherwise the last plausible
// numeric token in the window after the keyword wins, since explanatory
// numbers precede the final total in these statements.
func (e *Extractor) Amount(text string) decimal.Decimal {
	lower := strings.ToLower(text)
	for _, phrase := range exemptPhrases {
		if strings.Contains(lower, phrase) {
			return decimal.Zero
		}
	}

	window, ok := e.keywordWindow(lower)
	if !ok {
		return decimal.Zero
	}

	var last string
	for _, loc := range amountToken.FindAllStringIndex(window, -1) {
		token := window[loc[0]:loc[1]]
		if truncatedDate.MatchString(token) && loc[1] < len(window) && window[loc[1]] == '-' {
			continue
		}
		last = token
	}
	if last == "" {
		return decimal.Zero
	}

	amount, ok := normalizer.Number(last)
	if !ok {
		return decimal.Zero
	}
	return amount
}

// Rate extracts a VAT percentage mentioned near the keyword, as a
// fraction. Zero means no rate was found.
func (e *Extractor) Rate(text string) decimal.Decimal {
	lower := strings.ToLower(text)
	window, ok := e.keywordWindow(lower)
	if !ok {
		return decimal.Zero
	}
	m := rateToken.FindStringSubmatch(window)
	if m == nil {
		return decimal.Zero
	}
	return normalizer.VATRate(m[1])
}

// keywordWindow returns up to window runes following the first keyword
// occurrence.
func (e *Extractor) keywordWindow(lower string) (string, bool) {
	for _, kw := range keywords {
		idx := strings.Index(lower, kw)
		if idx < 0 {
			continue
		}
		rest := []rune(lower[idx+len(kw):])
		if len(rest) > e.window {
			rest = rest[:e.window]
		}
		return string(rest), true
	}
	return "", false
}
