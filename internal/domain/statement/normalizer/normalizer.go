// Package normalizer handles locale-ambiguous number and date parsing.
// Russian bank exports mix comma decimals, kopeck dashes and space
// thousands separators; dates arrive in ISO, dotted, slashed, Japanese
// and spreadsheet-serial forms.
package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// 202-83 -> 202.83 (kopeck notation)
	kopeckPattern = regexp.MustCompile(`^(\d+)-(\d{2})$`)
	// 05.06.17 or 5/6/17: two-digit years always land in 20xx
	shortDatePattern = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{2})$`)

	spaceStripper = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "")
)

// Number parses a locale-ambiguous numeric string. It fails soft: the
// second return value is false when no numeric value could be recovered,
// and the caller decides the fallback.
func Number(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, false
	}

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	s = spaceStripper.Replace(s)

	if m := kopeckPattern.FindStringSubmatch(s); m != nil {
		s = m[1] + "." + m[2]
	} else if strings.Contains(s, ",") {
		// When both separators appear the period is a thousands separator.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// Spreadsheet serial dates count days since 1899-12-30. The accepted
// range covers 1954..2118, wide enough for any statement and narrow
// enough not to swallow ordinary amounts.
const (
	serialMin = 20000
	serialMax = 80000
)

var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"02.01.2006",
	"02/01/2006",
	"2006-01-02",
	"2006/01/02",
	"2006年01月02日",
	"2006年1月2日",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Date parses a raw cell into a calendar date, discarding any
// time-of-day component. It never panics; unparseable input returns
// ok == false.
func Date(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	// Spreadsheet serial number, possibly with a time fraction.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < serialMin || serial > serialMax {
			return time.Time{}, false
		}
		return serialEpoch.AddDate(0, 0, int(serial)), true
	}

	// Two-digit years are post-2000 in these exports.
	if m := shortDatePattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return dateOnly(time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC)), month >= 1 && month <= 12 && day >= 1 && day <= 31
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

// CanonicalDate renders a parsed date in the canonical YYYY-MM-DD form.
func CanonicalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// VATRate normalizes a rate cell into a fraction. Values above 1 are
// percentages; negative or unparseable input normalizes to 0.
func VATRate(raw string) decimal.Decimal {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	d, ok := Number(s)
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(decimal.New(1, 0)) {
		d = d.Shift(-2)
	}
	return d
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
