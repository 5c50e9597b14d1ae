package normalizer

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"202-83", "202.83", true}, // kopeck notation
		{"1 234,56", "1234.56", true},
		{"1 234,56", "1234.56", true}, // NBSP thousands
		{"-45,23", "-45.23", true},
		{"1.234,56", "1234.56", true},
		{"100000", "100000", true},
		{"  12.50  ", "12.5", true},
		{"", "0", false},
		{"n/a", "0", false},
	}

	for _, tc := range tests {
		got, ok := Number(tc.input)
		if ok != tc.ok {
			t.Errorf("Number(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		want := decimal.RequireFromString(tc.expected)
		if !got.Equal(want) {
			t.Errorf("Number(%q) = %s, want %s", tc.input, got, want)
		}
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string // canonical YYYY-MM-DD, "" for unparseable
	}{
		{"31.12.2023", "2023-12-31"},
		{"2023-12-31", "2023-12-31"},
		{"31/12/2023", "2023-12-31"},
		{"05.06.17", "2017-06-05"}, // two-digit year lands in 20xx
		{"2023年12月31日", "2023-12-31"},
		{"2023/12/31", "2023-12-31"},
		{"44196", "2020-12-31"}, // spreadsheet serial
		{"15.01.2024 10:30:00", "2024-01-15"},
		{"", ""},
		{"not a date", ""},
		{"123", ""}, // number but not a plausible serial
	}

	for _, tc := range tests {
		got, ok := Date(tc.input)
		if tc.expected == "" {
			if ok {
				t.Errorf("Date(%q) parsed to %v, want failure", tc.input, got)
			}
			continue
		}
		if !ok {
			t.Errorf("Date(%q) failed, want %s", tc.input, tc.expected)
			continue
		}
		if CanonicalDate(got) != tc.expected {
			t.Errorf("Date(%q) = %s, want %s", tc.input, CanonicalDate(got), tc.expected)
		}
	}
}

func TestDate_CanonicalEqualityAcrossFormats(t *testing.T) {
	a, ok := Date("31.12.2023")
	if !ok {
		t.Fatal("dotted date failed to parse")
	}
	b, ok := Date("2023-12-31")
	if !ok {
		t.Fatal("ISO date failed to parse")
	}
	if !a.Equal(b) {
		t.Errorf("dotted and ISO forms differ: %v vs %v", a, b)
	}
}

func TestVATRate(t *testing.T) {
	fifth := decimal.RequireFromString("0.2")
	for _, input := range []string{"20", "20%", "0.2"} {
		if got := VATRate(input); !got.Equal(fifth) {
			t.Errorf("VATRate(%q) = %s, want 0.2", input, got)
		}
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"20,5", "0.205"},
		{"10%", "0.1"},
		{"0", "0"},
		{"-5", "0"},
		{"", "0"},
		{"garbage", "0"},
	}
	for _, tc := range tests {
		want := decimal.RequireFromString(tc.expected)
		if got := VATRate(tc.input); !got.Equal(want) {
			t.Errorf("VATRate(%q) = %s, want %s", tc.input, got, want)
		}
	}
}
