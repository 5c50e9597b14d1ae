package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ComputeTotals sums VAT amounts into input/output buckets by direction.
// Records with violations and records whose VAT amount is exactly zero
// are ignored. All figures are rounded to 2 decimal places.
func ComputeTotals(txs []Transaction) Totals {
	var input, output decimal.Decimal
	for _, tx := range txs {
		if !tx.Valid() || tx.VATAmount.IsZero() {
			continue
		}
		switch tx.Direction {
		case DirectionInput:
			input = input.Add(tx.VATAmount)
		case DirectionOutput:
			output = output.Add(tx.VATAmount)
		}
	}
	input = input.Round(2)
	output = output.Round(2)
	return Totals{
		InputVAT:  input,
		OutputVAT: output,
		NetVAT:    output.Sub(input).Round(2),
	}
}

// Monthly groups valid, VAT-bearing transactions by calendar year-month
// and emits the per-month net VAT, sorted ascending by month key. Months
// with no VAT-bearing transactions are omitted.
func Monthly(txs []Transaction) []MonthlyBucket {
	type bucket struct {
		input  decimal.Decimal
		output decimal.Decimal
	}
	byMonth := make(map[string]*bucket)
	for _, tx := range txs {
		if !tx.Valid() || tx.VATAmount.IsZero() {
			continue
		}
		b, ok := byMonth[tx.MonthKey()]
		if !ok {
			b = &bucket{}
			byMonth[tx.MonthKey()] = b
		}
		switch tx.Direction {
		case DirectionInput:
			b.input = b.input.Add(tx.VATAmount)
		case DirectionOutput:
			b.output = b.output.Add(tx.VATAmount)
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	buckets := make([]MonthlyBucket, 0, len(months))
	for _, m := range months {
		b := byMonth[m]
		input := b.input.Round(2)
		output := b.output.Round(2)
		buckets = append(buckets, MonthlyBucket{
			Month:     m,
			InputVAT:  input,
			OutputVAT: output,
			NetVAT:    output.Sub(input).Round(2),
		})
	}
	return buckets
}
