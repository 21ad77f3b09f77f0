package importer

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// numericFields default to "0" when blank.
var numericFields = []Field{FieldAmount, FieldFeeAmount}

// Normalize returns a cleaned copy of row: every field trimmed and blank
// amounts defaulted to "0". The input is never modified. Rows without a
// posting date are pending and yield ErrUnsettledRow.
func Normalize(row []string, cols ColumnMap) ([]string, error) {
	if len(row) < cols.Width() {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrShortRow, len(row), cols.Width())
	}
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	for _, f := range numericFields {
		if cols.get(out, f) == "" {
			cols.set(out, f, "0")
		}
	}
	if cols.get(out, FieldPostingDate) == "" {
		return nil, ErrUnsettledRow
	}
	return out, nil
}

// parseAmount parses a normalized amount. With decimalComma set, spaces are
// dropped as grouping and a comma is the decimal separator ("1 234,50").
func parseAmount(s string, decimalComma bool) (decimal.Decimal, error) {
	if decimalComma {
		s = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrMalformedAmount, err)
	}
	return d, nil
}

func parseDate(s, layout string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrMalformedDate)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedDate, err)
	}
	return t, nil
}
