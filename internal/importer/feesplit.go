package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// feeResolution is the outcome of weighing a row's principal against its fee.
type feeResolution struct {
	amount decimal.Decimal // amount of the record built from the row itself
	split  bool            // a fee record follows
}

// resolveFee decides how a row's amounts become records. A fee-only row
// keeps the fee as its amount. A row with both amounts splits.
func resolveFee(principal, fee decimal.Decimal) feeResolution {
	switch {
	case fee.IsZero():
		return feeResolution{amount: principal}
	case principal.IsZero():
		return feeResolution{amount: fee}
	default:
		return feeResolution{amount: principal, split: true}
	}
}

// feeSplitter synthesizes the row a fee record is built from.
type feeSplitter struct {
	cols       ColumnMap
	label      string
	memoPrefix string
}

// synthesize returns a copy of row describing only its fee. row is not modified.
func (s feeSplitter) synthesize(row []string) []string {
	out := make([]string, len(row))
	copy(out, row)
	s.cols.set(out, FieldAmount, s.cols.get(row, FieldFeeAmount))
	s.cols.set(out, FieldFeeAmount, "0")
	s.cols.set(out, FieldPaymentType, s.label)
	s.cols.set(out, FieldCategory, s.label)
	s.cols.set(out, FieldMemo, strings.TrimSpace(s.memoPrefix+s.cols.get(row, FieldMemo)))
	return out
}
