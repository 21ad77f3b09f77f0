package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// Header is the CSV header written by WriteCSV.
const Header = "id,date,value_date,amount,currency,type,payee,memo,check_number,reference,account_id,fee_derived"

const (
	numFields    = 12
	dateFormat   = "2006-01-02"
	colID        = 0
	colDate      = 1
	colValueDate = 2
	colAmount    = 3
	colCurrency  = 4
	colType      = 5
	colPayee     = 6
	colMemo      = 7
	colCheck     = 8
	colRef       = 9
	colAcctID    = 10
	colFee       = 11
)

// WriteCSV writes records to w, including the header.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range records {
		if err := cw.Write(MarshalRecord(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads records written by WriteCSV.
func ReadCSV(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading records CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Skip header row.
	var records []model.Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(r model.Record) []string {
	row := make([]string, numFields)
	row[colID] = r.ID
	row[colDate] = r.Date.Format(dateFormat)
	row[colValueDate] = r.ValueDate.Format(dateFormat)
	row[colAmount] = r.Amount.StringFixed(2)
	row[colCurrency] = r.Currency
	row[colType] = string(r.Type)
	row[colPayee] = r.Payee
	row[colMemo] = r.Memo
	row[colCheck] = r.CheckNumber
	row[colRef] = r.RefNumber
	row[colAcctID] = r.AccountID
	row[colFee] = strconv.FormatBool(r.FeeDerived)
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (model.Record, error) {
	if len(row) != numFields {
		return model.Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	date, err := time.Parse(dateFormat, row[colDate])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing date %q: %w", row[colDate], err)
	}
	valueDate, err := time.Parse(dateFormat, row[colValueDate])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing value_date %q: %w", row[colValueDate], err)
	}
	amount, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}
	typ, err := model.ParseTransactionType(row[colType])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing type: %w", err)
	}
	feeDerived, err := strconv.ParseBool(row[colFee])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing fee_derived %q: %w", row[colFee], err)
	}

	return model.Record{
		ID:          row[colID],
		Date:        date,
		ValueDate:   valueDate,
		Amount:      amount,
		Currency:    row[colCurrency],
		Type:        typ,
		Payee:       row[colPayee],
		Memo:        row[colMemo],
		CheckNumber: row[colCheck],
		RefNumber:   row[colRef],
		AccountID:   row[colAcctID],
		FeeDerived:  feeDerived,
	}, nil
}
