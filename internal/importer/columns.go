package importer

import (
	"errors"
	"fmt"
	"strings"
)

// Field is a canonical column name.
type Field string

const (
	FieldDate           Field = "date"
	FieldMemo           Field = "memo"
	FieldPayee          Field = "payee"
	FieldAmount         Field = "amount"
	FieldFeeAmount      Field = "fee_amount"
	FieldCheckNumber    Field = "check_number"
	FieldRefNumber      Field = "reference_number"
	FieldPaymentType    Field = "payment_type"
	FieldPostingDate    Field = "posting_date"
	FieldCounterAccount Field = "counter_account"
	FieldVariableSymbol Field = "variable_symbol"
	FieldConstantSymbol Field = "constant_symbol"
	FieldSpecificSymbol Field = "specific_symbol"
	FieldCardName       Field = "card_name"
	FieldCategory       Field = "category"
)

// requiredFields are dereferenced for every row. Order fixes which missing
// field is reported first.
var requiredFields = []Field{
	FieldDate,
	FieldMemo,
	FieldPayee,
	FieldAmount,
	FieldFeeAmount,
	FieldCheckNumber,
	FieldRefNumber,
	FieldPaymentType,
	FieldPostingDate,
	FieldCounterAccount,
	FieldVariableSymbol,
	FieldConstantSymbol,
	FieldSpecificSymbol,
	FieldCardName,
}

// optionalFields are written when present and ignored otherwise.
var optionalFields = []Field{FieldCategory}

// RequiredFields returns the fields every ColumnMap must resolve.
func RequiredFields() []Field {
	out := make([]Field, len(requiredFields))
	copy(out, requiredFields)
	return out
}

// Layout names the header of each field. Several fields may share a header.
type Layout map[Field]string

// ColumnMap resolves fields to row positions. Read-only once built.
type ColumnMap struct {
	pos   map[Field]int
	width int
}

// Index returns the position of f.
func (m ColumnMap) Index(f Field) (int, bool) {
	i, ok := m.pos[f]
	return i, ok
}

// Has reports whether f resolved to a column.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m.pos[f]
	return ok
}

// Width is the minimum number of fields a row needs for every lookup to be in range.
func (m ColumnMap) Width() int { return m.width }

// get returns the value of f, or "" when f is unmapped. Callers check Width first.
func (m ColumnMap) get(row []string, f Field) string {
	i, ok := m.pos[f]
	if !ok {
		return ""
	}
	return row[i]
}

// set overwrites f in row; a no-op when f is unmapped.
func (m ColumnMap) set(row []string, f Field, v string) {
	if i, ok := m.pos[f]; ok {
		row[i] = v
	}
}

func newColumnMap() ColumnMap {
	return ColumnMap{pos: make(map[Field]int)}
}

func (m *ColumnMap) put(f Field, i int) {
	m.pos[f] = i
	if i+1 > m.width {
		m.width = i + 1
	}
}

// ResolveHeader builds a ColumnMap from a header row. Every required field's
// header must be present exactly once; column order does not matter.
func ResolveHeader(header []string, layout Layout) (ColumnMap, error) {
	index := make(map[string]int, len(header))
	dupes := make(map[string]int)
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, seen := index[name]; seen {
			if _, recorded := dupes[name]; !recorded {
				dupes[name] = i
			}
			continue
		}
		index[name] = i
	}

	lookup := func(f Field) (int, error) {
		name, ok := layout[f]
		if !ok || name == "" {
			return 0, &MissingColumnError{Field: f}
		}
		i, ok := index[name]
		if !ok {
			return 0, &MissingColumnError{Field: f, Header: name}
		}
		if second, dup := dupes[name]; dup {
			return 0, &DuplicateColumnError{Header: name, First: i, Second: second}
		}
		return i, nil
	}

	cols := newColumnMap()
	for _, f := range requiredFields {
		i, err := lookup(f)
		if err != nil {
			return ColumnMap{}, err
		}
		cols.put(f, i)
	}
	for _, f := range optionalFields {
		if _, configured := layout[f]; !configured {
			continue
		}
		i, err := lookup(f)
		if err != nil {
			if errors.Is(err, ErrMissingColumn) {
				continue
			}
			return ColumnMap{}, err
		}
		cols.put(f, i)
	}
	return cols, nil
}

// FixedColumns builds a ColumnMap from known positions, for exports without a
// usable header.
func FixedColumns(positions map[Field]int) (ColumnMap, error) {
	cols := newColumnMap()
	for _, f := range requiredFields {
		i, ok := positions[f]
		if !ok {
			return ColumnMap{}, &MissingColumnError{Field: f}
		}
		if i < 0 {
			return ColumnMap{}, fmt.Errorf("field %s: negative position %d", f, i)
		}
		cols.put(f, i)
	}
	for _, f := range optionalFields {
		i, ok := positions[f]
		if !ok {
			continue
		}
		if i < 0 {
			return ColumnMap{}, fmt.Errorf("field %s: negative position %d", f, i)
		}
		cols.put(f, i)
	}
	return cols, nil
}
