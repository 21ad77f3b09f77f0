package importer

import (
	"errors"
	"fmt"
)

// Stream-level and row-level conditions. ErrUnsettledRow and ErrZeroAmount are
// recoverable: the converter absorbs them and reports them on Result.Skip.
var (
	ErrMissingColumn   = errors.New("missing column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrUnsettledRow    = errors.New("row has no posting date")
	ErrZeroAmount      = errors.New("row amount is zero")
	ErrMalformedAmount = errors.New("malformed amount")
	ErrMalformedDate   = errors.New("malformed date")
	ErrShortRow        = errors.New("row has too few fields")
	ErrConverterState  = errors.New("invalid converter state")
)

// MissingColumnError reports a field whose column could not be resolved.
type MissingColumnError struct {
	Field  Field
	Header string // configured header name, empty when the layout has none
}

func (e *MissingColumnError) Error() string {
	if e.Header == "" {
		return fmt.Sprintf("missing column for field %s: no header name configured", e.Field)
	}
	return fmt.Sprintf("missing column %q for field %s", e.Header, e.Field)
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// DuplicateColumnError reports a referenced header name that occurs more than once.
type DuplicateColumnError struct {
	Header string
	First  int
	Second int
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column %q at positions %d and %d", e.Header, e.First, e.Second)
}

func (e *DuplicateColumnError) Unwrap() error { return ErrDuplicateColumn }

// RowError is a fatal row-level error. Row is the 1-based line number in the
// source, header included.
type RowError struct {
	Row   int
	Field Field
	Value string
	Err   error
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
