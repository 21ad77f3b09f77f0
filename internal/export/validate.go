package export

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	RecordID    string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.RecordID, e.Description)
}

// Validate enforces 5 invariants on records about to be written.
func Validate(records []model.Record) []ValidationError {
	var errs []ValidationError
	hundred := decimal.NewFromInt(100)
	seen := make(map[string]int)

	for i, r := range records {
		// Invariant 1: Non-zero amount.
		if r.Amount.IsZero() {
			errs = append(errs, ValidationError{
				Invariant:   1,
				RecordID:    r.ID,
				Description: "amount is zero",
			})
		}

		// Invariant 2: No more than 2 decimal places.
		if !r.Amount.Mul(hundred).Equal(r.Amount.Mul(hundred).Floor()) {
			errs = append(errs, ValidationError{
				Invariant:   2,
				RecordID:    r.ID,
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", r.Amount),
			})
		}

		// Invariant 3: Unique, non-empty IDs.
		if r.ID == "" {
			errs = append(errs, ValidationError{
				Invariant:   3,
				RecordID:    fmt.Sprintf("record %d", i+1),
				Description: "missing id",
			})
		} else if first, dup := seen[r.ID]; dup {
			errs = append(errs, ValidationError{
				Invariant:   3,
				RecordID:    r.ID,
				Description: fmt.Sprintf("duplicate id, first used by record %d", first),
			})
		} else {
			seen[r.ID] = i + 1
		}

		// Invariant 4: Known transaction type.
		if !r.Type.Valid() {
			errs = append(errs, ValidationError{
				Invariant:   4,
				RecordID:    r.ID,
				Description: fmt.Sprintf("unknown transaction type %q", r.Type),
			})
		}

		// Invariant 5: Currency present.
		if r.Currency == "" {
			errs = append(errs, ValidationError{
				Invariant:   5,
				RecordID:    r.ID,
				Description: "missing currency",
			})
		}
	}
	return errs
}
