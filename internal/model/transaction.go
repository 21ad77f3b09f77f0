package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is a normalized, bank-agnostic transaction produced from one export row.
type Record struct {
	ID            string
	Date          time.Time       // execution/settlement date
	ValueDate     time.Time       // posting date
	Amount        decimal.Decimal // negative = money out, positive = money in
	Currency      string
	Payee         string
	Memo          string
	Type          TransactionType
	CheckNumber   string
	RefNumber     string
	AccountID     string
	AccountType   string
	InstitutionID string
	FeeDerived    bool // split out of a row that also carried a principal amount
}
