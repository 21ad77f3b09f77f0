package model

import "strings"

// AccountType is the OFX account type of the exported statement.
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeMoneyMrkt  AccountType = "MONEYMRKT"
	AccountTypeCreditLine AccountType = "CREDITLINE"
	AccountTypeCD         AccountType = "CD"
)

// ValidAccountType reports whether s names a known account type (case-insensitive).
func ValidAccountType(s string) bool {
	switch AccountType(strings.ToUpper(s)) {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeMoneyMrkt, AccountTypeCreditLine, AccountTypeCD:
		return true
	}
	return false
}

// Account holds the static statement attributes stamped onto every record.
// None of them influence classification.
type Account struct {
	ID            string
	Type          AccountType
	InstitutionID string
	Currency      string
}

// Stamp copies the account attributes onto r.
func (a Account) Stamp(r *Record) {
	r.AccountID = a.ID
	r.AccountType = string(a.Type)
	r.InstitutionID = a.InstitutionID
	r.Currency = a.Currency
}
