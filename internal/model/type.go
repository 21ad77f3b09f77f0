package model

import (
	"fmt"
	"strings"
)

// TransactionType classifies a record. Exactly one per record.
type TransactionType string

const (
	TypeDebit            TransactionType = "DEBIT"
	TypeInterest         TransactionType = "INTEREST"
	TypeFee              TransactionType = "FEE"
	TypeTransfer         TransactionType = "TRANSFER"
	TypeATMWithdrawal    TransactionType = "ATM_WITHDRAWAL"
	TypePOSPayment       TransactionType = "POS_PAYMENT"
	TypeDirectDebit      TransactionType = "DIRECT_DEBIT"
	TypeRecurringPayment TransactionType = "RECURRING_PAYMENT"
	TypeOther            TransactionType = "OTHER"
)

var transactionTypes = []TransactionType{
	TypeDebit,
	TypeInterest,
	TypeFee,
	TypeTransfer,
	TypeATMWithdrawal,
	TypePOSPayment,
	TypeDirectDebit,
	TypeRecurringPayment,
	TypeOther,
}

// TransactionTypes returns every known type in declaration order.
func TransactionTypes() []TransactionType {
	out := make([]TransactionType, len(transactionTypes))
	copy(out, transactionTypes)
	return out
}

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	for _, known := range transactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTransactionType parses a type name, ignoring case and surrounding space.
// "atm_withdrawal" -> TypeATMWithdrawal
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return t, nil
}
