package importer

import (
	"errors"
	"fmt"
)

// Labels prefix the optional annotations appended to memo and payee.
type Labels struct {
	VariableSymbol string
	ConstantSymbol string
	SpecificSymbol string
	CardName       string
	CounterAccount string
}

// Profile describes one bank's export format.
type Profile struct {
	Name string

	// Layout names header columns. When nil, Positions addresses fields by index.
	Layout    Layout
	Positions map[Field]int
	HasHeader bool

	DateFormat   string
	DecimalComma bool
	Charset      string

	Rules         []Rule
	FeeLabel      string
	FeeMemoPrefix string
	Labels        Labels
}

// Validate checks that p can drive a Converter.
func (p Profile) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if p.Layout == nil && p.Positions == nil {
		errs = append(errs, errors.New("neither layout nor positions set"))
	}
	if p.Layout == nil && p.Positions != nil {
		if _, err := FixedColumns(p.Positions); err != nil {
			errs = append(errs, err)
		}
	}
	if p.DateFormat == "" {
		errs = append(errs, errors.New("date format is empty"))
	}
	if p.FeeLabel == "" {
		errs = append(errs, errors.New("fee label is empty"))
	}
	if err := ValidateRules(p.Rules); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}

// WithRules returns a copy of p classifying with rules.
func (p Profile) WithRules(rules []Rule) Profile {
	p.Rules = append([]Rule(nil), rules...)
	return p
}

// DefaultProfile reads exports with English headers and ISO dates.
func DefaultProfile() Profile {
	return Profile{
		Name: "default",
		Layout: Layout{
			FieldDate:           "Date",
			FieldMemo:           "Memo",
			FieldPayee:          "Payee",
			FieldAmount:         "Amount",
			FieldFeeAmount:      "Fee",
			FieldCheckNumber:    "Variable symbol",
			FieldRefNumber:      "Reference number",
			FieldPaymentType:    "Payment type",
			FieldPostingDate:    "Posting date",
			FieldCounterAccount: "Counter account",
			FieldVariableSymbol: "Variable symbol",
			FieldConstantSymbol: "Constant symbol",
			FieldSpecificSymbol: "Specific symbol",
			FieldCardName:       "Card name",
			FieldCategory:       "Category",
		},
		HasHeader:     true,
		DateFormat:    "2006-01-02",
		Charset:       "utf-8",
		Rules:         DefaultRules(),
		FeeLabel:      "Fee for transaction",
		FeeMemoPrefix: "Fee: ",
		Labels: Labels{
			VariableSymbol: "VS: ",
			ConstantSymbol: "KS: ",
			SpecificSymbol: "SS: ",
			CardName:       "Card: ",
			CounterAccount: "Account: ",
		},
	}
}

// AirBankProfile reads the Czech-language Air Bank CSV export.
func AirBankProfile() Profile {
	return Profile{
		Name: "airbank",
		Layout: Layout{
			FieldDate:           "Datum provedení",
			FieldMemo:           "Poznámka k úhradě",
			FieldPayee:          "Název protistrany",
			FieldAmount:         "Částka v měně účtu",
			FieldFeeAmount:      "Poplatek v měně účtu",
			FieldCheckNumber:    "Variabilní symbol",
			FieldRefNumber:      "Referenční číslo",
			FieldPaymentType:    "Typ úhrady",
			FieldPostingDate:    "Datum zaúčtování",
			FieldCounterAccount: "Číslo účtu protistrany",
			FieldVariableSymbol: "Variabilní symbol",
			FieldConstantSymbol: "Konstantní symbol",
			FieldSpecificSymbol: "Specifický symbol",
			FieldCardName:       "Název karty",
			FieldCategory:       "Kategorie plateb",
		},
		HasHeader:     true,
		DateFormat:    "02/01/2006",
		Charset:       "utf-8",
		Rules:         AirBankRules(),
		FeeLabel:      "Poplatek za transakci",
		FeeMemoPrefix: "Poplatek: ",
		Labels: Labels{
			VariableSymbol: "VS: ",
			ConstantSymbol: "KS: ",
			SpecificSymbol: "SS: ",
			CardName:       "Název karty: ",
			CounterAccount: "ÚČ: ",
		},
	}
}
