package importer

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// Fallback is the type assigned to payment types no rule matches.
const Fallback = model.TypeTransfer

// Rule maps a payment-type prefix to a transaction type.
type Rule struct {
	Prefix string                `yaml:"prefix"`
	Type   model.TransactionType `yaml:"type"`
}

// DefaultRules is the English rule table.
func DefaultRules() []Rule {
	return []Rule{
		{"Tax on interest", model.TypeDebit},
		{"Credit interest", model.TypeInterest},
		{"Fee for ", model.TypeFee},
		{"Incoming payment", model.TypeTransfer},
		{"Refund", model.TypeTransfer},
		{"Outgoing payment", model.TypeTransfer},
		{"Cash withdrawal", model.TypeATMWithdrawal},
		{"Card payment", model.TypePOSPayment},
		{"Direct debit", model.TypeDirectDebit},
		{"Standing order", model.TypeRecurringPayment},
	}
}

// AirBankRules is the rule table for Czech-language Air Bank exports.
func AirBankRules() []Rule {
	return []Rule{
		{"Daň z úroku", model.TypeDebit},
		{"Kreditní úrok", model.TypeInterest},
		{"Poplatek za ", model.TypeFee},
		{"Příchozí úhrada", model.TypeTransfer},
		{"Vrácení peněz", model.TypeTransfer},
		{"Odchozí úhrada", model.TypeTransfer},
		{"Výběr hotovosti", model.TypeATMWithdrawal},
		{"Platba kartou", model.TypePOSPayment},
		{"Inkaso", model.TypeDirectDebit},
		{"Trvalý", model.TypeRecurringPayment},
	}
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules parses a YAML rule table of the form
//
//	rules:
//	  - prefix: "Card payment"
//	    type: POS_PAYMENT
func LoadRules(data []byte) ([]Rule, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rules: table is empty")
	}
	for i := range f.Rules {
		t, err := model.ParseTransactionType(string(f.Rules[i].Type))
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		f.Rules[i].Type = t
	}
	if err := ValidateRules(f.Rules); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

// LoadRulesFile reads a YAML rule table from path.
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return LoadRules(data)
}

// ValidateRules checks that every rule has a prefix and a known type.
func ValidateRules(rules []Rule) error {
	for i, r := range rules {
		if r.Prefix == "" {
			return fmt.Errorf("rule %d: empty prefix", i+1)
		}
		if !r.Type.Valid() {
			return fmt.Errorf("rule %d: unknown transaction type %q", i+1, r.Type)
		}
	}
	return nil
}

// Classifier maps payment-type text to a transaction type. Rules are tried in
// table order and the first prefix match wins.
type Classifier struct {
	rules []Rule
	log   zerolog.Logger
}

// NewClassifier builds a classifier over a copy of rules.
func NewClassifier(rules []Rule, log zerolog.Logger) (*Classifier, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return &Classifier{rules: append([]Rule(nil), rules...), log: log}, nil
}

// Match returns the type of the first rule whose prefix starts paymentType.
// Matching is case-sensitive.
func (c *Classifier) Match(paymentType string) (model.TransactionType, bool) {
	for _, r := range c.rules {
		if strings.HasPrefix(paymentType, r.Prefix) {
			return r.Type, true
		}
	}
	return "", false
}

// Classify is Match with the TRANSFER fallback. Unmatched text is logged and
// reported through the second return value.
func (c *Classifier) Classify(paymentType string) (model.TransactionType, bool) {
	if t, ok := c.Match(paymentType); ok {
		return t, true
	}
	c.log.Warn().
		Str("payment_type", paymentType).
		Str("fallback", string(Fallback)).
		Msg("unexpected payment type")
	return Fallback, false
}

// Rules returns a copy of the rule table.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}
