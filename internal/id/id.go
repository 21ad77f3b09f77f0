package id

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

const dateFormat = "2006-01-02"

// Fingerprint holds the settled attributes an identifier is derived from.
type Fingerprint struct {
	Date        time.Time
	ValueDate   time.Time
	Amount      decimal.Decimal
	Payee       string
	Memo        string
	Type        string
	CheckNumber string
	RefNumber   string
}

// Key returns the canonical text form of f.
// Amounts are compared by value, so "100.00" and "100" give the same key.
func (f Fingerprint) Key() string {
	parts := []string{
		"date:" + f.Date.Format(dateFormat),
		"value:" + f.ValueDate.Format(dateFormat),
		"amount:" + f.Amount.String(),
		"payee:" + normalizeText(f.Payee),
		"memo:" + normalizeText(f.Memo),
		"type:" + f.Type,
		"check:" + normalizeText(f.CheckNumber),
		"ref:" + normalizeText(f.RefNumber),
	}
	return strings.Join(parts, "|")
}

// Namespace returns the UUID namespace identifiers for account are minted in.
func Namespace(account string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("stmtconv:"+normalizeText(account)))
}

// Generator derives identifiers for one statement stream. Identical
// fingerprints are told apart by how many times they occurred before, so the
// same input always yields the same sequence. Not safe for concurrent use.
type Generator struct {
	space uuid.UUID
	seen  map[string]int
}

// NewGenerator creates a Generator scoped to an account.
func NewGenerator(account string) *Generator {
	return &Generator{
		space: Namespace(account),
		seen:  make(map[string]int),
	}
}

// Next returns the identifier for f and records the occurrence.
func (g *Generator) Next(f Fingerprint) string {
	key := f.Key()
	n := g.seen[key]
	g.seen[key] = n + 1
	return uuid.NewSHA1(g.space, []byte(key+"|seq:"+strconv.Itoa(n))).String()
}

// Occurrences returns how many identifiers were issued for f so far.
func (g *Generator) Occurrences(f Fingerprint) int {
	return g.seen[f.Key()]
}

// normalizeText composes unicode (NFC) and collapses runs of whitespace.
func normalizeText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
