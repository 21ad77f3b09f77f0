package id

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFingerprint() Fingerprint {
	return Fingerprint{
		Date:      time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		ValueDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.RequireFromString("-450.00"),
		Payee:     "Albert Supermarket",
		Memo:      "groceries|VS: 123",
		Type:      "POS_PAYMENT",
		RefNumber: "REF42",
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	fps := []Fingerprint{testFingerprint(), testFingerprint(), testFingerprint()}
	fps[1].Amount = decimal.RequireFromString("12.5")

	run := func() []string {
		g := NewGenerator("1234567890")
		var ids []string
		for _, fp := range fps {
			ids = append(ids, g.Next(fp))
		}
		return ids
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

func TestGenerator_DisambiguatesDuplicates(t *testing.T) {
	g := NewGenerator("1234567890")
	a := g.Next(testFingerprint())
	b := g.Next(testFingerprint())
	c := g.Next(testFingerprint())

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 3, g.Occurrences(testFingerprint()))
}

func TestGenerator_UUIDFormat(t *testing.T) {
	g := NewGenerator("acct")
	got := g.Next(testFingerprint())
	assert.Len(t, got, 36)

	parsed, err := uuid.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestGenerator_AccountScoped(t *testing.T) {
	a := NewGenerator("1111").Next(testFingerprint())
	b := NewGenerator("2222").Next(testFingerprint())
	assert.NotEqual(t, a, b)
}

func TestFingerprintKey_FieldSensitivity(t *testing.T) {
	base := testFingerprint().Key()

	tests := []struct {
		name   string
		mutate func(*Fingerprint)
	}{
		{"date", func(f *Fingerprint) { f.Date = f.Date.AddDate(0, 0, 1) }},
		{"value date", func(f *Fingerprint) { f.ValueDate = f.ValueDate.AddDate(0, 0, 1) }},
		{"amount", func(f *Fingerprint) { f.Amount = decimal.NewFromInt(-449) }},
		{"payee", func(f *Fingerprint) { f.Payee = "Lidl" }},
		{"memo", func(f *Fingerprint) { f.Memo = "Fee: groceries" }},
		{"type", func(f *Fingerprint) { f.Type = "FEE" }},
		{"ref", func(f *Fingerprint) { f.RefNumber = "REF43" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := testFingerprint()
			tt.mutate(&fp)
			assert.NotEqual(t, base, fp.Key())
		})
	}
}

func TestFingerprintKey_Normalization(t *testing.T) {
	a := testFingerprint()
	b := testFingerprint()

	// Trailing zeros and whitespace runs do not change identity.
	b.Amount = decimal.RequireFromString("-450")
	b.Payee = "  Albert   Supermarket "
	assert.Equal(t, a.Key(), b.Key())

	// Decomposed "é" (e + combining acute) equals the precomposed form.
	a.Payee = "Caf\u00e9"
	b.Payee = "Cafe\u0301"
	assert.Equal(t, a.Key(), b.Key())
}
