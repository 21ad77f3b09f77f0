package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func englishColumns(t *testing.T) ColumnMap {
	t.Helper()
	cols, err := ResolveHeader(englishHeader(), DefaultProfile().Layout)
	require.NoError(t, err)
	return cols
}

func TestNormalize_TrimsAndDefaults(t *testing.T) {
	cols := englishColumns(t)
	raw := []string{
		" 2025-01-03 ", "Card payment", "   ", "", " Shop ", "2025-01-02", " snacks",
		"", "", "", "", "", "R1", "",
	}

	out, err := Normalize(raw, cols)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-03", out[0])
	assert.Equal(t, "0", out[2])
	assert.Equal(t, "0", out[3])
	assert.Equal(t, "Shop", out[4])
	assert.Equal(t, "snacks", out[6])

	// Input untouched.
	assert.Equal(t, " 2025-01-03 ", raw[0])
	assert.Equal(t, "   ", raw[2])
}

func TestNormalize_Unsettled(t *testing.T) {
	cols := englishColumns(t)
	raw := []string{
		"  ", "Card payment", "-15", "", "Cafe", "2025-01-04", "",
		"", "", "", "", "", "", "",
	}
	_, err := Normalize(raw, cols)
	assert.True(t, errors.Is(err, ErrUnsettledRow))
}

func TestNormalize_ShortRow(t *testing.T) {
	cols := englishColumns(t)
	_, err := Normalize([]string{"2025-01-03", "Card payment", "-15"}, cols)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortRow))
	assert.Contains(t, err.Error(), "got 3, need 14")
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input        string
		decimalComma bool
		want         string
		wantErr      bool
	}{
		{"100", false, "100.00", false},
		{"-12.50", false, "-12.50", false},
		{"0", false, "0.00", false},
		{"abc", false, "", true},
		{"12,50", false, "", true},
		{"1 234,50", true, "1234.50", false},
		{"-35,00", true, "-35.00", false},
		{"1 000", true, "1000.00", false},
		{"12x", true, "", true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.input, tt.decimalComma)
		if tt.wantErr {
			require.Error(t, err, "input: %q", tt.input)
			assert.True(t, errors.Is(err, ErrMalformedAmount))
			continue
		}
		require.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, got.StringFixed(2), "input: %q", tt.input)
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("31/01/2025", "02/01/2006")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), got)

	_, err = parseDate("", "02/01/2006")
	assert.True(t, errors.Is(err, ErrMalformedDate))

	_, err = parseDate("2025-01-31", "02/01/2006")
	assert.True(t, errors.Is(err, ErrMalformedDate))
}
