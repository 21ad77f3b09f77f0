package importer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// englishHeader is the default profile's header in a non-canonical order.
func englishHeader() []string {
	return []string{
		"Posting date", "Payment type", "Amount", "Fee", "Payee", "Date", "Memo",
		"Counter account", "Variable symbol", "Constant symbol", "Specific symbol",
		"Card name", "Reference number", "Category",
	}
}

func without(header []string, name string) []string {
	var out []string
	for _, h := range header {
		if h != name {
			out = append(out, h)
		}
	}
	return out
}

func TestResolveHeader_ShuffledOrder(t *testing.T) {
	cols, err := ResolveHeader(englishHeader(), DefaultProfile().Layout)
	require.NoError(t, err)

	tests := []struct {
		field Field
		want  int
	}{
		{FieldPostingDate, 0},
		{FieldPaymentType, 1},
		{FieldAmount, 2},
		{FieldFeeAmount, 3},
		{FieldPayee, 4},
		{FieldDate, 5},
		{FieldMemo, 6},
		{FieldCheckNumber, 8},
		{FieldVariableSymbol, 8},
		{FieldCategory, 13},
	}
	for _, tt := range tests {
		got, ok := cols.Index(tt.field)
		require.True(t, ok, "field %s", tt.field)
		assert.Equal(t, tt.want, got, "field %s", tt.field)
	}
	assert.Equal(t, 14, cols.Width())
}

func TestResolveHeader_MissingColumn(t *testing.T) {
	_, err := ResolveHeader(without(englishHeader(), "Payee"), DefaultProfile().Layout)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, FieldPayee, missing.Field)
	assert.Equal(t, "Payee", missing.Header)
}

func TestResolveHeader_FieldNotInLayout(t *testing.T) {
	layout := DefaultProfile().Layout
	delete(layout, FieldCardName)

	_, err := ResolveHeader(englishHeader(), layout)
	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, FieldCardName, missing.Field)
	assert.Empty(t, missing.Header)
}

func TestResolveHeader_DuplicateColumn(t *testing.T) {
	header := append(englishHeader(), "Amount")
	_, err := ResolveHeader(header, DefaultProfile().Layout)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateColumn))

	var dup *DuplicateColumnError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "Amount", dup.Header)
	assert.Equal(t, 2, dup.First)
	assert.Equal(t, 14, dup.Second)
}

func TestResolveHeader_UnreferencedDuplicatesIgnored(t *testing.T) {
	header := append(englishHeader(), "", "Note", "", "Note")
	_, err := ResolveHeader(header, DefaultProfile().Layout)
	assert.NoError(t, err)
}

func TestResolveHeader_TrimsAndStripsBOM(t *testing.T) {
	header := englishHeader()
	header[0] = "\ufeffPosting date "
	header[4] = "  Payee"

	cols, err := ResolveHeader(header, DefaultProfile().Layout)
	require.NoError(t, err)
	i, _ := cols.Index(FieldPostingDate)
	assert.Equal(t, 0, i)
}

func TestResolveHeader_OptionalCategory(t *testing.T) {
	cols, err := ResolveHeader(without(englishHeader(), "Category"), DefaultProfile().Layout)
	require.NoError(t, err)
	assert.False(t, cols.Has(FieldCategory))
	assert.Equal(t, 13, cols.Width())
}

func TestFixedColumns(t *testing.T) {
	positions := make(map[Field]int)
	for i, f := range RequiredFields() {
		positions[f] = i
	}

	cols, err := FixedColumns(positions)
	require.NoError(t, err)
	assert.Equal(t, len(RequiredFields()), cols.Width())
	assert.False(t, cols.Has(FieldCategory))

	positions[FieldCategory] = 20
	cols, err = FixedColumns(positions)
	require.NoError(t, err)
	assert.Equal(t, 21, cols.Width())
}

func TestFixedColumns_Errors(t *testing.T) {
	positions := make(map[Field]int)
	for i, f := range RequiredFields() {
		positions[f] = i
	}

	delete(positions, FieldPostingDate)
	_, err := FixedColumns(positions)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	positions[FieldPostingDate] = -1
	_, err = FixedColumns(positions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative position")
}

func TestRequiredFields_Copy(t *testing.T) {
	fields := RequiredFields()
	fields[0] = "bogus"
	assert.Equal(t, FieldDate, RequiredFields()[0])
}
