package importer

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func readAll(t *testing.T, r RowReader) [][]string {
	t.Helper()
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestNewCSVReader_Defaults(t *testing.T) {
	r, err := NewCSVReader(strings.NewReader("a,\"b,c\",d\n1,2\n"), ReaderOptions{})
	require.NoError(t, err)

	rows := readAll(t, r)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b,c", "d"}, rows[0])
	// Ragged rows are passed through for the normalizer to judge.
	assert.Equal(t, []string{"1", "2"}, rows[1])
}

func TestNewCSVReader_Windows1250(t *testing.T) {
	encoded, err := charmap.Windows1250.NewEncoder().String("Typ úhrady;Částka\nPlatba kartou;-1\n")
	require.NoError(t, err)

	r, err := NewCSVReader(strings.NewReader(encoded), ReaderOptions{Charset: "windows-1250", Delimiter: ';'})
	require.NoError(t, err)

	rows := readAll(t, r)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Typ úhrady", "Částka"}, rows[0])
}

func TestNewCSVReader_StripsBOM(t *testing.T) {
	r, err := NewCSVReader(strings.NewReader("\ufeffDate,Memo\n"), ReaderOptions{Charset: "UTF-8"})
	require.NoError(t, err)

	rows := readAll(t, r)
	require.Len(t, rows, 1)
	assert.Equal(t, "Date", rows[0][0])
}

func TestNewCSVReader_LazyQuotes(t *testing.T) {
	r, err := NewCSVReader(strings.NewReader("Shop \"Best\" Ltd,1\n"), ReaderOptions{})
	require.NoError(t, err)

	rows := readAll(t, r)
	require.Len(t, rows, 1)
	assert.Equal(t, `Shop "Best" Ltd`, rows[0][0])
}

func TestNewCSVReader_Errors(t *testing.T) {
	_, err := NewCSVReader(strings.NewReader(""), ReaderOptions{Charset: "klingon-8"})
	assert.Error(t, err)

	_, err = NewCSVReader(strings.NewReader(""), ReaderOptions{Delimiter: '"'})
	assert.Error(t, err)

	_, err = NewCSVReader(strings.NewReader(""), ReaderOptions{Delimiter: '\n'})
	assert.Error(t, err)
}
