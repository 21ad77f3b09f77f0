package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReaderOptions configure the delimited-text row source.
type ReaderOptions struct {
	Charset   string // IANA name; empty means utf-8
	Delimiter rune   // zero means ','
}

// RowReader yields one tokenized row per call and io.EOF at the end.
// *csv.Reader satisfies it.
type RowReader interface {
	Read() ([]string, error)
}

// NewCSVReader decodes r from the configured charset and tokenizes it.
// A leading byte-order mark selects the matching Unicode decoder.
func NewCSVReader(r io.Reader, opts ReaderOptions) (*csv.Reader, error) {
	name := opts.Charset
	if name == "" {
		name = "utf-8"
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q: not supported", name)
	}

	comma := opts.Delimiter
	if comma == 0 {
		comma = ','
	}
	if comma == '"' || comma == '\r' || comma == '\n' || !utf8.ValidRune(comma) || comma == utf8.RuneError {
		return nil, fmt.Errorf("invalid delimiter %q", comma)
	}

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())))
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr, nil
}
