package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/stmtconv/internal/importer"
)

// Entry is one row in the run log: the outcome of converting one source file.
type Entry struct {
	Timestamp time.Time
	Source    string
	Profile   string
	Stats     importer.Stats
	Output    string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,source,profile,rows,records,fees_split,unsettled,zero_amount,unclassified,invalid,output"

// FileName is the run log location relative to the project directory.
var FileName = filepath.Join("logs", "run-log.csv")

const (
	numFields       = 11
	colTimestamp    = 0
	colSource       = 1
	colProfile      = 2
	colRows         = 3
	colRecords      = 4
	colFeesSplit    = 5
	colUnsettled    = 6
	colZeroAmount   = 7
	colUnclassified = 8
	colInvalid      = 9
	colOutput       = 10
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSource] = e.Source
	row[colProfile] = e.Profile
	row[colRows] = strconv.Itoa(e.Stats.Rows)
	row[colRecords] = strconv.Itoa(e.Stats.Records)
	row[colFeesSplit] = strconv.Itoa(e.Stats.FeesSplit)
	row[colUnsettled] = strconv.Itoa(e.Stats.Unsettled)
	row[colZeroAmount] = strconv.Itoa(e.Stats.ZeroAmount)
	row[colUnclassified] = strconv.Itoa(e.Stats.Unclassified)
	row[colInvalid] = strconv.Itoa(e.Stats.Invalid)
	row[colOutput] = e.Output
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	e := Entry{
		Timestamp: ts,
		Source:    record[colSource],
		Profile:   record[colProfile],
		Output:    record[colOutput],
	}
	counts := []struct {
		col  int
		name string
		dst  *int
	}{
		{colRows, "rows", &e.Stats.Rows},
		{colRecords, "records", &e.Stats.Records},
		{colFeesSplit, "fees_split", &e.Stats.FeesSplit},
		{colUnsettled, "unsettled", &e.Stats.Unsettled},
		{colZeroAmount, "zero_amount", &e.Stats.ZeroAmount},
		{colUnclassified, "unclassified", &e.Stats.Unclassified},
		{colInvalid, "invalid", &e.Stats.Invalid},
	}
	for _, c := range counts {
		n, err := strconv.Atoi(record[c.col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing %s %q: %w", c.name, record[c.col], err)
		}
		*c.dst = n
	}
	return e, nil
}

// Append writes entries to <root>/logs/run-log.csv, creating the file and header if needed.
func Append(root string, entries []Entry) error {
	path := filepath.Join(root, FileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/run-log.csv.
// Returns an empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
