package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtconv/internal/id"
	"github.com/cleared-dev/stmtconv/internal/model"
)

// State is the position of a Converter in its stream.
type State int

const (
	StateAwaitingHeader State = iota
	StateStreamingRows
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingHeader:
		return "awaiting_header"
	case StateStreamingRows:
		return "streaming_rows"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Stats counts what happened to the rows of one stream.
type Stats struct {
	Rows         int // data rows seen, header excluded
	Records      int
	FeesSplit    int
	Unsettled    int
	ZeroAmount   int
	Unclassified int
	Invalid      int
}

// Result holds the records produced by one row: none, one, or a principal
// followed by its fee.
type Result struct {
	records [2]model.Record
	n       int

	// Skip is ErrUnsettledRow or ErrZeroAmount when the row produced nothing.
	Skip error
}

// Records returns the produced records in output order.
func (r *Result) Records() []model.Record { return r.records[:r.n] }

// Len is the number of produced records.
func (r *Result) Len() int { return r.n }

func (r *Result) add(rec model.Record) {
	r.records[r.n] = rec
	r.n++
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger for diagnostics. The default discards them.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Converter) { c.log = l }
}

// WithAccount sets the account stamped onto every record and scoping identifiers.
func WithAccount(a model.Account) Option {
	return func(c *Converter) { c.account = a }
}

// WithSkipInvalid makes Convert log and count fatal row errors instead of aborting.
func WithSkipInvalid(skip bool) Option {
	return func(c *Converter) { c.skipInvalid = skip }
}

// WithDateFormat overrides the profile's date layout.
func WithDateFormat(layout string) Option {
	return func(c *Converter) {
		if layout != "" {
			c.profile.DateFormat = layout
		}
	}
}

// Converter turns the rows of one statement into records. Not safe for
// concurrent use; build one per stream.
type Converter struct {
	profile     Profile
	account     model.Account
	classifier  *Classifier
	ids         *id.Generator
	fees        feeSplitter
	cols        ColumnMap
	state       State
	line        int
	stats       Stats
	log         zerolog.Logger
	skipInvalid bool
}

// NewConverter validates p and prepares a converter for one stream.
func NewConverter(p Profile, opts ...Option) (*Converter, error) {
	c := &Converter{
		profile: p,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.profile.Validate(); err != nil {
		return nil, err
	}

	cl, err := NewClassifier(c.profile.Rules, c.log)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if t, ok := cl.Match(c.profile.FeeLabel); !ok || t != model.TypeFee {
		return nil, fmt.Errorf("profile %q: fee label %q does not classify as %s", p.Name, c.profile.FeeLabel, model.TypeFee)
	}
	c.classifier = cl
	c.ids = id.NewGenerator(c.account.ID)

	if c.profile.Layout == nil {
		cols, err := FixedColumns(c.profile.Positions)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		c.setColumns(cols)
		if !c.profile.HasHeader {
			c.state = StateStreamingRows
		}
	}
	return c, nil
}

func (c *Converter) setColumns(cols ColumnMap) {
	c.cols = cols
	c.fees = feeSplitter{cols: cols, label: c.profile.FeeLabel, memoPrefix: c.profile.FeeMemoPrefix}
}

// State returns the current state.
func (c *Converter) State() State { return c.state }

// Stats returns the counters so far.
func (c *Converter) Stats() Stats { return c.stats }

// Header consumes the header row. A resolution failure is fatal for the
// stream and moves the converter to StateDone.
func (c *Converter) Header(header []string) error {
	if c.state != StateAwaitingHeader {
		return fmt.Errorf("%w: header in state %s", ErrConverterState, c.state)
	}
	c.line++
	if c.profile.Layout != nil {
		cols, err := ResolveHeader(header, c.profile.Layout)
		if err != nil {
			c.state = StateDone
			return fmt.Errorf("resolving header: %w", err)
		}
		c.setColumns(cols)
	}
	c.state = StateStreamingRows
	return nil
}

// Row converts one data row. Recoverable conditions yield an empty Result
// with Skip set; fatal ones return a *RowError.
func (c *Converter) Row(raw []string) (Result, error) {
	var res Result
	if c.state != StateStreamingRows {
		return res, fmt.Errorf("%w: row in state %s", ErrConverterState, c.state)
	}
	c.line++
	c.stats.Rows++

	row, err := Normalize(raw, c.cols)
	if errors.Is(err, ErrUnsettledRow) {
		c.stats.Unsettled++
		c.log.Debug().Int("row", c.line).Msg("skipping unsettled row")
		res.Skip = ErrUnsettledRow
		return res, nil
	}
	if err != nil {
		return res, &RowError{Row: c.line, Err: err}
	}

	if err := c.assemble(row, &res, false); err != nil {
		return Result{}, err
	}
	c.stats.Records += res.n
	return res, nil
}

// Close ends the stream and returns the final counters.
func (c *Converter) Close() Stats {
	c.state = StateDone
	return c.stats
}

// assemble builds the records for a normalized row and, when it carries a
// fee alongside a principal, for the synthesized fee row.
func (c *Converter) assemble(row []string, res *Result, feeDerived bool) error {
	principal, err := c.amount(row, FieldAmount)
	if err != nil {
		return err
	}
	fee, err := c.amount(row, FieldFeeAmount)
	if err != nil {
		return err
	}
	date, err := c.date(row, FieldDate)
	if err != nil {
		return err
	}
	valueDate, err := c.date(row, FieldPostingDate)
	if err != nil {
		return err
	}

	fr := resolveFee(principal, fee)
	if fr.amount.IsZero() {
		c.stats.ZeroAmount++
		c.log.Debug().Int("row", c.line).Msg("skipping zero-amount row")
		res.Skip = ErrZeroAmount
		return nil
	}

	res.add(c.build(row, fr.amount, date, valueDate, feeDerived))
	if !fr.split {
		return nil
	}
	c.stats.FeesSplit++
	return c.assemble(c.fees.synthesize(row), res, true)
}

func (c *Converter) build(row []string, amount decimal.Decimal, date, valueDate time.Time, feeDerived bool) model.Record {
	typ, ok := c.classifier.Classify(c.cols.get(row, FieldPaymentType))
	if !ok {
		c.stats.Unclassified++
	}

	rec := model.Record{
		Date:        date,
		ValueDate:   valueDate,
		Amount:      amount,
		Payee:       c.payee(row),
		Memo:        c.memo(row),
		Type:        typ,
		CheckNumber: c.cols.get(row, FieldCheckNumber),
		RefNumber:   c.cols.get(row, FieldRefNumber),
		FeeDerived:  feeDerived,
	}
	c.account.Stamp(&rec)
	rec.ID = c.ids.Next(id.Fingerprint{
		Date:        rec.Date,
		ValueDate:   rec.ValueDate,
		Amount:      rec.Amount,
		Payee:       rec.Payee,
		Memo:        rec.Memo,
		Type:        string(rec.Type),
		CheckNumber: rec.CheckNumber,
		RefNumber:   rec.RefNumber,
	})
	return rec
}

func (c *Converter) amount(row []string, f Field) (decimal.Decimal, error) {
	v := c.cols.get(row, f)
	d, err := parseAmount(v, c.profile.DecimalComma)
	if err != nil {
		return decimal.Decimal{}, &RowError{Row: c.line, Field: f, Value: v, Err: err}
	}
	return d, nil
}

func (c *Converter) date(row []string, f Field) (time.Time, error) {
	v := c.cols.get(row, f)
	t, err := parseDate(v, c.profile.DateFormat)
	if err != nil {
		return time.Time{}, &RowError{Row: c.line, Field: f, Value: v, Err: err}
	}
	return t, nil
}

func (c *Converter) memo(row []string) string {
	l := c.profile.Labels
	return annotate(c.cols.get(row, FieldMemo),
		l.VariableSymbol, c.cols.get(row, FieldVariableSymbol),
		l.ConstantSymbol, c.cols.get(row, FieldConstantSymbol),
		l.SpecificSymbol, c.cols.get(row, FieldSpecificSymbol),
		l.CardName, c.cols.get(row, FieldCardName),
	)
}

func (c *Converter) payee(row []string) string {
	return annotate(c.cols.get(row, FieldPayee),
		c.profile.Labels.CounterAccount, c.cols.get(row, FieldCounterAccount))
}

// annotate appends "|label value" for each non-empty value. pairs alternate
// label and value.
func annotate(base string, pairs ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		b.WriteByte('|')
		b.WriteString(pairs[i])
		b.WriteString(pairs[i+1])
	}
	return b.String()
}

// Convert drives src through c until EOF and returns the records in source
// order. Fatal errors stop the stream unless c skips invalid rows.
func Convert(ctx context.Context, src RowReader, c *Converter) ([]model.Record, Stats, error) {
	var records []model.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, c.Close(), err
		}
		raw, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, c.Close(), fmt.Errorf("reading row %d: %w", c.line+1, err)
		}

		if c.state == StateAwaitingHeader {
			if err := c.Header(raw); err != nil {
				return nil, c.Close(), err
			}
			continue
		}

		res, err := c.Row(raw)
		if err != nil {
			var rowErr *RowError
			if c.skipInvalid && errors.As(err, &rowErr) {
				c.stats.Invalid++
				c.log.Error().Err(err).Int("row", rowErr.Row).Msg("skipping invalid row")
				continue
			}
			return nil, c.Close(), err
		}
		records = append(records, res.Records()...)
	}
	if c.state == StateAwaitingHeader {
		return nil, c.Close(), fmt.Errorf("%w: input has no header row", ErrConverterState)
	}
	return records, c.Close(), nil
}
