package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/cleared-dev/stmtconv/internal/importer"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed)
	faint  = color.New(color.Faint)
)

// Printer writes human-oriented conversion output.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Summary prints the outcome of converting one source file.
func (p *Printer) Summary(source, output string, s importer.Stats) {
	green.Fprintf(p.w, "✓ %s", source)
	if output != "" {
		fmt.Fprintf(p.w, " → %s", output)
	}
	fmt.Fprintln(p.w)

	fmt.Fprintf(p.w, "  %d rows, %d records", s.Rows, s.Records)
	if s.FeesSplit > 0 {
		fmt.Fprintf(p.w, ", %d fees split", s.FeesSplit)
	}
	fmt.Fprintln(p.w)

	if skipped := s.Unsettled + s.ZeroAmount; skipped > 0 {
		faint.Fprintf(p.w, "  skipped %d unsettled, %d zero-amount\n", s.Unsettled, s.ZeroAmount)
	}
	if s.Unclassified > 0 {
		p.Warning(fmt.Sprintf("%d payment types fell back to %s", s.Unclassified, importer.Fallback))
	}
	if s.Invalid > 0 {
		p.Warning(fmt.Sprintf("%d invalid rows skipped", s.Invalid))
	}
}

// Skipped prints a note about records dropped by the ledger.
func (p *Printer) Skipped(n int) {
	if n > 0 {
		faint.Fprintf(p.w, "  %d records already exported\n", n)
	}
}

// Warning prints a warning line.
func (p *Printer) Warning(text string) {
	yellow.Fprintf(p.w, "  ⚠ %s\n", text)
}

// Error prints an error line.
func (p *Printer) Error(text string) {
	red.Fprintf(p.w, "Error: %s\n", text)
}

// Info prints a plain line.
func (p *Printer) Info(text string) {
	fmt.Fprintf(p.w, "%s\n", text)
}
