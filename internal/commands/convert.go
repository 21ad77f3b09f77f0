package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/config"
	"github.com/cleared-dev/stmtconv/internal/export"
	"github.com/cleared-dev/stmtconv/internal/importer"
	"github.com/cleared-dev/stmtconv/internal/ledger"
	"github.com/cleared-dev/stmtconv/internal/logger"
	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/runlog"
	"github.com/cleared-dev/stmtconv/internal/ui"
)

// convertFlags maps convert's flags to their config keys.
var convertFlags = map[string]string{
	"profile":      config.KeyProfile,
	"charset":      config.KeyCharset,
	"delimiter":    config.KeyDelimiter,
	"date-format":  config.KeyDateFormat,
	"currency":     config.KeyCurrency,
	"account":      config.KeyAccountID,
	"account-type": config.KeyAccountType,
	"institution":  config.KeyInstitution,
	"format":       config.KeyFormat,
	"ofx-version":  config.KeyOFXVersion,
	"out-dir":      config.KeyOutputDir,
	"rules":        config.KeyRulesFile,
	"ledger":       config.KeyLedgerPath,
}

type convertOptions struct {
	output      string
	importDir   string
	skipInvalid bool
	dryRun      bool
}

// source is one input file.
type source struct {
	name      string
	path      string
	importDir string // set when the file came from an import dir scan
}

func newConvertCommand(g *globalOptions) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert bank CSV exports into OFX or CSV",
		Long: `Convert bank CSV exports into OFX or CSV.

Each input file becomes one output file next to it (or in --out-dir).
With --dir every CSV in the import directory is converted and moved to
its processed/ subdirectory, and outputs default to that subdirectory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd, convertFlags)
			if err != nil {
				return err
			}
			return runConvert(cmd, cfg, opts, args)
		},
	}

	f := cmd.Flags()
	f.String("profile", "", "bank export profile (airbank, default)")
	f.String("charset", "", "input character set, e.g. utf-8 or windows-1250")
	f.String("delimiter", "", "input field delimiter")
	f.String("date-format", "", "override the profile's date layout (Go layout)")
	f.String("currency", "", "ISO 4217 currency of the account")
	f.String("account", "", "account number")
	f.String("account-type", "", "account type: CHECKING, SAVINGS, MONEYMRKT, CREDITLINE or CD")
	f.String("institution", "", "bank identifier written to OFX")
	f.String("format", "", "output format: ofx or csv")
	f.String("ofx-version", "", "OFX version: 102 or 220")
	f.String("out-dir", "", "directory for output files")
	f.String("rules", "", "YAML rule table overriding the profile's")
	f.String("ledger", "", "SQLite ledger of exported identifiers; already exported records are skipped")
	f.StringVarP(&opts.output, "output", "o", "", "output file for a single input, - for stdout")
	f.StringVar(&opts.importDir, "dir", "", "convert every CSV in an import directory")
	f.BoolVar(&opts.skipInvalid, "skip-invalid", false, "log and skip malformed rows instead of failing")
	f.BoolVar(&opts.dryRun, "dry-run", false, "convert and report without writing anything")

	return cmd
}

func runConvert(cmd *cobra.Command, cfg *config.Config, opts convertOptions, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context(), log)

	profile, err := resolveProfile(cfg)
	if err != nil {
		return err
	}

	sources, err := collectSources(args, opts.importDir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		if opts.importDir != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No CSV files in %s\n", opts.importDir)
			return nil
		}
		return errors.New("no input files: pass files or --dir")
	}
	if opts.output != "" && len(sources) > 1 {
		return errors.New("--output needs exactly one input file")
	}

	var ldg *ledger.Ledger
	if cfg.Ledger.Path != "" {
		ldg, err = ledger.Open(ctx, cfg.ResolvePath(cfg.Ledger.Path))
		if err != nil {
			return err
		}
		defer ldg.Close()
	}

	// Records on stdout leave only stderr for the summary.
	summaryOut := cmd.OutOrStdout()
	if opts.output == "-" {
		summaryOut = cmd.ErrOrStderr()
	}
	printer := ui.NewPrinter(summaryOut)

	var bar *progressbar.ProgressBar
	if len(sources) > 1 {
		bar = newProgressBar(cmd.ErrOrStderr(), len(sources))
	}

	conv := fileConverter{
		cfg:     cfg,
		profile: profile,
		opts:    opts,
		ledger:  ldg,
		stdout:  cmd.OutOrStdout(),
	}
	var entries []runlog.Entry
	for _, src := range sources {
		res, err := conv.convert(ctx, src)
		if err != nil {
			return fmt.Errorf("converting %s: %w", src.name, err)
		}
		printer.Summary(src.name, res.output, res.stats)
		printer.Skipped(res.known)
		entries = append(entries, runlog.Entry{
			Timestamp: time.Now().UTC(),
			Source:    src.path,
			Profile:   profile.Name,
			Stats:     res.stats,
			Output:    res.output,
		})
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if opts.dryRun {
		printer.Info("Dry run: nothing written")
		return nil
	}
	if err := runlog.Append(cfg.ResolvePath("."), entries); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}
	return nil
}

func collectSources(args []string, importDir string) ([]source, error) {
	var sources []source
	for _, a := range args {
		sources = append(sources, source{name: filepath.Base(a), path: a})
	}
	if importDir != "" {
		files, err := importer.Scan(importDir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			sources = append(sources, source{name: f.Name, path: f.Path, importDir: importDir})
		}
	}
	return sources, nil
}

func newProgressBar(w io.Writer, n int) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Converting statements...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// fileConverter converts one source file end to end.
type fileConverter struct {
	cfg     *config.Config
	profile importer.Profile
	opts    convertOptions
	ledger  *ledger.Ledger
	stdout  io.Writer
}

type fileResult struct {
	stats  importer.Stats
	known  int // records dropped because the ledger had them
	output string
}

func (fc fileConverter) convert(ctx context.Context, src source) (fileResult, error) {
	var res fileResult
	log := logger.FromContext(ctx).With().Str("source", src.name).Logger()

	records, stats, err := fc.read(ctx, src, log)
	res.stats = stats
	if err != nil {
		return res, err
	}

	if fc.ledger != nil {
		fresh, err := fc.ledger.Filter(ctx, records)
		if err != nil {
			return res, err
		}
		res.known = len(records) - len(fresh)
		records = fresh
	}

	if errs := export.Validate(records); len(errs) > 0 {
		for _, e := range errs {
			log.Error().Int("invariant", e.Invariant).Str("record", e.RecordID).Msg(e.Description)
		}
		return res, fmt.Errorf("%d records failed validation, first: %w", len(errs), errs[0])
	}

	res.output = fc.outputPath(src)
	log.Info().
		Int("rows", stats.Rows).
		Int("records", len(records)).
		Int("fees_split", stats.FeesSplit).
		Int("unclassified", stats.Unclassified).
		Str("output", res.output).
		Msg("converted")

	if fc.opts.dryRun {
		return res, nil
	}
	if err := fc.write(res.output, records); err != nil {
		return res, err
	}
	if fc.ledger != nil {
		if err := fc.ledger.Remember(ctx, src.path, records); err != nil {
			return res, err
		}
	}
	if src.importDir != "" {
		if err := importer.MarkProcessed(src.importDir, src.name); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (fc fileConverter) read(ctx context.Context, src source, log zerolog.Logger) ([]model.Record, importer.Stats, error) {
	f, err := os.Open(src.path)
	if err != nil {
		return nil, importer.Stats{}, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	rows, err := importer.NewCSVReader(f, importer.ReaderOptions{
		Charset:   fc.profile.Charset,
		Delimiter: fc.cfg.DelimiterRune(),
	})
	if err != nil {
		return nil, importer.Stats{}, err
	}
	c, err := importer.NewConverter(fc.profile,
		importer.WithLogger(log),
		importer.WithAccount(fc.cfg.AccountInfo()),
		importer.WithSkipInvalid(fc.opts.skipInvalid),
		importer.WithDateFormat(fc.cfg.Input.DateFormat),
	)
	if err != nil {
		return nil, importer.Stats{}, err
	}
	return importer.Convert(ctx, rows, c)
}

func (fc fileConverter) outputPath(src source) string {
	if fc.opts.output != "" {
		return fc.opts.output
	}
	dir := fc.cfg.ResolvePath(fc.cfg.Output.Dir)
	if dir == "" {
		dir = filepath.Dir(src.path)
		if src.importDir != "" {
			dir = filepath.Join(src.importDir, importer.ProcessedDir)
		}
	}
	base := strings.TrimSuffix(src.name, filepath.Ext(src.name))
	if fc.cfg.Output.Format == config.FormatCSV {
		return filepath.Join(dir, base+".records.csv")
	}
	return filepath.Join(dir, base+".ofx")
}

func (fc fileConverter) write(path string, records []model.Record) error {
	if path == "-" {
		return fc.encode(fc.stdout, records)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := fc.encode(f, records); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func (fc fileConverter) encode(w io.Writer, records []model.Record) error {
	if fc.cfg.Output.Format == config.FormatCSV {
		return export.WriteCSV(w, records)
	}
	return export.WriteOFX(w, records, export.StatementInfo{
		Account: fc.cfg.AccountInfo(),
		Version: fc.cfg.Output.OFXVersion,
	})
}
