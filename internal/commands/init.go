package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/config"
	"github.com/cleared-dev/stmtconv/internal/importer"
)

type initOptions struct {
	profile  string
	account  string
	currency string
	force    bool
}

func newInitCommand() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a conversion workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized stmtconv workspace at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.profile, "profile", "airbank", "bank export profile")
	cmd.Flags().StringVar(&opts.account, "account", "", "account number")
	cmd.Flags().StringVar(&opts.currency, "currency", "CZK", "ISO 4217 currency of the account")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing config")

	return cmd
}

func runInit(dir string, opts initOptions) error {
	if _, ok := importer.DefaultRegistry().Get(opts.profile); !ok {
		return fmt.Errorf("unknown profile %q", opts.profile)
	}

	// Create directory structure.
	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", importer.ProcessedDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	cfg.Input.Profile = opts.profile
	cfg.Account.ID = opts.account
	cfg.Account.Currency = opts.currency
	cfg.Ledger.Path = "ledger.db"
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write import/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}
	return nil
}
