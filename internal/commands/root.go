package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cleared-dev/stmtconv/internal/buildinfo"
	"github.com/cleared-dev/stmtconv/internal/config"
	"github.com/cleared-dev/stmtconv/internal/importer"
	"github.com/cleared-dev/stmtconv/internal/logger"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	v          *viper.Viper
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:     "stmtconv",
		Short:   "Convert bank statement exports into OFX or CSV",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ./"+config.FileName+" when present)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newClassifyCommand(opts))

	return rootCmd
}

// globalFlags maps the persistent flags to their config keys.
var globalFlags = map[string]string{
	"log-level":  config.KeyLogLevel,
	"log-format": config.KeyLogFormat,
}

// bindFlags binds each named flag to its config key. Only flags the user
// changed override the config file.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// loadConfig reads the config file, if any, and applies environment overrides
// and the flags of cmd named in keys. It does not validate.
func (o *globalOptions) loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	if err := bindFlags(o.v, cmd.Flags(), globalFlags); err != nil {
		return nil, err
	}
	if err := bindFlags(o.v, cmd.Flags(), keys); err != nil {
		return nil, err
	}

	path := o.configPath
	if path == "" {
		if _, err := os.Stat(config.FileName); err == nil {
			path = config.FileName
		}
	}

	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	cfg.Overlay(o.v)
	return cfg, nil
}

// newLogger builds the diagnostics logger, which always writes to stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
}

// resolveProfile looks up the configured profile and applies the rule file.
func resolveProfile(cfg *config.Config) (importer.Profile, error) {
	reg := importer.DefaultRegistry()
	p, ok := reg.Get(cfg.Input.Profile)
	if !ok {
		return importer.Profile{}, fmt.Errorf("unknown profile %q (available: %v)", cfg.Input.Profile, reg.Names())
	}
	if cfg.RulesFile != "" {
		rules, err := importer.LoadRulesFile(cfg.ResolvePath(cfg.RulesFile))
		if err != nil {
			return importer.Profile{}, err
		}
		p = p.WithRules(rules)
	}
	if cfg.Input.Charset != "" {
		p.Charset = cfg.Input.Charset
	}
	return p, nil
}
