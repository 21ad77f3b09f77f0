package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// FileName is the default config file name.
const FileName = "stmtconv.yaml"

// EnvPrefix prefixes environment overrides, e.g. STMTCONV_ACCOUNT_ID.
const EnvPrefix = "STMTCONV"

// Output formats.
const (
	FormatOFX = "ofx"
	FormatCSV = "csv"
)

// Config represents the top-level stmtconv.yaml configuration.
type Config struct {
	Account   AccountConfig `yaml:"account"`
	Input     InputConfig   `yaml:"input"`
	Output    OutputConfig  `yaml:"output"`
	RulesFile string        `yaml:"rules_file,omitempty"`
	Ledger    LedgerConfig  `yaml:"ledger"`
	Logging   LoggingConfig `yaml:"logging"`

	dir string // directory the file was loaded from
}

// AccountConfig holds the statement attributes stamped onto every record.
type AccountConfig struct {
	ID          string `yaml:"id"`
	Type        string `yaml:"type"`
	Institution string `yaml:"institution"`
	Currency    string `yaml:"currency"`
}

// InputConfig selects how source files are read.
type InputConfig struct {
	Profile    string `yaml:"profile"`
	Charset    string `yaml:"charset"`
	Delimiter  string `yaml:"delimiter"`
	DateFormat string `yaml:"date_format,omitempty"` // overrides the profile's layout
}

// OutputConfig selects how records are written.
type OutputConfig struct {
	Format     string `yaml:"format"`
	OFXVersion string `yaml:"ofx_version"`
	Dir        string `yaml:"dir,omitempty"`
}

// LedgerConfig points at the optional de-duplication ledger.
type LedgerConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Load reads a stmtconv.yaml file from disk. Keys absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config for an Air Bank checking account in CZK.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Type:        string(model.AccountTypeChecking),
			Institution: "AIRACZPP",
			Currency:    "CZK",
		},
		Input: InputConfig{
			Profile:   "airbank",
			Charset:   "utf-8",
			Delimiter: ",",
		},
		Output: OutputConfig{
			Format:     FormatOFX,
			OFXVersion: "220",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ResolvePath interprets p relative to the directory the config was loaded
// from. Absolute and empty paths are returned unchanged.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// AccountInfo returns the account attributes as a model.Account.
func (c *Config) AccountInfo() model.Account {
	return model.Account{
		ID:            c.Account.ID,
		Type:          model.AccountType(strings.ToUpper(c.Account.Type)),
		InstitutionID: c.Account.Institution,
		Currency:      strings.ToUpper(c.Account.Currency),
	}
}

// DelimiterRune returns the input delimiter, ',' when unset.
func (c *Config) DelimiterRune() rune {
	if c.Input.Delimiter == "" {
		return ','
	}
	if c.Input.Delimiter == `\t` {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(c.Input.Delimiter)
	return r
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if _, err := currency.ParseISO(c.Account.Currency); err != nil {
		errs = append(errs, fmt.Errorf("account.currency %q: not an ISO 4217 code", c.Account.Currency))
	}
	if !model.ValidAccountType(c.Account.Type) {
		errs = append(errs, fmt.Errorf("account.type %q: want CHECKING, SAVINGS, MONEYMRKT, CREDITLINE or CD", c.Account.Type))
	}
	if c.Input.Profile == "" {
		errs = append(errs, errors.New("input.profile: empty"))
	}
	if d := c.Input.Delimiter; d != "" && d != `\t` {
		r := c.DelimiterRune()
		if utf8.RuneCountInString(d) != 1 || r == '"' || r == '\n' || r == '\r' {
			errs = append(errs, fmt.Errorf("input.delimiter %q: want a single character other than quote or newline", d))
		}
	}

	switch c.Output.Format {
	case FormatOFX:
		if c.Account.ID == "" {
			errs = append(errs, errors.New("account.id: required for OFX output"))
		}
		if c.Account.Institution == "" {
			errs = append(errs, errors.New("account.institution: required for OFX output"))
		}
		switch c.Output.OFXVersion {
		case "102", "220":
		default:
			errs = append(errs, fmt.Errorf("output.ofx_version %q: want 102 or 220", c.Output.OFXVersion))
		}
	case FormatCSV:
	default:
		errs = append(errs, fmt.Errorf("output.format %q: want ofx or csv", c.Output.Format))
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level %q: %w", c.Logging.Level, err))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: want console or json", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Overlay keys, shared with the flags bound to them.
const (
	KeyAccountID   = "account.id"
	KeyAccountType = "account.type"
	KeyInstitution = "account.institution"
	KeyCurrency    = "account.currency"
	KeyProfile     = "input.profile"
	KeyCharset     = "input.charset"
	KeyDelimiter   = "input.delimiter"
	KeyDateFormat  = "input.date_format"
	KeyFormat      = "output.format"
	KeyOFXVersion  = "output.ofx_version"
	KeyOutputDir   = "output.dir"
	KeyRulesFile   = "rules_file"
	KeyLedgerPath  = "ledger.path"
	KeyLogLevel    = "logging.level"
	KeyLogFormat   = "logging.format"
)

// NewViper returns a viper instance reading STMTCONV_* environment variables,
// with dots in keys mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Overlay applies every key set in v (environment or changed flag) on top of c.
func (c *Config) Overlay(v *viper.Viper) {
	fields := map[string]*string{
		KeyAccountID:   &c.Account.ID,
		KeyAccountType: &c.Account.Type,
		KeyInstitution: &c.Account.Institution,
		KeyCurrency:    &c.Account.Currency,
		KeyProfile:     &c.Input.Profile,
		KeyCharset:     &c.Input.Charset,
		KeyDelimiter:   &c.Input.Delimiter,
		KeyDateFormat:  &c.Input.DateFormat,
		KeyFormat:      &c.Output.Format,
		KeyOFXVersion:  &c.Output.OFXVersion,
		KeyOutputDir:   &c.Output.Dir,
		KeyRulesFile:   &c.RulesFile,
		KeyLedgerPath:  &c.Ledger.Path,
		KeyLogLevel:    &c.Logging.Level,
		KeyLogFormat:   &c.Logging.Format,
	}
	for key, dst := range fields {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
}
