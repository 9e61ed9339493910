// Package config holds the scraper's run configuration.
//
// Values come from, in increasing priority: built-in defaults, an optional
// YAML file, EXTRANET_* environment variables (a .env file is honored) and
// command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Variant selects one of the two extraction configurations.
type Variant string

const (
	// VariantLabeled writes one discrete column per labeled field and waits
	// for the "Investigador" field before extracting.
	VariantLabeled Variant = "labeled"
	// VariantTables writes the personal block plus flattened degree and
	// table columns.
	VariantTables Variant = "tables"
)

// Defaults.
const (
	DefaultBaseURL      = "https://extranet.ufro.cl/investigacion/ver_cv_investigacion.php"
	DefaultRosterPath   = "UFRO_Planta2022-2024.xlsx"
	DefaultRosterColumn = "Nombre Completo"
	DefaultOutputPath   = "resultados_investigadores.csv"
	DefaultTimeout      = 15 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
	DefaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36"

	labeledBatchSize = 20
	tablesBatchSize  = 2
	tablesLoadPause  = 2 * time.Second
)

// Config is passed explicitly to the pipeline entry point.
type Config struct {
	BaseURL string  `mapstructure:"base_url"`
	Variant Variant `mapstructure:"variant"`

	Roster RosterConfig `mapstructure:"roster"`
	Output OutputConfig `mapstructure:"output"`

	// StartIndex skips that many roster entries.
	StartIndex int `mapstructure:"start_index"`
	// Limit stops after that many entries; 0 means no limit.
	Limit int `mapstructure:"limit"`
	// Resume sets StartIndex to the number of rows already in the output.
	Resume bool `mapstructure:"resume"`

	Wait    WaitConfig    `mapstructure:"wait"`
	Browser BrowserConfig `mapstructure:"browser"`
	Pacing  PacingConfig  `mapstructure:"pacing"`
	Log     LogConfig     `mapstructure:"log"`
}

type RosterConfig struct {
	Path   string `mapstructure:"path"`
	Sheet  string `mapstructure:"sheet"`
	Column string `mapstructure:"column"`
}

type OutputConfig struct {
	Path string `mapstructure:"path"`
	// BatchSize rows are buffered before each append; 0 picks the variant default.
	BatchSize int `mapstructure:"batch_size"`
	// DumpDir receives the page HTML of failed entries when set.
	DumpDir string `mapstructure:"dump_dir"`
}

type WaitConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// LoadPause is slept after dispatching the load directive. Negative
	// picks the variant default.
	LoadPause time.Duration `mapstructure:"load_pause"`
	// Strict additionally waits for the researcher field after loading.
	Strict *bool `mapstructure:"strict"`
}

type BrowserConfig struct {
	Headless    bool   `mapstructure:"headless"`
	ExecPath    string `mapstructure:"exec_path"`
	UserAgent   string `mapstructure:"user_agent"`
	DownloadDir string `mapstructure:"download_dir"`
}

type PacingConfig struct {
	// Interval is the minimum time between two searches; 0 disables pacing.
	Interval time.Duration `mapstructure:"interval"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	// Encoding is console or json.
	Encoding string `mapstructure:"encoding"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("variant", string(VariantLabeled))
	v.SetDefault("roster.path", DefaultRosterPath)
	v.SetDefault("roster.sheet", "")
	v.SetDefault("roster.column", DefaultRosterColumn)
	v.SetDefault("output.path", DefaultOutputPath)
	v.SetDefault("output.batch_size", 0)
	v.SetDefault("output.dump_dir", "")
	v.SetDefault("start_index", 0)
	v.SetDefault("limit", 0)
	v.SetDefault("resume", false)
	v.SetDefault("wait.timeout", DefaultTimeout)
	v.SetDefault("wait.poll_interval", DefaultPollInterval)
	v.SetDefault("wait.load_pause", time.Duration(-1))
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.user_agent", DefaultUserAgent)
	v.SetDefault("browser.download_dir", "")
	v.SetDefault("pacing.interval", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.encoding", "console")
}

// Load decodes v into a Config, fills variant defaults and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParseFailed, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values, including those that depend on Variant.
func (c *Config) ApplyDefaults() {
	c.Variant = Variant(strings.ToLower(strings.TrimSpace(string(c.Variant))))
	if c.Variant == "" {
		c.Variant = VariantLabeled
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Roster.Column == "" {
		c.Roster.Column = DefaultRosterColumn
	}
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}
	if c.Wait.Timeout <= 0 {
		c.Wait.Timeout = DefaultTimeout
	}
	if c.Wait.PollInterval <= 0 {
		c.Wait.PollInterval = DefaultPollInterval
	}

	tables := c.Variant == VariantTables
	if c.Output.BatchSize <= 0 {
		c.Output.BatchSize = labeledBatchSize
		if tables {
			c.Output.BatchSize = tablesBatchSize
		}
	}
	if c.Wait.LoadPause < 0 {
		c.Wait.LoadPause = 0
		if tables {
			c.Wait.LoadPause = tablesLoadPause
		}
	}
	if c.Wait.Strict == nil {
		strict := !tables
		c.Wait.Strict = &strict
	}
}

// StrictWait reports whether the loader also waits for the researcher field.
func (c *Config) StrictWait() bool {
	return c.Wait.Strict != nil && *c.Wait.Strict
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Variant {
	case VariantLabeled, VariantTables:
	default:
		return &ValidationError{Field: "variant", Value: c.Variant, Reason: "debe ser labeled o tables"}
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return &ValidationError{Field: "base_url", Value: c.BaseURL, Reason: "debe comenzar con http:// o https://"}
	}
	if strings.TrimSpace(c.Roster.Path) == "" {
		return &ValidationError{Field: "roster.path", Value: c.Roster.Path, Reason: "requerido"}
	}
	if c.StartIndex < 0 {
		return &ValidationError{Field: "start_index", Value: c.StartIndex, Reason: "no puede ser negativo"}
	}
	if c.Limit < 0 {
		return &ValidationError{Field: "limit", Value: c.Limit, Reason: "no puede ser negativo"}
	}
	if c.Resume && c.StartIndex > 0 {
		return &ValidationError{Field: "resume", Value: c.Resume, Reason: "incompatible con start_index"}
	}
	switch c.Log.Encoding {
	case "", "console", "json":
	default:
		return &ValidationError{Field: "log.encoding", Value: c.Log.Encoding, Reason: "debe ser console o json"}
	}
	if c.Pacing.Interval < 0 {
		return &ValidationError{Field: "pacing.interval", Value: c.Pacing.Interval, Reason: "no puede ser negativo"}
	}
	return nil
}
