// Package config provides Viper-based configuration loading for the area importer.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Output sink names.
const (
	SinkFile     = "file"
	SinkPostgres = "postgres"
	SinkBolt     = "bolt"
)

// ImportConfig controls how area files are found and parsed.
type ImportConfig struct {
	// SourceDir is the directory holding the area files.
	SourceDir string `mapstructure:"source_dir"`
	// Pattern is the glob matched inside SourceDir.
	Pattern string `mapstructure:"pattern"`
	// Denylist lists "#word" symbols that start content lines and are not headers.
	Denylist []string `mapstructure:"denylist"`
	// DenylistFile is an optional YAML file adding more denylist symbols.
	DenylistFile string `mapstructure:"denylist_file"`
	// ContinueOnError skips files that fail to parse instead of aborting.
	ContinueOnError bool `mapstructure:"continue_on_error"`
	// FailOnWarning aborts before writing when any warning was reported.
	FailOnWarning bool `mapstructure:"fail_on_warning"`
}

// OutputConfig selects where finalized records are written.
type OutputConfig struct {
	// Sink is one of "file", "postgres", "bolt".
	Sink string `mapstructure:"sink"`
	// DataRoot is the file sink's root; documents land in <data_root>/areas.
	DataRoot string `mapstructure:"data_root"`
	// Indent pretty-prints JSON documents.
	Indent bool `mapstructure:"indent"`
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres sink.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// BoltConfig holds settings for the bbolt sink.
type BoltConfig struct {
	// Path is the database file.
	Path string `mapstructure:"path"`
	// Timeout bounds how long opening waits for the file lock.
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap output path ("stderr", "stdout" or a file); empty means stderr.
	Output string `mapstructure:"output"`
}

// Config is the top-level application configuration.
type Config struct {
	Import   ImportConfig   `mapstructure:"import"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	Bolt     BoltConfig     `mapstructure:"bolt"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants. Database and bolt settings
// are only checked when their sink is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateImport(c.Import); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateOutput(c.Output); err != nil {
		errs = append(errs, err.Error())
	}
	switch c.Output.Sink {
	case SinkPostgres:
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	case SinkBolt:
		if err := validateBolt(c.Bolt); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateImport(i ImportConfig) error {
	var errs []string
	if i.Pattern == "" {
		errs = append(errs, "import.pattern must not be empty")
	} else if _, err := filepath.Match(i.Pattern, ""); err != nil {
		errs = append(errs, fmt.Sprintf("import.pattern %q is not a valid glob: %v", i.Pattern, err))
	}
	for _, sym := range i.Denylist {
		if strings.TrimSpace(sym) == "" {
			errs = append(errs, "import.denylist must not contain empty entries")
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateOutput(o OutputConfig) error {
	validSinks := map[string]bool{SinkFile: true, SinkPostgres: true, SinkBolt: true}
	if !validSinks[o.Sink] {
		return fmt.Errorf("output.sink must be one of [file, postgres, bolt], got %q", o.Sink)
	}
	if o.Sink == SinkFile && o.DataRoot == "" {
		return fmt.Errorf("output.data_root must not be empty for the file sink")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBolt(b BoltConfig) error {
	var errs []string
	if b.Path == "" {
		errs = append(errs, "bolt.path must not be empty")
	}
	if b.Timeout < 0 {
		errs = append(errs, "bolt.timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path skips the file and uses
// defaults plus environment only.
//
// Precondition: path must be empty or a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and ROTIMPORT_ environment
// overrides installed, so callers can bind flags before unmarshalling.
//
// Postcondition: Returns a non-nil Viper.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("ROTIMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("import.source_dir", "data/rot/area")
	v.SetDefault("import.pattern", "*.are")
	v.SetDefault("import.denylist", []string{})
	v.SetDefault("import.denylist_file", "")
	v.SetDefault("import.continue_on_error", false)
	v.SetDefault("import.fail_on_warning", false)

	v.SetDefault("output.sink", SinkFile)
	v.SetDefault("output.data_root", "data")
	v.SetDefault("output.indent", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "mud")
	v.SetDefault("database.password", "mud")
	v.SetDefault("database.name", "mud")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("bolt.path", "data/areas.db")
	v.SetDefault("bolt.timeout", "5s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}
