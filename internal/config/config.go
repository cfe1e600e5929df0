// Package config provides configuration management for odoo2mod.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (ODOO2MOD_ prefix)
//  3. Config file (.odoo2mod.yaml)
//
// Besides the logging keys the file may name the exported input documents
// and the module directory, so a project can run `odoo2mod convert` without
// flags:
//
//	views: export/views.xml
//	actions: export/actions.xml
//	output-dir: addons/my_module
//	exclude-models: [res.users]
//
// The config file may also carry a projection section, parsed separately
// by [ParseProjectionConfig].
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatPretty = "pretty"
)

// DefaultOutputDir is the module directory used when none is configured.
const DefaultOutputDir = "."

// Config represents the global configuration for odoo2mod.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json, pretty.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// NoColor disables colored logs and diffs.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Views, Actions, Menus and Access are the exported input documents.
	Views   string `mapstructure:"views" json:"views,omitempty"`
	Actions string `mapstructure:"actions" json:"actions,omitempty"`
	Menus   string `mapstructure:"menus" json:"menus,omitempty"`
	Access  string `mapstructure:"access" json:"access,omitempty"`

	// OutputDir is the module directory artifacts are written to.
	OutputDir string `mapstructure:"output-dir" json:"outputDir"`

	// ExcludeRecords holds record id glob patterns to drop.
	ExcludeRecords []string `mapstructure:"exclude-records" json:"excludeRecords,omitempty"`

	// ExcludeModels holds model names whose views and actions are dropped.
	ExcludeModels []string `mapstructure:"exclude-models" json:"excludeModels,omitempty"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(), not read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatText,
		NoColor:   false,
		Quiet:     false,
		OutputDir: DefaultOutputDir,
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON, LogFormatPretty:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json, pretty", c.LogFormat)
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output-dir must not be empty")
	}

	for _, m := range c.ExcludeModels {
		if strings.TrimSpace(m) == "" {
			return errors.New("exclude-models must not contain empty names")
		}
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// FileName is the base name of the auto-discovered config file.
const FileName = ".odoo2mod.yaml"

// Load resolves the configuration of cmd from its flags, ODOO2MOD_*
// environment variables and a config file. An empty configFile searches
// [SearchPaths]; a missing file is fine there, a malformed one is not.
// Each call uses its own viper instance.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := newViper()

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	if cmd != nil {
		// Local and inherited persistent flags of cmd; only changed flags
		// take precedence over env and file values.
		for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()} {
			if err := v.BindPFlags(fs); err != nil {
				return nil, fmt.Errorf("binding flags of %s: %w", cmd.Name(), err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths returns the directories searched for [FileName]: the working
// directory, then $XDG_CONFIG_HOME/odoo2mod or ~/.config/odoo2mod.
func SearchPaths() []string {
	paths := []string{"."}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return append(paths, filepath.Join(xdg, "odoo2mod"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "odoo2mod"))
	}

	return paths
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("ODOO2MOD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-color", d.NoColor)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("output-dir", d.OutputDir)

	// Registered so that env-only values reach Unmarshal.
	for _, key := range []string{"views", "actions", "menus", "access"} {
		v.SetDefault(key, "")
	}

	v.SetDefault("exclude-records", []string{})
	v.SetDefault("exclude-models", []string{})

	return v
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("yaml")

	for _, p := range SearchPaths() {
		v.AddConfigPath(p)
	}

	err := v.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err == nil || errors.As(err, &notFound) {
		return nil
	}

	return fmt.Errorf("parsing config file: %w", err)
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}
type ctxFileKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}

// NewContextWithConfigFile returns a child context carrying the resolved
// config file path, so commands can parse its projection section.
func NewContextWithConfigFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ctxFileKey{}, path)
}

// ConfigFileFromContext extracts the config file path from ctx.
// Returns empty string if no config file was resolved.
func ConfigFileFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(ctxFileKey{}).(string); ok {
		return p
	}

	return ""
}
