package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestCommand mirrors the global flags of the root command plus the
// input flags of a pipeline subcommand, so Load can bind both.
func newTestCommand() *cobra.Command {
	root := &cobra.Command{Use: "odoo2mod"}
	pf := root.PersistentFlags()
	pf.String("config", "", "")
	pf.String("log-level", "info", "")
	pf.String("log-format", "text", "")
	pf.Bool("no-color", false, "")
	pf.BoolP("quiet", "q", false, "")

	sub := &cobra.Command{Use: "convert"}
	f := sub.Flags()
	f.String("views", "", "")
	f.String("actions", "", "")
	f.String("menus", "", "")
	f.String("access", "", "")
	f.StringSlice("exclude-records", nil, "")
	f.StringSlice("exclude-models", nil, "")
	f.StringP("output-dir", "o", DefaultOutputDir, "")
	root.AddCommand(sub)

	return sub
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

// ---------------------------------------------------------------------------
// Default and Validate
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.False(t, cfg.NoColor)
	assert.False(t, cfg.Quiet)
	assert.Empty(t, cfg.Views)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "debug level", mutate: func(c *Config) { c.LogLevel = LogLevelDebug }},
		{name: "warn level", mutate: func(c *Config) { c.LogLevel = LogLevelWarn }},
		{name: "json format", mutate: func(c *Config) { c.LogFormat = LogFormatJSON }},
		{name: "pretty format", mutate: func(c *Config) { c.LogFormat = LogFormatPretty }},
		{name: "exclude models", mutate: func(c *Config) { c.ExcludeModels = []string{"res.users"} }},
		{
			name:    "unknown level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "blank output dir",
			mutate:  func(c *Config) { c.OutputDir = "  " },
			wantErr: "output-dir must not be empty",
		},
		{
			name:    "blank excluded model",
			mutate:  func(c *Config) { c.ExcludeModels = []string{"res.users", ""} },
			wantErr: "exclude-models must not contain empty names",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEffectiveLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, (&Config{LogLevel: LogLevelDebug}).EffectiveLogLevel())
	assert.Equal(t, LogLevelError, (&Config{LogLevel: LogLevelDebug, Quiet: true}).EffectiveLogLevel())
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
}

func TestLoad_Precedence(t *testing.T) {
	tests := []struct {
		name string
		env  string
		file string
		flag string
		want string
	}{
		{name: "default", want: LogLevelInfo},
		{name: "file", file: "warn", want: "warn"},
		{name: "env over default", env: "debug", want: "debug"},
		{name: "env over file", env: "debug", file: "warn", want: "debug"},
		{name: "flag over env", env: "debug", flag: "error", want: "error"},
		{name: "flag over all", env: "debug", file: "warn", flag: "error", want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("ODOO2MOD_LOG_LEVEL", tt.env)
			}

			var path string
			if tt.file != "" {
				path = writeTempConfig(t, "log-level: "+tt.file+"\n")
			}

			cmd := newTestCommand()
			if tt.flag != "" {
				require.NoError(t, cmd.Root().PersistentFlags().Set("log-level", tt.flag))
			}

			cfg, err := Load(cmd, path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LogLevel)
		})
	}
}

func TestLoad_EnvBooleans(t *testing.T) {
	t.Setenv("ODOO2MOD_NO_COLOR", "true")
	t.Setenv("ODOO2MOD_QUIET", "true")

	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.True(t, cfg.NoColor)
	assert.True(t, cfg.Quiet)
}

func TestLoad_InputsFromFile(t *testing.T) {
	p := writeTempConfig(t, `views: export/views.xml
actions: export/actions.xml
menus: export/menus.xml
access: export/access.xml
output-dir: addons/crm_ext
exclude-records: ["view_*_tree"]
exclude-models: [res.users, res.groups]
`)

	cfg, err := Load(newTestCommand(), p)
	require.NoError(t, err)

	assert.Equal(t, "export/views.xml", cfg.Views)
	assert.Equal(t, "export/actions.xml", cfg.Actions)
	assert.Equal(t, "export/menus.xml", cfg.Menus)
	assert.Equal(t, "export/access.xml", cfg.Access)
	assert.Equal(t, "addons/crm_ext", cfg.OutputDir)
	assert.Equal(t, []string{"view_*_tree"}, cfg.ExcludeRecords)
	assert.Equal(t, []string{"res.users", "res.groups"}, cfg.ExcludeModels)
	assert.Equal(t, p, cfg.ConfigFile)
}

func TestLoad_InputFlagOverridesFile(t *testing.T) {
	p := writeTempConfig(t, "views: export/views.xml\noutput-dir: addons/crm_ext\n")

	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("views", "other/views.xml"))
	require.NoError(t, cmd.Flags().Set("output-dir", "out"))

	cfg, err := Load(cmd, p)
	require.NoError(t, err)

	assert.Equal(t, "other/views.xml", cfg.Views)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoad_InputsFromEnv(t *testing.T) {
	t.Setenv("ODOO2MOD_ACCESS", "export/access.xml")
	t.Setenv("ODOO2MOD_OUTPUT_DIR", "module")

	cfg, err := Load(newTestCommand(), "")
	require.NoError(t, err)

	assert.Equal(t, "export/access.xml", cfg.Access)
	assert.Equal(t, "module", cfg.OutputDir)
}

func TestLoad_FileErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(nil, filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "reading config file")
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := Load(nil, writeTempConfig(t, ": invalid yaml :"))
		assert.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Load(nil, writeTempConfig(t, "log-format: xml\n"))
		assert.ErrorContains(t, err, "invalid log format")
	})

	t.Run("invalid env value", func(t *testing.T) {
		t.Setenv("ODOO2MOD_LOG_LEVEL", "verbose")

		_, err := Load(nil, "")
		assert.ErrorContains(t, err, "invalid log level")
	})
}

func TestSearchPaths(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	assert.Equal(t, []string{".", filepath.Join(xdg, "odoo2mod")}, SearchPaths())

	t.Setenv("XDG_CONFIG_HOME", "")

	paths := SearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
}

func TestLoad_DiscoversXDGConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	path := filepath.Join(xdg, "odoo2mod", FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("log-format: json\n"), 0o600))

	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_IgnoresProjectionSection(t *testing.T) {
	p := writeTempConfig(t, "log-level: debug\nprojection:\n  views:\n    order: [name]\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)

	assert.Equal(t, LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, p, cfg.ConfigFile)
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

func TestContext(t *testing.T) {
	cfg := &Config{LogLevel: LogLevelDebug, LogFormat: LogFormatJSON}

	ctx := NewContext(context.Background(), cfg)
	ctx = NewContextWithConfigFile(ctx, "/etc/odoo2mod.yaml")

	assert.Same(t, cfg, FromContext(ctx))
	assert.Equal(t, "/etc/odoo2mod.yaml", ConfigFileFromContext(ctx))

	assert.Equal(t, Default(), FromContext(context.Background()))
	assert.Empty(t, ConfigFileFromContext(context.Background()))
}
