// Package cli implements the cobra command tree for odoo2mod.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/odoo2mod/internal/config"
	"github.com/hupe1980/odoo2mod/internal/logging"
	"github.com/hupe1980/odoo2mod/internal/record"
	"github.com/hupe1980/odoo2mod/internal/render"
)

// Process exit codes.
const (
	ExitOK                = 0
	ExitRuntime           = 1
	ExitUsage             = 2
	ExitFormat            = 3
	ExitMissingAttribute  = 4
	ExitDiffFound         = 5
	ExitValidationProblem = 6
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				_, _ = fmt.Fprintln(os.Stderr, "Error:", exitErr.Err)
			}

			return exitErr.Code
		}

		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)

		return ExitRuntime
	}

	return ExitOK
}

// withExitCode attaches the exit code matching err's type. Errors that
// already carry a code are returned unchanged.
func withExitCode(err error) error {
	if err == nil {
		return nil
	}

	var (
		exitErr    *ExitError
		formatErr  *record.FormatError
		missingErr *render.MissingRequiredAttributeError
	)

	switch {
	case errors.As(err, &exitErr):
		return err
	case errors.As(err, &formatErr):
		return &ExitError{Code: ExitFormat, Err: err}
	case errors.As(err, &missingErr):
		return &ExitError{Code: ExitMissingAttribute, Err: err}
	default:
		return &ExitError{Code: ExitRuntime, Err: err}
	}
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "odoo2mod",
		Short: "Turn exported Odoo records into module source files",
		Long: `odoo2mod reads XML exports of Odoo records (views, window actions,
menu items and access rules) and writes the files of an Odoo module.

Views and actions are grouped by the model they target and written as one
views/<model>_views.xml per model. Menu items become compact <menuitem>
declarations in views/menu.xml and access rules become
security/ir.model.access.csv.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			if cfg.NoColor {
				color.NoColor = true
			}

			logger := logging.SetupWithWriter(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = config.NewContextWithConfigFile(ctx, cfg.ConfigFile)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .odoo2mod.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json, pretty")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	_ = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")
	_ = cmd.RegisterFlagCompletionFunc("log-level", cobra.FixedCompletions(
		[]string{config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, config.LogLevelError},
		cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("log-format", cobra.FixedCompletions(
		[]string{config.LogFormatText, config.LogFormatJSON, config.LogFormatPretty},
		cobra.ShellCompDirectiveNoFileComp))

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	cmd.AddCommand(
		newVersionCommand(),
		newConvertCommand(),
		newInspectCommand(),
		newValidateCommand(),
		newDiffCommand(),
		newWatchCommand(),
		newCompletionCommand(),
	)

	for _, sub := range cmd.Commands() {
		registerFlagCompletions(sub)
	}

	return cmd
}
