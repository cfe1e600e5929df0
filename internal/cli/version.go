package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/odoo2mod/internal/config"
	"github.com/hupe1980/odoo2mod/internal/version"
)

type versionOptions struct {
	json     bool
	short    bool
	requires string
}

func newVersionCommand() *cobra.Command {
	opts := &versionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the odoo2mod version with its commit, build date, Go version and
platform. With --requires the command checks the binary against a semver
constraint, the same check a config file's "requires" key performs.`,
		Args: cobra.NoArgs,
		// version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.json, "json", false, "output version info as JSON")
	f.BoolVar(&opts.short, "short", false, "print the version number only")
	f.StringVar(&opts.requires, "requires", "", `fail unless the version satisfies this constraint, e.g. ">= 0.2.0"`)
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}

func runVersion(cmd *cobra.Command, opts *versionOptions) error {
	info := version.Current()
	w := cmd.OutOrStdout()

	if opts.requires != "" {
		pc := &config.ProjectionConfig{Requires: opts.requires}
		if err := pc.Validate(); err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}

		if err := pc.CheckVersion(info.Version); err != nil {
			return &ExitError{Code: ExitRuntime, Err: err}
		}
	}

	switch {
	case opts.json:
		j, err := info.JSON()
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, j)

		return err
	case opts.short:
		_, err := fmt.Fprintln(w, info.Version)
		return err
	default:
		_, err := info.WriteTo(w)
		return err
	}
}
