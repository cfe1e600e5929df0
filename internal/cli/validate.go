package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/odoo2mod/internal/pipeline"
	"github.com/hupe1980/odoo2mod/internal/record"
)

type validateOptions struct {
	inputOptions

	strict bool
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check exported records without writing anything",
		Long: `Validate runs the conversion in memory for every input document and
reports wrapper errors, records skipped for a missing key field and access
rules without a required field.

Returns exit code 6 when an input fails (or, with --strict, when a record
was skipped).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts)
		},
	}

	registerInputFlags(cmd, &opts.inputOptions)
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat skipped records as problems")

	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts *validateOptions) error {
	popts, err := pipelineOptions(ctx, &opts.inputOptions)
	if err != nil {
		return err
	}

	src, err := pipeline.ReadSources(popts.Inputs)
	if err != nil {
		return withExitCode(err)
	}

	w := cmd.ErrOrStderr()

	var errs, warnings int

	// Each document is checked on its own so one failure does not hide
	// problems in the others.
	for _, t := range record.Types() {
		s, ok := src[t]
		if !ok {
			continue
		}

		res, buildErr := pipeline.Build(ctx, pipeline.Sources{t: s}, popts)
		if buildErr != nil {
			errs++

			_, _ = fmt.Fprintf(w, "ERROR   %s: %v\n", s.Name, buildErr)

			continue
		}

		for _, sk := range res.Skipped {
			warnings++

			_, _ = fmt.Fprintf(w, "WARNING %s: %v\n", s.Name, sk)
		}

		_, _ = fmt.Fprintf(w, "OK      %s: %d %s record(s)\n", s.Name, res.Counts[t], t)
	}

	if errs > 0 {
		return &ExitError{Code: ExitValidationProblem, Err: fmt.Errorf("validation failed with %d error(s)", errs)}
	}

	if opts.strict && warnings > 0 {
		return &ExitError{Code: ExitValidationProblem, Err: fmt.Errorf("validation failed with %d warning(s) (strict mode)", warnings)}
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed.")

	return nil
}
