package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/odoo2mod/internal/config"
	"github.com/hupe1980/odoo2mod/internal/logging"
	"github.com/hupe1980/odoo2mod/internal/pipeline"
	"github.com/hupe1980/odoo2mod/internal/watch"
)

type watchOptions struct {
	convertOptions

	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run convert whenever an input document changes",
		Long: `Watch monitors the input documents (and the file holding the projection
section) and re-runs the conversion when one of them changes.

File changes are debounced to avoid rapid re-runs. Each run reports the
number of artifacts, records and skipped records, and which artifacts
appeared or disappeared since the previous run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cmd, opts)
		},
	}

	registerInputFlags(cmd, &opts.inputOptions)
	registerOutputDirFlag(cmd, &opts.outputDir)

	f := cmd.Flags()
	f.BoolVar(&opts.dryRun, "dry-run", false, "build artifacts without writing them")
	f.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "debounce interval for file changes")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts *watchOptions) error {
	opts.outputDir = resolveOutputDir(ctx, opts.outputDir)

	// Fails fast on missing inputs or a broken projection section.
	popts, err := pipelineOptions(ctx, &opts.inputOptions)
	if err != nil {
		return err
	}

	files := popts.Inputs.Paths()

	if p := projectionFile(ctx, &opts.inputOptions); p != "" {
		files = append(files, p)
	}

	runFn := func(fnCtx context.Context) (*watch.RunResult, error) {
		res, err := runPipeline(fnCtx, &opts.inputOptions)
		if err != nil {
			return nil, err
		}

		var written []string

		if opts.dryRun {
			for _, a := range res.Artifacts {
				written = append(written, a.Path)
			}
		} else {
			written, err = pipeline.Write(fnCtx, res, opts.outputDir)
			if err != nil {
				return nil, err
			}
		}

		records := 0
		for _, n := range res.Counts {
			records += n
		}

		return &watch.RunResult{
			Artifacts: written,
			Records:   records,
			Skipped:   len(res.Skipped),
		}, nil
	}

	watchOpts := watch.Options{
		Files:    files,
		Debounce: opts.debounce,
		Logger:   logging.FromContext(ctx),
		Out:      cmd.ErrOrStderr(),
	}

	if err := watch.Run(ctx, watchOpts, runFn); err != nil {
		return withExitCode(err)
	}

	return nil
}

func projectionFile(ctx context.Context, in *inputOptions) string {
	if in.projection != "" {
		return in.projection
	}

	return config.ConfigFileFromContext(ctx)
}
