package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/odoo2mod/internal/logging"
	"github.com/hupe1980/odoo2mod/internal/output"
	"github.com/hupe1980/odoo2mod/internal/pipeline"
)

type convertOptions struct {
	inputOptions

	outputDir string
	dryRun    bool
	stdout    bool
}

func newConvertCommand() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Write module files from exported records",
		Long: `Convert XML exports of Odoo records into module source files.

Every artifact is built in memory first. Nothing is written when an input
is malformed or an access rule lacks a required field.`,
		Example: `  odoo2mod convert --views views.xml --actions actions.xml -o my_module
  odoo2mod convert --menus menus.xml --access access.xml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd.Context(), cmd, opts)
		},
	}

	registerInputFlags(cmd, &opts.inputOptions)
	registerOutputDirFlag(cmd, &opts.outputDir)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "list the artifacts without writing files")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print the artifacts to stdout instead of writing files")

	return cmd
}

func runConvert(ctx context.Context, cmd *cobra.Command, opts *convertOptions) error {
	opts.outputDir = resolveOutputDir(ctx, opts.outputDir)

	logger := logging.FromContext(ctx)

	res, err := runPipeline(ctx, &opts.inputOptions)
	if err != nil {
		return err
	}

	if opts.dryRun {
		printArtifacts(cmd, res, opts.outputDir)
		return nil
	}

	if opts.stdout {
		return writeArtifacts(output.NewStdoutWriter(cmd.OutOrStdout()), res)
	}

	written, err := pipeline.Write(ctx, res, opts.outputDir)
	if err != nil {
		return withExitCode(err)
	}

	logger.Info("conversion complete",
		slog.Int("artifacts", len(written)),
		slog.String("outputDir", opts.outputDir),
	)

	for _, path := range written {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
	}

	return nil
}

// writeArtifacts sends every artifact to w, each preceded by a banner
// naming its path.
func writeArtifacts(w output.Writer, res *pipeline.Result) error {
	for _, a := range res.Artifacts {
		if err := w.Write([]byte("==> " + filepath.ToSlash(a.Path) + " <==\n")); err != nil {
			return err
		}

		if err := w.Write(a.Data); err != nil {
			return err
		}
	}

	return nil
}

func printArtifacts(cmd *cobra.Command, res *pipeline.Result, dir string) {
	w := cmd.OutOrStdout()

	for _, a := range res.Artifacts {
		_, _ = fmt.Fprintf(w, "%s (%d bytes, %d records)\n", filepath.Join(dir, a.Path), len(a.Data), a.Records)
	}
}
