package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hupe1980/odoo2mod/internal/diff"
)

type diffOptions struct {
	inputOptions

	outputDir string
	context   int
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare generated artifacts with the module on disk",
		Long: `Diff builds every artifact in memory and prints a unified diff against the
files already present under --output-dir. Missing files are compared as
empty.

Returns exit code 5 when any artifact differs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiff(cmd.Context(), cmd, opts)
		},
	}

	registerInputFlags(cmd, &opts.inputOptions)
	registerOutputDirFlag(cmd, &opts.outputDir)
	cmd.Flags().IntVar(&opts.context, "context", 3, "lines of context around each change")

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, opts *diffOptions) error {
	opts.outputDir = resolveOutputDir(ctx, opts.outputDir)

	res, err := runPipeline(ctx, &opts.inputOptions)
	if err != nil {
		return err
	}

	dopts := diff.DefaultOptions()
	dopts.Context = opts.context

	diffs, err := diff.Artifacts(res, opts.outputDir, dopts)
	if err != nil {
		return withExitCode(err)
	}

	w := cmd.OutOrStdout()
	diff.WriteAll(w, diffs, useColor(w))

	if diff.HasDifferences(diffs) {
		return &ExitError{Code: ExitDiffFound, Err: fmt.Errorf("%d artifact(s) differ", countChanged(diffs))}
	}

	return nil
}

// useColor reports whether w is a terminal and colour was not disabled by
// --no-color or NO_COLOR.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && !color.NoColor && isatty.IsTerminal(f.Fd())
}

func countChanged(diffs []diff.FileDiff) int {
	n := 0

	for _, d := range diffs {
		if d.Status != diff.StatusUnchanged {
			n++
		}
	}

	return n
}
