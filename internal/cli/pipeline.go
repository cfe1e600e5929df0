package cli

import (
	"context"
	"errors"

	"github.com/hupe1980/odoo2mod/internal/config"
	"github.com/hupe1980/odoo2mod/internal/filter"
	"github.com/hupe1980/odoo2mod/internal/pipeline"
)

var errNoInputs = errors.New("at least one of --views, --actions, --menus or --access is required")

// pipelineOptions resolves the inputs and the projection section into
// pipeline options. Configuration problems carry exit code 2.
func pipelineOptions(ctx context.Context, in *inputOptions) (pipeline.Options, error) {
	in.applyConfig(config.FromContext(ctx))

	opts := pipeline.DefaultOptions()
	opts.Inputs = pipeline.Inputs{
		Views:   in.views,
		Actions: in.actions,
		Menus:   in.menus,
		Access:  in.access,
	}

	if len(opts.Inputs.Paths()) == 0 {
		return opts, &ExitError{Code: ExitUsage, Err: errNoInputs}
	}

	pc, err := config.LoadProjectionConfig(projectionFile(ctx, in))
	if err != nil {
		return opts, &ExitError{Code: ExitUsage, Err: err}
	}

	opts.Policies = pc.Policies()
	opts.ViewHeader = pc.ViewHeader()
	opts.MenuHeader = pc.MenuHeaderText()

	f, err := recordFilter(in)
	if err != nil {
		return opts, &ExitError{Code: ExitUsage, Err: err}
	}

	opts.Filter = f

	return opts, nil
}

// applyConfig fills inputs left empty on the command line from the loaded
// configuration (config file or ODOO2MOD_* environment).
func (in *inputOptions) applyConfig(cfg *config.Config) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}

	fill(&in.views, cfg.Views)
	fill(&in.actions, cfg.Actions)
	fill(&in.menus, cfg.Menus)
	fill(&in.access, cfg.Access)

	if len(in.excludeRecords) == 0 {
		in.excludeRecords = cfg.ExcludeRecords
	}

	if len(in.excludeModels) == 0 {
		in.excludeModels = cfg.ExcludeModels
	}
}

// resolveOutputDir returns the configured module directory. The loaded
// config already reflects an explicit --output-dir.
func resolveOutputDir(ctx context.Context, flagValue string) string {
	if dir := config.FromContext(ctx).OutputDir; dir != "" {
		return dir
	}

	return flagValue
}

// recordFilter builds the filter chain of the --exclude-* flags. It returns
// nil when no flag is set.
func recordFilter(in *inputOptions) (filter.Filter, error) {
	var filters []filter.Filter

	if len(in.excludeRecords) > 0 {
		idf, err := filter.NewIDFilter(in.excludeRecords)
		if err != nil {
			return nil, err
		}

		filters = append(filters, idf)
	}

	if len(in.excludeModels) > 0 {
		filters = append(filters, filter.NewModelFilter(in.excludeModels))
	}

	if len(filters) == 0 {
		return nil, nil
	}

	return filter.NewChain(filters...), nil
}

// runPipeline builds every artifact in memory.
func runPipeline(ctx context.Context, in *inputOptions) (*pipeline.Result, error) {
	opts, err := pipelineOptions(ctx, in)
	if err != nil {
		return nil, err
	}

	res, err := pipeline.Run(ctx, opts)
	if err != nil {
		return nil, withExitCode(err)
	}

	return res, nil
}
