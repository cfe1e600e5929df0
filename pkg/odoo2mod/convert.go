// Package odoo2mod provides a public Go API for turning XML exports of Odoo
// records into the source files of an Odoo module.
//
// Basic usage:
//
//	result, err := odoo2mod.Convert(ctx,
//	    odoo2mod.WithViews("export/views.xml"),
//	    odoo2mod.WithActions("export/actions.xml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, a := range result.Artifacts {
//	    fmt.Println(a.Path)
//	}
//
// With WithOutputDir the artifacts are also written to disk. Nothing is
// written unless every artifact could be built.
package odoo2mod

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/hupe1980/odoo2mod/internal/config"
	"github.com/hupe1980/odoo2mod/internal/filter"
	"github.com/hupe1980/odoo2mod/internal/logging"
	"github.com/hupe1980/odoo2mod/internal/pipeline"
	"github.com/hupe1980/odoo2mod/internal/projection"
	"github.com/hupe1980/odoo2mod/internal/record"
	"github.com/hupe1980/odoo2mod/internal/render"
)

// FormatError is returned when an input document is not wrapped in <odoo>.
type FormatError = record.FormatError

// MissingRequiredAttributeError is returned when an access rule lacks its
// name field or the ref of model_id or group_id.
type MissingRequiredAttributeError = render.MissingRequiredAttributeError

// Option configures the conversion.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	views, actions, menus, access string

	projectionFile string
	viewPolicy     *projection.Policy
	actionPolicy   *projection.Policy
	header         *string
	menuHeader     *string

	excludeRecords []string
	excludeModels  []string

	outputDir string
	logger    *slog.Logger
}

// --- Inputs ---

// WithViews sets the XML export of ir.ui.view records.
func WithViews(path string) Option { return func(o *options) { o.views = path } }

// WithActions sets the XML export of ir.actions.act_window records.
func WithActions(path string) Option { return func(o *options) { o.actions = path } }

// WithMenus sets the XML export of ir.ui.menu records.
func WithMenus(path string) Option { return func(o *options) { o.menus = path } }

// WithAccess sets the XML export of ir.model.access records.
func WithAccess(path string) Option { return func(o *options) { o.access = path } }

// --- Projection ---

// WithProjectionFile reads header and projection settings from a YAML
// file. Policies and headers set by other options take precedence.
func WithProjectionFile(path string) Option { return func(o *options) { o.projectionFile = path } }

// WithViewPolicy replaces the field order and exclusions for views.
func WithViewPolicy(order, exclude []string) Option {
	return func(o *options) { o.viewPolicy = &projection.Policy{Order: order, Exclude: exclude} }
}

// WithActionPolicy replaces the field order and exclusions for actions.
func WithActionPolicy(order, exclude []string) Option {
	return func(o *options) { o.actionPolicy = &projection.Policy{Order: order, Exclude: exclude} }
}

// WithHeader sets the header block of view artifacts. An empty header is
// omitted.
func WithHeader(h string) Option { return func(o *options) { o.header = &h } }

// WithMenuHeader sets the header block of the menu artifact.
func WithMenuHeader(h string) Option { return func(o *options) { o.menuHeader = &h } }

// --- Filtering ---

// WithExcludeRecords drops records whose id matches one of the path.Match
// patterns.
func WithExcludeRecords(patterns ...string) Option {
	return func(o *options) { o.excludeRecords = append(o.excludeRecords, patterns...) }
}

// WithExcludeModels drops views and actions targeting one of the models.
func WithExcludeModels(models ...string) Option {
	return func(o *options) { o.excludeModels = append(o.excludeModels, models...) }
}

// --- Output ---

// WithOutputDir writes the artifacts below dir.
func WithOutputDir(dir string) Option { return func(o *options) { o.outputDir = dir } }

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// Artifact is one generated module file.
type Artifact struct {
	// Path is relative to the module directory.
	Path string
	// Kind is "views", "menu" or "access".
	Kind    string
	Data    []byte
	Records int
}

// SkippedRecord is a view or action dropped for lacking its key field.
type SkippedRecord struct {
	ID       string
	Model    string
	KeyField string
}

// Result holds the output of a conversion.
type Result struct {
	Artifacts []Artifact

	// Groups are the model keys that received a views artifact, sorted.
	Groups []string

	Skipped []SkippedRecord

	// Written lists the files written when WithOutputDir was given.
	Written []string
}

// Convert runs the conversion pipeline.
func Convert(ctx context.Context, opts ...Option) (*Result, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ctx = logging.NewContext(ctx, o.logger)

	popts, err := o.pipelineOptions()
	if err != nil {
		return nil, err
	}

	res, err := pipeline.Run(ctx, popts)
	if err != nil {
		return nil, err
	}

	result := newResult(res)

	if o.outputDir != "" {
		result.Written, err = pipeline.Write(ctx, res, o.outputDir)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (o *options) pipelineOptions() (pipeline.Options, error) {
	popts := pipeline.DefaultOptions()
	popts.Inputs = pipeline.Inputs{
		Views:   o.views,
		Actions: o.actions,
		Menus:   o.menus,
		Access:  o.access,
	}

	if len(popts.Inputs.Paths()) == 0 {
		return popts, errors.New("no input documents given")
	}

	pc, err := config.LoadProjectionConfig(o.projectionFile)
	if err != nil {
		return popts, err
	}

	if o.viewPolicy != nil {
		pc.Projection.Views = o.viewPolicy
	}

	if o.actionPolicy != nil {
		pc.Projection.Actions = o.actionPolicy
	}

	if o.header != nil {
		pc.Header = o.header
	}

	if o.menuHeader != nil {
		pc.MenuHeader = o.menuHeader
	}

	if err := pc.Validate(); err != nil {
		return popts, err
	}

	popts.Policies = pc.Policies()
	popts.ViewHeader = pc.ViewHeader()
	popts.MenuHeader = pc.MenuHeaderText()

	idf, err := filter.NewIDFilter(o.excludeRecords)
	if err != nil {
		return popts, err
	}

	popts.Filter = filter.NewChain(idf, filter.NewModelFilter(o.excludeModels))

	return popts, nil
}

func newResult(res *pipeline.Result) *Result {
	result := &Result{Groups: res.Groups.Keys()}

	for _, a := range res.Artifacts {
		result.Artifacts = append(result.Artifacts, Artifact{
			Path:    a.Path,
			Kind:    string(a.Kind),
			Data:    a.Data,
			Records: a.Records,
		})
	}

	for _, s := range res.Skipped {
		result.Skipped = append(result.Skipped, SkippedRecord{
			ID:       s.RecordID,
			Model:    s.Type.String(),
			KeyField: s.KeyField,
		})
	}

	return result
}
