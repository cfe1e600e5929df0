// Package pipeline runs the record transformation end to end: parse the
// input documents, project view and action fields, group them by model and
// render every artifact in memory. Writing is a separate step so a failure
// while building never leaves partial output on disk.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hupe1980/odoo2mod/internal/config"
	"github.com/hupe1980/odoo2mod/internal/filter"
	"github.com/hupe1980/odoo2mod/internal/grouping"
	"github.com/hupe1980/odoo2mod/internal/logging"
	"github.com/hupe1980/odoo2mod/internal/output"
	"github.com/hupe1980/odoo2mod/internal/projection"
	"github.com/hupe1980/odoo2mod/internal/record"
	"github.com/hupe1980/odoo2mod/internal/record/parser"
	"github.com/hupe1980/odoo2mod/internal/render"
)

// Kind identifies the format of an artifact.
type Kind string

// Artifact kinds.
const (
	KindViews  Kind = "views"
	KindMenu   Kind = "menu"
	KindAccess Kind = "access"
)

// Inputs are the paths of the input documents. Empty paths are skipped.
type Inputs struct {
	Views   string
	Actions string
	Menus   string
	Access  string
}

// Paths returns the non-empty input paths.
func (in Inputs) Paths() []string {
	var paths []string

	for _, p := range []string{in.Views, in.Actions, in.Menus, in.Access} {
		if p != "" {
			paths = append(paths, p)
		}
	}

	return paths
}

// Layout places artifacts relative to the output directory.
type Layout struct {
	ViewsDir   string
	MenuFile   string
	AccessFile string
}

// DefaultLayout returns the layout of an Odoo module.
func DefaultLayout() Layout {
	return Layout{
		ViewsDir:   "views",
		MenuFile:   filepath.Join("views", "menu.xml"),
		AccessFile: filepath.Join("security", "ir.model.access.csv"),
	}
}

// Options configures a pipeline run.
type Options struct {
	Inputs     Inputs
	Layout     Layout
	Policies   projection.Policies
	ViewHeader string
	MenuHeader string
	// Filter drops records right after parsing. Nil keeps every record.
	Filter filter.Filter
}

// DefaultOptions returns options with the default layout, policies and
// headers and no inputs.
func DefaultOptions() Options {
	return Options{
		Layout:     DefaultLayout(),
		Policies:   projection.DefaultPolicies(),
		ViewHeader: config.DefaultHeader,
		MenuHeader: config.DefaultHeader,
	}
}

// Artifact is one rendered output file.
type Artifact struct {
	Kind Kind
	// Path is relative to the output directory.
	Path string
	Data []byte
	// Key is the group key of view artifacts.
	Key     string
	Records int
}

// Result holds everything a run produced.
type Result struct {
	Artifacts []Artifact
	Groups    *grouping.Groups
	// Counts is the number of parsed records per type.
	Counts   map[record.Type]int
	Skipped  []*record.MissingKeyFieldWarning
	Excluded []filter.ExcludedRecord
}

// Source is an input document held in memory.
type Source struct {
	Name string
	Data []byte
}

// Sources maps record types to their input document.
type Sources map[record.Type]Source

// ReadSources loads the documents named by in.
func ReadSources(in Inputs) (Sources, error) {
	src := make(Sources)

	for t, path := range map[record.Type]string{
		record.TypeView:       in.Views,
		record.TypeAction:     in.Actions,
		record.TypeMenuItem:   in.Menus,
		record.TypeAccessRule: in.Access,
	} {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path) //nolint:gosec // user-supplied input document
		if err != nil {
			return nil, fmt.Errorf("reading %s input: %w", t, err)
		}

		src[t] = Source{Name: path, Data: data}
	}

	return src, nil
}

// Run reads the inputs of opts and builds all artifacts.
func Run(ctx context.Context, opts Options) (*Result, error) {
	src, err := ReadSources(opts.Inputs)
	if err != nil {
		return nil, err
	}

	return Build(ctx, src, opts)
}

// Build parses src and renders every artifact in memory.
func Build(ctx context.Context, src Sources, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	if opts.Policies == nil {
		opts.Policies = projection.DefaultPolicies()
	}

	res := &Result{Counts: make(map[record.Type]int)}
	parsed := make(map[record.Type][]*record.Record)

	// 1. Parse every present document.
	for _, t := range record.Types() {
		s, ok := src[t]
		if !ok {
			continue
		}

		pr, err := parser.NewParser(parser.WithSource(s.Name)).Parse(ctx, s.Data, t)
		if err != nil {
			return nil, err
		}

		logSkipped(logger, pr.Skipped)

		records := pr.Records

		if opts.Filter != nil {
			fr, err := opts.Filter.Apply(ctx, records)
			if err != nil {
				return nil, fmt.Errorf("filtering %s: %w", s.Name, err)
			}

			for _, ex := range fr.Excluded {
				logger.Info("record excluded",
					logging.RecordAttr(ex.Record.ID, ex.Record.Type),
					slog.String("reason", ex.Reason),
				)
			}

			records = fr.Included
			res.Excluded = append(res.Excluded, fr.Excluded...)
		}

		res.Skipped = append(res.Skipped, pr.Skipped...)
		parsed[t] = records
		res.Counts[t] = len(pr.Records)

		logger.Debug("parsed document",
			slog.String("source", s.Name),
			slog.String("type", t.String()),
			slog.Int("records", len(pr.Records)),
		)
	}

	// 2. Classify views and actions on the parsed records, then project each
	// bucket. The key field may be excluded by the projection policy.
	views, viewSkipped := grouping.Classify(parsed[record.TypeView], record.TypeView.KeyField())
	actions, actionSkipped := grouping.Classify(parsed[record.TypeAction], record.TypeAction.KeyField())

	projectBuckets(opts.Policies, views)
	projectBuckets(opts.Policies, actions)

	logSkipped(logger, viewSkipped)
	logSkipped(logger, actionSkipped)

	res.Skipped = append(res.Skipped, viewSkipped...)
	res.Skipped = append(res.Skipped, actionSkipped...)
	res.Groups = grouping.Merge(views, actions)

	// 3. Render one hierarchical artifact per group.
	for _, g := range res.Groups.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := render.RenderGroup(g, opts.ViewHeader)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", g.ArtifactName(), err)
		}

		res.Artifacts = append(res.Artifacts, Artifact{
			Kind:    KindViews,
			Path:    filepath.Join(opts.Layout.ViewsDir, g.ArtifactName()+".xml"),
			Data:    data,
			Key:     g.Key,
			Records: len(g.Views) + len(g.Actions),
		})
	}

	// 4. Flattened menu items.
	if _, ok := src[record.TypeMenuItem]; ok {
		menus := parsed[record.TypeMenuItem]
		checkGroupsExpressions(logger, menus)

		res.Artifacts = append(res.Artifacts, Artifact{
			Kind:    KindMenu,
			Path:    opts.Layout.MenuFile,
			Data:    render.RenderMenuItems(menus, opts.MenuHeader),
			Records: len(menus),
		})
	}

	// 5. Access table.
	if _, ok := src[record.TypeAccessRule]; ok {
		rules := parsed[record.TypeAccessRule]

		data, err := render.RenderAccessTable(rules)
		if err != nil {
			return nil, err
		}

		res.Artifacts = append(res.Artifacts, Artifact{
			Kind:    KindAccess,
			Path:    opts.Layout.AccessFile,
			Data:    data,
			Records: len(rules),
		})
	}

	logger.Info("artifacts built",
		slog.Int("artifacts", len(res.Artifacts)),
		slog.Int("groups", res.Groups.Len()),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("excluded", len(res.Excluded)),
	)

	return res, nil
}

// Write writes every artifact of res below dir and returns their paths.
// Files that already hold the generated bytes are left untouched.
func Write(ctx context.Context, res *Result, dir string) ([]string, error) {
	logger := logging.FromContext(ctx)
	written := make([]string, 0, len(res.Artifacts))

	for _, a := range res.Artifacts {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		path := filepath.Join(dir, a.Path)

		fw := output.NewFileWriter(path, output.WithLogger(logger), output.WithSkipUnchanged())
		if err := fw.Write(a.Data); err != nil {
			return written, err
		}

		logger.Debug("artifact written",
			slog.String("path", path),
			slog.String("kind", string(a.Kind)),
			slog.Int("bytes", len(a.Data)),
			slog.Bool("unchanged", fw.Skipped()),
		)

		written = append(written, path)
	}

	return written, nil
}

func projectBuckets(ps projection.Policies, buckets map[string][]*record.Record) {
	for key, records := range buckets {
		buckets[key] = ps.ProjectAll(records)
	}
}

func logSkipped(logger *slog.Logger, skipped []*record.MissingKeyFieldWarning) {
	for _, w := range skipped {
		logger.Warn("record skipped: missing key field",
			logging.RecordAttr(w.RecordID, w.Type),
			slog.String("field", w.KeyField),
		)
	}
}

// checkGroupsExpressions warns about groups_id expressions of a shape the
// reference list decoder was not written for.
func checkGroupsExpressions(logger *slog.Logger, menus []*record.Record) {
	for _, r := range menus {
		f, ok := r.Field("groups_id")
		if !ok || f.Eval == "" || render.IsRefList(f.Eval) {
			continue
		}

		logger.Warn("unexpected groups_id expression",
			logging.RecordAttr(r.ID, r.Type),
			slog.String("field", "groups_id"),
			slog.String("eval", f.Eval),
		)
	}
}
