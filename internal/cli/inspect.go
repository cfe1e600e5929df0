package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/odoo2mod/internal/pipeline"
	"github.com/hupe1980/odoo2mod/internal/record"
)

type inspectOptions struct {
	inputOptions

	format string
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show what a conversion would produce",
		Long: `Inspect parses the exported records and prints the number of records per
type, the model groups with their view and action counts, records skipped
for a missing key field or excluded by --exclude-* flags, and the artifacts
that convert would write.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}

	registerInputFlags(cmd, &opts.inputOptions)
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table, json, yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// inspectResult is the structured output of the inspect command.
type inspectResult struct {
	Records   []typeCount    `json:"records" yaml:"records"`
	Groups    []groupInfo    `json:"groups" yaml:"groups"`
	Skipped   []skippedInfo  `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Excluded  []excludedInfo `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	Artifacts []artifactInfo `json:"artifacts" yaml:"artifacts"`
}

type typeCount struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

type groupInfo struct {
	Key      string `json:"key" yaml:"key"`
	Artifact string `json:"artifact" yaml:"artifact"`
	Views    int    `json:"views" yaml:"views"`
	Actions  int    `json:"actions" yaml:"actions"`
}

type skippedInfo struct {
	Record   string `json:"record" yaml:"record"`
	Type     string `json:"type" yaml:"type"`
	KeyField string `json:"keyField" yaml:"keyField"`
}

type excludedInfo struct {
	Record string `json:"record" yaml:"record"`
	Type   string `json:"type" yaml:"type"`
	Reason string `json:"reason" yaml:"reason"`
}

type artifactInfo struct {
	Path    string `json:"path" yaml:"path"`
	Kind    string `json:"kind" yaml:"kind"`
	Records int    `json:"records" yaml:"records"`
	Bytes   int    `json:"bytes" yaml:"bytes"`
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts *inspectOptions) error {
	switch opts.format {
	case "table", "json", "yaml":
	default:
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("unsupported format %q: must be one of table, json, yaml", opts.format)}
	}

	res, err := runPipeline(ctx, &opts.inputOptions)
	if err != nil {
		return err
	}

	result := buildInspectResult(res)
	w := cmd.OutOrStdout()

	switch opts.format {
	case "json":
		return renderJSON(w, result)
	case "yaml":
		return renderYAML(w, result)
	default:
		return renderTable(w, result)
	}
}

func buildInspectResult(res *pipeline.Result) inspectResult {
	result := inspectResult{
		Groups:    []groupInfo{},
		Artifacts: []artifactInfo{},
	}

	for _, t := range record.Types() {
		result.Records = append(result.Records, typeCount{Type: t.String(), Count: res.Counts[t]})
	}

	for _, g := range res.Groups.All() {
		result.Groups = append(result.Groups, groupInfo{
			Key:      g.Key,
			Artifact: g.ArtifactName() + ".xml",
			Views:    len(g.Views),
			Actions:  len(g.Actions),
		})
	}

	for _, s := range res.Skipped {
		result.Skipped = append(result.Skipped, skippedInfo{
			Record:   s.RecordID,
			Type:     s.Type.String(),
			KeyField: s.KeyField,
		})
	}

	for _, ex := range res.Excluded {
		result.Excluded = append(result.Excluded, excludedInfo{
			Record: ex.Record.ID,
			Type:   ex.Record.Type.String(),
			Reason: ex.Reason,
		})
	}

	for _, a := range res.Artifacts {
		result.Artifacts = append(result.Artifacts, artifactInfo{
			Path:    a.Path,
			Kind:    string(a.Kind),
			Records: a.Records,
			Bytes:   len(a.Data),
		})
	}

	return result
}

func renderJSON(w io.Writer, result inspectResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func renderYAML(w io.Writer, result inspectResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(result); err != nil {
		return err
	}

	return enc.Close()
}

func renderTable(w io.Writer, result inspectResult) error {
	sections := []struct {
		title  string
		header []any
		rows   [][]string
	}{
		{title: "Records", header: []any{"TYPE", "COUNT"}},
		{title: fmt.Sprintf("Groups (%d)", len(result.Groups)), header: []any{"KEY", "ARTIFACT", "VIEWS", "ACTIONS"}},
		{title: fmt.Sprintf("Artifacts (%d)", len(result.Artifacts)), header: []any{"PATH", "KIND", "RECORDS", "BYTES"}},
	}

	for _, c := range result.Records {
		sections[0].rows = append(sections[0].rows, []string{c.Type, strconv.Itoa(c.Count)})
	}

	for _, g := range result.Groups {
		sections[1].rows = append(sections[1].rows, []string{g.Key, g.Artifact, strconv.Itoa(g.Views), strconv.Itoa(g.Actions)})
	}

	for _, a := range result.Artifacts {
		sections[2].rows = append(sections[2].rows, []string{a.Path, a.Kind, strconv.Itoa(a.Records), strconv.Itoa(a.Bytes)})
	}

	for _, s := range sections {
		_, _ = fmt.Fprintf(w, "\n--- %s ---\n", s.title)

		if len(s.rows) == 0 {
			_, _ = fmt.Fprintln(w, "(none)")
			continue
		}

		out, err := formatTable(s.header, s.rows)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprint(w, out)
	}

	if len(result.Skipped) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Skipped (%d) ---\n", len(result.Skipped))

		for _, s := range result.Skipped {
			_, _ = fmt.Fprintf(w, "  %s (%s): no %q field\n", s.Record, s.Type, s.KeyField)
		}
	}

	if len(result.Excluded) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Excluded (%d) ---\n", len(result.Excluded))

		for _, ex := range result.Excluded {
			_, _ = fmt.Fprintf(w, "  %s (%s): %s\n", ex.Record, ex.Type, ex.Reason)
		}
	}

	return nil
}

func formatTable(header []any, rows [][]string) (string, error) {
	var buf bytes.Buffer

	table := tablewriter.NewTable(&buf, tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header(header...)

	if err := table.Bulk(rows); err != nil {
		return "", fmt.Errorf("formatting table: %w", err)
	}

	if err := table.Render(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}

	return buf.String(), nil
}
