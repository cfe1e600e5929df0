package cli

import (
	"github.com/spf13/cobra"
)

// inputOptions are the flags shared by every command that runs the
// pipeline.
type inputOptions struct {
	views      string
	actions    string
	menus      string
	access     string
	projection string

	excludeRecords []string
	excludeModels  []string
}

// registerInputFlags adds the input document flags to a cobra command.
func registerInputFlags(cmd *cobra.Command, opts *inputOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.views, "views", "", "XML export of ir.ui.view records")
	f.StringVar(&opts.actions, "actions", "", "XML export of ir.actions.act_window records")
	f.StringVar(&opts.menus, "menus", "", "XML export of ir.ui.menu records")
	f.StringVar(&opts.access, "access", "", "XML export of ir.model.access records")
	f.StringVar(&opts.projection, "projection", "", "file with the projection section (default: the config file)")
	f.StringSliceVar(&opts.excludeRecords, "exclude-records", nil, "exclude records by id pattern, e.g. view_*_tree (comma-separated)")
	f.StringSliceVar(&opts.excludeModels, "exclude-models", nil, "exclude views and actions of these models (comma-separated)")
}

// registerOutputDirFlag adds --output-dir to a cobra command.
func registerOutputDirFlag(cmd *cobra.Command, dir *string) {
	cmd.Flags().StringVarP(dir, "output-dir", "o", ".", "module directory the artifacts are written to")
}
