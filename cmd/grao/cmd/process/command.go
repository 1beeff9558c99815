// Package process implements the process command, which runs the whole
// table pipeline.
package process

import (
	"github.com/spf13/cobra"

	"github.com/db-afk/GRAO-tables-processing/cmd/application"
)

// Flags holds the process command flags.
type Flags struct {
	Sources        string
	XLSX           bool
	RefreshMatched bool
}

// NewCommand creates the process command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "process",
		GroupID: "core",
		Short:   "Download, resolve and merge every table of the catalog",
		Long: `Process runs the full pipeline over the source catalog:

1. Download and parse every period table
2. Resolve each settlement to its EKATTE code (cached, resumable)
3. Write one CSV per period
4. Merge all periods into the combined table

Settlements the register cannot match are reported and skipped. A directory
lookup that keeps failing after its retries aborts the run; resolved
settlements stay cached for the next attempt.`,
		Example: `  grao process                              # Process the configured catalog
  grao process --sources my_tables.yaml     # Use another catalog
  grao process --xlsx                       # Also write the combined XLSX
  grao process --refresh-matched            # Refresh matched tables afterwards`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Sources, "sources", "", "source catalog file (default from config)")
	cmd.Flags().BoolVar(&flags.XLSX, "xlsx", false, "also write the combined table as XLSX")
	cmd.Flags().BoolVar(&flags.RefreshMatched, "refresh-matched", false, "refresh the matched tables after the run")

	return cmd
}
