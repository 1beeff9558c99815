// Package refresh implements the refresh-matched command.
package refresh

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	grao "github.com/db-afk/GRAO-tables-processing"
	"github.com/db-afk/GRAO-tables-processing/cmd/application"
	"github.com/db-afk/GRAO-tables-processing/internal/cmd/output"
	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
	"github.com/db-afk/GRAO-tables-processing/pkg/matched"
)

// Flags holds the refresh-matched command flags.
type Flags struct {
	Sources    string
	MatchedDir string
}

// NewCommand creates the refresh-matched command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "refresh-matched",
		GroupID: "core",
		Short:   "Update matched tables with the newest processed period",
		Long: `Refresh-matched copies the population counts of the newest processed
period into a new matched table when that period is newer than the newest
matched table. Rows are matched on the ekatte column; settlements missing
from the processed period keep their previous counts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Sources, "sources", "", "source catalog file (default from config)")
	cmd.Flags().StringVar(&flags.MatchedDir, "matched-dir", "", "matched table directory (default from config)")

	return cmd
}

// Execute refreshes the matched tables and prints what was written.
func Execute(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	ctx = logging.WithLogger(ctx, app.Logger())

	catalog, err := app.Catalog(flags.Sources)
	if err != nil {
		return err
	}
	descriptors, err := catalog.Descriptors()
	if err != nil {
		return err
	}

	dir := flags.MatchedDir
	if dir == "" {
		dir = app.MatchedDir()
	}
	p, err := app.Processor(grao.WithMatchedDir(dir))
	if err != nil {
		return err
	}
	result, err := p.RefreshMatched(ctx, descriptors)
	if err != nil {
		return err
	}
	if result == nil {
		result = &matched.Result{}
	}
	return output.Print(w, app.OutputFormat(), Summary(*result))
}

// Summary is the printable outcome of a refresh.
type Summary matched.Result

// TableData renders the refresh as a single row.
func (s Summary) TableData() output.Data {
	path := s.Path
	if path == "" {
		path = "(up to date)"
	}
	return output.Data{
		Headers:      []string{"from", "to", "updated", "missing", "path"},
		Rows:         [][]string{{s.From, s.To, strconv.Itoa(s.Updated), strings.Join(s.Missing, " "), path}},
		RightAligned: []int{2},
	}
}
