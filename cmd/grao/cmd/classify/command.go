// Package classify implements the classify command, which shows how source
// descriptors are interpreted.
package classify

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/db-afk/GRAO-tables-processing/cmd/application"
	"github.com/db-afk/GRAO-tables-processing/internal/cmd/output"
	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
)

// NewCommand creates the classify command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var sourcesPath string

	cmd := &cobra.Command{
		Use:     "classify [descriptor...]",
		GroupID: "inspect",
		Short:   "Show the layout and period label of table descriptors",
		Long: `Classify prints the header format, period type, label and reference date
of each descriptor. Without arguments the whole source catalog is
classified.`,
		Example: `  grao classify
  grao classify https://www.grao.bg/tna/t41nm-15-03-2020_2.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				catalog, err := app.Catalog(sourcesPath)
				if err != nil {
					return err
				}
				args = catalog.Entries
			}
			return Execute(app, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sourcesPath, "sources", "", "source catalog file (default from config)")

	return cmd
}

// Execute classifies descriptors and prints them to w.
func Execute(app application.Application, descriptors []string, w io.Writer) error {
	classified, err := layout.ClassifyAll(descriptors)
	if err != nil {
		return err
	}
	rows := make(Rows, 0, len(classified))
	for _, d := range classified {
		rows = append(rows, Row{
			Label:  d.Label(),
			Header: d.Layout.Header.String(),
			Period: d.Layout.Period.String(),
			Date:   d.Date().Format("2006-01-02"),
			Source: d.Source,
		})
	}
	return output.Print(w, app.OutputFormat(), rows)
}

// Row is one classified descriptor.
type Row struct {
	Label  string `json:"label" yaml:"label"`
	Header string `json:"header" yaml:"header"`
	Period string `json:"period" yaml:"period"`
	Date   string `json:"date" yaml:"date"`
	Source string `json:"source" yaml:"source"`
}

// Rows is a printable list of classified descriptors.
type Rows []Row

// TableData renders one line per descriptor.
func (r Rows) TableData() output.Data {
	data := output.Data{Headers: []string{"label", "header", "period", "date", "source"}}
	for _, row := range r {
		data.Rows = append(data.Rows, []string{row.Label, row.Header, row.Period, row.Date, row.Source})
	}
	return data
}
