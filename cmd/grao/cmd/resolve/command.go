// Package resolve implements the resolve command, a single settlement
// lookup against the NSI register.
package resolve

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/db-afk/GRAO-tables-processing/cmd/application"
	"github.com/db-afk/GRAO-tables-processing/internal/cmd/output"
	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
)

// NewCommand creates the resolve command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "resolve <region> <municipality> <settlement>",
		GroupID: "inspect",
		Short:   "Look up the EKATTE code of one settlement",
		Long: `Resolve normalizes the given names the same way table rows are
normalized and queries the NSI register for the settlement code. The
settlement may carry its type abbreviation ("С. ПЕТРОВО").

The cache is neither read nor written.`,
		Example: `  grao resolve СОФИЯ САМОКОВ "С. ПЕТРОВО"`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd.Context(), app, args[0], args[1], args[2], cmd.OutOrStdout())
		},
	}
}

// Execute resolves one settlement and prints the result to w. A settlement
// without a match is printed rather than returned as an error.
func Execute(ctx context.Context, app application.Application, region, municipality, settlement string, w io.Writer) error {
	ctx = logging.WithLogger(ctx, app.Logger())

	resolver, err := app.Resolver()
	if err != nil {
		return err
	}

	key := disambiguation.KeyFor(tables.FullRecord{
		Region:       strings.ToUpper(region),
		Municipality: strings.ToUpper(municipality),
		Settlement:   strings.ToUpper(settlement),
	})
	result := Result{
		Region:       key.Region,
		Municipality: key.Municipality,
		Settlement:   key.Settlement,
	}

	code, err := resolver.Resolve(ctx, key)
	switch {
	case err == nil:
		result.EKATTE = string(code)
	case errors.IsNoMatch(err):
		app.Logger().Warn().Str("settlement", key.String()).Msg("No register match")
	default:
		return err
	}
	return output.Print(w, app.OutputFormat(), result)
}

// Result is the printable outcome of a lookup.
type Result struct {
	Region       string `json:"region" yaml:"region"`
	Municipality string `json:"municipality" yaml:"municipality"`
	Settlement   string `json:"settlement" yaml:"settlement"`
	EKATTE       string `json:"ekatte" yaml:"ekatte"`
}

// TableData renders the lookup as a single row.
func (r Result) TableData() output.Data {
	code := r.EKATTE
	if code == "" {
		code = "(no match)"
	}
	return output.Data{
		Headers: []string{"region", "municipality", "settlement", "ekatte"},
		Rows:    [][]string{{r.Region, r.Municipality, r.Settlement, code}},
	}
}
