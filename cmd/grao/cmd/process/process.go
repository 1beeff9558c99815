package process

import (
	"context"
	"io"
	"strconv"
	"time"

	grao "github.com/db-afk/GRAO-tables-processing"
	"github.com/db-afk/GRAO-tables-processing/cmd/application"
	"github.com/db-afk/GRAO-tables-processing/internal/cmd/output"
	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
)

// progressEvery is how many keys pass between progress log lines.
const progressEvery = 100

// Execute runs the pipeline and prints a summary to w.
func Execute(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	logger := app.Logger()
	ctx = logging.WithLogger(ctx, logger)

	catalog, err := app.Catalog(flags.Sources)
	if err != nil {
		return err
	}
	descriptors, err := catalog.Descriptors()
	if err != nil {
		return err
	}

	keys := 0
	progress := func(o disambiguation.Outcome, _ time.Duration) {
		keys++
		if keys%progressEvery == 0 {
			logger.Info().Int("keys", keys).Msg("Disambiguation progress")
		}
		if o == disambiguation.OutcomeNoMatch {
			logger.Debug().Int("keys", keys).Msg("Settlement without match")
		}
	}

	opts := []grao.Option{grao.WithKeyProcessedHook(progress)}
	if flags.XLSX {
		opts = append(opts, grao.WithXLSX(true))
	}
	if flags.RefreshMatched {
		opts = append(opts, grao.WithMatchedDir(app.MatchedDir()))
	}
	p, err := app.Processor(opts...)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, descriptors)
	if flushErr := app.Flush(ctx); flushErr != nil {
		logger.Warn().Err(flushErr).Msg("Failed to write metrics")
	}
	if err != nil {
		return err
	}

	return output.Print(w, app.OutputFormat(), NewSummary(result))
}

// Summary is the printable outcome of a run.
type Summary struct {
	RunID        string        `json:"run_id" yaml:"run_id"`
	Periods      []grao.Period `json:"periods" yaml:"periods"`
	Keys         int           `json:"keys" yaml:"keys"`
	Cached       int           `json:"cached" yaml:"cached"`
	Resolved     int           `json:"resolved" yaml:"resolved"`
	Failures     []string      `json:"failures" yaml:"failures"`
	Settlements  int           `json:"settlements" yaml:"settlements"`
	CombinedPath string        `json:"combined_path" yaml:"combined_path"`
	XLSXPath     string        `json:"xlsx_path,omitempty" yaml:"xlsx_path,omitempty"`
	MatchedPath  string        `json:"matched_path,omitempty" yaml:"matched_path,omitempty"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
}

// NewSummary builds a summary from a run result.
func NewSummary(r *grao.Result) Summary {
	s := Summary{
		RunID:        r.RunID,
		Periods:      r.Periods,
		CombinedPath: r.CombinedPath,
		XLSXPath:     r.XLSXPath,
		Duration:     r.Duration,
		Failures:     []string{},
	}
	if d := r.Disambiguation; d != nil {
		s.Keys = d.Total
		s.Cached = d.Cached
		s.Resolved = d.Resolved
		for _, k := range d.Failures {
			s.Failures = append(s.Failures, k.String())
		}
	}
	if r.Combined != nil {
		s.Settlements = r.Combined.Len()
	}
	if r.Matched != nil {
		s.MatchedPath = r.Matched.Path
	}
	return s
}

// TableData lists one row per period followed by the totals.
func (s Summary) TableData() output.Data {
	data := output.Data{
		Headers:      []string{"period", "records", "rows", "path"},
		RightAligned: []int{1, 2},
	}
	for _, p := range s.Periods {
		data.Rows = append(data.Rows, []string{p.Label, strconv.Itoa(p.Records), strconv.Itoa(p.Rows), p.Path})
	}
	data.Rows = append(data.Rows, []string{
		"combined", strconv.Itoa(s.Keys), strconv.Itoa(s.Settlements), s.CombinedPath,
	})
	return data
}
