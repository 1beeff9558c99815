// Package grao turns the population tables published by GRAO into a single
// table keyed by EKATTE settlement code.
//
// A run downloads every table of the source catalog, parses it according to
// its layout, resolves each settlement against the NSI register through a
// persistent cache, writes one CSV per period and finally merges all periods
// into a combined CSV (and optionally XLSX) table.
//
// Example usage:
//
//	client := transport.New()
//	resolver := ekatte.NewResolver(ekatte.NewClient(client))
//	store, _ := sqlite.Open("pickled_data/disambiguation.db")
//
//	p, err := grao.New(
//	    grao.WithFetcher(client),
//	    grao.WithResolver(resolver),
//	    grao.WithStore(store),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := p.Run(ctx, descriptors)
package grao

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/export"
	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
	"github.com/db-afk/GRAO-tables-processing/pkg/matched"
	"github.com/db-afk/GRAO-tables-processing/pkg/merge"
	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
)

// Fetcher downloads a document and decodes it from charset.
type Fetcher interface {
	Fetch(ctx context.Context, url, charset string) (string, error)
}

// Processor runs the table processing pipeline.
type Processor interface {
	// Run processes the given periods end to end
	Run(ctx context.Context, periods []layout.Descriptor) (*Result, error)

	// Parse downloads and parses a single period
	Parse(ctx context.Context, d layout.Descriptor) ([]tables.FullRecord, error)

	// RefreshMatched updates the matched tables from the processed ones
	RefreshMatched(ctx context.Context, periods []layout.Descriptor) (*matched.Result, error)

	// OnPeriodParsed registers a callback for parsed periods
	OnPeriodParsed(PeriodParsedHook)

	// OnKeyProcessed registers a callback for settlement keys
	OnKeyProcessed(KeyProcessedHook)
}

// Period summarizes one processed period.
type Period struct {
	Label   string
	Records int
	Rows    int
	Path    string
}

// Result summarizes a run.
type Result struct {
	RunID          string
	Periods        []Period
	Disambiguation *disambiguation.Report
	Combined       *merge.Table
	CombinedPath   string
	XLSXPath       string
	Matched        *matched.Result
	Duration       time.Duration
}

// processor is the internal implementation of the Processor interface
type processor struct {
	config *config
	hooks  *hooks
}

// New creates a Processor with the given options.
func New(opts ...Option) (Processor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.patterns == nil {
		cfg.patterns = tables.NewPatterns()
	}
	h := newHooks()
	for _, fn := range cfg.onPeriodParsed {
		h.OnPeriodParsed(fn)
	}
	for _, fn := range cfg.onKeyProcessed {
		h.OnKeyProcessed(fn)
	}
	return &processor{config: cfg, hooks: h}, nil
}

func (p *processor) OnPeriodParsed(fn PeriodParsedHook) { p.hooks.OnPeriodParsed(fn) }

func (p *processor) OnKeyProcessed(fn KeyProcessedHook) { p.hooks.OnKeyProcessed(fn) }

// Parse downloads one period and turns it into full records.
func (p *processor) Parse(ctx context.Context, d layout.Descriptor) ([]tables.FullRecord, error) {
	log := logging.FromContext(ctx)

	start := time.Now()
	body, err := p.config.fetcher.Fetch(ctx, d.Source, p.config.charset)
	p.config.recorder.ObserveFetch(constants.DocumentService, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	lines, err := tables.Lines(strings.NewReader(body))
	if err != nil {
		return nil, errors.WrapParse("html", d.Source, err)
	}

	parser, err := tables.NewParser(p.config.patterns, d.Layout)
	if err != nil {
		return nil, err
	}
	doc := parser.Parse(lines)
	records := tables.Assemble(doc)

	log.Info().
		Str("header", d.Layout.Header.String()).
		Str("type", d.Layout.Period.String()).
		Int("lines", len(lines)).
		Int("headers", len(doc.Headers)).
		Int("rows", len(doc.Rows)).
		Int("records", len(records)).
		Msg("Parsed table")

	p.config.recorder.ObservePeriod(d.Label(), d.Layout.Header.String(), d.Layout.Period.String(), len(records))
	p.hooks.periodParsed(d, records)
	return records, nil
}

// Run processes periods in order. Period labels must be unique.
func (p *processor) Run(ctx context.Context, periods []layout.Descriptor) (result *Result, err error) {
	runID := logging.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	log := logging.FromContext(ctx)
	start := time.Now()
	result = &Result{RunID: runID}

	defer func() {
		result.Duration = time.Since(start)
		p.config.recorder.ObserveRun(result.Duration, err)
	}()

	labels := make(map[string]struct{}, len(periods))
	for _, d := range periods {
		if _, ok := labels[d.Label()]; ok {
			return result, errors.NewValidationError("label", d.Label(), "duplicate period label")
		}
		labels[d.Label()] = struct{}{}
	}

	log.Info().Int("periods", len(periods)).Msg("Starting run")

	parsed := make([][]tables.FullRecord, 0, len(periods))
	for _, d := range periods {
		records, err := p.Parse(logging.WithPeriod(ctx, d.Label()), d)
		if err != nil {
			return result, err
		}
		parsed = append(parsed, records)
	}

	cache, err := disambiguation.Load(ctx, p.config.store)
	if err != nil {
		return result, err
	}
	d := disambiguation.New(cache, p.config.resolver, disambiguation.WithObserver(func(o disambiguation.Outcome, elapsed time.Duration) {
		p.config.recorder.ObserveLookup(string(o), elapsed)
		p.hooks.keyProcessed(o, elapsed)
	}))
	result.Disambiguation, err = d.Run(ctx, disambiguation.EntriesFor(parsed...))
	if err != nil {
		return result, err
	}

	codeOf := func(r tables.FullRecord) (ekatte.Code, bool) {
		return cache.Code(disambiguation.KeyFor(r))
	}
	keyed := make([]merge.PeriodTable, 0, len(periods))
	for i, desc := range periods {
		table := merge.Keyed(desc.Label(), parsed[i], codeOf)
		path := export.PeriodPath(p.config.processedDir, desc.Label())
		if err := export.WritePeriodCSV(path, table); err != nil {
			return result, err
		}
		keyed = append(keyed, table)
		result.Periods = append(result.Periods, Period{
			Label:   desc.Label(),
			Records: len(parsed[i]),
			Rows:    len(table.Rows),
			Path:    path,
		})
		log.Debug().Str("period", desc.Label()).Int("rows", len(table.Rows)).Str("path", path).Msg("Wrote period table")
	}

	result.Combined, err = merge.Merge(keyed...)
	if err != nil {
		return result, err
	}
	result.CombinedPath = export.CombinedPath(p.config.combinedDir, ".csv")
	if err := export.WriteCombinedCSV(result.CombinedPath, result.Combined); err != nil {
		return result, err
	}
	if p.config.xlsx {
		result.XLSXPath = export.CombinedPath(p.config.combinedDir, ".xlsx")
		if err := export.WriteCombinedXLSX(result.XLSXPath, result.Combined); err != nil {
			return result, err
		}
	}

	if p.config.matchedDir != "" {
		result.Matched, err = p.RefreshMatched(ctx, periods)
		if err != nil {
			return result, err
		}
	}

	log.Info().
		Int("periods", len(result.Periods)).
		Int("settlements", result.Combined.Len()).
		Int("failures", len(result.Disambiguation.Failures)).
		Str("combined", result.CombinedPath).
		Dur("elapsed", time.Since(start)).
		Msg("Run finished")
	return result, nil
}

// RefreshMatched refreshes the matched tables. A missing matched table is
// not an error; there is simply nothing to refresh.
func (p *processor) RefreshMatched(ctx context.Context, periods []layout.Descriptor) (*matched.Result, error) {
	if p.config.matchedDir == "" {
		return nil, errors.NewValidationError("matched_dir", "", "matched table directory is not configured")
	}
	res, err := matched.Refresh(ctx, p.config.matchedDir, p.config.processedDir, periods)
	if errors.IsNotFound(err) {
		logging.FromContext(ctx).Info().Err(err).Msg("Nothing to refresh")
		return nil, nil
	}
	return res, err
}
