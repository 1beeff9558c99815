package grao

import (
	"github.com/db-afk/GRAO-tables-processing/internal/metrics"
	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
)

// Option is a function that configures a Processor.
type Option func(*config) error

// config holds the processor configuration.
type config struct {
	processedDir string
	combinedDir  string
	matchedDir   string
	charset      string
	xlsx         bool

	fetcher  Fetcher
	resolver disambiguation.Resolver
	store    disambiguation.Store
	recorder metrics.Recorder
	patterns *tables.Patterns

	onPeriodParsed []PeriodParsedHook
	onKeyProcessed []KeyProcessedHook
}

func defaultConfig() *config {
	return &config{
		processedDir: "grao_data",
		combinedDir:  "combined_tables",
		charset:      constants.SourceEncoding,
		recorder:     metrics.NewNop(),
	}
}

func (c *config) validate() error {
	switch {
	case c.fetcher == nil:
		return errors.NewValidationError("fetcher", nil, "a document fetcher is required")
	case c.resolver == nil:
		return errors.NewValidationError("resolver", nil, "a settlement resolver is required")
	case c.store == nil:
		return errors.NewValidationError("store", nil, "a cache store is required")
	case c.processedDir == "":
		return errors.NewValidationError("processed_dir", "", "output directory is required")
	case c.combinedDir == "":
		return errors.NewValidationError("combined_dir", "", "output directory is required")
	}
	return nil
}

// WithFetcher configures how source documents are downloaded.
func WithFetcher(f Fetcher) Option {
	return func(c *config) error {
		c.fetcher = f
		return nil
	}
}

// WithResolver configures the settlement resolver.
func WithResolver(r disambiguation.Resolver) Option {
	return func(c *config) error {
		c.resolver = r
		return nil
	}
}

// WithStore configures the disambiguation cache backend.
func WithStore(s disambiguation.Store) Option {
	return func(c *config) error {
		c.store = s
		return nil
	}
}

// WithRecorder configures the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *config) error {
		if r != nil {
			c.recorder = r
		}
		return nil
	}
}

// WithPatterns replaces the compiled table patterns.
func WithPatterns(p *tables.Patterns) Option {
	return func(c *config) error {
		c.patterns = p
		return nil
	}
}

// WithProcessedDir sets the directory of per-period tables.
func WithProcessedDir(dir string) Option {
	return func(c *config) error {
		c.processedDir = dir
		return nil
	}
}

// WithCombinedDir sets the directory of the combined table.
func WithCombinedDir(dir string) Option {
	return func(c *config) error {
		c.combinedDir = dir
		return nil
	}
}

// WithMatchedDir enables the matched table refresh at the end of a run.
func WithMatchedDir(dir string) Option {
	return func(c *config) error {
		c.matchedDir = dir
		return nil
	}
}

// WithCharset sets the character set of source documents.
func WithCharset(cs string) Option {
	return func(c *config) error {
		if cs == "" {
			return errors.NewValidationError("encoding", cs, "character set cannot be empty")
		}
		c.charset = cs
		return nil
	}
}

// WithXLSX configures whether the combined table is also written as XLSX.
func WithXLSX(enabled bool) Option {
	return func(c *config) error {
		c.xlsx = enabled
		return nil
	}
}

// WithPeriodParsedHook registers fn on the new processor only.
func WithPeriodParsedHook(fn PeriodParsedHook) Option {
	return func(c *config) error {
		if fn == nil {
			return errors.NewValidationError("period_parsed_hook", nil, "hook cannot be nil")
		}
		c.onPeriodParsed = append(c.onPeriodParsed, fn)
		return nil
	}
}

// WithKeyProcessedHook registers fn on the new processor only. Use it
// instead of OnKeyProcessed when the processor may be shared.
func WithKeyProcessedHook(fn KeyProcessedHook) Option {
	return func(c *config) error {
		if fn == nil {
			return errors.NewValidationError("key_processed_hook", nil, "hook cannot be nil")
		}
		c.onKeyProcessed = append(c.onKeyProcessed, fn)
		return nil
	}
}
