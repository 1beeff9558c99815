// Package app provides the application context and dependency management
// for the grao CLI. It centralizes configuration, logging and the lazily
// built pipeline components so that commands only see the
// application.Application interface.
package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	grao "github.com/db-afk/GRAO-tables-processing"
	"github.com/db-afk/GRAO-tables-processing/cmd/application"
	"github.com/db-afk/GRAO-tables-processing/internal/metrics"
	"github.com/db-afk/GRAO-tables-processing/internal/storage/files"
	"github.com/db-afk/GRAO-tables-processing/internal/storage/sqlite"
	"github.com/db-afk/GRAO-tables-processing/internal/transport"
	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/sources"
)

// App represents the grao application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Pipeline components (lazy-initialized, singletons)
	mu         sync.Mutex
	fetcher    grao.Fetcher
	resolver   disambiguation.Resolver
	store      disambiguation.Store
	recorder   metrics.Recorder
	prometheus *metrics.PrometheusRecorder
	processor  grao.Processor
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// MatchedDir returns the configured matched table directory.
func (a *App) MatchedDir() string {
	return a.config.MatchedDir
}

// Catalog loads the source catalog from path, or from the configured
// location when path is empty.
func (a *App) Catalog(path string) (*sources.Catalog, error) {
	if path == "" {
		path = a.config.Sources
	}
	return sources.Load(path)
}

// Processor returns the shared processor, creating it lazily. Options
// produce a new, uncached processor sharing the same components. Hooks
// registered on the shared processor stay for the life of the App, so
// per-run hooks are passed as options (grao.WithKeyProcessedHook).
func (a *App) Processor(opts ...grao.Option) (grao.Processor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(opts) == 0 && a.processor != nil {
		return a.processor, nil
	}

	base, err := a.processorOptions()
	if err != nil {
		return nil, err
	}
	p, err := grao.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "processor", "", err)
	}
	if len(opts) == 0 {
		a.processor = p
	}
	return p, nil
}

// Resolver returns the settlement resolver, creating it lazily.
func (a *App) Resolver() (disambiguation.Resolver, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resolverLocked(), nil
}

// Flush writes the metrics textfile when one is configured.
func (a *App) Flush(_ context.Context) error {
	a.mu.Lock()
	prom := a.prometheus
	a.mu.Unlock()

	if prom == nil || a.config.MetricsFile == "" {
		return nil
	}
	if err := prom.WriteTextfile(a.config.MetricsFile); err != nil {
		return err
	}
	a.logger.Debug().Str("path", a.config.MetricsFile).Msg("Wrote metrics")
	return nil
}

// Shutdown releases the cache store.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	store := a.store
	a.store = nil
	a.processor = nil
	a.mu.Unlock()

	if store == nil {
		return nil
	}
	return store.Close()
}

func (a *App) processorOptions() ([]grao.Option, error) {
	if err := ensureDirs(a.config.ProcessedDir, a.config.CombinedDir); err != nil {
		return nil, err
	}
	store, err := a.storeLocked()
	if err != nil {
		return nil, err
	}
	return []grao.Option{
		grao.WithFetcher(a.fetcherLocked()),
		grao.WithResolver(a.resolverLocked()),
		grao.WithStore(store),
		grao.WithRecorder(a.recorderLocked()),
		grao.WithProcessedDir(a.config.ProcessedDir),
		grao.WithCombinedDir(a.config.CombinedDir),
		grao.WithCharset(a.config.Encoding),
		grao.WithXLSX(a.config.ExportXLSX),
	}, nil
}

func (a *App) fetcherLocked() grao.Fetcher {
	if a.fetcher == nil {
		a.fetcher = transport.New(
			transport.WithTimeout(a.config.HTTPTimeout),
			transport.WithService(constants.DocumentService),
		)
	}
	return a.fetcher
}

func (a *App) resolverLocked() disambiguation.Resolver {
	if a.resolver != nil {
		return a.resolver
	}
	recorder := a.recorderLocked()
	directory := transport.New(
		transport.WithTimeout(a.config.HTTPTimeout),
		transport.WithRateLimit(a.config.DirectoryRate, constants.DirectoryBurst),
		transport.WithService(constants.DirectoryService),
	)
	client := ekatte.NewClient(
		&observedFetcher{fetcher: directory, service: constants.DirectoryService, recorder: recorder},
		ekatte.WithBaseURL(a.config.DirectoryURL),
		ekatte.WithCharset(a.config.Encoding),
	)
	a.resolver = ekatte.NewResolver(client, ekatte.WithRetryHook(func(int, time.Duration, error) {
		recorder.IncLookupRetry()
	}))
	return a.resolver
}

func (a *App) storeLocked() (disambiguation.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	switch a.config.CacheBackend {
	case BackendFiles:
		a.store = files.New(a.config.CachePath)
	case BackendSQLite:
		if err := ensureDirs(a.config.CachePath); err != nil {
			return nil, err
		}
		s, err := sqlite.Open(filepath.Join(a.config.CachePath, constants.SQLiteFileName))
		if err != nil {
			return nil, err
		}
		a.store = s
	default:
		return nil, errors.NewValidationError("cache.backend", a.config.CacheBackend, "must be sqlite or files")
	}
	a.logger.Debug().
		Str("backend", a.config.CacheBackend).
		Str("path", a.config.CachePath).
		Msg("Opened disambiguation cache")
	return a.store, nil
}

func (a *App) recorderLocked() metrics.Recorder {
	if a.recorder != nil {
		return a.recorder
	}
	if a.config.MetricsFile != "" {
		a.prometheus = metrics.NewPrometheus(constants.MetricsNamespace)
		a.recorder = a.prometheus
	} else {
		a.recorder = metrics.NewNop()
	}
	return a.recorder
}

// ensureDirs creates output directories that do not exist yet.
func ensureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	return nil
}

// observedFetcher reports directory requests to the recorder.
type observedFetcher struct {
	fetcher  ekatte.Fetcher
	service  string
	recorder metrics.Recorder
}

func (f *observedFetcher) Fetch(ctx context.Context, url, charset string) (string, error) {
	start := time.Now()
	page, err := f.fetcher.Fetch(ctx, url, charset)
	f.recorder.ObserveFetch(f.service, time.Since(start), err)
	return page, err
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithFetcher replaces the document fetcher (useful for testing).
func WithFetcher(f grao.Fetcher) Option {
	return func(a *App) error {
		a.fetcher = f
		return nil
	}
}

// WithResolver replaces the settlement resolver (useful for testing).
func WithResolver(r disambiguation.Resolver) Option {
	return func(a *App) error {
		a.resolver = r
		return nil
	}
}

// WithStore replaces the cache store (useful for testing).
func WithStore(s disambiguation.Store) Option {
	return func(a *App) error {
		a.store = s
		return nil
	}
}
