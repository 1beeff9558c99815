// Package application defines the interface that CLI commands depend on.
//
// Commands accept this interface rather than the concrete app type so they
// can be tested with a Mock and so the cmd packages do not import the app
// package that registers them.
package application

import (
	"context"

	"github.com/rs/zerolog"

	grao "github.com/db-afk/GRAO-tables-processing"
	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/sources"
)

// Application is what every command needs from the running CLI.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Catalog loads the source catalog. An empty path means the
	// configured one.
	Catalog(path string) (*sources.Catalog, error)

	// Processor returns the pipeline processor.
	// Without options the shared instance is returned (lazy-initialized).
	// With options a new processor is created on top of the shared
	// fetcher, resolver and cache store.
	Processor(opts ...grao.Option) (grao.Processor, error)

	// Resolver returns the settlement resolver with the configured
	// retry schedule and directory throttling.
	Resolver() (disambiguation.Resolver, error)

	// Flush writes run artifacts that outlive a command, such as the
	// metrics textfile.
	Flush(ctx context.Context) error

	// MatchedDir returns the configured matched table directory.
	MatchedDir() string

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
