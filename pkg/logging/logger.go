// Package logging provides structured logging for the GRAO pipeline using
// zerolog. Console output is used on terminals and JSON everywhere else, so
// long unattended runs can be shipped to a log collector as is.
//
// Components never hold a logger of their own; they take it from the
// context, which carries the run, period and settlement being processed:
//
//	ctx := logging.WithLogger(context.Background(), logging.Default())
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithPeriod(ctx, "03_2020")
//	logging.FromContext(ctx).Debug().Int("rows", 5120).Msg("Assembled records")
package logging

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu            sync.RWMutex
	defaultLogger = NewLoggerFromConfig(DefaultConfig())
)

// Default returns the process-wide logger used when a context carries none.
func Default() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := defaultLogger
	return &l
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger zerolog.Logger) {
	mu.Lock()
	defaultLogger = logger
	mu.Unlock()
	log.Logger = logger
}

// Configure builds a logger from cfg and makes it the default.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}
