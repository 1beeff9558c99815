package app

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
)

// logLevels accepted by log_level.
var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// NewLogger builds the CLI logger from the log_* keys. The level is taken
// from log_level (--log-level, GRAO_LOG_LEVEL or grao.yaml) when set,
// otherwise from the -v/-q shortcuts, otherwise info. Caller information is
// added below info.
func NewLogger(config *Config) zerolog.Logger {
	level, warning := determineLogLevel(config)

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
	if warning != "" {
		logger.Warn().Str("log_level", config.LogLevel).Msg(warning)
	}
	return logger
}

// determineLogLevel returns the effective level and, when the configured
// values had to be corrected, a warning describing the correction.
func determineLogLevel(config *Config) (string, string) {
	if config.LogLevel != "" {
		if level, ok := validateLogLevel(config.LogLevel); ok {
			return level, ""
		}
		return "info", "Unknown log level, using info"
	}

	switch {
	case config.Verbose && config.Quiet:
		return "warn", "Both --verbose and --quiet given, using --quiet"
	case config.Verbose:
		return "debug", ""
	case config.Quiet:
		return "warn", ""
	}
	return "info", ""
}

// validateLogLevel normalizes level case and reports whether it is known.
func validateLogLevel(level string) (string, bool) {
	level = strings.ToLower(strings.TrimSpace(level))
	for _, l := range logLevels {
		if l == level {
			return l, true
		}
	}
	return "info", false
}
