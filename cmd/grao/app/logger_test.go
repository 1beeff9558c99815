package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
		warns    bool
	}{
		{name: "default level when no flags set", config: &Config{}, expected: "info"},
		{name: "verbose flag sets debug", config: &Config{Verbose: true}, expected: "debug"},
		{name: "quiet flag sets warn", config: &Config{Quiet: true}, expected: "warn"},
		{name: "log_level overrides verbose", config: &Config{LogLevel: "error", Verbose: true}, expected: "error"},
		{name: "log_level overrides quiet", config: &Config{LogLevel: "trace", Quiet: true}, expected: "trace"},
		{name: "log_level is case-insensitive", config: &Config{LogLevel: "DEBUG"}, expected: "debug"},
		{name: "both shortcuts resolve to warn", config: &Config{Verbose: true, Quiet: true}, expected: "warn", warns: true},
		{name: "invalid level falls back to info", config: &Config{LogLevel: "loud"}, expected: "info", warns: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, warning := determineLogLevel(tt.config)
			assert.Equal(t, tt.expected, level)
			assert.Equal(t, tt.warns, warning != "")
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		got, ok := validateLogLevel(level)
		assert.True(t, ok)
		assert.Equal(t, level, got)
	}
	_, ok := validateLogLevel("")
	assert.False(t, ok)
}

func TestNewLoggerWarnsOnCorrection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grao.log")
	logger := NewLogger(&Config{LogLevel: "loud", LogFormat: "json", LogOutput: path})

	assert.Equal(t, "info", logger.GetLevel().String())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Unknown log level")
}
