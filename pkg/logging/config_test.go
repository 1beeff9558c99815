package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
)

func TestConfig(t *testing.T) {
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("GRAO_LOG_LEVEL", "")
		t.Setenv("GRAO_LOG_FORMAT", "")
		cfg := logging.DefaultConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
		assert.False(t, cfg.AddCaller)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("GRAO_LOG_LEVEL", "debug")
		t.Setenv("GRAO_LOG_FORMAT", "json")
		cfg := logging.DefaultConfig()
		assert.Equal(t, "debug", cfg.Level)
		assert.Equal(t, "json", cfg.Format)
	})

	t.Run("file output with fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "grao.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "debug",
			Format: "json",
			Output: path,
			Fields: map[string]any{"component": "merge", "periods": 2, "elapsed": time.Second},
		})
		logger.Info().Msg("merged periods")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "merged periods")
		assert.Contains(t, string(content), `"component":"merge"`)
		assert.Contains(t, string(content), `"periods":2`)
	})

	t.Run("level filtering", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "warn.log")
		logging.Configure(&logging.Config{Level: "warn", Format: "json", Output: path})
		logging.Default().Info().Msg("hidden")
		logging.Default().Warn().Msg("shown")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "hidden")
		assert.Contains(t, string(content), "shown")
	})

	t.Run("discard", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "info", Output: "discard"})
		assert.NotPanics(t, func() { logger.Info().Msg("dropped") })
	})

	t.Run("nil config falls back to defaults", func(t *testing.T) {
		assert.NotPanics(t, func() {
			logging.NewLoggerFromConfig(nil)
		})
	})
}
