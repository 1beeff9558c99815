package logging_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
)

func TestContext(t *testing.T) {
	t.Run("default when missing", func(t *testing.T) {
		assert.NotNil(t, logging.FromContext(context.Background()))
	})

	t.Run("fields flow into output", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithRunID(ctx, "run-1")
		ctx = logging.WithPeriod(ctx, "03_2020")
		ctx = logging.WithSettlement(ctx, "ВАРНА/ВАРНА/ВАРНА")

		logging.FromContext(ctx).Info().Msg("resolved")

		assert.Equal(t, "run-1", logging.RunID(ctx))
		entries := tl.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "run-1", entries[0]["run_id"])
		assert.Equal(t, "03_2020", entries[0]["period"])
		assert.Equal(t, "ВАРНА/ВАРНА/ВАРНА", entries[0]["settlement"])
	})

	t.Run("with fields", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithFields(ctx, map[string]any{"attempt": 2, "ok": false})
		logging.FromContext(ctx).Warn().Msg("retrying")

		assert.True(t, tl.Contains(`"attempt":2`))
		assert.True(t, tl.Contains(`"ok":false`))
		assert.Equal(t, []string{"retrying"}, tl.Messages(zerolog.WarnLevel))
		assert.Empty(t, tl.Messages(zerolog.InfoLevel))
	})

	t.Run("run id absent", func(t *testing.T) {
		assert.Empty(t, logging.RunID(context.Background()))
	})
}
