package tables_test

import (
	"strings"
	"testing"

	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	t.Run("pre block", func(t *testing.T) {
		lines, err := tables.Lines(strings.NewReader("<pre>first\r\nsecond\r\n</pre>"))
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", ""}, lines)
	})

	t.Run("elements split text", func(t *testing.T) {
		lines, err := tables.Lines(strings.NewReader("<table><tr><td>а</td><td>б</td></tr></table>"))
		require.NoError(t, err)
		assert.Equal(t, []string{"а", "б"}, lines)
	})

	t.Run("scripts are skipped", func(t *testing.T) {
		lines, err := tables.Lines(strings.NewReader("<head><script>var x = 1;</script></head><body>текст</body>"))
		require.NoError(t, err)
		assert.Equal(t, []string{"текст"}, lines)
	})

	t.Run("plain text", func(t *testing.T) {
		lines, err := tables.Lines(strings.NewReader("ред 1\nред 2"))
		require.NoError(t, err)
		assert.Equal(t, []string{"ред 1", "ред 2"}, lines)
	})
}
