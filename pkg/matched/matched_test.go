package matched

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
)

func periods(t *testing.T, sources ...string) []layout.Descriptor {
	t.Helper()
	ds, err := layout.ClassifyAll(sources)
	require.NoError(t, err)
	return ds
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRefreshWritesNewerPeriod(t *testing.T) {
	root := t.TempDir()
	matchedDir := filepath.Join(root, "matched_data")
	processedDir := filepath.Join(root, "grao_data")
	ps := periods(t,
		"https://www.grao.bg/tna/tadr-2019.txt",
		"https://www.grao.bg/tna/t41nm-15-03-2020_2.txt",
	)

	write(t, filepath.Join(matchedDir, "matched_data_2019.csv"),
		"ekatte,wikidata,permanent_population,current_population\n"+
			"56784,Q123,100,90\n"+
			"99999,Q456,5,5\n")
	write(t, filepath.Join(processedDir, "grao_data_2019.csv"),
		"ekatte,region,municipality,settlement,permanent_2019,current_2019\n56784,ВАРНА,АВРЕН,С. ПЕТРОВО,100,90\n")
	write(t, filepath.Join(processedDir, "grao_data_03_2020.csv"),
		"ekatte,region,municipality,settlement,permanent_03_2020,current_03_2020\n56784,ВАРНА,АВРЕН,С. ПЕТРОВО,120,95\n")

	res, err := Refresh(context.Background(), matchedDir, processedDir, ps)
	require.NoError(t, err)

	assert.Equal(t, "2019", res.From)
	assert.Equal(t, "03_2020", res.To)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, []string{"99999"}, res.Missing)
	assert.Equal(t, filepath.Join(matchedDir, "matched_data_03_2020.csv"), res.Path)

	out, err := ReadCSV(res.Path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ekatte", "wikidata", "permanent_population", "current_population"}, out.Header)
	assert.Equal(t, [][]string{
		{"56784", "Q123", "120", "95"},
		{"99999", "Q456", "5", "5"},
	}, out.Rows)
}

func TestRefreshUpToDate(t *testing.T) {
	root := t.TempDir()
	matchedDir := filepath.Join(root, "matched_data")
	processedDir := filepath.Join(root, "grao_data")
	ps := periods(t, "https://www.grao.bg/tna/tadr-2019.txt")

	write(t, filepath.Join(matchedDir, "matched_data_2019.csv"), "ekatte,permanent_population,current_population\n1,1,1\n")
	write(t, filepath.Join(processedDir, "grao_data_2019.csv"), "ekatte,permanent_2019,current_2019\n1,2,2\n")

	res, err := Refresh(context.Background(), matchedDir, processedDir, ps)
	require.NoError(t, err)
	assert.Empty(t, res.Path)

	entries, err := os.ReadDir(matchedDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRefreshWithoutMatchedTables(t *testing.T) {
	root := t.TempDir()
	_, err := Refresh(context.Background(), filepath.Join(root, "matched_data"), filepath.Join(root, "grao_data"), nil)
	assert.True(t, errors.IsNotFound(err))
}

func TestLatestSkipsUnknownLabels(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "grao_data_2019.csv"), "ekatte\n")
	write(t, filepath.Join(dir, "grao_data_1999.csv"), "ekatte\n")
	write(t, filepath.Join(dir, "notes.txt"), "")

	f, ok, err := Latest(dir, "grao_data_", periods(t, "https://www.grao.bg/tna/tadr-2019.txt"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2019", f.Label)
}

func TestTableIndex(t *testing.T) {
	tbl := &Table{Header: []string{"ekatte", "x"}, Rows: [][]string{{"1", "a"}, {"2", "b"}, {"1", "c"}}}
	idx, err := tbl.Index("ekatte")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1": 0, "2": 1}, idx)

	_, err = tbl.Index("missing")
	assert.True(t, errors.IsValidationError(err))
}
