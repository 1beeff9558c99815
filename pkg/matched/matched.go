// Package matched refreshes the population columns of hand-matched tables.
//
// A matched table is a CSV keyed by EKATTE code that carries the settlement
// population of one period next to arbitrary curated columns. Files are
// named "<dirname>_<label>.csv". When a newer processed period exists, a new
// matched table for that period is written with the population columns
// taken from it; every other column is copied unchanged.
package matched

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
	"github.com/db-afk/GRAO-tables-processing/pkg/save"
)

// Table is a CSV table held in memory.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of name in the header.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Index maps the values of the key column to row numbers. Later duplicates
// are ignored.
func (t *Table) Index(key string) (map[string]int, error) {
	col := t.Column(key)
	if col < 0 {
		return nil, errors.NewValidationError("column", key, "missing key column")
	}
	idx := make(map[string]int, len(t.Rows))
	for i, r := range t.Rows {
		if col >= len(r) {
			continue
		}
		if _, ok := idx[r[col]]; !ok {
			idx[r[col]] = i
		}
	}
	return idx, nil
}

// ReadCSV loads a CSV file with a header row.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	if len(records) == 0 {
		return nil, errors.NewParseError("csv", path, "no header row", nil)
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// WriteCSV atomically writes t to path.
func WriteCSV(path string, t *Table) error {
	return save.File(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Header); err != nil {
			return errors.WrapIO("write", path, err)
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return errors.WrapIO("write", path, err)
		}
		return nil
	})
}

// File is a dated table found in a directory.
type File struct {
	Path  string
	Label string
	Date  time.Time
}

// Latest returns the newest file in dir named prefix+label+".csv" whose label
// belongs to one of the periods. Files with unknown labels are skipped.
func Latest(dir, prefix string, periods []layout.Descriptor) (File, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, false, nil
		}
		return File{}, false, errors.WrapIO("read", dir, err)
	}

	dates := make(map[string]time.Time, len(periods))
	for _, d := range periods {
		dates[d.Label()] = d.Date()
	}

	var latest File
	found := false
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".csv" || !strings.HasPrefix(name, prefix) {
			continue
		}
		label := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".csv")
		date, ok := dates[label]
		if !ok {
			continue
		}
		if !found || date.After(latest.Date) {
			latest = File{Path: filepath.Join(dir, name), Label: label, Date: date}
			found = true
		}
	}
	return latest, found, nil
}

// Prefix returns the file name prefix of matched tables in dir.
func Prefix(dir string) string {
	return filepath.Base(filepath.Clean(dir)) + "_"
}

// Result describes a refresh.
type Result struct {
	// Path of the written table; empty when nothing was written.
	Path    string
	From    string
	To      string
	Updated int
	Missing []string
}

// Refresh writes a matched table for the newest processed period when it is
// newer than the newest matched table.
func Refresh(ctx context.Context, matchedDir, processedDir string, periods []layout.Descriptor) (*Result, error) {
	log := logging.FromContext(ctx)

	prefix := Prefix(matchedDir)
	current, ok, err := Latest(matchedDir, prefix, periods)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFoundError("matched table", matchedDir)
	}

	newest, ok, err := Latest(processedDir, constants.PeriodFilePrefix, periods)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFoundError("processed table", processedDir)
	}

	result := &Result{From: current.Label, To: newest.Label}
	if !newest.Date.After(current.Date) {
		log.Info().Str("matched", current.Label).Str("processed", newest.Label).Msg("Matched table is up to date")
		return result, nil
	}

	table, err := ReadCSV(current.Path)
	if err != nil {
		return nil, err
	}
	source, err := ReadCSV(newest.Path)
	if err != nil {
		return nil, err
	}

	keyCol := table.Column(constants.CodeColumn)
	if keyCol < 0 {
		return nil, errors.NewValidationError("column", constants.CodeColumn, "matched table "+current.Path+" has no code column")
	}
	sourceIdx, err := source.Index(constants.CodeColumn)
	if err != nil {
		return nil, err
	}
	srcPermanent := source.Column(constants.PermanentPrefix + newest.Label)
	srcCurrent := source.Column(constants.CurrentPrefix + newest.Label)
	if srcPermanent < 0 || srcCurrent < 0 {
		return nil, errors.NewValidationError("column", newest.Label, "processed table "+newest.Path+" has no population columns")
	}

	out := &Table{Header: append([]string(nil), table.Header...)}
	dstPermanent := ensureColumn(out, constants.PermanentPopulationColumn)
	dstCurrent := ensureColumn(out, constants.CurrentPopulationColumn)

	for _, r := range table.Rows {
		row := make([]string, len(out.Header))
		copy(row, r)
		code := ""
		if keyCol < len(r) {
			code = r[keyCol]
		}
		if i, ok := sourceIdx[code]; ok {
			src := source.Rows[i]
			row[dstPermanent] = field(src, srcPermanent)
			row[dstCurrent] = field(src, srcCurrent)
			result.Updated++
		} else {
			result.Missing = append(result.Missing, code)
		}
		out.Rows = append(out.Rows, row)
	}

	result.Path = filepath.Join(matchedDir, prefix+newest.Label+".csv")
	if err := WriteCSV(result.Path, out); err != nil {
		return nil, err
	}

	event := log.Info()
	if len(result.Missing) > 0 {
		event = log.Warn().Strs("missing", result.Missing)
	}
	event.Str("from", result.From).
		Str("to", result.To).
		Int("updated", result.Updated).
		Str("path", result.Path).
		Msg("Matched table refreshed")
	return result, nil
}

func ensureColumn(t *Table, name string) int {
	if i := t.Column(name); i >= 0 {
		return i
	}
	t.Header = append(t.Header, name)
	return len(t.Header) - 1
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
