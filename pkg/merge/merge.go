// Package merge joins per-period population tables on the EKATTE code into
// one wide table with a permanent and a current column per period.
package merge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
)

// Row is one settlement of one period. Population figures are kept as the
// digit text found in the source table.
type Row struct {
	Code         ekatte.Code
	Region       string
	Municipality string
	Settlement   string
	Permanent    string
	Current      string
}

// PeriodTable is the code-keyed table of one period.
type PeriodTable struct {
	Label string
	Rows  []Row
}

// Keyed attaches codes to the records of one period. Records for which code
// reports no code are dropped, and only the first row of every code is kept.
func Keyed(label string, records []tables.FullRecord, code func(tables.FullRecord) (ekatte.Code, bool)) PeriodTable {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		c, ok := code(r)
		if !ok {
			continue
		}
		rows = append(rows, Row{
			Code:         c,
			Region:       r.Region,
			Municipality: r.Municipality,
			Settlement:   r.Settlement,
			Permanent:    r.Permanent,
			Current:      r.Current,
		})
	}
	return PeriodTable{Label: label, Rows: Dedupe(rows)}
}

// Dedupe keeps the first row of every code, preserving order.
func Dedupe(rows []Row) []Row {
	seen := make(map[ekatte.Code]struct{}, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.Code]; ok {
			continue
		}
		seen[r.Code] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Counts is the population pair of one settlement in one period.
type Counts struct {
	Permanent int
	Current   int
}

// Table is the merged table. Codes are sorted ascending and every code has
// exactly one Counts per label, in label order.
type Table struct {
	Labels []string
	Codes  []ekatte.Code
	values map[ekatte.Code][]Counts
}

// Row returns the counts of code, one per period.
func (t *Table) Row(code ekatte.Code) ([]Counts, bool) {
	v, ok := t.values[code]
	return v, ok
}

// Columns returns the value column names, two per period.
func (t *Table) Columns() []string {
	cols := make([]string, 0, 2*len(t.Labels))
	for _, l := range t.Labels {
		cols = append(cols, constants.PermanentPrefix+l, constants.CurrentPrefix+l)
	}
	return cols
}

// Len returns the number of codes.
func (t *Table) Len() int {
	return len(t.Codes)
}

// Merge outer-joins the periods on code. A code missing from a period counts
// zero for both columns of that period.
func Merge(periods ...PeriodTable) (*Table, error) {
	t := &Table{
		Labels: make([]string, 0, len(periods)),
		values: make(map[ekatte.Code][]Counts),
	}

	labels := make(map[string]struct{}, len(periods))
	for _, p := range periods {
		if _, ok := labels[p.Label]; ok {
			return nil, errors.NewValidationError("label", p.Label, "duplicate period label")
		}
		labels[p.Label] = struct{}{}
		t.Labels = append(t.Labels, p.Label)
	}

	for i, p := range periods {
		for _, r := range Dedupe(p.Rows) {
			permanent, err := count(p.Label, r.Code, constants.PermanentPrefix, r.Permanent)
			if err != nil {
				return nil, err
			}
			current, err := count(p.Label, r.Code, constants.CurrentPrefix, r.Current)
			if err != nil {
				return nil, err
			}

			row, ok := t.values[r.Code]
			if !ok {
				row = make([]Counts, len(periods))
				t.values[r.Code] = row
				t.Codes = append(t.Codes, r.Code)
			}
			row[i] = Counts{Permanent: permanent, Current: current}
		}
	}

	sort.Slice(t.Codes, func(i, j int) bool { return t.Codes[i] < t.Codes[j] })
	return t, nil
}

func count(label string, code ekatte.Code, prefix, text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, errors.NewParseError("number", label,
			fmt.Sprintf("%s%s of %s is %q", prefix, label, code, text), err)
	}
	return n, nil
}
