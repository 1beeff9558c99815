package tables

import (
	"sort"

	"github.com/db-afk/GRAO-tables-processing/pkg/names"
)

// Assemble attaches every row lying strictly between two consecutive headers
// to the first of them. Rows before the first header or after the last one
// belong to summary blocks and are dropped. Region and municipality names are
// normalized here; settlement names already were by the parser.
func Assemble(doc ParsedDocument) []FullRecord {
	if len(doc.Headers) < 2 || len(doc.Rows) == 0 {
		return nil
	}

	headers := append([]RegionHeader(nil), doc.Headers...)
	sort.SliceStable(headers, func(i, j int) bool { return headers[i].Position < headers[j].Position })
	rows := append([]SettlementRecord(nil), doc.Rows...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	var out []FullRecord
	r := 0
	for i := 0; i+1 < len(headers); i++ {
		lo, hi := headers[i].Position, headers[i+1].Position
		for r < len(rows) && rows[r].Position <= lo {
			r++
		}
		for r < len(rows) && rows[r].Position < hi {
			out = append(out, FullRecord{
				Region:       names.Normalize(headers[i].Region),
				Municipality: names.Normalize(headers[i].Municipality),
				Settlement:   rows[r].Name,
				Permanent:    rows[r].Permanent,
				Current:      rows[r].Current,
			})
			r++
		}
	}
	return out
}
