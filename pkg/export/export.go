// Package export writes period and combined tables as CSV and XLSX files.
// Every file is replaced atomically.
package export

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/merge"
	"github.com/db-afk/GRAO-tables-processing/pkg/save"
)

// CombinedSheet is the worksheet name of the combined workbook.
const CombinedSheet = "combined"

// PeriodPath returns the CSV path of a period inside dir.
func PeriodPath(dir, label string) string {
	return filepath.Join(dir, constants.PeriodFilePrefix+label+".csv")
}

// CombinedPath returns the path of the combined table inside dir with the
// given extension, e.g. ".csv".
func CombinedPath(dir, ext string) string {
	return filepath.Join(dir, constants.CombinedFileName+ext)
}

// PeriodHeader returns the column names of a period table.
func PeriodHeader(label string) []string {
	return []string{
		constants.CodeColumn, "region", "municipality", "settlement",
		constants.PermanentPrefix + label, constants.CurrentPrefix + label,
	}
}

// WritePeriodCSV writes one period table.
func WritePeriodCSV(path string, p merge.PeriodTable) error {
	return save.File(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(PeriodHeader(p.Label)); err != nil {
			return errors.WrapIO("write", path, err)
		}
		for _, r := range p.Rows {
			record := []string{string(r.Code), r.Region, r.Municipality, r.Settlement, r.Permanent, r.Current}
			if err := cw.Write(record); err != nil {
				return errors.WrapIO("write", path, err)
			}
		}
		cw.Flush()
		return errors.WrapIO("write", path, cw.Error())
	})
}

// WriteCombinedCSV writes the merged table.
func WriteCombinedCSV(path string, t *merge.Table) error {
	return save.File(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		header := append([]string{constants.CodeColumn}, t.Columns()...)
		if err := cw.Write(header); err != nil {
			return errors.WrapIO("write", path, err)
		}

		record := make([]string, len(header))
		for _, code := range t.Codes {
			counts, _ := t.Row(code)
			record[0] = string(code)
			for i, c := range counts {
				record[1+2*i] = strconv.Itoa(c.Permanent)
				record[2+2*i] = strconv.Itoa(c.Current)
			}
			if err := cw.Write(record); err != nil {
				return errors.WrapIO("write", path, err)
			}
		}
		cw.Flush()
		return errors.WrapIO("write", path, cw.Error())
	})
}

// WriteCombinedXLSX writes the merged table as a workbook with a single
// sheet and a bold header row. Codes stay text so leading zeros survive.
func WriteCombinedXLSX(path string, t *merge.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), CombinedSheet); err != nil {
		return errors.WrapResource("create", "sheet", CombinedSheet, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return errors.WrapResource("create", "style", "header", err)
	}

	header := append([]string{constants.CodeColumn}, t.Columns()...)
	if err := f.SetSheetRow(CombinedSheet, "A1", &header); err != nil {
		return errors.WrapResource("write", "sheet", CombinedSheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return errors.WrapResource("write", "sheet", CombinedSheet, err)
	}
	if err := f.SetCellStyle(CombinedSheet, "A1", last, headerStyle); err != nil {
		return errors.WrapResource("style", "sheet", CombinedSheet, err)
	}

	for i, code := range t.Codes {
		counts, _ := t.Row(code)
		row := make([]any, 0, len(header))
		row = append(row, string(code))
		for _, c := range counts {
			row = append(row, c.Permanent, c.Current)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WrapResource("write", "sheet", CombinedSheet, err)
		}
		if err := f.SetSheetRow(CombinedSheet, cell, &row); err != nil {
			return errors.WrapResource("write", "sheet", CombinedSheet, err)
		}
	}

	return save.File(path, func(w io.Writer) error {
		if _, err := f.WriteTo(w); err != nil {
			return errors.WrapIO("write", path, err)
		}
		return nil
	})
}
