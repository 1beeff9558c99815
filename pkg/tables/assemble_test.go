package tables_test

import (
	"strings"
	"testing"

	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleBoundaries(t *testing.T) {
	doc := tables.ParsedDocument{
		Headers: []tables.RegionHeader{
			{Region: "R2", Municipality: "M2", Position: 2},
			{Region: "R10", Municipality: "M10", Position: 10},
			{Region: "R20", Municipality: "M20", Position: 20},
		},
		Rows: []tables.SettlementRecord{
			{Name: "С. ЕДНО", Permanent: "1", Current: "1", Position: 1},
			{Name: "С. ПЕТ", Permanent: "5", Current: "5", Position: 5},
			{Name: "С. ПЕТНАДЕСЕТ", Permanent: "15", Current: "15", Position: 15},
			{Name: "С. ДВАДЕСЕТ И ПЕТ", Permanent: "25", Current: "25", Position: 25},
		},
	}

	got := tables.Assemble(doc)

	require.Len(t, got, 2)
	assert.Equal(t, tables.FullRecord{
		Region: "R2", Municipality: "M2", Settlement: "С. ПЕТ", Permanent: "5", Current: "5",
	}, got[0])
	assert.Equal(t, tables.FullRecord{
		Region: "R10", Municipality: "M10", Settlement: "С. ПЕТНАДЕСЕТ", Permanent: "15", Current: "15",
	}, got[1])
}

func TestAssembleNormalizesHeaderNames(t *testing.T) {
	doc := tables.ParsedDocument{
		Headers: []tables.RegionHeader{
			{Region: "СОФИЯ-ГРАД", Municipality: "СТОЛИЧНА", Position: 0},
			{Region: "ДОБРИЧ", Municipality: "ДОБРИЧКА", Position: 3},
			{Region: "ДОБРИЧ", Municipality: "БАЛЧИК", Position: 6},
		},
		Rows: []tables.SettlementRecord{
			{Name: "ГР. СОФИЯ", Permanent: "1", Current: "2", Position: 1},
			{Name: "С. ОВЧАРОВО", Permanent: "3", Current: "4", Position: 4},
		},
	}

	got := tables.Assemble(doc)

	require.Len(t, got, 2)
	assert.Equal(t, "СОФИЯ ГРАД", got[0].Region)
	assert.Equal(t, "ДОБРИЧ-СЕЛСКА", got[1].Municipality)
}

func TestAssembleDegenerate(t *testing.T) {
	assert.Empty(t, tables.Assemble(tables.ParsedDocument{}))
	assert.Empty(t, tables.Assemble(tables.ParsedDocument{
		Headers: []tables.RegionHeader{{Region: "R", Municipality: "M", Position: 0}},
		Rows:    []tables.SettlementRecord{{Name: "С. А", Position: 1}},
	}))
}

func TestParseAndAssembleDocument(t *testing.T) {
	raw := strings.Join([]string{
		"<html><body><pre>",
		"ТАБЛИЦА НА НАСЕЛЕНИЕТО ПО ПОСТОЯНЕН И НАСТОЯЩ АДРЕС",
		"област ВАРНА                     община АВРЕН",
		"| С.АВРЕН          |   2100 |   1900 |  2000 |",
		"| С.БЕЛОСЛАВ       |    300 |    250 |   260 |",
		"област ВАРНА                     община АКСАКОВО",
		"| ГР.АКСАКОВО      |   8000 |   7500 |  7700 |",
		"област ВАРНА                     община БЕЛОСЛАВ",
		"</pre></body></html>",
	}, "\r\n")

	lines, err := tables.Lines(strings.NewReader(raw))
	require.NoError(t, err)

	parser, err := tables.NewParser(tables.NewPatterns(), layout.Layout{Header: layout.HeaderNew, Period: layout.Quarterly})
	require.NoError(t, err)
	records := tables.Assemble(parser.Parse(lines))

	require.Len(t, records, 3)
	assert.Equal(t, tables.FullRecord{
		Region: "ВАРНА", Municipality: "АВРЕН", Settlement: "С. АВРЕН", Permanent: "2100", Current: "1900",
	}, records[0])
	assert.Equal(t, "АКСАКОВО", records[2].Municipality)
	assert.Equal(t, "ГР. АКСАКОВО", records[2].Settlement)
}
