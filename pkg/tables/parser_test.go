package tables_test

import (
	"testing"

	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var patterns = tables.NewPatterns()

func newParser(t *testing.T, h layout.HeaderFormat, p layout.PeriodType) *tables.Parser {
	t.Helper()
	parser, err := tables.NewParser(patterns, layout.Layout{Header: h, Period: p})
	require.NoError(t, err)
	return parser
}

func TestNewFormatHeader(t *testing.T) {
	parser := newParser(t, layout.HeaderNew, layout.Quarterly)
	assert.Equal(t, tables.Scanning, parser.State())

	doc := parser.Parse([]string{
		"ТАБЛИЦА НА НАСЕЛЕНИЕТО",
		"област ВАРНА          община ВАРНА",
		"област СОФИЯ-ГРАД     община СТОЛИЧНА   ",
	})

	require.Len(t, doc.Headers, 2)
	assert.Equal(t, tables.RegionHeader{Region: "ВАРНА", Municipality: "ВАРНА", Position: 1}, doc.Headers[0])
	assert.Equal(t, tables.RegionHeader{Region: "СОФИЯ-ГРАД", Municipality: "СТОЛИЧНА", Position: 2}, doc.Headers[1])
	assert.Empty(t, doc.Rows)
}

func TestQuarterlyDataLine(t *testing.T) {
	parser := newParser(t, layout.HeaderNew, layout.Quarterly)
	doc := parser.Parse([]string{"ТП.ПЕТРОВО   | 120  | 95  | 90"})

	require.Len(t, doc.Rows, 1)
	assert.Equal(t, tables.SettlementRecord{
		Name:      "ТП. ПЕТРОВО",
		Permanent: "120",
		Current:   "95",
		Position:  0,
	}, doc.Rows[0])
}

func TestYearlyDataLine(t *testing.T) {
	parser := newParser(t, layout.HeaderNew, layout.Yearly)
	doc := parser.Parse([]string{
		"С.ГОРНА-ЛИПНИЦА ! 10 ! 20 ! 30 ! 40 ! 50 ! 60",
		"С.ДОЛНО | 1 | 2 | 3",
	})

	require.Len(t, doc.Rows, 1, "a line with too few figures is skipped")
	row := doc.Rows[0]
	assert.Equal(t, "С. ГОРНА ЛИПНИЦА", row.Name)
	assert.Equal(t, "20", row.Permanent)
	assert.Equal(t, "60", row.Current)
}

func TestDataLineNormalizesName(t *testing.T) {
	parser := newParser(t, layout.HeaderNew, layout.Quarterly)
	doc := parser.Parse([]string{"С.БОБОВДОЛ | 7 | 6 | 5"})
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, "С. БОБОВ ДОЛ", doc.Rows[0].Name)
}

func TestOldFormatHeaders(t *testing.T) {
	t.Run("region then municipality", func(t *testing.T) {
		parser := newParser(t, layout.HeaderOld, layout.Yearly)
		doc := parser.Parse([]string{
			"ОБЛАСТ:ВАРНА",
			"ОБЩИНА:ВАРНА",
			"С.КАМЕНАР ! 1 ! 2 ! 3 ! 4 ! 5 ! 6",
		})
		require.Len(t, doc.Headers, 1)
		assert.Equal(t, tables.RegionHeader{Region: "ВАРНА", Municipality: "ВАРНА", Position: 1}, doc.Headers[0])
		require.Len(t, doc.Rows, 1)
		assert.Equal(t, 2, doc.Rows[0].Position)
		assert.Equal(t, tables.SeekingHeader, parser.State())
	})

	t.Run("blank line between is tolerated", func(t *testing.T) {
		parser := newParser(t, layout.HeaderOld, layout.Yearly)
		doc := parser.Parse([]string{"ОБЛАСТ:ВЕЛИКО ТЪРНОВО  ", "   ", "ОБЩИНА:ЕЛЕНА"})
		require.Len(t, doc.Headers, 1)
		assert.Equal(t, "ВЕЛИКО ТЪРНОВО", doc.Headers[0].Region)
		assert.Equal(t, 2, doc.Headers[0].Position)
	})

	t.Run("municipality without region is ignored", func(t *testing.T) {
		parser := newParser(t, layout.HeaderOld, layout.Yearly)
		doc := parser.Parse([]string{"ОБЩИНА:ЕЛЕНА"})
		assert.Empty(t, doc.Headers)
		assert.Equal(t, tables.SeekingHeader, parser.State())
	})

	t.Run("unrelated line resets", func(t *testing.T) {
		parser := newParser(t, layout.HeaderOld, layout.Yearly)
		doc := parser.Parse([]string{"ОБЛАСТ:ВАРНА", "СТРАНИЦА 2", "ОБЩИНА:ВАРНА"})
		assert.Empty(t, doc.Headers)
	})

	t.Run("region left pending", func(t *testing.T) {
		parser := newParser(t, layout.HeaderOld, layout.Yearly)
		parser.Parse([]string{"ОБЛАСТ:ВАРНА"})
		assert.Equal(t, tables.SeekingMunicipality, parser.State())
	})

	t.Run("both on one line", func(t *testing.T) {
		parser := newParser(t, layout.HeaderOld, layout.Yearly)
		doc := parser.Parse([]string{"ОБЛАСТ:РУСЕ ОБЩИНА:ДВЕ МОГИЛИ"})
		require.Len(t, doc.Headers, 1)
		assert.Equal(t, "РУСЕ", doc.Headers[0].Region)
		assert.Equal(t, "ДВЕ МОГИЛИ", doc.Headers[0].Municipality)
	})
}

func TestNewParserRejectsUnknownLayout(t *testing.T) {
	_, err := tables.NewParser(patterns, layout.Layout{Header: layout.HeaderNew})
	assert.Error(t, err)
	_, err = tables.NewParser(patterns, layout.Layout{Period: layout.Yearly})
	assert.Error(t, err)
	_, err = tables.NewParser(nil, layout.Layout{Header: layout.HeaderNew, Period: layout.Yearly})
	assert.Error(t, err)
}
