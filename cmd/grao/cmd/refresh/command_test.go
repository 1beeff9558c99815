package refresh

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grao "github.com/db-afk/GRAO-tables-processing"
	"github.com/db-afk/GRAO-tables-processing/cmd/application"
	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
	"github.com/db-afk/GRAO-tables-processing/pkg/matched"
	"github.com/db-afk/GRAO-tables-processing/pkg/sources"
	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
)

type stubProcessor struct {
	periods []layout.Descriptor
	result  *matched.Result
}

func (s *stubProcessor) Run(context.Context, []layout.Descriptor) (*grao.Result, error) {
	return nil, nil
}

func (s *stubProcessor) Parse(context.Context, layout.Descriptor) ([]tables.FullRecord, error) {
	return nil, nil
}

func (s *stubProcessor) RefreshMatched(_ context.Context, periods []layout.Descriptor) (*matched.Result, error) {
	s.periods = periods
	return s.result, nil
}

func (s *stubProcessor) OnPeriodParsed(grao.PeriodParsedHook) {}

func (s *stubProcessor) OnKeyProcessed(grao.KeyProcessedHook) {}

func newMock(p *stubProcessor, options *int) *application.Mock {
	return &application.Mock{
		CatalogFunc: func(string) (*sources.Catalog, error) {
			return sources.Parse("catalog.yaml", []byte("- https://www.grao.bg/tna/t41nm-15-03-2020_2.txt\n"))
		},
		ProcessorFunc: func(opts ...grao.Option) (grao.Processor, error) {
			*options = len(opts)
			return p, nil
		},
		MatchedDirFunc:   func() string { return "matched_data" },
		OutputFormatFunc: func() string { return "table" },
	}
}

func TestRefreshWritesTable(t *testing.T) {
	var options int
	p := &stubProcessor{result: &matched.Result{
		Path:    "matched_data/matched_data_03_2020.csv",
		From:    "2019",
		To:      "03_2020",
		Updated: 2,
	}}

	var buf bytes.Buffer
	require.NoError(t, Execute(context.Background(), newMock(p, &options), &Flags{}, &buf))

	assert.Equal(t, 1, options)
	assert.Len(t, p.periods, 1)
	assert.Contains(t, buf.String(), "03_2020")
}

func TestRefreshUpToDate(t *testing.T) {
	var options int
	var buf bytes.Buffer
	require.NoError(t, Execute(context.Background(), newMock(&stubProcessor{}, &options), &Flags{}, &buf))
	assert.Contains(t, buf.String(), "(up to date)")
}
