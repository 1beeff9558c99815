package grao

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db-afk/GRAO-tables-processing/internal/storage/files"
	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
)

const (
	quarterlyURL = "https://www.grao.bg/tna/t41nm-15-03-2020_2.txt"
	yearlyURL    = "https://www.grao.bg/tna/tadr2004.txt"
)

var documents = map[string]string{
	quarterlyURL: strings.Join([]string{
		"<html><body><pre>",
		"ТАБЛИЦА НА НАСЕЛЕНИЕТО ПО ПОСТОЯНЕН И НАСТОЯЩ АДРЕС",
		"област ВАРНА                     община АВРЕН",
		"| С.АВРЕН          |   2100 |   1900 |  2000 |",
		"| С.ПЕТРОВО        |    120 |     95 |    90 |",
		"| С.НИКЪДЕ         |      1 |      1 |     1 |",
		"област ВАРНА                     община АКСАКОВО",
		"</pre></body></html>",
	}, "\r\n"),
	yearlyURL: strings.Join([]string{
		"<html><body><pre>",
		"ОБЛАСТ:ВАРНА",
		"ОБЩИНА:АВРЕН",
		"! С.АВРЕН    ! 10 ! 2200 ! 30 ! 40 ! 50 ! 2050 !",
		"ОБЛАСТ:ВАРНА",
		"ОБЩИНА:АКСАКОВО",
		"</pre></body></html>",
	}, "\n"),
}

type fakeFetcher struct {
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, charset string) (string, error) {
	f.calls = append(f.calls, url+"@"+charset)
	body, ok := documents[url]
	if !ok {
		return "", errors.NewAPIError("grao", 404, "Not Found")
	}
	return body, nil
}

type fakeResolver struct {
	calls int
}

func (r *fakeResolver) Resolve(_ context.Context, key ekatte.Key) (ekatte.Code, error) {
	r.calls++
	switch key.Settlement {
	case "АВРЕН":
		return "00151", nil
	case "ПЕТРОВО":
		return "56784", nil
	}
	return "", errors.NewNoMatchError(key.String(), 0)
}

func descriptors(t *testing.T, sources ...string) []layout.Descriptor {
	t.Helper()
	ds, err := layout.ClassifyAll(sources)
	require.NoError(t, err)
	return ds
}

func newProcessor(t *testing.T, root string, resolver disambiguation.Resolver, opts ...Option) (Processor, *fakeFetcher) {
	t.Helper()
	fetcher := &fakeFetcher{}
	p, err := New(append([]Option{
		WithFetcher(fetcher),
		WithResolver(resolver),
		WithStore(files.New(filepath.Join(root, "pickled_data"))),
		WithProcessedDir(filepath.Join(root, "grao_data")),
		WithCombinedDir(filepath.Join(root, "combined_tables")),
	}, opts...)...)
	require.NoError(t, err)
	return p, fetcher
}

func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	resolver := &fakeResolver{}
	p, fetcher := newProcessor(t, root, resolver, WithXLSX(true))

	var parsedLabels []string
	var outcomes []disambiguation.Outcome
	p.OnPeriodParsed(func(d layout.Descriptor, _ []tables.FullRecord) { parsedLabels = append(parsedLabels, d.Label()) })
	p.OnKeyProcessed(func(o disambiguation.Outcome, _ time.Duration) { outcomes = append(outcomes, o) })

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	res, err := p.Run(ctx, descriptors(t, quarterlyURL, yearlyURL))
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"03_2020", "2004"}, parsedLabels)
	assert.Len(t, fetcher.calls, 2)
	assert.Equal(t, quarterlyURL+"@windows-1251", fetcher.calls[0])

	require.Len(t, res.Periods, 2)
	assert.Equal(t, Period{Label: "03_2020", Records: 3, Rows: 2, Path: filepath.Join(root, "grao_data", "grao_data_03_2020.csv")}, res.Periods[0])
	assert.Equal(t, 1, res.Periods[1].Rows)

	assert.Equal(t, 3, res.Disambiguation.Total)
	assert.Equal(t, 2, res.Disambiguation.Resolved)
	assert.Len(t, res.Disambiguation.Failures, 1)
	assert.Len(t, outcomes, 3)

	combined, err := os.ReadFile(res.CombinedPath)
	require.NoError(t, err)
	assert.Equal(t,
		"ekatte,permanent_03_2020,current_03_2020,permanent_2004,current_2004\n"+
			"00151,2100,1900,2200,2050\n"+
			"56784,120,95,0,0\n",
		string(combined))

	_, err = os.Stat(res.XLSXPath)
	assert.NoError(t, err)
	assert.True(t, tl.Contains(res.RunID))
	assert.True(t, tl.Contains("Run finished"))
}

func TestKeyProcessedHookOptionIsPerProcessor(t *testing.T) {
	var first, second int
	p1, _ := newProcessor(t, t.TempDir(), &fakeResolver{},
		WithKeyProcessedHook(func(disambiguation.Outcome, time.Duration) { first++ }))
	p2, _ := newProcessor(t, t.TempDir(), &fakeResolver{},
		WithKeyProcessedHook(func(disambiguation.Outcome, time.Duration) { second++ }))

	_, err := p1.Run(context.Background(), descriptors(t, quarterlyURL))
	require.NoError(t, err)
	_, err = p2.Run(context.Background(), descriptors(t, quarterlyURL))
	require.NoError(t, err)

	assert.Equal(t, 3, first)
	assert.Equal(t, 3, second)

	_, err = New(WithKeyProcessedHook(nil))
	assert.True(t, errors.IsValidationError(err))
}

func TestRunResumesFromCache(t *testing.T) {
	root := t.TempDir()
	resolver := &fakeResolver{}
	ds := descriptors(t, quarterlyURL, yearlyURL)

	p, _ := newProcessor(t, root, resolver)
	_, err := p.Run(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, 3, resolver.calls)

	resolver.calls = 0
	p, _ = newProcessor(t, root, resolver)
	res, err := p.Run(context.Background(), ds)
	require.NoError(t, err)

	// Only the key without a match is looked up again.
	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, 2, res.Disambiguation.Cached)
}

func TestRunFailsOnFetchError(t *testing.T) {
	root := t.TempDir()
	resolver := &fakeResolver{}
	p, _ := newProcessor(t, root, resolver)

	_, err := p.Run(context.Background(), descriptors(t, "https://www.grao.bg/tna/tadr2010.txt"))
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.Zero(t, resolver.calls)
}

func TestRunRejectsDuplicateLabels(t *testing.T) {
	d, err := layout.Classify(yearlyURL)
	require.NoError(t, err)

	p, _ := newProcessor(t, t.TempDir(), &fakeResolver{})
	_, err = p.Run(context.Background(), []layout.Descriptor{d, d})
	assert.True(t, errors.IsValidationError(err))
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New()
	assert.True(t, errors.IsValidationError(err))

	_, err = New(WithFetcher(&fakeFetcher{}), WithResolver(&fakeResolver{}))
	assert.True(t, errors.IsValidationError(err))

	_, err = New(WithCharset(""))
	assert.True(t, errors.IsValidationError(err))
}

func TestRefreshMatchedWithoutTables(t *testing.T) {
	root := t.TempDir()
	p, _ := newProcessor(t, root, &fakeResolver{}, WithMatchedDir(filepath.Join(root, "matched_data")))

	res, err := p.Run(context.Background(), descriptors(t, quarterlyURL))
	require.NoError(t, err)
	assert.Nil(t, res.Matched)
}
