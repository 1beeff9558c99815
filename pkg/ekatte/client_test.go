package ekatte_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/db-afk/GRAO-tables-processing/internal/transport"
	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerServer(t *testing.T, page string) (*httptest.Server, *[]string) {
	t.Helper()
	body, err := transport.Encode(page, constants.SourceEncoding)
	require.NoError(t, err)

	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server, &queries
}

func TestClientLookup(t *testing.T) {
	server, queries := registerServer(t, loadFixture(t, "petrovo.html"))
	client := ekatte.NewClient(transport.New(), ekatte.WithBaseURL(server.URL))

	candidates, err := client.Lookup(context.Background(), "ПЕТРОВО")

	require.NoError(t, err)
	require.Len(t, candidates, 3)
	require.Len(t, *queries, 1)
	assert.Equal(t, "ezik=bul&f=6&name=%CF%C5%D2%D0%CE%C2%CE&code=&kind=-1", (*queries)[0])
}

func TestClientLookupHyphenatedName(t *testing.T) {
	client := ekatte.NewClient(transport.New(), ekatte.WithBaseURL("https://register.test/index.php"))
	u, err := client.URL("САН-СТЕФАНО")
	require.NoError(t, err)
	assert.Equal(t, "https://register.test/index.php?ezik=bul&f=6&name=%D1%D2%C5%D4%C0%CD%CE&code=&kind=-1", u)
}

func TestClientLookupMalformedPage(t *testing.T) {
	server, _ := registerServer(t, "<html><body>Service temporarily unavailable</body></html>")
	client := ekatte.NewClient(transport.New(), ekatte.WithBaseURL(server.URL))

	_, err := client.Lookup(context.Background(), "ПЕТРОВО")

	require.Error(t, err)
	assert.True(t, errors.IsMalformedResponse(err))
	assert.True(t, ekatte.Retryable(err))
}

func TestClientLookupStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	client := ekatte.NewClient(transport.New(), ekatte.WithBaseURL(server.URL))

	_, err := client.Lookup(context.Background(), "ПЕТРОВО")

	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.True(t, ekatte.Retryable(err))
}

func TestClientEndToEndResolve(t *testing.T) {
	server, _ := registerServer(t, loadFixture(t, "petrovo.html"))
	client := ekatte.NewClient(transport.New(), ekatte.WithBaseURL(server.URL))

	code, err := ekatte.NewResolver(client).Resolve(context.Background(), petrovoKey)

	require.NoError(t, err)
	assert.Equal(t, ekatte.Code("56784"), code)
}
