package primo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/UB-Mannheim/maidisco/library/catalog"
)

func TestSearchEngineSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.Equal(t, "any,contains,climate resilience", r.URL.Query().Get("q"))
		require.Equal(t, "key", r.URL.Query().Get("apikey"))
		require.Equal(t, "MAN_ALMA", r.URL.Query().Get("scope"))
		require.Equal(t, "default_tab", r.URL.Query().Get("tab"))
		require.Equal(t, "MAN_UB", r.URL.Query().Get("vid"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"docs":[{"pnx":{"display":{"title":["A"]}}}]}`))
	}))
	defer server.Close()

	engine := NewSearchEngine(
		WithEndpoint(server.URL),
		WithHTTPClient(server.Client()),
		WithAPIKey("key"),
		WithScope("MAN_ALMA"),
		WithTab("default_tab"),
		WithVID("MAN_UB"),
	)
	require.Equal(t, catalog.BackendPrimo, engine.Name())

	resp := engine.Search(context.Background(), catalog.Query{Text: "climate resilience"})
	require.False(t, resp.Failed(), resp.Err)
	require.JSONEq(t, `{"docs":[{"pnx":{"display":{"title":["A"]}}}]}`, string(resp.Raw))
}

func TestSearchEngineOmitsUnsetParameters(t *testing.T) {
	engine := NewSearchEngine(WithQueryPrefix(""))

	params := engine.Params(catalog.Query{
		Text:    "urban planning",
		Filters: catalog.Filters{Language: "eng"},
	})
	require.Equal(t, "urban planning", params.Get("q"))
	for _, key := range []string{"apikey", "scope", "tab", "vid", "limit", "lang"} {
		require.Empty(t, params.Get(key), key)
	}
}

func TestSearchEngineHandlesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"server"}`))
	}))
	defer server.Close()

	engine := NewSearchEngine(WithEndpoint(server.URL), WithHTTPClient(server.Client()))

	resp := engine.Search(context.Background(), catalog.Query{Text: "query"})
	require.True(t, resp.Failed())
	require.Nil(t, resp.Raw)
	require.Contains(t, resp.Err, "returned status 500")
}

func TestSearchEngineHandlesConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	engine := NewSearchEngine(WithEndpoint(endpoint))

	resp := engine.Search(context.Background(), catalog.Query{Text: "query"})
	require.True(t, resp.Failed())
	require.Contains(t, resp.Err, "send primo request")
}

func TestSearchEngineRejectsNonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>login required</html>`))
	}))
	defer server.Close()

	engine := NewSearchEngine(WithEndpoint(server.URL), WithHTTPClient(server.Client()))

	resp := engine.Search(context.Background(), catalog.Query{Text: "query"})
	require.True(t, resp.Failed())
	require.Contains(t, resp.Err, "non-JSON")
}

func TestSearchEngineValidatesQuery(t *testing.T) {
	engine := NewSearchEngine()

	resp := engine.Search(context.Background(), catalog.Query{Text: "  "})
	require.True(t, resp.Failed())
	require.Contains(t, resp.Err, "empty")
}
