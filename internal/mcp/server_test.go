package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/UB-Mannheim/maidisco/internal/relay"
	"github.com/UB-Mannheim/maidisco/library/catalog"
	"github.com/UB-Mannheim/maidisco/library/log"
)

type stubSearcher struct{}

func (stubSearcher) Search(_ context.Context, req relay.SearchRequest) (*relay.Outcome, error) {
	return &relay.Outcome{RequestID: "req-1", Query: req.Query, Records: []catalog.Record{}, Summary: relay.NoResultsSummary}, nil
}

func (stubSearcher) Backend() catalog.Backend { return catalog.BackendPrimo }

func TestNewServerRequiresSearcher(t *testing.T) {
	_, err := NewServer(nil, log.Logger)
	require.Error(t, err)
}

// TestServerInitialize verifies the streamable handler answers an initialize call.
func TestServerInitialize(t *testing.T) {
	s, err := NewServer(stubSearcher{}, nil)
	require.NoError(t, err)
	require.NotNil(t, s.Handler())

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0.0.1"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"name":"maidisco"`)
}

func TestShouldDowngradeMCPErrorLog(t *testing.T) {
	require.True(t, shouldDowngradeMCPErrorLog(mcp.MethodResourcesList, requireError("request error: resources not supported")))
	require.True(t, shouldDowngradeMCPErrorLog(mcp.MethodPromptsList, requireError("prompts not supported")))
	require.False(t, shouldDowngradeMCPErrorLog(mcp.MethodToolsCall, requireError("resources not supported")))
	require.False(t, shouldDowngradeMCPErrorLog(mcp.MethodResourcesList, requireError("other failure")))
	require.False(t, shouldDowngradeMCPErrorLog(mcp.MethodResourcesList, nil))
}

func TestHookPayloadTruncates(t *testing.T) {
	short := hookPayload(map[string]string{"a": "b"})
	require.Equal(t, `{"a":"b"}`, short)

	long := hookPayload(strings.Repeat("x", 2*httpLogBodyLimit))
	require.Less(t, len(long), 2*httpLogBodyLimit)

	require.Equal(t, "<unencodable payload>", hookPayload(make(chan int)))
}

// requireError converts text to an error for test readability.
func requireError(msg string) error {
	return &textError{msg: msg}
}

type textError struct {
	msg string
}

func (e *textError) Error() string {
	if e == nil {
		return ""
	}
	return e.msg
}
