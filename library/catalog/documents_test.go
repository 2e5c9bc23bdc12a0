package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractDocumentsShapes(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		expected int
	}{
		{name: "docs", raw: `{"docs":[{"a":1},{"a":2}]}`, expected: 2},
		{name: "records", raw: `{"records":[{"a":1}]}`, expected: 1},
		{name: "pnx list", raw: `{"pnx":[{"a":1}]}`, expected: 1},
		{name: "pnx object ignored", raw: `{"pnx":{"display":{}}}`, expected: 0},
		{name: "items", raw: `{"items":[{"a":1},{"a":2},{"a":3}]}`, expected: 3},
		{name: "bare list", raw: `[{"a":1}]`, expected: 1},
		{name: "non-object entries skipped", raw: `[1,"x",{"a":1},null]`, expected: 1},
		{name: "empty object", raw: `{}`, expected: 0},
		{name: "null docs", raw: `{"docs":null,"records":[{"a":1}]}`, expected: 1},
		{name: "scalar", raw: `42`, expected: 0},
		{name: "empty", raw: ``, expected: 0},
		{name: "malformed", raw: `{"docs":[`, expected: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Len(t, ExtractDocuments(json.RawMessage(tc.raw)), tc.expected)
		})
	}
}

func TestExtractDocumentsPriority(t *testing.T) {
	docs := ExtractDocuments(json.RawMessage(`{"items":[{"k":"items"}],"records":[{"k":"records"}],"docs":[{"k":"docs"}]}`))
	require.Len(t, docs, 1)
	require.JSONEq(t, `{"k":"docs"}`, string(docs[0]))
}

func TestLimit(t *testing.T) {
	docs := make([]json.RawMessage, 15)
	require.Len(t, Limit(docs, 10), 10)
	require.Len(t, Limit(docs, 0), DefaultMaxItems)
	require.Len(t, Limit(docs, 20), 15)
	require.Empty(t, Limit(nil, 5))
}

func TestFinalize(t *testing.T) {
	require.Equal(t, Record{Title: PlaceholderTitle, Link: PlaceholderLink}, Finalize(Record{}))
	require.Equal(t, Record{Title: "T", Link: "L"}, Finalize(Record{Title: "T", Link: "L"}))
}
