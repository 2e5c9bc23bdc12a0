package relay

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/UB-Mannheim/maidisco/library/catalog"
)

func TestSummarizeEmptyRecordsSkipsLLM(t *testing.T) {
	t.Parallel()

	completer := newScripted()
	s, err := NewSummarizer(completer, catalog.BackendVuFind)
	require.NoError(t, err)

	got, err := s.Summarize(context.Background(), "anything", nil)
	require.NoError(t, err)
	require.Equal(t, NoResultsSummary, got)
	require.Empty(t, completer.Calls())
}

func TestSummarizeRequest(t *testing.T) {
	t.Parallel()

	completer := newScripted(reply{text: "\n  Two items stand out.  \n"})
	s, err := NewSummarizer(completer, catalog.BackendVuFind)
	require.NoError(t, err)

	records := []catalog.Record{
		{Title: "A", Authors: "X, Y", Year: "2020", Snippet: "about a", Link: "#"},
		{Title: "B", Authors: "Z", Year: "2021", Link: "#"},
	}
	got, err := s.Summarize(context.Background(), "bees", records)
	require.NoError(t, err)
	require.Equal(t, "Two items stand out.", got)

	calls := completer.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, 0.2, calls[0].Temperature)
	require.Equal(t, 1200, calls[0].MaxTokens)
	prompt := calls[0].Messages[1].Content
	require.Contains(t, prompt, "The user asked: bees")
	require.Contains(t, prompt, "VuFind catalog")
	require.Contains(t, prompt, "suggest 2 follow-up search queries")
	require.Contains(t, prompt, "1. A — X, Y (2020) — about a")
	require.Contains(t, prompt, "2. B — Z (2021) — ")
}

func TestSummarizerOptionsIgnoreInvalidValues(t *testing.T) {
	t.Parallel()

	s, err := NewSummarizer(newScripted(), catalog.BackendPrimo,
		WithSummaryMaxTokens(-1),
		WithSummaryTimeout(0),
		WithSummarizerLogger(nil),
	)
	require.NoError(t, err)
	require.Equal(t, defaultSummaryMaxTokens, s.maxTokens)
	require.Equal(t, defaultSummaryTimeout, s.timeout)
	require.NotNil(t, s.logger)

	s, err = NewSummarizer(newScripted(), catalog.BackendPrimo,
		WithSummaryMaxTokens(300),
		WithSummaryTimeout(5*time.Second),
	)
	require.NoError(t, err)
	require.Equal(t, 300, s.maxTokens)
	require.Equal(t, 5*time.Second, s.timeout)
}

func TestRecordLinesCapsAtTen(t *testing.T) {
	t.Parallel()

	records := make([]catalog.Record, 15)
	for i := range records {
		records[i] = catalog.Record{Title: fmt.Sprintf("T%d", i+1)}
	}

	lines := strings.Split(RecordLines(records), "\n")
	require.Len(t, lines, 10)
	require.True(t, strings.HasPrefix(lines[0], "1. T1 — "))
	require.True(t, strings.HasPrefix(lines[9], "10. T10 — "))
}

func TestSummarizeError(t *testing.T) {
	t.Parallel()

	completer := newScripted(reply{err: errors.New("rate limited")})
	s, err := NewSummarizer(completer, catalog.BackendPrimo, WithSummaryMaxTokens(300))
	require.NoError(t, err)

	_, err = s.Summarize(context.Background(), "bees", []catalog.Record{{Title: "A"}})
	require.ErrorContains(t, err, "rate limited")
	require.Equal(t, 300, completer.Calls()[0].MaxTokens)
}
