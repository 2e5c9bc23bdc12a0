package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/UB-Mannheim/maidisco/library/catalog"
	"github.com/UB-Mannheim/maidisco/library/llm"
	"github.com/UB-Mannheim/maidisco/library/log"
)

// NoResultsSummary is returned for an empty result set without calling the LLM.
const NoResultsSummary = "No results to summarize."

const (
	summaryTemperature      = 0.2
	defaultSummaryMaxTokens = 1200
	defaultSummaryTimeout   = 30 * time.Second
	maxSummaryLines         = 10
)

const summarySystemPrompt = "You are a helpful academic assistant."

const summaryUserPrompt = "You are a research assistant. The user asked: %s\n\n" +
	"Below are search results from a %s catalog. " +
	"Provide a concise summary (3-6 sentences), highlight relevant items, " +
	"and suggest 2 follow-up search queries.\n\n%s"

// Summarizer asks the LLM for a short markdown synthesis of the records.
type Summarizer struct {
	llm       llm.Completer
	backend   catalog.Backend
	maxTokens int
	timeout   time.Duration
	logger    logSDK.Logger
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithSummaryMaxTokens caps the summary completion length. Non-positive values are ignored.
func WithSummaryMaxTokens(n int) SummarizerOption {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithSummaryTimeout bounds one summary call.
func WithSummaryTimeout(d time.Duration) SummarizerOption {
	return func(s *Summarizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSummarizerLogger overrides the logger used when the context has none.
func WithSummarizerLogger(logger logSDK.Logger) SummarizerOption {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSummarizer creates a Summarizer for the given backend.
func NewSummarizer(completer llm.Completer, backend catalog.Backend, opts ...SummarizerOption) (*Summarizer, error) {
	if completer == nil {
		return nil, errors.New("llm completer is required")
	}

	s := &Summarizer{
		llm:       completer,
		backend:   backend,
		maxTokens: defaultSummaryMaxTokens,
		timeout:   defaultSummaryTimeout,
		logger:    log.Logger.Named("summarizer"),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Summarize returns the trimmed LLM text, or NoResultsSummary for no records.
func (s *Summarizer) Summarize(ctx context.Context, query string, records []catalog.Record) (string, error) {
	if len(records) == 0 {
		return NoResultsSummary, nil
	}

	logger := log.FromContext(ctx, s.logger, "summarizer")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startAt := time.Now()
	text, err := s.llm.Complete(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: summarySystemPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf(summaryUserPrompt,
				query, s.backend.DisplayName(), RecordLines(records))},
		},
		Temperature: summaryTemperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "summarize results")
	}

	logger.Debug("summarized results",
		zap.Int("records", len(records)),
		zap.Duration("cost", time.Since(startAt)))
	return strings.TrimSpace(text), nil
}

// RecordLines renders at most ten records as numbered prompt lines.
func RecordLines(records []catalog.Record) string {
	if len(records) > maxSummaryLines {
		records = records[:maxSummaryLines]
	}

	lines := make([]string, 0, len(records))
	for i, r := range records {
		lines = append(lines, fmt.Sprintf("%d. %s — %s (%s) — %s",
			i+1, r.Title, r.Authors, r.Year, r.Snippet))
	}
	return strings.Join(lines, "\n")
}
