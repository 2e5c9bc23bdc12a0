package relay

import (
	"context"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"

	"github.com/UB-Mannheim/maidisco/library/catalog"
	"github.com/UB-Mannheim/maidisco/library/catalog/primo"
	"github.com/UB-Mannheim/maidisco/library/catalog/vufind"
	"github.com/UB-Mannheim/maidisco/library/config"
	"github.com/UB-Mannheim/maidisco/library/llm"
	"github.com/UB-Mannheim/maidisco/library/log"
)

// QueryTranslator turns free text into a structured query. It never fails.
type QueryTranslator interface {
	Translate(ctx context.Context, text string) TranslatedQuery
}

// ResultSummarizer writes a prose summary of normalized records.
type ResultSummarizer interface {
	Summarize(ctx context.Context, query string, records []catalog.Record) (string, error)
}

// Service wires the pipeline stages together. It holds no per-request state.
type Service struct {
	translator QueryTranslator
	engine     catalog.Engine
	normalizer catalog.Normalizer
	summarizer ResultSummarizer
	maxItems   int
	logger     logSDK.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMaxItems caps the number of normalized records.
func WithMaxItems(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithServiceLogger overrides the logger used when the context has none.
func WithServiceLogger(logger logSDK.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds a pipeline from its stages.
func NewService(translator QueryTranslator,
	engine catalog.Engine,
	normalizer catalog.Normalizer,
	summarizer ResultSummarizer,
	opts ...ServiceOption,
) (*Service, error) {
	switch {
	case translator == nil:
		return nil, errors.New("translator is required")
	case engine == nil:
		return nil, errors.New("catalog engine is required")
	case normalizer == nil:
		return nil, errors.New("normalizer is required")
	case summarizer == nil:
		return nil, errors.New("summarizer is required")
	}

	s := &Service{
		translator: translator,
		engine:     engine,
		normalizer: normalizer,
		summarizer: summarizer,
		maxItems:   catalog.DefaultMaxItems,
		logger:     log.Logger.Named("relay"),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// NewServiceFromSettings builds the engine matching the configured backend
// and the two LLM stages on top of completer.
func NewServiceFromSettings(s *config.Settings, completer llm.Completer) (*Service, error) {
	if s == nil {
		return nil, errors.New("settings is nil")
	}

	engine, normalizer, err := NewEngine(s.Catalog)
	if err != nil {
		return nil, errors.Wrap(err, "new catalog engine")
	}

	translator, err := NewTranslator(completer, s.Catalog.Backend,
		WithTranslateMaxTokens(s.LLM.TranslateMaxTokens),
		WithTranslateTimeout(s.LLM.TranslateTimeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new translator")
	}

	summarizer, err := NewSummarizer(completer, s.Catalog.Backend,
		WithSummaryMaxTokens(s.LLM.SummaryMaxTokens),
		WithSummaryTimeout(s.LLM.SummaryTimeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new summarizer")
	}

	return NewService(translator, engine, normalizer, summarizer,
		WithMaxItems(s.Catalog.MaxItems))
}

// NewEngine returns the search engine and normalizer for the configured backend.
func NewEngine(s config.CatalogSettings) (catalog.Engine, catalog.Normalizer, error) {
	switch s.Backend {
	case catalog.BackendPrimo, "":
		return primo.NewSearchEngine(
			primo.WithEndpoint(s.Endpoint),
			primo.WithTimeout(s.Timeout),
			primo.WithQueryPrefix(s.Primo.QueryPrefix),
			primo.WithAPIKey(s.Primo.APIKey),
			primo.WithScope(s.Primo.Scope),
			primo.WithTab(s.Primo.Tab),
			primo.WithVID(s.Primo.VID),
		), primo.Normalizer{}, nil
	case catalog.BackendVuFind:
		return vufind.NewSearchEngine(
			vufind.WithEndpoint(s.Endpoint),
			vufind.WithTimeout(s.Timeout),
		), vufind.Normalizer{}, nil
	default:
		return nil, nil, errors.Errorf("unsupported catalog backend %q", s.Backend)
	}
}

// Backend names the catalog this service searches.
func (s *Service) Backend() catalog.Backend {
	return s.engine.Name()
}

// Search runs one request through the pipeline. Stage failures are reported
// inside the Outcome, only an empty query is returned as an error.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*Outcome, error) {
	text := strings.TrimSpace(req.Query)
	if text == "" {
		return nil, errors.New("search query cannot be empty")
	}

	backend := s.engine.Name()
	out := &Outcome{
		RequestID: uuid.NewString(),
		Query:     text,
		Backend:   backend,
		Records:   []catalog.Record{},
	}

	logger := log.FromContext(ctx, s.logger, "relay").With(zap.String("request_id", out.RequestID))
	startAt := time.Now()

	out.Translated = s.translator.Translate(ctx, text)
	out.Filters = out.Translated.Filters.Merge(req.Overrides)
	logger.Debug("translated query",
		zap.String("q", out.Translated.Q),
		zap.Any("filters", out.Filters))

	resp := s.engine.Search(ctx, catalog.Query{
		Text:    out.Translated.Q,
		Filters: out.Filters,
		Limit:   s.maxItems,
	})
	if resp.Failed() {
		out.Error = "Error calling " + backend.DisplayName() + ": " + resp.Err
		logger.Warn("catalog search failed", zap.String("error", resp.Err))
		return out, nil
	}

	if records := s.normalizer.Normalize(resp.Raw, s.maxItems); len(records) > 0 {
		out.Records = records
	}

	summary, err := s.summarizer.Summarize(ctx, text, out.Records)
	if err != nil {
		logger.Warn("summarize results", zap.Error(err))
		summary = "Error summarizing results: " + err.Error()
	}
	out.Summary = summary

	logger.Info("search done",
		zap.String("backend", string(backend)),
		zap.Int("records", len(out.Records)),
		zap.Duration("cost", time.Since(startAt)))
	return out, nil
}
