// Package vufind queries the VuFind REST search API.
package vufind

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/UB-Mannheim/maidisco/library/catalog"
	"github.com/UB-Mannheim/maidisco/library/log"
)

const (
	// DefaultEndpoint is a placeholder, every deployment configures its own.
	DefaultEndpoint = "https://your-vufind-instance.example.com/api/search"
	// DefaultLimit is the page size sent when the query does not set one.
	DefaultLimit = 10
)

// Option configures the SearchEngine instance.
type Option func(*SearchEngine)

// WithHTTPClient overrides the HTTP client used to communicate with VuFind.
func WithHTTPClient(client *http.Client) Option {
	return func(engine *SearchEngine) {
		if client != nil {
			engine.client = client
		}
	}
}

// WithTimeout replaces the HTTP client by one with the given timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(engine *SearchEngine) {
		if timeout <= 0 {
			return
		}
		client, err := gutils.NewHTTPClient(gutils.WithHTTPClientTimeout(timeout))
		if err != nil {
			engine.logger.Warn("create http client, keep default", zap.Error(err))
			return
		}
		engine.client = client
	}
}

// WithLogger overrides the default logger used when no contextual logger is present.
func WithLogger(logger logSDK.Logger) Option {
	return func(engine *SearchEngine) {
		if logger != nil {
			engine.logger = logger
		}
	}
}

// WithEndpoint overrides the search endpoint.
func WithEndpoint(endpoint string) Option {
	return func(engine *SearchEngine) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			engine.endpoint = trimmed
		}
	}
}

// SearchEngine sends lookfor queries with facet filters to VuFind.
type SearchEngine struct {
	client   *http.Client
	endpoint string
	logger   logSDK.Logger
}

// NewSearchEngine constructs a VuFind engine.
func NewSearchEngine(opts ...Option) *SearchEngine {
	engine := &SearchEngine{
		client:   &http.Client{Timeout: catalog.DefaultTimeout},
		endpoint: DefaultEndpoint,
		logger:   log.Logger.Named("vufind"),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}

	return engine
}

// Name returns the backend identifier.
func (e *SearchEngine) Name() catalog.Backend {
	return catalog.BackendVuFind
}

// Params builds lookfor, limit and the repeated filter[] facet expressions.
func (e *SearchEngine) Params(q catalog.Query) url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{}
	params.Set("lookfor", strings.TrimSpace(q.Text))
	params.Set("limit", strconv.Itoa(limit))
	for _, f := range FilterExpressions(q.Filters) {
		params.Add("filter[]", f)
	}
	return params
}

// FilterExpressions maps filters to VuFind "field::value" facet expressions.
// The year range is emitted when either bound is set, e.g. "year::2019-".
func FilterExpressions(f catalog.Filters) []string {
	var exprs []string
	if v := strings.TrimSpace(f.Language); v != "" {
		exprs = append(exprs, "language::"+v)
	}
	if v := strings.TrimSpace(f.MaterialType); v != "" {
		exprs = append(exprs, "type::"+v)
	}

	from, to := strings.TrimSpace(f.YearFrom), strings.TrimSpace(f.YearTo)
	if from != "" || to != "" {
		exprs = append(exprs, "year::"+from+"-"+to)
	}
	return exprs
}

// Search performs the VuFind request.
func (e *SearchEngine) Search(ctx context.Context, q catalog.Query) catalog.Response {
	if strings.TrimSpace(q.Text) == "" {
		return catalog.Failure(errors.New("search query cannot be empty"))
	}

	fetcher := catalog.Fetcher{Client: e.client, Logger: e.logger, Name: "vufind"}
	raw, err := fetcher.GetJSON(ctx, e.endpoint, e.Params(q))
	if err != nil {
		return catalog.Failure(err)
	}

	return catalog.Response{Raw: raw}
}
