// Package primo queries an Ex Libris Primo search endpoint.
package primo

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
	DefaultEndpoint = "https://your-primo-instance.example.com/primo-explore/ws/v1/search"
	// DefaultQueryPrefix turns free text into a Primo "any field contains" clause.
	DefaultQueryPrefix = "any,contains,"
)

// Option configures the SearchEngine instance.
type Option func(*SearchEngine)

// WithHTTPClient overrides the HTTP client used to communicate with Primo.
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

// WithQueryPrefix sets the prefix put in front of the free-text query.
// An empty prefix sends the text unchanged.
func WithQueryPrefix(prefix string) Option {
	return func(engine *SearchEngine) {
		engine.queryPrefix = prefix
	}
}

// WithAPIKey sets the optional apikey parameter.
func WithAPIKey(apiKey string) Option {
	return func(engine *SearchEngine) {
		engine.apiKey = strings.TrimSpace(apiKey)
	}
}

// WithScope sets the optional scope parameter.
func WithScope(scope string) Option {
	return func(engine *SearchEngine) {
		engine.scope = strings.TrimSpace(scope)
	}
}

// WithTab sets the optional tab parameter.
func WithTab(tab string) Option {
	return func(engine *SearchEngine) {
		engine.tab = strings.TrimSpace(tab)
	}
}

// WithVID sets the optional view id parameter.
func WithVID(vid string) Option {
	return func(engine *SearchEngine) {
		engine.vid = strings.TrimSpace(vid)
	}
}

// SearchEngine sends free-text queries to Primo.
type SearchEngine struct {
	client      *http.Client
	endpoint    string
	queryPrefix string
	apiKey      string
	scope       string
	tab         string
	vid         string
	logger      logSDK.Logger
}

// NewSearchEngine constructs a Primo engine. Without options it targets the
// placeholder endpoint with the default prefix and a 15s timeout.
func NewSearchEngine(opts ...Option) *SearchEngine {
	engine := &SearchEngine{
		client:      &http.Client{Timeout: catalog.DefaultTimeout},
		endpoint:    DefaultEndpoint,
		queryPrefix: DefaultQueryPrefix,
		logger:      log.Logger.Named("primo"),
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
	return catalog.BackendPrimo
}

// Params builds the query string for q. Filters are not mapped because
// Primo's facet syntax differs between installations.
func (e *SearchEngine) Params(q catalog.Query) url.Values {
	params := url.Values{}
	if text := strings.TrimSpace(q.Text); text != "" {
		params.Set("q", e.queryPrefix+text)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if e.apiKey != "" {
		params.Set("apikey", e.apiKey)
	}
	if e.scope != "" {
		params.Set("scope", e.scope)
	}
	if e.tab != "" {
		params.Set("tab", e.tab)
	}
	if e.vid != "" {
		params.Set("vid", e.vid)
	}
	return params
}

// Search performs the Primo request.
func (e *SearchEngine) Search(ctx context.Context, q catalog.Query) catalog.Response {
	if strings.TrimSpace(q.Text) == "" {
		return catalog.Failure(errors.New("search query cannot be empty"))
	}

	fetcher := catalog.Fetcher{Client: e.client, Logger: e.logger, Name: "primo"}
	raw, err := fetcher.GetJSON(ctx, e.endpoint, e.Params(q))
	if err != nil {
		return catalog.Failure(err)
	}

	return catalog.Response{Raw: raw}
}
