package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/UB-Mannheim/maidisco/library"
	"github.com/UB-Mannheim/maidisco/library/log"
)

const (
	// DefaultTimeout bounds one discovery request.
	DefaultTimeout = 15 * time.Second
	// logBodyLimit caps the number of response bytes logged for debugging.
	logBodyLimit = 4096
	// errExcerptLimit caps the body excerpt shown to users in error messages.
	errExcerptLimit = 200
)

// Fetcher performs the single GET every engine issues.
type Fetcher struct {
	Client *http.Client
	Logger logSDK.Logger
	// Name tags log lines and error messages, e.g. "primo".
	Name string
}

// GetJSON sends a GET to endpoint with params and returns the JSON body.
// Non-2xx statuses and bodies that are not JSON are errors.
func (f Fetcher) GetJSON(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	target, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s endpoint %q", f.Name, endpoint)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.Errorf("invalid %s endpoint %q", f.Name, endpoint)
	}

	query := target.Query()
	for key, values := range params {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s request", f.Name)
	}
	req.Header.Set("Accept", "application/json")

	logger := log.FromContext(ctx, f.Logger, f.Name)
	logger.Debug("outgoing http request",
		zap.String("method", req.Method),
		zap.String("url", RedactURL(req.URL)),
	)

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	startAt := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = RedactURL(req.URL)
		}
		return nil, errors.Wrapf(err, "send %s request", f.Name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response body", f.Name)
	}

	truncatedBody, truncated := library.TruncateForLog(body, logBodyLimit)
	logger.Debug("incoming http response",
		zap.Int("status", resp.StatusCode),
		zap.String("body", truncatedBody),
		zap.Bool("body_truncated", truncated),
		zap.Duration("cost", time.Since(startAt)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Errorf("%s returned status %d: %s", f.Name, resp.StatusCode, errorExcerpt(body))
	}

	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, errors.Errorf("%s returned a non-JSON body: %s", f.Name, errorExcerpt(body))
	}

	return json.RawMessage(body), nil
}

// errorExcerpt collapses whitespace in body and keeps at most errExcerptLimit runes.
func errorExcerpt(body []byte) string {
	text := []rune(strings.Join(strings.Fields(string(body)), " "))
	if len(text) <= errExcerptLimit {
		return string(text)
	}
	return string(text[:errExcerptLimit]) + "..."
}
