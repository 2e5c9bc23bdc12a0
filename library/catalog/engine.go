// Package catalog talks to library discovery systems and normalizes their answers.
package catalog

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Laisky/errors/v2"
)

// Backend names a supported discovery system.
type Backend string

const (
	BackendPrimo  Backend = "primo"
	BackendVuFind Backend = "vufind"
)

// ParseBackend resolves a configured backend name.
func ParseBackend(name string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(name))) {
	case BackendPrimo, "":
		return BackendPrimo, nil
	case BackendVuFind:
		return BackendVuFind, nil
	default:
		return "", errors.Errorf("unsupported catalog backend %q", name)
	}
}

// DisplayName is the human readable backend name.
func (b Backend) DisplayName() string {
	switch b {
	case BackendVuFind:
		return "VuFind"
	default:
		return "Primo"
	}
}

// Engine executes a single search against a discovery system.
type Engine interface {
	// Name returns the backend the engine talks to.
	Name() Backend
	// Search issues exactly one request. Failures are reported inside the
	// Response, never as a panic or a separate error.
	Search(ctx context.Context, query Query) Response
}

// Normalizer converts one backend's raw JSON into records.
type Normalizer interface {
	Normalize(raw json.RawMessage, maxItems int) []Record
}

// NormalizerFunc adapts a function to Normalizer.
type NormalizerFunc func(raw json.RawMessage, maxItems int) []Record

// Normalize implements Normalizer.
func (f NormalizerFunc) Normalize(raw json.RawMessage, maxItems int) []Record {
	return f(raw, maxItems)
}
