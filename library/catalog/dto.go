package catalog

import (
	"encoding/json"
	"strings"
)

const (
	// PlaceholderTitle is used when a record carries no title.
	PlaceholderTitle = "No title"
	// PlaceholderLink is used when a record carries no link.
	PlaceholderLink = "#"
	// DefaultMaxItems caps the normalized result list.
	DefaultMaxItems = 10
)

// Filters are the named constraints a search can be narrowed with.
type Filters struct {
	YearFrom     string `json:"year_from,omitempty"`
	YearTo       string `json:"year_to,omitempty"`
	Language     string `json:"language,omitempty"`
	MaterialType string `json:"material_type,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Author       string `json:"author,omitempty"`
	Title        string `json:"title,omitempty"`
}

// Merge returns a copy of f where every non-empty field of overrides wins.
func (f Filters) Merge(overrides Filters) Filters {
	pick := func(base, override string) string {
		if v := strings.TrimSpace(override); v != "" {
			return v
		}
		return strings.TrimSpace(base)
	}

	return Filters{
		YearFrom:     pick(f.YearFrom, overrides.YearFrom),
		YearTo:       pick(f.YearTo, overrides.YearTo),
		Language:     pick(f.Language, overrides.Language),
		MaterialType: pick(f.MaterialType, overrides.MaterialType),
		Subject:      pick(f.Subject, overrides.Subject),
		Author:       pick(f.Author, overrides.Author),
		Title:        pick(f.Title, overrides.Title),
	}
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f == Filters{}
}

// Facet is one applied filter, in display order.
type Facet struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Facets lists the non-empty filters in a fixed order.
func (f Filters) Facets() []Facet {
	all := []Facet{
		{Name: "language", Value: f.Language},
		{Name: "material_type", Value: f.MaterialType},
		{Name: "year_from", Value: f.YearFrom},
		{Name: "year_to", Value: f.YearTo},
		{Name: "subject", Value: f.Subject},
		{Name: "author", Value: f.Author},
		{Name: "title", Value: f.Title},
	}

	facets := make([]Facet, 0, len(all))
	for _, facet := range all {
		if strings.TrimSpace(facet.Value) != "" {
			facets = append(facets, facet)
		}
	}
	return facets
}

// Query is what an Engine sends to its discovery system.
type Query struct {
	Text    string
	Filters Filters
	// Limit is the page size requested from the backend, 0 means backend default.
	Limit int
}

// Record is one normalized search result. Every field is always populated.
type Record struct {
	Title   string `json:"title"`
	Authors string `json:"authors"`
	Year    string `json:"year"`
	Format  string `json:"format"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Response is either a raw JSON document or an error message.
type Response struct {
	Raw json.RawMessage `json:"raw,omitempty"`
	Err string          `json:"error,omitempty"`
}

// Failed reports whether the catalog call failed.
func (r Response) Failed() bool {
	return r.Err != ""
}

// Failure builds an error Response from err.
func Failure(err error) Response {
	if err == nil {
		return Response{Err: "unknown error"}
	}
	return Response{Err: err.Error()}
}
