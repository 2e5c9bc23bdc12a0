// Package relay runs the natural-language search pipeline:
// translate, search, normalize, summarize.
package relay

import (
	"encoding/json"
	"strings"

	"github.com/UB-Mannheim/maidisco/library"
	"github.com/UB-Mannheim/maidisco/library/catalog"
)

// SearchRequest is one user search.
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	// Overrides are facets picked by the user, they win over translated filters.
	Overrides catalog.Filters `json:"filters"`
}

// TranslatedQuery is the structured form of a natural-language query.
type TranslatedQuery struct {
	Q       string          `json:"q"`
	Filters catalog.Filters `json:"filters"`
}

type translatedWire struct {
	Q       library.FlexString `json:"q"`
	Lookfor library.FlexString `json:"lookfor"`
	Filters json.RawMessage    `json:"filters"`
}

type filtersWire struct {
	YearFrom     library.FlexString `json:"year_from"`
	YearTo       library.FlexString `json:"year_to"`
	Language     library.FlexString `json:"language"`
	MaterialType library.FlexString `json:"material_type"`
	Subject      library.FlexString `json:"subject"`
	Author       library.FlexString `json:"author"`
	Title        library.FlexString `json:"title"`
}

// UnmarshalJSON accepts "lookfor" as an alias of "q" and tolerates
// numeric or malformed filter values.
func (t *TranslatedQuery) UnmarshalJSON(data []byte) error {
	var wire translatedWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*t = TranslatedQuery{
		Q: library.FirstNonEmpty(wire.Q.String(), wire.Lookfor.String()),
	}

	var f filtersWire
	if len(wire.Filters) > 0 && json.Unmarshal(wire.Filters, &f) == nil {
		t.Filters = catalog.Filters{
			YearFrom:     strings.TrimSpace(f.YearFrom.String()),
			YearTo:       strings.TrimSpace(f.YearTo.String()),
			Language:     strings.TrimSpace(f.Language.String()),
			MaterialType: strings.TrimSpace(f.MaterialType.String()),
			Subject:      strings.TrimSpace(f.Subject.String()),
			Author:       strings.TrimSpace(f.Author.String()),
			Title:        strings.TrimSpace(f.Title.String()),
		}
	}

	return nil
}

// Outcome is everything the presentation layer needs for one search.
type Outcome struct {
	RequestID  string           `json:"request_id"`
	Query      string           `json:"query"`
	Backend    catalog.Backend  `json:"backend"`
	Translated TranslatedQuery  `json:"translated"`
	Filters    catalog.Filters  `json:"filters"`
	Records    []catalog.Record `json:"records"`
	Summary    string           `json:"summary,omitempty"`
	// Error is the user-visible message shown in place of the summary.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the catalog call failed.
func (o *Outcome) Failed() bool {
	return o != nil && o.Error != ""
}
