package web

import (
	"embed"
	"encoding/json"
	"html/template"

	errors "github.com/Laisky/errors/v2"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/microcosm-cc/bluemonday"

	"github.com/UB-Mannheim/maidisco/internal/relay"
	"github.com/UB-Mannheim/maidisco/library/catalog"
)

//go:embed templates/index.html
var templatesFS embed.FS

// ExampleQuery prefills the search box.
const ExampleQuery = "Recent articles on climate resilience in urban planning, English, peer-reviewed"

var summaryPolicy = newSummaryPolicy()

func newSummaryPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderMarkdown converts LLM markdown to sanitized HTML.
func RenderMarkdown(md string) template.HTML {
	if md == "" {
		return ""
	}

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})
	unsafe := markdown.ToHTML([]byte(md), nil, renderer)
	return template.HTML(summaryPolicy.SanitizeBytes(unsafe)) // #nosec G203
}

func parsePage() (*template.Template, error) {
	tpl, err := template.New("index.html").
		Funcs(template.FuncMap{"markdown": RenderMarkdown}).
		ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse page template")
	}
	return tpl, nil
}

type selectOption struct {
	Value, Label string
}

// Select options use VuFind facet values.
var (
	languageOptions = []selectOption{
		{"", "Any"}, {"English", "English"}, {"German", "German"}, {"French", "French"},
	}
	materialTypeOptions = []selectOption{
		{"", "Any"}, {"Books", "Books"}, {"Articles", "Articles"}, {"Theses", "Theses"},
	}
)

// pageData is the view model of the index template.
type pageData struct {
	Backend       string
	Example       string
	Form          searchForm
	Languages     []selectOption
	MaterialTypes []selectOption
	FormError     string

	Outcome        *relay.Outcome
	TranslatedJSON string
	Facets         []catalog.Facet
}

func newPageData(backend catalog.Backend, form searchForm) pageData {
	return pageData{
		Backend:       backend.DisplayName(),
		Example:       ExampleQuery,
		Form:          form,
		Languages:     languageOptions,
		MaterialTypes: materialTypeOptions,
	}
}

func (d *pageData) setOutcome(out *relay.Outcome) {
	d.Outcome = out
	if out == nil {
		return
	}

	translated := out.Translated
	translated.Filters = out.Filters
	if b, err := json.MarshalIndent(translated, "", "  "); err == nil {
		d.TranslatedJSON = string(b)
	}
	d.Facets = out.Filters.Facets()
}
