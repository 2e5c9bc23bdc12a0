package primo

import (
	"encoding/json"
	"strings"

	"github.com/UB-Mannheim/maidisco/library"
	"github.com/UB-Mannheim/maidisco/library/catalog"
)

// pnxRecord is the subset of the PNX schema the relay displays.
type pnxRecord struct {
	Display struct {
		Title        library.FlexStrings `json:"title"`
		Contributor  library.FlexStrings `json:"contributor"`
		Creator      library.FlexStrings `json:"creator"`
		CreationDate library.FlexStrings `json:"creationdate"`
		Format       library.FlexStrings `json:"format"`
		Type         library.FlexStrings `json:"type"`
		Description  library.FlexStrings `json:"description"`
	} `json:"display"`
	Addata struct {
		Date     library.FlexStrings `json:"date"`
		Abstract library.FlexStrings `json:"abstract"`
		Au       library.FlexStrings `json:"au"`
	} `json:"addata"`
	Links struct {
		OpenURL    library.FlexStrings `json:"openurl"`
		LinkToRsrc library.FlexStrings `json:"linktorsrc"`
	} `json:"links"`
	// Title is the flat fallback some proxies emit next to display.
	Title library.FlexString `json:"title"`
}

// flatRecord holds the plain keys some documents carry instead of PNX
// groups. They are the last link of every fallback chain.
type flatRecord struct {
	Title       library.FlexString  `json:"title"`
	Author      library.FlexStrings `json:"author"`
	Date        library.FlexStrings `json:"date"`
	Format      library.FlexStrings `json:"format"`
	Description library.FlexStrings `json:"description"`
	URL         library.FlexStrings `json:"url"`
}

type document struct {
	PNX json.RawMessage `json:"pnx"`
}

// Normalizer understands Primo's PNX documents.
type Normalizer struct{}

// Normalize converts a Primo search response into at most maxItems records.
func (Normalizer) Normalize(raw json.RawMessage, maxItems int) []catalog.Record {
	docs := catalog.Limit(catalog.ExtractDocuments(raw), maxItems)
	records := make([]catalog.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, normalizeDocument(doc))
	}
	return records
}

func normalizeDocument(doc json.RawMessage) catalog.Record {
	var (
		wrapper document
		p       pnxRecord
		flat    flatRecord
	)

	// decoding errors leave zero values behind, which default below
	_ = json.Unmarshal(doc, &wrapper)
	_ = json.Unmarshal(doc, &flat)
	if len(wrapper.PNX) > 0 && wrapper.PNX[0] == '{' {
		_ = json.Unmarshal(wrapper.PNX, &p)
	} else {
		_ = json.Unmarshal(doc, &p)
	}

	return catalog.Finalize(catalog.Record{
		Title: library.FirstNonEmpty(
			p.Display.Title.First(),
			p.Title.String(),
			flat.Title.String(),
		),
		Authors: library.FirstNonEmpty(
			p.Display.Contributor.Join(", "),
			p.Display.Creator.Join(", "),
			p.Addata.Au.Join(", "),
			flat.Author.Join(", "),
		),
		Year: library.FirstNonEmpty(
			p.Display.CreationDate.First(),
			p.Addata.Date.First(),
			flat.Date.First(),
		),
		Format: library.FirstNonEmpty(
			p.Display.Format.First(),
			p.Display.Type.First(),
			flat.Format.First(),
		),
		Snippet: library.HTMLToText(library.FirstNonEmpty(
			p.Display.Description.Join(" "),
			p.Addata.Abstract.Join(" "),
			flat.Description.Join(" "),
		)),
		Link: library.FirstNonEmpty(
			linkValue(p.Links.OpenURL.First()),
			linkValue(p.Links.LinkToRsrc.First()),
			linkValue(flat.URL.First()),
		),
	})
}

// linkValue extracts the URL from a PNX link field.
// PNX encodes subfields as "$$U<url>$$D<label>"; plain URLs pass through.
func linkValue(v string) string {
	idx := strings.Index(v, "$$U")
	if idx < 0 {
		return strings.TrimSpace(v)
	}

	v = v[idx+len("$$U"):]
	if end := strings.Index(v, "$$"); end >= 0 {
		v = v[:end]
	}
	return strings.TrimSpace(v)
}
