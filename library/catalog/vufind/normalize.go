package vufind

import (
	"encoding/json"

	"github.com/UB-Mannheim/maidisco/library"
	"github.com/UB-Mannheim/maidisco/library/catalog"
)

// record is VuFind's flat record schema. Every field tolerates a scalar or a list.
type record struct {
	Title          library.FlexStrings `json:"title"`
	ShortTitle     library.FlexStrings `json:"shortTitle"`
	Author         library.FlexStrings `json:"author"`
	PrimaryAuthors library.FlexStrings `json:"primaryAuthors"`
	Date           library.FlexStrings `json:"date"`
	PubDates       library.FlexStrings `json:"publicationDates"`
	Format         library.FlexStrings `json:"format"`
	Formats        library.FlexStrings `json:"formats"`
	Description    library.FlexStrings `json:"description"`
	Summary        library.FlexStrings `json:"summary"`
	URL            library.FlexStrings `json:"url"`
	URLs           library.FlexStrings `json:"urls"`
}

// Normalizer understands VuFind records.
type Normalizer struct{}

// Normalize converts a VuFind search response into at most maxItems records.
func (Normalizer) Normalize(raw json.RawMessage, maxItems int) []catalog.Record {
	docs := catalog.Limit(catalog.ExtractDocuments(raw), maxItems)
	records := make([]catalog.Record, 0, len(docs))
	for _, doc := range docs {
		var rec record
		// decoding errors leave zero values behind, which default below
		_ = json.Unmarshal(doc, &rec)

		records = append(records, catalog.Finalize(catalog.Record{
			Title:   library.FirstNonEmpty(rec.Title.Join(" "), rec.ShortTitle.Join(" ")),
			Authors: library.FirstNonEmpty(rec.Author.Join(", "), rec.PrimaryAuthors.Join(", ")),
			Year:    library.FirstNonEmpty(rec.Date.First(), rec.PubDates.First()),
			Format:  library.FirstNonEmpty(rec.Format.Join(", "), rec.Formats.Join(", ")),
			Snippet: library.HTMLToText(library.FirstNonEmpty(rec.Description.Join(" "), rec.Summary.Join(" "))),
			Link:    library.FirstNonEmpty(rec.URL.First(), rec.URLs.First()),
		}))
	}
	return records
}
