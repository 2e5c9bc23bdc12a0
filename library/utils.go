// Package library contains helper functions
package library

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// TruncateForLog limits the payload logged for debugging and reports whether truncation occurred.
func TruncateForLog(body []byte, limit int) (string, bool) {
	if len(body) <= limit {
		return string(body), false
	}
	return string(body[:limit]), true
}

// HTMLToText strips markup from a fragment such as a highlighted catalog snippet.
// Plain text is returned unchanged (modulo surrounding whitespace).
func HTMLToText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}
