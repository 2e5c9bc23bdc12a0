package catalog

import (
	"bytes"
	"encoding/json"
)

// envelope lists the known list-bearing keys of a search response.
type envelope struct {
	Docs    json.RawMessage `json:"docs"`
	Records json.RawMessage `json:"records"`
	PNX     json.RawMessage `json:"pnx"`
	Items   json.RawMessage `json:"items"`
}

// ExtractDocuments returns the candidate documents of a search response.
//
// It understands an object carrying one of docs, records, pnx or items
// (tried in that order, pnx only when it is a list), or a bare top-level
// list. Unknown shapes yield nil.
func ExtractDocuments(raw json.RawMessage) []json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '[':
		return decodeList(raw)
	case '{':
	default:
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}

	for _, candidate := range []json.RawMessage{env.Docs, env.Records} {
		if present(candidate) {
			return decodeList(candidate)
		}
	}
	if isList(env.PNX) {
		return decodeList(env.PNX)
	}
	if present(env.Items) {
		return decodeList(env.Items)
	}

	return nil
}

// Limit truncates docs to maxItems. A non-positive maxItems means DefaultMaxItems.
func Limit(docs []json.RawMessage, maxItems int) []json.RawMessage {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if len(docs) > maxItems {
		return docs[:maxItems]
	}
	return docs
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) != 0 && !bytes.Equal(raw, []byte("null"))
}

func isList(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) != 0 && raw[0] == '['
}

func decodeList(raw json.RawMessage) []json.RawMessage {
	if !isList(raw) {
		return nil
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil
	}

	out := docs[:0]
	for _, doc := range docs {
		doc = bytes.TrimSpace(doc)
		if len(doc) == 0 || doc[0] != '{' {
			continue
		}
		out = append(out, doc)
	}
	return out
}

// Finalize applies the placeholder rules so that every field is populated.
func Finalize(r Record) Record {
	if r.Title == "" {
		r.Title = PlaceholderTitle
	}
	if r.Link == "" {
		r.Link = PlaceholderLink
	}
	return r
}
