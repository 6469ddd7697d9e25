// Package model contains domain models passed between layers.
package model

import "strings"

// IdentifierISBN is the identifier scheme key used for ISBN values.
const IdentifierISBN = "isbn"

// MetadataRecord represents one candidate's bibliographic facts from one
// source. Records are value types: a provider builds one and hands it over,
// nothing mutates it afterwards. The merger is the only component that
// builds up a working copy field by field.
type MetadataRecord struct {
	SourceID      string            `json:"source_id"`
	ExternalID    string            `json:"external_id,omitempty"`
	Title         string            `json:"title"`
	Authors       []string          `json:"authors,omitempty"`
	URL           string            `json:"url,omitempty"`
	CoverURL      string            `json:"cover_url,omitempty"`
	Description   string            `json:"description,omitempty"`
	Series        string            `json:"series,omitempty"`
	SeriesIndex   float64           `json:"series_index,omitempty"`
	Identifiers   map[string]string `json:"identifiers,omitempty"`
	Publisher     string            `json:"publisher,omitempty"`
	PublishedDate string            `json:"published_date,omitempty"`
	Rating        float64           `json:"rating,omitempty"` // normalized to 0-5 by the provider
	Languages     []string          `json:"languages,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
}

// Usable reports whether the record carries the minimum useful payload.
func (r MetadataRecord) Usable() bool {
	return strings.TrimSpace(r.Title) != ""
}

// ISBN returns the record's ISBN identifier, or "" if none is present.
func (r MetadataRecord) ISBN() string {
	return r.Identifiers[IdentifierISBN]
}

// Clone returns a deep copy of the record. Slices and the identifier map
// are copied so the clone can be extended without aliasing the original.
func (r MetadataRecord) Clone() MetadataRecord {
	out := r
	if r.Authors != nil {
		out.Authors = append([]string(nil), r.Authors...)
	}
	if r.Languages != nil {
		out.Languages = append([]string(nil), r.Languages...)
	}
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	if r.Identifiers != nil {
		out.Identifiers = make(map[string]string, len(r.Identifiers))
		for k, v := range r.Identifiers {
			out.Identifiers[k] = v
		}
	}
	return out
}

// ScoredRecord pairs a record with its query-confidence score. It only
// lives for the duration of one search call.
type ScoredRecord struct {
	Record MetadataRecord
	Score  float64
}
