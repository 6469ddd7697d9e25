package model

import "strings"

// Defaults applied by Normalize.
const (
	DefaultLocale     = "en"
	DefaultMaxResults = 10
	maxSearchAuthors  = 2
)

// MetadataQuery is the caller's structured search intent. At least one of
// Title, Authors, or ISBN must be present for the query to be usable.
type MetadataQuery struct {
	Title                 string   `json:"title,omitempty"`
	Authors               []string `json:"authors,omitempty"`
	ISBN                  string   `json:"isbn,omitempty"`
	Locale                string   `json:"locale,omitempty"`
	MaxResultsPerProvider int      `json:"max_results_per_provider,omitempty"`
}

// Normalize returns a copy with defaults filled in.
func (q MetadataQuery) Normalize() MetadataQuery {
	if strings.TrimSpace(q.Locale) == "" {
		q.Locale = DefaultLocale
	}
	if q.MaxResultsPerProvider <= 0 {
		q.MaxResultsPerProvider = DefaultMaxResults
	}
	return q
}

// IsValid reports whether the query carries at least one searchable signal.
func (q MetadataQuery) IsValid() bool {
	if strings.TrimSpace(q.Title) != "" || strings.TrimSpace(q.ISBN) != "" {
		return true
	}
	for _, a := range q.Authors {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

// SearchString flattens the query into a single provider search string:
// title, at most the first two authors, and the ISBN, space-joined with
// absent parts skipped. Returns "" exactly when the query is invalid.
func (q MetadataQuery) SearchString() string {
	if !q.IsValid() {
		return ""
	}

	parts := make([]string, 0, maxSearchAuthors+2)
	if t := strings.TrimSpace(q.Title); t != "" {
		parts = append(parts, t)
	}
	for i, a := range q.Authors {
		if i >= maxSearchAuthors {
			break
		}
		if a = strings.TrimSpace(a); a != "" {
			parts = append(parts, a)
		}
	}
	if isbn := strings.TrimSpace(q.ISBN); isbn != "" {
		parts = append(parts, isbn)
	}
	return strings.Join(parts, " ")
}
