// Package scoring computes a [0,1] confidence score for each candidate
// record against the original query. Scoring is a pure function: no I/O,
// no shared state, deterministic for identical inputs, so it can run
// synchronously in any order after the search completes.
package scoring

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/okian/folio/internal/domain/model"
)

// Default signal weights. An exact ISBN match bypasses the weighted sum
// and pins the score at or near 1.0.
const (
	defaultTitleWeight  = 0.65
	defaultAuthorWeight = 0.35
	isbnMatchBase       = 0.95
	isbnTitleBonus      = 1 - isbnMatchBase
)

// Scorer scores candidate records. The zero value is not usable; construct
// with New.
type Scorer struct {
	titleWeight     float64
	authorWeight    float64
	providerWeights map[string]float64
}

// New creates a scorer with configuration options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		titleWeight:     defaultTitleWeight,
		authorWeight:    defaultAuthorWeight,
		providerWeights: make(map[string]float64),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score rates how well rec answers q.
//
// An exact ISBN match dominates: the score starts at 0.95 and only the
// title similarity decides the remainder, so a matching ISBN lands at or
// near 1.0 even with a mismatched title. Otherwise the score is the
// weighted mean of the signals present in the query (title similarity,
// author-set overlap), scaled by the per-provider weight if one is
// configured for the record's source.
func (s *Scorer) Score(rec model.MetadataRecord, q model.MetadataQuery) float64 {
	titleSim := Similarity(q.Title, rec.Title)

	var score float64
	if isbnMatches(q.ISBN, rec) {
		score = isbnMatchBase + isbnTitleBonus*titleSim
	} else {
		var sum, weight float64
		if strings.TrimSpace(q.Title) != "" {
			sum += s.titleWeight * titleSim
			weight += s.titleWeight
		}
		if len(q.Authors) > 0 {
			sum += s.authorWeight * authorOverlap(q.Authors, rec.Authors)
			weight += s.authorWeight
		}
		if weight > 0 {
			score = sum / weight
		}
	}

	if w, ok := s.providerWeights[rec.SourceID]; ok {
		score *= w
	}

	return clamp01(score)
}

// Similarity returns a normalized Levenshtein similarity in [0,1] between
// two strings, case- and whitespace-insensitive.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	return 1.0 - float64(distance)/float64(maxLen)
}

// authorOverlap returns the fraction of query authors present in the
// record's author list, using normalized exact matching.
func authorOverlap(queryAuthors, recordAuthors []string) float64 {
	if len(queryAuthors) == 0 {
		return 0.0
	}

	seen := make(map[string]struct{}, len(recordAuthors))
	for _, a := range recordAuthors {
		seen[normalizeName(a)] = struct{}{}
	}

	var matched, total int
	for _, a := range queryAuthors {
		name := normalizeName(a)
		if name == "" {
			continue
		}
		total++
		if _, ok := seen[name]; ok {
			matched++
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(matched) / float64(total)
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// isbnMatches reports whether the query ISBN matches any ISBN-scheme
// identifier on the record, ignoring hyphens and spaces.
func isbnMatches(queryISBN string, rec model.MetadataRecord) bool {
	want := normalizeISBN(queryISBN)
	if want == "" {
		return false
	}
	for scheme, value := range rec.Identifiers {
		if !strings.Contains(strings.ToLower(scheme), model.IdentifierISBN) {
			continue
		}
		if normalizeISBN(value) == want {
			return true
		}
	}
	return false
}

func normalizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range isbn {
		if r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
