// Package dedupe filters exact duplicate candidate records out of one
// search's result set before scoring. Providers occasionally return the
// same edition twice (paginated feeds, alias endpoints); dropping the
// repeats keeps them from inflating the merge input.
package dedupe

import (
	"context"
	"strings"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/pkg/metrics"
)

// KeyFunc derives the identity key for a record. Records with equal keys
// are considered duplicates; the first occurrence wins.
type KeyFunc func(model.MetadataRecord) string

// Deduper removes duplicate records while preserving order.
type Deduper interface {
	// Filter returns records with later duplicates removed.
	Filter(ctx context.Context, records []model.MetadataRecord) []model.MetadataRecord
}

// keyedDeduper implements Deduper with a configurable identity key.
type keyedDeduper struct {
	key KeyFunc
}

// New creates a deduper with configuration options.
func New(opts ...Option) Deduper {
	d := &keyedDeduper{
		key: DefaultKey,
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Filter returns records with later duplicates removed. The input slice is
// not modified.
func (d *keyedDeduper) Filter(_ context.Context, records []model.MetadataRecord) []model.MetadataRecord {
	if len(records) < 2 {
		return records
	}

	out := make([]model.MetadataRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		k := d.key(rec)
		if k == "" {
			out = append(out, rec)
			continue
		}
		if _, dup := seen[k]; dup {
			metrics.RecordDuplicateDropped()
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// DefaultKey identifies a record by its source and source-local id, falling
// back to source plus ISBN. Records with neither are never considered
// duplicates.
func DefaultKey(rec model.MetadataRecord) string {
	if rec.ExternalID != "" {
		return rec.SourceID + "\x00" + rec.ExternalID
	}
	if isbn := rec.ISBN(); isbn != "" {
		return rec.SourceID + "\x00" + strings.ReplaceAll(isbn, "-", "")
	}
	return ""
}
