// Package merge reduces scored records into one fused record.
package merge

// Option applies a configuration option to the Merger.
type Option func(*Merger)

// WithThresholdRatio sets the score ratio below the top score at which
// merge_best stops absorbing records. Must be in (0,1].
func WithThresholdRatio(ratio float64) Option {
	return func(m *Merger) {
		if ratio > 0 && ratio <= 1 {
			m.thresholdRatio = ratio
		}
	}
}
