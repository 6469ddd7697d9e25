// Package scoring computes a [0,1] confidence score for candidate records.
package scoring

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithProviderWeights sets per-provider score multipliers keyed by source
// id. Weights are clamped to (0,1]; non-positive entries are dropped.
func WithProviderWeights(weights map[string]float64) Option {
	return func(s *Scorer) {
		s.providerWeights = make(map[string]float64, len(weights))
		for id, w := range weights {
			if w <= 0 {
				continue
			}
			if w > 1 {
				w = 1
			}
			s.providerWeights[id] = w
		}
	}
}

// WithSignalWeights sets the relative weights of the title and author
// signals. Both must be positive.
func WithSignalWeights(title, author float64) Option {
	return func(s *Scorer) {
		if title > 0 && author > 0 {
			s.titleWeight = title
			s.authorWeight = author
		}
	}
}
