// Package dedupe filters duplicate candidate records.
package dedupe

// Option applies a configuration option to the deduper.
type Option func(*keyedDeduper)

// WithKeyFunc sets a custom record identity key.
func WithKeyFunc(key KeyFunc) Option {
	return func(d *keyedDeduper) {
		if key != nil {
			d.key = key
		}
	}
}
