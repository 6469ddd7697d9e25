// Package providers contains thin reference implementations of the
// provider contract for public bibliographic APIs. They are deliberately
// small: fetch JSON, map fields, classify failures. Anything smarter
// belongs in the core, not here.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/folio/internal/domain/provider"
)

// Default provider configuration constants.
const (
	defaultHTTPTimeout = 15 * time.Second
	defaultRPS         = 2
	defaultBurst       = 1
)

// settings are shared by every HTTP provider in this package.
type settings struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func newSettings(baseURL string) settings {
	return settings{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
	}
}

// Option applies a configuration option to a provider's settings.
type Option func(*settings)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		if c != nil {
			s.client = c
		}
	}
}

// WithRateLimit sets the requests-per-second budget against the API.
func WithRateLimit(rps float64) Option {
	return func(s *settings) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), defaultBurst)
		}
	}
}

// fetchJSON performs one rate-limited GET and decodes the body into out,
// classifying failures into the provider error taxonomy.
func (s *settings) fetchJSON(ctx context.Context, rawURL string, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", provider.ErrProvider)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %w", resp.StatusCode, provider.ErrProvider)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %v: %w", err, provider.ErrParse)
	}
	return nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("%v: %w", err, provider.ErrTimeout)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, provider.ErrTimeout)
	}
	return fmt.Errorf("%v: %w", err, provider.ErrNetwork)
}
