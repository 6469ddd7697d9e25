package provider

import (
	"context"
	"errors"
)

// Sentinel kinds for provider errors. Implementations wrap these via
// fmt.Errorf("...: %w", Err...) so callers can classify with errors.Is.
var (
	ErrNetwork  = errors.New("provider network error")
	ErrTimeout  = errors.New("provider timeout")
	ErrParse    = errors.New("provider parse error")
	ErrProvider = errors.New("provider error")
)

// Error kind labels used in events and metrics.
const (
	KindNetwork   = "network"
	KindTimeout   = "timeout"
	KindParse     = "parse"
	KindProvider  = "provider"
	KindCancelled = "cancelled"
)

// KindOf classifies err into one of the kind labels. Unrecognized errors
// fall back to the catch-all provider kind.
func KindOf(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrParse):
		return KindParse
	default:
		return KindProvider
	}
}
