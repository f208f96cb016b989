// Package ratelimit provides a token bucket limiter for outbound API calls.
// It supports both non-blocking (Allow) and blocking (Wait) operations.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles outbound requests to an external service.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing rps requests per second with the given burst.
func New(rps float64, burst int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Wait blocks until a request is allowed or the context is canceled.
// Use for outbound requests where you want to respect rate limits.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed right now without blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
