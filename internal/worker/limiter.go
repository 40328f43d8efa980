package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces batch jobs, shared across all workers in a pool. It
// exists for LLM-annotated runs: the extraction pipeline itself is pure
// compute, but every annotated document costs one outbound API call.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until the limiter clears one job, or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
