package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/0xcro3dile/docguard/internal/domain/ports"
)

// newLimiter spaces outbound calls to perMinute with a small burst.
// A non-positive perMinute disables limiting.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// waitTurn blocks for a limiter slot. A slot that cannot be granted before ctx
// ends is reported as a timeout.
func waitTurn(ctx context.Context, l *rate.Limiter) error {
	if err := l.Wait(ctx); err != nil {
		return &ports.KnowledgeError{Class: ports.KnowledgeTimeout, Err: fmt.Errorf("waiting for rate limiter: %w", err)}
	}
	return nil
}
