package engine

import (
	"context"

	"golang.org/x/time/rate"
)

// upstreamLimiter throttles outbound YouTube requests across all handlers.
// Nil when UPSTREAM_RPS is zero.
var upstreamLimiter *rate.Limiter

func initLimiter(rps float64, burst int) {
	if rps <= 0 {
		upstreamLimiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	upstreamLimiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// WaitUpstream blocks until an upstream request may be sent.
func WaitUpstream(ctx context.Context) error {
	if upstreamLimiter == nil {
		return ctx.Err()
	}
	return upstreamLimiter.Wait(ctx)
}
