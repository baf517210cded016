package client

import (
	"context"

	"golang.org/x/time/rate"
)

// reconnectLimiter damps reconnect storms: when a backend is flapping, every
// replica bound to it would otherwise retry connect() as fast as DNS and TCP
// SYN/RST round trips allow. This is the same token-bucket idea the teacher
// project uses to throttle backup upload bandwidth, turned from a byte-rate
// limit into an attempt-rate limit.
type reconnectLimiter struct {
	limiter *rate.Limiter
}

// newReconnectLimiter builds a limiter allowing ratePerSecond reconnect
// attempts per second across the whole client, with burst headroom so that
// Init's initial connect of all R replicas is not itself throttled.
// ratePerSecond <= 0 disables throttling.
func newReconnectLimiter(ratePerSecond float64, burst int) *reconnectLimiter {
	if ratePerSecond <= 0 {
		return &reconnectLimiter{}
	}
	if burst <= 0 {
		burst = 1
	}
	return &reconnectLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// wait blocks until a reconnect attempt is permitted, or ctx is done.
func (l *reconnectLimiter) wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
