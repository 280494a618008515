package gobolt

import (
	"context"

	"golang.org/x/time/rate"
)

// Redialer paces repeated connection attempts to a single address so a
// caller retrying Dial in a loop (e.g. waiting for a database to come
// up) does not hammer it. It has no bearing on in-flight request
// pacing; once Dial succeeds the connection has no per-call timeouts.
type Redialer struct {
	limiter *rate.Limiter
	dial    func(ctx context.Context) (*Connection, error)
}

// NewRedialer wraps dial with a token-bucket limiter allowing up to
// burst immediate attempts and refilling at attemptsPerSecond
// thereafter.
func NewRedialer(attemptsPerSecond float64, burst int, dial func(ctx context.Context) (*Connection, error)) *Redialer {
	return &Redialer{
		limiter: rate.NewLimiter(rate.Limit(attemptsPerSecond), burst),
		dial:    dial,
	}
}

// Dial blocks until the limiter admits another attempt, then invokes
// the wrapped dial function once. It does not retry on failure; a
// caller wanting repeated attempts calls Dial again.
func (r *Redialer) Dial(ctx context.Context) (*Connection, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, newError("Redialer.Dial", KindIoError, err)
	}
	return r.dial(ctx)
}
