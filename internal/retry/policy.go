// Package retry computes backoff delays for transient model failures.
package retry

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docweave/internal/config"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode        config.RetryBackoffMode // fixed|linear|exponential
	Initial     time.Duration           // base delay
	Max         time.Duration           // cap for growth and for server-supplied hints
	MaxAttempts int                     // total attempts including the first one
}

// DefaultPolicy returns the built-in policy (exponential, 1s initial, 30s cap, 3 attempts).
func DefaultPolicy() Policy {
	return Policy{
		Mode:        config.RetryBackoffExponential,
		Initial:     time.Second,
		Max:         30 * time.Second,
		MaxAttempts: config.DefaultMaxAttempts,
	}
}

// FromConfig builds a policy from resolved settings; zero or unknown values fall back to defaults.
func FromConfig(rc config.RetryConfig) Policy {
	p := DefaultPolicy()
	if rc.MaxAttempts > 0 {
		p.MaxAttempts = rc.MaxAttempts
	}
	if rc.InitialDelay > 0 {
		p.Initial = rc.InitialDelay
	}
	if rc.MaxDelay > 0 {
		p.Max = rc.MaxDelay
	}
	switch rc.Backoff {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = rc.Backoff
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff delay before the given retry (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	switch p.Mode {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		d := p.Initial
		for i := 1; i < retryCount; i++ {
			d *= 2
			if d >= p.Max || d <= 0 {
				return p.Max
			}
		}
		if d > p.Max {
			return p.Max
		}
		return d
	default: // linear
		d := time.Duration(retryCount) * p.Initial
		if d > p.Max {
			return p.Max
		}
		return d
	}
}

// DelayWithHint prefers a server-supplied delay (e.g. Retry-After) when
// positive, capped at Max.
func (p Policy) DelayWithHint(retryCount int, hint time.Duration) time.Duration {
	if hint > 0 {
		if hint > p.Max {
			return p.Max
		}
		return hint
	}
	return p.Delay(retryCount)
}

// Sleep waits for d or until ctx is done, returning the context error in the latter case.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
