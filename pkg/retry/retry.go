// Package retry retries a function with capped exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/suzuki-shunsuke/logrus-error/logerr"
)

const (
	DefaultMaxRetries = 5
	DefaultBaseDelay  = time.Second
	DefaultMaxDelay   = 32 * time.Second
)

// Policy is a retry policy without jitter.
// The n-th retry waits min(BaseDelay * 2^n, MaxDelay), so the first retry already waits
// twice BaseDelay. fn is called at most MaxRetries times.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Sleep waits for d. If it's nil, Sleep waits with a timer and stops when ctx is canceled.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy returns a Policy with the default values.
func NewPolicy() *Policy {
	return &Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
}

// Delay returns the wait time before the given retry attempt.
func (p *Policy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for range attempt {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return min(delay, p.MaxDelay)
}

// Do calls fn until it succeeds or fails MaxRetries times.
// The last error is returned when the retries are exhausted.
func (p *Policy) Do(ctx context.Context, logE *logrus.Entry, fn func(ctx context.Context) error) error {
	attempt := 0
	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		attempt++
		if attempt >= p.MaxRetries {
			return fmt.Errorf("give up after %d attempts: %w", attempt, err)
		}
		delay := p.Delay(attempt)
		logerr.WithError(logE, err).WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay,
		}).Warn("retry after backoff")
		if err := p.sleep(ctx, delay); err != nil {
			return fmt.Errorf("wait for a retry: %w", err)
		}
	}
}

func (p *Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	case <-timer.C:
		return nil
	}
}
