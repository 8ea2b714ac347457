// Package resilience provides the bounded retry loop used in front of remote backends.
package resilience

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// Backoff selects how the delay grows between attempts.
type Backoff int

const (
	BackoffConstant Backoff = iota
	BackoffLinear
	BackoffExponential
)

func (b Backoff) String() string {
	switch b {
	case BackoffConstant:
		return "constant"
	case BackoffLinear:
		return "linear"
	case BackoffExponential:
		return "exponential"
	default:
		return fmt.Sprintf("backoff(%d)", int(b))
	}
}

// ParseBackoff accepts "constant", "linear" or "exponential".
func ParseBackoff(s string) (Backoff, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "constant":
		return BackoffConstant, nil
	case "linear":
		return BackoffLinear, nil
	case "exponential":
		return BackoffExponential, nil
	default:
		return 0, fmt.Errorf("unknown backoff %q", s)
	}
}

// Policy bounds one logical call. Each Do call keeps its own attempt counter.
type Policy struct {
	// Retries is the number of retries after the first attempt.
	Retries int
	// Delay is the wait before the first retry.
	Delay time.Duration
	// MaxDelay caps a single wait. Zero means no cap.
	MaxDelay time.Duration
	// MaxTotalWait stops retrying once the summed waits would exceed it. Zero means no bound.
	MaxTotalWait time.Duration
	Backoff      Backoff

	// OnRetry runs before each wait. attempt is the 1-based attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Attempts is the maximum number of calls Do makes.
func (p Policy) Attempts() int {
	if p.Retries < 0 {
		return 1
	}
	return p.Retries + 1
}

// DelayFor is the wait after the given 1-based failed attempt.
func (p Policy) DelayFor(attempt int) time.Duration {
	var d time.Duration
	switch p.Backoff {
	case BackoffLinear:
		d = p.Delay * time.Duration(attempt)
	case BackoffExponential:
		d = time.Duration(float64(p.Delay) * math.Pow(2, float64(attempt-1)))
	default:
		d = p.Delay
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Result describes how a Do call ended.
type Result struct {
	Attempts int
	Waited   time.Duration
}

// Do calls op until it succeeds or the policy is spent. On failure it returns the
// last error from op, or ctx.Err() if the context ended during a wait.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) (Result, error) {
	var res Result
	limit := p.Attempts()
	for {
		res.Attempts++
		err := op(ctx)
		if err == nil {
			return res, nil
		}
		if res.Attempts >= limit {
			return res, err
		}

		delay := p.DelayFor(res.Attempts)
		if p.MaxTotalWait > 0 && res.Waited+delay > p.MaxTotalWait {
			return res, err
		}
		if p.OnRetry != nil {
			p.OnRetry(res.Attempts, err, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return res, err
		}
		res.Waited += delay
	}
}

func sleep(ctx context.Context, d time.Duration) error {
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
