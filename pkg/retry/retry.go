package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

var (
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	ErrContextCanceled    = errors.New("context canceled during retry")
)

// Config contains retry configuration
type Config struct {
	// MaxRetries is the maximum number of retry attempts (0 = just the initial attempt)
	MaxRetries int
	// InitialInterval is the initial backoff interval
	InitialInterval time.Duration
	// MaxInterval caps the backoff interval
	MaxInterval time.Duration
	// Multiplier grows the interval after each attempt
	Multiplier float64
	// JitterFactor adds ±N% random jitter to each interval
	JitterFactor float64
}

// DefaultConfig returns default retry configuration.
// Exponential backoff: 1s, 2s, 4s, 8s, 16s, 30s (capped).
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      5,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// PermanentError wraps an error that should not be retried
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks an error as not retryable
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Result contains the outcome of a retried operation
type Result struct {
	Attempts int
	Err      error
}

// Success reports whether the operation eventually succeeded
func (r *Result) Success() bool { return r.Err == nil }

// Retrier retries operations with exponential backoff and jitter
type Retrier struct {
	config *Config
}

// New creates a Retrier, filling in defaults for zero values
func New(cfg *Config) *Retrier {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defaults.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = defaults.MaxInterval
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = defaults.Multiplier
	}
	return &Retrier{config: cfg}
}

// Do runs op, retrying on error until it succeeds, returns a permanent
// error, the retry budget is exhausted, or the context is done.
func (r *Retrier) Do(ctx context.Context, op Operation) *Result {
	result := &Result{}

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		err := op(ctx)
		if err == nil {
			result.Err = nil
			return result
		}

		var perm *PermanentError
		if errors.As(err, &perm) {
			result.Err = perm.Err
			return result
		}
		result.Err = err

		if attempt == r.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			result.Err = errors.Join(ErrContextCanceled, result.Err)
			return result
		case <-time.After(r.interval(attempt)):
		}
	}

	result.Err = errors.Join(ErrMaxRetriesExceeded, result.Err)
	return result
}

// interval computes the backoff interval for the given attempt number
func (r *Retrier) interval(attempt int) time.Duration {
	interval := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt))
	if interval > float64(r.config.MaxInterval) {
		interval = float64(r.config.MaxInterval)
	}

	if r.config.JitterFactor > 0 {
		jitter := interval * r.config.JitterFactor
		interval += (rand.Float64()*2 - 1) * jitter
	}

	if interval < 0 {
		interval = 0
	}
	return time.Duration(interval)
}
