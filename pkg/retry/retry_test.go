package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestRetrier_Do(t *testing.T) {
	t.Run("succeeds first try", func(t *testing.T) {
		r := New(fastConfig(3))
		result := r.Do(context.Background(), func(ctx context.Context) error {
			return nil
		})
		if !result.Success() {
			t.Fatalf("expected success, got %v", result.Err)
		}
		if result.Attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", result.Attempts)
		}
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		r := New(fastConfig(3))
		calls := 0
		result := r.Do(context.Background(), func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if !result.Success() {
			t.Fatalf("expected success, got %v", result.Err)
		}
		if result.Attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", result.Attempts)
		}
	})

	t.Run("exhausts retry budget", func(t *testing.T) {
		r := New(fastConfig(2))
		opErr := errors.New("still broken")
		result := r.Do(context.Background(), func(ctx context.Context) error {
			return opErr
		})
		if result.Success() {
			t.Fatal("expected failure")
		}
		if result.Attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", result.Attempts)
		}
		if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
			t.Errorf("expected ErrMaxRetriesExceeded, got %v", result.Err)
		}
		if !errors.Is(result.Err, opErr) {
			t.Errorf("expected underlying error preserved, got %v", result.Err)
		}
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		r := New(fastConfig(5))
		opErr := errors.New("bad input")
		result := r.Do(context.Background(), func(ctx context.Context) error {
			return Permanent(opErr)
		})
		if result.Attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", result.Attempts)
		}
		if !errors.Is(result.Err, opErr) {
			t.Errorf("expected underlying error, got %v", result.Err)
		}
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		r := New(&Config{
			MaxRetries:      5,
			InitialInterval: time.Minute,
			MaxInterval:     time.Minute,
			Multiplier:      2.0,
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := r.Do(ctx, func(ctx context.Context) error {
			return errors.New("transient")
		})
		if result.Success() {
			t.Fatal("expected failure")
		}
		if !errors.Is(result.Err, ErrContextCanceled) {
			t.Errorf("expected ErrContextCanceled, got %v", result.Err)
		}
	})
}

func TestRetrier_Interval(t *testing.T) {
	r := New(&Config{
		MaxRetries:      3,
		InitialInterval: time.Second,
		MaxInterval:     4 * time.Second,
		Multiplier:      2.0,
	})

	if got := r.interval(0); got != time.Second {
		t.Errorf("expected 1s, got %v", got)
	}
	if got := r.interval(1); got != 2*time.Second {
		t.Errorf("expected 2s, got %v", got)
	}
	// Capped at MaxInterval.
	if got := r.interval(5); got != 4*time.Second {
		t.Errorf("expected 4s, got %v", got)
	}
}
