package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonwraymond/breakwater/fault"
)

func TestDo_SuccessFirstAttempt(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), Options{}, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if v != 42 {
		t.Errorf("Do() = %d, want 42", v)
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
}

func TestDo_AttemptBudget(t *testing.T) {
	calls := 0
	retries := 0
	testErr := func(n int) error { return fmt.Errorf("attempt %d failed", n) }

	_, err := Do(context.Background(), Options{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		RetryIf:      func(error) bool { return true },
		Observer: ObserverFunc(func(err error, attempt int, delay time.Duration) {
			retries++
		}),
	}, func(ctx context.Context) (int, error) {
		calls++
		return 0, testErr(calls)
	})

	if calls != 3 {
		t.Errorf("operation called %d times, want 3", calls)
	}
	if retries != 2 {
		t.Errorf("observer fired %d times, want 2", retries)
	}
	// The final error is the last attempt's, never a synthesized one.
	if err == nil || err.Error() != "attempt 3 failed" {
		t.Errorf("Do() error = %v, want the third attempt's error", err)
	}
}

func TestDo_NonRetryableShortCircuit(t *testing.T) {
	calls := 0
	testErr := errors.New("permanent")

	start := time.Now()
	_, err := Do(context.Background(), Options{
		MaxRetries:   3,
		InitialDelay: time.Second,
		RetryIf:      func(error) bool { return false },
	}, func(ctx context.Context) (int, error) {
		calls++
		return 0, testErr
	})

	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
	if !errors.Is(err, testErr) {
		t.Errorf("Do() error = %v, want %v", err, testErr)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("non-retryable failure waited %v before returning", elapsed)
	}
}

func TestDo_CanceledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, Options{}, func(ctx context.Context) (int, error) {
		calls++
		return 0, nil
	})

	if calls != 0 {
		t.Errorf("operation called %d times, want 0", calls)
	}
	if !errors.Is(err, ErrAborted) {
		t.Errorf("Do() error = %v, want ErrAborted", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, does not unwrap to context.Canceled", err)
	}
}

func TestDo_CanceledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, err := Do(ctx, Options{
			MaxRetries:    3,
			InitialDelay:  5 * time.Second,
			DisableJitter: true,
			RetryIf:       func(error) bool { return true },
		}, func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("transient")
		})

		if !errors.Is(err, ErrAborted) {
			t.Errorf("Do() error = %v, want ErrAborted", err)
		}
	}()

	time.Sleep(50 * time.Millisecond) // let the first attempt fail and the wait begin
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Do() did not return promptly after cancellation")
	}

	if calls != 1 {
		t.Errorf("operation called %d times after cancellation, want 1", calls)
	}
}

func TestOptions_DelayMonotonicAndCapped(t *testing.T) {
	opts := Options{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		Multiplier:    2.0,
		DisableJitter: true,
	}.withDefaults()

	prev := time.Duration(0)
	for attempt := 1; attempt <= 10; attempt++ {
		d := opts.delay(attempt)
		if d < prev {
			t.Errorf("delay(%d) = %v, less than delay(%d) = %v", attempt, d, attempt-1, prev)
		}
		if d > opts.MaxDelay {
			t.Errorf("delay(%d) = %v exceeds MaxDelay %v", attempt, d, opts.MaxDelay)
		}
		prev = d
	}

	if d := opts.delay(1); d != 100*time.Millisecond {
		t.Errorf("delay(1) = %v, want 100ms", d)
	}
	if d := opts.delay(2); d != 200*time.Millisecond {
		t.Errorf("delay(2) = %v, want 200ms", d)
	}
	if d := opts.delay(8); d != 2*time.Second {
		t.Errorf("delay(8) = %v, want the 2s cap", d)
	}
}

func TestOptions_JitterBounds(t *testing.T) {
	opts := Options{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}.withDefaults()

	for attempt := 1; attempt <= 5; attempt++ {
		base := Options{
			InitialDelay:  opts.InitialDelay,
			MaxDelay:      opts.MaxDelay,
			Multiplier:    opts.Multiplier,
			DisableJitter: true,
		}.withDefaults().delay(attempt)

		for i := 0; i < 200; i++ {
			d := opts.delay(attempt)
			if d < base/2 || d > base {
				t.Fatalf("jittered delay(%d) = %v outside [%v, %v]", attempt, d, base/2, base)
			}
		}
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", fault.Network("dial", errors.New("refused")), true},
		{"timeout", fault.Timeout("query", nil), true},
		{"http 500", fault.HTTP("fetch", 500, nil), true},
		{"http 503", fault.HTTP("fetch", 503, nil), true},
		{"http 408", fault.HTTP("fetch", 408, nil), true},
		{"http 429", fault.HTTP("fetch", 429, nil), true},
		{"http 400", fault.HTTP("fetch", 400, nil), false},
		{"http 404", fault.HTTP("fetch", 404, nil), false},
		{"plain error", errors.New("boom"), false},
		{"status in text only", errors.New("upstream said 429 too many requests"), false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOperation_Do(t *testing.T) {
	calls := 0
	op := NewOperation(Options{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		RetryIf:      func(error) bool { return true },
	}, func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	v, err := op.Do(context.Background())
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if v != "ok" {
		t.Errorf("Do() = %q, want %q", v, "ok")
	}
	if calls != 2 {
		t.Errorf("operation called %d times, want 2", calls)
	}
}

func TestObserver_ReceivesComputedDelay(t *testing.T) {
	var gotDelays []time.Duration
	var gotAttempts []int

	_, _ = Do(context.Background(), Options{
		MaxRetries:    2,
		InitialDelay:  2 * time.Millisecond,
		Multiplier:    2.0,
		DisableJitter: true,
		RetryIf:       func(error) bool { return true },
		Observer: ObserverFunc(func(err error, attempt int, delay time.Duration) {
			gotAttempts = append(gotAttempts, attempt)
			gotDelays = append(gotDelays, delay)
		}),
	}, func(ctx context.Context) (int, error) {
		return 0, errors.New("transient")
	})

	wantAttempts := []int{1, 2}
	wantDelays := []time.Duration{2 * time.Millisecond, 4 * time.Millisecond}

	if len(gotAttempts) != 2 {
		t.Fatalf("observer fired %d times, want 2", len(gotAttempts))
	}
	for i := range wantAttempts {
		if gotAttempts[i] != wantAttempts[i] {
			t.Errorf("attempt[%d] = %d, want %d", i, gotAttempts[i], wantAttempts[i])
		}
		if gotDelays[i] != wantDelays[i] {
			t.Errorf("delay[%d] = %v, want %v", i, gotDelays[i], wantDelays[i])
		}
	}
}
