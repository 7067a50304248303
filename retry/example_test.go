package retry_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/breakwater/fault"
	"github.com/jonwraymond/breakwater/retry"
)

func ExampleDo() {
	attempts := 0

	v, err := retry.Do(context.Background(), retry.Options{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
	}, func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", fault.Network("fetch", errors.New("connection reset"))
		}
		return "payload", nil
	})

	if err == nil {
		fmt.Printf("got %q after %d attempts\n", v, attempts)
	}
	// Output:
	// got "payload" after 3 attempts
}

func ExampleDo_nonRetryable() {
	attempts := 0

	_, err := retry.Do(context.Background(), retry.Options{
		MaxRetries: 3,
	}, func(ctx context.Context) (string, error) {
		attempts++
		return "", fault.HTTP("fetch", 404, errors.New("not found"))
	})

	fmt.Println(attempts, "attempt:", err)
	// Output:
	// 1 attempt: fetch: http 404: not found
}

func ExampleObserverFunc() {
	attempts := 0

	_, _ = retry.Do(context.Background(), retry.Options{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		Observer: retry.ObserverFunc(func(err error, attempt int, delay time.Duration) {
			fmt.Printf("attempt %d failed, retrying\n", attempt)
		}),
	}, func(ctx context.Context) (int, error) {
		attempts++
		return 0, fault.Timeout("query", nil)
	})
	// Output:
	// attempt 1 failed, retrying
	// attempt 2 failed, retrying
}

func ExampleNewOperation() {
	fetch := retry.NewOperation(retry.Options{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
	}, func(ctx context.Context) ([]byte, error) {
		return []byte("cached"), nil
	})

	v, _ := fetch.Do(context.Background())
	fmt.Println(string(v))
	// Output:
	// cached
}
