package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/jonwraymond/breakwater/fault"
)

// maxDrainBytes bounds how much of a discarded response body is read so the
// underlying connection can be reused.
const maxDrainBytes = 4 << 10

// DoRequest issues an HTTP request with retry. Responses with status 429,
// 408, or 5xx are drained, closed, and converted into classified fault
// failures so the retry classifier can act on them; 429 is always retried
// regardless of the configured RetryIf. Any other response, including other
// non-2xx statuses, is returned to the caller as a success.
//
// build constructs a fresh request for each attempt, since a request body
// cannot be replayed after a failed send. The caller owns the returned
// response body.
func DoRequest(ctx context.Context, client *http.Client, opts Options, build func(context.Context) (*http.Request, error)) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	base := opts.RetryIf
	if base == nil {
		base = Retryable
	}
	opts.RetryIf = func(err error) bool {
		// Rate-limit responses are retryable no matter what the caller's
		// classifier says; the server has told us to come back later.
		if status, ok := fault.StatusOf(err); ok && status == http.StatusTooManyRequests {
			return true
		}
		return base(err)
	}

	return Do(ctx, opts, func(ctx context.Context) (*http.Response, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return nil, fault.Timeout("http request", err)
			}
			return nil, fault.Network("http request", err)
		}

		if retryableStatus(resp.StatusCode) {
			drain(resp)
			return nil, fault.HTTP("http request", resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
		}

		return resp, nil
	})
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		code >= 500
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
}
