package retry

import "context"

// Operation binds a function to retry options ahead of time, so call sites
// invoke a plain Do without carrying the options around. This is the
// explicit-composition form of wrapping a function with retry.
type Operation[T any] struct {
	opts Options
	fn   func(context.Context) (T, error)
}

// NewOperation creates an Operation from options and an inner function.
func NewOperation[T any](opts Options, fn func(context.Context) (T, error)) *Operation[T] {
	return &Operation[T]{opts: opts, fn: fn}
}

// Do runs the inner function with the bound retry options.
func (o *Operation[T]) Do(ctx context.Context) (T, error) {
	return Do(ctx, o.opts, o.fn)
}
