package breaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/breakwater/observe"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls pass through and failures are counted.
	StateClosed State = iota
	// StateOpen means calls are rejected without invoking the operation.
	StateOpen
	// StateHalfOpen means calls pass through as recovery probes.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Observer is notified of every state transition.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: notification is purely observational and must not panic.
// - Ordering: transitions for one breaker are delivered in the order they occurred.
type Observer interface {
	OnStateChange(name string, from, to State)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(name string, from, to State)

// OnStateChange calls f.
func (f ObserverFunc) OnStateChange(name string, from, to State) {
	f(name, from, to)
}

// Config configures a circuit breaker.
type Config struct {
	// Name identifies the breaker in the registry, in rejection errors, and
	// in telemetry.
	Name string

	// FailureThreshold is the consecutive failure count that opens the
	// circuit from closed.
	// Default: 5
	FailureThreshold int

	// FailureRateThreshold is the windowed failure rate, as a percentage,
	// that opens the circuit from closed. Only evaluated once the window
	// holds at least MinimumCalls calls.
	// Default: 50
	FailureRateThreshold float64

	// MinimumCalls is the number of calls required in the rolling window
	// before the rate threshold applies.
	// Default: 10
	MinimumCalls int

	// RecoveryTimeout is how long the circuit stays open before the next
	// call is let through as a half-open probe.
	// Default: 30 seconds
	RecoveryTimeout time.Duration

	// SuccessThreshold is the number of half-open successes needed to close
	// the circuit.
	// Default: 3
	SuccessThreshold int

	// WindowSize is the rolling window over which the failure rate is
	// computed. History older than twice this is pruned on every call.
	// Default: 60 seconds
	WindowSize time.Duration

	// Fallback, when set, produces the result of calls rejected while the
	// circuit is open. Without it, rejected calls fail with an OpenError.
	Fallback func(ctx context.Context) (any, error)

	// Observer is notified of state transitions.
	Observer Observer

	// Logger reports transitions and rejections.
	// Default: a no-op logger
	Logger observe.Logger
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.FailureRateThreshold <= 0 {
		c.FailureRateThreshold = 50
	}
	if c.MinimumCalls <= 0 {
		c.MinimumCalls = 10
	}
	if c.RecoveryTimeout <= 0 {
		c.RecoveryTimeout = 30 * time.Second
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 3
	}
	if c.WindowSize <= 0 {
		c.WindowSize = time.Minute
	}
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	return c
}

// call is one recorded outcome in the rolling history.
type call struct {
	at       time.Time
	success  bool
	duration time.Duration
}

// Breaker is a circuit breaker guarding one downstream dependency.
type Breaker struct {
	cfg Config

	mu                sync.Mutex
	state             State
	failures          int
	halfOpenSuccesses int
	lastFailure       time.Time
	lastSuccess       time.Time
	lastTransition    time.Time
	history           []call
}

// New creates a circuit breaker in the closed state.
func New(cfg Config) *Breaker {
	return &Breaker{
		cfg:            cfg.withDefaults(),
		state:          StateClosed,
		lastTransition: time.Now(),
	}
}

// Name returns the breaker's configured name.
func (b *Breaker) Name() string { return b.cfg.Name }

// Execute runs op through the breaker. When the circuit is open the
// operation is not invoked: the configured Fallback produces the result, or
// an OpenError is returned when no fallback is set. When the operation runs
// and fails, its error propagates unchanged.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) (any, error)) (any, error) {
	return b.execute(ctx, op, b.cfg.Fallback)
}

// ExecuteWithFallback behaves like Execute but substitutes a call-site
// fallback for rejected calls. Errors from the operation itself still
// propagate when the call was attempted.
func (b *Breaker) ExecuteWithFallback(ctx context.Context, op, fb func(context.Context) (any, error)) (any, error) {
	return b.execute(ctx, op, fb)
}

// Do runs a typed operation through b. The fallback value, when one is
// produced, must be assignable to T.
func Do[T any](ctx context.Context, b *Breaker, op func(context.Context) (T, error)) (T, error) {
	var zero T

	v, err := b.Execute(ctx, func(ctx context.Context) (any, error) {
		return op(ctx)
	})
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("breaker %q: fallback produced %T, want %T", b.cfg.Name, v, zero)
	}
	return t, nil
}

func (b *Breaker) execute(ctx context.Context, op, fb func(context.Context) (any, error)) (any, error) {
	allowed, tr, recoveryIn := b.admit()
	if tr != nil {
		b.notify(ctx, *tr)
	}

	if !allowed {
		b.cfg.Logger.Warn(ctx, "circuit open, rejecting call",
			observe.Field{Key: "breaker", Value: b.cfg.Name},
			observe.Field{Key: "state", Value: StateOpen.String()},
			observe.Field{Key: "recoveryIn", Value: recoveryIn.String()},
		)
		if fb != nil {
			return fb(ctx)
		}
		return nil, &OpenError{Name: b.cfg.Name}
	}

	start := time.Now()
	v, err := op(ctx)

	if tr := b.record(err == nil, time.Since(start)); tr != nil {
		b.notify(ctx, *tr)
	}
	return v, err
}

type transition struct {
	from, to State
}

// admit decides whether a call may proceed. A call arriving once the
// recovery timeout has elapsed flips the circuit to half-open and is itself
// the first probe rather than being discarded.
func (b *Breaker) admit() (allowed bool, tr *transition, recoveryIn time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return true, nil, 0
	}

	since := time.Since(b.lastFailure)
	if since >= b.cfg.RecoveryTimeout {
		t := b.transitionLocked(StateHalfOpen)
		return true, &t, 0
	}

	return false, nil, b.cfg.RecoveryTimeout - since
}

// record folds one call outcome into the counters and history, returning a
// transition to announce, if any. Bookkeeping is a single locked section so
// concurrent calls cannot interleave their counter updates.
func (b *Breaker) record(success bool, duration time.Duration) *transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.history = append(b.history, call{at: now, success: success, duration: duration})
	b.pruneLocked(now)

	if success {
		b.lastSuccess = now
	} else {
		b.lastFailure = now
	}

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return nil
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			t := b.transitionLocked(StateOpen)
			return &t
		}
		if calls, failed := b.windowLocked(now); calls >= b.cfg.MinimumCalls {
			rate := float64(failed) / float64(calls) * 100
			if rate >= b.cfg.FailureRateThreshold {
				t := b.transitionLocked(StateOpen)
				return &t
			}
		}

	case StateHalfOpen:
		if !success {
			// Single strike: one probe failure reopens immediately.
			t := b.transitionLocked(StateOpen)
			return &t
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.cfg.SuccessThreshold {
			t := b.transitionLocked(StateClosed)
			return &t
		}
	}

	return nil
}

func (b *Breaker) transitionLocked(to State) transition {
	from := b.state
	b.state = to
	b.lastTransition = time.Now()

	switch to {
	case StateClosed:
		b.failures = 0
		b.halfOpenSuccesses = 0
	case StateHalfOpen:
		b.halfOpenSuccesses = 0
	}

	return transition{from: from, to: to}
}

// notify runs outside the mutex so observers may call back into the breaker.
func (b *Breaker) notify(ctx context.Context, tr transition) {
	if tr.from == tr.to {
		return
	}

	b.cfg.Logger.Info(ctx, "circuit state changed",
		observe.Field{Key: "breaker", Value: b.cfg.Name},
		observe.Field{Key: "from", Value: tr.from.String()},
		observe.Field{Key: "to", Value: tr.to.String()},
	)
	if b.cfg.Observer != nil {
		b.cfg.Observer.OnStateChange(b.cfg.Name, tr.from, tr.to)
	}
}

// pruneLocked drops history older than twice the window to bound memory.
func (b *Breaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-2 * b.cfg.WindowSize)

	i := 0
	for i < len(b.history) && b.history[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		b.history = append(b.history[:0], b.history[i:]...)
	}
}

// windowLocked counts calls and failures within the rolling window.
func (b *Breaker) windowLocked(now time.Time) (calls, failed int) {
	cutoff := now.Add(-b.cfg.WindowSize)
	for _, c := range b.history {
		if c.at.Before(cutoff) {
			continue
		}
		calls++
		if !c.success {
			failed++
		}
	}
	return calls, failed
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ForceOpen unconditionally opens the circuit, starting the recovery timer
// from now. Intended for manual intervention.
func (b *Breaker) ForceOpen() {
	b.mu.Lock()
	tr := b.transitionLocked(StateOpen)
	b.lastFailure = time.Now()
	b.mu.Unlock()

	b.notify(context.Background(), tr)
}

// ForceClose unconditionally closes the circuit and zeroes the failure
// counters.
func (b *Breaker) ForceClose() {
	b.mu.Lock()
	tr := b.transitionLocked(StateClosed)
	b.mu.Unlock()

	b.notify(context.Background(), tr)
}

// Reset returns the breaker to its as-new state: closed, counters zeroed,
// history cleared.
func (b *Breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = StateClosed
	b.failures = 0
	b.halfOpenSuccesses = 0
	b.lastFailure = time.Time{}
	b.lastSuccess = time.Time{}
	b.lastTransition = time.Now()
	b.history = nil
	b.mu.Unlock()

	b.notify(context.Background(), transition{from: from, to: StateClosed})
}

// Stats is a point-in-time snapshot of a breaker's counters and window.
type Stats struct {
	Name              string
	State             State
	Failures          int
	HalfOpenSuccesses int
	WindowCalls       int
	WindowFailureRate float64 // percent
	WindowAvgLatency  time.Duration
	LastFailure       time.Time
	LastSuccess       time.Time
	LastTransition    time.Time
}

// Stats returns a snapshot of the breaker.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-b.cfg.WindowSize)

	var calls, failed int
	var total time.Duration
	for _, c := range b.history {
		if c.at.Before(cutoff) {
			continue
		}
		calls++
		total += c.duration
		if !c.success {
			failed++
		}
	}

	s := Stats{
		Name:              b.cfg.Name,
		State:             b.state,
		Failures:          b.failures,
		HalfOpenSuccesses: b.halfOpenSuccesses,
		WindowCalls:       calls,
		LastFailure:       b.lastFailure,
		LastSuccess:       b.lastSuccess,
		LastTransition:    b.lastTransition,
	}
	if calls > 0 {
		s.WindowFailureRate = float64(failed) / float64(calls) * 100
		s.WindowAvgLatency = total / time.Duration(calls)
	}
	return s
}
