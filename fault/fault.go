package fault

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
)

// Kind is the failure category of an operation error.
type Kind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown Kind = iota
	// KindNetwork is a network-level failure (connection refused, reset, DNS).
	KindNetwork
	// KindTimeout is a timeout or deadline expiry.
	KindTimeout
	// KindHTTP is a failure carrying an HTTP status code.
	KindHTTP
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// Error is a classified operation failure. The zero Status means no HTTP
// status applies.
type Error struct {
	Kind   Kind
	Status int
	Op     string // the operation that failed, for messages
	Err    error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind == KindHTTP {
		b.WriteString("http ")
		b.WriteString(strconv.Itoa(e.Status))
	} else {
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Network wraps err as a network-level failure.
func Network(op string, err error) error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

// Timeout wraps err as a timeout failure.
func Timeout(op string, err error) error {
	return &Error{Kind: KindTimeout, Op: op, Err: err}
}

// HTTP wraps err as an HTTP failure with the given status code.
func HTTP(op string, status int, err error) error {
	return &Error{Kind: KindHTTP, Status: status, Op: op, Err: err}
}

// KindOf returns the failure kind of err. Unwrapped net.Error values and
// context.DeadlineExceeded are classified without an explicit fault wrapper.
// A nil error is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	return KindUnknown
}

// StatusOf returns the structured HTTP status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var fe *Error
	if errors.As(err, &fe) && fe.Status != 0 {
		return fe.Status, true
	}
	return 0, false
}
