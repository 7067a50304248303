package breaker

import (
	"errors"
	"fmt"
)

// ErrOpen matches rejections from an open breaker, regardless of which
// breaker produced them.
var ErrOpen = errors.New("breaker: circuit open")

// OpenError reports a call rejected because the named breaker is open. It
// is distinct from any operation failure: the guarded operation was never
// invoked.
type OpenError struct {
	Name string
}

// Error implements the error interface.
func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker %q is open", e.Name)
}

// Is reports whether target is ErrOpen.
func (e *OpenError) Is(target error) bool { return target == ErrOpen }
