package validator

import (
	"fmt"
	"time"
)

// StartupError reports an interpreter that failed to launch or never
// answered the liveness handshake.
type StartupError struct {
	Err error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("kernel startup failed: %v", e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// ExecutionTimeoutError reports a reply that did not arrive in time.
type ExecutionTimeoutError struct {
	Timeout time.Duration
}

func (e *ExecutionTimeoutError) Error() string {
	return fmt.Sprintf("no kernel reply within %s", e.Timeout)
}
