package dynamo

import "errors"

// Domain errors for iterative runs.
var (
	// ErrConfig indicates an invalid run configuration (termination policy,
	// missing function or input). Runs never start with a config error.
	ErrConfig = errors.New("dynamo: invalid configuration")

	// ErrUnsupportedPolicy indicates a termination policy the method cannot honour.
	ErrUnsupportedPolicy = errors.New("dynamo: unsupported termination policy")

	// ErrInvalidInput indicates an initial value of the wrong shape for the method.
	ErrInvalidInput = errors.New("dynamo: invalid initial value")

	// ErrCanceled indicates the caller canceled the run between steps.
	ErrCanceled = errors.New("dynamo: run canceled by context")
)

// RunError wraps an error with the method and the step at which the run stopped.
type RunError struct {
	Method  string
	Step    int
	Wrapped error
}

func (e *RunError) Error() string {
	return e.Wrapped.Error()
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
