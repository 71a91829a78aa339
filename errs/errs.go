// Package errs defines the error taxonomy shared across CorrMatch's
// packages: validation, configuration, parallelism, and degeneracy
// failures all wrap a small Kind enum rather than ad-hoc sentinel
// errors, so callers can switch on Kind without string matching.
package errs

import "fmt"

// Kind classifies a MatchError by cause, not by the package that raised it.
type Kind int

const (
	// InvalidInput covers empty buffers, size mismatches, dimensions
	// below 1, or an image smaller than the template at level 0.
	InvalidInput Kind = iota
	// InvalidConfig covers out-of-range or inconsistent CompileConfig /
	// MatchConfig options.
	InvalidConfig
	// ParallelUnavailable is returned when the caller requested
	// parallel execution but this build cannot provide it.
	ParallelUnavailable
	// Degenerate is returned when no candidate placement survives
	// (all windows sub-threshold variance, or the template no longer
	// fits after pyramid shrink).
	Degenerate
	// Internal marks an invariant violation that should never occur.
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case InvalidConfig:
		return "invalid_config"
	case ParallelUnavailable:
		return "parallel_unavailable"
	case Degenerate:
		return "degenerate"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// MatchError is the concrete error type returned at CorrMatch's package
// boundaries. It always carries a Kind and may wrap an underlying cause.
type MatchError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *MatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corrmatch: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("corrmatch: %s: %s", e.Kind, e.Message)
}

func (e *MatchError) Unwrap() error { return e.Cause }

// New builds a MatchError with no wrapped cause.
func New(kind Kind, message string) error {
	return &MatchError{Kind: kind, Message: message}
}

// Wrap builds a MatchError that wraps cause. If cause is nil, Wrap
// returns nil so it can be used inline with error-returning calls.
func Wrap(kind Kind, message string, cause error) error {
	if cause == nil {
		return nil
	}
	return &MatchError{Kind: kind, Message: message, Cause: cause}
}

// As reports whether err is (or wraps) a *MatchError and, if so,
// returns its Kind. Callers that only care about the Kind can use this
// instead of errors.As directly.
func As(err error) (Kind, bool) {
	var me *MatchError
	for err != nil {
		if m, ok := err.(*MatchError); ok {
			me = m
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if me == nil {
		return 0, false
	}
	return me.Kind, true
}
