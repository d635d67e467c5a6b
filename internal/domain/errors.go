package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrMissingVar      = errors.New("missing variable")
	ErrExecution       = errors.New("execution error")
	ErrNoReachableBase = errors.New("no reachable base url")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindInvalidConfig ErrorKind = "invalid_config"
	KindMissingVar    ErrorKind = "missing_variable"
	KindExecution     ErrorKind = "execution"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // Optional: relevant file path
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel of e's kind, so errors.Is(err, ErrNotFound) holds
// for any not_found OpError whatever its cause.
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := kindSentinel[e.Kind]
	return ok && target == s
}

var kindSentinel = map[ErrorKind]error{
	KindNotFound:      ErrNotFound,
	KindInvalidConfig: ErrInvalidConfig,
	KindMissingVar:    ErrMissingVar,
	KindExecution:     ErrExecution,
}

// KindOf returns the kind of the outermost OpError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}

// IsKind helps callers classify errors without depending on infra packages.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
