package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDivisionByZero reports a zero reactance, time constant or base voltage.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrDomain reports a sample that evaluated to NaN or Inf.
	ErrDomain = errors.New("arithmetic domain error")
)

// ValidationError names the input that was rejected at the boundary.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// DomainError points at the first sample that left the real numbers.
type DomainError struct {
	Index     int
	Time      float64
	Component string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s is not finite at sample %d (t=%gs)", e.Component, e.Index, e.Time)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

func zeroDivisor(name string) error {
	return fmt.Errorf("%s is zero: %w", name, ErrDivisionByZero)
}
