package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidTable       = errors.New("invalid contingency table")
	ErrInvalidAlternative = errors.New("invalid alternative")

	// Expected outcome of reference comparisons, never raised by the engine
	ErrNumericDisagreement = errors.New("numeric disagreement with reference")

	// Harness errors
	ErrOracleUnsupported = errors.New("table outside oracle range")
)

// InvalidTableError names the argument that violated a table constraint.
type InvalidTableError struct {
	Arg    string // "a", "b", "c", "d", "table", "row 1", ...
	Value  string
	Reason string
}

func (e *InvalidTableError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s %s", ErrInvalidTable, e.Arg, e.Reason)
	}
	return fmt.Sprintf("%s: %s=%s %s", ErrInvalidTable, e.Arg, e.Value, e.Reason)
}

func (e *InvalidTableError) Unwrap() error {
	return ErrInvalidTable
}

// Error constructors with context
func NewInvalidTableError(arg, value, reason string) error {
	return &InvalidTableError{Arg: arg, Value: value, Reason: reason}
}

func NewInvalidAlternativeError(name string) error {
	return fmt.Errorf("%w: %q (want \"less\", \"greater\" or \"two-sided\")", ErrInvalidAlternative, name)
}

func NewDisagreementError(table string, got, want float64) error {
	return fmt.Errorf("%w: table %s got %.12g want %.12g", ErrNumericDisagreement, table, got, want)
}

// Error checking helpers
func IsInvalidTableError(err error) bool {
	return errors.Is(err, ErrInvalidTable)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTable) ||
		errors.Is(err, ErrInvalidAlternative)
}

func IsDisagreement(err error) bool {
	return errors.Is(err, ErrNumericDisagreement)
}
