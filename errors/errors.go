// Package errors provides standardized error handling for semschema.
// It includes error classification, standard error variables for the
// subtyping engine, and helper functions for consistent error wrapping
// across packages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors (network fetches) that a
	// caller may choose to retry at its own layer
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input schemas or
	// configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Schema input errors
	ErrInvalidSchema      = errors.New("invalid schema document")
	ErrRecursiveRef       = errors.New("unsupported recursive reference")
	ErrUnsupportedKeyword = errors.New("unsupported schema keyword")

	// Concept graph errors
	ErrGraphLoad       = errors.New("graph source load failed")
	ErrGraphParse      = errors.New("graph source parse failed")
	ErrUnknownOntology = errors.New("unknown ontology name")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Side identifies which operand of a two-schema operation an error refers to.
type Side string

const (
	// SideLeft is the LHS operand of a subschema/meet/join operation
	SideLeft Side = "LHS"
	// SideRight is the RHS operand of a subschema/meet/join operation
	SideRight Side = "RHS"
)

// RecursiveRefError reports a cyclic schema reference graph. It records
// which operand contained the cycle and the subtree at which the
// canonicalizer's recursion budget ran out.
type RecursiveRefError struct {
	Side   Side
	Schema any
}

// Error implements the error interface
func (e *RecursiveRefError) Error() string {
	return fmt.Sprintf("%s schema contains an unsupported recursive reference", e.Side)
}

// Is makes the error match ErrRecursiveRef under errors.Is
func (e *RecursiveRefError) Is(target error) bool {
	return target == ErrRecursiveRef
}

// NewRecursiveRef creates a RecursiveRefError for the given operand side.
func NewRecursiveRef(side Side, schema any) *RecursiveRefError {
	return &RecursiveRefError{Side: side, Schema: schema}
}

// IsTransient checks if an error is transient
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}
	return errors.Is(err, ErrGraphLoad)
}

// IsInvalid checks if an error is due to invalid input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}
	return errors.Is(err, ErrInvalidSchema) ||
		errors.Is(err, ErrRecursiveRef) ||
		errors.Is(err, ErrUnsupportedKeyword) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsFatal checks if an error is fatal and should stop processing
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}
	return false
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if IsInvalid(err) {
		return ErrorInvalid
	}
	if IsFatal(err) {
		return ErrorFatal
	}
	return ErrorTransient
}

// newClassified creates a new classified error.
// This is an internal helper - use WrapTransient(), WrapFatal(), or WrapInvalid() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}
