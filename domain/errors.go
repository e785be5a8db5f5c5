package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMaxDepth is returned when the configured max traversal depth
	// is outside the documented 1-10 range.
	ErrBadMaxDepth = errors.New("maxDepth must be between 1 and 10")
	// ErrMixedOperators is returned when a single operator bag mixes
	// dollar operators and plain field names.
	ErrMixedOperators = errors.New("cannot mix operators and normal fields in one bag")
	// ErrBadChunkSize is returned when a chunked filter operation is
	// called with a non-positive chunk size.
	ErrBadChunkSize = errors.New("chunk size must be positive")
	// ErrLazyOrderBy is returned when an order-by option is combined with
	// a lazy filter operation, which cannot sort without materializing.
	ErrLazyOrderBy = errors.New("orderBy cannot be applied to a lazy sequence")
	// ErrUnhashable is returned by [Hasher.Hash] for data containing
	// function values, which have no stable structural identity.
	ErrUnhashable = errors.New("value contains a function and cannot be hashed")
	// ErrCursorClosed is returned when operating on a closed [Cursor].
	ErrCursorClosed = errors.New("cursor is closed")
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// calling [Cursor.Next].
	ErrScanBeforeNext = errors.New("scan called before next")
	// ErrTargetNil is returned when a nil value is provided as a decode
	// target.
	ErrTargetNil = errors.New("decode target is nil")
)

// ErrUnknownOperator is returned at compile time when a query uses a dollar
// key that is neither built in nor registered as a custom operator. This is a
// caller programming mistake, unlike malformed operand values which simply
// never match.
type ErrUnknownOperator struct {
	Operator string
}

// Error implements [error].
func (e ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Operator)
}

// ErrOperatorName is returned when registering a custom operator under a name
// that does not start with '$' or collides with a built-in operator.
type ErrOperatorName struct {
	Name   string
	Reason string
}

// Error implements [error].
func (e ErrOperatorName) Error() string {
	return fmt.Sprintf("cannot register operator %q: %s", e.Name, e.Reason)
}

// ErrCompArgType is returned when a comparison operator is built with an
// argument of a structurally invalid type, such as a non-list for $and.
type ErrCompArgType struct {
	Comp   string
	Want   string
	Actual any
}

// Error implements [error].
func (e ErrCompArgType) Error() string {
	return fmt.Sprintf(
		"%s value should be of type %s, got %T",
		e.Comp, e.Want, e.Actual,
	)
}

// ErrCannotCompare is returned by [Comparer.Compare] when two values cannot
// be compared by the current [Comparer] implementation.
type ErrCannotCompare struct {
	A any
	B any
}

// Error implements [error].
func (e ErrCannotCompare) Error() string {
	return fmt.Sprintf("cannot compare unexpected types %T and %T", e.A, e.B)
}

// ErrDecode wraps third party decoding errors with source and target
// information.
type ErrDecode struct {
	Source any
	Target any
}

// Error implements [error].
func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}
