// Package domain contains domain-specific interfaces and option types for
// sift.
//
// This package defines the core interfaces that must be implemented by
// adapters, as well as functional options for configuring evaluation,
// ordering and caching behavior.
package domain

import (
	"context"
	"time"
)

// Predicate decides whether a single record matches. It is the escape hatch
// for arbitrary caller logic: the engine invokes it directly and uses its
// boolean result without further interpretation.
type Predicate func(record any) bool

// OperatorFunc evaluates a custom operator against a resolved field value.
// A non-nil error is treated as no-match; it never aborts a filter call.
type OperatorFunc func(value any, operand any, opts *FilterOptions) (bool, error)

// Comparer provides ordering and comparison operations for different data
// types.
type Comparer interface {
	// Compare returns -1, 0, or 1 based on the comparison of two values.
	Compare(any, any) (int, error)
	// Comparable returns true if two values can be ordered against each
	// other.
	Comparable(any, any) bool
}

// Getter represents a resolved field value that can be undefined. An unset
// key, an out-of-range array index or any address within a primitive value
// counts as undefined. An explicit nil value does not.
type Getter interface {
	// Get returns the value and a bool indicating whether the value counts
	// as defined.
	Get() (value any, defined bool)
}

// FieldNavigator provides read-only field access with dot notation support.
type FieldNavigator interface {
	// GetAddress splits the string address into path segments using the
	// expected notation.
	GetAddress(field string) ([]string, error)
	// GetField extracts values from a nested record, following path parts.
	// Numeric parts index into arrays; walking into an array with a
	// non-numeric part expands the query over every element, in which case
	// the second return is true. Traversal never fails on messy data:
	// absence is reported through the returned [Getter]s. Paths longer
	// than maxDepth resolve as undefined.
	GetField(record any, maxDepth int, parts ...string) ([]Getter, bool, error)
}

// TimeGetter provides the current time for datetime operators.
type TimeGetter interface {
	// GetTime returns the current time.
	GetTime() time.Time
}

// Hasher generates structural hash values used as cache keys.
type Hasher interface {
	// Hash generates a hash value for the given data. It returns
	// [ErrUnhashable] for data containing function values.
	Hash(any) (uint64, error)
}

// Decoder converts between data representations.
type Decoder interface {
	// Decode converts from one data format to another.
	Decode(source any, target any) error
}

// CompiledQuery is an expression compiled into a reusable matcher. It is
// immutable after compilation and safe for concurrent use across records.
type CompiledQuery interface {
	// Match returns true if the record matches the query. Malformed record
	// values never error; they simply do not match.
	Match(record any) bool
	// Explain evaluates the record like [CompiledQuery.Match] while
	// collecting a structural trace of which sub-expressions matched. The
	// trace is diagnostic only and never influences the boolean outcome.
	Explain(record any) *MatchTrace
}

// Matcher compiles query expressions into reusable [CompiledQuery] values.
type Matcher interface {
	// Compile classifies and compiles a query expression. Configuration
	// mistakes (unknown operators, mixed operator/field bags) surface as
	// errors here; malformed operand values compile into conditions that
	// never match.
	Compile(query any, opts *FilterOptions) (CompiledQuery, error)
}

// Cursor provides iteration over filtered results.
type Cursor interface {
	// Next advances the cursor to the next record, returning true if one
	// is available.
	Next() bool
	// Scan decodes the current record into target.
	Scan(ctx context.Context, target any) error
	// Err returns any error that occurred during iteration.
	Err() error
	// Close releases cursor resources.
	Close() error
}

// MatchTrace is the structural trace produced by [CompiledQuery.Explain].
type MatchTrace struct {
	// Matched is the overall boolean outcome for the record.
	Matched bool
	// Steps lists the evaluated sub-expressions in evaluation order.
	// Short-circuited branches do not appear.
	Steps []TraceStep
}

// TraceStep describes a single evaluated sub-expression.
type TraceStep struct {
	// Field is the dotted path the step evaluated, or "" for whole-record
	// and logical steps.
	Field string
	// Operator is the operator name ("$gte", "$and", "wildcard", ...).
	Operator string
	// Matched is the boolean result of this step.
	Matched bool
}

// SortName represents a single field and the order which should be used to
// sort it, a positive value meaning ascending order and a negative value
// meaning descending order.
type SortName struct {
	Key   string
	Order int8
}

// Sort represents an ordered list of fields which should be used,
// respectively, to sort the results of a query.
type Sort = []SortName

// CacheStats reports the current size of the process-wide caches.
type CacheStats struct {
	PredicateCacheSize int
	RegexCacheSize     int
	ResultCacheSize    int
}
