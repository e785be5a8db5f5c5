package domain

import (
	"github.com/siftkit/sift/logger"
)

// Default configuration values.
const (
	// DefaultMaxDepth bounds path traversal and nested object matching.
	DefaultMaxDepth = 3
	// MinMaxDepth is the lowest accepted max depth.
	MinMaxDepth = 1
	// MaxMaxDepth is the highest accepted max depth.
	MaxMaxDepth = 10
)

// FilterOptions carries the configuration passed alongside every evaluation.
// The zero value is not ready for use; build it with [NewFilterOptions].
type FilterOptions struct {
	// CaseSensitive governs string operators and wildcard patterns. A
	// regex carrying its own case flag wins over this setting.
	CaseSensitive bool
	// MaxDepth bounds recursive path traversal and nested-object
	// matching. Valid range is 1-10.
	MaxDepth int
	// EnableCache turns on the result, predicate and regex caches. The
	// cached path is observationally identical to the uncached one.
	EnableCache bool
	// Comparator overrides the default equality used by $eq, $ne, $in,
	// $nin, $contains and array shorthand. Queries evaluated with a
	// custom comparator bypass the result and predicate caches.
	Comparator func(actual, expected any) bool
	// OrderBy sorts matches after filtering. The sort is stable,
	// supports dotted paths and places absent values last.
	OrderBy Sort
	// Offset drops the first N sorted matches. Non-positive means none.
	Offset int
	// Limit truncates the result to the first N matches after sorting
	// and offset. Non-positive means unlimited.
	Limit int
	// Debug enables diagnostic logging. It never influences match
	// outcomes.
	Debug bool
	// Logger receives diagnostics when Debug is enabled.
	Logger logger.Logger
	// TimeGetter supplies "now" to the datetime operators. Nil means
	// wall-clock time.
	TimeGetter TimeGetter
}

// NewFilterOptions builds a [FilterOptions] with defaults applied and the
// given options run on top, then validates it.
func NewFilterOptions(options ...FilterOption) (*FilterOptions, error) {
	o := &FilterOptions{
		MaxDepth: DefaultMaxDepth,
		Logger:   logger.Discard(),
	}
	for _, option := range options {
		option(o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate reports configuration mistakes. These are the one error class
// surfaced to callers instead of being absorbed as no-match.
func (o *FilterOptions) Validate() error {
	if o.MaxDepth < MinMaxDepth || o.MaxDepth > MaxMaxDepth {
		return ErrBadMaxDepth
	}
	return nil
}

// FilterOption configures filtering behavior through the functional options
// pattern.
type FilterOption func(*FilterOptions)

// WithCaseSensitive sets case sensitivity for string operators and wildcard
// patterns.
func WithCaseSensitive(c bool) FilterOption {
	return func(o *FilterOptions) {
		o.CaseSensitive = c
	}
}

// WithMaxDepth sets the maximum traversal depth for paths and nested object
// matching. Valid range is 1-10.
func WithMaxDepth(d int) FilterOption {
	return func(o *FilterOptions) {
		o.MaxDepth = d
	}
}

// WithCache enables or disables the result, predicate and regex caches.
func WithCache(e bool) FilterOption {
	return func(o *FilterOptions) {
		o.EnableCache = e
	}
}

// WithComparator sets a custom equality function for $eq-style comparisons.
func WithComparator(f func(actual, expected any) bool) FilterOption {
	return func(o *FilterOptions) {
		o.Comparator = f
	}
}

// WithOrderBy sets the post-filter sort order.
func WithOrderBy(s ...SortName) FilterOption {
	return func(o *FilterOptions) {
		o.OrderBy = s
	}
}

// WithOffset drops the first n matches after sorting.
func WithOffset(n int) FilterOption {
	return func(o *FilterOptions) {
		o.Offset = n
	}
}

// WithLimit truncates results to the first n matches after sorting.
func WithLimit(n int) FilterOption {
	return func(o *FilterOptions) {
		o.Limit = n
	}
}

// WithDebug enables diagnostic logging.
func WithDebug(d bool) FilterOption {
	return func(o *FilterOptions) {
		o.Debug = d
	}
}

// WithLogger sets the logger receiving diagnostics.
func WithLogger(l logger.Logger) FilterOption {
	return func(o *FilterOptions) {
		o.Logger = l
	}
}

// WithTimeGetter sets the time source used by datetime operators.
func WithTimeGetter(t TimeGetter) FilterOption {
	return func(o *FilterOptions) {
		o.TimeGetter = t
	}
}
