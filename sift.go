// Package sift filters in-memory collections with declarative, MongoDB-style
// query expressions: operator maps, wildcard strings, logical combinators and
// predicate functions, evaluated against maps or structs with dotted path
// support.
//
// The package-level functions share one engine with a process-wide cache and
// custom operator registry. The pieces are also usable on their own through
// the adapter packages.
package sift

import (
	"iter"
	"slices"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/google/uuid"

	"github.com/siftkit/sift/adapter/cache"
	"github.com/siftkit/sift/adapter/cursor"
	"github.com/siftkit/sift/adapter/hasher"
	"github.com/siftkit/sift/adapter/matcher"
	"github.com/siftkit/sift/adapter/predicate"
	"github.com/siftkit/sift/adapter/querier"
	"github.com/siftkit/sift/domain"
)

// Aliases for the domain types used by the public API.
type (
	// Option configures a filter call.
	Option = domain.FilterOption
	// Options carries the resolved configuration of a filter call.
	Options = domain.FilterOptions
	// Predicate decides whether a single record matches.
	Predicate = domain.Predicate
	// OperatorFunc evaluates a custom operator.
	OperatorFunc = domain.OperatorFunc
	// CompiledQuery is a reusable compiled expression.
	CompiledQuery = domain.CompiledQuery
	// Cursor iterates filtered results with typed decoding.
	Cursor = domain.Cursor
	// SortName is one ordering key.
	SortName = domain.SortName
	// Sort is an ordered list of ordering keys.
	Sort = domain.Sort
	// MatchTrace is the per-record trace produced by [Explain].
	MatchTrace = domain.MatchTrace
	// TraceStep is a single evaluated sub-expression in a [MatchTrace].
	TraceStep = domain.TraceStep
	// CacheStats reports the size of the process-wide caches.
	CacheStats = domain.CacheStats
)

// Re-exported option constructors.
var (
	WithCaseSensitive = domain.WithCaseSensitive
	WithMaxDepth      = domain.WithMaxDepth
	WithCache         = domain.WithCache
	WithComparator    = domain.WithComparator
	WithOrderBy       = domain.WithOrderBy
	WithOffset        = domain.WithOffset
	WithLimit         = domain.WithLimit
	WithDebug         = domain.WithDebug
	WithLogger        = domain.WithLogger
	WithTimeGetter    = domain.WithTimeGetter
)

// Asc builds an ascending ordering key.
func Asc(key string) SortName { return SortName{Key: key, Order: 1} }

// Desc builds a descending ordering key.
func Desc(key string) SortName { return SortName{Key: key, Order: -1} }

// engine bundles the collaborators shared by the package-level functions.
type engine struct {
	matcher  domain.Matcher
	querier  *querier.Querier
	hasher   domain.Hasher
	cache    *cache.Cache
	registry *matcher.Registry
}

func newEngine() *engine {
	c := cache.New()
	reg := matcher.NewRegistry()
	return &engine{
		matcher: matcher.NewMatcher(
			matcher.WithCache(c),
			matcher.WithRegistry(reg),
		),
		querier:  querier.NewQuerier(),
		hasher:   hasher.NewHasher(),
		cache:    c,
		registry: reg,
	}
}

var defaultEngine = newEngine()

// compile resolves a compiled query, consulting the predicate cache when the
// call is cacheable. Queries containing functions hash as unhashable and
// bypass the caches, as do calls with a custom comparator or time source.
// Debug calls also bypass: a cached query carries the evaluation context of
// the call that compiled it, and diagnostics must go to this call's logger.
func (e *engine) compile(query any, o *Options) (cq CompiledQuery, hash uint64, cacheable bool, err error) {
	cacheable = o.EnableCache && o.Comparator == nil && o.TimeGetter == nil && !o.Debug
	if cacheable {
		hash, err = e.hasher.Hash(map[string]any{
			"query":         query,
			"caseSensitive": o.CaseSensitive,
			"maxDepth":      o.MaxDepth,
			"orderBy":       o.OrderBy,
			"offset":        o.Offset,
			"limit":         o.Limit,
		})
		if err != nil {
			cacheable = false
		} else if cached, ok := e.cache.Predicate(hash); ok {
			return cached, hash, true, nil
		}
	}

	cq, err = e.matcher.Compile(query, o)
	if err != nil {
		return nil, 0, false, err
	}
	if cacheable {
		e.cache.StorePredicate(hash, cq)
	}
	return cq, hash, cacheable, nil
}

// Filter returns the records matching the query, in input order unless
// ordered with [WithOrderBy], after applying offset and limit. The input
// slice is never mutated. Cached results are shared; treat them as read-only.
func Filter[T any](records []T, query any, options ...Option) ([]T, error) {
	o, err := domain.NewFilterOptions(options...)
	if err != nil {
		return nil, err
	}
	e := defaultEngine
	cq, hash, cacheable, err := e.compile(query, o)
	if err != nil {
		return nil, err
	}

	var key cache.ResultKey
	if cacheable = cacheable && len(records) > 0; cacheable {
		key = cache.ResultKey{
			Data: reflect.ValueOf(records).Pointer(),
			Len:  len(records),
			Hash: hash,
		}
		if v, ok := e.cache.Result(key); ok {
			if out, ok := v.([]T); ok {
				return out, nil
			}
		}
	}

	out := make([]T, 0)
	for i := range records {
		if cq.Match(records[i]) {
			out = append(out, records[i])
		}
	}
	if out, err = orderSlice(e, out, o); err != nil {
		return nil, err
	}
	lo, hi := querier.Window(len(out), o.Offset, o.Limit)
	out = out[lo:hi]

	if cacheable {
		e.cache.StoreResult(key, out)
	}
	return out, nil
}

func orderSlice[T any](e *engine, out []T, o *Options) ([]T, error) {
	if len(o.OrderBy) == 0 || len(out) < 2 {
		return out, nil
	}
	idx, err := e.querier.SortIndexes(
		len(out),
		func(i int) any { return out[i] },
		o.OrderBy,
		o.MaxDepth,
	)
	if err != nil {
		return nil, err
	}
	sorted := make([]T, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted, nil
}

// FilterLazy returns a sequence yielding matches one at a time, evaluating
// each record only when pulled. Offset and limit apply streamingly; ordering
// would require materializing and returns [domain.ErrLazyOrderBy].
func FilterLazy[T any](records []T, query any, options ...Option) (iter.Seq[T], error) {
	return FilterSeq(slices.Values(records), query, options...)
}

// FilterSeq filters a streamed source sequence. The source is consumed
// exactly once and only as far as the consumer pulls, so infinite or
// externally driven sources are safe: termination stays with the consumer,
// or with a limit, which stops pulling the moment it is reached. Ordering
// would require materializing and returns [domain.ErrLazyOrderBy].
func FilterSeq[T any](src iter.Seq[T], query any, options ...Option) (iter.Seq[T], error) {
	o, err := domain.NewFilterOptions(options...)
	if err != nil {
		return nil, err
	}
	if len(o.OrderBy) != 0 {
		return nil, domain.ErrLazyOrderBy
	}
	cq, _, _, err := defaultEngine.compile(query, o)
	if err != nil {
		return nil, err
	}
	return func(yield func(T) bool) {
		var skipped, count int
		for r := range src {
			if !cq.Match(r) {
				continue
			}
			if skipped < o.Offset {
				skipped++
				continue
			}
			if !yield(r) {
				return
			}
			count++
			if o.Limit > 0 && count >= o.Limit {
				return
			}
		}
	}, nil
}

// FilterFirst returns the first count matches in input order, stopping
// evaluation as soon as enough are found. Combined with [WithOrderBy] it
// cannot exit early and behaves like [Filter] with a limit.
func FilterFirst[T any](records []T, query any, count int, options ...Option) ([]T, error) {
	o, err := domain.NewFilterOptions(options...)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return []T{}, nil
	}
	if len(o.OrderBy) != 0 {
		o.Limit = count
		return Filter(records, query, func(fo *Options) { *fo = *o })
	}
	cq, _, _, err := defaultEngine.compile(query, o)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, count)
	for i := range records {
		if cq.Match(records[i]) {
			out = append(out, records[i])
			if len(out) == count {
				break
			}
		}
	}
	return out, nil
}

// FilterExists reports whether any record matches, stopping at the first hit.
func FilterExists[T any](records []T, query any, options ...Option) (bool, error) {
	out, err := FilterFirst(records, query, 1, options...)
	if err != nil {
		return false, err
	}
	return len(out) > 0, nil
}

// FilterCount returns the number of matching records without materializing
// them.
func FilterCount[T any](records []T, query any, options ...Option) (int, error) {
	o, err := domain.NewFilterOptions(options...)
	if err != nil {
		return 0, err
	}
	cq, _, _, err := defaultEngine.compile(query, o)
	if err != nil {
		return 0, err
	}
	var count int
	for i := range records {
		if cq.Match(records[i]) {
			count++
		}
	}
	return count, nil
}

// FilterChunked filters like [Filter] and splits the result into chunks of
// the given size; the final chunk may be shorter.
func FilterChunked[T any](records []T, query any, size int, options ...Option) ([][]T, error) {
	if size <= 0 {
		return nil, domain.ErrBadChunkSize
	}
	out, err := Filter(records, query, options...)
	if err != nil {
		return nil, err
	}
	chunks := make([][]T, 0, (len(out)+size-1)/size)
	for len(out) > 0 {
		n := min(size, len(out))
		chunks = append(chunks, out[:n:n])
		out = out[n:]
	}
	return chunks, nil
}

// FilterLazyChunked streams matches in chunks of the given size, evaluating
// records only as each chunk is pulled.
func FilterLazyChunked[T any](records []T, query any, size int, options ...Option) (iter.Seq[[]T], error) {
	return FilterSeqChunked(slices.Values(records), query, size, options...)
}

// FilterSeqChunked streams matches from a source sequence in chunks of the
// given size, pulling the source only as each chunk is consumed. The final
// chunk may be shorter.
func FilterSeqChunked[T any](src iter.Seq[T], query any, size int, options ...Option) (iter.Seq[[]T], error) {
	if size <= 0 {
		return nil, domain.ErrBadChunkSize
	}
	seq, err := FilterSeq(src, query, options...)
	if err != nil {
		return nil, err
	}
	return func(yield func([]T) bool) {
		chunk := make([]T, 0, size)
		for r := range seq {
			chunk = append(chunk, r)
			if len(chunk) == size {
				if !yield(chunk) {
					return
				}
				chunk = make([]T, 0, size)
			}
		}
		if len(chunk) > 0 {
			yield(chunk)
		}
	}, nil
}

// Match reports whether a single record matches the query.
func Match(record any, query any, options ...Option) (bool, error) {
	cq, err := Compile(query, options...)
	if err != nil {
		return false, err
	}
	return cq.Match(record), nil
}

// Compile compiles a query expression into a reusable [CompiledQuery],
// surfacing configuration mistakes such as unknown operators or mixed
// operator bags. The compiled form is safe for concurrent use.
func Compile(query any, options ...Option) (CompiledQuery, error) {
	o, err := domain.NewFilterOptions(options...)
	if err != nil {
		return nil, err
	}
	cq, _, _, err := defaultEngine.compile(query, o)
	return cq, err
}

// Where compiles a string expression such as "age >= 18 && city == 'Berlin'"
// into a [Predicate] usable as a query or as a $where operand.
func Where(source string) (Predicate, error) {
	return predicate.Compile(source)
}

// Report is the diagnostic output of [Explain].
type Report struct {
	// ID uniquely identifies this explain run.
	ID string
	// Elapsed is the wall time spent evaluating.
	Elapsed time.Duration
	// Total is the number of records evaluated.
	Total int
	// Matched is the number of records that matched.
	Matched int
	// Traces holds one trace per record, in input order.
	Traces []*MatchTrace
}

// Explain evaluates every record like [Filter] while collecting per-record
// traces of which sub-expressions matched. The traces are diagnostic only;
// the match outcomes are identical to [Filter].
func Explain[T any](records []T, query any, options ...Option) (*Report, error) {
	o, err := domain.NewFilterOptions(options...)
	if err != nil {
		return nil, err
	}
	cq, _, _, err := defaultEngine.compile(query, o)
	if err != nil {
		return nil, err
	}
	report := &Report{
		ID:     uuid.NewString(),
		Total:  len(records),
		Traces: make([]*MatchTrace, 0, len(records)),
	}
	start := time.Now()
	for i := range records {
		tr := cq.Explain(records[i])
		if tr.Matched {
			report.Matched++
		}
		report.Traces = append(report.Traces, tr)
	}
	report.Elapsed = time.Since(start)
	return report, nil
}

// FilterCursor filters like [Filter] and returns a forward-only [Cursor]
// over the matches, decoding each record into a typed target on scan.
func FilterCursor[T any](records []T, query any, options ...Option) (Cursor, error) {
	out, err := Filter(records, query, options...)
	if err != nil {
		return nil, err
	}
	data := make([]any, len(out))
	for i := range out {
		data[i] = out[i]
	}
	return cursor.NewCursor(data), nil
}

// RegisterOperator adds a custom operator to the process-wide registry. Names
// must start with '$' and must not shadow a built-in operator.
func RegisterOperator(name string, fn OperatorFunc) error {
	return defaultEngine.registry.Register(name, fn)
}

// UnregisterOperator removes a custom operator from the process-wide
// registry.
func UnregisterOperator(name string) {
	defaultEngine.registry.Unregister(name)
}

// ClearOperators removes every registered custom operator.
func ClearOperators() {
	defaultEngine.registry.Clear()
}

// ClearCache resets the process-wide result, predicate and regex caches.
func ClearCache() {
	defaultEngine.cache.Clear()
}

// Stats reports the current size of the process-wide caches.
func Stats() CacheStats {
	return defaultEngine.cache.Stats()
}
