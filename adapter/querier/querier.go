// Package querier applies the post-match stages of a filter call: stable
// multi-key ordering and offset/limit windowing.
package querier

import (
	"slices"

	"github.com/siftkit/sift/adapter/comparer"
	"github.com/siftkit/sift/adapter/fieldnavigator"
	"github.com/siftkit/sift/domain"
)

// Querier implements result ordering and windowing.
type Querier struct {
	nav domain.FieldNavigator
	cmp domain.Comparer
}

// NewQuerier returns a new querier with the given options applied.
func NewQuerier(options ...Option) *Querier {
	q := &Querier{
		nav: fieldnavigator.NewFieldNavigator(),
		cmp: comparer.NewComparer(),
	}
	for _, option := range options {
		option(q)
	}
	return q
}

// SortIndexes returns the permutation of [0, length) that orders the records
// by the given sort keys. The sort is stable: records comparing equal keep
// their input order. Records missing a sort key, or carrying a null, sort
// after everything else regardless of direction.
func (q *Querier) SortIndexes(length int, at func(int) any, sort domain.Sort, maxDepth int) ([]int, error) {
	idx := make([]int, length)
	for i := range idx {
		idx[i] = i
	}
	if len(sort) == 0 {
		return idx, nil
	}

	addrs := make([][]string, len(sort))
	for i, s := range sort {
		addr, err := q.nav.GetAddress(s.Key)
		if err != nil {
			return nil, err
		}
		addrs[i] = addr
	}

	slices.SortStableFunc(idx, func(a, b int) int {
		ra, rb := at(a), at(b)
		for i, s := range sort {
			va, defA := q.value(ra, addrs[i], maxDepth)
			vb, defB := q.value(rb, addrs[i], maxDepth)
			nullA := !defA || va == nil
			nullB := !defB || vb == nil
			if nullA || nullB {
				if nullA == nullB {
					continue
				}
				if nullA {
					return 1
				}
				return -1
			}
			cmp, err := q.cmp.Compare(va, vb)
			if err != nil || cmp == 0 {
				continue
			}
			if s.Order < 0 {
				return -cmp
			}
			return cmp
		}
		return 0
	})
	return idx, nil
}

func (q *Querier) value(record any, addr []string, maxDepth int) (any, bool) {
	getters, _, err := q.nav.GetField(record, maxDepth, addr...)
	if err != nil || len(getters) == 0 {
		return nil, false
	}
	return getters[0].Get()
}

// Window returns the [lo, hi) index range selecting the requested page of n
// results. A zero limit means unlimited; the range is clamped to [0, n].
func Window(n, offset, limit int) (lo, hi int) {
	if offset < 0 {
		offset = 0
	}
	lo = min(offset, n)
	hi = n
	if limit > 0 {
		hi = min(lo+limit, n)
	}
	return lo, hi
}

// Option configures querier behavior through the functional options pattern.
type Option func(*Querier)

// WithFieldNavigator sets the field navigator used to resolve sort keys.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(q *Querier) {
		q.nav = f
	}
}

// WithComparer sets the comparer used to order sort key values.
func WithComparer(c domain.Comparer) Option {
	return func(q *Querier) {
		q.cmp = c
	}
}
