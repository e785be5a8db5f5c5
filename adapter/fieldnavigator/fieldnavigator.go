// Package fieldnavigator contains the default [domain.FieldNavigator]
// implementation. It resolves dotted paths against records without ever
// failing: absence is a first-class result, not an error.
package fieldnavigator

import (
	"strconv"
	"strings"

	"github.com/siftkit/sift/domain"
	"github.com/siftkit/sift/pkg/structure"
)

// FieldNavigator implements [domain.FieldNavigator].
type FieldNavigator struct{}

// NewFieldNavigator returns a new implementation of [domain.FieldNavigator].
func NewFieldNavigator() domain.FieldNavigator {
	return &FieldNavigator{}
}

// GetAddress implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetAddress(field string) ([]string, error) {
	return strings.Split(field, "."), nil
}

// GetField implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetField(record any, maxDepth int, parts ...string) ([]domain.Getter, bool, error) {
	undefined := []domain.Getter{Undefined()}
	if record == nil || len(parts) == 0 {
		return undefined, false, nil
	}
	if len(parts) > maxDepth {
		return undefined, false, nil
	}

	type entry struct {
		v          any
		expandable bool
		defined    bool
	}

	var (
		// has to be a list to include expanded queries
		curr = []entry{{v: record, expandable: true, defined: true}}
		// set to true when continuing a query for every item in a list
		expanded = false
	)

	for _, part := range parts {
		for n := 0; n < len(curr); n++ {
			item := curr[n]
			if !item.defined {
				continue
			}

			if v, ok := structure.Field(item.v, part); ok {
				curr[n] = entry{v: v, expandable: true, defined: true}
				continue
			}

			if list, ok := structure.List(item.v); ok {
				i, err := strconv.Atoi(part)
				if err != nil {
					// walking into a list with a non-numeric
					// part expands the query over every item
					expanded = true
					if !item.expandable {
						curr[n] = entry{}
						continue
					}
					sub := make([]entry, len(list))
					for nn, v := range list {
						sub[nn] = entry{v: v, defined: true}
					}
					// replace the list in place so the
					// remaining parts run on every item
					curr = append(curr[:n], append(sub, curr[n+1:]...)...)
					n--
					continue
				}
				if i >= 0 && i < len(list) {
					curr[n] = entry{v: list[i], expandable: true, defined: true}
					continue
				}
				curr[n] = entry{}
				continue
			}

			// primitive mid-path, or unset key on an object
			curr[n] = entry{}
		}
	}

	res := make([]domain.Getter, 0, len(curr))
	for _, item := range curr {
		if item.defined {
			res = append(res, Defined(item.v))
		} else {
			res = append(res, Undefined())
		}
	}
	if len(res) == 0 {
		return undefined, expanded, nil
	}
	return res, expanded, nil
}
