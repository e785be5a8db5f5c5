// Package comparer contains the default [domain.Comparer] implementation. It
// defines a total order across the value types a record can carry, so mixed
// data can always be sorted deterministically.
package comparer

import (
	"cmp"
	"math/big"
	"slices"
	"time"

	"github.com/siftkit/sift/domain"
	"github.com/siftkit/sift/pkg/structure"
)

// Comparer implements [domain.Comparer].
type Comparer struct{}

// NewComparer returns a new implementation of [domain.Comparer].
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Comparable implements [domain.Comparer].
func (c *Comparer) Comparable(a, b any) bool {
	if !c.isSet(a) || !c.isSet(b) {
		return false
	}
	a, b = c.getVal(a), c.getVal(b)

	equal := false
	if _, ok := c.asNumber(a); ok {
		_, equal = c.asNumber(b)
		return equal
	}

	switch a.(type) {
	case string:
		_, equal = b.(string)
	case time.Time:
		_, equal = b.(time.Time)
	default:
		return false
	}
	return equal
}

// Compare implements [domain.Comparer]. Value classes order as
// undefined < nil < numbers < strings < booleans < dates < lists < objects.
func (c *Comparer) Compare(a any, b any) (int, error) {

	// [domain.Getter]. Equivalent to an unset field
	if c, ok := c.checkUndefined(a, b); ok {
		return c, nil
	}

	a, b = c.getVal(a), c.getVal(b)

	// [nil] (null)
	if c, ok := c.checkNil(a, b); ok {
		return c, nil
	}

	// Numbers
	if c, ok := c.checkNumbers(a, b); ok {
		return c, nil
	}

	// Strings
	if c, ok := c.checkStrings(a, b); ok {
		return c, nil
	}

	// Booleans
	if c, ok := c.checkBooleans(a, b); ok {
		return c, nil
	}

	// Dates
	if c, ok := c.checkTime(a, b); ok {
		return c, nil
	}

	// Lists
	if c, ok, err := c.checkLists(a, b); err != nil || ok {
		return c, err
	}

	// Objects
	if c, ok, err := c.checkObjects(a, b); err != nil || ok {
		return c, err
	}

	return 0, domain.ErrCannotCompare{A: a, B: b}
}

func (c *Comparer) checkUndefined(a, b any) (int, bool) {
	if !c.isSet(a) {
		if !c.isSet(b) {
			return 0, true
		}
		return -1, true
	}
	if !c.isSet(b) {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkNil(a, b any) (int, bool) {
	if a == nil {
		if b == nil {
			return 0, true
		}
		return -1, true
	}
	if b == nil {
		return 1, true // no need to test if a == nil
	}
	return 0, false
}

func (c *Comparer) checkNumbers(a, b any) (int, bool) {
	if a, ok := c.asNumber(a); ok {
		// Using big.Float to safely compare float64 and int64 without
		// precision loss
		if b, ok := c.asNumber(b); ok {
			return a.Cmp(b), true
		}
		return -1, true
	}
	if _, ok := c.asNumber(b); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkStrings(a, b any) (int, bool) {
	if a, ok := a.(string); ok {
		if b, ok := b.(string); ok {
			return cmp.Compare(a, b), true
		}
		return -1, true
	}
	if _, ok := b.(string); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkBooleans(a, b any) (int, bool) {
	if a, ok := a.(bool); ok {
		if b, ok := b.(bool); ok {
			return c.compareBool(a, b), true
		}
		return -1, true
	}
	if _, ok := b.(bool); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkTime(a, b any) (int, bool) {
	if a, ok := a.(time.Time); ok {
		if b, ok := b.(time.Time); ok {
			return a.Compare(b), true
		}
		return -1, true
	}
	if _, ok := b.(time.Time); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkLists(a, b any) (int, bool, error) {
	aList, aOK := structure.List(a)
	bList, bOK := structure.List(b)
	if aOK {
		if bOK {
			comp, err := c.compareList(aList, bList)
			return comp, true, err
		}
		return -1, true, nil
	}
	if bOK {
		return 1, true, nil
	}
	return 0, false, nil
}

func (c *Comparer) checkObjects(a, b any) (int, bool, error) {
	aSeq, aLen, aErr := structure.Seq2(a)
	bSeq, bLen, bErr := structure.Seq2(b)
	if aErr == nil {
		if bErr == nil {
			comp, err := c.compareObject(aSeq, aLen, bSeq, bLen)
			return comp, true, err
		}
		return -1, true, nil
	}
	if bErr == nil {
		return 1, true, nil
	}
	return 0, false, nil
}

func (c *Comparer) compareList(a, b []any) (int, error) {
	minLength := min(len(a), len(b))

	var comp int
	var err error
	for i := range minLength {
		comp, err = c.Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}

		if comp != 0 {
			return comp, nil
		}
	}

	// Common section was identical, longest one wins
	return cmp.Compare(len(a), len(b)), nil
}

func (c *Comparer) compareObject(aSeq func(func(string, any) bool), aLen int, bSeq func(func(string, any) bool), bLen int) (int, error) {
	aFields := collect(aSeq, aLen)
	bFields := collect(bSeq, bLen)

	aKeys := sortedKeys(aFields)
	bKeys := sortedKeys(bFields)

	var comp int
	var err error
	for i := range min(len(aKeys), len(bKeys)) {
		if comp = cmp.Compare(aKeys[i], bKeys[i]); comp != 0 {
			return comp, nil
		}
		comp, err = c.Compare(aFields[aKeys[i]], bFields[bKeys[i]])
		if err != nil {
			return 0, err
		}
		if comp != 0 {
			return comp, nil
		}
	}

	return cmp.Compare(len(aKeys), len(bKeys)), nil
}

func collect(seq func(func(string, any) bool), length int) map[string]any {
	res := make(map[string]any, length)
	for k, v := range seq {
		res[k] = v
	}
	return res
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *Comparer) compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}

func (c *Comparer) asNumber(v any) (*big.Float, bool) {
	r := big.NewFloat(0)
	switch n := v.(type) {
	case int:
		r.SetInt64(int64(n))
	case int8:
		r.SetInt64(int64(n))
	case int16:
		r.SetInt64(int64(n))
	case int32:
		r.SetInt64(int64(n))
	case int64:
		r.SetInt64(n)
	case uint:
		r.SetUint64(uint64(n))
	case uint8:
		r.SetUint64(uint64(n))
	case uint16:
		r.SetUint64(uint64(n))
	case uint32:
		r.SetUint64(uint64(n))
	case uint64:
		r.SetUint64(n)
	case float32:
		r.SetFloat64(float64(n))
	case float64:
		r.SetFloat64(n)
	default:
		return nil, false
	}
	return r, true
}

func (c *Comparer) isSet(v any) bool {
	if g, ok := v.(domain.Getter); ok {
		_, isSet := g.Get()
		return isSet
	}
	return true
}

func (c *Comparer) getVal(v any) any {
	if g, ok := v.(domain.Getter); ok {
		val, _ := g.Get()
		return val
	}
	return v
}
