package fieldnavigator

import "github.com/siftkit/sift/domain"

type definedValue struct{ v any }

// Get implements [domain.Getter].
func (d definedValue) Get() (any, bool) { return d.v, true }

type undefinedValue struct{}

// Get implements [domain.Getter].
func (undefinedValue) Get() (any, bool) { return nil, false }

// Defined wraps a resolved value as a defined [domain.Getter].
func Defined(v any) domain.Getter {
	return definedValue{v: v}
}

// Undefined returns the [domain.Getter] representing an absent value.
func Undefined() domain.Getter {
	return undefinedValue{}
}
