// Package structure contains type-related operations, such as iterating over
// a value of type any, looking up fields on maps and structs, and converting
// numbers.
package structure

import (
	"errors"
	"iter"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-reflect"
)

// TagName is the struct tag consulted when mapping struct fields to query
// field names.
const TagName = "sift"

var (
	// ErrNilObj may be returned by [Seq] or [Seq2] when a nil value is
	// passed as argument.
	ErrNilObj = errors.New("nil object")
)

// ErrorNonObject is returned by [Seq2] when a value that is neither a struct
// nor a map with string keys is passed as argument.
type ErrorNonObject struct {
	Type reflect.Type
}

func (e ErrorNonObject) Error() string {
	return "not an object"
}

// ErrorNonList is returned by [Seq] when a value that is neither a slice nor
// an array is passed as argument.
type ErrorNonList struct {
	Type reflect.Type
}

func (e ErrorNonList) Error() string {
	return "not a list"
}

// Seq2 returns an iterator over the fields of the passed value. This works
// for maps with string keys and for structs, where exported fields are
// visited under their tag name if a "sift" tag is present, or their field
// name otherwise. time.Time values are not treated as objects.
func Seq2(obj any) (iter.Seq2[string, any], int, error) {
	if obj == nil {
		return nil, 0, ErrNilObj
	}
	if m, ok := obj.(map[string]any); ok {
		return func(yield func(string, any) bool) {
			for k, v := range m {
				if !yield(k, v) {
					return
				}
			}
		}, len(m), nil
	}
	if _, ok := obj.(time.Time); ok {
		return nil, 0, ErrorNonObject{Type: reflect.TypeOf(obj)}
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, 0, ErrNilObj
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, 0, ErrorNonObject{Type: v.Type()}
		}
		return func(yield func(string, any) bool) {
			for _, key := range v.MapKeys() {
				if !yield(key.String(), v.MapIndex(key).Interface()) {
					return
				}
			}
		}, v.Len(), nil
	case reflect.Struct:
		names, values := structFields(v)
		return func(yield func(string, any) bool) {
			for n, name := range names {
				if !yield(name, values[n]) {
					return
				}
			}
		}, len(names), nil
	default:
		return nil, 0, ErrorNonObject{Type: v.Type()}
	}
}

func structFields(v reflect.Value) ([]string, []any) {
	t := v.Type()
	names := make([]string, 0, t.NumField())
	values := make([]any, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup(TagName); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		names = append(names, name)
		values = append(values, v.Field(i).Interface())
	}
	return names, values
}

// Seq returns an iterator over the items of the passed slice or array.
// Strings and byte slices are not treated as lists.
func Seq(obj any) (iter.Seq[any], int, error) {
	if obj == nil {
		return nil, 0, ErrNilObj
	}
	if lst, ok := obj.([]any); ok {
		return func(yield func(any) bool) {
			for _, v := range lst {
				if !yield(v) {
					return
				}
			}
		}, len(lst), nil
	}
	if _, ok := obj.([]byte); ok {
		return nil, 0, ErrorNonList{Type: reflect.TypeOf(obj)}
	}

	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, 0, ErrorNonList{Type: reflect.TypeOf(obj)}
	}
	return func(yield func(any) bool) {
		for i := range v.Len() {
			if !yield(v.Index(i).Interface()) {
				return
			}
		}
	}, v.Len(), nil
}

// List materializes the passed slice or array into a []any.
func List(obj any) ([]any, bool) {
	if lst, ok := obj.([]any); ok {
		return lst, true
	}
	seq, l, err := Seq(obj)
	if err != nil {
		return nil, false
	}
	res := make([]any, 0, l)
	for v := range seq {
		res = append(res, v)
	}
	return res, true
}

// Field looks up a single key on a map or struct. The second return is false
// when the key is unset or the value is not an object.
func Field(obj any, key string) (any, bool) {
	if m, ok := obj.(map[string]any); ok {
		v, ok := m[key]
		return v, ok
	}
	seq, _, err := Seq2(obj)
	if err != nil {
		return nil, false
	}
	for k, v := range seq {
		if k == key {
			return v, true
		}
	}
	return nil, false
}

// AsInteger converts any integer-shaped value into an int. Floats convert
// only when they carry no fractional part.
func AsInteger(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return asIntegerFloat(float64(n))
	case float64:
		return asIntegerFloat(n)
	default:
		return 0, false
	}
}

func asIntegerFloat(f float64) (int, bool) {
	if math.Trunc(f) != f || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}

// AsFloat converts any numeric value into a float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Contains reports whether the list contains a value equal to v under the
// given equality function.
func Contains(list []any, v any, eq func(a, b any) (bool, error)) (bool, error) {
	for _, item := range list {
		ok, err := eq(item, v)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}
