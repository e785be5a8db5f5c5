// Package hasher contains the structural [domain.Hasher] used for cache
// keys. Expressions and options hash by canonical JSON shape, so two
// structurally identical queries share one key no matter the map iteration
// order or the concrete map/struct types involved. Function values are
// unhashable on purpose: predicates have no stable structural identity, and
// queries carrying them bypass the caches.
package hasher

import (
	"bytes"
	"encoding/json"
	"regexp"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-reflect"

	"github.com/siftkit/sift/domain"
	"github.com/siftkit/sift/pkg/structure"
)

// Hasher implements [domain.Hasher].
type Hasher struct{}

// NewHasher returns a new implementation of [domain.Hasher].
func NewHasher() domain.Hasher {
	return &Hasher{}
}

// Hash implements domain.Hasher.
func (h *Hasher) Hash(value any) (uint64, error) {
	canonical, err := h.canonicalize(value)
	if err != nil {
		return 0, err
	}

	b, err := json.Marshal(canonical)
	if err != nil {
		return 0, err
	}

	return xxhash.Sum64(b), nil
}

func (h *Hasher) canonicalize(a any) (any, error) {
	if h.straightforward(a) {
		return a, nil
	}

	// compiled regexes hash by source text, not struct shape
	if r, ok := a.(*regexp.Regexp); ok {
		return "regexp:" + r.String(), nil
	}

	if f, ok, err := h.fields(a); err != nil || ok {
		return f, err
	}

	if i, ok, err := h.items(a); err != nil || ok {
		return i, err
	}

	v := reflect.ValueOf(a)
	if v.IsValid() {
		switch v.Kind() {
		case reflect.Func:
			return nil, domain.ErrUnhashable
		case reflect.Ptr, reflect.Chan:
			if v.IsNil() {
				return nil, nil
			}
			return v.Pointer(), nil
		}
	}
	return a, nil
}

func (h *Hasher) fields(a any) (any, bool, error) {
	seq, l, err := structure.Seq2(a)
	if err != nil {
		return nil, false, nil
	}
	pairs := make(object, 0, l)
	for k, v := range seq {
		cv, err := h.canonicalize(v)
		if err != nil {
			return nil, true, err
		}
		pairs = append(pairs, keyValuePair{key: k, val: cv})
	}
	return pairs, true, nil
}

func (h *Hasher) items(a any) (any, bool, error) {
	seq, l, err := structure.Seq(a)
	if err != nil {
		return nil, false, nil
	}
	res := make([]any, 0, l)
	for v := range seq {
		cv, err := h.canonicalize(v)
		if err != nil {
			return nil, true, err
		}
		res = append(res, cv)
	}
	return res, true, nil
}

func (h *Hasher) straightforward(a any) bool {
	if a == nil {
		return true
	}
	switch a.(type) {
	case
		// simple values
		bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		time.Time:
		return true
	default:
		return false
	}
}

type keyValuePair struct {
	key string
	val any
}

type object []keyValuePair

// MarshalJSON writes the object with sorted keys so the hash is independent
// of iteration order.
func (o object) MarshalJSON() (r []byte, err error) {
	buf := bytes.NewBuffer(append(make([]byte, 0, 1024), '{'))

	keys := make([]string, len(o))
	kvals := make(map[string]any, len(o))

	for n, item := range o {
		keys[n] = item.key
		kvals[item.key] = item.val
	}
	slices.Sort(keys)

	for n, key := range keys {
		b, _ := json.Marshal(key)
		_, _ = buf.Write(b)
		_, _ = buf.WriteRune(':')
		v, err := json.Marshal(kvals[key])
		if err != nil {
			return nil, err
		}
		_, _ = buf.Write(v)

		if n < len(keys)-1 {
			_, _ = buf.WriteRune(',')
		}
	}
	_, _ = buf.WriteRune('}')

	return buf.Bytes(), nil
}
