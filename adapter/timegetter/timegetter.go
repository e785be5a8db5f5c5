// Package timegetter contains the default [domain.TimeGetter] implementation.
package timegetter

import (
	"time"

	"github.com/siftkit/sift/domain"
)

// TimeGetter implements [domain.TimeGetter].
type TimeGetter struct{}

// NewTimeGetter returns a new implementation of domain.TimeGetter.
func NewTimeGetter() domain.TimeGetter {
	return &TimeGetter{}
}

// GetTime implements [domain.TimeGetter].
func (t *TimeGetter) GetTime() time.Time {
	return time.Now()
}

// Fixed returns a [domain.TimeGetter] that always reports the given time.
// Useful for deterministic datetime operator evaluation in tests.
func Fixed(t time.Time) domain.TimeGetter {
	return fixed{t: t}
}

type fixed struct{ t time.Time }

// GetTime implements [domain.TimeGetter].
func (f fixed) GetTime() time.Time {
	return f.t
}
