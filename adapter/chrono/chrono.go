// Package chrono contains the date and time math used by the datetime
// operators: relative time differences, fractional age calculation, weekday
// classification and validity guards for the datetime query shapes. The
// functions are pure and usable on their own.
package chrono

import (
	"time"

	"github.com/spf13/cast"
)

// Average day counts used for fractional age calculation.
const (
	daysPerYear  = 365.25
	daysPerMonth = 30.44
	msPerDay     = 24 * 60 * 60 * 1000
)

// AgeUnit selects the unit for [Age].
type AgeUnit string

// Supported age units.
const (
	Years  AgeUnit = "years"
	Months AgeUnit = "months"
	Days   AgeUnit = "days"
)

// Valid reports whether t is a usable date value. The zero time counts as
// invalid, matching the "finite underlying timestamp" rule.
func Valid(t time.Time) bool {
	return !t.IsZero()
}

// AsTime loosely coerces a record value into a time. Strings parse through
// the usual layouts, integers count as unix seconds. The second return is
// false for values that do not denote a valid date.
func AsTime(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, Valid(t)
	}
	if v == nil {
		return time.Time{}, false
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}, false
	}
	return t, Valid(t)
}

// SinceMs returns now minus t in milliseconds. Negative means t is in the
// future.
func SinceMs(t, now time.Time) float64 {
	return float64(now.Sub(t)) / float64(time.Millisecond)
}

// Age returns the age of a birth date at the given time, in the given unit.
// Years use a 365.25-day average, months a 30.44-day average, days are exact
// millisecond division. Fractional results are intentional.
func Age(birth time.Time, unit AgeUnit, now time.Time) float64 {
	days := SinceMs(birth, now) / msPerDay
	switch unit {
	case Months:
		return days / daysPerMonth
	case Days:
		return days
	default:
		return days / daysPerYear
	}
}

// IsWeekday reports whether t falls on Monday through Friday in its own
// location.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsWeekend reports whether t falls on Saturday or Sunday in its own
// location.
func IsWeekend(t time.Time) bool {
	return !IsWeekday(t)
}

// Window is the operand shape of $recent and $upcoming: a relative time
// window specified in exactly one of days, hours or minutes.
type Window struct {
	Days    float64 `mapstructure:"days" sift:"days"`
	Hours   float64 `mapstructure:"hours" sift:"hours"`
	Minutes float64 `mapstructure:"minutes" sift:"minutes"`
}

// Valid reports whether exactly one of days/hours/minutes is specified and
// positive.
func (w Window) Valid() bool {
	set := 0
	for _, v := range [...]float64{w.Days, w.Hours, w.Minutes} {
		if v != 0 {
			if v < 0 {
				return false
			}
			set++
		}
	}
	return set == 1
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	switch {
	case w.Days != 0:
		return time.Duration(w.Days * float64(24*time.Hour))
	case w.Hours != 0:
		return time.Duration(w.Hours * float64(time.Hour))
	default:
		return time.Duration(w.Minutes * float64(time.Minute))
	}
}

// TimeOfDay is the operand shape of $timeOfDay: an inclusive hour range.
// A range whose start is greater than its end wraps past midnight.
type TimeOfDay struct {
	Start int `mapstructure:"start" sift:"start"`
	End   int `mapstructure:"end" sift:"end"`
}

// Valid reports whether both bounds lie in [0, 23].
func (t TimeOfDay) Valid() bool {
	return t.Start >= 0 && t.Start <= 23 && t.End >= 0 && t.End <= 23
}

// Contains reports whether the given hour falls within the range.
func (t TimeOfDay) Contains(hour int) bool {
	if t.Start <= t.End {
		return hour >= t.Start && hour <= t.End
	}
	return hour >= t.Start || hour <= t.End
}

// DaysOfWeek is the operand shape of $dayOfWeek: the accepted weekday
// numbers, 0 for Sunday through 6 for Saturday.
type DaysOfWeek []int

// Valid reports whether the list is non-empty with all values in [0, 6].
func (d DaysOfWeek) Valid() bool {
	if len(d) == 0 {
		return false
	}
	for _, v := range d {
		if v < 0 || v > 6 {
			return false
		}
	}
	return true
}

// Contains reports whether the weekday of t is in the list.
func (d DaysOfWeek) Contains(t time.Time) bool {
	wd := int(t.Weekday())
	for _, v := range d {
		if v == wd {
			return true
		}
	}
	return false
}

// AgeRange is the operand shape of $age: an inclusive min/max age with an
// optional unit (years by default).
type AgeRange struct {
	Min  *float64 `mapstructure:"min" sift:"min"`
	Max  *float64 `mapstructure:"max" sift:"max"`
	Unit AgeUnit  `mapstructure:"unit" sift:"unit"`
}

// Valid reports whether at least one bound is present and both are
// non-negative.
func (a AgeRange) Valid() bool {
	if a.Min == nil && a.Max == nil {
		return false
	}
	if a.Min != nil && *a.Min < 0 {
		return false
	}
	if a.Max != nil && *a.Max < 0 {
		return false
	}
	switch a.Unit {
	case "", Years, Months, Days:
		return true
	default:
		return false
	}
}

// Contains reports whether the given age satisfies the bounds.
func (a AgeRange) Contains(age float64) bool {
	if a.Min != nil && age < *a.Min {
		return false
	}
	if a.Max != nil && age > *a.Max {
		return false
	}
	return true
}
