package matcher

import (
	"regexp"

	"github.com/siftkit/sift/domain"
)

// Numeric representations of supported logic operators.
const (
	And uint8 = iota
	Or
	Not
	Where
)

// Numeric representations of supported conditions.
const (
	// Never is the compiled form of a malformed operand: it matches
	// nothing, matching the fail-closed policy for messy query values.
	Never uint8 = iota
	Eq
	Ne
	Gt
	Gte
	Lt
	Lte
	In
	Nin
	Exists
	Size
	Contains
	StartsWith
	EndsWith
	Regex
	Wildcard
	Near
	GeoBox
	GeoPolygon
	Recent
	Upcoming
	DayOfWeek
	TimeOfDay
	Age
	IsWeekday
	IsWeekend
	IsBefore
	IsAfter
	SubAnd
	SubOr
	SubNot
	Custom
)

// Query stores a compiled query in a typed and easy to iterate struct. The
// top-level list combines with implicit AND.
type Query struct {
	Lo []LogicOp
}

// LogicOp stores a logic operator (and, or, not, where) and its children,
// which can be either a set of field rules or a nested set of LogicOps.
type LogicOp struct {
	Type  uint8
	Rules []FieldRule
	Sub   []LogicOp
	Where domain.Predicate
}

// FieldRule stores a set of conditions used to match a given record field.
// A nil Addr targets the whole record instead of a field.
type FieldRule struct {
	Field string
	Addr  []string
	Conds []Cond
}

// Cond stores a single condition on a resolved value (such as $gt, $near).
// Val holds the operand, pre-decoded into its typed form at compile time.
type Cond struct {
	Op     uint8
	Name   string
	Val    any
	Custom domain.OperatorFunc
	Sub    []Cond
	Groups [][]Cond
}

// wildcardPattern is the compiled form of a SQL-LIKE-style string pattern.
type wildcardPattern struct {
	re     *regexp.Regexp
	negate bool
}
