// Package matcher contains the expression compiler and matcher at the core
// of the engine: it classifies a query expression (literal, wildcard string,
// operator bag, nested field map, logical combinator, predicate function),
// compiles it once into a typed tree, and evaluates records against the
// compiled form.
//
// Compilation separates the two error classes: configuration mistakes
// (unknown operators, mixed bags, bad logical shapes) surface as errors,
// while malformed operand values (bad coordinates, bad dates, unparseable
// regex sources) compile into conditions that never match. Per-record
// evaluation is total and never errors.
package matcher

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/siftkit/sift/adapter/cache"
	"github.com/siftkit/sift/adapter/chrono"
	"github.com/siftkit/sift/adapter/comparer"
	"github.com/siftkit/sift/adapter/fieldnavigator"
	"github.com/siftkit/sift/adapter/timegetter"
	"github.com/siftkit/sift/domain"
	"github.com/siftkit/sift/logger"
	"github.com/siftkit/sift/pkg/structure"
)

// Matcher implements [domain.Matcher].
type Matcher struct {
	comparer domain.Comparer
	nav      domain.FieldNavigator
	clock    domain.TimeGetter
	registry *Registry
	cache    *cache.Cache
	log      logger.Logger
}

// NewMatcher returns a new implementation of [domain.Matcher].
func NewMatcher(options ...Option) *Matcher {
	m := &Matcher{
		comparer: comparer.NewComparer(),
		nav:      fieldnavigator.NewFieldNavigator(),
		clock:    timegetter.NewTimeGetter(),
		registry: NewRegistry(),
		log:      logger.Discard(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Compile implements [domain.Matcher].
func (m *Matcher) Compile(query any, opts *domain.FilterOptions) (domain.CompiledQuery, error) {
	if opts == nil {
		var err error
		if opts, err = domain.NewFilterOptions(); err != nil {
			return nil, err
		}
	} else if err := opts.Validate(); err != nil {
		return nil, err
	}

	q, err := m.makeQuery(query, opts)
	if err != nil {
		return nil, err
	}
	return &compiled{m: m, opts: opts, q: q}, nil
}

func (m *Matcher) makeQuery(query any, opts *domain.FilterOptions) (qry Query, err error) {
	if query == nil {
		return qry, nil
	}

	if p, ok := asPredicate(query); ok {
		qry.Lo = []LogicOp{{Type: Where, Where: p}}
		return qry, nil
	}

	if re, ok := query.(*regexp.Regexp); ok {
		qry.Lo = []LogicOp{{Type: And, Rules: []FieldRule{
			{Conds: []Cond{{Op: Regex, Name: "$regex", Val: re}}},
		}}}
		return qry, nil
	}

	mapping, l, err := asObject(query)
	if err != nil {
		// primitive: a wildcard string or a literal, evaluated
		// against the whole record
		qry.Lo = []LogicOp{{Type: And, Rules: []FieldRule{
			m.makeWholeRule(query, opts),
		}}}
		return qry, nil
	}
	if l == 0 {
		return qry, nil
	}

	qry.Lo, err = m.makeLevel(mapping, opts)
	return qry, err
}

// makeLevel compiles one expression level: logical combinators, a
// whole-record operator bag, or field map entries, all combined with
// implicit AND. Logical keys may mix with sibling fields; non-logical
// dollar keys may not.
func (m *Matcher) makeLevel(mapping map[string]any, opts *domain.FilterOptions) ([]LogicOp, error) {
	var out []LogicOp
	var rules []FieldRule
	var bag []Cond
	var plain int

	for key, value := range mapping {
		switch {
		case key == "$and" || key == "$or":
			lo, err := m.makeLogicList(key, value, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, lo)
		case key == "$not":
			sub, err := m.makeQuery(value, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, LogicOp{Type: Not, Sub: []LogicOp{
				{Type: And, Sub: sub.Lo},
			}})
		case key == "$where":
			p, ok := asPredicate(value)
			if !ok {
				return nil, domain.ErrCompArgType{
					Comp: "$where", Want: "predicate function", Actual: value,
				}
			}
			out = append(out, LogicOp{Type: Where, Where: p})
		case strings.HasPrefix(key, "$"):
			cond, err := m.makeCond(key, value, opts)
			if err != nil {
				return nil, err
			}
			bag = append(bag, cond)
		default:
			plain++
			frs, err := m.makeFieldRules(nil, key, value, opts, 0)
			if err != nil {
				return nil, err
			}
			rules = append(rules, frs...)
		}
	}

	if len(bag) > 0 {
		if plain > 0 {
			return nil, domain.ErrMixedOperators
		}
		rules = append(rules, FieldRule{Conds: bag})
	}
	if len(rules) > 0 {
		out = append(out, LogicOp{Type: And, Rules: rules})
	}
	return out, nil
}

func (m *Matcher) makeLogicList(name string, v any, opts *domain.FilterOptions) (LogicOp, error) {
	typ := And
	if name == "$or" {
		typ = Or
	}
	items, l, err := structure.Seq(v)
	if err != nil {
		e := domain.ErrCompArgType{Comp: name, Want: "list", Actual: v}
		return LogicOp{}, fmt.Errorf("%w: %w", e, err)
	}
	lo := LogicOp{Type: typ, Sub: make([]LogicOp, 0, l)}
	for item := range items {
		sub, err := m.makeQuery(item, opts)
		if err != nil {
			return lo, err
		}
		lo.Sub = append(lo.Sub, LogicOp{Type: And, Sub: sub.Lo})
	}
	return lo, nil
}

func (m *Matcher) makeWholeRule(v any, opts *domain.FilterOptions) FieldRule {
	if s, ok := v.(string); ok {
		if cond, ok := m.makeWildcardCond(s, opts); ok {
			return FieldRule{Conds: []Cond{cond}}
		}
	}
	return FieldRule{Conds: []Cond{{Op: Eq, Name: "$eq", Val: v}}}
}

func (m *Matcher) makeWildcardCond(s string, opts *domain.FilterOptions) (Cond, bool) {
	pattern, negate := strings.CutPrefix(s, "!")
	if !HasWildcards(pattern) {
		return Cond{}, false
	}
	re, err := m.compileRegex(wildcardSource(pattern, opts.CaseSensitive), opts)
	if err != nil {
		return Cond{Op: Never, Name: "wildcard"}, true
	}
	return Cond{
		Op:   Wildcard,
		Name: "wildcard",
		Val:  wildcardPattern{re: re, negate: negate},
	}, true
}

// makeFieldRules compiles one field map entry. Dotted keys and nested plain
// objects are equivalent: both extend the address. Nested object recursion
// stops once maxDepth levels are consumed, after which the remainder
// compares as a literal.
func (m *Matcher) makeFieldRules(parent []string, field string, value any, opts *domain.FilterOptions, depth int) ([]FieldRule, error) {
	addr := append(slices.Clone(parent), strings.Split(field, ".")...)
	name := strings.Join(addr, ".")
	one := func(c Cond) []FieldRule {
		return []FieldRule{{Field: name, Addr: addr, Conds: []Cond{c}}}
	}

	switch t := value.(type) {
	case *regexp.Regexp:
		return one(Cond{Op: Regex, Name: "$regex", Val: t}), nil
	case time.Time:
		return one(Cond{Op: Eq, Name: "$eq", Val: t}), nil
	case string:
		if cond, ok := m.makeWildcardCond(t, opts); ok {
			return one(cond), nil
		}
		return one(Cond{Op: Eq, Name: "$eq", Val: t}), nil
	}

	if p, ok := asPredicate(value); ok {
		// field-level predicates receive the resolved value
		return one(Cond{Op: Custom, Name: "$where", Custom: valuePredicate(p)}), nil
	}

	// array shorthand runs before generic object recursion
	if list, ok := structure.List(value); ok {
		return one(Cond{Op: In, Name: "$in", Val: slices.Clone(list)}), nil
	}

	mapping, l, err := asObject(value)
	if err != nil {
		return one(Cond{Op: Eq, Name: "$eq", Val: value}), nil
	}
	if l == 0 {
		return []FieldRule{{Field: name, Addr: addr}}, nil
	}

	dollar := 0
	for key := range mapping {
		if strings.HasPrefix(key, "$") {
			dollar++
		}
	}
	switch {
	case dollar == l:
		conds, err := m.makeConds(mapping, opts)
		if err != nil {
			return nil, err
		}
		return []FieldRule{{Field: name, Addr: addr, Conds: conds}}, nil
	case dollar > 0:
		return nil, domain.ErrMixedOperators
	}

	if depth+1 >= opts.MaxDepth {
		// depth budget consumed: the rest compares as a literal
		return one(Cond{Op: Eq, Name: "$eq", Val: value}), nil
	}
	var rules []FieldRule
	for key, sub := range mapping {
		frs, err := m.makeFieldRules(addr, key, sub, opts, depth+1)
		if err != nil {
			return nil, err
		}
		rules = append(rules, frs...)
	}
	return rules, nil
}

func (m *Matcher) makeConds(mapping map[string]any, opts *domain.FilterOptions) ([]Cond, error) {
	conds := make([]Cond, 0, len(mapping))
	for key, value := range mapping {
		cond, err := m.makeCond(key, value, opts)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

// condsForValue compiles an expression found in operator position (the
// operand of a value-level $not/$and/$or) into conditions on the same
// resolved value.
func (m *Matcher) condsForValue(v any, opts *domain.FilterOptions) ([]Cond, error) {
	switch t := v.(type) {
	case *regexp.Regexp:
		return []Cond{{Op: Regex, Name: "$regex", Val: t}}, nil
	case time.Time:
		return []Cond{{Op: Eq, Name: "$eq", Val: t}}, nil
	case string:
		if cond, ok := m.makeWildcardCond(t, opts); ok {
			return []Cond{cond}, nil
		}
		return []Cond{{Op: Eq, Name: "$eq", Val: t}}, nil
	}

	if list, ok := structure.List(v); ok {
		return []Cond{{Op: In, Name: "$in", Val: slices.Clone(list)}}, nil
	}

	mapping, l, err := asObject(v)
	if err != nil {
		return []Cond{{Op: Eq, Name: "$eq", Val: v}}, nil
	}
	if l == 0 {
		return nil, nil
	}
	dollar := 0
	for key := range mapping {
		if strings.HasPrefix(key, "$") {
			dollar++
		}
	}
	switch {
	case dollar == l:
		return m.makeConds(mapping, opts)
	case dollar > 0:
		return nil, domain.ErrMixedOperators
	default:
		return []Cond{{Op: Eq, Name: "$eq", Val: v}}, nil
	}
}

func (m *Matcher) makeCond(name string, v any, opts *domain.FilterOptions) (Cond, error) {
	never := Cond{Op: Never, Name: name}
	switch name {
	case "$eq":
		return Cond{Op: Eq, Name: name, Val: v}, nil
	case "$ne":
		return Cond{Op: Ne, Name: name, Val: v}, nil
	case "$gt":
		return Cond{Op: Gt, Name: name, Val: v}, nil
	case "$gte":
		return Cond{Op: Gte, Name: name, Val: v}, nil
	case "$lt":
		return Cond{Op: Lt, Name: name, Val: v}, nil
	case "$lte":
		return Cond{Op: Lte, Name: name, Val: v}, nil
	case "$in", "$nin":
		list, ok := structure.List(v)
		if !ok {
			return never, nil
		}
		op := In
		if name == "$nin" {
			op = Nin
		}
		return Cond{Op: op, Name: name, Val: slices.Clone(list)}, nil
	case "$contains":
		return Cond{Op: Contains, Name: name, Val: v}, nil
	case "$size":
		size, ok := structure.AsInteger(v)
		if !ok {
			return never, nil
		}
		return Cond{Op: Size, Name: name, Val: size}, nil
	case "$exists":
		b, err := cast.ToBoolE(v)
		if err != nil {
			// any non-boolean operand counts as "expects present"
			b = true
		}
		return Cond{Op: Exists, Name: name, Val: b}, nil
	case "$startsWith", "$endsWith":
		s, ok := v.(string)
		if !ok {
			return never, nil
		}
		op := StartsWith
		if name == "$endsWith" {
			op = EndsWith
		}
		return Cond{Op: op, Name: name, Val: s}, nil
	case "$regex", "$match":
		return m.makeRegexCond(name, v, opts), nil
	case "$near":
		return m.makeNearCond(name, v), nil
	case "$geoBox":
		return m.makeGeoBoxCond(name, v), nil
	case "$geoPolygon":
		return m.makeGeoPolygonCond(name, v), nil
	case "$recent", "$upcoming":
		var w chrono.Window
		if err := decodeOperand(v, &w); err != nil || !w.Valid() {
			return never, nil
		}
		op := Recent
		if name == "$upcoming" {
			op = Upcoming
		}
		return Cond{Op: op, Name: name, Val: w.Duration()}, nil
	case "$dayOfWeek":
		var days chrono.DaysOfWeek
		if err := decodeOperand(v, &days); err != nil || !days.Valid() {
			return never, nil
		}
		return Cond{Op: DayOfWeek, Name: name, Val: days}, nil
	case "$timeOfDay":
		var tod chrono.TimeOfDay
		if err := decodeOperand(v, &tod); err != nil || !tod.Valid() {
			return never, nil
		}
		return Cond{Op: TimeOfDay, Name: name, Val: tod}, nil
	case "$age":
		var ar chrono.AgeRange
		if err := decodeOperand(v, &ar); err != nil || !ar.Valid() {
			return never, nil
		}
		return Cond{Op: Age, Name: name, Val: ar}, nil
	case "$isWeekday", "$isWeekend":
		b, err := cast.ToBoolE(v)
		if err != nil {
			return never, nil
		}
		op := IsWeekday
		if name == "$isWeekend" {
			op = IsWeekend
		}
		return Cond{Op: op, Name: name, Val: b}, nil
	case "$isBefore", "$isAfter":
		t, ok := chrono.AsTime(v)
		if !ok {
			return never, nil
		}
		op := IsBefore
		if name == "$isAfter" {
			op = IsAfter
		}
		return Cond{Op: op, Name: name, Val: t}, nil
	case "$not":
		sub, err := m.condsForValue(v, opts)
		if err != nil {
			return never, err
		}
		return Cond{Op: SubNot, Name: name, Sub: sub}, nil
	case "$and", "$or":
		items, l, err := structure.Seq(v)
		if err != nil {
			e := domain.ErrCompArgType{Comp: name, Want: "list", Actual: v}
			return never, fmt.Errorf("%w: %w", e, err)
		}
		groups := make([][]Cond, 0, l)
		for item := range items {
			group, err := m.condsForValue(item, opts)
			if err != nil {
				return never, err
			}
			groups = append(groups, group)
		}
		op := SubAnd
		if name == "$or" {
			op = SubOr
		}
		return Cond{Op: op, Name: name, Groups: groups}, nil
	case "$where":
		p, ok := asPredicate(v)
		if !ok {
			return never, domain.ErrCompArgType{
				Comp: name, Want: "predicate function", Actual: v,
			}
		}
		return Cond{Op: Custom, Name: name, Custom: valuePredicate(p)}, nil
	default:
		if fn, ok := m.registry.Lookup(name); ok {
			return Cond{Op: Custom, Name: name, Val: v, Custom: fn}, nil
		}
		return never, domain.ErrUnknownOperator{Operator: name}
	}
}

func (m *Matcher) makeRegexCond(name string, v any, opts *domain.FilterOptions) Cond {
	never := Cond{Op: Never, Name: name}
	switch t := v.(type) {
	case *regexp.Regexp:
		// a compiled regex carries its own flags, which win over the
		// case sensitivity option
		return Cond{Op: Regex, Name: name, Val: t}
	case string:
		src := t
		if !opts.CaseSensitive && !strings.HasPrefix(src, "(?i)") {
			src = "(?i)" + src
		}
		re, err := m.compileRegex(src, opts)
		if err != nil {
			return never
		}
		return Cond{Op: Regex, Name: name, Val: re}
	default:
		return never
	}
}

func (m *Matcher) compileRegex(src string, opts *domain.FilterOptions) (*regexp.Regexp, error) {
	if opts.EnableCache && m.cache != nil {
		return m.cache.Regexp(src)
	}
	return regexp.Compile(src)
}

func asObject(v any) (map[string]any, int, error) {
	seq, l, err := structure.Seq2(v)
	if err != nil {
		return nil, 0, err
	}
	mapping := make(map[string]any, l)
	for k, val := range seq {
		mapping[k] = val
	}
	return mapping, len(mapping), nil
}

func asPredicate(v any) (domain.Predicate, bool) {
	switch t := v.(type) {
	case domain.Predicate:
		return t, true
	case func(any) bool:
		return t, true
	case func(any) (bool, error):
		return func(record any) bool {
			ok, err := t(record)
			return err == nil && ok
		}, true
	default:
		return nil, false
	}
}

func valuePredicate(p domain.Predicate) domain.OperatorFunc {
	return func(value any, _ any, _ *domain.FilterOptions) (bool, error) {
		return p(value), nil
	}
}

// Option configures matcher behavior through the functional options pattern.
type Option func(*Matcher)

// WithComparer sets the comparer implementation for value comparisons during
// matching.
func WithComparer(c domain.Comparer) Option {
	return func(m *Matcher) {
		m.comparer = c
	}
}

// WithFieldNavigator sets the field navigator for resolving record fields
// during matching.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(m *Matcher) {
		m.nav = f
	}
}

// WithTimeGetter sets the time source used by datetime operators.
func WithTimeGetter(t domain.TimeGetter) Option {
	return func(m *Matcher) {
		m.clock = t
	}
}

// WithRegistry sets the custom operator registry consulted during
// compilation.
func WithRegistry(r *Registry) Option {
	return func(m *Matcher) {
		m.registry = r
	}
}

// WithCache sets the cache used for compiled regex reuse.
func WithCache(c *cache.Cache) Option {
	return func(m *Matcher) {
		m.cache = c
	}
}

// WithLogger sets the logger receiving evaluation diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(m *Matcher) {
		m.log = l
	}
}
