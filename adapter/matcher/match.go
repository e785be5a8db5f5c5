package matcher

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/siftkit/sift/adapter/chrono"
	"github.com/siftkit/sift/adapter/fieldnavigator"
	"github.com/siftkit/sift/adapter/geo"
	"github.com/siftkit/sift/domain"
	"github.com/siftkit/sift/pkg/structure"
)

// compiled implements [domain.CompiledQuery]. It is immutable after
// compilation and safe for concurrent use.
type compiled struct {
	m    *Matcher
	opts *domain.FilterOptions
	q    Query
}

// Match implements [domain.CompiledQuery].
func (c *compiled) Match(record any) bool {
	return c.match(record, nil)
}

// Explain implements [domain.CompiledQuery].
func (c *compiled) Explain(record any) *domain.MatchTrace {
	tr := &domain.MatchTrace{}
	tr.Matched = c.match(record, tr)
	return tr
}

func (c *compiled) match(record any, tr *domain.MatchTrace) bool {
	for _, lo := range c.q.Lo {
		if !c.matchLogicOp(record, lo, tr) {
			return false
		}
	}
	return true
}

func (c *compiled) matchLogicOp(record any, lo LogicOp, tr *domain.MatchTrace) bool {
	switch lo.Type {
	case And:
		for _, sub := range lo.Sub {
			if !c.matchLogicOp(record, sub, tr) {
				return false
			}
		}
		for _, rule := range lo.Rules {
			if !c.matchRule(record, rule, tr) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range lo.Sub {
			if c.matchLogicOp(record, sub, tr) {
				return true
			}
		}
		for _, rule := range lo.Rules {
			if c.matchRule(record, rule, tr) {
				return true
			}
		}
		return false
	case Not:
		matched := true
		for _, sub := range lo.Sub {
			if !c.matchLogicOp(record, sub, tr) {
				matched = false
				break
			}
		}
		if tr != nil {
			tr.Steps = append(tr.Steps, domain.TraceStep{
				Operator: "$not", Matched: !matched,
			})
		}
		return !matched
	case Where:
		ok := lo.Where != nil && lo.Where(record)
		if tr != nil {
			tr.Steps = append(tr.Steps, domain.TraceStep{
				Operator: "$where", Matched: ok,
			})
		}
		return ok
	}
	return false
}

func (c *compiled) matchRule(record any, rule FieldRule, tr *domain.MatchTrace) bool {
	values := []domain.Getter{fieldnavigator.Defined(record)}
	if rule.Addr != nil {
		var err error
		values, _, err = c.m.nav.GetField(record, c.opts.MaxDepth, rule.Addr...)
		if err != nil || len(values) == 0 {
			values = []domain.Getter{fieldnavigator.Undefined()}
		}
	}

	for _, cond := range rule.Conds {
		ok := c.matchCond(values, cond)
		if tr != nil {
			tr.Steps = append(tr.Steps, domain.TraceStep{
				Field: rule.Field, Operator: cond.Name, Matched: ok,
			})
		}
		if !ok {
			if c.opts.Debug {
				c.log(rule.Field, cond.Name, false)
			}
			return false
		}
		if c.opts.Debug {
			c.log(rule.Field, cond.Name, true)
		}
	}
	return true
}

func (c *compiled) log(field, op string, matched bool) {
	l := c.opts.Logger
	if l == nil {
		l = c.m.log
	}
	l.Debug("match field=%q op=%s matched=%t", field, op, matched)
}

// matchCond evaluates one condition against the resolved values. When path
// resolution expanded over a list, a condition matches if any expanded value
// matches; the negating conditions ($ne, $nin) require that no value matches
// their positive form instead.
func (c *compiled) matchCond(values []domain.Getter, cond Cond) bool {
	switch cond.Op {
	case Never:
		return false
	case Ne:
		return !c.anyValue(values, func(v any, def bool) bool {
			return c.condEq(v, def, cond.Val)
		})
	case Nin:
		return !c.anyValue(values, func(v any, def bool) bool {
			return def && c.inList(v, cond.Val)
		})
	case Exists:
		want, _ := cond.Val.(bool)
		return c.anyDefined(values) == want
	default:
		return c.anyValue(values, func(v any, def bool) bool {
			return c.evalCond(v, def, cond)
		})
	}
}

func (c *compiled) anyValue(values []domain.Getter, fn func(v any, def bool) bool) bool {
	for _, g := range values {
		if fn(g.Get()) {
			return true
		}
	}
	return false
}

func (c *compiled) anyDefined(values []domain.Getter) bool {
	for _, g := range values {
		if _, def := g.Get(); def {
			return true
		}
	}
	return false
}

// evalCond evaluates one condition against a single resolved value.
func (c *compiled) evalCond(v any, defined bool, cond Cond) bool {
	switch cond.Op {
	case Eq:
		return c.condEq(v, defined, cond.Val)
	case Gt, Gte, Lt, Lte:
		if !defined {
			return false
		}
		cmp, ok := c.order(v, cond.Val)
		if !ok {
			return false
		}
		switch cond.Op {
		case Gt:
			return cmp > 0
		case Gte:
			return cmp >= 0
		case Lt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	case In:
		return defined && c.inList(v, cond.Val)
	case Contains:
		return defined && c.contains(v, cond.Val)
	case Size:
		if !defined {
			return false
		}
		list, ok := structure.List(v)
		return ok && len(list) == cond.Val.(int)
	case StartsWith, EndsWith:
		s, ok := v.(string)
		if !defined || !ok {
			return false
		}
		affix := cond.Val.(string)
		if !c.opts.CaseSensitive {
			s, affix = strings.ToLower(s), strings.ToLower(affix)
		}
		if cond.Op == StartsWith {
			return strings.HasPrefix(s, affix)
		}
		return strings.HasSuffix(s, affix)
	case Regex:
		s, ok := v.(string)
		if !defined || !ok {
			return false
		}
		return cond.Val.(*regexp.Regexp).MatchString(s)
	case Wildcard:
		if !defined || v == nil {
			return false
		}
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		p := cond.Val.(wildcardPattern)
		return p.re.MatchString(s) != p.negate
	case Near:
		pt, ok := c.point(v, defined)
		if !ok {
			return false
		}
		nc := cond.Val.(nearCond)
		d := geo.Distance(pt, nc.Center)
		return d <= nc.Max && (nc.Min == nil || d >= *nc.Min)
	case GeoBox:
		pt, ok := c.point(v, defined)
		return ok && geo.InBoundingBox(pt, cond.Val.(geo.BoundingBox))
	case GeoPolygon:
		pt, ok := c.point(v, defined)
		return ok && geo.InPolygon(pt, cond.Val.([]geo.Point))
	case Recent, Upcoming:
		t, ok := c.time(v, defined)
		if !ok {
			return false
		}
		now := c.now()
		d := cond.Val.(time.Duration)
		if cond.Op == Recent {
			return !t.After(now) && !t.Before(now.Add(-d))
		}
		return !t.Before(now) && !t.After(now.Add(d))
	case DayOfWeek:
		t, ok := c.time(v, defined)
		return ok && cond.Val.(chrono.DaysOfWeek).Contains(t)
	case TimeOfDay:
		t, ok := c.time(v, defined)
		return ok && cond.Val.(chrono.TimeOfDay).Contains(t.Hour())
	case Age:
		t, ok := c.time(v, defined)
		if !ok {
			return false
		}
		ar := cond.Val.(chrono.AgeRange)
		unit := ar.Unit
		if unit == "" {
			unit = chrono.Years
		}
		age := chrono.Age(t, unit, c.now())
		// a birth date in the future has no age
		return age >= 0 && ar.Contains(age)
	case IsWeekday:
		t, ok := c.time(v, defined)
		return ok && chrono.IsWeekday(t) == cond.Val.(bool)
	case IsWeekend:
		t, ok := c.time(v, defined)
		return ok && chrono.IsWeekend(t) == cond.Val.(bool)
	case IsBefore:
		t, ok := c.time(v, defined)
		return ok && t.Before(cond.Val.(time.Time))
	case IsAfter:
		t, ok := c.time(v, defined)
		return ok && t.After(cond.Val.(time.Time))
	case SubNot:
		for _, sub := range cond.Sub {
			if !c.evalGroupCond(v, defined, sub) {
				return true
			}
		}
		return false
	case SubAnd:
		for _, group := range cond.Groups {
			if !c.evalGroup(v, defined, group) {
				return false
			}
		}
		return true
	case SubOr:
		for _, group := range cond.Groups {
			if c.evalGroup(v, defined, group) {
				return true
			}
		}
		return false
	case Custom:
		if cond.Custom == nil {
			return false
		}
		val := v
		if !defined {
			val = nil
		}
		ok, err := cond.Custom(val, cond.Val, c.opts)
		if err != nil {
			c.m.log.Debug("operator %s: %v", cond.Name, err)
			return false
		}
		return ok
	}
	return false
}

func (c *compiled) evalGroup(v any, defined bool, group []Cond) bool {
	for _, sub := range group {
		if !c.evalGroupCond(v, defined, sub) {
			return false
		}
	}
	return true
}

// evalGroupCond evaluates a nested condition (inside a value-level $not, $and
// or $or) against the same single value, keeping the negating forms.
func (c *compiled) evalGroupCond(v any, defined bool, cond Cond) bool {
	switch cond.Op {
	case Ne:
		return !c.condEq(v, defined, cond.Val)
	case Nin:
		return !(defined && c.inList(v, cond.Val))
	case Exists:
		want, _ := cond.Val.(bool)
		return defined == want
	default:
		return c.evalCond(v, defined, cond)
	}
}

// condEq implements equality with the null rule: a nil operand matches both
// explicit nulls and absent values.
func (c *compiled) condEq(v any, defined bool, operand any) bool {
	if operand == nil {
		return !defined || v == nil
	}
	if !defined {
		return false
	}
	return c.equal(v, operand)
}

func (c *compiled) equal(a, b any) bool {
	if c.opts.Comparator != nil {
		return c.opts.Comparator(a, b)
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			if c.opts.CaseSensitive {
				return as == bs
			}
			return strings.EqualFold(as, bs)
		}
	}
	cmp, err := c.m.comparer.Compare(a, b)
	return err == nil && cmp == 0
}

func (c *compiled) inList(v any, operand any) bool {
	list, ok := operand.([]any)
	if !ok {
		return false
	}
	ok, _ = structure.Contains(list, v, c.elemEqual)
	return ok
}

func (c *compiled) contains(v any, operand any) bool {
	if s, ok := v.(string); ok {
		sub, ok := operand.(string)
		if !ok {
			return false
		}
		if !c.opts.CaseSensitive {
			return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
		}
		return strings.Contains(s, sub)
	}
	if list, ok := structure.List(v); ok {
		ok, _ := structure.Contains(list, operand, func(item, want any) (bool, error) {
			return c.equal(item, want), nil
		})
		return ok
	}
	return false
}

// elemEqual compares an operand list element against the resolved value. An
// explicit null element matches only a null value.
func (c *compiled) elemEqual(item, v any) (bool, error) {
	if item == nil || v == nil {
		return item == nil && v == nil, nil
	}
	return c.equal(v, item), nil
}

// order compares a resolved value against an ordering operand. Ordering is
// defined for numbers and for dates; everything else does not order.
func (c *compiled) order(v, operand any) (int, bool) {
	if av, ok := structure.AsFloat(v); ok {
		bv, ok := structure.AsFloat(operand)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	}
	if at, ok := c.time(v, true); ok {
		bt, ok := chrono.AsTime(operand)
		if !ok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	return 0, false
}

func (c *compiled) point(v any, defined bool) (geo.Point, bool) {
	if !defined {
		return geo.Point{}, false
	}
	return asPoint(v)
}

func (c *compiled) time(v any, defined bool) (time.Time, bool) {
	if !defined {
		return time.Time{}, false
	}
	return chrono.AsTime(v)
}

func (c *compiled) now() time.Time {
	if c.opts.TimeGetter != nil {
		return c.opts.TimeGetter.GetTime()
	}
	return c.m.clock.GetTime()
}
