// Package predicate compiles string expressions into [domain.Predicate]
// values using the expr expression language, so callers can write conditions
// such as "age >= 18 && city == 'Berlin'" instead of composing operator maps.
package predicate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/siftkit/sift/adapter/matcher"
	"github.com/siftkit/sift/domain"
	"github.com/siftkit/sift/pkg/structure"
)

// Compile compiles an expression source into a reusable predicate. Record
// fields are exposed as variables; undefined variables evaluate to nil
// instead of failing. The extra like_match(text, pattern) function applies
// SQL-LIKE wildcard matching. A runtime evaluation error counts as no-match.
func Compile(source string) (domain.Predicate, error) {
	program, err := expr.Compile(source,
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
		expr.Function("like_match", likeMatch,
			new(func(string, string) bool)),
	)
	if err != nil {
		return nil, err
	}
	return func(record any) bool {
		out, err := vm.Run(program, env(record))
		if err != nil {
			return false
		}
		b, ok := out.(bool)
		return ok && b
	}, nil
}

func likeMatch(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("like_match: want 2 arguments, got %d", len(params))
	}
	text, ok := params[0].(string)
	if !ok {
		return false, nil
	}
	pattern, ok := params[1].(string)
	if !ok {
		return false, nil
	}
	return matcher.MatchWildcard(text, pattern, false), nil
}

// env converts a record into an evaluation environment. Structs and maps
// expose their fields as variables; anything else is reachable as "value".
func env(record any) map[string]any {
	if m, ok := record.(map[string]any); ok {
		return m
	}
	seq, l, err := structure.Seq2(record)
	if err != nil {
		return map[string]any{"value": record}
	}
	m := make(map[string]any, l)
	for k, v := range seq {
		m[k] = v
	}
	return m
}
