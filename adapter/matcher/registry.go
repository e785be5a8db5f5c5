package matcher

import (
	"strings"
	"sync"

	"github.com/siftkit/sift/domain"
)

// Registry holds custom operators looked up during compilation when a dollar
// key is not built in. Registration is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]domain.OperatorFunc
}

// NewRegistry returns an empty operator registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]domain.OperatorFunc)}
}

// Register adds a custom operator under the given name. Names must start
// with '$' and must not shadow a built-in operator.
func (r *Registry) Register(name string, fn domain.OperatorFunc) error {
	if !strings.HasPrefix(name, "$") {
		return domain.ErrOperatorName{Name: name, Reason: "must start with '$'"}
	}
	if _, ok := builtinOperators[name]; ok {
		return domain.ErrOperatorName{Name: name, Reason: "collides with a built-in operator"}
	}
	if fn == nil {
		return domain.ErrOperatorName{Name: name, Reason: "nil evaluator"}
	}
	r.mu.Lock()
	r.ops[name] = fn
	r.mu.Unlock()
	return nil
}

// Unregister removes a custom operator.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.ops, name)
	r.mu.Unlock()
}

// Lookup returns the custom operator registered under the given name.
func (r *Registry) Lookup(name string) (domain.OperatorFunc, bool) {
	r.mu.RLock()
	fn, ok := r.ops[name]
	r.mu.RUnlock()
	return fn, ok
}

// Clear removes every registered custom operator.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.ops = make(map[string]domain.OperatorFunc)
	r.mu.Unlock()
}

// builtinOperators lists the dollar keys handled natively. Custom operators
// may not shadow them.
var builtinOperators = map[string]struct{}{
	"$and": {}, "$or": {}, "$not": {}, "$where": {},
	"$eq": {}, "$ne": {}, "$gt": {}, "$gte": {}, "$lt": {}, "$lte": {},
	"$in": {}, "$nin": {}, "$contains": {}, "$size": {}, "$exists": {},
	"$startsWith": {}, "$endsWith": {}, "$regex": {}, "$match": {},
	"$near": {}, "$geoBox": {}, "$geoPolygon": {},
	"$recent": {}, "$upcoming": {}, "$dayOfWeek": {}, "$timeOfDay": {},
	"$age": {}, "$isWeekday": {}, "$isWeekend": {}, "$isBefore": {}, "$isAfter": {},
}
