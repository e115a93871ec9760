package resolve

import "github.com/mark3labs/swagger2client/internal/ir"

// Ancestors is the set of named schemas on the current resolution path.
// Treat it as immutable: With returns a copy so sibling branches never see
// each other's additions.
type Ancestors map[string]struct{}

func (a Ancestors) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// With returns a copy of a that also contains name.
func (a Ancestors) With(name string) Ancestors {
	out := make(Ancestors, len(a)+1)
	for k := range a {
		out[k] = struct{}{}
	}
	out[name] = struct{}{}
	return out
}

// RefTable memoizes resolved named schemas. It lives for one resolution
// pass.
type RefTable struct {
	memo  map[string]*ir.Type
	order []string
}

func NewRefTable() *RefTable {
	return &RefTable{memo: map[string]*ir.Type{}}
}

func (t *RefTable) Get(name string) (*ir.Type, bool) {
	v, ok := t.memo[name]
	return v, ok
}

// Put records name. The first write wins so every later lookup observes
// the same pointer.
func (t *RefTable) Put(name string, v *ir.Type) *ir.Type {
	if prev, ok := t.memo[name]; ok {
		return prev
	}
	t.memo[name] = v
	t.order = append(t.order, name)
	return v
}

// Len returns the number of memoized schemas.
func (t *RefTable) Len() int { return len(t.order) }

// Names lists memoized schemas in the order they finished resolving.
func (t *RefTable) Names() []string {
	return append([]string(nil), t.order...)
}
