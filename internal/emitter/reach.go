package emitter

import "github.com/mark3labs/swagger2client/internal/ir"

// Reaches reports whether the declaration called name can be reached from t,
// following named types into their declarations. skip prunes edges the
// target already breaks, such as pointers or lists; f is the enclosing
// object field when t is a field type and nil otherwise.
func Reaches(m *ir.Model, t *ir.Type, name string, skip func(t *ir.Type, f *ir.Field) bool) bool {
	if name == "" {
		return false
	}
	seen := map[*ir.Type]bool{}
	var walk func(t *ir.Type, f *ir.Field) bool
	walk = func(t *ir.Type, f *ir.Field) bool {
		if t == nil || (skip != nil && skip(t, f)) {
			return false
		}
		if t.Named() && t.Name == name {
			return true
		}
		if seen[t] {
			return false
		}
		seen[t] = true

		switch k := t.Kind.(type) {
		case ir.Recursive:
			if k.Name == name {
				return true
			}
			d, ok := Lookup(m, k.Name)
			return ok && walk(d, nil)
		case ir.Ref:
			if k.Name == name {
				return true
			}
			if k.Target != nil {
				return walk(k.Target, nil)
			}
			d, ok := Lookup(m, k.Name)
			return ok && walk(d, nil)
		case ir.Option:
			return walk(k.Inner, nil)
		case ir.Array:
			return walk(k.Elem, nil)
		case ir.Tuple:
			for _, e := range k.Elems {
				if walk(e, nil) {
					return true
				}
			}
		case ir.Object:
			for i := range k.Fields {
				if walk(k.Fields[i].Type, &k.Fields[i]) {
					return true
				}
			}
		case ir.Union:
			for _, a := range k.Alts {
				if walk(a, nil) {
					return true
				}
			}
		case ir.Combo:
			for _, p := range k.Parts {
				if walk(p, nil) {
					return true
				}
			}
		}
		return false
	}
	return walk(t, nil)
}
