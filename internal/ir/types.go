// Package ir holds the normalized type and route model produced by the
// resolver and consumed by every target emitter.
//
// The model is built once per generation run and treated as immutable
// afterwards. Named types are shared: two references to the same schema
// resolve to the same *Type.
package ir

// PrimKind enumerates atomic types.
type PrimKind int

const (
	Str PrimKind = iota
	Int
	Float
	Bool
	File
	Null
)

func (p PrimKind) String() string {
	switch p {
	case Str:
		return "str"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case File:
		return "file"
	case Null:
		return "null"
	default:
		return "prim?"
	}
}

// Type is a node of the IR.
type Type struct {
	// Name is set iff the type was reached through a named reference and is
	// emitted as its own declaration.
	Name string
	// Doc carries the schema description, if any.
	Doc string
	// UserDefined marks schemas whose declaration is supplied by hand; they
	// stay resolvable but are not emitted.
	UserDefined bool
	Kind        Kind
}

// Kind is the closed set of IR shapes. Only the types in this file
// implement it.
type Kind interface {
	isKind()
}

// Prim is an atomic type.
type Prim struct{ P PrimKind }

// Option is a value that may be null or absent.
type Option struct{ Inner *Type }

// Array is a homogeneous sequence.
type Array struct{ Elem *Type }

// Tuple is a fixed-arity heterogeneous sequence.
type Tuple struct{ Elems []*Type }

// Field is one object member. Fields keep source declaration order.
type Field struct {
	Name     string
	Type     *Type
	Required bool
}

// Object is a record with ordered fields.
type Object struct{ Fields []Field }

// Union is "exactly one of".
type Union struct{ Alts []*Type }

// Combo is "all of"; object parts are merged, a single union part is
// distributed over the merge.
type Combo struct{ Parts []*Type }

// StrEnum is a closed set of string literals.
type StrEnum struct{ Values []string }

// Ref aliases another top-level declaration.
type Ref struct {
	Name   string
	Target *Type
}

// Recursive stands in for a named schema that is an ancestor of itself in
// the current resolution path.
type Recursive struct{ Name string }

// Unknown marks a type whose resolution has not finished.
type Unknown struct{}

func (Prim) isKind()      {}
func (Option) isKind()    {}
func (Array) isKind()     {}
func (Tuple) isKind()     {}
func (Object) isKind()    {}
func (Union) isKind()     {}
func (Combo) isKind()     {}
func (StrEnum) isKind()   {}
func (Ref) isKind()       {}
func (Recursive) isKind() {}
func (Unknown) isKind()   {}

// New returns an anonymous type of the given kind.
func New(k Kind) *Type { return &Type{Kind: k} }

// P is shorthand for an anonymous primitive.
func P(p PrimKind) *Type { return New(Prim{P: p}) }

// Named reports whether t is emitted as a standalone declaration.
func (t *Type) Named() bool { return t != nil && t.Name != "" }

// IsPrim reports whether t is the given primitive.
func (t *Type) IsPrim(p PrimKind) bool {
	pr, ok := t.Kind.(Prim)
	return ok && pr.P == p
}

// Deref follows Ref aliases to the declaration that carries the shape.
// Cyclic alias chains stop at the first repeat.
func (t *Type) Deref() *Type {
	seen := map[*Type]bool{}
	for t != nil && !seen[t] {
		r, ok := t.Kind.(Ref)
		if !ok || r.Target == nil {
			return t
		}
		seen[t] = true
		t = r.Target
	}
	return t
}

// SingletonEnum returns the only literal of a one-value string enum.
func (t *Type) SingletonEnum() (string, bool) {
	d := t.Deref()
	if d == nil {
		return "", false
	}
	se, ok := d.Kind.(StrEnum)
	if !ok || len(se.Values) != 1 {
		return "", false
	}
	return se.Values[0], true
}

// Model is the output of one resolution pass.
type Model struct {
	Title string
	// Types lists named declarations in source order.
	Types  []*Type
	Routes []*Route
}
