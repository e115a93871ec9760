package emitter

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/naming"
)

// ObjectFields returns the fields of t when t is an object, a combo whose
// parts all flatten to objects, or an alias of either. For combos, a later
// part's field replaces an earlier one of the same name in place.
func ObjectFields(t *ir.Type) ([]ir.Field, bool) {
	return objectFields(t, map[*ir.Type]bool{})
}

func objectFields(t *ir.Type, seen map[*ir.Type]bool) ([]ir.Field, bool) {
	t = t.Deref()
	if t == nil || seen[t] {
		return nil, false
	}
	switch k := t.Kind.(type) {
	case ir.Object:
		return k.Fields, true
	case ir.Combo:
		seen[t] = true
		defer delete(seen, t)
		var merged []ir.Field
		for _, p := range k.Parts {
			fs, ok := objectFields(p, seen)
			if !ok {
				return nil, false
			}
			merged = mergeFields(merged, fs)
		}
		return merged, true
	}
	return nil, false
}

func mergeFields(base, extra []ir.Field) []ir.Field {
	out := append([]ir.Field(nil), base...)
	for _, f := range extra {
		replaced := false
		for i := range out {
			if out[i].Name == f.Name {
				out[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return out
}

// ComboShape is the analysis of an intersection.
type ComboShape struct {
	// Common holds the merged fields of every non-union part.
	Common []ir.Field
	// Union is the single union part, nil when there is none.
	Union *ir.Type
	// Alts lists Common merged into each union alternative. It is nil when
	// there is no union or an alternative is not an object.
	Alts [][]ir.Field
	// Mergeable is false when a non-union part does not flatten to fields.
	Mergeable bool
}

// Shape classifies a combo. Intersections over more than one union are
// rejected.
func Shape(c ir.Combo) (ComboShape, error) {
	var (
		out   = ComboShape{Mergeable: true}
		rest  []*ir.Type
		union ir.Union
	)
	for _, p := range c.Parts {
		if u, ok := p.Deref().Kind.(ir.Union); ok {
			if out.Union != nil {
				return ComboShape{}, ir.Errorf(ir.UnsupportedSchema, "allOf over more than one oneOf")
			}
			out.Union, union = p, u
			continue
		}
		rest = append(rest, p)
	}
	for _, p := range rest {
		fs, ok := ObjectFields(p)
		if !ok {
			out.Mergeable = false
			out.Common = nil
			break
		}
		out.Common = mergeFields(out.Common, fs)
	}
	if out.Union != nil && out.Mergeable {
		if alts, ok := Alternatives(union); ok {
			out.Alts = make([][]ir.Field, len(alts))
			for i, a := range alts {
				out.Alts[i] = mergeFields(out.Common, a)
			}
		}
	}
	return out, nil
}

// Alternatives returns the object fields of each union alternative, or
// false when any alternative is not object-like.
func Alternatives(u ir.Union) ([][]ir.Field, bool) {
	out := make([][]ir.Field, 0, len(u.Alts))
	for _, a := range u.Alts {
		fs, ok := ObjectFields(a)
		if !ok {
			return nil, false
		}
		out = append(out, fs)
	}
	return out, true
}

// Discriminant is the field that tells union alternatives apart.
type Discriminant struct {
	Field string
	// Values holds each alternative's literal, in alternative order.
	Values []string
	// Variants holds the PascalCase identifier derived from each literal.
	Variants []string
}

// SelectDiscriminant picks the field name that most alternatives declare
// as a single-literal string enum. Ties go to the name seen first. The
// union is tagged only when the winner is such a literal in every
// alternative and the literals are distinct.
func SelectDiscriminant(alts [][]ir.Field) (Discriminant, bool) {
	if len(alts) == 0 {
		return Discriminant{}, false
	}
	counts := map[string]int{}
	var order []string
	for _, fields := range alts {
		for _, f := range fields {
			if _, ok := f.Type.SingletonEnum(); !ok {
				continue
			}
			if counts[f.Name] == 0 {
				order = append(order, f.Name)
			}
			counts[f.Name]++
		}
	}
	winner, best := "", 0
	for _, name := range order {
		if counts[name] > best {
			winner, best = name, counts[name]
		}
	}
	if best != len(alts) {
		return Discriminant{Field: winner}, false
	}

	d := Discriminant{Field: winner}
	seen := map[string]bool{}
	for i, fields := range alts {
		for _, f := range fields {
			if f.Name != winner {
				continue
			}
			lit, _ := f.Type.SingletonEnum()
			variant := naming.Pascal(lit)
			if variant == "" {
				variant = "Variant" + strconv.Itoa(i)
			}
			if seen[lit] || seen["#"+variant] {
				return Discriminant{Field: winner}, false
			}
			seen[lit], seen["#"+variant] = true, true
			d.Values = append(d.Values, lit)
			d.Variants = append(d.Variants, variant)
			break
		}
	}
	return d, true
}

// TaggedUnion resolves the discriminant of a union, logging why a union
// falls back to the untagged rendering.
func TaggedUnion(log *zap.SugaredLogger, name string, alts [][]ir.Field) (Discriminant, bool) {
	d, ok := SelectDiscriminant(alts)
	if !ok && log != nil {
		log.Debugw("union rendered untagged", "type", name, "candidate", d.Field)
	}
	return d, ok
}
