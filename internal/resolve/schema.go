package resolve

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// stringFormats are the string formats rendered as plain strings. binary is
// handled separately since it maps to a file.
var stringFormats = map[string]bool{
	"byte": true, "password": true, "date": true, "time": true, "date-time": true,
	"duration": true, "uuid": true, "ulid": true, "uri": true, "uri-reference": true,
	"uri-template": true, "iri": true, "iri-reference": true, "email": true,
	"idn-email": true, "hostname": true, "idn-hostname": true, "ipv4": true,
	"ipv6": true, "json-pointer": true, "relative-json-pointer": true, "regex": true,
	// Numbers encoded as strings.
	"int8": true, "int16": true, "int32": true, "int64": true, "uint8": true,
	"uint16": true, "uint32": true, "uint64": true, "float": true, "double": true,
}

// schema resolves an inline schema and names the result.
func (r *Resolver) schema(name string, s *spec.Schema, anc Ancestors) (*ir.Type, error) {
	if s == nil {
		return nil, ir.Errorf(ir.UnsupportedSchema, "missing schema")
	}
	t, err := r.shape(s, anc)
	if err != nil {
		return nil, err
	}
	if name == "" {
		if !t.Named() {
			annotate(t, s)
		}
		return t, nil
	}
	return alias(name, t, s), nil
}

func (r *Resolver) shape(s *spec.Schema, anc Ancestors) (*ir.Type, error) {
	if s.Nullable {
		inner := bare(s)
		inner.Nullable = false
		return r.optional(inner, anc)
	}

	nonNull, hasNull := splitNull(s.Types)
	if hasNull {
		if len(nonNull) == 0 && !composite(s) {
			return ir.P(ir.Null), nil
		}
		inner := bare(s)
		inner.Types = nonNull
		return r.optional(inner, anc)
	}
	if len(nonNull) > 1 {
		alts := make([]*ir.Type, 0, len(nonNull))
		for _, typ := range nonNull {
			one := bare(s)
			one.Types = []string{typ}
			t, err := r.schema("", one, anc)
			if err != nil {
				return nil, err
			}
			alts = append(alts, t)
		}
		return ir.New(ir.Union{Alts: alts}), nil
	}

	if len(s.Enum) > 0 {
		return enum(s)
	}
	if s.HasConst {
		switch v := s.Const.(type) {
		case string:
			return ir.New(ir.StrEnum{Values: []string{v}}), nil
		case nil:
			return ir.P(ir.Null), nil
		default:
			return nil, ir.Errorf(ir.UnsupportedSchema, "const literal %v", v)
		}
	}

	if composite(s) {
		return r.composite(s, anc)
	}

	typ := ""
	if len(nonNull) == 1 {
		typ = nonNull[0]
	}
	switch {
	case typ == "object" || (typ == "" && len(s.Properties) > 0):
		return r.object(s, anc)
	case typ == "array" || (typ == "" && (s.Items != nil || len(s.PrefixItems) > 0)):
		return r.array(s, anc)
	case typ == "string":
		return str(s)
	case typ == "integer":
		return ir.P(ir.Int), nil
	case typ == "number":
		return ir.P(ir.Float), nil
	case typ == "boolean":
		return ir.P(ir.Bool), nil
	case typ == "null":
		return ir.P(ir.Null), nil
	case typ == "file":
		return ir.P(ir.File), nil
	}
	return nil, ir.Errorf(ir.UnsupportedSchema, "%s", describe(s))
}

func (r *Resolver) optional(inner *spec.Schema, anc Ancestors) (*ir.Type, error) {
	t, err := r.schema("", inner, anc)
	if err != nil {
		return nil, err
	}
	if _, already := t.Kind.(ir.Option); already && !t.Named() {
		return t, nil
	}
	if t.IsPrim(ir.Null) {
		return t, nil
	}
	return ir.New(ir.Option{Inner: t}), nil
}

func (r *Resolver) object(s *spec.Schema, anc Ancestors) (*ir.Type, error) {
	fields := make([]ir.Field, 0, len(s.Properties))
	for _, p := range s.Properties {
		t, err := r.Resolve("", p.Schema, anc)
		if err != nil {
			return nil, errors.Wrapf(err, "property %s", p.Name)
		}
		fields = append(fields, ir.Field{Name: p.Name, Type: t, Required: s.IsRequired(p.Name)})
	}
	return ir.New(ir.Object{Fields: fields}), nil
}

// maxTupleLen bounds the fixed-length arrays widened into tuples. Longer
// ones stay arrays.
const maxTupleLen = 64

func (r *Resolver) array(s *spec.Schema, anc Ancestors) (*ir.Type, error) {
	if len(s.PrefixItems) > 0 {
		elems := make([]*ir.Type, 0, len(s.PrefixItems))
		for i, it := range s.PrefixItems {
			t, err := r.Resolve("", it, anc)
			if err != nil {
				return nil, errors.Wrapf(err, "prefixItems[%d]", i)
			}
			elems = append(elems, t)
		}
		return ir.New(ir.Tuple{Elems: elems}), nil
	}
	if s.Items == nil {
		return nil, ir.Errorf(ir.UnsupportedSchema, "array without items")
	}
	elem, err := r.Resolve("", s.Items, anc)
	if err != nil {
		return nil, errors.Wrap(err, "items")
	}
	if s.MinItems != nil && s.MaxItems != nil && *s.MinItems == *s.MaxItems &&
		*s.MinItems >= 0 && *s.MinItems <= maxTupleLen {
		elems := make([]*ir.Type, *s.MinItems)
		for i := range elems {
			elems[i] = elem
		}
		return ir.New(ir.Tuple{Elems: elems}), nil
	}
	return ir.New(ir.Array{Elem: elem}), nil
}

// composite handles allOf, oneOf and anyOf. Sibling properties join the
// intersection as one more object part.
func (r *Resolver) composite(s *spec.Schema, anc Ancestors) (*ir.Type, error) {
	var parts []*ir.Type
	for i, m := range s.AllOf {
		t, err := r.Resolve("", m, anc)
		if err != nil {
			return nil, errors.Wrapf(err, "allOf[%d]", i)
		}
		parts = append(parts, t)
	}
	if len(s.Properties) > 0 {
		own := bare(s)
		own.AllOf, own.OneOf, own.AnyOf = nil, nil, nil
		obj, err := r.object(own, anc)
		if err != nil {
			return nil, err
		}
		parts = append(parts, obj)
	}
	if alts := append(append([]*spec.SchemaOrRef(nil), s.OneOf...), s.AnyOf...); len(alts) > 0 {
		u, err := r.union(alts, anc)
		if err != nil {
			return nil, err
		}
		parts = append(parts, u)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return ir.New(ir.Combo{Parts: parts}), nil
}

func (r *Resolver) union(alts []*spec.SchemaOrRef, anc Ancestors) (*ir.Type, error) {
	members := make([]*ir.Type, 0, len(alts))
	nulls := 0
	for i, a := range alts {
		t, err := r.Resolve("", a, anc)
		if err != nil {
			return nil, errors.Wrapf(err, "oneOf[%d]", i)
		}
		if t.IsPrim(ir.Null) {
			nulls++
		}
		members = append(members, t)
	}
	switch {
	case len(members) == 1:
		return members[0], nil
	case len(members) == 2 && nulls == 1:
		// Only the exact [T, null] pair is an Option; wider unions keep null
		// as an alternative.
		if members[0].IsPrim(ir.Null) {
			return ir.New(ir.Option{Inner: members[1]}), nil
		}
		return ir.New(ir.Option{Inner: members[0]}), nil
	}
	return ir.New(ir.Union{Alts: members}), nil
}

func enum(s *spec.Schema) (*ir.Type, error) {
	if len(s.Types) == 1 && s.Types[0] != "string" {
		return nil, ir.Errorf(ir.UnsupportedSchema, "enum of %s", s.Types[0])
	}
	values := make([]string, 0, len(s.Enum))
	hasNull := false
	for _, v := range s.Enum {
		switch lit := v.(type) {
		case string:
			values = append(values, lit)
		case nil:
			hasNull = true
		default:
			return nil, ir.Errorf(ir.UnsupportedSchema, "enum literal %v", v)
		}
	}
	t := ir.New(ir.StrEnum{Values: values})
	if hasNull {
		return ir.New(ir.Option{Inner: t}), nil
	}
	return t, nil
}

func str(s *spec.Schema) (*ir.Type, error) {
	switch {
	case s.Format == "":
		return ir.P(ir.Str), nil
	case s.Format == "binary":
		return ir.P(ir.File), nil
	case stringFormats[s.Format]:
		return ir.P(ir.Str), nil
	}
	return nil, ir.Errorf(ir.UnsupportedFormat, "%s", s.Format)
}

// bare copies s without the metadata that belongs to the outer type.
func bare(s *spec.Schema) *spec.Schema {
	c := *s
	c.Description, c.Title, c.UserDefined = "", "", false
	return &c
}

func splitNull(types []string) (nonNull []string, hasNull bool) {
	for _, t := range types {
		if t == "null" {
			hasNull = true
			continue
		}
		nonNull = append(nonNull, t)
	}
	return nonNull, hasNull
}

func composite(s *spec.Schema) bool {
	return len(s.AllOf) > 0 || len(s.OneOf) > 0 || len(s.AnyOf) > 0
}

// describe summarizes a schema for error messages.
func describe(s *spec.Schema) string {
	var parts []string
	if len(s.Types) > 0 {
		parts = append(parts, "type="+strings.Join(s.Types, ","))
	}
	if s.Format != "" {
		parts = append(parts, "format="+s.Format)
	}
	if s.Items != nil {
		parts = append(parts, "items")
	}
	if len(parts) == 0 {
		return "{}"
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, " "))
}
