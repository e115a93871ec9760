// Package irjson dumps an ir.Model as indented JSON for debugging.
package irjson

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
)

const (
	Target   = "ir"
	FileName = "ir.json"
)

type model struct {
	Title  string  `json:"title,omitempty"`
	Types  []decl  `json:"types"`
	Routes []route `json:"routes"`
}

type decl struct {
	Name        string `json:"name"`
	Doc         string `json:"doc,omitempty"`
	UserDefined bool   `json:"userDefined,omitzero"`
	Type        *node  `json:"type"`
}

// node is one IR type. Named types below the top level appear as
// {"kind": "named", "name": ...}.
type node struct {
	Kind   string   `json:"kind"`
	Name   string   `json:"name,omitempty"`
	Prim   string   `json:"prim,omitempty"`
	Inner  *node    `json:"inner,omitempty"`
	Elems  []*node  `json:"elems,omitempty"`
	Fields []field  `json:"fields,omitempty"`
	Values []string `json:"values,omitempty"`
}

type field struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Type     *node  `json:"type"`
}

type route struct {
	Name     string  `json:"name"`
	Method   string  `json:"method"`
	URL      string  `json:"url"`
	Doc      string  `json:"doc,omitempty"`
	Params   []param `json:"params,omitempty"`
	Request  *body   `json:"request,omitempty"`
	Response *body   `json:"response,omitempty"`
}

type param struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Required bool   `json:"required"`
	Type     *node  `json:"type"`
}

type body struct {
	ContentType string `json:"contentType"`
	Type        *node  `json:"type,omitempty"`
}

// Render produces the JSON document for m.
func Render(m *ir.Model) ([]byte, error) {
	out := model{Title: m.Title, Types: []decl{}, Routes: []route{}}
	for _, t := range m.Types {
		n, err := convert(t, true)
		if err != nil {
			return nil, errors.Wrapf(err, "type %s", t.Name)
		}
		out.Types = append(out.Types, decl{Name: t.Name, Doc: t.Doc, UserDefined: t.UserDefined, Type: n})
	}
	for _, r := range m.Routes {
		rt, err := convertRoute(r)
		if err != nil {
			return nil, errors.Wrapf(err, "route %s", r.ID())
		}
		out.Routes = append(out.Routes, rt)
	}
	b, err := json.Marshal(out, jsontext.WithIndent("  "), json.Deterministic(true))
	if err != nil {
		return nil, errors.Wrap(err, "marshal ir")
	}
	return append(b, '\n'), nil
}

func convertRoute(r *ir.Route) (route, error) {
	rt := route{Name: r.Name, Method: r.Method, URL: r.URL, Doc: r.Doc}
	for _, p := range r.Params {
		n, err := convert(p.Type, false)
		if err != nil {
			return route{}, errors.Wrapf(err, "param %s", p.Name)
		}
		rt.Params = append(rt.Params, param{Name: p.Name, In: string(p.In), Required: p.Required, Type: n})
	}
	if rb := r.RequestBody; rb != nil {
		n, err := convert(rb.Type, false)
		if err != nil {
			return route{}, err
		}
		rt.Request = &body{ContentType: rb.ContentType, Type: n}
	}
	if rb := r.ResponseBody; rb != nil {
		rt.Response = &body{ContentType: rb.ContentType}
		if rb.Type != nil {
			n, err := convert(rb.Type, false)
			if err != nil {
				return route{}, err
			}
			rt.Response.Type = n
		}
	}
	return rt, nil
}

// convert maps t to a node. Named types are inlined only at the top level
// of their own declaration.
func convert(t *ir.Type, top bool) (*node, error) {
	if t.Named() && !top {
		return &node{Kind: "named", Name: t.Name}, nil
	}
	list := func(ts []*ir.Type) ([]*node, error) {
		out := make([]*node, len(ts))
		for i, e := range ts {
			n, err := convert(e, false)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}

	switch k := t.Kind.(type) {
	case ir.Prim:
		return &node{Kind: "prim", Prim: k.P.String()}, nil
	case ir.Option:
		inner, err := convert(k.Inner, false)
		return &node{Kind: "option", Inner: inner}, err
	case ir.Array:
		inner, err := convert(k.Elem, false)
		return &node{Kind: "array", Inner: inner}, err
	case ir.Tuple:
		elems, err := list(k.Elems)
		return &node{Kind: "tuple", Elems: elems}, err
	case ir.Object:
		n := &node{Kind: "object", Fields: []field{}}
		for _, f := range k.Fields {
			ft, err := convert(f.Type, false)
			if err != nil {
				return nil, errors.Wrapf(err, "property %s", f.Name)
			}
			n.Fields = append(n.Fields, field{Name: f.Name, Required: f.Required, Type: ft})
		}
		return n, nil
	case ir.Union:
		elems, err := list(k.Alts)
		return &node{Kind: "union", Elems: elems}, err
	case ir.Combo:
		elems, err := list(k.Parts)
		return &node{Kind: "combo", Elems: elems}, err
	case ir.StrEnum:
		return &node{Kind: "enum", Values: append([]string{}, k.Values...)}, nil
	case ir.Ref:
		return &node{Kind: "ref", Name: k.Name}, nil
	case ir.Recursive:
		return &node{Kind: "recursive", Name: k.Name}, nil
	}
	return nil, ir.Unhandled("ir", t.Kind)
}

// Emit renders the model and writes ir.json under opts.OutDir.
func Emit(ctx context.Context, m *ir.Model, opts emitter.Options) (*emitter.Result, error) {
	if m == nil {
		return nil, errors.New("irjson: nil model")
	}
	src, err := Render(m)
	if err != nil {
		return nil, err
	}
	return emitter.WriteFiles(ctx, Target, []emitter.File{{RelPath: FileName, Content: src}}, opts)
}
