// Package resolve turns the raw schema graph of a spec.Document into the
// ir model. References are memoized so each named schema becomes exactly one
// *ir.Type, and self-references are cut with ir.Recursive placeholders.
package resolve

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/naming"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// NameFunc derives a route identifier from its URL template and method.
// isList is true when the response is an array.
type NameFunc func(url string, method spec.HttpMethod, isList bool) string

type Option func(*Resolver)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

func WithNameFunc(f NameFunc) Option {
	return func(r *Resolver) {
		if f != nil {
			r.nameRoute = f
		}
	}
}

// Resolver resolves schemas and operations of one document. It is not safe
// for concurrent use.
type Resolver struct {
	doc       *spec.Document
	refs      *RefTable
	log       *zap.SugaredLogger
	nameRoute NameFunc
	// routeNames counts route names handed out so far.
	routeNames map[string]int
}

func NewResolver(doc *spec.Document, opts ...Option) *Resolver {
	r := &Resolver{
		doc:        doc,
		refs:       NewRefTable(),
		log:        zap.NewNop().Sugar(),
		nameRoute:  defaultName,
		routeNames: map[string]int{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultName(url string, method spec.HttpMethod, isList bool) string {
	return naming.RouteName(url, string(method), isList)
}

// Refs exposes the memo table.
func (r *Resolver) Refs() *RefTable { return r.refs }

// Resolve converts node into an IR type. name is attached to the result
// when node is an inline schema; it is empty for anonymous positions.
func (r *Resolver) Resolve(name string, node *spec.SchemaOrRef, anc Ancestors) (*ir.Type, error) {
	if node == nil {
		return nil, ir.Errorf(ir.UnsupportedSchema, "missing schema")
	}
	var (
		t   *ir.Type
		err error
	)
	if node.Ref != nil {
		t, err = r.ResolveRef(node.Ref.Name(), anc)
		if err == nil && name != "" {
			// A named schema that is only a $ref becomes an alias.
			t = alias(name, t, nil)
		}
	} else {
		t, err = r.schema(name, node.Schema, anc)
	}
	if err != nil {
		return nil, err
	}
	if _, unfinished := t.Kind.(ir.Unknown); unfinished {
		panic(fmt.Sprintf("resolve: %q left unresolved", name))
	}
	return t, nil
}

// ResolveRef resolves the component schema called name.
func (r *Resolver) ResolveRef(name string, anc Ancestors) (*ir.Type, error) {
	if t, ok := r.refs.Get(name); ok {
		r.log.Debugw("memo hit", "schema", name)
		return t, nil
	}
	if anc.Has(name) {
		r.log.Debugw("cycle", "schema", name)
		return ir.New(ir.Recursive{Name: name}), nil
	}
	raw, ok := r.doc.Schema(name)
	if !ok {
		return nil, ir.Errorf(ir.UnresolvedReference, "%s", name)
	}
	t, err := r.Resolve(name, raw, anc.With(name))
	if err != nil {
		return nil, errors.Wrapf(err, "schema %s", name)
	}
	return r.refs.Put(name, t), nil
}

// alias names an already resolved type. Named targets are never relabeled:
// the outer name becomes an ir.Ref pointing at them. Anonymous targets are
// fresh and take the name directly.
func alias(name string, t *ir.Type, s *spec.Schema) *ir.Type {
	if name == "" {
		return t
	}
	if t.Named() {
		out := &ir.Type{Name: name, Kind: ir.Ref{Name: t.Name, Target: t}}
		annotate(out, s)
		return out
	}
	if rec, ok := t.Kind.(ir.Recursive); ok {
		out := &ir.Type{Name: name, Kind: ir.Ref{Name: rec.Name}}
		annotate(out, s)
		return out
	}
	t.Name = name
	annotate(t, s)
	return t
}

// annotate copies schema metadata onto t without overwriting what is there.
func annotate(t *ir.Type, s *spec.Schema) {
	if s == nil {
		return
	}
	if t.Doc == "" {
		t.Doc = strings.TrimSpace(strings.ReplaceAll(s.Description, userDefinedMarker, ""))
	}
	if userDefined(s) {
		t.UserDefined = true
	}
}

const userDefinedMarker = "#user_defined"

func userDefined(s *spec.Schema) bool {
	return s.UserDefined ||
		strings.Contains(s.Title, userDefinedMarker) ||
		strings.Contains(s.Description, userDefinedMarker)
}
