package resolve

import (
	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// Build resolves every component schema and every operation of doc.
// Types follow component declaration order; routes follow path
// declaration order and, within a path, spec.Methods order.
func Build(doc *spec.Document, opts ...Option) (*ir.Model, error) {
	r := NewResolver(doc, opts...)
	m := &ir.Model{Title: doc.Title}

	for _, ns := range doc.Schemas {
		t, err := r.ResolveRef(ns.Name, Ancestors{})
		if err != nil {
			return nil, err
		}
		m.Types = append(m.Types, t)
	}

	for i := range doc.Paths {
		item := &doc.Paths[i]
		for j := range item.Operations {
			route, err := r.ResolveRoute(item, &item.Operations[j])
			if err != nil {
				return nil, err
			}
			m.Routes = append(m.Routes, route)
		}
	}

	r.log.Debugw("resolved model",
		"types", len(m.Types),
		"routes", len(m.Routes),
		"memoized", r.refs.Len(),
	)
	return m, nil
}
