// Package pyemitter renders an ir.Model as a typed Python client module.
//
// Objects are TypedDicts, other named types are PEP 695 type aliases, and
// request functions are async with keyword-only arguments. Anonymous
// objects have no inline spelling in Python, so they are hoisted into
// TypedDicts named after the place they appear.
package pyemitter

import (
	"context"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
)

const (
	Target         = "python"
	FileName       = "client.py"
	DefaultRuntime = "user_defined"
)

var prologue = template.Must(template.New("prologue").Parse(`# Code generated by swagger2client. DO NOT EDIT.
{{- if .Title}}
# Source: {{.Title}}
{{- end}}

from __future__ import annotations

from typing import Any, Literal, NotRequired, TypedDict
from urllib.parse import quote

{{if .Relative}}from . import {{.Runtime}} as ud{{else}}import {{.Runtime}} as ud{{end}}
`))

type prologueData struct {
	Title    string
	Runtime  string
	Relative bool
}

// Generator renders declarations and request functions for one model.
type Generator struct {
	model   *ir.Model
	runtime string
	log     *zap.SugaredLogger

	// used holds every declared name, including hoisted ones.
	used map[string]bool
	// pending collects hoisted declarations until the next top-level
	// declaration is written.
	pending []string
}

func New(m *ir.Model, opts emitter.Options) *Generator {
	g := &Generator{model: m, runtime: opts.Runtime, log: opts.Logger}
	if g.runtime == "" {
		g.runtime = DefaultRuntime
	}
	if g.log == nil {
		g.log = zap.NewNop().Sugar()
	}
	g.reset()
	return g
}

func (g *Generator) reset() {
	g.used = make(map[string]bool, len(g.model.Types))
	for _, t := range g.model.Types {
		g.used[t.Name] = true
	}
	g.pending = nil
}

// Render produces the whole client.py.
func (g *Generator) Render() ([]byte, error) {
	g.reset()
	var b strings.Builder
	data := prologueData{Title: g.model.Title, Runtime: g.runtime}
	if rel, ok := strings.CutPrefix(g.runtime, "."); ok {
		data.Runtime, data.Relative = rel, true
	}
	if err := prologue.Execute(&b, data); err != nil {
		return nil, errors.Wrap(err, "render prologue")
	}

	for _, t := range emitter.Declarations(g.model) {
		decl, err := g.TypeDecl(t)
		if err != nil {
			return nil, errors.Wrapf(err, "type %s", t.Name)
		}
		b.WriteString("\n\n" + decl)
	}
	for _, r := range g.model.Routes {
		fn, err := g.Route(r)
		if err != nil {
			return nil, errors.Wrapf(err, "route %s", r.ID())
		}
		b.WriteString("\n\n" + fn)
	}
	return []byte(b.String()), nil
}

// Emit renders the model and writes client.py under opts.OutDir.
func Emit(ctx context.Context, m *ir.Model, opts emitter.Options) (*emitter.Result, error) {
	if m == nil {
		return nil, errors.New("pyemitter: nil model")
	}
	src, err := New(m, opts).Render()
	if err != nil {
		return nil, err
	}
	return emitter.WriteFiles(ctx, Target, []emitter.File{{RelPath: FileName, Content: src}}, opts)
}
