// Package tsemitter renders an ir.Model as a TypeScript client module.
//
// The generated file imports a hand-written runtime as ud, which supplies
// httpx, HttpxProps, Result, Ok, Err and every user-defined type.
package tsemitter

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
)

const (
	Target         = "ts"
	FileName       = "client.ts"
	DefaultRuntime = "./user_defined"
)

// Generator renders declarations and request functions for one model.
type Generator struct {
	model   *ir.Model
	runtime string
	log     *zap.SugaredLogger
}

func New(m *ir.Model, opts emitter.Options) *Generator {
	g := &Generator{model: m, runtime: opts.Runtime, log: opts.Logger}
	if g.runtime == "" {
		g.runtime = DefaultRuntime
	}
	if g.log == nil {
		g.log = zap.NewNop().Sugar()
	}
	return g
}

// Render produces the whole client.ts.
func (g *Generator) Render() ([]byte, error) {
	var b strings.Builder
	b.WriteString("// Code generated by swagger2client. DO NOT EDIT.\n")
	if g.model.Title != "" {
		b.WriteString("// Source: " + g.model.Title + "\n")
	}
	b.WriteString("\nimport * as ud from '" + g.runtime + "'\n")

	for _, t := range emitter.Declarations(g.model) {
		decl, err := g.TypeDecl(t)
		if err != nil {
			return nil, errors.Wrapf(err, "type %s", t.Name)
		}
		b.WriteString("\n" + decl)
	}
	for _, r := range g.model.Routes {
		fn, err := g.Route(r)
		if err != nil {
			return nil, errors.Wrapf(err, "route %s", r.ID())
		}
		b.WriteString("\n" + fn)
	}
	return []byte(b.String()), nil
}

// Emit renders the model and writes client.ts under opts.OutDir.
func Emit(ctx context.Context, m *ir.Model, opts emitter.Options) (*emitter.Result, error) {
	if m == nil {
		return nil, errors.New("tsemitter: nil model")
	}
	src, err := New(m, opts).Render()
	if err != nil {
		return nil, err
	}
	return emitter.WriteFiles(ctx, Target, []emitter.File{{RelPath: FileName, Content: src}}, opts)
}
