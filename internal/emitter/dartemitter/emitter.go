// Package dartemitter renders an ir.Model as a Dart client library.
//
// Objects become records, or classes when a wire name is not a Dart
// identifier or the object is recursive. Tagged unions are freezed sealed classes; the generated file
// therefore declares freezed and json_serializable parts when it has any.
// Transport, JSON conversion and user-defined types come from the runtime
// library imported as ud.
package dartemitter

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
)

const (
	Target         = "dart"
	FileName       = "client.dart"
	DefaultRuntime = "user_defined.dart"
)

// Generator renders declarations and request functions for one model.
type Generator struct {
	model   *ir.Model
	runtime string
	log     *zap.SugaredLogger
	// freezed is set once a tagged union has been rendered.
	freezed bool
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

// Render produces the whole client.dart.
func (g *Generator) Render() ([]byte, error) {
	g.freezed = false
	var body strings.Builder
	for _, t := range emitter.Declarations(g.model) {
		decl, err := g.TypeDecl(t)
		if err != nil {
			return nil, errors.Wrapf(err, "type %s", t.Name)
		}
		body.WriteString("\n" + decl)
	}
	for _, r := range g.model.Routes {
		fn, err := g.Route(r)
		if err != nil {
			return nil, errors.Wrapf(err, "route %s", r.ID())
		}
		body.WriteString("\n" + fn)
	}

	var b strings.Builder
	b.WriteString("// Code generated by swagger2client. DO NOT EDIT.\n")
	if g.model.Title != "" {
		b.WriteString("// Source: " + g.model.Title + "\n")
	}
	b.WriteString("\n")
	if g.freezed {
		b.WriteString("import 'package:freezed_annotation/freezed_annotation.dart';\n\n")
	}
	b.WriteString("import " + squote(g.runtime) + " as ud;\n")
	if g.freezed {
		base := strings.TrimSuffix(FileName, ".dart")
		b.WriteString("\npart '" + base + ".freezed.dart';\n")
		b.WriteString("part '" + base + ".g.dart';\n")
	}
	b.WriteString(body.String())
	return []byte(b.String()), nil
}

// Emit renders the model and writes client.dart under opts.OutDir.
func Emit(ctx context.Context, m *ir.Model, opts emitter.Options) (*emitter.Result, error) {
	if m == nil {
		return nil, errors.New("dartemitter: nil model")
	}
	src, err := New(m, opts).Render()
	if err != nil {
		return nil, err
	}
	return emitter.WriteFiles(ctx, Target, []emitter.File{{RelPath: FileName, Content: src}}, opts)
}
