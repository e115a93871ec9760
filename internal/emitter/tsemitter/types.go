package tsemitter

import (
	"regexp"
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
)

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// TypeDecl renders the declaration of a named type, or "" for hand-written
// ones.
func (g *Generator) TypeDecl(t *ir.Type) (string, error) {
	if t.UserDefined {
		return "", nil
	}
	body, err := g.body(t)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	writeDoc(&b, "", t.Doc)
	b.WriteString("export type ")
	b.WriteString(t.Name)
	b.WriteString(" = ")
	b.WriteString(body)
	b.WriteString("\n")
	return b.String(), nil
}

// ref renders t where it is used: named types by name, anonymous ones
// inline.
func (g *Generator) ref(t *ir.Type) (string, error) {
	if t.Named() {
		return g.typeName(t.Name, t.UserDefined), nil
	}
	return g.body(t)
}

func (g *Generator) typeName(name string, userDefined bool) string {
	if userDefined {
		return "ud." + name
	}
	return name
}

// grouped wraps compound anonymous types so they bind as one operand.
func (g *Generator) grouped(t *ir.Type) (string, error) {
	s, err := g.ref(t)
	if err != nil || t.Named() {
		return s, err
	}
	switch k := t.Kind.(type) {
	case ir.Union, ir.Combo:
		return "(" + s + ")", nil
	case ir.StrEnum:
		if len(k.Values) > 1 {
			return "(" + s + ")", nil
		}
	}
	return s, nil
}

func (g *Generator) body(t *ir.Type) (string, error) {
	switch k := t.Kind.(type) {
	case ir.Prim:
		return prim(k.P), nil
	case ir.Option:
		inner, err := g.ref(k.Inner)
		if err != nil {
			return "", err
		}
		return "(" + inner + " | null)", nil
	case ir.Array:
		elem, err := g.grouped(k.Elem)
		if err != nil {
			return "", err
		}
		return elem + "[]", nil
	case ir.Tuple:
		return g.join(k.Elems, "[", ", ", "]")
	case ir.Object:
		return g.object(k.Fields)
	case ir.Union:
		return g.join(k.Alts, "", " | ", "")
	case ir.Combo:
		return g.combo(k)
	case ir.StrEnum:
		if len(k.Values) == 0 {
			return "never", nil
		}
		lits := make([]string, len(k.Values))
		for i, v := range k.Values {
			lits[i] = quote(v)
		}
		return strings.Join(lits, " | "), nil
	case ir.Ref:
		userDefined := k.Target != nil && k.Target.UserDefined
		return g.typeName(k.Name, userDefined), nil
	case ir.Recursive:
		return g.typeName(k.Name, g.isUserDefined(k.Name)), nil
	}
	return "", ir.Unhandled("ts", t.Kind)
}

func (g *Generator) join(ts []*ir.Type, open, sep, close string) (string, error) {
	parts := make([]string, len(ts))
	for i, t := range ts {
		s, err := g.grouped(t)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return open + strings.Join(parts, sep) + close, nil
}

func (g *Generator) object(fields []ir.Field) (string, error) {
	if len(fields) == 0 {
		return "Record<string, never>", nil
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		ft, err := g.ref(f.Type)
		if err != nil {
			return "", err
		}
		opt := ""
		if !f.Required {
			opt = "?"
		}
		parts[i] = propName(f.Name) + opt + ": " + ft
	}
	return "{ " + strings.Join(parts, "; ") + " }", nil
}

// combo distributes the common fields over a single union part; otherwise
// the parts are intersected.
func (g *Generator) combo(c ir.Combo) (string, error) {
	shape, err := emitter.Shape(c)
	if err != nil {
		return "", err
	}
	if shape.Union != nil && shape.Alts != nil {
		alts := make([]string, len(shape.Alts))
		for i, fields := range shape.Alts {
			s, err := g.object(fields)
			if err != nil {
				return "", err
			}
			alts[i] = s
		}
		return strings.Join(alts, " | "), nil
	}
	return g.join(c.Parts, "", " & ", "")
}

func (g *Generator) isUserDefined(name string) bool {
	t, ok := emitter.Lookup(g.model, name)
	return ok && t.UserDefined
}

func prim(p ir.PrimKind) string {
	switch p {
	case ir.Str:
		return "string"
	case ir.Int, ir.Float:
		return "number"
	case ir.Bool:
		return "boolean"
	case ir.File:
		return "File"
	default:
		return "null"
	}
}

func propName(name string) string {
	if identRe.MatchString(name) {
		return name
	}
	return squote(name)
}

func squote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}

// access renders obj.name, or obj['name'] when name is not an identifier.
func access(obj, name string) string {
	if identRe.MatchString(name) {
		return obj + "." + name
	}
	return obj + "[" + propName(name) + "]"
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`).Replace(s) + `"`
}

func writeDoc(b *strings.Builder, indent, doc string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return
	}
	b.WriteString(indent + "/**\n")
	for _, line := range strings.Split(doc, "\n") {
		line = strings.ReplaceAll(strings.TrimRight(line, " \t"), "*/", "*\\/")
		if line == "" {
			b.WriteString(indent + " *\n")
			continue
		}
		b.WriteString(indent + " * " + line + "\n")
	}
	b.WriteString(indent + " */\n")
}
