package pyemitter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/naming"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// TypeDecl renders the declaration of a named type, preceded by any
// declarations it hoisted. Hand-written types render as "".
func (g *Generator) TypeDecl(t *ir.Type) (string, error) {
	if t.UserDefined {
		return "", nil
	}
	decl, err := g.decl(t.Name, t)
	if err != nil {
		return "", err
	}
	return g.flush(decl), nil
}

// flush prepends the pending hoisted declarations to decl.
func (g *Generator) flush(decl string) string {
	if len(g.pending) == 0 {
		return decl
	}
	out := strings.Join(g.pending, "\n\n") + "\n\n" + decl
	g.pending = nil
	return out
}

func (g *Generator) decl(name string, t *ir.Type) (string, error) {
	switch k := t.Kind.(type) {
	case ir.Object:
		return g.typedDict(name, t.Doc, k.Fields)
	case ir.Union:
		hints := make([]string, len(k.Alts))
		for i := range hints {
			hints[i] = name + strconv.Itoa(i+1)
		}
		if alts, ok := emitter.Alternatives(k); ok {
			if d, tagged := emitter.TaggedUnion(g.log, name, alts); tagged {
				for i := range hints {
					hints[i] = name + d.Variants[i]
				}
			}
		}
		parts := make([]string, len(k.Alts))
		for i, a := range k.Alts {
			s, err := g.ref(a, hints[i])
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return alias(name, t.Doc, strings.Join(parts, " | ")), nil
	case ir.Combo:
		shape, err := emitter.Shape(k)
		if err != nil {
			return "", err
		}
		switch {
		case shape.Union == nil && shape.Mergeable:
			return g.typedDict(name, t.Doc, shape.Common)
		case shape.Alts != nil:
			variants, err := g.variants(name, shape.Alts)
			if err != nil {
				return "", err
			}
			return alias(name, t.Doc, strings.Join(variants, " | ")), nil
		}
		// Parts that are not all objects have no Python intersection.
		if _, err := g.join(k.Parts, name, " & "); err != nil {
			return "", err
		}
		return alias(name, t.Doc, "Any"), nil
	}
	body, err := g.body(t, name)
	if err != nil {
		return "", err
	}
	return alias(name, t.Doc, body), nil
}

// variants declares one TypedDict per union alternative. Tagged unions
// name them after their discriminant literal, others by position.
func (g *Generator) variants(name string, alts [][]ir.Field) ([]string, error) {
	d, tagged := emitter.TaggedUnion(g.log, name, alts)
	out := make([]string, len(alts))
	for i, fields := range alts {
		hint := name + strconv.Itoa(i+1)
		if tagged {
			hint = name + d.Variants[i]
		}
		n, err := g.hoist(hint, func(n string) (string, error) {
			return g.typedDict(n, "", fields)
		})
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// hoist declares an anonymous type under a fresh name derived from hint.
func (g *Generator) hoist(hint string, build func(name string) (string, error)) (string, error) {
	name := hint
	for n := 2; g.used[name]; n++ {
		name = hint + strconv.Itoa(n)
	}
	g.used[name] = true
	decl, err := build(name)
	if err != nil {
		return "", err
	}
	g.pending = append(g.pending, decl)
	return name, nil
}

// ref renders t where it is used; hint names anything that must be hoisted.
func (g *Generator) ref(t *ir.Type, hint string) (string, error) {
	if t.Named() {
		return g.typeName(t.Name, t.UserDefined), nil
	}
	return g.body(t, hint)
}

func (g *Generator) typeName(name string, userDefined bool) string {
	if userDefined {
		return "ud." + name
	}
	return name
}

func (g *Generator) body(t *ir.Type, hint string) (string, error) {
	switch k := t.Kind.(type) {
	case ir.Prim:
		return prim(k.P), nil
	case ir.Option:
		inner, err := g.ref(k.Inner, hint)
		if err != nil {
			return "", err
		}
		if inner == "None" || strings.HasSuffix(inner, " | None") {
			return inner, nil
		}
		return inner + " | None", nil
	case ir.Array:
		elem, err := g.ref(k.Elem, hint+"Item")
		if err != nil {
			return "", err
		}
		return "list[" + elem + "]", nil
	case ir.Tuple:
		if len(k.Elems) == 0 {
			return "tuple[()]", nil
		}
		parts := make([]string, len(k.Elems))
		for i, e := range k.Elems {
			s, err := g.ref(e, hint+strconv.Itoa(i+1))
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "tuple[" + strings.Join(parts, ", ") + "]", nil
	case ir.Object:
		return g.hoist(hint, func(n string) (string, error) {
			return g.typedDict(n, "", k.Fields)
		})
	case ir.Union:
		return g.join(k.Alts, hint, " | ")
	case ir.Combo:
		return g.hoist(hint, func(n string) (string, error) {
			return g.decl(n, t)
		})
	case ir.StrEnum:
		if len(k.Values) == 0 {
			return "Any", nil
		}
		lits := make([]string, len(k.Values))
		for i, v := range k.Values {
			lits[i] = quote(v)
		}
		return "Literal[" + strings.Join(lits, ", ") + "]", nil
	case ir.Ref:
		userDefined := k.Target != nil && k.Target.UserDefined
		return g.typeName(k.Name, userDefined), nil
	case ir.Recursive:
		t, ok := emitter.Lookup(g.model, k.Name)
		return g.typeName(k.Name, ok && t.UserDefined), nil
	}
	return "", ir.Unhandled("python", t.Kind)
}

func (g *Generator) join(ts []*ir.Type, hint, sep string) (string, error) {
	parts := make([]string, len(ts))
	for i, t := range ts {
		s, err := g.ref(t, hint+strconv.Itoa(i+1))
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, sep), nil
}

// typedDict uses the class syntax unless a key is not a usable Python
// identifier, in which case the functional syntax keeps the wire names.
func (g *Generator) typedDict(name, doc string, fields []ir.Field) (string, error) {
	types := make([]string, len(fields))
	functional := false
	for i, f := range fields {
		ft, err := g.ref(f.Type, name+naming.Pascal(f.Name))
		if err != nil {
			return "", err
		}
		if !f.Required {
			ft = "NotRequired[" + ft + "]"
		}
		types[i] = ft
		if !identRe.MatchString(f.Name) || keywords[f.Name] {
			functional = true
		}
	}

	var b strings.Builder
	if functional {
		writeComment(&b, doc)
		b.WriteString(name + " = TypedDict(\n")
		b.WriteString("    " + quote(name) + ",\n")
		b.WriteString("    {\n")
		for i, f := range fields {
			b.WriteString("        " + quote(f.Name) + ": " + squote(types[i]) + ",\n")
		}
		b.WriteString("    },\n")
		b.WriteString(")\n")
		return b.String(), nil
	}

	b.WriteString("class " + name + "(TypedDict):\n")
	if doc = strings.TrimSpace(doc); doc != "" {
		writeDocstring(&b, "    ", doc)
		if len(fields) > 0 {
			b.WriteString("\n")
		}
	} else if len(fields) == 0 {
		b.WriteString("    pass\n")
	}
	for i, f := range fields {
		b.WriteString("    " + f.Name + ": " + types[i] + "\n")
	}
	return b.String(), nil
}

func alias(name, doc, body string) string {
	var b strings.Builder
	writeComment(&b, doc)
	b.WriteString("type " + name + " = " + body + "\n")
	return b.String()
}

func prim(p ir.PrimKind) string {
	switch p {
	case ir.Str:
		return "str"
	case ir.Int:
		return "int"
	case ir.Float:
		return "float"
	case ir.Bool:
		return "bool"
	case ir.File:
		return "bytes"
	default:
		return "None"
	}
}

// ident maps a wire name to a snake_case Python identifier.
func ident(name string) string {
	return naming.Safe(naming.Snake(name), "v", keywords)
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
}

func squote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`).Replace(s) + "'"
}

func writeComment(b *strings.Builder, doc string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return
	}
	for _, line := range strings.Split(doc, "\n") {
		b.WriteString(strings.TrimRight("# "+line, " \t") + "\n")
	}
}

func writeDocstring(b *strings.Builder, indent, doc string) {
	doc = strings.ReplaceAll(doc, `"""`, `\"\"\"`)
	lines := strings.Split(doc, "\n")
	if len(lines) == 1 {
		b.WriteString(indent + `"""` + doc + `"""` + "\n")
		return
	}
	b.WriteString(indent + `"""` + lines[0] + "\n")
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(indent + `"""` + "\n")
}
