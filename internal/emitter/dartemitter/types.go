package dartemitter

import (
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/naming"
)

var keywords = map[string]bool{
	"abstract": true, "as": true, "assert": true, "async": true, "await": true,
	"base": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "covariant": true, "default": true,
	"deferred": true, "do": true, "dynamic": true, "else": true, "enum": true,
	"export": true, "extends": true, "extension": true, "external": true,
	"factory": true, "false": true, "final": true, "finally": true, "for": true,
	"Function": true, "get": true, "hide": true, "if": true, "implements": true,
	"import": true, "in": true, "interface": true, "is": true, "late": true,
	"library": true, "mixin": true, "new": true, "null": true, "of": true,
	"on": true, "operator": true, "part": true, "required": true,
	"rethrow": true, "return": true, "sealed": true, "set": true, "show": true,
	"static": true, "super": true, "switch": true, "sync": true, "this": true,
	"throw": true, "true": true, "try": true, "type": true, "typedef": true,
	"var": true, "void": true, "when": true, "while": true, "with": true,
	"yield": true,
	// members of generated enum classes
	"value": true, "values": true,
}

// ident maps a wire name to a lowerCamel Dart identifier.
func ident(name string) string {
	return naming.Safe(naming.Camel(name), "v", keywords)
}

// TypeDecl renders the declaration of a named type, or "" for hand-written
// ones.
func (g *Generator) TypeDecl(t *ir.Type) (string, error) {
	if t.UserDefined {
		return "", nil
	}
	var b strings.Builder
	writeDoc(&b, "", t.Doc)

	switch k := t.Kind.(type) {
	case ir.Object:
		decl, err := g.objectDecl(t.Name, k.Fields)
		if err != nil {
			return "", err
		}
		b.WriteString(decl)
		return b.String(), nil
	case ir.StrEnum:
		b.WriteString(enumDecl(t.Name, k.Values))
		return b.String(), nil
	case ir.Union:
		alts, ok := emitter.Alternatives(k)
		if ok {
			if d, tagged := emitter.TaggedUnion(g.log, t.Name, alts); tagged {
				decl, err := g.unionDecl(t.Name, d, alts)
				if err != nil {
					return "", err
				}
				b.WriteString(decl)
				return b.String(), nil
			}
		}
		if _, err := g.join(k.Alts, "", ", ", ""); err != nil {
			return "", err
		}
		b.WriteString("typedef " + t.Name + " = Object;\n")
		return b.String(), nil
	case ir.Combo:
		shape, err := emitter.Shape(k)
		if err != nil {
			return "", err
		}
		switch {
		case shape.Union != nil && shape.Alts != nil:
			if d, tagged := emitter.TaggedUnion(g.log, t.Name, shape.Alts); tagged {
				decl, err := g.unionDecl(t.Name, d, shape.Alts)
				if err != nil {
					return "", err
				}
				b.WriteString(decl)
				return b.String(), nil
			}
		case shape.Union == nil && shape.Mergeable:
			decl, err := g.objectDecl(t.Name, shape.Common)
			if err != nil {
				return "", err
			}
			b.WriteString(decl)
			return b.String(), nil
		}
		b.WriteString("typedef " + t.Name + " = Object;\n")
		return b.String(), nil
	}

	body, err := g.body(t)
	if err != nil {
		return "", err
	}
	b.WriteString("typedef " + t.Name + " = " + body + ";\n")
	return b.String(), nil
}

// ref renders t where it is used.
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

func (g *Generator) body(t *ir.Type) (string, error) {
	switch k := t.Kind.(type) {
	case ir.Prim:
		return prim(k.P), nil
	case ir.Option:
		inner, err := g.ref(k.Inner)
		if err != nil {
			return "", err
		}
		return nullable(inner), nil
	case ir.Array:
		elem, err := g.ref(k.Elem)
		if err != nil {
			return "", err
		}
		return "List<" + elem + ">", nil
	case ir.Tuple:
		if len(k.Elems) == 1 {
			return g.join(k.Elems, "(", ", ", ",)")
		}
		return g.join(k.Elems, "(", ", ", ")")
	case ir.Object:
		return g.record(k.Fields)
	case ir.Union:
		// Anonymous unions have no declaration to hang variants on.
		if _, err := g.join(k.Alts, "", ", ", ""); err != nil {
			return "", err
		}
		return "Object", nil
	case ir.Combo:
		shape, err := emitter.Shape(k)
		if err != nil {
			return "", err
		}
		if shape.Union == nil && shape.Mergeable {
			return g.record(shape.Common)
		}
		return "Object", nil
	case ir.StrEnum:
		return "String", nil
	case ir.Ref:
		userDefined := k.Target != nil && k.Target.UserDefined
		return g.typeName(k.Name, userDefined), nil
	case ir.Recursive:
		t, ok := emitter.Lookup(g.model, k.Name)
		return g.typeName(k.Name, ok && t.UserDefined), nil
	}
	return "", ir.Unhandled("dart", t.Kind)
}

func (g *Generator) join(ts []*ir.Type, open, sep, close string) (string, error) {
	parts := make([]string, len(ts))
	for i, t := range ts {
		s, err := g.ref(t)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return open + strings.Join(parts, sep) + close, nil
}

// fieldType renders a field type, nullable when the field may be absent.
func (g *Generator) fieldType(f ir.Field) (string, error) {
	t, err := g.ref(f.Type)
	if err != nil {
		return "", err
	}
	if !f.Required {
		t = nullable(t)
	}
	return t, nil
}

// record renders fields as a record type with named fields.
func (g *Generator) record(fields []ir.Field) (string, error) {
	if len(fields) == 0 {
		return "()", nil
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		ft, err := g.fieldType(f)
		if err != nil {
			return "", err
		}
		parts[i] = ft + " " + ident(f.Name)
	}
	return "({" + strings.Join(parts, ", ") + "})", nil
}

// objectDecl renders a record typedef, or a class when a wire name is not a
// Dart identifier or the object refers back to itself, which a typedef
// cannot do.
func (g *Generator) objectDecl(name string, fields []ir.Field) (string, error) {
	class := false
	for _, f := range fields {
		if ident(f.Name) != f.Name || emitter.Reaches(g.model, f.Type, name, handWritten) {
			class = true
			break
		}
	}
	if !class {
		rec, err := g.record(fields)
		if err != nil {
			return "", err
		}
		return "typedef " + name + " = " + rec + ";\n", nil
	}

	var (
		props, init, from, to []string
	)
	for _, f := range fields {
		ft, err := g.fieldType(f)
		if err != nil {
			return "", err
		}
		id := ident(f.Name)
		props = append(props, "  final "+ft+" "+id+";")
		if f.Required {
			init = append(init, "required this."+id)
		} else {
			init = append(init, "this."+id)
		}
		from = append(from, "        "+id+": ud.fromJson<"+ft+">(json["+squote(f.Name)+"]),")
		to = append(to, "        "+squote(f.Name)+": ud.toJson("+id+"),")
	}

	var b strings.Builder
	b.WriteString("class " + name + " {\n")
	b.WriteString(strings.Join(props, "\n") + "\n\n")
	b.WriteString("  const " + name + "({" + strings.Join(init, ", ") + "});\n\n")
	b.WriteString("  factory " + name + ".fromJson(Map<String, dynamic> json) => " + name + "(\n")
	b.WriteString(strings.Join(from, "\n") + "\n")
	b.WriteString("      );\n\n")
	b.WriteString("  Map<String, dynamic> toJson() => {\n")
	b.WriteString(strings.Join(to, "\n") + "\n")
	b.WriteString("      };\n")
	b.WriteString("}\n")
	return b.String(), nil
}

func handWritten(t *ir.Type, _ *ir.Field) bool { return t.UserDefined }

func enumDecl(name string, values []string) string {
	consts := make([]string, len(values))
	used := map[string]bool{}
	var b strings.Builder
	b.WriteString("class " + name + " {\n")
	b.WriteString("  final String value;\n")
	b.WriteString("  const " + name + "._(this.value);\n\n")
	for i, v := range values {
		id := ident(v)
		for n := 2; used[id]; n++ {
			id = ident(v) + strconv.Itoa(n)
		}
		used[id] = true
		consts[i] = id
		b.WriteString("  static const " + id + " = " + name + "._(" + squote(v) + ");\n")
	}
	b.WriteString("\n  static const values = [" + strings.Join(consts, ", ") + "];\n\n")
	b.WriteString("  factory " + name + ".fromJson(String json) =>\n")
	b.WriteString("      values.firstWhere((v) => v.value == json);\n\n")
	b.WriteString("  String toJson() => value;\n")
	b.WriteString("}\n")
	return b.String()
}

// unionDecl renders a tagged union as a freezed sealed class with one
// factory per alternative.
func (g *Generator) unionDecl(name string, d emitter.Discriminant, alts [][]ir.Field) (string, error) {
	g.freezed = true
	var b strings.Builder
	b.WriteString("@Freezed(unionKey: " + squote(d.Field) + ")\n")
	b.WriteString("sealed class " + name + " with _$" + name + " {\n")
	for i, fields := range alts {
		var params []string
		for _, f := range fields {
			if f.Name == d.Field {
				continue
			}
			ft, err := g.fieldType(f)
			if err != nil {
				return "", err
			}
			p := ft + " " + ident(f.Name)
			if f.Required {
				p = "required " + p
			}
			if ident(f.Name) != f.Name {
				p = "@JsonKey(name: " + squote(f.Name) + ") " + p
			}
			params = append(params, p)
		}
		ctor := naming.Safe(naming.Camel(d.Variants[i]), "v", keywords)
		b.WriteString("  @FreezedUnionValue(" + squote(d.Values[i]) + ")\n")
		b.WriteString("  const factory " + name + "." + ctor + "(")
		if len(params) > 0 {
			b.WriteString("{" + strings.Join(params, ", ") + "}")
		}
		b.WriteString(") = " + name + d.Variants[i] + ";\n")
	}
	b.WriteString("\n  factory " + name + ".fromJson(Map<String, dynamic> json) =>\n")
	b.WriteString("      _$" + name + "FromJson(json);\n")
	b.WriteString("}\n")
	return b.String(), nil
}

func prim(p ir.PrimKind) string {
	switch p {
	case ir.Str:
		return "String"
	case ir.Int:
		return "int"
	case ir.Float:
		return "double"
	case ir.Bool:
		return "bool"
	case ir.File:
		return "List<int>"
	default:
		return "Null"
	}
}

func nullable(t string) string {
	if strings.HasSuffix(t, "?") || t == "Null" || t == "dynamic" {
		return t
	}
	return t + "?"
}

func squote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`, `$`, `\$`, "\n", `\n`).Replace(s) + "'"
}

func writeDoc(b *strings.Builder, indent, doc string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return
	}
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString(indent + "///\n")
			continue
		}
		b.WriteString(indent + "/// " + line + "\n")
	}
}
