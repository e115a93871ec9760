package goemitter

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/naming"
)

var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
}

// exported maps a wire name to an exported Go identifier.
func exported(name string) string {
	id := naming.Pascal(name)
	if id == "" {
		return "X"
	}
	if unicode.IsDigit([]rune(id)[0]) {
		return "N" + id
	}
	return id
}

// TypeDecl renders the declaration of a named type, or "" for hand-written
// ones.
func (g *Generator) TypeDecl(t *ir.Type) (string, error) {
	if t.UserDefined {
		return "", nil
	}
	g.decl = t.Name
	defer func() { g.decl = "" }()
	var b strings.Builder
	writeDoc(&b, t.Doc)

	switch k := t.Kind.(type) {
	case ir.Object:
		s, err := g.structType(k.Fields)
		if err != nil {
			return "", err
		}
		b.WriteString("type " + t.Name + " " + s + "\n")
		return b.String(), nil
	case ir.StrEnum:
		b.WriteString(enumDecl(t.Name, k.Values))
		return b.String(), nil
	case ir.Union:
		if alts, ok := emitter.Alternatives(k); ok {
			if d, tagged := emitter.TaggedUnion(g.log, t.Name, alts); tagged {
				s, err := g.unionDecl(t.Name, d, alts)
				if err != nil {
					return "", err
				}
				b.WriteString(s)
				return b.String(), nil
			}
		}
		if _, err := g.list(k.Alts); err != nil {
			return "", err
		}
		b.WriteString("type " + t.Name + " = json.RawMessage\n")
		return b.String(), nil
	case ir.Combo:
		shape, err := emitter.Shape(k)
		if err != nil {
			return "", err
		}
		switch {
		case shape.Union == nil && shape.Mergeable:
			s, err := g.structType(shape.Common)
			if err != nil {
				return "", err
			}
			b.WriteString("type " + t.Name + " " + s + "\n")
			return b.String(), nil
		case shape.Alts != nil:
			if d, tagged := emitter.TaggedUnion(g.log, t.Name, shape.Alts); tagged {
				s, err := g.unionDecl(t.Name, d, shape.Alts)
				if err != nil {
					return "", err
				}
				b.WriteString(s)
				return b.String(), nil
			}
		}
		b.WriteString("type " + t.Name + " = json.RawMessage\n")
		return b.String(), nil
	case ir.Ref:
		body, err := g.body(t)
		if err != nil {
			return "", err
		}
		b.WriteString("type " + t.Name + " = " + body + "\n")
		return b.String(), nil
	}

	body, err := g.body(t)
	if err != nil {
		return "", err
	}
	b.WriteString("type " + t.Name + " " + body + "\n")
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
		return pointer(inner), nil
	case ir.Array:
		elem, err := g.ref(k.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case ir.Tuple:
		elems, err := g.list(k.Elems)
		if err != nil {
			return "", err
		}
		n := strconv.Itoa(len(elems))
		for _, e := range elems[min(1, len(elems)):] {
			if e != elems[0] {
				return "[" + n + "]any", nil
			}
		}
		if len(elems) == 0 {
			return "[0]any", nil
		}
		return "[" + n + "]" + elems[0], nil
	case ir.Object:
		return g.structType(k.Fields)
	case ir.Union:
		if _, err := g.list(k.Alts); err != nil {
			return "", err
		}
		return "json.RawMessage", nil
	case ir.Combo:
		shape, err := emitter.Shape(k)
		if err != nil {
			return "", err
		}
		if shape.Union == nil && shape.Mergeable {
			return g.structType(shape.Common)
		}
		return "json.RawMessage", nil
	case ir.StrEnum:
		return "string", nil
	case ir.Ref:
		userDefined := k.Target != nil && k.Target.UserDefined
		return g.typeName(k.Name, userDefined), nil
	case ir.Recursive:
		t, ok := emitter.Lookup(g.model, k.Name)
		return g.typeName(k.Name, ok && t.UserDefined), nil
	}
	return "", ir.Unhandled("go", t.Kind)
}

func (g *Generator) list(ts []*ir.Type) ([]string, error) {
	out := make([]string, len(ts))
	for i, t := range ts {
		s, err := g.ref(t)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// goField is a struct field ready to print.
type goField struct {
	Name string
	Type string
	Wire string
	// Ptr is set when the pointer was added here, for an absent or null
	// value or to break a cycle.
	Ptr      bool
	Optional bool
}

func (g *Generator) fields(fields []ir.Field) ([]goField, error) {
	out := make([]goField, 0, len(fields))
	used := map[string]bool{}
	for _, f := range fields {
		t := f.Type
		optional := !f.Required
		if opt, ok := t.Kind.(ir.Option); ok && !t.Named() {
			t, optional = opt.Inner, true
		}
		typ, err := g.ref(t)
		if err != nil {
			return nil, err
		}
		gf := goField{Name: exported(f.Name), Type: typ, Wire: f.Name, Optional: optional}
		switch {
		case optional && !nilable(typ):
			gf.Type, gf.Ptr = "*"+typ, true
		case !nilable(typ) && emitter.Reaches(g.model, t, g.decl, byValue):
			// A struct cannot hold itself by value.
			gf.Type, gf.Ptr, gf.Optional = "*"+typ, true, true
		}
		base := gf.Name
		for n := 2; used[gf.Name]; n++ {
			gf.Name = base + strconv.Itoa(n)
		}
		used[gf.Name] = true
		out = append(out, gf)
	}
	return out, nil
}

// byValue prunes the edges Go already breaks with a pointer, slice or
// interface, so only fields embedded by value are followed.
func byValue(t *ir.Type, f *ir.Field) bool {
	if t.UserDefined || (f != nil && !f.Required) {
		return true
	}
	switch t.Kind.(type) {
	case ir.Option, ir.Array, ir.Union:
		return true
	}
	return false
}

func (g *Generator) structType(fields []ir.Field) (string, error) {
	if len(fields) == 0 {
		return "struct{}", nil
	}
	gfs, err := g.fields(fields)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("struct {\n")
	for _, f := range gfs {
		tag := f.Wire
		if f.Optional {
			tag += ",omitempty"
		}
		b.WriteString("\t" + f.Name + " " + f.Type + " `json:" + goQuote(tag) + "`\n")
	}
	b.WriteString("}")
	return b.String(), nil
}

func enumDecl(name string, values []string) string {
	var b strings.Builder
	b.WriteString("type " + name + " string\n")
	if len(values) == 0 {
		return b.String()
	}
	b.WriteString("\nconst (\n")
	used := map[string]bool{}
	for _, v := range values {
		id := name + exported(v)
		for n := 2; used[id]; n++ {
			id = name + exported(v) + strconv.Itoa(n)
		}
		used[id] = true
		b.WriteString("\t" + id + " " + name + " = " + goQuote(v) + "\n")
	}
	b.WriteString(")\n")
	return b.String()
}

// unionDecl renders a tagged union: a wrapper struct embedding a sealed
// variant interface, one struct per variant and the JSON methods that
// write and read the discriminant.
func (g *Generator) unionDecl(name string, d emitter.Discriminant, alts [][]ir.Field) (string, error) {
	iface := name + "Variant"
	marker := "is" + name
	tagField := goQuote(d.Field)

	var b strings.Builder
	b.WriteString("type " + name + " struct {\n\t" + iface + "\n}\n\n")
	b.WriteString("// " + iface + " is implemented by ")
	names := make([]string, len(alts))
	for i := range alts {
		names[i] = name + d.Variants[i]
	}
	b.WriteString(strings.Join(names, ", ") + ".\n")
	b.WriteString("type " + iface + " interface {\n\t" + marker + "()\n}\n")

	for i, fields := range alts {
		var rest []ir.Field
		for _, f := range fields {
			if f.Name != d.Field {
				rest = append(rest, f)
			}
		}
		s, err := g.structType(rest)
		if err != nil {
			return "", err
		}
		v := names[i]
		b.WriteString("\ntype " + v + " " + s + "\n\n")
		b.WriteString("func (" + v + ") " + marker + "() {}\n\n")
		b.WriteString("func (v " + v + ") MarshalJSON() ([]byte, error) {\n")
		b.WriteString("\ttype plain " + v + "\n")
		b.WriteString("\treturn json.Marshal(struct {\n")
		b.WriteString("\t\tTag string `json:" + goQuote(d.Field) + "`\n")
		b.WriteString("\t\tplain\n")
		b.WriteString("\t}{" + goQuote(d.Values[i]) + ", plain(v)})\n")
		b.WriteString("}\n")
	}

	b.WriteString("\nfunc (u " + name + ") MarshalJSON() ([]byte, error) {\n")
	b.WriteString("\tif u." + iface + " == nil {\n\t\treturn []byte(\"null\"), nil\n\t}\n")
	b.WriteString("\treturn json.Marshal(u." + iface + ")\n")
	b.WriteString("}\n\n")

	b.WriteString("func (u *" + name + ") UnmarshalJSON(data []byte) error {\n")
	b.WriteString("\tv, err := Unmarshal" + name + "(data)\n")
	b.WriteString("\tif err != nil {\n\t\treturn err\n\t}\n")
	b.WriteString("\tu." + iface + " = v\n")
	b.WriteString("\treturn nil\n")
	b.WriteString("}\n\n")

	b.WriteString("// Unmarshal" + name + " decodes the variant named by the " + tagField + " field.\n")
	b.WriteString("func Unmarshal" + name + "(data []byte) (" + iface + ", error) {\n")
	b.WriteString("\tvar probe struct {\n\t\tTag string `json:" + tagField + "`\n\t}\n")
	b.WriteString("\tif err := json.Unmarshal(data, &probe); err != nil {\n\t\treturn nil, err\n\t}\n")
	b.WriteString("\tswitch probe.Tag {\n")
	for i, v := range names {
		b.WriteString("\tcase " + goQuote(d.Values[i]) + ":\n")
		b.WriteString("\t\tvar v " + v + "\n")
		b.WriteString("\t\terr := json.Unmarshal(data, &v)\n")
		b.WriteString("\t\treturn v, err\n")
	}
	b.WriteString("\t}\n")
	b.WriteString("\treturn nil, fmt.Errorf(\"" + name + ": unknown " + d.Field + " %q\", probe.Tag)\n")
	b.WriteString("}\n")
	return b.String(), nil
}

func prim(p ir.PrimKind) string {
	switch p {
	case ir.Str:
		return "string"
	case ir.Int:
		return "int64"
	case ir.Float:
		return "float64"
	case ir.Bool:
		return "bool"
	case ir.File:
		return "[]byte"
	default:
		return "struct{}"
	}
}

// nilable reports whether a rendered type already has a nil value.
func nilable(t string) bool {
	return strings.HasPrefix(t, "*") || strings.HasPrefix(t, "[]") ||
		strings.HasPrefix(t, "map[") || t == "any" || t == "json.RawMessage"
}

func pointer(t string) string {
	if nilable(t) {
		return t
	}
	return "*" + t
}

func goQuote(s string) string {
	return strconv.Quote(s)
}

func writeDoc(b *strings.Builder, doc string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return
	}
	for _, line := range strings.Split(doc, "\n") {
		b.WriteString(strings.TrimRight("// "+line, " \t") + "\n")
	}
}
