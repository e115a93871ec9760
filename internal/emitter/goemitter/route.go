package goemitter

import (
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
)

// Route renders the request function of r, preceded by its parameter
// struct and, for inline object bodies, a named body type.
func (g *Generator) Route(r *ir.Route) (string, error) {
	fn := exported(r.Name)
	params := emitter.PartitionParams(r)

	out, decode, err := g.response(r.ResponseBody)
	if err != nil {
		return "", err
	}

	var (
		b      strings.Builder
		inputs = []string{"ctx context.Context", "c *ud.Client"}
		ps     []goField
	)
	if len(r.Params) > 0 {
		fields := make([]ir.Field, 0, len(r.Params))
		for _, p := range params.All() {
			fields = append(fields, ir.Field{Name: p.Name, Type: p.Type, Required: p.Required})
		}
		if ps, err = g.fields(fields); err != nil {
			return "", err
		}
		b.WriteString("// " + fn + "Params holds the parameters of " + fn + ".\n")
		b.WriteString("type " + fn + "Params struct {\n")
		for _, f := range ps {
			b.WriteString("\t" + f.Name + " " + f.Type + "\n")
		}
		b.WriteString("}\n\n")
		inputs = append(inputs, "params "+fn+"Params")
	}
	// ps follows params.All(): path, query, header, cookie.
	byName := make(map[string]goField, len(ps))
	for i, p := range params.All() {
		byName[string(p.In)+":"+p.Name] = ps[i]
	}
	field := func(p ir.Param) goField { return byName[string(p.In)+":"+p.Name] }

	var data []string
	if rb := r.RequestBody; rb != nil {
		bodyType, err := g.bodyType(&b, fn, rb.Type)
		if err != nil {
			return "", err
		}
		inputs = append(inputs, "body "+bodyType)
		enc, err := emitter.RequestEncoding(rb)
		if err != nil {
			return "", err
		}
		if data, err = g.encodeBody(enc, rb, bodyType); err != nil {
			return "", err
		}
	}

	b.WriteString("// " + fn + " calls " + r.ID() + ".\n")
	if doc := strings.TrimSpace(r.Doc); doc != "" {
		b.WriteString("//\n")
		writeDoc(&b, doc)
	}
	b.WriteString("func " + fn + "(" + strings.Join(inputs, ", ") + ") (*ud.Result[" + out + "], error) {\n")
	b.WriteString("\treq := ud.NewRequest(" + goQuote(strings.ToUpper(r.Method)) + ", " + g.path(r.URL, field, params.Path) + ")\n")
	for _, loc := range []struct {
		name   string
		params []ir.Param
	}{{"Query", params.Query}, {"Header", params.Header}, {"Cookie", params.Cookie}} {
		for _, p := range loc.params {
			s, err := g.setter(loc.name, p, field(p))
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	for _, line := range data {
		b.WriteString("\t" + line + "\n")
	}
	b.WriteString("\tresp, err := c.Do(ctx, req)\n")
	b.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	b.WriteString("\treturn " + decode + "\n")
	b.WriteString("}\n")
	return b.String(), nil
}

// bodyType names the request body type, declaring inline objects as
// <Func>Body.
func (g *Generator) bodyType(b *strings.Builder, fn string, t *ir.Type) (string, error) {
	if t.Named() {
		return g.ref(t)
	}
	var fields []ir.Field
	switch k := t.Kind.(type) {
	case ir.Object:
		fields = k.Fields
	case ir.Combo:
		fs, ok := emitter.ObjectFields(t)
		if !ok {
			return g.ref(t)
		}
		fields = fs
	default:
		return g.ref(t)
	}
	s, err := g.structType(fields)
	if err != nil {
		return "", err
	}
	b.WriteString("// " + fn + "Body is the request body of " + fn + ".\n")
	b.WriteString("type " + fn + "Body " + s + "\n\n")
	return fn + "Body", nil
}

func (g *Generator) response(rb *ir.ResponseBody) (typ, decode string, err error) {
	switch emitter.DecodeResponse(rb) {
	case emitter.RespJSON:
		typ = "json.RawMessage"
		if rb.Type != nil {
			if typ, err = g.ref(rb.Type); err != nil {
				return "", "", err
			}
		}
		return typ, "ud.DecodeJSON[" + typ + "](resp)", nil
	case emitter.RespText:
		return "string", "ud.DecodeText(resp)", nil
	case emitter.RespBinary:
		return "[]byte", "ud.DecodeBytes(resp)", nil
	}
	return "struct{}", "ud.DecodeEmpty(resp)", nil
}

func (g *Generator) encodeBody(enc emitter.BodyEncoding, rb *ir.RequestBody, bodyType string) ([]string, error) {
	ct := goQuote(ir.MediaType(rb.ContentType))
	switch enc {
	case emitter.BodyJSON:
		return []string{
			"if err := req.SetJSON(" + ct + ", body); err != nil {",
			"\treturn nil, err",
			"}",
		}, nil
	case emitter.BodyText, emitter.BodyBinary:
		return []string{"req.SetBody(" + ct + ", " + bytesOf("body", bodyType) + ")"}, nil
	}

	parts, err := emitter.FormParts(rb.Type)
	if err != nil {
		return nil, err
	}
	fields, _ := emitter.ObjectFields(rb.Type)
	gfs, err := g.fields(fields)
	if err != nil {
		return nil, err
	}

	lines := []string{"form := req.Multipart()"}
	if enc == emitter.BodyForm {
		lines[0] = "form := req.URLEncoded()"
	}
	if len(parts) == 0 {
		return []string{strings.TrimPrefix(lines[0], "form := ")}, nil
	}
	for i, p := range parts {
		f := gfs[i]
		v := "body." + f.Name
		key := goQuote(p.Name)
		value := v
		if f.Ptr {
			value = "*" + v
		}
		var call []string
		switch p.Kind {
		case emitter.PartFile:
			call = []string{"form.File(" + key + ", " + value + ")"}
		case emitter.PartJSON:
			call = []string{
				"if err := form.JSON(" + key + ", " + value + "); err != nil {",
				"\treturn nil, err",
				"}",
			}
		default:
			call = []string{"form.Field(" + key + ", " + rawValue(value, p.Type) + ")"}
		}
		if p.Conditional && (f.Ptr || nilable(f.Type)) {
			lines = append(lines, "if "+v+" != nil {")
			for _, c := range call {
				lines = append(lines, "\t"+c)
			}
			lines = append(lines, "}")
			continue
		}
		lines = append(lines, call...)
	}
	return lines, nil
}

// path renders the URL template as a Go string expression with escaped
// path parameters.
func (g *Generator) path(url string, field func(ir.Param) goField, pathParams []ir.Param) string {
	var parts []string
	for _, seg := range emitter.SplitURL(url) {
		if !seg.Param {
			parts = append(parts, goQuote(seg.Text))
			continue
		}
		var f goField
		for _, p := range pathParams {
			if p.Name == seg.Text {
				f = field(p)
			}
		}
		if f.Name == "" {
			// Undeclared placeholders stay literal.
			parts = append(parts, goQuote("{"+seg.Text+"}"))
			continue
		}
		v := "params." + f.Name
		if f.Ptr {
			v = "*" + v
		}
		parts = append(parts, "url.PathEscape("+stringOf(v, f.Type)+")")
	}
	if len(parts) == 0 {
		return `""`
	}
	return strings.Join(parts, " + ")
}

// setter renders the call that copies a parameter onto req. Lists are sent
// as one repeated entry per element.
func (g *Generator) setter(loc string, p ir.Param, f goField) (string, error) {
	v := "params." + f.Name
	if elem, ok := listElem(p.Type); ok {
		et, err := g.ref(elem)
		if err != nil {
			return "", err
		}
		if f.Ptr {
			v = "*" + v
		}
		loop := "\tfor _, v := range " + v + " {\n\t\treq.Add" + loc + "(" + goQuote(p.Name) + ", " + stringOf("v", et) + ")\n\t}\n"
		if f.Ptr {
			return "\tif params." + f.Name + " != nil {\n" + indent(loop) + "\t}\n", nil
		}
		return loop, nil
	}
	if f.Ptr {
		return "\tif " + v + " != nil {\n\t\treq.Set" + loc + "(" + goQuote(p.Name) + ", " + stringOf("*"+v, strings.TrimPrefix(f.Type, "*")) + ")\n\t}\n", nil
	}
	return "\treq.Set" + loc + "(" + goQuote(p.Name) + ", " + stringOf(v, f.Type) + ")\n", nil
}

// listElem returns the element type when t, ignoring nullability and
// aliases, is an array.
func listElem(t *ir.Type) (*ir.Type, bool) {
	if opt, ok := t.Kind.(ir.Option); ok {
		t = opt.Inner
	}
	a, ok := t.Deref().Kind.(ir.Array)
	if !ok {
		return nil, false
	}
	return a.Elem, true
}

func indent(s string) string {
	lines := strings.SplitAfter(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "\t" + l
	}
	return strings.Join(lines, "") + "\n"
}

// stringOf converts an expression of the rendered type typ to a string.
func stringOf(v, typ string) string {
	if typ == "string" {
		return v
	}
	return "fmt.Sprint(" + v + ")"
}

func rawValue(v string, t *ir.Type) string {
	if t.IsPrim(ir.Str) {
		return v
	}
	if _, ok := t.Deref().Kind.(ir.StrEnum); ok {
		if t.Named() {
			return "string(" + v + ")"
		}
		return v
	}
	return "fmt.Sprint(" + v + ")"
}

func bytesOf(v, typ string) string {
	switch typ {
	case "[]byte":
		return v
	case "string":
		return "[]byte(" + v + ")"
	}
	return "[]byte(fmt.Sprint(" + v + "))"
}
