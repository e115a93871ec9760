package dartemitter

import (
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/naming"
)

// Names the generated function body uses for itself.
var locals = map[string]bool{"body": true, "override": true, "data": true, "form": true, "r": true}

func paramIdent(name string) string {
	id := ident(name)
	if locals[id] {
		id += "_"
	}
	return id
}

// Route renders the async request function of r. Every input is a named
// parameter.
func (g *Generator) Route(r *ir.Route) (string, error) {
	params := emitter.PartitionParams(r)

	out, decode, err := g.response(r.ResponseBody)
	if err != nil {
		return "", err
	}

	var inputs []string
	for _, p := range params.All() {
		t, err := g.ref(p.Type)
		if err != nil {
			return "", err
		}
		if p.Required {
			inputs = append(inputs, "required "+t+" "+paramIdent(p.Name))
		} else {
			inputs = append(inputs, nullable(t)+" "+paramIdent(p.Name))
		}
	}

	var (
		data    []string
		headers []string
	)
	if rb := r.RequestBody; rb != nil {
		bodyType, err := g.ref(rb.Type)
		if err != nil {
			return "", err
		}
		inputs = append(inputs, "required "+bodyType+" body")
		enc, err := emitter.RequestEncoding(rb)
		if err != nil {
			return "", err
		}
		if enc != emitter.BodyMultipart {
			headers = append(headers, "'Content-Type': "+squote(ir.MediaType(rb.ContentType)))
		}
		data, err = g.encodeBody(enc, rb.Type)
		if err != nil {
			return "", err
		}
	}
	inputs = append(inputs, "ud.HttpxProps? override")

	for _, p := range params.Header {
		headers = append(headers, squote(p.Name)+": "+paramIdent(p.Name))
	}

	var b strings.Builder
	writeDoc(&b, "", r.Doc)
	b.WriteString("Future<ud.Result<" + out + ">> " + naming.Safe(r.Name, "op", keywords) + "({\n")
	for _, in := range inputs {
		b.WriteString("  " + in + ",\n")
	}
	b.WriteString("}) async {\n")
	for _, line := range data {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  final r = await ud.httpx(\n")
	b.WriteString("    url: " + urlTemplate(r.URL) + ",\n")
	b.WriteString("    method: '" + strings.ToUpper(r.Method) + "',\n")
	if len(params.Query) > 0 {
		b.WriteString("    query: " + paramMap(params.Query) + ",\n")
	}
	if len(headers) > 0 {
		b.WriteString("    headers: {" + strings.Join(headers, ", ") + "},\n")
	}
	if len(params.Cookie) > 0 {
		b.WriteString("    cookies: " + paramMap(params.Cookie) + ",\n")
	}
	if r.RequestBody != nil {
		b.WriteString("    body: data,\n")
	}
	b.WriteString("    override: override,\n")
	b.WriteString("  );\n")
	b.WriteString("  return " + decode + ";\n")
	b.WriteString("}\n")
	return b.String(), nil
}

func (g *Generator) response(rb *ir.ResponseBody) (typ, decode string, err error) {
	switch emitter.DecodeResponse(rb) {
	case emitter.RespJSON:
		typ = "dynamic"
		if rb.Type != nil {
			if typ, err = g.ref(rb.Type); err != nil {
				return "", "", err
			}
		}
		return typ, "ud.Result.json<" + typ + ">(r)", nil
	case emitter.RespText:
		return "String", "ud.Result.text(r)", nil
	case emitter.RespBinary:
		return "List<int>", "ud.Result.bytes(r)", nil
	}
	return "void", "ud.Result.empty(r)", nil
}

func (g *Generator) encodeBody(enc emitter.BodyEncoding, body *ir.Type) ([]string, error) {
	switch enc {
	case emitter.BodyJSON:
		return []string{"final data = ud.Body.json(body);"}, nil
	case emitter.BodyText:
		return []string{"final data = ud.Body.text(body);"}, nil
	case emitter.BodyBinary:
		return []string{"final data = ud.Body.bytes(body);"}, nil
	}

	parts, err := emitter.FormParts(body)
	if err != nil {
		return nil, err
	}
	lines := []string{"final form = ud.Form.multipart();"}
	if enc == emitter.BodyForm {
		lines[0] = "final form = ud.Form.urlencoded();"
	}
	for _, p := range parts {
		v := "body." + ident(p.Name)
		if p.Conditional {
			v += "!"
		}
		var call string
		switch p.Kind {
		case emitter.PartFile:
			call = "form.file(" + squote(p.Name) + ", " + v + ");"
		case emitter.PartJSON:
			call = "form.json(" + squote(p.Name) + ", " + v + ");"
		default:
			call = "form.field(" + squote(p.Name) + ", " + rawValue(v, p.Type) + ");"
		}
		if p.Conditional {
			call = "if (body." + ident(p.Name) + " != null) " + call
		}
		lines = append(lines, call)
	}
	return append(lines, "final data = ud.Body.form(form);"), nil
}

// rawValue renders a plain form field as a String.
func rawValue(v string, t *ir.Type) string {
	if t.IsPrim(ir.Str) {
		return v
	}
	if _, ok := t.Deref().Kind.(ir.StrEnum); ok {
		if t.Named() {
			return v + ".toJson()"
		}
		return v
	}
	return v + ".toString()"
}

// urlTemplate interpolates encoded path parameters into a Dart string.
func urlTemplate(url string) string {
	var b strings.Builder
	b.WriteString("'")
	for _, seg := range emitter.SplitURL(url) {
		if seg.Param {
			b.WriteString("${Uri.encodeComponent(" + paramIdent(seg.Text) + ".toString())}")
			continue
		}
		lit := squote(seg.Text)
		b.WriteString(lit[1 : len(lit)-1])
	}
	b.WriteString("'")
	return b.String()
}

func paramMap(ps []ir.Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = squote(p.Name) + ": " + paramIdent(p.Name)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
