package pyemitter

import (
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/naming"
)

// Names the generated function body uses for itself.
var locals = map[string]bool{"body": true, "override": true, "data": true, "form": true, "r": true, "quote": true, "ud": true}

func paramIdent(name string) string {
	id := ident(name)
	if locals[id] {
		id += "_"
	}
	return id
}

// Route renders the async request function of r, preceded by any
// declarations hoisted from its inline types.
func (g *Generator) Route(r *ir.Route) (string, error) {
	fn, err := g.route(r)
	if err != nil {
		g.pending = nil
		return "", err
	}
	return g.flush(fn), nil
}

func (g *Generator) route(r *ir.Route) (string, error) {
	params := emitter.PartitionParams(r)
	base := naming.Pascal(r.Name)

	out, decode, err := g.response(r.ResponseBody, base+"Response")
	if err != nil {
		return "", err
	}

	inputs := []string{"*"}
	for _, p := range params.All() {
		t, err := g.ref(p.Type, base+naming.Pascal(p.Name))
		if err != nil {
			return "", err
		}
		if p.Required {
			inputs = append(inputs, paramIdent(p.Name)+": "+t)
		} else {
			inputs = append(inputs, paramIdent(p.Name)+": "+optional(t)+" = None")
		}
	}

	var (
		data    []string
		headers []string
	)
	if rb := r.RequestBody; rb != nil {
		bodyType, err := g.ref(rb.Type, base+"Body")
		if err != nil {
			return "", err
		}
		inputs = append(inputs, "body: "+bodyType)
		enc, err := emitter.RequestEncoding(rb)
		if err != nil {
			return "", err
		}
		if enc != emitter.BodyMultipart {
			headers = append(headers, `"Content-Type": `+quote(ir.MediaType(rb.ContentType)))
		}
		if data, err = g.encodeBody(enc, rb.Type); err != nil {
			return "", err
		}
	}
	inputs = append(inputs, "override: ud.HttpxProps | None = None")

	for _, p := range params.Header {
		headers = append(headers, quote(p.Name)+": "+paramIdent(p.Name))
	}

	var b strings.Builder
	b.WriteString("async def " + naming.Safe(naming.Snake(r.Name), "op_", keywords) + "(\n")
	for _, in := range inputs {
		b.WriteString("    " + in + ",\n")
	}
	b.WriteString(") -> ud.Result[" + out + "]:\n")
	if doc := strings.TrimSpace(r.Doc); doc != "" {
		writeDocstring(&b, "    ", doc)
	}
	for _, line := range data {
		b.WriteString("    " + line + "\n")
	}
	b.WriteString("    r = await ud.httpx(\n")
	b.WriteString("        url=" + urlTemplate(r.URL) + ",\n")
	b.WriteString("        method=" + quote(strings.ToUpper(r.Method)) + ",\n")
	if len(params.Query) > 0 {
		b.WriteString("        params=" + paramDict(params.Query) + ",\n")
	}
	if len(headers) > 0 {
		b.WriteString("        headers={" + strings.Join(headers, ", ") + "},\n")
	}
	if len(params.Cookie) > 0 {
		b.WriteString("        cookies=" + paramDict(params.Cookie) + ",\n")
	}
	if r.RequestBody != nil {
		b.WriteString("        data=data,\n")
	}
	b.WriteString("        override=override,\n")
	b.WriteString("    )\n")
	b.WriteString("    return " + decode + "\n")
	return b.String(), nil
}

func (g *Generator) response(rb *ir.ResponseBody, hint string) (typ, decode string, err error) {
	switch emitter.DecodeResponse(rb) {
	case emitter.RespJSON:
		typ = "Any"
		if rb.Type != nil {
			if typ, err = g.ref(rb.Type, hint); err != nil {
				return "", "", err
			}
		}
		return typ, "ud.Result.json(r)", nil
	case emitter.RespText:
		return "str", "ud.Result.text(r)", nil
	case emitter.RespBinary:
		return "bytes", "ud.Result.bytes(r)", nil
	}
	return "None", "ud.Result.empty(r)", nil
}

func (g *Generator) encodeBody(enc emitter.BodyEncoding, body *ir.Type) ([]string, error) {
	switch enc {
	case emitter.BodyJSON:
		return []string{"data = ud.Body.json(body)"}, nil
	case emitter.BodyText:
		return []string{"data = ud.Body.text(body)"}, nil
	case emitter.BodyBinary:
		return []string{"data = ud.Body.bytes(body)"}, nil
	}

	parts, err := emitter.FormParts(body)
	if err != nil {
		return nil, err
	}
	lines := []string{"form = ud.Form.multipart()"}
	if enc == emitter.BodyForm {
		lines[0] = "form = ud.Form.urlencoded()"
	}
	for _, p := range parts {
		key := quote(p.Name)
		v := "body[" + key + "]"
		var call string
		switch p.Kind {
		case emitter.PartFile:
			call = "form.file(" + key + ", " + v + ")"
		case emitter.PartJSON:
			call = "form.json(" + key + ", " + v + ")"
		default:
			call = "form.field(" + key + ", " + rawValue(v, p.Type) + ")"
		}
		if p.Conditional {
			lines = append(lines, "if body.get("+key+") is not None:", "    "+call)
			continue
		}
		lines = append(lines, call)
	}
	return append(lines, "data = ud.Body.form(form)"), nil
}

// rawValue renders a plain form field as a str.
func rawValue(v string, t *ir.Type) string {
	if t.IsPrim(ir.Str) {
		return v
	}
	if _, ok := t.Deref().Kind.(ir.StrEnum); ok {
		return v
	}
	return "str(" + v + ")"
}

// urlTemplate renders an f-string with quoted path parameters.
func urlTemplate(url string) string {
	var b strings.Builder
	b.WriteString(`f"`)
	for _, seg := range emitter.SplitURL(url) {
		if seg.Param {
			b.WriteString("{quote(str(" + paramIdent(seg.Text) + "), safe='')}")
			continue
		}
		lit := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "{", "{{", "}", "}}").Replace(seg.Text)
		b.WriteString(lit)
	}
	b.WriteString(`"`)
	return b.String()
}

func paramDict(ps []ir.Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = quote(p.Name) + ": " + paramIdent(p.Name)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func optional(t string) string {
	if t == "None" || strings.HasSuffix(t, " | None") {
		return t
	}
	return t + " | None"
}
