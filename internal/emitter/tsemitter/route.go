package tsemitter

import (
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/ir"
)

// Route renders the async request function of r.
func (g *Generator) Route(r *ir.Route) (string, error) {
	params := emitter.PartitionParams(r)

	out, read, err := g.response(r.ResponseBody)
	if err != nil {
		return "", err
	}

	var inputs []string
	if len(r.Params) > 0 {
		decl, allOptional, err := g.paramsType(params.All())
		if err != nil {
			return "", err
		}
		if allOptional {
			decl += " = {}"
		}
		inputs = append(inputs, "params: "+decl)
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
		inputs = append(inputs, "body: "+bodyType)
		enc, err := emitter.RequestEncoding(rb)
		if err != nil {
			return "", err
		}
		if enc != emitter.BodyMultipart {
			headers = append(headers, "'Content-Type': '"+ir.MediaType(rb.ContentType)+"'")
		}
		data, err = g.encodeBody(enc, rb.Type)
		if err != nil {
			return "", err
		}
	} else {
		data = []string{"const data = undefined"}
	}
	inputs = append(inputs, "override: Partial<ud.HttpxProps> = {}")

	for _, p := range params.Header {
		headers = append(headers, propName(p.Name)+": "+access("params", p.Name))
	}
	headers = append(headers, "...ovh")

	var b strings.Builder
	writeDoc(&b, "", r.Doc)
	b.WriteString("export async function " + r.Name + "(" + strings.Join(inputs, ", ") + "): Promise<ud.Result<" + out + ">> {\n")
	for _, line := range data {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  const ovh = override.headers || {}\n")
	b.WriteString("  delete override.headers\n")
	b.WriteString("  const r = await ud.httpx({\n")
	b.WriteString("    url: " + urlTemplate(r.URL) + ",\n")
	b.WriteString("    method: '" + strings.ToUpper(r.Method) + "',\n")
	b.WriteString("    params: " + paramObject(params.Query) + ",\n")
	if len(params.Cookie) > 0 {
		b.WriteString("    cookies: " + paramObject(params.Cookie) + ",\n")
	}
	b.WriteString("    headers: { " + strings.Join(headers, ", ") + " },\n")
	b.WriteString("    data,\n")
	b.WriteString("    ...override,\n")
	b.WriteString("  })\n")
	b.WriteString("  return {\n")
	b.WriteString("    r: r.clone(),\n")
	b.WriteString("    status: r.status,\n")
	b.WriteString("    body: " + read + ",\n")
	b.WriteString("    ok(): this is ud.Ok<" + out + "> {\n")
	b.WriteString("      return this.status == 200\n")
	b.WriteString("    },\n")
	b.WriteString("    err(): this is ud.Err {\n")
	b.WriteString("      return !this.ok()\n")
	b.WriteString("    },\n")
	b.WriteString("  } as ud.Result<" + out + ">\n")
	b.WriteString("}\n")
	return b.String(), nil
}

func (g *Generator) response(rb *ir.ResponseBody) (typ, read string, err error) {
	switch emitter.DecodeResponse(rb) {
	case emitter.RespJSON:
		if rb.Type == nil {
			return "unknown", "await r.json()", nil
		}
		typ, err = g.ref(rb.Type)
		return typ, "await r.json()", err
	case emitter.RespText:
		return "string", "await r.text()", nil
	case emitter.RespBinary:
		return "ArrayBuffer", "await r.arrayBuffer()", nil
	}
	return "void", "undefined as void", nil
}

func (g *Generator) paramsType(ps []ir.Param) (string, bool, error) {
	parts := make([]string, len(ps))
	allOptional := true
	for i, p := range ps {
		t, err := g.ref(p.Type)
		if err != nil {
			return "", false, err
		}
		opt := "?"
		if p.Required {
			opt = ""
			allOptional = false
		}
		parts[i] = propName(p.Name) + opt + ": " + t
	}
	return "{ " + strings.Join(parts, "; ") + " }", allOptional, nil
}

func (g *Generator) encodeBody(enc emitter.BodyEncoding, body *ir.Type) ([]string, error) {
	switch enc {
	case emitter.BodyJSON:
		return []string{"const data = JSON.stringify(body)"}, nil
	case emitter.BodyText, emitter.BodyBinary:
		return []string{"const data = body"}, nil
	}

	parts, err := emitter.FormParts(body)
	if err != nil {
		return nil, err
	}
	form := enc == emitter.BodyForm
	lines := []string{"const data = new FormData()"}
	if form {
		lines[0] = "const data = new URLSearchParams()"
	}
	for _, p := range parts {
		v := access("body", p.Name)
		var value string
		switch {
		case p.Kind == emitter.PartJSON && form:
			value = "JSON.stringify(" + v + ")"
		case p.Kind == emitter.PartJSON:
			value = "new Blob([JSON.stringify(" + v + ")], { type: 'application/json' })"
		case p.Kind == emitter.PartFile && !form:
			value = v
		case p.Type.IsPrim(ir.Str):
			value = v
		default:
			if _, ok := p.Type.Deref().Kind.(ir.StrEnum); ok {
				value = v
			} else {
				value = "String(" + v + ")"
			}
		}
		line := "data.set(" + squote(p.Name) + ", " + value + ")"
		if p.Conditional {
			line = "if (" + v + " != null) " + line
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// urlTemplate turns /pets/{id} into a template literal with encoded
// path parameters.
func urlTemplate(url string) string {
	var b strings.Builder
	b.WriteString("`")
	for _, seg := range emitter.SplitURL(url) {
		if seg.Param {
			b.WriteString("${encodeURIComponent(String(" + access("params", seg.Text) + "))}")
			continue
		}
		b.WriteString(strings.NewReplacer("`", "\\`", "$", "\\$").Replace(seg.Text))
	}
	b.WriteString("`")
	return b.String()
}

func paramObject(ps []ir.Param) string {
	if len(ps) == 0 {
		return "{}"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = propName(p.Name) + ": " + access("params", p.Name)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
