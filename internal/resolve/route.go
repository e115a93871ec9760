package resolve

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// ResolveRoute resolves one operation of a path item.
func (r *Resolver) ResolveRoute(item *spec.PathItem, op *spec.Operation) (*ir.Route, error) {
	route := &ir.Route{
		URL:         item.Path,
		Method:      string(op.Method),
		OperationID: op.OperationID,
		Doc:         routeDoc(op),
	}
	wrap := func(err error) error { return errors.Wrapf(err, "%s", route.ID()) }

	for _, p := range mergeParams(item.Parameters, op.Parameters) {
		param, err := r.param(p)
		if err != nil {
			return nil, wrap(err)
		}
		route.Params = append(route.Params, param)
	}

	if op.RequestBody != nil {
		body, err := r.requestBody(op.RequestBody)
		if err != nil {
			return nil, wrap(err)
		}
		route.RequestBody = body
	}

	if resp, ok := op.Response("200"); ok && len(resp.Content) > 0 {
		media := pickResponse(resp.Content)
		out := &ir.ResponseBody{ContentType: media.Mime}
		if media.Schema != nil {
			t, err := r.Resolve("", media.Schema, Ancestors{})
			if err != nil {
				return nil, wrap(errors.Wrap(err, "response"))
			}
			out.Type = t
		}
		route.ResponseBody = out
	}

	route.Name = r.uniqueName(r.nameRoute(item.Path, op.Method, isList(route)))
	return route, nil
}

func (r *Resolver) param(p spec.Parameter) (ir.Param, error) {
	in := ir.ParamIn(strings.ToLower(p.In))
	switch in {
	case ir.InPath, ir.InQuery, ir.InHeader, ir.InCookie:
	default:
		return ir.Param{}, ir.Errorf(ir.UnsupportedSchema, "parameter %s in %q", p.Name, p.In)
	}
	if p.Schema == nil {
		return ir.Param{}, ir.Errorf(ir.MissingParameterSchema, "%s", p.Name)
	}
	t, err := r.Resolve("", p.Schema, Ancestors{})
	if err != nil {
		return ir.Param{}, errors.Wrapf(err, "parameter %s", p.Name)
	}
	return ir.Param{
		Name:     p.Name,
		In:       in,
		Required: p.Required || in == ir.InPath,
		Type:     t,
	}, nil
}

func (r *Resolver) requestBody(rb *spec.RequestBody) (*ir.RequestBody, error) {
	switch len(rb.Content) {
	case 0:
		return nil, nil
	case 1:
	default:
		mimes := make([]string, 0, len(rb.Content))
		for _, m := range rb.Content {
			mimes = append(mimes, m.Mime)
		}
		return nil, ir.Errorf(ir.MultipleRequestContentTypes, "%s", strings.Join(mimes, ", "))
	}
	media := rb.Content[0]
	if media.Schema == nil {
		return nil, ir.Errorf(ir.UnsupportedSchema, "request body %s has no schema", media.Mime)
	}
	t, err := r.Resolve("", media.Schema, Ancestors{})
	if err != nil {
		return nil, errors.Wrap(err, "request body")
	}
	return &ir.RequestBody{ContentType: media.Mime, Type: t}, nil
}

// mergeParams overlays operation parameters on path-level ones. An
// operation parameter replaces the path-level one with the same location
// and name in place; new ones are appended.
func mergeParams(pathLevel, opLevel []spec.Parameter) []spec.Parameter {
	out := append([]spec.Parameter(nil), pathLevel...)
	for _, p := range opLevel {
		replaced := false
		for i := range out {
			if out[i].Name == p.Name && strings.EqualFold(out[i].In, p.In) {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}

// pickResponse prefers a JSON body and otherwise takes the first declared.
func pickResponse(content []spec.Media) spec.Media {
	for _, m := range content {
		if ir.MediaType(m.Mime) == ir.ContentJSON {
			return m
		}
	}
	for _, m := range content {
		if ir.IsJSON(m.Mime) {
			return m
		}
	}
	return content[0]
}

func isList(route *ir.Route) bool {
	if route.ResponseBody == nil || route.ResponseBody.Type == nil {
		return false
	}
	_, ok := route.ResponseBody.Type.Deref().Kind.(ir.Array)
	return ok
}

func routeDoc(op *spec.Operation) string {
	summary, desc := strings.TrimSpace(op.Summary), strings.TrimSpace(op.Description)
	switch {
	case summary == "":
		return desc
	case desc == "" || desc == summary:
		return summary
	}
	return summary + "\n" + desc
}

// uniqueName hands out name, or name2, name3... when it is already taken.
func (r *Resolver) uniqueName(name string) string {
	n := r.routeNames[name]
	r.routeNames[name] = n + 1
	if n == 0 {
		return name
	}
	for i := n + 1; ; i++ {
		candidate := name + strconv.Itoa(i)
		if r.routeNames[candidate] == 0 {
			r.routeNames[candidate] = 1
			return candidate
		}
	}
}
