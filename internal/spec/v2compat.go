package spec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"gopkg.in/yaml.v3"
)

// convertV2ToV3 converts a Swagger 2.0 document to OpenAPI 3 JSON. kin-openapi
// types only implement the encoding/json interfaces, so the YAML input is
// normalized to JSON first. Object keys come out sorted.
func convertV2ToV3(data []byte) ([]byte, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	generic = jsonCompatible(generic)
	if root, _ := generic.(map[string]any); root != nil {
		if info, _ := root["info"].(map[string]any); asString(info["title"]) == "" {
			return nil, errors.New("swagger 2.0 document has no info.title")
		}
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(asJSON, &v2); err != nil {
		return nil, err
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v3)
}

// jsonCompatible rewrites YAML maps with non-string keys (e.g. unquoted
// status codes) into string-keyed maps.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, x := range t {
			t[k] = jsonCompatible(x)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[fmt.Sprint(k)] = jsonCompatible(x)
		}
		return out
	case []any:
		for i, x := range t {
			t[i] = jsonCompatible(x)
		}
		return t
	default:
		return v
	}
}

// preprocessV2ForCompatibility rewrites Swagger 2.0 operations that
// openapi2conv rejects:
//   - several body parameters are merged into one object-typed body;
//   - body parameters mixed with formData become formData fields, and the
//     operation consumes multipart/form-data.
//
// On error the original bytes are returned unchanged.
func preprocessV2ForCompatibility(data []byte) ([]byte, bool, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok || len(paths) == 0 {
		return data, false, nil
	}
	modified := false
	for _, pim := range paths {
		pi, ok := pim.(map[string]any)
		if !ok {
			continue
		}
		for method, opm := range pi {
			switch strings.ToLower(method) {
			case "get", "post", "put", "delete", "patch", "options", "head":
			default:
				continue
			}
			if op, ok := opm.(map[string]any); ok && rewriteV2Operation(op) {
				modified = true
			}
		}
	}
	if !modified {
		return data, false, nil
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

func rewriteV2Operation(op map[string]any) bool {
	params, ok := op["parameters"].([]any)
	if !ok || len(params) == 0 {
		return false
	}
	bodies, hasFormData := 0, false
	for _, p := range params {
		switch strings.ToLower(paramIn(p)) {
		case "body":
			bodies++
		case "formdata":
			hasFormData = true
		}
	}
	switch {
	case bodies > 0 && hasFormData:
		op["parameters"] = bodyParamsToFormData(params)
		consumes, _ := op["consumes"].([]any)
		if !containsString(consumes, "multipart/form-data") {
			op["consumes"] = append(consumes, "multipart/form-data")
		}
		return true
	case bodies > 1:
		op["parameters"] = mergeBodyParams(params)
		return true
	default:
		return false
	}
}

func paramIn(p any) string {
	pm, _ := p.(map[string]any)
	return asString(pm["in"])
}

func bodyParamsToFormData(params []any) []any {
	out := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		if strings.EqualFold(asString(pm["in"]), "body") {
			out = append(out, formDataFromBodyParam(pm))
			continue
		}
		out = append(out, pm)
	}
	return out
}

// mergeBodyParams folds every body parameter into a single leading "body"
// parameter whose schema has one property per original parameter.
func mergeBodyParams(params []any) []any {
	props := map[string]any{}
	var required []any
	rest := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		if !strings.EqualFold(asString(pm["in"]), "body") {
			rest = append(rest, p)
			continue
		}
		name := paramName(pm)
		schema := extractSchemaFromParam(pm)
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		props[name] = schema
		if req, _ := pm["required"].(bool); req {
			required = append(required, name)
		}
	}
	bodySchema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		bodySchema["required"] = required
	}
	merged := map[string]any{"in": "body", "name": "body", "schema": bodySchema}
	return append([]any{merged}, rest...)
}

func paramName(pm map[string]any) string {
	if name := asString(pm["name"]); name != "" {
		return name
	}
	return "field"
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

// extractSchemaFromParam returns the parameter's schema, synthesizing one
// from type/items/format when it has none.
func extractSchemaFromParam(pm map[string]any) map[string]any {
	if sch, ok := pm["schema"].(map[string]any); ok {
		return sch
	}
	t, _ := pm["type"].(string)
	if t == "" {
		return nil
	}
	m := map[string]any{"type": t}
	if it, ok := pm["items"].(map[string]any); ok {
		m["items"] = it
	}
	if f, ok := pm["format"].(string); ok && f != "" {
		m["format"] = f
	}
	return m
}

func formDataFromBodyParam(pm map[string]any) map[string]any {
	out := map[string]any{"in": "formData", "name": paramName(pm)}
	if desc, ok := pm["description"].(string); ok && desc != "" {
		out["description"] = desc
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	schema := extractSchemaFromParam(pm)
	if schema == nil {
		schema = map[string]any{}
	}
	typ, _ := schema["type"].(string)
	if typ == "" {
		// formData cannot carry a referenced object.
		typ = "string"
	}
	out["type"] = typ
	if items, ok := schema["items"]; ok {
		out["items"] = items
	}
	if f, ok := schema["format"].(string); ok && f != "" {
		out["format"] = f
	}
	return out
}
