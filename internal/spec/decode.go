package spec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2client/internal/ir"
)

// Decode parses an OpenAPI 3.x document from YAML or JSON bytes. Maps are
// read from the yaml.Node tree so declaration order survives into the model.
func Decode(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: %v", err), Cause: err}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &SpecError{Code: ParseError, Message: "parse spec: empty document"}
	}
	top := follow(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, &SpecError{Code: ParseError, Message: "parse spec: top level is not a mapping", JSONPointer: "#"}
	}

	d := &decoder{active: map[*yaml.Node]bool{}}
	if comps := lookup(top, "components"); comps != nil {
		d.parameters = lookup(comps, "parameters")
		d.requestBodies = lookup(comps, "requestBodies")
		d.responses = lookup(comps, "responses")
	}

	doc := &Document{Version: scalar(lookup(top, "openapi"))}
	if info := lookup(top, "info"); info != nil {
		doc.Title = scalar(lookup(info, "title"))
		doc.Description = scalar(lookup(info, "description"))
	}

	if comps := lookup(top, "components"); comps != nil {
		for _, kv := range pairs(lookup(comps, "schemas")) {
			ptr := "#/components/schemas/" + escapePointer(kv.key)
			s, err := d.schema(kv.value, ptr)
			if err != nil {
				return nil, errors.Wrapf(err, "schema %s", kv.key)
			}
			doc.Schemas = append(doc.Schemas, NamedSchema{Name: kv.key, Schema: s})
		}
	}

	for _, kv := range pairs(lookup(top, "paths")) {
		item, err := d.pathItem(kv.key, kv.value)
		if err != nil {
			return nil, err
		}
		doc.Paths = append(doc.Paths, item)
	}
	return doc, nil
}

type decoder struct {
	parameters    *yaml.Node
	requestBodies *yaml.Node
	responses     *yaml.Node
	// active holds the schema nodes on the current decoding path; meeting one
	// again through an alias is a cycle no $ref name can break.
	active map[*yaml.Node]bool
}

func (d *decoder) pathItem(path string, n *yaml.Node) (PathItem, error) {
	ptr := "#/paths/" + escapePointer(path)
	item := PathItem{Path: path}
	n = follow(n)
	if n.Kind != yaml.MappingNode {
		return item, &SpecError{Code: ParseError, Message: fmt.Sprintf("path item %s is not a mapping", path), JSONPointer: ptr}
	}
	params, err := d.parameterList(lookup(n, "parameters"), ptr+"/parameters")
	if err != nil {
		return item, err
	}
	item.Parameters = params
	for _, m := range Methods {
		on := lookup(n, string(m))
		if on == nil {
			continue
		}
		op, err := d.operation(m, on, ptr+"/"+string(m))
		if err != nil {
			return item, err
		}
		item.Operations = append(item.Operations, op)
	}
	return item, nil
}

func (d *decoder) operation(m HttpMethod, n *yaml.Node, ptr string) (Operation, error) {
	op := Operation{
		Method:      m,
		OperationID: scalar(lookup(n, "operationId")),
		Summary:     scalar(lookup(n, "summary")),
		Description: scalar(lookup(n, "description")),
		Tags:        scalars(lookup(n, "tags")),
	}
	params, err := d.parameterList(lookup(n, "parameters"), ptr+"/parameters")
	if err != nil {
		return op, err
	}
	op.Parameters = params

	if rb := lookup(n, "requestBody"); rb != nil {
		rb, err = d.component(rb, d.requestBodies, "requestBodies")
		if err != nil {
			return op, err
		}
		content, err := d.content(lookup(rb, "content"), ptr+"/requestBody/content")
		if err != nil {
			return op, err
		}
		op.RequestBody = &RequestBody{Required: boolean(lookup(rb, "required")), Content: content}
	}

	for _, kv := range pairs(lookup(n, "responses")) {
		rn, err := d.component(kv.value, d.responses, "responses")
		if err != nil {
			return op, err
		}
		content, err := d.content(lookup(rn, "content"), ptr+"/responses/"+escapePointer(kv.key)+"/content")
		if err != nil {
			return op, err
		}
		op.Responses = append(op.Responses, Response{
			Status:      kv.key,
			Description: scalar(lookup(rn, "description")),
			Content:     content,
		})
	}
	return op, nil
}

func (d *decoder) parameterList(n *yaml.Node, ptr string) ([]Parameter, error) {
	if n == nil {
		return nil, nil
	}
	n = follow(n)
	var out []Parameter
	for i, pn := range n.Content {
		pn, err := d.component(pn, d.parameters, "parameters")
		if err != nil {
			return nil, err
		}
		p := Parameter{
			Name:     scalar(lookup(pn, "name")),
			In:       scalar(lookup(pn, "in")),
			Required: boolean(lookup(pn, "required")),
		}
		ip := ptr + "/" + strconv.Itoa(i)
		if sn := lookup(pn, "schema"); sn != nil {
			if p.Schema, err = d.schema(sn, ip+"/schema"); err != nil {
				return nil, err
			}
		} else if cn := lookup(pn, "content"); cn != nil {
			// A parameter may carry its schema in a single-entry content map.
			media, err := d.content(cn, ip+"/content")
			if err != nil {
				return nil, err
			}
			if len(media) > 0 {
				p.Schema = media[0].Schema
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *decoder) content(n *yaml.Node, ptr string) ([]Media, error) {
	var out []Media
	for _, kv := range pairs(n) {
		m := Media{Mime: kv.key}
		if sn := lookup(kv.value, "schema"); sn != nil {
			s, err := d.schema(sn, ptr+"/"+escapePointer(kv.key)+"/schema")
			if err != nil {
				return nil, err
			}
			m.Schema = s
		}
		out = append(out, m)
	}
	return out, nil
}

// component follows a $ref into one of the components sections.
func (d *decoder) component(n, section *yaml.Node, sectionName string) (*yaml.Node, error) {
	n = follow(n)
	ref := scalar(lookup(n, "$ref"))
	if ref == "" {
		return n, nil
	}
	prefix := "#/components/" + sectionName + "/"
	if !strings.HasPrefix(ref, prefix) {
		return nil, ir.Errorf(ir.UnresolvedReference, "%s", ref)
	}
	target := lookup(section, unescapePointer(strings.TrimPrefix(ref, prefix)))
	if target == nil {
		return nil, ir.Errorf(ir.UnresolvedReference, "%s", ref)
	}
	return follow(target), nil
}

func (d *decoder) schema(n *yaml.Node, ptr string) (*SchemaOrRef, error) {
	if n.Kind == yaml.AliasNode {
		if d.active[n.Alias] {
			return nil, ir.Errorf(ir.SchemaCycleWithoutName, "%s", ptr)
		}
		return d.schema(n.Alias, ptr)
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!bool" {
		// Boolean schemas: true accepts anything, false nothing.
		return &SchemaOrRef{Schema: &Schema{}}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("schema at %s is not a mapping", ptr), JSONPointer: ptr}
	}
	if ref := lookup(n, "$ref"); ref != nil {
		return &SchemaOrRef{Ref: &SchemaRef{Ref: scalar(ref)}}, nil
	}

	d.active[n] = true
	defer delete(d.active, n)

	s := &Schema{
		Format:      scalar(lookup(n, "format")),
		Title:       scalar(lookup(n, "title")),
		Description: scalar(lookup(n, "description")),
		Required:    scalars(lookup(n, "required")),
		Nullable:    boolean(lookup(n, "nullable")),
		UserDefined: boolean(lookup(n, "x-user-defined")),
	}
	if tn := lookup(n, "type"); tn != nil {
		if tn.Kind == yaml.SequenceNode {
			s.Types = scalars(tn)
		} else {
			s.Types = []string{scalar(tn)}
		}
	}
	if en := lookup(n, "enum"); en != nil {
		if err := en.Decode(&s.Enum); err != nil {
			return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("enum at %s: %v", ptr, err), JSONPointer: ptr + "/enum", Cause: err}
		}
	}
	if cn := lookup(n, "const"); cn != nil {
		if err := cn.Decode(&s.Const); err != nil {
			return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("const at %s: %v", ptr, err), JSONPointer: ptr + "/const", Cause: err}
		}
		s.HasConst = true
	}
	var err error
	if s.MinItems, err = integer(lookup(n, "minItems"), ptr+"/minItems"); err != nil {
		return nil, err
	}
	if s.MaxItems, err = integer(lookup(n, "maxItems"), ptr+"/maxItems"); err != nil {
		return nil, err
	}

	for _, kv := range pairs(lookup(n, "properties")) {
		ps, err := d.schema(kv.value, ptr+"/properties/"+escapePointer(kv.key))
		if err != nil {
			return nil, err
		}
		s.Properties = append(s.Properties, Property{Name: kv.key, Schema: ps})
	}

	if in := lookup(n, "items"); in != nil {
		switch follow(in).Kind {
		case yaml.SequenceNode:
			// Draft-04 tuple form.
			if s.PrefixItems, err = d.schemaList(follow(in), ptr+"/items"); err != nil {
				return nil, err
			}
		case yaml.ScalarNode:
			// items: false closes a prefixItems tuple.
		default:
			if s.Items, err = d.schema(in, ptr+"/items"); err != nil {
				return nil, err
			}
		}
	}
	if pn := lookup(n, "prefixItems"); pn != nil {
		if s.PrefixItems, err = d.schemaList(follow(pn), ptr+"/prefixItems"); err != nil {
			return nil, err
		}
	}
	if s.AllOf, err = d.schemaList(lookup(n, "allOf"), ptr+"/allOf"); err != nil {
		return nil, err
	}
	if s.OneOf, err = d.schemaList(lookup(n, "oneOf"), ptr+"/oneOf"); err != nil {
		return nil, err
	}
	if s.AnyOf, err = d.schemaList(lookup(n, "anyOf"), ptr+"/anyOf"); err != nil {
		return nil, err
	}
	return &SchemaOrRef{Schema: s}, nil
}

func (d *decoder) schemaList(n *yaml.Node, ptr string) ([]*SchemaOrRef, error) {
	if n == nil {
		return nil, nil
	}
	n = follow(n)
	if n.Kind != yaml.SequenceNode {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("%s is not a list", ptr), JSONPointer: ptr}
	}
	out := make([]*SchemaOrRef, 0, len(n.Content))
	for i, c := range n.Content {
		s, err := d.schema(c, ptr+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

type pair struct {
	key   string
	value *yaml.Node
}

// pairs lists a mapping's entries in document order.
func pairs(n *yaml.Node) []pair {
	if n == nil {
		return nil
	}
	n = follow(n)
	if n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, pair{key: n.Content[i].Value, value: n.Content[i+1]})
	}
	return out
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil {
		return nil
	}
	n = follow(n)
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func follow(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func scalar(n *yaml.Node) string {
	n = follow(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

func scalars(n *yaml.Node) []string {
	n = follow(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(n.Content))
	for _, c := range n.Content {
		out = append(out, scalar(c))
	}
	return out
}

func boolean(n *yaml.Node) bool {
	v, _ := strconv.ParseBool(scalar(n))
	return v
}

func integer(n *yaml.Node, ptr string) (*int, error) {
	if n == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(scalar(n))
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("%s: expected integer", ptr), JSONPointer: ptr, Cause: err}
	}
	return &v, nil
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapePointer(s string) string   { return pointerEscaper.Replace(s) }
func unescapePointer(s string) string { return pointerUnescaper.Replace(s) }
