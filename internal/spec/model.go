package spec

// Raw document model. Every slice keeps the order the entries were declared
// in the source document; nothing here is resolved beyond parameter,
// request body and response $refs.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// Methods is the fixed order operations are visited in within a path item.
var Methods = []HttpMethod{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE}

type Document struct {
	// Version is the value of the openapi key after any Swagger conversion.
	Version     string
	Title       string
	Description string
	Schemas     []NamedSchema
	Paths       []PathItem
}

type NamedSchema struct {
	Name   string
	Schema *SchemaOrRef
}

// Schema returns the component schema with the given name.
func (d *Document) Schema(name string) (*SchemaOrRef, bool) {
	for _, ns := range d.Schemas {
		if ns.Name == name {
			return ns.Schema, true
		}
	}
	return nil, false
}

type PathItem struct {
	Path       string
	Parameters []Parameter
	Operations []Operation
}

type Operation struct {
	Method      HttpMethod
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response
}

// Response returns the response declared for status, if any.
func (o *Operation) Response(status string) (*Response, bool) {
	for i := range o.Responses {
		if o.Responses[i].Status == status {
			return &o.Responses[i], true
		}
	}
	return nil, false
}

type Parameter struct {
	Name     string
	In       string // path|query|header|cookie
	Required bool
	// Schema is nil when the parameter declares none.
	Schema *SchemaOrRef
}

type RequestBody struct {
	Required bool
	Content  []Media
}

type Response struct {
	Status      string // 200, 4xx, default
	Description string
	Content     []Media
}

type Media struct {
	Mime   string
	Schema *SchemaOrRef
}

// Property is one entry of a schema's properties map.
type Property struct {
	Name   string
	Schema *SchemaOrRef
}

type Schema struct {
	// Types holds the type keyword; OpenAPI 3.1 allows a list.
	Types       []string
	Format      string
	Title       string
	Description string
	Enum        []any
	Const       any
	HasConst    bool
	Properties  []Property
	Required    []string
	Items       *SchemaOrRef
	PrefixItems []*SchemaOrRef
	MinItems    *int
	MaxItems    *int
	AllOf       []*SchemaOrRef
	AnyOf       []*SchemaOrRef
	OneOf       []*SchemaOrRef
	Nullable    bool
	// UserDefined is set by the x-user-defined extension.
	UserDefined bool
}

// HasType reports whether t is among the declared types.
func (s *Schema) HasType(t string) bool {
	for _, x := range s.Types {
		if x == t {
			return true
		}
	}
	return false
}

// IsRequired reports whether the named property is listed as required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

type SchemaRef struct{ Ref string }

// Name returns the component name a local reference points at.
func (r *SchemaRef) Name() string {
	const prefix = "#/components/schemas/"
	if len(r.Ref) > len(prefix) && r.Ref[:len(prefix)] == prefix {
		return unescapePointer(r.Ref[len(prefix):])
	}
	return r.Ref
}

type SchemaOrRef struct {
	Schema *Schema
	Ref    *SchemaRef
}
