package ir

import "strings"

// ParamIn is where a parameter travels.
type ParamIn string

const (
	InPath   ParamIn = "path"
	InQuery  ParamIn = "query"
	InHeader ParamIn = "header"
	InCookie ParamIn = "cookie"
)

// Route is one resolved operation.
type Route struct {
	Name        string
	URL         string // template with {param} placeholders
	Method      string // lowercase http verb
	OperationID string
	Params      []Param
	// RequestBody is nil when the operation takes no body.
	RequestBody *RequestBody
	// ResponseBody is nil when there is no 200 response or it has no content.
	ResponseBody *ResponseBody
	Doc          string
}

// Param is one operation parameter.
type Param struct {
	Name     string
	In       ParamIn
	Required bool
	Type     *Type
}

type RequestBody struct {
	ContentType string
	Type        *Type
}

type ResponseBody struct {
	ContentType string
	// Type is nil when the response content declares no schema.
	Type *Type
}

// ID identifies the operation in error messages, e.g. "GET /pets/{id}".
func (r *Route) ID() string {
	return strings.ToUpper(r.Method) + " " + r.URL
}

// Content types with dedicated encodings.
const (
	ContentJSON      = "application/json"
	ContentText      = "text/plain"
	ContentMultipart = "multipart/form-data"
	ContentForm      = "application/x-www-form-urlencoded"
	ContentBinary    = "application/octet-stream"
)

// MediaType strips parameters from a content type and lowercases it.
func MediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// IsJSON reports whether ct carries a JSON document.
func IsJSON(ct string) bool {
	mt := MediaType(ct)
	return mt == ContentJSON || strings.HasSuffix(mt, "+json")
}
