package emitter

import (
	"strings"

	"github.com/mark3labs/swagger2client/internal/ir"
)

// Params groups a route's parameters by location, keeping their order.
type Params struct {
	Path   []ir.Param
	Query  []ir.Param
	Header []ir.Param
	Cookie []ir.Param
}

// All returns path, query, header and cookie parameters in that order.
func (p Params) All() []ir.Param {
	out := make([]ir.Param, 0, len(p.Path)+len(p.Query)+len(p.Header)+len(p.Cookie))
	out = append(out, p.Path...)
	out = append(out, p.Query...)
	out = append(out, p.Header...)
	return append(out, p.Cookie...)
}

func PartitionParams(r *ir.Route) Params {
	var p Params
	for _, param := range r.Params {
		switch param.In {
		case ir.InPath:
			p.Path = append(p.Path, param)
		case ir.InQuery:
			p.Query = append(p.Query, param)
		case ir.InHeader:
			p.Header = append(p.Header, param)
		case ir.InCookie:
			p.Cookie = append(p.Cookie, param)
		}
	}
	return p
}

// Segment is a piece of a URL template: literal text or a parameter name.
type Segment struct {
	Text  string
	Param bool
}

// SplitURL breaks "/pets/{id}" into its literal and parameter segments.
func SplitURL(url string) []Segment {
	var out []Segment
	for url != "" {
		open := strings.IndexByte(url, '{')
		if open < 0 {
			out = append(out, Segment{Text: url})
			break
		}
		end := strings.IndexByte(url[open:], '}')
		if end < 0 {
			out = append(out, Segment{Text: url})
			break
		}
		if open > 0 {
			out = append(out, Segment{Text: url[:open]})
		}
		out = append(out, Segment{Text: url[open+1 : open+end], Param: true})
		url = url[open+end+1:]
	}
	return out
}

// PartKind is how one field of a form body travels.
type PartKind int

const (
	// PartRaw sends the value as a plain form field (numbers and booleans
	// stringified).
	PartRaw PartKind = iota
	// PartFile sends binary content.
	PartFile
	// PartJSON serializes the value to an application/json part.
	PartJSON
)

// FormPart is the encoding of one multipart or urlencoded field.
type FormPart struct {
	Name string
	Kind PartKind
	// Type is the field type with any Option removed.
	Type *ir.Type
	// Conditional parts are attached only when the value is present.
	Conditional bool
}

// FormParts classifies the fields of a form body. The body must be
// object-like.
func FormParts(body *ir.Type) ([]FormPart, error) {
	fields, ok := ObjectFields(body)
	if !ok {
		return nil, ir.Errorf(ir.MultipartBodyMustBeObject, "%T", body.Deref().Kind)
	}
	parts := make([]FormPart, 0, len(fields))
	for _, f := range fields {
		t, optional := f.Type, false
		if opt, ok := t.Deref().Kind.(ir.Option); ok {
			t, optional = opt.Inner, true
		}
		part := FormPart{Name: f.Name, Type: t, Conditional: optional || !f.Required}
		switch k := t.Deref().Kind.(type) {
		case ir.Prim:
			if k.P == ir.File {
				part.Kind = PartFile
			} else {
				part.Kind = PartRaw
			}
		case ir.StrEnum:
			part.Kind = PartRaw
		default:
			part.Kind = PartJSON
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// BodyEncoding is how a request body is put on the wire.
type BodyEncoding int

const (
	BodyJSON BodyEncoding = iota
	BodyText
	BodyMultipart
	BodyForm
	BodyBinary
)

// RequestEncoding maps a request content type to its encoding.
func RequestEncoding(rb *ir.RequestBody) (BodyEncoding, error) {
	mt := ir.MediaType(rb.ContentType)
	switch {
	case ir.IsJSON(mt):
		return BodyJSON, nil
	case mt == ir.ContentText:
		return BodyText, nil
	case mt == ir.ContentMultipart:
		if _, ok := ObjectFields(rb.Type); !ok {
			return 0, ir.Errorf(ir.MultipartBodyMustBeObject, "%s", rb.ContentType)
		}
		return BodyMultipart, nil
	case mt == ir.ContentForm:
		if _, ok := ObjectFields(rb.Type); !ok {
			return 0, ir.Errorf(ir.MultipartBodyMustBeObject, "%s", rb.ContentType)
		}
		return BodyForm, nil
	case mt == ir.ContentBinary:
		return BodyBinary, nil
	}
	return 0, ir.Errorf(ir.UnsupportedContentType, "%s", rb.ContentType)
}

// ResponseDecoding is how a response body is read back.
type ResponseDecoding int

const (
	RespNone ResponseDecoding = iota
	RespJSON
	RespText
	RespBinary
)

func DecodeResponse(rb *ir.ResponseBody) ResponseDecoding {
	if rb == nil {
		return RespNone
	}
	mt := ir.MediaType(rb.ContentType)
	switch {
	case ir.IsJSON(mt):
		return RespJSON
	case mt == "*/*" && rb.Type != nil && !rb.Type.IsPrim(ir.File):
		return RespJSON
	case strings.HasPrefix(mt, "text/"):
		return RespText
	}
	return RespBinary
}

// Declarations lists the named types a target should declare, skipping
// hand-written ones.
func Declarations(m *ir.Model) []*ir.Type {
	out := make([]*ir.Type, 0, len(m.Types))
	for _, t := range m.Types {
		if t.UserDefined {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Lookup returns the named declaration of m called name.
func Lookup(m *ir.Model, name string) (*ir.Type, bool) {
	for _, t := range m.Types {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}
