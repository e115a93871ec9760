package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2client/internal/ir"
)

func lit(v string) *ir.Type { return ir.New(ir.StrEnum{Values: []string{v}}) }

func obj(fields ...ir.Field) *ir.Type { return ir.New(ir.Object{Fields: fields}) }

func field(name string, t *ir.Type) ir.Field { return ir.Field{Name: name, Type: t, Required: true} }

func names(fields []ir.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

func TestShape_DistributesOverUnion(t *testing.T) {
	t.Parallel()
	base := &ir.Type{Name: "Base", Kind: ir.Object{Fields: []ir.Field{field("id", ir.P(ir.Int))}}}
	union := ir.New(ir.Union{Alts: []*ir.Type{
		obj(field("kind", lit("circle")), field("radius", ir.P(ir.Float))),
		obj(field("kind", lit("square")), field("side", ir.P(ir.Float))),
	}})
	shape, err := Shape(ir.Combo{Parts: []*ir.Type{base, union}})
	require.NoError(t, err)

	assert.True(t, shape.Mergeable)
	assert.Same(t, union, shape.Union)
	assert.Equal(t, []string{"id"}, names(shape.Common))
	require.Len(t, shape.Alts, 2)
	assert.Equal(t, []string{"id", "kind", "radius"}, names(shape.Alts[0]))
	assert.Equal(t, []string{"id", "kind", "side"}, names(shape.Alts[1]))
}

func TestShape_MergesObjectsThroughAliases(t *testing.T) {
	t.Parallel()
	a := &ir.Type{Name: "A", Kind: ir.Object{Fields: []ir.Field{field("x", ir.P(ir.Str)), field("y", ir.P(ir.Str))}}}
	alias := &ir.Type{Name: "AliasA", Kind: ir.Ref{Name: "A", Target: a}}
	b := obj(field("y", ir.P(ir.Int)), field("z", ir.P(ir.Bool)))

	shape, err := Shape(ir.Combo{Parts: []*ir.Type{alias, b}})
	require.NoError(t, err)
	assert.Nil(t, shape.Union)
	assert.Equal(t, []string{"x", "y", "z"}, names(shape.Common))
	// The later part wins for y.
	assert.True(t, shape.Common[1].Type.IsPrim(ir.Int))
}

func TestShape_RejectsTwoUnions(t *testing.T) {
	t.Parallel()
	u := ir.New(ir.Union{Alts: []*ir.Type{obj(), obj()}})
	_, err := Shape(ir.Combo{Parts: []*ir.Type{u, u}})
	assert.True(t, ir.IsKind(err, ir.UnsupportedSchema))
}

func TestShape_NonObjectPart(t *testing.T) {
	t.Parallel()
	shape, err := Shape(ir.Combo{Parts: []*ir.Type{ir.P(ir.Str), obj(field("a", ir.P(ir.Str)))}})
	require.NoError(t, err)
	assert.False(t, shape.Mergeable)
	assert.Nil(t, shape.Common)
}

func TestSelectDiscriminant_MajorityVote(t *testing.T) {
	t.Parallel()
	alts := [][]ir.Field{
		{field("type", lit("a")), field("kind", lit("x"))},
		{field("kind", lit("y")), field("type", lit("b"))},
		{field("type", lit("c"))},
	}
	d, ok := SelectDiscriminant(alts)
	require.True(t, ok)
	assert.Equal(t, "type", d.Field)
	assert.Equal(t, []string{"a", "b", "c"}, d.Values)
	assert.Equal(t, []string{"A", "B", "C"}, d.Variants)
}

func TestSelectDiscriminant_KindOutvotesType(t *testing.T) {
	t.Parallel()
	alts := [][]ir.Field{
		{field("kind", lit("a")), field("n", ir.P(ir.Int))},
		{field("kind", lit("b"))},
		{field("type", lit("c"))},
	}
	d, ok := SelectDiscriminant(alts)
	assert.Equal(t, "kind", d.Field)
	// The third alternative has no kind, so the union stays untagged.
	assert.False(t, ok)
}

func TestSelectDiscriminant_TieGoesToFirstSeen(t *testing.T) {
	t.Parallel()
	alts := [][]ir.Field{
		{field("kind", lit("one")), field("type", lit("a"))},
		{field("type", lit("b")), field("kind", lit("two"))},
	}
	d, ok := SelectDiscriminant(alts)
	require.True(t, ok)
	assert.Equal(t, "kind", d.Field)
	assert.Equal(t, []string{"One", "Two"}, d.Variants)
}

func TestSelectDiscriminant_Untagged(t *testing.T) {
	t.Parallel()
	// The winner is missing from the second alternative.
	d, ok := SelectDiscriminant([][]ir.Field{
		{field("type", lit("a"))},
		{field("other", ir.P(ir.Str))},
	})
	assert.False(t, ok)
	assert.Equal(t, "type", d.Field)

	// Duplicate literals cannot be told apart.
	_, ok = SelectDiscriminant([][]ir.Field{
		{field("type", lit("same"))},
		{field("type", lit("same"))},
	})
	assert.False(t, ok)

	_, ok = SelectDiscriminant(nil)
	assert.False(t, ok)
}

func TestFormParts(t *testing.T) {
	t.Parallel()
	body := obj(
		field("name", ir.P(ir.Str)),
		field("file", ir.P(ir.File)),
		field("age", ir.P(ir.Int)),
		field("color", ir.New(ir.StrEnum{Values: []string{"red"}})),
		field("nick", ir.New(ir.Option{Inner: ir.P(ir.Str)})),
		ir.Field{Name: "note", Type: ir.P(ir.Str)},
		field("meta", obj(field("k", ir.P(ir.Str)))),
		field("tags", ir.New(ir.Array{Elem: ir.P(ir.Str)})),
	)
	parts, err := FormParts(body)
	require.NoError(t, err)
	require.Len(t, parts, 8)

	want := []struct {
		kind        PartKind
		conditional bool
	}{
		{PartRaw, false},
		{PartFile, false},
		{PartRaw, false},
		{PartRaw, false},
		{PartRaw, true},
		{PartRaw, true},
		{PartJSON, false},
		{PartJSON, false},
	}
	for i, w := range want {
		assert.Equal(t, w.kind, parts[i].Kind, parts[i].Name)
		assert.Equal(t, w.conditional, parts[i].Conditional, parts[i].Name)
	}
	// Option is peeled off the part type.
	assert.True(t, parts[4].Type.IsPrim(ir.Str))
}

func TestRequestEncoding(t *testing.T) {
	t.Parallel()
	object := obj(field("a", ir.P(ir.Str)))
	cases := map[string]BodyEncoding{
		"application/json":                  BodyJSON,
		"application/merge-patch+json":      BodyJSON,
		"text/plain; charset=utf-8":         BodyText,
		"multipart/form-data":               BodyMultipart,
		"application/x-www-form-urlencoded": BodyForm,
		"application/octet-stream":          BodyBinary,
	}
	for ct, want := range cases {
		got, err := RequestEncoding(&ir.RequestBody{ContentType: ct, Type: object})
		require.NoError(t, err, ct)
		assert.Equal(t, want, got, ct)
	}

	_, err := RequestEncoding(&ir.RequestBody{ContentType: "application/xml", Type: object})
	assert.True(t, ir.IsKind(err, ir.UnsupportedContentType))

	_, err = RequestEncoding(&ir.RequestBody{ContentType: ir.ContentMultipart, Type: ir.P(ir.Str)})
	assert.True(t, ir.IsKind(err, ir.MultipartBodyMustBeObject))
}

func TestSplitURL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []Segment{
		{Text: "/pets/"},
		{Text: "id", Param: true},
		{Text: "/photos."},
		{Text: "fmt", Param: true},
	}, SplitURL("/pets/{id}/photos.{fmt}"))
	assert.Nil(t, SplitURL(""))
}
