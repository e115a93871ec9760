package irjson

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/emitter/emittertest"
	"github.com/mark3labs/swagger2client/internal/ir"
)

func decode(t *testing.T, raw []byte) model {
	t.Helper()
	require.True(t, jsontext.Value(raw).IsValid(), "output is not valid JSON")
	var m model
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func declNamed(t *testing.T, m model, name string) decl {
	t.Helper()
	for _, d := range m.Types {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no declaration %s", name)
	return decl{}
}

func TestRender_Petstore(t *testing.T) {
	t.Parallel()
	raw, err := Render(emittertest.Model(t))
	require.NoError(t, err)
	m := decode(t, raw)

	assert.Equal(t, "Petstore", m.Title)
	names := make([]string, len(m.Types))
	for i, d := range m.Types {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Pet", "NewPet", "Status", "Tag", "Point", "Circle", "Square", "Shape", "Labeled", "Id", "PetAlias", "Session"}, names)

	pet := declNamed(t, m, "Pet")
	assert.Equal(t, "A pet in the store.", pet.Doc)
	require.Equal(t, "object", pet.Type.Kind)
	tag := pet.Type.Fields[3]
	assert.Equal(t, "tag", tag.Name)
	assert.False(t, tag.Required)
	assert.Equal(t, "option", tag.Type.Kind)
	assert.Equal(t, &node{Kind: "named", Name: "Tag"}, tag.Type.Inner)
	friends := pet.Type.Fields[7]
	assert.Equal(t, &node{Kind: "recursive", Name: "Pet"}, friends.Type.Inner)

	assert.Equal(t, "tuple", declNamed(t, m, "Point").Type.Kind)
	assert.Equal(t, &node{Kind: "ref", Name: "Pet"}, declNamed(t, m, "PetAlias").Type)
	assert.True(t, declNamed(t, m, "Session").UserDefined)

	require.Len(t, m.Routes, 8)
	list := m.Routes[0]
	assert.Equal(t, "listPets", list.Name)
	assert.Equal(t, "get", list.Method)
	require.Len(t, list.Params, 3)
	assert.Equal(t, "header", list.Params[1].In)
	require.NotNil(t, list.Response)
	assert.Equal(t, "array", list.Response.Type.Kind)
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()
	emittertest.AssertDeterministic(t, Render)
}

func TestRender_UnhandledKind(t *testing.T) {
	t.Parallel()
	_, err := Render(&ir.Model{Types: []*ir.Type{{Name: "Bad", Kind: ir.Unknown{}}}})
	assert.True(t, ir.IsKind(err, ir.UnhandledIrVariant))
}

func TestEmit_Check(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()
	m := emittertest.Model(t)

	_, err := Emit(ctx, m, emitter.Options{OutDir: dir})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)

	res, err := Emit(ctx, m, emitter.Options{OutDir: dir, Check: true})
	require.NoError(t, err)
	assert.False(t, res.Planned[0].Changed)
}
