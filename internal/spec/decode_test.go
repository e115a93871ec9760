package spec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2client/internal/ir"
)

const sampleSpec = `openapi: 3.1.0
info:
  title: Sample API
  version: "1.0.0"
  description: Demo
paths:
  /pets:
    parameters:
      - in: query
        name: limit
        schema:
          type: integer
    post:
      summary: Create pet
      tags: [write, animal]
      requestBody:
        $ref: '#/components/requestBodies/PetBody'
      responses:
        "201":
          description: created
    get:
      summary: List pets
      description: Returns all pets
      tags: [read, animal]
      parameters:
        - $ref: '#/components/parameters/Cursor'
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
  /admin:
    get:
      summary: Admin only
      tags: [admin]
      responses:
        "200": { description: ok }
components:
  parameters:
    Cursor:
      in: query
      name: cursor
      schema: { type: string }
  requestBodies:
    PetBody:
      required: true
      content:
        application/json:
          schema:
            $ref: '#/components/schemas/Pet'
  schemas:
    Zebra:
      type: string
    Pet:
      type: object
      required: [name, id]
      properties:
        name: { type: string }
        id: { type: integer, format: int64 }
        tag: { type: [string, "null"] }
        pair:
          type: array
          prefixItems: [{ type: string }, { type: integer }]
          items: false
`

func TestDecode_KeepsDeclarationOrder(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(sampleSpec))
	require.NoError(t, err)

	assert.Equal(t, "3.1.0", doc.Version)
	assert.Equal(t, "Sample API", doc.Title)
	require.Len(t, doc.Schemas, 2)
	assert.Equal(t, "Zebra", doc.Schemas[0].Name)
	assert.Equal(t, "Pet", doc.Schemas[1].Name)

	pet := doc.Schemas[1].Schema.Schema
	require.NotNil(t, pet)
	var names []string
	for _, p := range pet.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"name", "id", "tag", "pair"}, names)
	assert.True(t, pet.IsRequired("id"))
	assert.False(t, pet.IsRequired("tag"))
	assert.Equal(t, []string{"string", "null"}, pet.Properties[2].Schema.Schema.Types)
	assert.Len(t, pet.Properties[3].Schema.Schema.PrefixItems, 2)
	assert.Nil(t, pet.Properties[3].Schema.Schema.Items)

	require.Len(t, doc.Paths, 2)
	assert.Equal(t, "/pets", doc.Paths[0].Path)
	ops := doc.Paths[0].Operations
	require.Len(t, ops, 2)
	// Methods follow the fixed order, not the document's.
	assert.Equal(t, GET, ops[0].Method)
	assert.Equal(t, POST, ops[1].Method)
}

func TestDecode_ResolvesComponentRefs(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(sampleSpec))
	require.NoError(t, err)

	get := doc.Paths[0].Operations[0]
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, "cursor", get.Parameters[0].Name)
	assert.Equal(t, "query", get.Parameters[0].In)
	require.NotNil(t, get.Parameters[0].Schema)

	post := doc.Paths[0].Operations[1]
	require.NotNil(t, post.RequestBody)
	assert.True(t, post.RequestBody.Required)
	require.Len(t, post.RequestBody.Content, 1)
	assert.Equal(t, "Pet", post.RequestBody.Content[0].Schema.Ref.Name())

	resp, ok := get.Response("200")
	require.True(t, ok)
	assert.Equal(t, "application/json", resp.Content[0].Mime)
}

func TestDecode_UnknownParameterRef(t *testing.T) {
	t.Parallel()
	in := `openapi: 3.0.0
info: { title: t, version: "1" }
paths:
  /x:
    get:
      parameters:
        - $ref: '#/components/parameters/Nope'
      responses: {}
`
	_, err := Decode([]byte(in))
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.UnresolvedReference))
}

func TestDecode_AnonymousAliasCycle(t *testing.T) {
	t.Parallel()
	in := `openapi: 3.0.0
info: { title: t, version: "1" }
paths:
  /x:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: &node
                type: object
                properties:
                  next: *node
`
	_, err := Decode([]byte(in))
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.SchemaCycleWithoutName))
}

func TestDecode_SharedAliasIsNotACycle(t *testing.T) {
	t.Parallel()
	in := `openapi: 3.0.0
info: { title: t, version: "1" }
paths: {}
components:
  schemas:
    A:
      type: object
      properties:
        x: &str { type: string }
        y: *str
`
	doc, err := Decode([]byte(in))
	require.NoError(t, err)
	props := doc.Schemas[0].Schema.Schema.Properties
	require.Len(t, props, 2)
	assert.Equal(t, []string{"string"}, props[1].Schema.Schema.Types)
}

func TestDecode_NotAMapping(t *testing.T) {
	t.Parallel()
	_, err := Decode([]byte(strings.TrimSpace("- a\n- b")))
	var se *SpecError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ParseError, se.Code)
}

func TestSchemaRef_Name(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a/b", (&SchemaRef{Ref: "#/components/schemas/a~1b"}).Name())
	assert.Equal(t, "other.yaml#/X", (&SchemaRef{Ref: "other.yaml#/X"}).Name())
}
