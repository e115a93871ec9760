// Package emittertest provides a shared document fixture for emitter tests.
package emittertest

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/resolve"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// Petstore exercises every IR kind and every body encoding.
const Petstore = `openapi: 3.1.0
info:
  title: Petstore
  version: "1.0.0"
paths:
  /pets:
    get:
      summary: List pets
      description: Returns a page of pets.
      parameters:
        - { in: query, name: limit, schema: { type: integer } }
        - { in: header, name: X-Request-Id, required: true, schema: { type: string } }
        - { in: cookie, name: session, schema: { type: string } }
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: { $ref: '#/components/schemas/Pet' }
    post:
      summary: Create a pet
      requestBody:
        content:
          application/json:
            schema: { $ref: '#/components/schemas/NewPet' }
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Pet' }
  /pets/{petId}:
    parameters:
      - { in: path, name: petId, schema: { type: integer } }
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Pet' }
    delete:
      responses:
        "204": { description: gone }
  /pets/{petId}/photo:
    put:
      parameters:
        - { in: path, name: petId, schema: { type: integer } }
      requestBody:
        content:
          multipart/form-data:
            schema:
              type: object
              required: [file, meta]
              properties:
                file: { type: string, format: binary }
                caption: { type: [string, "null"] }
                meta: { $ref: '#/components/schemas/Tag' }
                rank: { type: integer }
      responses:
        "200":
          description: ok
          content:
            text/plain:
              schema: { type: string }
  /pets/{petId}/avatar:
    get:
      parameters:
        - { in: path, name: petId, schema: { type: integer } }
      responses:
        "200":
          description: ok
          content:
            application/octet-stream:
              schema: { type: string, format: binary }
  /login:
    post:
      requestBody:
        content:
          application/x-www-form-urlencoded:
            schema:
              type: object
              required: [user]
              properties:
                user: { type: string }
                remember: { type: boolean }
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Session' }
  /notes:
    post:
      requestBody:
        content:
          text/plain:
            schema: { type: string }
      responses:
        "200":
          description: ok
components:
  schemas:
    Pet:
      description: A pet in the store.
      type: object
      required: [id, name, status]
      properties:
        id: { type: integer }
        name: { type: string }
        status: { $ref: '#/components/schemas/Status' }
        tag: { oneOf: [{ $ref: '#/components/schemas/Tag' }, { type: "null" }] }
        weight: { type: number, nullable: true }
        location: { $ref: '#/components/schemas/Point' }
        shape: { $ref: '#/components/schemas/Shape' }
        friends:
          type: array
          items: { $ref: '#/components/schemas/Pet' }
    NewPet:
      type: object
      required: [name]
      properties:
        name: { type: string }
        status: { $ref: '#/components/schemas/Status' }
    Status:
      type: string
      enum: [available, pending, sold]
    Tag:
      type: object
      required: [label]
      properties:
        label: { type: string }
    Point:
      type: array
      items: { type: number }
      minItems: 2
      maxItems: 2
    Circle:
      type: object
      required: [kind, radius]
      properties:
        kind: { const: circle }
        radius: { type: number }
    Square:
      type: object
      required: [kind, side]
      properties:
        kind: { const: square }
        side: { type: number }
    Shape:
      oneOf:
        - $ref: '#/components/schemas/Circle'
        - $ref: '#/components/schemas/Square'
    Labeled:
      allOf:
        - $ref: '#/components/schemas/Tag'
        - oneOf:
            - $ref: '#/components/schemas/Circle'
            - $ref: '#/components/schemas/Square'
    Id:
      type: [string, integer]
    PetAlias:
      $ref: '#/components/schemas/Pet'
    Session:
      title: "#user_defined"
      type: object
      properties:
        token: { type: string }
`

// Model resolves Petstore.
func Model(t testing.TB) *ir.Model {
	t.Helper()
	return Build(t, Petstore)
}

// Build resolves an inline document.
func Build(t testing.TB, doc string) *ir.Model {
	t.Helper()
	d, err := spec.Decode([]byte(doc))
	require.NoError(t, err)
	m, err := resolve.Build(d)
	require.NoError(t, err)
	return m
}

// AssertDeterministic renders Petstore from two independent resolution
// passes and requires byte-identical output.
func AssertDeterministic(t *testing.T, render func(*ir.Model) ([]byte, error)) {
	t.Helper()
	first, err := render(Model(t))
	require.NoError(t, err)
	second, err := render(Model(t))
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

// Catalog is a small routeless document whose rendered output is pinned
// under each target's testdata directory.
const Catalog = `openapi: 3.1.0
info: { title: Catalog, version: "1" }
paths: {}
components:
  schemas:
    Status:
      description: Lifecycle of an item.
      type: string
      enum: [draft, live]
    Item:
      type: object
      required: [id, status]
      properties:
        id: { type: integer }
        status: { $ref: '#/components/schemas/Status' }
        price: { type: number, nullable: true }
        tags: { type: array, items: { type: string } }
        parent: { $ref: '#/components/schemas/Item' }
    Code:
      oneOf:
        - type: string
        - type: integer
        - type: "null"
    Pair:
      type: array
      prefixItems:
        - type: string
        - type: boolean
`

// AssertGolden renders Catalog and compares it with testdata/<name>.golden.
// Run the tests with -update to rewrite the fixture.
func AssertGolden(t *testing.T, name string, render func(*ir.Model) ([]byte, error)) {
	t.Helper()
	out, err := render(Build(t, Catalog))
	require.NoError(t, err)
	goldie.New(t).Assert(t, name, out)
}
