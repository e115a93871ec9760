package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mark3labs/swagger2client/internal/ir"
)

func TestReaches(t *testing.T) {
	t.Parallel()
	b := &ir.Type{Name: "B", Kind: ir.Object{Fields: []ir.Field{field("a", ir.New(ir.Recursive{Name: "A"}))}}}
	a := &ir.Type{Name: "A", Kind: ir.Object{Fields: []ir.Field{field("b", b)}}}
	leaf := &ir.Type{Name: "Leaf", Kind: ir.Object{Fields: []ir.Field{field("n", ir.P(ir.Int))}}}
	m := &ir.Model{Types: []*ir.Type{a, b, leaf}}

	assert.True(t, Reaches(m, b, "A", nil))
	// Through the Recursive marker back into A's declaration.
	assert.True(t, Reaches(m, ir.New(ir.Recursive{Name: "A"}), "B", nil))
	assert.False(t, Reaches(m, leaf, "A", nil))
	assert.False(t, Reaches(m, b, "", nil))

	list := ir.New(ir.Array{Elem: b})
	assert.True(t, Reaches(m, list, "A", nil))
	noLists := func(ty *ir.Type, _ *ir.Field) bool {
		_, ok := ty.Kind.(ir.Array)
		return ok
	}
	assert.False(t, Reaches(m, list, "A", noLists))
}
