package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Tags(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(sampleSpec))
	require.NoError(t, err)

	got, err := Filter(doc, WithIncludeTags([]string{"read"}))
	require.NoError(t, err)
	require.Len(t, got.Paths, 1)
	require.Len(t, got.Paths[0].Operations, 1)
	assert.Equal(t, GET, got.Paths[0].Operations[0].Method)
	assert.Equal(t, "/pets", got.Paths[0].Path)

	got, err = Filter(doc, WithExcludeTags([]string{"admin"}))
	require.NoError(t, err)
	for _, p := range got.Paths {
		assert.NotEqual(t, "/admin", p.Path)
	}
	// The input is left untouched.
	assert.Len(t, doc.Paths, 2)
}

func TestFilter_MethodAndPath(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(sampleSpec))
	require.NoError(t, err)

	got, err := Filter(doc, WithMethods([]HttpMethod{"POST"}), WithPathPatterns([]string{"^/pets$"}))
	require.NoError(t, err)
	require.Len(t, got.Paths, 1)
	require.Len(t, got.Paths[0].Operations, 1)
	assert.Equal(t, POST, got.Paths[0].Operations[0].Method)
}

func TestFilter_InvalidPattern(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(sampleSpec))
	require.NoError(t, err)

	_, err = Filter(doc, WithPathPatterns([]string{"("}))
	var se *SpecError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, InputError, se.Code)
}
