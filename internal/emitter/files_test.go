package emitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles_DryRunPlansInOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	files := []File{
		{RelPath: "z.ts", Content: []byte("z")},
		{RelPath: "a.ts", Content: []byte("aa")},
	}
	res, err := WriteFiles(context.Background(), "ts", files, Options{OutDir: dir, DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Planned, 2)
	assert.Equal(t, "a.ts", res.Planned[0].RelPath)
	assert.Equal(t, 2, res.Planned[0].Size)
	assert.True(t, res.Planned[0].Changed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run must not write")
}

func TestWriteFiles_WritesAndRefusesOverwrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()
	files := []File{{RelPath: filepath.Join("sub", "client.ts"), Content: []byte("v1")}}

	_, err := WriteFiles(ctx, "ts", files, Options{OutDir: dir})
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(dir, "sub", "client.ts"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	// Same content again is a no-op.
	res, err := WriteFiles(ctx, "ts", files, Options{OutDir: dir})
	require.NoError(t, err)
	assert.False(t, res.Planned[0].Changed)

	changed := []File{{RelPath: filepath.Join("sub", "client.ts"), Content: []byte("v2")}}
	_, err = WriteFiles(ctx, "ts", changed, Options{OutDir: dir})
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = WriteFiles(ctx, "ts", changed, Options{OutDir: dir, Force: true})
	require.NoError(t, err)
	got, err = os.ReadFile(filepath.Join(dir, "sub", "client.ts"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestWriteFiles_Check(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()
	files := []File{{RelPath: "client.py", Content: []byte("x = 1\n")}}

	_, err := WriteFiles(ctx, "python", files, Options{OutDir: dir, Check: true})
	require.ErrorIs(t, err, ErrCheckFailed)
	_, statErr := os.Stat(filepath.Join(dir, "client.py"))
	assert.True(t, os.IsNotExist(statErr), "check must not write")

	_, err = WriteFiles(ctx, "python", files, Options{OutDir: dir})
	require.NoError(t, err)
	_, err = WriteFiles(ctx, "python", files, Options{OutDir: dir, Check: true})
	assert.NoError(t, err)
}

func TestWriteFiles_RequiresOutDir(t *testing.T) {
	t.Parallel()
	_, err := WriteFiles(context.Background(), "ts", nil, Options{})
	assert.Error(t, err)
}
