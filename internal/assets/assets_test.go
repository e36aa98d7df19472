package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePriority(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(low, "scene.glb"), []byte("low"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(low, "only_low.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(high, "scene.glb"), []byte("high"), 0o644))

	m := NewManager()
	require.NoError(t, m.AddRoot(low))
	require.NoError(t, m.AddRoot(high))
	assert.Equal(t, []string{low, high}, m.Roots())

	p, err := m.Resolve("scene.glb")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(high, "scene.glb"), p)

	p, err = m.Resolve("only_low.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(low, "only_low.json"), p)

	_, err = m.Resolve("missing.glb")
	assert.ErrorIs(t, err, ErrNotFound)

	abs := filepath.Join(low, "scene.glb")
	p, err = m.Resolve(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, p)
}

func TestResolveDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "skyboxes"), 0o755))

	m := NewManager()
	require.NoError(t, m.AddRoot(root))
	p, err := m.Resolve("skyboxes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "skyboxes"), p)
}

func TestAddRootRejectsFiles(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	m := NewManager()
	assert.Error(t, m.AddRoot(file))
	assert.Error(t, m.AddRoot(filepath.Join(file, "missing")))
	assert.Empty(t, m.Roots())
}

func TestLoadCaches(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "info.json")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	m := NewManager()
	require.NoError(t, m.AddRoot(root))

	data, err := m.Load("info.json")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	data, err = m.Load("info.json")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data), "served from cache")

	hits, misses := m.Cache().Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	m.Invalidate("info.json")
	data, err = m.Load("info.json")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	m.Close()
	assert.Empty(t, m.Roots())
	_, err = m.Load("info.json")
	assert.ErrorIs(t, err, ErrNotFound)
}
