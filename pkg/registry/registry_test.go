package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg := Default()
	require.Len(t, reg.Reports, 8)

	paths := make(map[string]bool)
	for _, rep := range reg.Reports {
		assert.NotEmpty(t, rep.DisplayName, rep.ID)
		assert.False(t, paths[rep.Path], "duplicate path %s", rep.Path)
		paths[rep.Path] = true
		if rep.Kind == "search" {
			assert.NotEmpty(t, rep.Aggregation, rep.ID)
		}
	}

	rep, ok := reg.Lookup("top-attackers")
	require.True(t, ok)
	assert.Equal(t, "/api/threats/top-attackers", rep.Path)
	assert.Equal(t, "attackers", rep.Aggregation)

	_, ok = reg.Lookup("nope")
	assert.False(t, ok)
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"version":"2","reports":[{"id":"a","path":"/api/a"}]}`), 0o600))
	reg, err := LoadRegistry(good)
	require.NoError(t, err)
	assert.Equal(t, "2", reg.Version)

	dup := filepath.Join(dir, "dup.json")
	require.NoError(t, os.WriteFile(dup, []byte(`{"reports":[{"id":"a","path":"/a"},{"id":"a","path":"/b"}]}`), 0o600))
	_, err = LoadRegistry(dup)
	assert.ErrorContains(t, err, "duplicate")

	_, err = LoadRegistry(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
