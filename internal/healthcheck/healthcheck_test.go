package healthcheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/l3aro/go-pygraph/internal/config"
	"github.com/l3aro/go-pygraph/pkg/dirty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCheck(t *testing.T, r *HealthCheckResult, name string) CheckStatus {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not reported", name)
	return CheckStatus{}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.SourceRoot = filepath.Join(dir, "src")
	cfg.ClassCache = filepath.Join(dir, "classes.json")
	cfg.CallCache = filepath.Join(dir, "calls.msgpack")
	require.NoError(t, os.MkdirAll(cfg.SourceRoot, 0755))
	return cfg
}

func TestCheckWithNilConfig(t *testing.T) {
	_, err := Check(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestCheckFreshProject(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SourceRoot, "a.py"), []byte("def a():\n    b()\n"), 0644))

	result, err := Check(context.Background(), cfg, "")
	require.NoError(t, err)

	assert.False(t, result.Failed())
	assert.Equal(t, StatusOK, findCheck(t, result, "config").Status)
	assert.Equal(t, StatusOK, findCheck(t, result, "python parser").Status)
	assert.Equal(t, StatusMissing, findCheck(t, result, "class cache").Status)
	assert.Equal(t, StatusMissing, findCheck(t, result, "call cache").Status)

	src := findCheck(t, result, "source root")
	assert.Equal(t, StatusOK, src.Status)
	assert.Equal(t, "1 python files", src.Detail)

	for _, c := range result.Checks {
		assert.NotEqual(t, "graph store", c.Name)
	}
}

func TestCheckEmptyAndMissingRoot(t *testing.T) {
	cfg := testConfig(t)

	result, err := Check(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, StatusWarn, findCheck(t, result, "source root").Status)
	assert.False(t, result.Failed())

	cfg.SourceRoot = filepath.Join(t.TempDir(), "gone")
	result, err = Check(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, StatusError, findCheck(t, result, "source root").Status)
	assert.True(t, result.Failed())
}

func TestCheckInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxDepth = -1

	result, err := Check(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, StatusError, findCheck(t, result, "config").Status)
	assert.True(t, result.Failed())
}

func TestCheckReportsStaleSources(t *testing.T) {
	cfg := testConfig(t)
	src := filepath.Join(cfg.SourceRoot, "a.py")
	require.NoError(t, os.WriteFile(src, []byte("def a(): pass\n"), 0644))
	require.NoError(t, os.WriteFile(cfg.ClassCache, []byte("[]"), 0644))

	tracker := dirty.New(dirty.SidecarPath(cfg.ClassCache))
	_, err := tracker.Record(context.Background(), []string{src})
	require.NoError(t, err)
	require.NoError(t, tracker.Save())

	result, err := Check(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, findCheck(t, result, "class cache").Status)

	require.NoError(t, os.WriteFile(src, []byte("def a(): return 1\n"), 0644))

	result, err = Check(context.Background(), cfg, "")
	require.NoError(t, err)
	classes := findCheck(t, result, "class cache")
	assert.Equal(t, StatusWarn, classes.Status)
	assert.Equal(t, []string{src}, classes.Stale)
	assert.False(t, result.Failed())
}

func TestCheckStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDir = filepath.Join(t.TempDir(), "store")

	result, err := Check(context.Background(), cfg, "")
	require.NoError(t, err)
	store := findCheck(t, result, "graph store")
	assert.Equal(t, StatusOK, store.Status)
	assert.Contains(t, store.Detail, "0 graphs")
}

func TestScopeFromPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", scopeFromPath(""))
	assert.Equal(t, "global", scopeFromPath(filepath.Join(home, ".pyg", "config.yaml")))
	assert.Equal(t, "project", scopeFromPath(filepath.Join(".pyg", "config.yaml")))
}
