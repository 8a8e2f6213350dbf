package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/go-pygraph/internal/log"
	"github.com/l3aro/go-pygraph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEdges() []graph.Edge {
	return []graph.Edge{{From: "A", To: "B"}, {From: "B", To: "C"}}
}

func TestEdgeListCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "class_graph_data.json")
	c := NewEdgeListCache(path, nil)

	assert.False(t, c.Exists())
	_, err := c.Load()
	assert.ErrorIs(t, err, ErrNotCached)

	require.NoError(t, c.Save(graph.FromEdges(sampleEdges())))
	assert.True(t, c.Exists())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[["A","B"],["B","C"]]`, strings.TrimSpace(string(data)))

	g, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, g.Names())
	assert.Equal(t, sampleEdges(), g.Edges())
}

func TestEdgeListCache_MalformedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.json")
	content := `[["A","B"], ["only"], ["x","y","z"], "str", {"a": 1}, [1, 2], ["B","C"]]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	var buf bytes.Buffer
	c := NewEdgeListCache(path, log.New(log.LoggerConfig{Level: log.WarnLevel, Output: &buf}))

	g, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleEdges(), g.Edges())
	assert.Equal(t, 5, strings.Count(buf.String(), "skipping malformed cache entry"))
}

func TestReadEdgeList(t *testing.T) {
	edges, skipped, err := ReadEdgeList(strings.NewReader(`[["A","B"],["bad"]]`))
	require.NoError(t, err)
	assert.Equal(t, []graph.Edge{{From: "A", To: "B"}}, edges)
	require.Len(t, skipped, 1)
	assert.Equal(t, 1, skipped[0].Index)
	assert.Contains(t, skipped[0].Error(), `["bad"]`)

	_, _, err = ReadEdgeList(strings.NewReader(`{"not": "a list"}`))
	assert.Error(t, err)
}

func TestBlobCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "call_graph_data.msgpack")
	c := NewBlobCache(path)

	g := graph.New()
	g.AddNode("main", graph.KindFunction)
	g.AddNode("Figure", graph.KindClass)
	g.AddNode("lonely", graph.KindFunction)
	g.AddEdge("main", "print")
	g.AddEdge("main", "Figure")

	require.NoError(t, c.Save(g))
	assert.True(t, c.Exists())

	loaded, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, g.Nodes(), loaded.Nodes())
	assert.Equal(t, g.Edges(), loaded.Edges())
}

func TestBlobCache_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.msgpack")
	require.NoError(t, os.WriteFile(path, []byte("not msgpack at all"), 0644))

	_, err := NewBlobCache(path).Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotCached))
}

func TestLoadOrBuild(t *testing.T) {
	c := NewBlobCache(filepath.Join(t.TempDir(), "g.msgpack"))

	builds := 0
	build := func() (*graph.Graph, error) {
		builds++
		return graph.FromEdges(sampleEdges()), nil
	}

	g, loaded, err := LoadOrBuild(c, build)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, 2, g.EdgeCount())

	// Existence is the only validity check: the builder is not consulted again
	g, loaded, err = LoadOrBuild(c, func() (*graph.Graph, error) {
		t.Fatal("build must not run when the cache exists")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, sampleEdges(), g.Edges())
	assert.Equal(t, 1, builds)

	boom := errors.New("boom")
	_, _, err = LoadOrBuild(NewBlobCache(filepath.Join(t.TempDir(), "x")), func() (*graph.Graph, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.json")
	c := NewEdgeListCache(path, nil)
	require.NoError(t, c.Save(graph.FromEdges(sampleEdges())))

	require.NoError(t, Remove(c))
	assert.False(t, c.Exists())
	require.NoError(t, Remove(c))
}

func TestStoreCache(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	calls := store.Cache("calls")
	classes := store.Cache("classes")
	assert.False(t, calls.Exists())
	_, err = calls.Load()
	assert.ErrorIs(t, err, ErrNotCached)

	g := graph.FromEdges(sampleEdges())
	g.AddNode("A", graph.KindClass)
	require.NoError(t, calls.Save(g))
	require.NoError(t, classes.Save(graph.FromEdges([]graph.Edge{{From: "X", To: "Y"}})))

	assert.True(t, calls.Exists())
	loaded, err := calls.Load()
	require.NoError(t, err)
	assert.Equal(t, g.Nodes(), loaded.Nodes())
	assert.Equal(t, sampleEdges(), loaded.Edges())

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"calls", "classes"}, keys)

	require.NoError(t, Remove(calls))
	assert.False(t, calls.Exists())
	assert.True(t, classes.Exists())
	assert.Contains(t, calls.Path(), "#calls")
}
