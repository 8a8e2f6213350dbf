package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/l3aro/go-pygraph/internal/config"
	"github.com/l3aro/go-pygraph/internal/scanner"
	"github.com/l3aro/go-pygraph/pkg/dot"
	"github.com/l3aro/go-pygraph/pkg/graph"
	"github.com/l3aro/go-pygraph/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree(t *testing.T) {
	root := filepath.Join("/", "proj")
	files := []scanner.FileInfo{
		{Path: "setup.py", FullPath: "/proj/setup.py"},
		{Path: "pkg/b.py", FullPath: "/proj/pkg/b.py"},
		{Path: "pkg/a.py", FullPath: "/proj/pkg/a.py"},
		{Path: "pkg/sub/c.py", FullPath: "/proj/pkg/sub/c.py"},
	}

	tree := buildTree(root, files)
	require.Len(t, tree.Children, 2)

	pkg := tree.Children[0]
	assert.Equal(t, "pkg", pkg.Name)
	assert.Equal(t, "directory", pkg.Type)
	require.Len(t, pkg.Children, 3)
	assert.Equal(t, "sub", pkg.Children[0].Name)
	assert.Equal(t, "a.py", pkg.Children[1].Name)
	assert.Equal(t, "b.py", pkg.Children[2].Name)

	assert.Equal(t, "setup.py", tree.Children[1].Name)
	assert.Equal(t, "file", tree.Children[1].Type)
}

func TestCallView(t *testing.T) {
	cfg = config.DefaultConfig()

	_, style, title := callView(config.ViewTree)
	assert.Equal(t, callTreeTitle, title)
	assert.IsType(t, render.UniformStyle{}, style)

	_, style, title = callView(config.ViewGraph)
	assert.Equal(t, callGraphTitle, title)
	assert.IsType(t, render.UniformStyle{}, style)

	_, style, title = callView(config.ViewSpring)
	assert.Equal(t, callTreeTitle, title)
	assert.Equal(t, render.DegreeStyle{Threshold: cfg.DegreeThreshold}, style)
}

func TestTreeLayout(t *testing.T) {
	cfg = config.DefaultConfig()
	g := graph.New()
	g.AddEdge("main", "load")
	g.AddEdge("main", "run")
	g.AddEdge("run", "load")

	assert.Equal(t, render.SpringLayout(g, springOptions(0)), treeLayout(false)(g))
	assert.NotEqual(t, render.LayeredLayout(g), treeLayout(false)(g))
	assert.Equal(t, render.LayeredLayout(g), treeLayout(true)(g))
}

func TestCalltreeAndDotCommands(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(src, []byte(`def main():
    load()
    run()

def load():
    read()

def run():
    load()
`), 0644))

	svgOut := filepath.Join(dir, "tree.svg")
	RootCmd.SetArgs([]string{"calltree", src, "main", "-d", "1", "-o", svgOut, "--json"})
	require.NoError(t, RootCmd.Execute())
	assert.FileExists(t, svgOut)

	dotOut := filepath.Join(dir, "calls.dot")
	RootCmd.SetArgs([]string{"dot", "export", dir, "-o", dotOut, "--json"})
	require.NoError(t, RootCmd.Execute())

	edges, skipped, err := dot.ParseFile(dotOut)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Len(t, edges, 4)
}
