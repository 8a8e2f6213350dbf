package render

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/go-pygraph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *graph.Graph {
	g := graph.New()
	g.AddNode("Figure", graph.KindClass)
	g.AddEdge("Figure", "Figure.savefig")
	g.AddEdge("Figure", "Figure.gca")
	g.AddEdge("Figure", "Figure.add_axes")
	g.AddEdge("main", "Figure")
	return g
}

func inUnitSquare(t *testing.T, l Layout) {
	t.Helper()
	for name, p := range l {
		assert.LessOrEqual(t, math.Abs(p.X), 1.0+1e-9, name)
		assert.LessOrEqual(t, math.Abs(p.Y), 1.0+1e-9, name)
	}
}

func TestSpringLayout(t *testing.T) {
	g := sampleGraph()

	a := SpringLayout(g, SpringOptions{Seed: 1})
	b := SpringLayout(g, SpringOptions{Seed: 1})
	assert.Equal(t, a, b, "same seed gives same layout")
	assert.Len(t, a, g.NodeCount())
	inUnitSquare(t, a)

	c := SpringLayout(g, SpringOptions{Seed: 2, K: 0.5, Iterations: 10})
	assert.NotEqual(t, a, c)
}

func TestSpringLayoutSmallGraphs(t *testing.T) {
	assert.Empty(t, SpringLayout(graph.New(), SpringOptions{}))

	g := graph.New()
	g.AddNode("alone", graph.KindFunction)
	assert.Equal(t, Layout{"alone": {}}, SpringLayout(g, SpringOptions{}))
}

func TestLayeredLayout(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	g.AddEdge("b", "d")
	g.AddEdge("c", "d")
	g.AddNode("e", graph.KindNone)

	l := LayeredLayout(g)
	require.Len(t, l, 5)
	inUnitSquare(t, l)

	// in-degree 0: a, e; 1: b, c; 2: d
	assert.Equal(t, l["a"].X, l["e"].X)
	assert.Equal(t, l["b"].X, l["c"].X)
	assert.Less(t, l["a"].X, l["b"].X)
	assert.Less(t, l["b"].X, l["d"].X)
	assert.NotEqual(t, l["b"].Y, l["c"].Y)

	assert.Empty(t, LayeredLayout(graph.New()))
}

func TestStyles(t *testing.T) {
	g := sampleGraph()
	figure, _ := g.Node("Figure")
	main, _ := g.Node("main")

	tests := []struct {
		name  string
		style Style
		node  graph.Node
		want  string
	}{
		{"uniform default", UniformStyle{}, figure, ColorDefault},
		{"uniform custom", UniformStyle{Color: "pink"}, main, "pink"},
		{"kind class", KindStyle{}, figure, ColorClass},
		{"kind other", KindStyle{}, main, ColorDefault},
		{"degree high", DegreeStyle{Threshold: 3}, figure, ColorHigh},
		{"degree low", DegreeStyle{Threshold: 3}, main, ColorDefault},
		{"degree zero threshold uses default", DegreeStyle{}, figure, ColorHigh},
		{"degree custom threshold", DegreeStyle{Threshold: 1, High: "red"}, main, "red"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.style.Fill(g, tt.node))
		})
	}
}

func TestWriteSVG(t *testing.T) {
	g := sampleGraph()
	g.AddEdge("main", "main")
	g.AddNode("<init>", graph.KindFunction)

	opts := DefaultOptions()
	opts.Title = "Graph of Classes & Functions"

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, g, SpringLayout(g, SpringOptions{Seed: 1}), KindStyle{}, opts))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "Graph of Classes &amp; Functions")
	assert.Contains(t, out, "&lt;init&gt;")
	assert.Equal(t, g.NodeCount(), strings.Count(out, "<circle"))
	assert.Equal(t, 4, strings.Count(out, "<line"))
	assert.Contains(t, out, "fill:green")
	assert.Contains(t, out, `marker-end="url(#arrow)"`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSVGReportsWriteErrors(t *testing.T) {
	err := WriteSVG(failingWriter{}, sampleGraph(), Layout{}, nil, Options{})
	assert.EqualError(t, err, "disk full")
}

func TestDraw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.svg")
	require.NoError(t, Draw(path, sampleGraph(), Layered(), DegreeStyle{}, DefaultOptions()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fill:lightcoral")
}

func TestDrawRecoversPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.svg")
	explode := func(*graph.Graph) Layout { panic("layout exploded") }

	err := Draw(path, sampleGraph(), explode, nil, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layout exploded")
}

func TestDrawBadPath(t *testing.T) {
	err := Draw(filepath.Join(t.TempDir(), "missing", "graph.svg"), sampleGraph(), nil, nil, DefaultOptions())
	assert.Error(t, err)
}
