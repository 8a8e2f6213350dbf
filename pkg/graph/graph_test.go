package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeCollapsesDuplicates(t *testing.T) {
	g := New()

	assert.True(t, g.AddEdge("main", "helper"))
	assert.False(t, g.AddEdge("main", "helper"))

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []string{"helper"}, g.Successors("main"))
	assert.Equal(t, []string{"main"}, g.Predecessors("helper"))
}

func TestAddNodeKeepsTag(t *testing.T) {
	g := New()
	g.AddNode("Widget", KindClass)
	g.AddNode("Widget", KindNone)

	n, ok := g.Node("Widget")
	require.True(t, ok)
	assert.Equal(t, KindClass, n.Kind)

	g.AddNode("Widget", KindFunction)
	n, _ = g.Node("Widget")
	assert.Equal(t, KindFunction, n.Kind)
}

func TestEdgeEndpointsAreCreatedUntagged(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")

	n, ok := g.Node("b")
	require.True(t, ok)
	assert.Equal(t, KindNone, n.Kind)
	assert.Equal(t, 2, g.CountKind(KindNone))
}

func TestDegrees(t *testing.T) {
	g := FromEdges([]Edge{
		{From: "f", To: "g"},
		{From: "f", To: "h"},
		{From: "g", To: "z"},
		{From: "h", To: "z"},
	})

	assert.Equal(t, 2, g.OutDegree("f"))
	assert.Equal(t, 0, g.InDegree("f"))
	assert.Equal(t, 2, g.InDegree("z"))
	assert.Equal(t, 2, g.Degree("g"))
}

func TestCompose(t *testing.T) {
	a := New()
	a.AddNode("run", KindFunction)
	a.AddEdge("run", "print")

	b := New()
	b.AddNode("print", KindFunction)
	b.AddEdge("run", "print")
	b.AddEdge("other", "print")

	a.Compose(b)

	assert.Equal(t, 3, a.NodeCount())
	assert.Equal(t, 2, a.EdgeCount())
	n, _ := a.Node("print")
	assert.Equal(t, KindFunction, n.Kind)

	a.Compose(nil)
	assert.Equal(t, 3, a.NodeCount())
}

func TestEdgesOrder(t *testing.T) {
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("A", "C")

	assert.Equal(t, []Edge{
		{From: "A", To: "B"},
		{From: "A", To: "C"},
		{From: "B", To: "C"},
	}, g.Edges())
	assert.Equal(t, "A -> B", g.Edges()[0].String())
}
