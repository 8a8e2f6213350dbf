// Package graph defines the directed graph built from Python sources.
// Nodes are identified by bare name (or "Class.method" for methods in the
// class inventory). Nothing is qualified by module or file, so identically
// named entities from different files collapse into a single node.
package graph

import "fmt"

// Kind tags a node with the declaration it came from.
type Kind string

const (
	// KindNone marks a node with no tag, typically a called name.
	KindNone Kind = ""
	// KindFunction marks a function or method definition.
	KindFunction Kind = "function"
	// KindClass marks a class definition.
	KindClass Kind = "class"
)

// Node is a named vertex.
type Node struct {
	Name string `json:"name" msgpack:"name"`
	Kind Kind   `json:"kind,omitempty" msgpack:"kind,omitempty"`
}

// Edge is a directed relation between two nodes (containment or invocation).
type Edge struct {
	From string `json:"from" msgpack:"from"`
	To   string `json:"to" msgpack:"to"`
}

// String renders the edge as "from -> to".
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.From, e.To)
}

// Graph is a simple directed graph: adding the same edge twice keeps one.
// Node and edge order follows insertion order so output is deterministic.
type Graph struct {
	nodes []string
	kinds map[string]Kind
	succ  map[string][]string
	pred  map[string][]string
	edges map[Edge]bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		kinds: make(map[string]Kind),
		succ:  make(map[string][]string),
		pred:  make(map[string][]string),
		edges: make(map[Edge]bool),
	}
}

// FromEdges builds a graph containing exactly the given edges.
func FromEdges(edges []Edge) *Graph {
	g := New()
	for _, e := range edges {
		g.AddEdge(e.From, e.To)
	}
	return g
}

// AddNode adds a node or updates its tag. An untagged add never clears
// an existing tag.
func (g *Graph) AddNode(name string, kind Kind) {
	if _, ok := g.kinds[name]; !ok {
		g.nodes = append(g.nodes, name)
		g.kinds[name] = kind
		return
	}
	if kind != KindNone {
		g.kinds[name] = kind
	}
}

// AddEdge adds a directed edge, creating untagged endpoints as needed.
// It reports whether the edge is new.
func (g *Graph) AddEdge(from, to string) bool {
	g.AddNode(from, KindNone)
	g.AddNode(to, KindNone)

	e := Edge{From: from, To: to}
	if g.edges[e] {
		return false
	}
	g.edges[e] = true
	g.succ[from] = append(g.succ[from], to)
	g.pred[to] = append(g.pred[to], from)
	return true
}

// HasNode reports whether name is a node.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.kinds[name]
	return ok
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	return g.edges[Edge{From: from, To: to}]
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (Node, bool) {
	kind, ok := g.kinds[name]
	if !ok {
		return Node{}, false
	}
	return Node{Name: name, Kind: kind}, true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, name := range g.nodes {
		out = append(out, Node{Name: name, Kind: g.kinds[name]})
	}
	return out
}

// Names returns all node names in insertion order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns all edges, grouped by source in node insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, from := range g.nodes {
		for _, to := range g.succ[from] {
			out = append(out, Edge{From: from, To: to})
		}
	}
	return out
}

// Successors returns the targets of edges leaving name.
func (g *Graph) Successors(name string) []string {
	return append([]string(nil), g.succ[name]...)
}

// Predecessors returns the sources of edges entering name.
func (g *Graph) Predecessors(name string) []string {
	return append([]string(nil), g.pred[name]...)
}

// InDegree returns the number of edges entering name.
func (g *Graph) InDegree(name string) int { return len(g.pred[name]) }

// OutDegree returns the number of edges leaving name.
func (g *Graph) OutDegree(name string) int { return len(g.succ[name]) }

// Degree returns in-degree plus out-degree. A self loop counts twice.
func (g *Graph) Degree(name string) int {
	return g.InDegree(name) + g.OutDegree(name)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Compose merges other into g by node name. Tags from other win when set.
func (g *Graph) Compose(other *Graph) {
	if other == nil {
		return
	}
	for _, n := range other.Nodes() {
		g.AddNode(n.Name, n.Kind)
	}
	for _, e := range other.Edges() {
		g.AddEdge(e.From, e.To)
	}
}

// CountKind returns how many nodes carry the given tag.
func (g *Graph) CountKind(kind Kind) int {
	count := 0
	for _, name := range g.nodes {
		if g.kinds[name] == kind {
			count++
		}
	}
	return count
}
