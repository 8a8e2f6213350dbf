// Package callgraph explores the call tree of a single file from a starting
// function, breadth-first and bounded by depth.
//
// Callees are resolved by bare name against the definitions of the same file
// only. A name that is not defined in the file becomes an unexpanded leaf.
package callgraph

import (
	"context"

	"github.com/l3aro/go-pygraph/pkg/extractor"
	"github.com/l3aro/go-pygraph/pkg/graph"
)

// DefaultMaxDepth is the exploration bound used when none is configured.
const DefaultMaxDepth = 10

// Manifest lists every function and class defined in a file, reachable or not.
type Manifest struct {
	Filename  string   `json:"filename"`
	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
}

// Walker explores call trees of one parsed file.
type Walker struct {
	src  *extractor.Source
	defs *extractor.Definitions
}

// NewWalker indexes the definitions of a parsed file. The walker does not
// take ownership of src.
func NewWalker(src *extractor.Source) *Walker {
	return &Walker{
		src:  src,
		defs: extractor.CollectDefinitions(src),
	}
}

// NewWalkerFromFile reads and parses a file. Call Close when done.
func NewWalkerFromFile(ctx context.Context, path string) (*Walker, error) {
	src, err := extractor.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewWalker(src), nil
}

// NewWalkerFromBytes parses content. Call Close when done.
func NewWalkerFromBytes(ctx context.Context, content []byte, path string) (*Walker, error) {
	src, err := extractor.Parse(ctx, content, path)
	if err != nil {
		return nil, err
	}
	return NewWalker(src), nil
}

// Close releases the parsed file.
func (w *Walker) Close() {
	w.src.Close()
}

// Manifest returns the definitions of the file.
func (w *Walker) Manifest() Manifest {
	return Manifest{
		Filename:  w.src.Path,
		Functions: w.defs.FunctionNames(),
		Classes:   w.defs.ClassNames(),
	}
}

// Walk explores calls from start. Each dequeued name within maxDepth is added
// to the graph; if it is a defined function, an edge is added to each of its
// callees and unseen callees are queued one level deeper. Edges are added
// before the depth check, so names at depth maxDepth+1 appear as unexpanded
// leaves.
func (w *Walker) Walk(start string, maxDepth int) *graph.Graph {
	return w.walk(start, maxDepth, false)
}

// WalkWithClasses is Walk, plus: a name that is a class and not a function is
// tagged as a class and linked to its direct methods. Methods reached this way
// are leaves; they are expanded only if a call reaches them. The manifest of
// the whole file is returned with the graph.
func (w *Walker) WalkWithClasses(start string, maxDepth int) (*graph.Graph, Manifest) {
	return w.walk(start, maxDepth, true), w.Manifest()
}

type queued struct {
	name  string
	depth int
}

func (w *Walker) walk(start string, maxDepth int, withClasses bool) *graph.Graph {
	g := graph.New()

	queue := []queued{{name: start, depth: 0}}
	seen := map[string]bool{start: true}
	visited := make(map[string]bool)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur.name] || cur.depth > maxDepth {
			continue
		}
		visited[cur.name] = true

		var next []string
		if fn, ok := w.defs.Function(cur.name); ok {
			g.AddNode(cur.name, graph.KindFunction)
			next = extractor.CallNames(fn, w.src)
		} else if cls, ok := w.defs.Class(cur.name); ok && withClasses {
			g.AddNode(cur.name, graph.KindClass)
			for _, method := range extractor.Methods(cls, w.src) {
				g.AddEdge(cur.name, method)
			}
		} else {
			g.AddNode(cur.name, graph.KindNone)
		}

		for _, callee := range next {
			g.AddEdge(cur.name, callee)
			if !seen[callee] {
				seen[callee] = true
				queue = append(queue, queued{name: callee, depth: cur.depth + 1})
			}
		}
	}

	return g
}
