// Package render places graph nodes on a plane, assigns node colors and
// draws the result as SVG.
package render

import (
	"math"
	"math/rand"
	"sort"

	"github.com/l3aro/go-pygraph/pkg/graph"
)

// Point is a node position. Layouts return coordinates in [-1, 1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout maps node names to positions.
type Layout map[string]Point

// LayoutFunc computes a layout for a graph.
type LayoutFunc func(g *graph.Graph) Layout

// SpringOptions tunes the force-directed layout.
type SpringOptions struct {
	// K is the optimal distance between nodes. Zero means 1/sqrt(n).
	K float64
	// Iterations of the simulation. Zero means 50.
	Iterations int
	// Seed for the initial random placement.
	Seed int64
}

// Spring returns a LayoutFunc running SpringLayout with opts.
func Spring(opts SpringOptions) LayoutFunc {
	return func(g *graph.Graph) Layout { return SpringLayout(g, opts) }
}

// Layered returns a LayoutFunc running LayeredLayout.
func Layered() LayoutFunc {
	return LayeredLayout
}

// SpringLayout positions nodes with the Fruchterman-Reingold algorithm.
// Edge direction is ignored for attraction. Results are deterministic for a
// given seed.
func SpringLayout(g *graph.Graph, opts SpringOptions) Layout {
	names := g.Names()
	n := len(names)
	out := make(Layout, n)
	switch n {
	case 0:
		return out
	case 1:
		out[names[0]] = Point{}
		return out
	}

	k := opts.K
	if k <= 0 {
		k = math.Sqrt(1 / float64(n))
	}
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = 50
	}

	index := make(map[string]int, n)
	for i, name := range names {
		index[name] = i
	}
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	for _, e := range g.Edges() {
		i, j := index[e.From], index[e.To]
		adj[i][j] = true
		adj[j][i] = true
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	pos := make([]Point, n)
	for i := range pos {
		pos[i] = Point{X: rng.Float64(), Y: rng.Float64()}
	}

	// Temperature starts at a tenth of the initial spread and cools linearly
	t := 0.1 * spread(pos)
	dt := t / float64(iterations+1)

	disp := make([]Point, n)
	for iter := 0; iter < iterations; iter++ {
		for i := range disp {
			disp[i] = Point{}
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				dx := pos[i].X - pos[j].X
				dy := pos[i].Y - pos[j].Y
				dist := math.Max(math.Hypot(dx, dy), 0.01)

				force := k * k / (dist * dist)
				if adj[i][j] {
					force -= dist / k
				}
				disp[i].X += dx * force
				disp[i].Y += dy * force
			}
		}
		for i := range pos {
			length := math.Max(math.Hypot(disp[i].X, disp[i].Y), 0.01)
			pos[i].X += disp[i].X * t / length
			pos[i].Y += disp[i].Y * t / length
		}
		t -= dt
	}

	rescale(pos)
	for i, name := range names {
		out[name] = pos[i]
	}
	return out
}

// LayeredLayout places each node in a column keyed by its in-degree (the raw
// predecessor count, not depth from a root). Columns are ordered by key and
// nodes within a column keep graph insertion order.
func LayeredLayout(g *graph.Graph) Layout {
	names := g.Names()
	out := make(Layout, len(names))
	if len(names) == 0 {
		return out
	}

	layers := make(map[int][]string)
	for _, name := range names {
		d := g.InDegree(name)
		layers[d] = append(layers[d], name)
	}
	keys := make([]int, 0, len(layers))
	for k := range layers {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	pos := make([]Point, 0, len(names))
	order := make([]string, 0, len(names))
	for col, key := range keys {
		layer := layers[key]
		for row, name := range layer {
			pos = append(pos, Point{
				X: float64(col),
				Y: float64(row) - float64(len(layer)-1)/2,
			})
			order = append(order, name)
		}
	}

	rescale(pos)
	for i, name := range order {
		out[name] = pos[i]
	}
	return out
}

func spread(pos []Point) float64 {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return math.Max(maxX-minX, maxY-minY)
}

// rescale centers positions on the origin and scales the largest coordinate
// to 1.
func rescale(pos []Point) {
	if len(pos) == 0 {
		return
	}
	var cx, cy float64
	for _, p := range pos {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pos))
	cy /= float64(len(pos))

	lim := 0.0
	for i := range pos {
		pos[i].X -= cx
		pos[i].Y -= cy
		lim = math.Max(lim, math.Max(math.Abs(pos[i].X), math.Abs(pos[i].Y)))
	}
	if lim == 0 {
		return
	}
	for i := range pos {
		pos[i].X /= lim
		pos[i].Y /= lim
	}
}
