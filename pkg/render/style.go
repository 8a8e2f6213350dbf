package render

import "github.com/l3aro/go-pygraph/pkg/graph"

// Node fill colors.
const (
	ColorDefault = "lightblue"
	ColorClass   = "green"
	ColorHigh    = "lightcoral"
)

// Style assigns a fill color to each node.
type Style interface {
	Fill(g *graph.Graph, n graph.Node) string
}

// UniformStyle paints every node the same color.
type UniformStyle struct {
	Color string
}

func (s UniformStyle) Fill(_ *graph.Graph, _ graph.Node) string {
	return orDefault(s.Color, ColorDefault)
}

// KindStyle highlights class-tagged nodes.
type KindStyle struct {
	Default string
	Class   string
}

func (s KindStyle) Fill(_ *graph.Graph, n graph.Node) string {
	if n.Kind == graph.KindClass {
		return orDefault(s.Class, ColorClass)
	}
	return orDefault(s.Default, ColorDefault)
}

// DegreeStyle highlights nodes whose degree (in plus out) reaches Threshold.
type DegreeStyle struct {
	Threshold int
	Default   string
	High      string
}

// DefaultDegreeThreshold is the degree from which DegreeStyle highlights.
const DefaultDegreeThreshold = 3

func (s DegreeStyle) Fill(g *graph.Graph, n graph.Node) string {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = DefaultDegreeThreshold
	}
	if g.Degree(n.Name) >= threshold {
		return orDefault(s.High, ColorHigh)
	}
	return orDefault(s.Default, ColorDefault)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
