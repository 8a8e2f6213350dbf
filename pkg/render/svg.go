package render

import (
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/l3aro/go-pygraph/pkg/graph"
)

// Options controls the drawing canvas.
type Options struct {
	Width      int
	Height     int
	Title      string
	NodeRadius int
	FontSize   int
	EdgeColor  string
	// Labels draws node names next to nodes.
	Labels bool
}

// DefaultOptions returns a 1200x1200 canvas with labels.
func DefaultOptions() Options {
	return Options{
		Width:      1200,
		Height:     1200,
		NodeRadius: 18,
		FontSize:   10,
		EdgeColor:  "lightgray",
		Labels:     true,
	}
}

const titleHeight = 40

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, nil
}

// WriteSVG draws g with the given positions and colors. Nodes missing from the
// layout are drawn at the center.
func WriteSVG(w io.Writer, g *graph.Graph, layout Layout, style Style, opts Options) error {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.NodeRadius <= 0 {
		opts.NodeRadius = def.NodeRadius
	}
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	if opts.EdgeColor == "" {
		opts.EdgeColor = def.EdgeColor
	}
	if style == nil {
		style = UniformStyle{}
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(opts.Width, opts.Height)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}

	canvas.Def()
	canvas.Marker("arrow", 10, 5, 8, 8, `orient="auto"`, `viewBox="0 0 10 10"`, `markerUnits="strokeWidth"`)
	canvas.Path("M 0 0 L 10 5 L 0 10 z", "fill:"+opts.EdgeColor)
	canvas.MarkerEnd()
	canvas.DefEnd()

	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:white")
	if opts.Title != "" {
		canvas.Text(opts.Width/2, titleHeight/2+opts.FontSize/2, opts.Title,
			fmt.Sprintf("text-anchor:middle;font-family:sans-serif;font-size:%dpx;font-weight:bold", opts.FontSize+6))
	}

	proj := newProjection(opts)
	at := func(name string) (int, int) {
		return proj.point(layout[name])
	}

	canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:1;stroke-opacity:0.8", opts.EdgeColor))
	for _, e := range g.Edges() {
		x1, y1 := at(e.From)
		x2, y2 := at(e.To)
		if e.From == e.To {
			r := opts.NodeRadius
			canvas.Path(fmt.Sprintf("M %d %d C %d %d %d %d %d %d", x1-r/2, y1-r, x1-2*r, y1-3*r, x1+2*r, y1-3*r, x1+r/2, y1-r),
				"fill:none", `marker-end="url(#arrow)"`)
			continue
		}
		x2, y2 = shorten(x1, y1, x2, y2, opts.NodeRadius)
		canvas.Line(x1, y1, x2, y2, `marker-end="url(#arrow)"`)
	}
	canvas.Gend()

	for _, n := range g.Nodes() {
		x, y := at(n.Name)
		canvas.Circle(x, y, opts.NodeRadius, fmt.Sprintf("fill:%s;stroke:#333;stroke-width:0.5", style.Fill(g, n)))
	}

	if opts.Labels {
		canvas.Gstyle(fmt.Sprintf("font-family:sans-serif;font-size:%dpx;font-weight:bold;text-anchor:middle;fill:#222", opts.FontSize))
		for _, n := range g.Nodes() {
			x, y := at(n.Name)
			canvas.Text(x, y+opts.FontSize/3, n.Name)
		}
		canvas.Gend()
	}

	canvas.End()
	return ew.err
}

// Draw computes the layout and writes the drawing to path. Any panic raised
// while laying out or drawing is returned as an error.
func Draw(path string, g *graph.Graph, layout LayoutFunc, style Style, opts Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rendering %s: %v", path, r)
		}
	}()

	if layout == nil {
		layout = Spring(SpringOptions{})
	}
	positions := layout(g)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteSVG(f, g, positions, style, opts); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// projection maps layout coordinates onto the canvas.
type projection struct {
	left, top     float64
	width, height float64
}

func newProjection(opts Options) projection {
	margin := float64(opts.NodeRadius + 4*opts.FontSize)
	top := margin
	if opts.Title != "" {
		top += titleHeight
	}
	return projection{
		left:   margin,
		top:    top,
		width:  math.Max(float64(opts.Width)-2*margin, 1),
		height: math.Max(float64(opts.Height)-top-margin, 1),
	}
}

func (p projection) point(pt Point) (int, int) {
	x := p.left + (pt.X+1)/2*p.width
	y := p.top + (pt.Y+1)/2*p.height
	return int(math.Round(x)), int(math.Round(y))
}

// shorten pulls the end of a line back by r so arrows stop at the node border.
func shorten(x1, y1, x2, y2, r int) (int, int) {
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	d := math.Hypot(dx, dy)
	if d <= float64(r) {
		return x2, y2
	}
	f := (d - float64(r)) / d
	return x1 + int(math.Round(dx*f)), y1 + int(math.Round(dy*f))
}
