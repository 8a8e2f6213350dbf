package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/l3aro/go-pygraph/pkg/extractor"
	"github.com/l3aro/go-pygraph/pkg/graph"
	"github.com/l3aro/go-pygraph/pkg/render"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(10)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// GraphSummary is the --json output shared by the graph commands.
type GraphSummary struct {
	Root      string   `json:"root,omitempty"`
	Cache     string   `json:"cache,omitempty"`
	Loaded    bool     `json:"loaded"`
	Nodes     int      `json:"nodes"`
	Edges     int      `json:"edges"`
	Classes   int      `json:"classes,omitempty"`
	Functions int      `json:"functions,omitempty"`
	Output    string   `json:"output,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
}

func summarize(g *graph.Graph, skipped []extractor.FileError) GraphSummary {
	s := GraphSummary{
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		Classes:   g.CountKind(graph.KindClass),
		Functions: g.CountKind(graph.KindFunction),
	}
	for _, fe := range skipped {
		s.Skipped = append(s.Skipped, fe.Error())
	}
	return s
}

func printSummary(title string, s GraphSummary) {
	fmt.Println(headerStyle.Render(title))
	if s.Root != "" {
		fmt.Println(labelStyle.Render("root") + s.Root)
	}
	if s.Cache != "" {
		fmt.Println(labelStyle.Render("cache") + s.Cache)
	}
	fmt.Println(labelStyle.Render("nodes") + fmt.Sprint(s.Nodes))
	fmt.Println(labelStyle.Render("edges") + fmt.Sprint(s.Edges))
	if s.Classes > 0 {
		fmt.Println(labelStyle.Render("classes") + fmt.Sprint(s.Classes))
	}
	if s.Output != "" {
		fmt.Println(labelStyle.Render("output") + okStyle.Render(s.Output))
	}
	if len(s.Skipped) > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("skipped %d files:", len(s.Skipped))))
		for _, msg := range s.Skipped {
			fmt.Println("  " + msg)
		}
	}
}

// renderOptions builds canvas options from the configuration.
func renderOptions(title string) render.Options {
	opts := render.DefaultOptions()
	opts.Width = cfg.Width
	opts.Height = cfg.Height
	opts.Title = title
	return opts
}

func springOptions(k float64) render.SpringOptions {
	return render.SpringOptions{K: k, Iterations: cfg.Iterations, Seed: cfg.Seed}
}
