package commands

import (
	"fmt"

	"github.com/l3aro/go-pygraph/pkg/dot"
	"github.com/l3aro/go-pygraph/pkg/extractor"
	"github.com/l3aro/go-pygraph/pkg/graph"
	"github.com/l3aro/go-pygraph/pkg/render"
	"github.com/spf13/cobra"
)

// DotParseOutput is the --json output of dot parse.
type DotParseOutput struct {
	File    string          `json:"file"`
	Edges   []graph.Edge    `json:"edges"`
	Skipped []dot.LineError `json:"skipped,omitempty"`
}

// dotCmd groups the DOT subcommands
var dotCmd = &cobra.Command{
	Use:   "dot",
	Short: "Export or parse DOT edge files",
}

var dotExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the class or call graph of a source tree as DOT",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			cfg.SourceRoot = args[0]
		}
		out, _ := cmd.Flags().GetString("output")
		size, _ := cmd.Flags().GetString("size")
		kind, _ := cmd.Flags().GetString("graph")

		var ex extractor.Extractor
		switch kind {
		case "calls":
			ex = extractor.NewCallExtractor()
		case "classes":
			ex = extractor.NewClassExtractor()
		default:
			return fmt.Errorf("unknown graph %q (use 'calls' or 'classes')", kind)
		}

		batch := &extractor.Batch{Extractor: ex, Logger: logger}
		g, skipped, err := batch.Directory(cmd.Context(), cfg.SourceRoot)
		if err != nil {
			return err
		}
		if err := dot.WriteFile(out, g.Edges(), size); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}

		summary := summarize(g, skipped)
		summary.Root = cfg.SourceRoot
		summary.Output = out

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(summary)
		}
		printSummary("DOT export", summary)
		return nil
	},
}

var dotParseCmd = &cobra.Command{
	Use:   "parse <file.dot>",
	Short: "Read edges back from a DOT file",
	Long: `Reads "parent" -> "child" lines from a DOT file. Malformed edge lines are
reported and skipped. With --draw, the edges are also drawn as SVG.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edges, skipped, err := dot.ParseFile(args[0])
		if err != nil {
			return err
		}
		for _, le := range skipped {
			logger.Warn("skipping malformed DOT line", "file", args[0], "line", le.Line, "reason", le.Reason)
		}

		if drawTo, _ := cmd.Flags().GetString("draw"); drawTo != "" {
			g := graph.FromEdges(edges)
			if err := render.Draw(drawTo, g, render.Spring(springOptions(0)), render.UniformStyle{}, renderOptions(drawTitle)); err != nil {
				return err
			}
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(DotParseOutput{File: args[0], Edges: edges, Skipped: skipped})
		}
		for _, e := range edges {
			fmt.Println(e)
		}
		if len(skipped) > 0 {
			fmt.Println(warnStyle.Render(fmt.Sprintf("skipped %d malformed lines", len(skipped))))
		}
		return nil
	},
}

func init() {
	dotExportCmd.Flags().StringP("output", "o", "graph.dot", "DOT output file")
	dotExportCmd.Flags().String("size", "", `Optional size attribute, e.g. "10,10"`)
	dotExportCmd.Flags().StringP("graph", "g", "calls", "Graph to export: calls or classes")
	dotExportCmd.Flags().BoolP("json", "j", false, "Output as JSON")

	dotParseCmd.Flags().String("draw", "", "Also draw the edges to this SVG file")
	dotParseCmd.Flags().BoolP("json", "j", false, "Output as JSON")

	dotCmd.AddCommand(dotExportCmd)
	dotCmd.AddCommand(dotParseCmd)
	RootCmd.AddCommand(dotCmd)
}
