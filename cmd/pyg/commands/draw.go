package commands

import (
	"errors"
	"fmt"

	"github.com/l3aro/go-pygraph/pkg/cache"
	"github.com/l3aro/go-pygraph/pkg/render"
	"github.com/spf13/cobra"
)

const drawTitle = "Tree Visualization"

// drawCmd represents the draw command
var drawCmd = &cobra.Command{
	Use:   "draw <edges.json>",
	Short: "Draw a saved JSON edge list",
	Long: `Reads a JSON array of [from, to] pairs, such as the class cache, and draws
it. Entries that are not pairs of names are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overrideString(cmd, "output", &cfg.Output)

		g, err := cache.NewEdgeListCache(args[0], logger).Load()
		if errors.Is(err, cache.ErrNotCached) {
			return fmt.Errorf("edge list %s does not exist", args[0])
		}
		if err != nil {
			return err
		}

		layout := render.Spring(springOptions(0))
		if layered, _ := cmd.Flags().GetBool("layered"); layered {
			layout = render.Layered()
		}
		if err := render.Draw(cfg.Output, g, layout, render.UniformStyle{}, renderOptions(drawTitle)); err != nil {
			return err
		}

		summary := summarize(g, nil)
		summary.Cache = args[0]
		summary.Loaded = true
		summary.Output = cfg.Output

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(summary)
		}
		printSummary(drawTitle, summary)
		return nil
	},
}

func init() {
	drawCmd.Flags().StringP("output", "o", "", "SVG output file")
	drawCmd.Flags().Bool("layered", false, "Place nodes in columns by in-degree")
	drawCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(drawCmd)
}
