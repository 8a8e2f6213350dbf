package commands

import (
	"fmt"

	"github.com/l3aro/go-pygraph/internal/config"
	"github.com/l3aro/go-pygraph/pkg/cache"
	"github.com/l3aro/go-pygraph/pkg/extractor"
	"github.com/l3aro/go-pygraph/pkg/graph"
	"github.com/l3aro/go-pygraph/pkg/render"
	"github.com/spf13/cobra"
)

const (
	callGraphTitle = "Function Call Graph"
	callTreeTitle  = "Function Call Tree"

	// storeKey names the call graph inside a badger store.
	storeKey = "calls"
	// springK spreads the degree-colored drawing wider than the default.
	springK = 0.5
)

// callsCmd represents the calls command
var callsCmd = &cobra.Command{
	Use:   "calls [path]",
	Short: "Draw the call graph of a source tree",
	Long: `Extracts every call made inside a function or method under path and draws
the caller -> callee graph. The graph is cached (msgpack file, or a badger
store when store_dir is set) and reused until the cache is removed.

Modes:
  graph   spring layout, uniform colors
  tree    columns by in-degree
  spring  wider spring layout, high-degree nodes highlighted`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			cfg.SourceRoot = args[0]
		}
		overrideString(cmd, "cache", &cfg.CallCache)
		overrideString(cmd, "store", &cfg.StoreDir)
		overrideString(cmd, "output", &cfg.Output)
		overrideInt(cmd, "threshold", &cfg.DegreeThreshold)
		if cmd.Flags().Changed("mode") {
			mode, _ := cmd.Flags().GetString("mode")
			cfg.CallView = config.CallView(mode)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		c, closeCache, err := openCallCache()
		if err != nil {
			return err
		}
		defer closeCache()

		if rebuild, _ := cmd.Flags().GetBool("rebuild"); rebuild {
			if err := dropCache(c); err != nil {
				return err
			}
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")

		var skipped []extractor.FileError
		g, loaded, err := cache.LoadOrBuild(c, func() (*graph.Graph, error) {
			var err error
			var g *graph.Graph
			g, skipped, err = buildAndFingerprint(cmd.Context(), cfg.SourceRoot, c.Path(), extractor.NewCallExtractor())
			return g, err
		})
		if err != nil {
			return err
		}
		if !jsonOutput {
			if loaded {
				fmt.Println("Loaded call graph from file.")
			} else {
				fmt.Println("Saved call graph to file.")
			}
		}

		layout, style, title := callView(cfg.CallView)
		if err := render.Draw(cfg.Output, g, layout, style, renderOptions(title)); err != nil {
			return err
		}

		summary := summarize(g, skipped)
		summary.Root = cfg.SourceRoot
		summary.Cache = c.Path()
		summary.Loaded = loaded
		summary.Output = cfg.Output

		if jsonOutput {
			return printJSON(summary)
		}
		printSummary(title, summary)
		return nil
	},
}

func init() {
	callsCmd.Flags().String("cache", "", "Call graph cache file (overrides call_cache)")
	callsCmd.Flags().String("store", "", "Badger store directory (overrides store_dir)")
	callsCmd.Flags().StringP("output", "o", "", "SVG output file")
	callsCmd.Flags().StringP("mode", "m", "", "Drawing mode: graph, tree or spring")
	callsCmd.Flags().Int("threshold", 0, "Degree from which spring mode highlights nodes")
	callsCmd.Flags().Bool("rebuild", false, "Ignore an existing cache and extract again")
	callsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(callsCmd)
}

// openCallCache returns the badger-backed cache when a store is configured,
// the msgpack file otherwise.
func openCallCache() (cache.Cache, func(), error) {
	if cfg.StoreDir == "" {
		return cache.NewBlobCache(cfg.CallCache), func() {}, nil
	}

	store, err := cache.OpenStore(cfg.StoreDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store %s: %w", cfg.StoreDir, err)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store", "dir", cfg.StoreDir, "error", err)
		}
	}
	return store.Cache(storeKey), closeStore, nil
}

// callView picks layout, coloring and title for a drawing mode.
func callView(view config.CallView) (render.LayoutFunc, render.Style, string) {
	switch view {
	case config.ViewTree:
		return render.Layered(), render.UniformStyle{}, callTreeTitle
	case config.ViewGraph:
		return render.Spring(springOptions(0)), render.UniformStyle{}, callGraphTitle
	default:
		return render.Spring(springOptions(springK)), render.DegreeStyle{Threshold: cfg.DegreeThreshold}, callTreeTitle
	}
}
