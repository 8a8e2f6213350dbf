package commands

import (
	"context"
	"fmt"

	"github.com/l3aro/go-pygraph/internal/scanner"
	"github.com/l3aro/go-pygraph/pkg/cache"
	"github.com/l3aro/go-pygraph/pkg/dirty"
	"github.com/l3aro/go-pygraph/pkg/extractor"
	"github.com/l3aro/go-pygraph/pkg/graph"
	"github.com/l3aro/go-pygraph/pkg/render"
	"github.com/spf13/cobra"
)

const classesTitle = "Graph of Classes and Functions Relationships"

// classesCmd represents the classes command
var classesCmd = &cobra.Command{
	Use:   "classes [path]",
	Short: "Draw the class and function graph of a source tree",
	Long: `Extracts every class and function defined under path and draws an edge
from each class to each of its methods. The edge list is cached as JSON and
reused on later runs until the cache file is removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			cfg.SourceRoot = args[0]
		}
		overrideString(cmd, "cache", &cfg.ClassCache)
		overrideString(cmd, "output", &cfg.Output)

		c := cache.NewEdgeListCache(cfg.ClassCache, logger)
		if rebuild, _ := cmd.Flags().GetBool("rebuild"); rebuild {
			if err := dropCache(c); err != nil {
				return err
			}
		}

		var skipped []extractor.FileError
		g, loaded, err := cache.LoadOrBuild(c, func() (*graph.Graph, error) {
			var err error
			var g *graph.Graph
			g, skipped, err = buildAndFingerprint(cmd.Context(), cfg.SourceRoot, c.Path(), extractor.NewClassExtractor())
			return g, err
		})
		if err != nil {
			return err
		}

		if err := render.Draw(cfg.Output, g, render.Spring(springOptions(0)), render.KindStyle{}, renderOptions(classesTitle)); err != nil {
			return err
		}

		summary := summarize(g, skipped)
		summary.Root = cfg.SourceRoot
		summary.Cache = c.Path()
		summary.Loaded = loaded
		summary.Output = cfg.Output

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(summary)
		}
		printSummary(classesTitle, summary)
		return nil
	},
}

func init() {
	classesCmd.Flags().String("cache", "", "Edge list cache file (overrides class_cache)")
	classesCmd.Flags().StringP("output", "o", "", "SVG output file")
	classesCmd.Flags().Bool("rebuild", false, "Ignore an existing cache and extract again")
	classesCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(classesCmd)
}

// buildAndFingerprint extracts every source under root and records their
// hashes next to the cache.
func buildAndFingerprint(ctx context.Context, root, cachePath string, ex extractor.Extractor) (*graph.Graph, []extractor.FileError, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := scanner.Scan(root)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	paths := scanner.Paths(files)
	logger.Debug("scanned sources", "root", root, "files", len(paths))

	batch := &extractor.Batch{Extractor: ex, Logger: logger}
	g, skipped, err := batch.Files(ctx, paths)
	if err != nil {
		return nil, skipped, err
	}
	for _, e := range g.Edges() {
		logger.Debug("edge", "from", e.From, "to", e.To)
	}

	tracker := dirty.New(dirty.SidecarPath(cachePath))
	unreadable, err := tracker.Record(ctx, paths)
	if err != nil {
		return nil, skipped, err
	}
	for _, path := range unreadable {
		logger.Warn("cannot fingerprint source", "path", path)
	}
	if err := tracker.Save(); err != nil {
		logger.Warn("cannot save fingerprints", "path", tracker.Path(), "error", err)
	}

	return g, skipped, nil
}

// dropCache removes a cache and its fingerprint sidecar.
func dropCache(c cache.Cache) error {
	if err := cache.Remove(c); err != nil {
		return fmt.Errorf("removing cache %s: %w", c.Path(), err)
	}
	if err := dirty.New(dirty.SidecarPath(c.Path())).Remove(); err != nil {
		return fmt.Errorf("removing fingerprints for %s: %w", c.Path(), err)
	}
	logger.Debug("cache removed", "path", c.Path())
	return nil
}
