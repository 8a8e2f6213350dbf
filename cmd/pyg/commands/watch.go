package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/l3aro/go-pygraph/internal/scanner"
	"github.com/l3aro/go-pygraph/internal/watcher"
	"github.com/l3aro/go-pygraph/pkg/cache"
	"github.com/spf13/cobra"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Drop the graph caches whenever sources change",
	Long: `Watches the Python sources under path and removes the class and call
graph caches (with their fingerprints) after every change, so the next
classes or calls run extracts again. Stops on Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			cfg.SourceRoot = args[0]
		}
		debounce, _ := cmd.Flags().GetDuration("debounce")

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		w, err := watcher.New(watcher.Config{
			Root:     cfg.SourceRoot,
			Options:  scanner.DefaultOptions(),
			Debounce: debounce,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		defer w.Close()

		logger.Info("watching sources", "root", cfg.SourceRoot, "dirs", len(w.Dirs()))
		fmt.Println(okStyle.Render(fmt.Sprintf("Watching %s (Ctrl-C to stop)", cfg.SourceRoot)))

		return w.Run(ctx, func(paths []string) error {
			for _, p := range paths {
				logger.Info("source changed", "path", p)
			}
			return invalidateCaches()
		})
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", watcher.DefaultDebounce, "Quiet period before caches are dropped")
	RootCmd.AddCommand(watchCmd)
}

// invalidateCaches removes every configured graph cache. The badger store is
// opened only for the duration of the delete so other commands can use it.
func invalidateCaches() error {
	caches := []cache.Cache{
		cache.NewEdgeListCache(cfg.ClassCache, logger),
		cache.NewBlobCache(cfg.CallCache),
	}
	for _, c := range caches {
		if !c.Exists() {
			continue
		}
		if err := dropCache(c); err != nil {
			return err
		}
		logger.Info("cache dropped", "path", c.Path())
	}

	if cfg.StoreDir == "" {
		return nil
	}
	c, closeStore, err := openCallCache()
	if err != nil {
		logger.Warn("cannot open store", "dir", cfg.StoreDir, "error", err)
		return nil
	}
	defer closeStore()
	if c.Exists() {
		if err := dropCache(c); err != nil {
			return err
		}
		logger.Info("cache dropped", "path", c.Path())
	}
	return nil
}
