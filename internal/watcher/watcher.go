// Package watcher reports changes to Python sources under a root directory.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/l3aro/go-pygraph/internal/log"
	"github.com/l3aro/go-pygraph/internal/scanner"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before reporting it.
const DefaultDebounce = 200 * time.Millisecond

// Config holds configuration for the watcher.
type Config struct {
	Root     string
	Options  scanner.Options
	Debounce time.Duration
	Logger   log.Logger
}

// Watcher watches the source directories under a root.
type Watcher struct {
	cfg  Config
	scan *scanner.Scanner
	fsw  *fsnotify.Watcher
}

// New creates a watcher and registers every directory under cfg.Root that
// the scanner would descend into.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Discard()
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cfg.Root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{cfg: cfg, scan: scanner.New(cfg.Options), fsw: fsw}
	if err := w.addRecursive(cfg.Root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string {
	dirs := w.fsw.WatchList()
	sort.Strings(dirs)
	return dirs
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && w.scan.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// relevant reports whether an event touches a collected source file.
func (w *Watcher) relevant(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") && w.cfg.Options.SkipHidden {
		return false
	}
	return w.scan.Wanted(path)
}

// Run consumes events on the calling goroutine until ctx is done. Changes to
// source files are collected until no event arrives for the debounce window,
// then onChange is called with the changed paths in sorted order. An error
// from onChange stops the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string) error) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if !w.scan.SkipDir(info.Name()) {
						if err := w.addRecursive(ev.Name); err != nil {
							w.cfg.Logger.Warn("cannot watch new directory", "path", ev.Name, "error", err)
						}
					}
					continue
				}
			}
			if ev.Op == fsnotify.Chmod || !w.relevant(ev.Name) {
				continue
			}

			w.cfg.Logger.Debug("source changed", "path", ev.Name, "op", ev.Op.String())
			pending[ev.Name] = true
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.cfg.Logger.Warn("watch error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]bool)

			if err := onChange(paths); err != nil {
				return err
			}
		}
	}
}
