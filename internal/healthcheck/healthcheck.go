package healthcheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-pygraph/internal/config"
	"github.com/l3aro/go-pygraph/internal/scanner"
	"github.com/l3aro/go-pygraph/pkg/cache"
	"github.com/l3aro/go-pygraph/pkg/dirty"
	"github.com/l3aro/go-pygraph/pkg/extractor"
)

// Status values reported by each check.
const (
	StatusOK      = "ok"
	StatusWarn    = "warn"
	StatusError   = "error"
	StatusMissing = "missing"
)

// parserProbe is parsed to prove the python grammar is usable.
const parserProbe = "def main():\n    helper()\n"

// CheckStatus is the outcome of a single check.
type CheckStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	// Stale lists sources changed or removed since the cache was written.
	Stale []string `json:"stale,omitempty"`
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	EffectivePath  string        `json:"config_path,omitempty"`
	EffectiveScope string        `json:"config_scope,omitempty"` // "global", "project" or ""
	Checks         []CheckStatus `json:"checks"`
}

// Failed reports whether any check ended in error.
func (r *HealthCheckResult) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusError {
			return true
		}
	}
	return false
}

// Check performs a health check against the given config.
// effectivePath is the config file actually in use (may be empty when only
// defaults apply).
func Check(ctx context.Context, cfg *config.Config, effectivePath string) (*HealthCheckResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	result := &HealthCheckResult{
		EffectivePath:  effectivePath,
		EffectiveScope: scopeFromPath(effectivePath),
	}

	result.Checks = append(result.Checks,
		checkConfig(cfg),
		checkSourceRoot(cfg.SourceRoot),
		checkParser(ctx),
		checkFileCache("class cache", cfg.ClassCache),
		checkFileCache("call cache", cfg.CallCache),
	)
	if cfg.StoreDir != "" {
		result.Checks = append(result.Checks, checkStore(cfg.StoreDir))
	}

	return result, nil
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		globalDir := filepath.Join(home, ".pyg")
		if strings.HasPrefix(path, globalDir) {
			return "global"
		}
	}

	return "project"
}

func checkConfig(cfg *config.Config) CheckStatus {
	if err := cfg.Validate(); err != nil {
		return CheckStatus{Name: "config", Status: StatusError, Detail: err.Error()}
	}
	return CheckStatus{Name: "config", Status: StatusOK}
}

// checkSourceRoot verifies the root exists and holds at least one source file.
func checkSourceRoot(root string) CheckStatus {
	st := CheckStatus{Name: "source root"}

	if _, err := os.Stat(root); err != nil {
		st.Status = StatusError
		st.Detail = err.Error()
		return st
	}

	files, err := scanner.Scan(root)
	if err != nil {
		st.Status = StatusError
		st.Detail = err.Error()
		return st
	}
	if len(files) == 0 {
		st.Status = StatusWarn
		st.Detail = fmt.Sprintf("no python files under %s", root)
		return st
	}

	st.Status = StatusOK
	st.Detail = fmt.Sprintf("%d python files", len(files))
	return st
}

// checkParser runs the call extractor over a tiny module.
func checkParser(ctx context.Context) CheckStatus {
	st := CheckStatus{Name: "python parser"}

	g, err := extractor.ExtractBytes(ctx, []byte(parserProbe), "<probe>", extractor.NewCallExtractor())
	if err != nil {
		st.Status = StatusError
		st.Detail = err.Error()
		return st
	}
	if !g.HasEdge("main", "helper") {
		st.Status = StatusError
		st.Detail = "probe call not extracted"
		return st
	}

	st.Status = StatusOK
	return st
}

// checkFileCache reports whether a cache file exists and whether the sources
// recorded next to it have changed since.
func checkFileCache(name, path string) CheckStatus {
	st := CheckStatus{Name: name}

	info, err := os.Stat(path)
	if err != nil {
		st.Status = StatusMissing
		st.Detail = fmt.Sprintf("%s (built on next run)", path)
		return st
	}
	if info.IsDir() {
		st.Status = StatusError
		st.Detail = fmt.Sprintf("%s is a directory", path)
		return st
	}

	tracker, err := dirty.ForCache(path)
	if err != nil {
		st.Status = StatusWarn
		st.Detail = fmt.Sprintf("%s: unreadable fingerprints: %v", path, err)
		return st
	}
	if tracker.TotalCount() == 0 {
		st.Status = StatusOK
		st.Detail = fmt.Sprintf("%s (no fingerprints)", path)
		return st
	}

	report := tracker.Check()
	if report.Dirty() {
		st.Status = StatusWarn
		st.Detail = fmt.Sprintf("%s: %d of %d sources changed since cached", path,
			len(report.Changed)+len(report.Missing), report.Tracked)
		st.Stale = append(append(st.Stale, report.Changed...), report.Missing...)
		return st
	}

	st.Status = StatusOK
	st.Detail = fmt.Sprintf("%s (%d sources unchanged)", path, report.Tracked)
	return st
}

func checkStore(dir string) CheckStatus {
	st := CheckStatus{Name: "graph store"}

	store, err := cache.OpenStore(dir)
	if err != nil {
		st.Status = StatusError
		st.Detail = err.Error()
		return st
	}
	defer store.Close()

	keys, err := store.Keys()
	if err != nil {
		st.Status = StatusError
		st.Detail = err.Error()
		return st
	}

	st.Status = StatusOK
	st.Detail = fmt.Sprintf("%s (%d graphs)", dir, len(keys))
	return st
}
