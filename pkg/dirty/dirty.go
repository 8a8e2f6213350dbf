// Package dirty records content hashes of the sources a cache was built from.
//
// The record is written next to the cache as <cache>.sources.json and lets
// pyg doctor report caches whose sources have changed since. It is purely
// informational: a cache is never invalidated because of it.
package dirty

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// SidecarSuffix is appended to a cache path to name its fingerprint file.
const SidecarSuffix = ".sources.json"

// SidecarPath returns the fingerprint file that belongs to a cache.
func SidecarPath(cachePath string) string {
	return cachePath + SidecarSuffix
}

// fileState is the recorded fingerprint of one source file.
type fileState struct {
	Path     string `json:"path"`
	Hash     string `json:"hash"`
	LastSeen int64  `json:"last_seen"` // Unix timestamp
}

// dirtyData is the on-disk JSON structure.
type dirtyData struct {
	Version int         `json:"version"`
	Files   []fileState `json:"files"`
}

// Tracker holds the fingerprints of a set of source files.
type Tracker struct {
	mu    sync.RWMutex
	files map[string]fileState
	path  string
	now   func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source used for LastSeen stamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New creates an empty Tracker persisted at path.
func New(path string, opts ...Option) *Tracker {
	t := &Tracker{
		files: make(map[string]fileState),
		path:  path,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ForCache creates a Tracker for the sidecar of a cache and loads it if present.
func ForCache(cachePath string, opts ...Option) (*Tracker, error) {
	t := New(SidecarPath(cachePath), opts...)
	if err := t.Load(); err != nil {
		return nil, err
	}
	return t, nil
}

// Path returns the fingerprint file path.
func (t *Tracker) Path() string { return t.path }

// computeHash computes SHA256 hash of file contents.
func computeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to hash file %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Record replaces the tracked set with the current hashes of paths.
// Files that cannot be hashed are left out and returned.
func (t *Tracker) Record(ctx context.Context, paths []string) ([]string, error) {
	files := make(map[string]fileState, len(paths))
	var unreadable []string
	stamp := t.now().Unix()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return unreadable, err
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			unreadable = append(unreadable, path)
			continue
		}
		hash, err := computeHash(absPath)
		if err != nil {
			unreadable = append(unreadable, path)
			continue
		}
		files[absPath] = fileState{Path: absPath, Hash: hash, LastSeen: stamp}
	}

	t.mu.Lock()
	t.files = files
	t.mu.Unlock()
	return unreadable, nil
}

// Report lists tracked files that differ from their recorded fingerprint.
type Report struct {
	Tracked int      `json:"tracked"`
	Changed []string `json:"changed"`
	Missing []string `json:"missing"`
}

// Dirty reports whether any tracked source changed or disappeared.
func (r Report) Dirty() bool {
	return len(r.Changed) > 0 || len(r.Missing) > 0
}

// Check rehashes every tracked file and reports the differences.
func (t *Tracker) Check() Report {
	t.mu.RLock()
	defer t.mu.RUnlock()

	report := Report{Tracked: len(t.files)}
	for _, state := range t.files {
		hash, err := computeHash(state.Path)
		switch {
		case err != nil:
			report.Missing = append(report.Missing, state.Path)
		case hash != state.Hash:
			report.Changed = append(report.Changed, state.Path)
		}
	}
	sort.Strings(report.Changed)
	sort.Strings(report.Missing)
	return report
}

// TotalCount returns the total number of tracked files.
func (t *Tracker) TotalCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.files)
}

// GetHash returns the recorded hash for a tracked file.
func (t *Tracker) GetHash(path string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	state, exists := t.files[absPath]
	return state.Hash, exists
}

// Save persists the fingerprints to the tracker's path.
func (t *Tracker) Save() error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("failed to create fingerprint file: %w", err)
	}
	defer f.Close()

	return t.SaveTo(f)
}

// Load restores fingerprints from the tracker's path. A missing file leaves
// the tracker empty.
func (t *Tracker) Load() error {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open fingerprint file: %w", err)
	}
	defer f.Close()

	return t.LoadFrom(f)
}

// Remove deletes the fingerprint file. A missing file is not an error.
func (t *Tracker) Remove() error {
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	t.mu.Lock()
	t.files = make(map[string]fileState)
	t.mu.Unlock()
	return nil
}

// SaveTo writes the fingerprints to the given writer, sorted by path.
func (t *Tracker) SaveTo(w io.Writer) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	files := make([]fileState, 0, len(t.files))
	for _, state := range t.files {
		files = append(files, state)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	data := dirtyData{
		Version: 1,
		Files:   files,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode fingerprints: %w", err)
	}
	return nil
}

// LoadFrom reads fingerprints from the given reader.
func (t *Tracker) LoadFrom(r io.Reader) error {
	var data dirtyData
	dec := json.NewDecoder(r)
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("failed to decode fingerprints: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = make(map[string]fileState, len(data.Files))
	for _, state := range data.Files {
		t.files[state.Path] = state
	}
	return nil
}
