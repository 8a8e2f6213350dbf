// Package cache persists extracted graphs between runs.
//
// A cache is valid as soon as it exists: nothing compares it with the source
// tree. Delete the cache file (or run pyg watch) to force a rebuild.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/l3aro/go-pygraph/internal/log"
	"github.com/l3aro/go-pygraph/pkg/graph"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotCached is returned when loading a cache that does not exist.
var ErrNotCached = errors.New("not cached")

// Cache stores one graph.
type Cache interface {
	// Exists reports whether a snapshot is present.
	Exists() bool

	// Load reads the snapshot. Returns ErrNotCached if there is none.
	Load() (*graph.Graph, error)

	// Save replaces the snapshot.
	Save(g *graph.Graph) error

	// Path describes where the snapshot lives.
	Path() string
}

// LoadOrBuild returns the cached graph if the cache exists, otherwise builds
// it and saves the result. loaded reports which happened.
func LoadOrBuild(c Cache, build func() (*graph.Graph, error)) (g *graph.Graph, loaded bool, err error) {
	if c.Exists() {
		g, err = c.Load()
		if err != nil {
			return nil, false, fmt.Errorf("loading cache %s: %w", c.Path(), err)
		}
		return g, true, nil
	}

	g, err = build()
	if err != nil {
		return nil, false, err
	}
	if err := c.Save(g); err != nil {
		return g, false, fmt.Errorf("saving cache %s: %w", c.Path(), err)
	}
	return g, false, nil
}

// EntryError describes an edge-list entry that was skipped.
type EntryError struct {
	Index int    `json:"index"`
	Raw   string `json:"raw"`
}

func (e EntryError) Error() string {
	return fmt.Sprintf("entry %d is not a [from, to] pair: %s", e.Index, e.Raw)
}

// EdgeListCache stores a graph as a JSON array of [from, to] pairs.
// Node tags and isolated nodes are not kept.
type EdgeListCache struct {
	path   string
	logger log.Logger
}

// NewEdgeListCache creates an edge-list cache at path. A nil logger discards
// diagnostics.
func NewEdgeListCache(path string, logger log.Logger) *EdgeListCache {
	if logger == nil {
		logger = log.Discard()
	}
	return &EdgeListCache{path: path, logger: logger}
}

func (c *EdgeListCache) Path() string { return c.path }

func (c *EdgeListCache) Exists() bool { return fileExists(c.path) }

func (c *EdgeListCache) Load() (*graph.Graph, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotCached
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	edges, skipped, err := ReadEdgeList(f)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		c.logger.Warn("skipping malformed cache entry", "path", c.path, "index", s.Index, "entry", s.Raw)
	}
	return graph.FromEdges(edges), nil
}

func (c *EdgeListCache) Save(g *graph.Graph) error {
	return writeFile(c.path, func(w io.Writer) error {
		return WriteEdgeList(w, g.Edges())
	})
}

// ReadEdgeList decodes a JSON array of [from, to] pairs. Entries that are not
// exactly two strings are returned as skipped rather than failing the read.
func ReadEdgeList(r io.Reader) ([]graph.Edge, []EntryError, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode edge list: %w", err)
	}

	edges := make([]graph.Edge, 0, len(raw))
	var skipped []EntryError
	for i, entry := range raw {
		var pair []string
		if err := json.Unmarshal(entry, &pair); err != nil || len(pair) != 2 {
			skipped = append(skipped, EntryError{Index: i, Raw: string(entry)})
			continue
		}
		edges = append(edges, graph.Edge{From: pair[0], To: pair[1]})
	}
	return edges, skipped, nil
}

// WriteEdgeList encodes edges as a JSON array of [from, to] pairs.
func WriteEdgeList(w io.Writer, edges []graph.Edge) error {
	pairs := make([][2]string, len(edges))
	for i, e := range edges {
		pairs[i] = [2]string{e.From, e.To}
	}
	return json.NewEncoder(w).Encode(pairs)
}

// snapshot is the serialized form of a whole graph.
type snapshot struct {
	Version int          `msgpack:"version"`
	Nodes   []graph.Node `msgpack:"nodes"`
	Edges   []graph.Edge `msgpack:"edges"`
}

const snapshotVersion = 1

func encodeSnapshot(w io.Writer, g *graph.Graph) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(snapshot{
		Version: snapshotVersion,
		Nodes:   g.Nodes(),
		Edges:   g.Edges(),
	})
}

func decodeSnapshot(r io.Reader) (*graph.Graph, error) {
	var s snapshot
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode cache: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported cache version %d", s.Version)
	}

	g := graph.New()
	for _, n := range s.Nodes {
		g.AddNode(n.Name, n.Kind)
	}
	for _, e := range s.Edges {
		g.AddEdge(e.From, e.To)
	}
	return g, nil
}

// BlobCache stores the whole graph, tags and isolated nodes included, as a
// single msgpack file.
type BlobCache struct {
	path string
}

// NewBlobCache creates a blob cache at path.
func NewBlobCache(path string) *BlobCache {
	return &BlobCache{path: path}
}

func (c *BlobCache) Path() string { return c.path }

func (c *BlobCache) Exists() bool { return fileExists(c.path) }

func (c *BlobCache) Load() (*graph.Graph, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotCached
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	return decodeSnapshot(f)
}

func (c *BlobCache) Save(g *graph.Graph) error {
	return writeFile(c.path, func(w io.Writer) error {
		return encodeSnapshot(w, g)
	})
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// writeFile writes through a temporary file in the same directory and renames
// it into place, so readers never see a partial snapshot.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// Remove deletes the snapshot of a file-backed cache. A missing file is not
// an error.
func Remove(c Cache) error {
	switch c := c.(type) {
	case *EdgeListCache, *BlobCache:
		if err := os.Remove(c.Path()); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	case *StoreCache:
		return c.Delete()
	default:
		return fmt.Errorf("cannot remove cache of type %T", c)
	}
}
