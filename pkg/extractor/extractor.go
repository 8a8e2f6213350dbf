// Package extractor turns Python source files into graphs.
//
// Two strategies are provided. ClassExtractor builds a class and function
// inventory with containment edges (class to method). CallExtractor builds an
// invocation graph (function to called name). Node identity is the bare name,
// or Class.method for methods in the inventory: entities with the same name in
// different files collide into one node when per-file graphs are composed.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/l3aro/go-pygraph/internal/log"
	"github.com/l3aro/go-pygraph/internal/scanner"
	"github.com/l3aro/go-pygraph/pkg/graph"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

var (
	// ErrParse is returned when a file is not syntactically valid Python.
	ErrParse = errors.New("parse error")
	// ErrDecode is returned when a file's bytes cannot be decoded to text.
	ErrDecode = errors.New("decode error")
)

// Extractor builds a graph from one parsed source file.
type Extractor interface {
	Extract(src *Source) *graph.Graph
}

// Source is a decoded and parsed Python file. Close releases the syntax tree.
type Source struct {
	Path    string
	Content []byte
	tree    *sitter.Tree
}

// Root returns the module node of the syntax tree.
func (s *Source) Root() *sitter.Node {
	return s.tree.RootNode()
}

// Text returns the source text covered by a node.
func (s *Source) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(s.Content)
}

// Close releases the syntax tree.
func (s *Source) Close() {
	if s.tree != nil {
		s.tree.Close()
		s.tree = nil
	}
}

// NewPythonParser creates a tree-sitter parser for Python.
// Parsers are not safe for concurrent use.
func NewPythonParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return parser
}

// Parse decodes raw file content and parses it. A tree containing syntax
// errors is rejected with ErrParse.
func Parse(ctx context.Context, raw []byte, path string) (*Source, error) {
	content, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	tree, err := NewPythonParser().ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parsing %s: %w", path, ErrParse)
	}

	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		if pos, ok := firstError(root); ok {
			return nil, fmt.Errorf("%s:%d:%d: %w", path, pos.Row+1, pos.Column+1, ErrParse)
		}
		return nil, fmt.Errorf("%s: %w", path, ErrParse)
	}
	if n := findPython2(root); n != nil {
		tree.Close()
		pos := n.StartPoint()
		return nil, fmt.Errorf("%s:%d:%d: python 2 %s: %w", path, pos.Row+1, pos.Column+1, n.Type(), ErrParse)
	}

	return &Source{Path: path, Content: content, tree: tree}, nil
}

// ParseFile reads and parses a file.
func ParseFile(ctx context.Context, path string) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return Parse(ctx, raw, path)
}

// python2Statements are grammar nodes that only Python 2 accepts.
var python2Statements = map[string]bool{
	"print_statement": true,
	"exec_statement":  true,
}

// findPython2 returns the first Python 2 only statement in document order.
func findPython2(n *sitter.Node) *sitter.Node {
	if python2Statements[n.Type()] {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child != nil {
			if found := findPython2(child); found != nil {
				return found
			}
		}
	}
	return nil
}

// firstError locates the first error or missing node in document order.
func firstError(n *sitter.Node) (sitter.Point, bool) {
	if n.IsError() || n.IsMissing() {
		return n.StartPoint(), true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if p, ok := firstError(child); ok {
			return p, true
		}
	}
	return sitter.Point{}, false
}

// ExtractBytes parses content and applies the extractor to it.
func ExtractBytes(ctx context.Context, content []byte, path string, ex Extractor) (*graph.Graph, error) {
	src, err := Parse(ctx, content, path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return ex.Extract(src), nil
}

// ExtractFile reads, parses and extracts a single file.
func ExtractFile(ctx context.Context, path string, ex Extractor) (*graph.Graph, error) {
	src, err := ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return ex.Extract(src), nil
}

// FileError records a file that was skipped during a batch.
type FileError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Batch extracts many files into one composed graph.
type Batch struct {
	Extractor Extractor
	Logger    log.Logger
}

// Files extracts every path and composes the results by node name. Files that
// cannot be read, decoded or parsed are logged and reported, never fatal.
// Only context cancellation stops the batch early.
func (b *Batch) Files(ctx context.Context, paths []string) (*graph.Graph, []FileError, error) {
	logger := b.Logger
	if logger == nil {
		logger = log.Discard()
	}

	combined := graph.New()
	var failed []FileError

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return combined, failed, err
		}

		g, err := ExtractFile(ctx, path, b.Extractor)
		if err != nil {
			if ctx.Err() != nil {
				return combined, failed, ctx.Err()
			}
			logger.Warn("skipping file", "path", path, "error", err)
			failed = append(failed, FileError{Path: path, Err: err})
			continue
		}

		logger.Debug("extracted file", "path", path, "nodes", g.NodeCount(), "edges", g.EdgeCount())
		combined.Compose(g)
	}

	return combined, failed, nil
}

// Directory scans root for Python files and extracts them all.
// Root may also be a single file.
func (b *Batch) Directory(ctx context.Context, root string) (*graph.Graph, []FileError, error) {
	files, err := scanner.Scan(root)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return b.Files(ctx, scanner.Paths(files))
}

// ExtractDirectory is a convenience wrapper around Batch.Directory with no logging.
func ExtractDirectory(ctx context.Context, root string, ex Extractor) (*graph.Graph, []FileError, error) {
	b := &Batch{Extractor: ex}
	return b.Directory(ctx, root)
}
