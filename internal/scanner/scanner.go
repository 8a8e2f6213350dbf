// Package scanner discovers Python source files under a root directory.
// Virtual-environment directories (any directory whose name contains
// ".venv"), hidden directories and a set of default excludes are skipped,
// and a .pygignore file with gitignore-style patterns is honoured.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path     string // Relative path from root
	FullPath string // Absolute path
	Language string // Detected language from extension
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	Extensions      []string // File extensions to collect
	VenvMarker      string   // Directories whose name contains this are skipped
	DefaultExcludes []string // Default directories to exclude
	IgnoreFileName  string   // Name of the ignore file (default: .pygignore)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		Extensions:     []string{".py"},
		VenvMarker:     ".venv",
		IgnoreFileName: ".pygignore",
		DefaultExcludes: []string{
			"__pycache__",
			"venv",
			"node_modules",
			".git",
			".tox",
			".nox",
			".mypy_cache",
			"site-packages",
		},
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan returns the source files under root, sorted by relative path.
// When root is a single file it is returned as-is, whatever its extension.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []FileInfo{{
			Path:     filepath.Base(absRoot),
			FullPath: absRoot,
			Language: DetectLanguage(filepath.Ext(absRoot)),
			Size:     info.Size(),
		}}, nil
	}

	matcher, err := s.loadIgnoreFile(absRoot)
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []FileInfo

	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, the walk continues
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if s.skipDir(d.Name()) || (matcher != nil && matcher.MatchesPath(relPath+"/")) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !s.wanted(path) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(relPath) {
			return nil
		}

		var size int64
		if fi, err := d.Info(); err == nil {
			size = fi.Size()
		}

		files = append(files, FileInfo{
			Path:     relPath,
			FullPath: path,
			Language: DetectLanguage(filepath.Ext(path)),
			Size:     size,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// SkipDir reports whether a directory with this name is never descended into.
func (s *Scanner) SkipDir(name string) bool {
	return s.skipDir(name)
}

func (s *Scanner) skipDir(name string) bool {
	if s.opts.VenvMarker != "" && strings.Contains(name, s.opts.VenvMarker) {
		return true
	}
	if s.opts.SkipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// Wanted reports whether a file path has one of the collected extensions.
func (s *Scanner) Wanted(path string) bool {
	return s.wanted(path)
}

func (s *Scanner) wanted(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range s.opts.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// loadIgnoreFile compiles the ignore file at the root, if there is one.
func (s *Scanner) loadIgnoreFile(dir string) (*ignore.GitIgnore, error) {
	if s.opts.IgnoreFileName == "" {
		return nil, nil
	}
	path := filepath.Join(dir, s.opts.IgnoreFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return ignore.CompileIgnoreFile(path)
}

// Paths returns the absolute paths of the given files.
func Paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.FullPath
	}
	return out
}

// Scan is a convenience function that scans a directory with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}
