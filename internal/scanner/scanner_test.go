package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
	}
}

func relPaths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestScannerScan(t *testing.T) {
	tmpDir := t.TempDir()

	writeTree(t, tmpDir, map[string]string{
		"main.py":                          "def main(): pass",
		"pkg/helpers.py":                   "def helper(): pass",
		"pkg/README.md":                    "# docs",
		".venv/lib/site.py":                "x = 1",
		"project.venv/lib/thing.py":        "x = 1",
		"pkg/__pycache__/helpers.cpython.py": "",
		".hidden/secret.py":                "x = 1",
		"tools/gen.pyi":                    "def stub(): ...",
	})

	results, err := New(DefaultOptions()).Scan(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"main.py", "pkg/helpers.py"}, relPaths(results))
	for _, f := range results {
		assert.Equal(t, "python", f.Language)
		assert.True(t, filepath.IsAbs(f.FullPath))
	}
}

func TestScannerExtensions(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.py":  "",
		"b.pyi": "",
		"c.txt": "",
	})

	opts := DefaultOptions()
	opts.Extensions = []string{".py", ".pyi"}
	results, err := New(opts).Scan(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.py", "b.pyi"}, relPaths(results))
}

func TestScannerWithIgnoreFile(t *testing.T) {
	tmpDir := t.TempDir()

	writeTree(t, tmpDir, map[string]string{
		".pygignore":         "# generated code\nbuild/\n*_pb2.py\nlegacy.py\n",
		"app.py":             "",
		"api_pb2.py":         "",
		"build/out.py":       "",
		"legacy.py":          "",
		"sub/module.py":      "",
		"sub/module_pb2.py":  "",
	})

	results, err := New(DefaultOptions()).Scan(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"app.py", "sub/module.py"}, relPaths(results))
}

func TestScannerSingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pyplot.py")
	require.NoError(t, os.WriteFile(path, []byte("def sci(): pass"), 0644))

	results, err := Scan(path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "pyplot.py", results[0].Path)
	assert.Equal(t, path, results[0].FullPath)
	assert.Equal(t, []string{path}, Paths(results))
}

func TestScannerMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestSkipDirAndWanted(t *testing.T) {
	s := New(DefaultOptions())

	tests := []struct {
		name string
		skip bool
	}{
		{".venv", true},
		{"my.venv-3.12", true},
		{"venv", true},
		{"__pycache__", true},
		{".git", true},
		{"src", false},
		{"matplotlib", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.skip, s.SkipDir(tt.name), tt.name)
	}

	assert.True(t, s.Wanted("x/y.PY"))
	assert.False(t, s.Wanted("x/y.pyc"))
}

func TestLanguageDetection(t *testing.T) {
	tests := []struct {
		ext      string
		expected string
	}{
		{".py", "python"},
		{".PYI", "python"},
		{".go", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetectLanguage(tt.ext), tt.ext)
	}
}
