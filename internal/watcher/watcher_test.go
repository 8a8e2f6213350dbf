package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/l3aro/go-pygraph/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := New(Config{Root: root, Options: scanner.DefaultOptions(), Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestNewSkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"pkg/sub", ".venv/lib", "env.venv", "__pycache__", ".git"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}

	w := newTestWatcher(t, root)
	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "pkg"),
		filepath.Join(root, "pkg", "sub"),
	}, w.Dirs())
}

func TestNewRejectsFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := New(Config{Root: path})
	assert.Error(t, err)

	_, err = New(Config{Root: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestRunReportsSourceChanges(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) error {
			changes <- paths
			return nil
		})
	}()

	src := filepath.Join(root, "mod.py")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(src, []byte("def f(): pass\n"), 0644))

	select {
	case paths := <-changes:
		assert.Equal(t, []string{src}, paths)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestRunStopsOnCallbackError(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func([]string) error { return boom })
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("x = 1\n"), 0644))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-ctx.Done():
		t.Fatal("watcher did not stop")
	}
}
