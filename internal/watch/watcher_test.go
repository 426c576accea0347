package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) handle(_ context.Context, paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, paths)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, b := range r.batches {
		out = append(out, b...)
	}

	return out
}

func start(t *testing.T, roots []string, rec *recorder) (context.CancelFunc, <-chan error) {
	t.Helper()

	opts := DefaultOptions()
	opts.Debounce = 50 * time.Millisecond

	w, err := New(roots, rec.handle, &opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let Run register the roots before touching files.
	time.Sleep(100 * time.Millisecond)

	return cancel, done
}

func TestWatcher_DebouncesAndFilters(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	cancel, done := start(t, []string{dir}, rec)

	java := filepath.Join(dir, "Mixin.java")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(java, []byte("class Mixin {}"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return len(rec.all()) > 0 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	got := rec.all()
	assert.Contains(t, got, java)
	assert.NotContains(t, got, filepath.Join(dir, "notes.txt"))
	for _, b := range rec.batches {
		seen := map[string]bool{}
		for _, p := range b {
			assert.False(t, seen[p], "duplicate path %s in batch", p)
			seen[p] = true
		}
	}
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	cancel, done := start(t, []string{dir}, rec)
	defer func() {
		cancel()
		<-done
	}()

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(sub, "M.java")
	require.NoError(t, os.WriteFile(file, []byte("class M {}"), 0o644))

	assert.Eventually(t, func() bool {
		for _, p := range rec.all() {
			if p == file {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_RunTwice(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	assert.ErrorIs(t, w.Run(ctx), ErrRunning)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_MissingRoot(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "gone")}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background()))
}

func TestRelevant(t *testing.T) {
	w := &Watcher{opts: DefaultOptions()}

	assert.True(t, w.relevant("/src/a/B.java"))
	assert.True(t, w.relevant("/src/mixins.yaml"))
	assert.False(t, w.relevant("/src/readme.md"))
	assert.False(t, w.relevant("/src/B.java.swp"))
	assert.False(t, w.ignored("/src/B.java"))
	assert.True(t, w.ignored("/src/.git"))
}
