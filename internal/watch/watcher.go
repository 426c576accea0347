package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler receives the changed paths of one debounce window.
type Handler func(ctx context.Context, paths []string)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long to wait for more events before calling the handler.
	Debounce time.Duration
	// Extensions limits events to files with these suffixes. Empty means all.
	Extensions []string
	// Ignore lists base names or globs of files and directories to skip.
	Ignore []string
	// BufferSize is the capacity of the pending event channel.
	BufferSize int
	Logger     *slog.Logger
}

// DefaultOptions returns the options used when nil is passed to New.
func DefaultOptions() Options {
	return Options{
		Debounce:   300 * time.Millisecond,
		Extensions: []string{".java", ".yaml", ".yml"},
		Ignore:     []string{".git", ".idea", ".gradle", "build", "*.swp", "*.tmp"},
		BufferSize: 1024,
	}
}

// ErrRunning is returned by Run when the watcher is already running.
var ErrRunning = errors.New("watcher already running")

// Watcher watches directory trees and files.
type Watcher struct {
	roots   []string
	handler Handler
	opts    Options
	logger  *slog.Logger

	fs      *fsnotify.Watcher
	changes chan string

	mu      sync.Mutex
	running bool
}

// New creates a watcher over roots. Directory roots are watched
// recursively, file roots through their parent directory.
func New(roots []string, handler Handler, opts *Options) (*Watcher, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions().BufferSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		roots:   roots,
		handler: handler,
		opts:    *opts,
		logger:  logger,
		fs:      w,
		changes: make(chan string, opts.BufferSize),
	}, nil
}

// Run watches until ctx is cancelled. Pending changes are flushed before it
// returns. The underlying watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrRunning
	}
	w.running = true
	w.mu.Unlock()

	defer w.fs.Close()

	for _, root := range w.roots {
		if err := w.add(root); err != nil {
			return err
		}
	}

	go w.processEvents(ctx)
	w.debounceLoop(ctx)

	return nil
}

func (w *Watcher) add(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return w.fs.Add(filepath.Dir(root))
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}

		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}

		return w.fs.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.Ignore {
		if base == pattern {
			return true
		}

		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}

	return false
}

func (w *Watcher) relevant(path string) bool {
	if w.ignored(path) {
		return false
	}

	if len(w.opts.Extensions) == 0 {
		return true
	}

	return slices.ContainsFunc(w.opts.Extensions, func(ext string) bool {
		return strings.HasSuffix(path, ext)
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.ignored(event.Name) {
					if err := w.add(event.Name); err != nil {
						w.logger.Warn("watch directory", "path", event.Name, "error", err)
					}

					continue
				}
			}

			if event.Op == fsnotify.Chmod || !w.relevant(event.Name) {
				continue
			}

			select {
			case w.changes <- event.Name:
			default:
				w.logger.Warn("change buffer full, dropping event", "path", event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}

			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	pending := map[string]struct{}{}

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	flush := func(ctx context.Context) {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}

		if len(pending) == 0 || w.handler == nil {
			return
		}

		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}

		slices.Sort(paths)
		clear(pending)
		w.handler(ctx, paths)
	}

	for {
		select {
		case <-ctx.Done():
			flush(context.WithoutCancel(ctx))
			return
		case path := <-w.changes:
			pending[path] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}
		case <-timerC:
			flush(ctx)
		}
	}
}
