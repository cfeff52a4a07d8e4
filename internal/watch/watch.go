// Package watch reports batches of file changes under a directory tree.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a batch stays open after the last event.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce groups events that arrive within this window; 0 means
	// DefaultDebounce.
	Debounce time.Duration
	// SkipDir reports directories that are neither watched nor reported.
	SkipDir func(name string) bool
	// Logger receives watch errors; nil uses slog.Default().
	Logger *slog.Logger
}

// Watcher watches root and every directory below it.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	skipDir  func(string) bool
	logger   *slog.Logger
}

// New starts watching root. Directories are registered before New returns,
// so changes made afterwards are never missed.
func New(root string, opts Options) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     root,
		fsw:      fsw,
		debounce: opts.Debounce,
		skipDir:  opts.SkipDir,
		logger:   opts.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.skipDir == nil {
		w.skipDir = func(string) bool { return false }
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	if err := w.addRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run calls fn with the sorted, de-duplicated root-relative paths changed in
// each debounce window. It returns nil when ctx is done and the error of fn
// if fn fails.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string) error) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			rel, ok := w.relevant(event)
			if !ok {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("watch directory", "path", rel, "err", err)
					}
				}
			}
			pending[rel] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)

		case <-timerC:
			timer, timerC = nil, nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			if err := fn(changed); err != nil {
				return err
			}
		}
	}
}

// relevant returns the event's path relative to root, or false for events
// on or inside skipped directories and attribute-only changes.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.skipDir(filepath.Base(rel)) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return "", false
		}
	}
	dir := filepath.Dir(rel)
	for dir != "." && dir != "/" {
		if w.skipDir(filepath.Base(dir)) {
			return "", false
		}
		dir = filepath.Dir(dir)
	}
	return rel, true
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}
