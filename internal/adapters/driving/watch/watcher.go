// Package watch turns filesystem events under a folder into debounced
// batches so the folder can be re-ingested after edits settle.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/foldrag/internal/logger"
)

// DefaultDebounce is the quiet period before a batch is emitted.
const DefaultDebounce = 2 * time.Second

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watch: watcher is closed")

// Batch lists the files that changed during one quiet period.
type Batch struct {
	// Paths are relative to the root, with forward slashes, sorted.
	Paths []string
	At    time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExclude skips events under dir, typically the store directory.
func WithExclude(dir string) Option {
	return func(w *Watcher) {
		if dir == "" {
			return
		}
		if abs, err := filepath.Abs(dir); err == nil {
			w.exclude = abs
		}
	}
}

// WithFilter limits created and written files to those accept returns true
// for. Removals are always reported.
func WithFilter(accept func(path string) bool) Option {
	return func(w *Watcher) {
		w.accept = accept
	}
}

// Watcher reports changes to files under a root directory.
type Watcher struct {
	root     string
	exclude  string
	debounce time.Duration
	accept   func(path string) bool

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a watcher for root.
func New(root string, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching. The returned channel is closed when ctx is
// cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Batch, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}

	root, err := filepath.Abs(w.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", root)
	}
	w.root = root

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.addTree(fw, root); err != nil {
		fw.Close()
		return nil, err
	}
	w.watcher = fw

	out := make(chan Batch)
	go w.loop(ctx, fw, out)
	return out, nil
}

// addTree watches dir and every non-excluded directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("watch %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skip(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		logger.Debug("watching %s", path)
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- Batch) {
	defer close(out)

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if isDirCreate(ev) && !w.skip(ev.Name) {
				if err := w.addTree(fw, ev.Name); err != nil {
					logger.Warn("%v", err)
				}
				continue
			}
			rel, ok := w.handleFsEvent(ev)
			if !ok {
				continue
			}
			logger.Debug("change %s (%s)", rel, ev.Op)
			pending[rel] = true
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := Batch{Paths: sortedKeys(pending), At: time.Now()}
			pending = make(map[string]bool)
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleFsEvent returns the relative path of a relevant event.
func (w *Watcher) handleFsEvent(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	if w.skip(ev.Name) {
		return "", false
	}

	removed := ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
	if !removed {
		info, err := os.Stat(ev.Name)
		if err != nil || info.IsDir() {
			return "", false
		}
	}
	if w.accept != nil && !removed && !w.accept(ev.Name) {
		return "", false
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// skip reports paths inside the excluded directory. Hidden files are watched
// because discovery indexes them too.
func (w *Watcher) skip(path string) bool {
	if w.exclude == "" {
		return false
	}
	return path == w.exclude || strings.HasPrefix(path, w.exclude+string(filepath.Separator))
}

func isDirCreate(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(ev.Name)
	return err == nil && info.IsDir()
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
