// Package watcher turns drop folders into a metadata feed: files that appear
// or change under a watched root are handed to a Handler after a quiet period.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyperjump/metamuse/pkg/utils"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Handler reacts to file changes. Process runs after a file settles; Forget
// runs when it is removed or renamed away.
type Handler interface {
	Process(path string)
	Forget(path string)
}

// Config selects what a Watcher observes.
type Config struct {
	Roots      []string
	Extensions []string // empty matches every file
	Recursive  bool
	Debounce   time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = utils.OrNop(l) }
}

// Watcher watches root directories with fsnotify.
type Watcher struct {
	cfg     Config
	handler Handler
	logger  *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	roots    []string
	watched  map[string][]string // root -> directories added to fsw
	pending  map[string]*time.Timer
	done     chan struct{}
	stopOnce sync.Once
}

// New returns a stopped watcher.
func New(cfg Config, handler Handler, opts ...Option) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	w := &Watcher{
		cfg:     cfg,
		handler: handler,
		logger:  zap.NewNop(),
		roots:   append([]string(nil), cfg.Roots...),
		watched: make(map[string][]string),
		pending: make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns once every root is registered; events are
// handled in the background until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw
	w.logger.Debug("watcher starting",
		zap.Strings("roots", w.roots), zap.Strings("extensions", w.cfg.Extensions), zap.Bool("recursive", w.cfg.Recursive))
	for _, root := range w.roots {
		if err := w.watchRootLocked(root); err != nil {
			_ = fsw.Close()
			w.fsw = nil
			return err
		}
	}
	go w.loop(ctx, fsw)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.dispatch(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) dispatch(ev fsnotify.Event) {
	path := ev.Name
	if !w.underRoot(path) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cancel(path)
		if w.matches(path) {
			w.handler.Forget(path)
		}
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.adoptDirectory(path)
			return
		}
		if w.matches(path) {
			w.schedule(path)
		}
	}
}

// adoptDirectory starts watching a directory created under a root and
// processes the files it already holds.
func (w *Watcher) adoptDirectory(dir string) {
	w.mu.Lock()
	fsw := w.fsw
	w.mu.Unlock()
	if fsw == nil {
		return
	}
	if w.cfg.Recursive {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			if err := fsw.Add(path); err != nil {
				w.logger.Debug("watcher failed to add directory", zap.String("path", path), zap.Error(err))
			}
			return nil
		})
	} else if err := fsw.Add(dir); err != nil {
		w.logger.Debug("watcher failed to add directory", zap.String("path", dir), zap.Error(err))
	}
	w.processTree(dir)
}

func (w *Watcher) underRoot(path string) bool {
	w.mu.Lock()
	roots := append([]string(nil), w.roots...)
	w.mu.Unlock()
	clean := filepath.Clean(path)
	for _, root := range roots {
		if r := filepath.Clean(root); r == clean || inDir(r, clean) {
			return true
		}
	}
	return false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) matches(path string) bool {
	return matchExtension(path, w.cfg.Extensions)
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// schedule (re)starts the quiet-period timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.logger.Debug("watcher processing file", zap.String("path", path))
		w.handler.Process(path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// AddDirectory starts watching root. With processExisting, files already in it
// are processed in the background.
func (w *Watcher) AddDirectory(root string, processExisting bool) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return nil
	}
	for _, r := range w.roots {
		if filepath.Clean(r) == abs {
			return nil
		}
	}
	if err := w.watchRootLocked(abs); err != nil {
		return err
	}
	w.roots = append(w.roots, abs)
	w.logger.Debug("watcher directory added", zap.String("path", abs), zap.Bool("process_existing", processExisting))
	if processExisting {
		go w.processTree(abs)
	}
	return nil
}

// watchRootLocked registers root (and its subdirectories when recursive),
// creating it if missing.
func (w *Watcher) watchRootLocked(root string) error {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	var dirs []string
	if w.cfg.Recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			if err := w.fsw.Add(path); err != nil {
				return err
			}
			dirs = append(dirs, path)
			return nil
		})
		if err != nil {
			return err
		}
	} else {
		if err := w.fsw.Add(root); err != nil {
			return err
		}
		dirs = append(dirs, root)
	}
	w.watched[root] = dirs
	return nil
}

// processTree hands every matching file under root to the handler.
func (w *Watcher) processTree(root string) {
	w.logger.Debug("watcher scanning directory", zap.String("root", root))
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !w.cfg.Recursive && filepath.Dir(path) != filepath.Clean(root) {
			return nil
		}
		if w.matches(path) {
			w.handler.Process(path)
		}
		return nil
	})
}

// RemoveDirectory stops watching root. Outputs already written are kept.
func (w *Watcher) RemoveDirectory(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return nil
	}
	for i, r := range w.roots {
		if filepath.Clean(r) != abs {
			continue
		}
		for _, dir := range w.watched[abs] {
			_ = w.fsw.Remove(dir)
		}
		delete(w.watched, abs)
		w.roots = append(w.roots[:i], w.roots[i+1:]...)
		w.logger.Debug("watcher directory removed", zap.String("path", abs))
		return nil
	}
	return nil
}

// Directories returns a copy of the watched roots.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// ProcessExisting processes every matching file already present under the roots.
func (w *Watcher) ProcessExisting() {
	for _, root := range w.Directories() {
		w.processTree(root)
	}
}

// Stop stops the watcher and drops pending work.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.fsw == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	_ = w.fsw.Close()
	w.fsw = nil
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
