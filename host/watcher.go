package host

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/logger"
)

// DefaultDebounce is how long the watcher waits for edits to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watcher re-runs generation whenever Go sources under Root change.
type Watcher struct {
	Root     string
	Debounce time.Duration
	// Header marks generated files; changes to them do not trigger a run.
	Header string

	watcher *fsnotify.Watcher
	trigger chan struct{}
	mu      sync.Mutex
	timer   *time.Timer
	log     *zap.SugaredLogger
}

// NewWatcher watches root and every source directory below it.
func NewWatcher(root string, debounce time.Duration, header string) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	w := &Watcher{
		Root:     root,
		Debounce: debounce,
		Header:   header,
		watcher:  fw,
		trigger:  make(chan struct{}, 1),
		log:      logger.ComponentLogger("host.watcher"),
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "vendor" || name == "testdata" || name == "node_modules"
}

// Run calls run once, then again after every settled change, until ctx is
// done. Runs never overlap; a failed run is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, run func(context.Context) error) error {
	defer w.Close()

	w.runOnce(ctx, run)
	go w.loop(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.trigger:
			w.runOnce(ctx, run)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context, run func(context.Context) error) {
	start := time.Now()
	if err := run(ctx); err != nil {
		w.log.Errorw("Generation failed", logger.FieldError, err)
		return
	}
	w.log.Debugw("Generation run complete", logger.FieldDurationMS, time.Since(start).Milliseconds())
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(filepath.Base(event.Name)) {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warnw("Failed to watch new directory", logger.FieldPath, event.Name, logger.FieldError, err)
			}
			return
		}
	}
	if !w.relevant(event) {
		return
	}
	w.log.Debugw("Source changed", logger.FieldPath, event.Name, "op", event.Op.String())
	w.schedule()
}

// relevant reports whether an event should trigger a run: a write, create,
// remove or rename of a hand-written .go file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".go") {
		return false
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	// A freshly created file is empty until its first write arrives.
	if info, err := os.Stat(event.Name); err == nil && info.Size() == 0 {
		return false
	}
	return !isGenerated(event.Name, w.Header)
}

// isGenerated reports whether path starts with the generated-file header.
// Removed files are not generated as far as the watcher is concerned.
func isGenerated(path, header string) bool {
	if header == "" {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	return sc.Scan() && sc.Text() == header
}

// schedule debounces bursts of events into one trigger.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Debounce, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
