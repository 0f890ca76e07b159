package browse

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"twinview/internal/decode"
	"twinview/internal/logger"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher reports folders whose set of images changed. Bursts of events for
// one folder collapse into a single callback after the debounce interval.
// The callback runs on a background goroutine.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   logger.Logger
	debounce time.Duration
	onChange func(dir string)

	mu      sync.Mutex
	dirs    map[string]int
	pending map[string]*time.Timer
	closed  bool

	done chan struct{}
}

func NewWatcher(debounce time.Duration, onChange func(dir string), log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create folder watcher: %w", err)
	}

	w := &Watcher{
		fs:       fw,
		logger:   log,
		debounce: debounce,
		onChange: onChange,
		dirs:     make(map[string]int),
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch starts watching dir. Watching the same folder twice is counted so
// each side can release it independently.
func (w *Watcher) Watch(dir string) error {
	dir = filepath.Clean(dir)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watch %s: watcher closed", dir)
	}
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	return nil
}

func (w *Watcher) Unwatch(dir string) {
	dir = filepath.Clean(dir)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dirs[dir] == 0 {
		return
	}
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return
	}
	delete(w.dirs, dir)
	if t, ok := w.pending[dir]; ok {
		t.Stop()
		delete(w.pending, dir)
	}
	if err := w.fs.Remove(dir); err != nil {
		w.logger.Debug("Watcher", "remove watch failed", map[string]interface{}{
			"dir":   dir,
			"error": err.Error(),
		})
	}
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			w.schedule(filepath.Dir(ev.Name))
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warning("Watcher", "folder watch error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return decode.IsSupported(ev.Name)
}

func (w *Watcher) schedule(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.dirs[dir] == 0 {
		return
	}
	if t, ok := w.pending[dir]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[dir] = time.AfterFunc(w.debounce, func() { w.fire(dir) })
}

func (w *Watcher) fire(dir string) {
	w.mu.Lock()
	delete(w.pending, dir)
	active := !w.closed && w.dirs[dir] > 0
	w.mu.Unlock()

	if !active {
		return
	}
	w.logger.Debug("Watcher", "folder changed", map[string]interface{}{"dir": dir})
	if w.onChange != nil {
		w.onChange(dir)
	}
}

// Close stops watching and drops pending notifications.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for dir, t := range w.pending {
		t.Stop()
		delete(w.pending, dir)
	}
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}
