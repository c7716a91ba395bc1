// Package watcher watches the files shown by a window's tabs and reports,
// debounced, when they disappear or come back.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/tabdock/internal/log"
)

// ChangeKind says what happened to a watched file.
type ChangeKind int

const (
	// ChangeWritten means the file was created or written and is readable.
	ChangeWritten ChangeKind = iota
	// ChangeRemoved means the file was removed or renamed away.
	ChangeRemoved
)

func (k ChangeKind) String() string {
	if k == ChangeRemoved {
		return "removed"
	}
	return "written"
}

// Change is the settled state of one path after a debounce window.
type Change struct {
	Path string
	Kind ChangeKind
}

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher tracks a set of files through their parent directories and emits
// one batch of changes per quiet period.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	out      chan []Change
	done     chan struct{}
	stopOnce sync.Once

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]int // watched files per directory
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fs:       fs,
		debounce: debounce,
		out:      make(chan []Change, 1),
		done:     make(chan struct{}),
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
	}, nil
}

// Start runs the event loop and returns the batch channel.
func (w *Watcher) Start() <-chan []Change {
	go w.run()
	return w.out
}

// SetPaths replaces the watched file set. Directories rather than files are
// registered so that delete-and-recreate is observed.
func (w *Watcher) SetPaths(paths []string) error {
	want := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		want[filepath.Clean(p)] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for p := range want {
		if _, ok := w.files[p]; ok {
			continue
		}
		if err := w.retain(filepath.Dir(p)); err != nil {
			errs = append(errs, err)
			continue
		}
		w.files[p] = struct{}{}
	}
	for p := range w.files {
		if _, ok := want[p]; !ok {
			delete(w.files, p)
			w.release(filepath.Dir(p))
		}
	}
	return errors.Join(errs...)
}

func (w *Watcher) retain(dir string) error {
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	return nil
}

func (w *Watcher) release(dir string) {
	if w.dirs[dir]--; w.dirs[dir] > 0 {
		return
	}
	delete(w.dirs, dir)
	_ = w.fs.Remove(dir)
}

// Paths returns the number of watched files.
func (w *Watcher) Paths() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.files)
}

// Stop ends the loop and closes the underlying watcher. It is idempotent.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run() {
	var (
		timer   *time.Timer
		fire    <-chan time.Time // nil while nothing is pending
		pending = make(map[string]ChangeKind)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			kind, ok := w.classify(ev)
			if !ok {
				continue
			}
			pending[filepath.Clean(ev.Name)] = kind
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			batch := make([]Change, 0, len(pending))
			for p, k := range pending {
				batch = append(batch, Change{Path: p, Kind: k})
			}
			clear(pending)
			select {
			case w.out <- batch:
			case <-w.done:
				return
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "File watcher error", err)

		case <-w.done:
			return
		}
	}
}

// classify maps an event on a watched file to a change kind.
func (w *Watcher) classify(ev fsnotify.Event) (ChangeKind, bool) {
	w.mu.Lock()
	_, watched := w.files[filepath.Clean(ev.Name)]
	w.mu.Unlock()

	switch {
	case !watched:
		return 0, false
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		return ChangeRemoved, true
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		return ChangeWritten, true
	}
	return 0, false
}
