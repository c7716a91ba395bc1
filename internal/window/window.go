// Package window wires one window's tab collection, drag session and transfer
// coordinator together, and keeps the set of live windows in a Manager.
package window

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/drag"
	"github.com/zjrosen/tabdock/internal/log"
	"github.com/zjrosen/tabdock/internal/pubsub"
	"github.com/zjrosen/tabdock/internal/tabs"
	"github.com/zjrosen/tabdock/internal/transfer"
	"github.com/zjrosen/tabdock/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

var (
	// ErrClosed is returned by operations on a closed window.
	ErrClosed = errors.New("window closed")
	// ErrDuplicateTab is returned when adopting a tab the window already holds.
	ErrDuplicateTab = errors.New("tab already open in this window")
)

// Lister enumerates live windows.
type Lister interface {
	ListWindowIDs() []domain.WindowID
}

// Config configures a Window.
type Config struct {
	// ID defaults to a fresh WindowID.
	ID        domain.WindowID
	Directory string
	Tabs      []tabs.Tab
	// Position is where the window was asked to appear, nil when unplaced.
	Position *domain.Point

	Registry *drag.Registry
	Bus      *transfer.Bus
	Factory  transfer.WindowFactory
	Lister   Lister
	Tracer   trace.Tracer

	TransferTimeout time.Duration
	AnsweredTTL     time.Duration
	SettleDuration  time.Duration

	// DetachToNewWindow opens a new window when a drag ends outside every window.
	DetachToNewWindow bool
	// WatchFiles marks file tabs whose file disappears from disk.
	WatchFiles    bool
	WatchDebounce time.Duration
}

// Window is the per-window context: every handler for one window goes through
// it. Handlers are called from the UI loop; transfers and watchers run on the
// window's supervisor.
type Window struct {
	id       domain.WindowID
	dir      string
	position *domain.Point
	detach   bool

	mu     sync.RWMutex
	tabs   *tabs.Collection
	closed bool
	// dragged is the tab this window's drag picked up, "" when idle.
	dragged tabs.ID

	session  *drag.Session
	registry *drag.Registry
	coord    *transfer.Coordinator
	lister   Lister
	tasks    *Supervisor
	events   *pubsub.Broker[Event]
	watcher  *watcher.Watcher

	closeOnce sync.Once
}

// New creates a window and starts answering transfer requests addressed to
// it. The window is reachable on the bus when New returns.
func New(cfg Config) (*Window, error) {
	if cfg.Registry == nil {
		return nil, errors.New("window: drag registry is required")
	}
	if cfg.Bus == nil {
		return nil, errors.New("window: transfer bus is required")
	}
	if cfg.ID == "" {
		cfg.ID = domain.NewWindowID()
	}

	w := &Window{
		id:       cfg.ID,
		dir:      cfg.Directory,
		position: cfg.Position,
		detach:   cfg.DetachToNewWindow,
		tabs:     tabs.NewCollection(cfg.Tabs...),
		registry: cfg.Registry,
		lister:   cfg.Lister,
		tasks:    NewSupervisor(context.Background(), "window-"+cfg.ID.Short()),
		events:   pubsub.NewBroker[Event](),
	}
	w.session = drag.NewSession(cfg.SettleDuration, func() { w.publish(EventDragChanged) })

	coord, err := transfer.New(transfer.Config{
		Host:        w,
		Bus:         cfg.Bus,
		Factory:     cfg.Factory,
		Tracer:      cfg.Tracer,
		Timeout:     cfg.TransferTimeout,
		AnsweredTTL: cfg.AnsweredTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating transfer coordinator: %w", err)
	}
	w.coord = coord

	requests := cfg.Bus.SubscribeRequests(w.tasks.Context())
	if err := w.tasks.Go("transfer-serve", func(ctx context.Context) {
		w.coord.Serve(ctx, requests)
	}); err != nil {
		return nil, err
	}

	if cfg.WatchFiles {
		if err := w.startWatcher(cfg.WatchDebounce); err != nil {
			// Watching is best-effort; the window works without it.
			log.ErrorErr(log.CatWatcher, "Failed to start file watcher", err, "window", w.id.Short())
		}
	}

	log.Info(log.CatWindow, "Window opened", "window", w.id.Short(), "tabs", w.tabs.Len(), "dir", w.dir)
	return w, nil
}

// ID returns the window's identity.
func (w *Window) ID() domain.WindowID { return w.id }

// Directory returns the window's context directory.
func (w *Window) Directory() string { return w.dir }

// Position returns the requested placement, nil when unplaced.
func (w *Window) Position() *domain.Point { return w.position }

// Subscribe returns the window's event stream.
func (w *Window) Subscribe(ctx context.Context) <-chan pubsub.Event[Event] {
	return w.events.Subscribe(ctx)
}

func (w *Window) publish(kind EventKind) {
	w.events.Publish(pubsub.UpdatedEvent, Event{Window: w.id, Kind: kind})
}

// === Reads ===

// Tabs returns a copy of the tab list.
func (w *Window) Tabs() []tabs.Tab {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tabs.Tabs()
}

// Active returns the active tab index.
func (w *Window) Active() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tabs.Active()
}

// IsTransferable reports whether the tab at index may leave the window.
func (w *Window) IsTransferable(index int) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tabs.IsTransferable(index)
}

// DragState returns the drag session snapshot used for rendering.
func (w *Window) DragState() drag.Snapshot {
	return w.session.Snapshot()
}

// IsDropCandidate reports whether a tab from another window is hovering here.
func (w *Window) IsDropCandidate() bool {
	rec, ok := w.registry.Peek()
	return ok && rec.SourceWindow != w.id && rec.TargetWindow == w.id
}

// OtherWindows lists every live window except this one.
func (w *Window) OtherWindows() []domain.WindowID {
	if w.lister == nil {
		return nil
	}
	var others []domain.WindowID
	for _, id := range w.lister.ListWindowIDs() {
		if id != w.id {
			others = append(others, id)
		}
	}
	return others
}

// === Local tab operations ===

// mutate runs fn under the write lock and publishes a change when fn reports one.
func (w *Window) mutate(fn func(c *tabs.Collection) bool) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	changed := fn(w.tabs)
	w.mu.Unlock()

	if changed {
		w.publish(EventTabsChanged)
		w.refreshWatch()
	}
	return changed
}

// Reorder moves the tab at from to to. Invalid indices are ignored.
func (w *Window) Reorder(from, to int) (int, bool) {
	var newIndex int
	ok := w.mutate(func(c *tabs.Collection) bool {
		var moved bool
		newIndex, moved = c.Reorder(from, to)
		return moved
	})
	return newIndex, ok
}

// SwitchTo activates the tab at index.
func (w *Window) SwitchTo(index int) bool {
	return w.mutate(func(c *tabs.Collection) bool { return c.SwitchTo(index) })
}

// NewTab appends an empty tab and activates it.
func (w *Window) NewTab() int {
	index := -1
	w.mutate(func(c *tabs.Collection) bool {
		index = c.AddEmpty(true)
		return true
	})
	return index
}

// OpenFile opens path, reusing an existing tab for the same file.
func (w *Window) OpenFile(path string) int {
	index := -1
	w.mutate(func(c *tabs.Collection) bool {
		index = c.OpenFile(path)
		return true
	})
	return index
}

// CloseTab closes the tab at index.
func (w *Window) CloseTab(index int) bool {
	return w.mutate(func(c *tabs.Collection) bool { return c.Close(index) })
}

// TogglePreferences opens, focuses or closes the preferences tab.
func (w *Window) TogglePreferences() {
	w.mutate(func(c *tabs.Collection) bool {
		c.TogglePreferences()
		return true
	})
}

// === transfer.Host ===

// WindowID implements transfer.Host.
func (w *Window) WindowID() domain.WindowID { return w.id }

// TransferCandidate implements transfer.Host.
func (w *Window) TransferCandidate(index int) (tabs.Tab, string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.tabs.IsTransferable(index) {
		return tabs.Tab{}, "", false
	}
	tab, _ := w.tabs.Get(index)
	return tab, w.dir, true
}

// CommitTransfer implements transfer.Host.
func (w *Window) CommitTransfer(id tabs.ID) bool {
	w.mu.Lock()
	removed := w.tabs.RemoveByID(id)
	w.mu.Unlock()

	if removed {
		w.publish(EventTabsChanged)
		w.refreshWatch()
	}
	return removed
}

// AdoptTab implements transfer.Host.
func (w *Window) AdoptTab(tab tabs.Tab, _ string) error {
	err := func() error {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return ErrClosed
		}
		if w.tabs.Index(tab.ID) >= 0 {
			return ErrDuplicateTab
		}
		w.tabs.Add(tab, true)
		return nil
	}()
	if err != nil {
		return err
	}

	w.publish(EventTabsChanged)
	w.refreshWatch()
	return nil
}

// === Transfers ===

// MoveToWindow starts a transfer of the tab at index to target. The result is
// delivered on the returned channel and as an EventTransferFinished.
func (w *Window) MoveToWindow(index int, target domain.WindowID) <-chan transfer.Result {
	id, ok := w.tabAt(index)
	if !ok {
		return w.ineligible()
	}
	return w.moveTab(id, target)
}

func (w *Window) moveTab(id tabs.ID, target domain.WindowID) <-chan transfer.Result {
	return w.runTransfer(id, "move-to-window", func(ctx context.Context, i int) (transfer.Result, error) {
		return w.coord.MoveToWindow(ctx, i, target)
	})
}

// OpenInNewWindow detaches the tab at index into a new window placed at pos.
func (w *Window) OpenInNewWindow(index int, pos *domain.Point) <-chan transfer.Result {
	id, ok := w.tabAt(index)
	if !ok {
		return w.ineligible()
	}
	return w.detachTab(id, pos)
}

func (w *Window) detachTab(id tabs.ID, pos *domain.Point) <-chan transfer.Result {
	return w.runTransfer(id, "move-to-new-window", func(ctx context.Context, i int) (transfer.Result, error) {
		return w.coord.MoveToNewWindow(ctx, i, transfer.NewWindowConfig{Position: pos, Directory: w.dir})
	})
}

func (w *Window) tabAt(index int) (tabs.ID, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	tab, ok := w.tabs.Get(index)
	return tab.ID, ok
}

func (w *Window) ineligible() <-chan transfer.Result {
	out := make(chan transfer.Result, 1)
	w.finishTransfer(out, transfer.Result{Outcome: transfer.OutcomeIneligible, Err: transfer.ErrNotTransferable})
	return out
}

// runTransfer resolves the tab's index when the task runs, so reorders and
// removals in between cannot redirect the transfer to another tab.
func (w *Window) runTransfer(id tabs.ID, name string, run func(ctx context.Context, index int) (transfer.Result, error)) <-chan transfer.Result {
	out := make(chan transfer.Result, 1)
	err := w.tasks.Go(name, func(ctx context.Context) {
		w.mu.RLock()
		current := w.tabs.Index(id)
		w.mu.RUnlock()

		result, _ := run(ctx, current)
		w.finishTransfer(out, result)
	})
	if err != nil {
		w.finishTransfer(out, transfer.Result{TabID: id, Outcome: transfer.OutcomeCancelled, Err: transfer.ErrCancelled})
	}
	return out
}

func (w *Window) finishTransfer(out chan<- transfer.Result, result transfer.Result) {
	out <- result
	close(out)
	w.events.Publish(pubsub.UpdatedEvent, Event{Window: w.id, Kind: EventTransferFinished, Result: &result})
}

// === Drag handlers ===

// DragStart begins dragging the tab at index; offset is the pointer position
// inside the tab. Only transferable tabs can be dragged. The tab is tracked
// by ID from here on, so tabs leaving the window mid-gesture do not swap it.
func (w *Window) DragStart(index int, offset domain.Point) bool {
	w.mu.Lock()
	tab, ok := w.tabs.Get(index)
	if !ok || !w.tabs.IsTransferable(index) {
		w.mu.Unlock()
		return false
	}
	w.dragged = tab.ID
	w.mu.Unlock()

	w.session.StartDrag(index)
	w.registry.Start(w.id, index, offset)
	w.publish(EventDragChanged)
	log.Debug(log.CatDrag, "Drag started", "window", w.id.Short(), "index", index)
	return true
}

// DragEnter is called when the pointer carrying a tab enters this window.
func (w *Window) DragEnter() {
	rec, ok := w.registry.Peek()
	if !ok || rec.SourceWindow == w.id {
		return
	}
	w.registry.SetTarget(w.id)
	w.publish(EventDragChanged)
}

// DragLeave is called when the pointer carrying a tab leaves this window.
func (w *Window) DragLeave() {
	if rec, ok := w.registry.Peek(); ok && rec.TargetWindow == w.id {
		w.registry.ClearTarget()
	}
	w.session.UpdateDropTarget(0, false)
	w.publish(EventDragChanged)
}

// DragOver moves the insertion marker of this window's own drag to index;
// ok=false hides it.
func (w *Window) DragOver(index int, ok bool) {
	if w.session.UpdateDropTarget(index, ok) {
		w.publish(EventDragChanged)
	}
}

// Drop is called on the window under the pointer when the button is
// released over its tab strip at index. A drop of this window's own tab
// reorders in place; a foreign tab is claimed for the source's DragEnd.
func (w *Window) Drop(index int) bool {
	rec, ok := w.registry.Peek()
	if !ok {
		return false
	}
	if rec.SourceWindow != w.id {
		w.registry.MarkDropped(w.id)
		log.Debug(log.CatDrag, "Foreign tab dropped", "window", w.id.Short(), "source", rec.SourceWindow.Short())
		return true
	}

	from := w.draggedIndex()
	if from < 0 {
		log.Debug(log.CatDrag, "Dragged tab left the window, drop ignored", "window", w.id.Short())
		w.CancelDrag()
		return false
	}
	w.registry.MarkDropped(w.id)
	w.Reorder(from, index)
	w.session.EndDrag()
	w.session.TriggerSettle()
	w.publish(EventDragChanged)
	return true
}

// DragEnd finishes this window's drag. screenPos is where the pointer was
// released. A drop on another window moves the tab there; a drop outside
// every window detaches it into a new window when detaching is enabled.
// The returned channel is nil when no transfer starts.
func (w *Window) DragEnd(screenPos domain.Point) <-chan transfer.Result {
	rec, ok := w.registry.Peek()
	dragged := w.takeDragged()
	w.session.EndDrag()
	w.publish(EventDragChanged)
	if !ok || rec.SourceWindow != w.id {
		return nil
	}
	w.registry.End()

	if rec.DroppedInWindow && rec.TargetWindow == w.id {
		return nil
	}
	w.mu.RLock()
	present := dragged != "" && w.tabs.Index(dragged) >= 0
	w.mu.RUnlock()
	if !present {
		log.Debug(log.CatDrag, "Dragged tab left the window, drag cancelled", "window", w.id.Short())
		return nil
	}

	switch {
	case rec.DroppedInWindow:
		log.Debug(log.CatDrag, "Tab dropped on another window", "window", w.id.Short(), "target", rec.TargetWindow.Short())
		return w.moveTab(dragged, rec.TargetWindow)
	case w.detach:
		pos := screenPos.Sub(rec.Offset)
		log.Debug(log.CatDrag, "Tab dropped outside windows", "window", w.id.Short(), "position", pos)
		return w.detachTab(dragged, &pos)
	default:
		return nil
	}
}

// draggedIndex is the current index of the dragged tab, or -1.
func (w *Window) draggedIndex() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.dragged == "" {
		return -1
	}
	return w.tabs.Index(w.dragged)
}

func (w *Window) takeDragged() tabs.ID {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.dragged
	w.dragged = ""
	return id
}

// CancelDrag abandons this window's drag without moving anything.
func (w *Window) CancelDrag() {
	w.takeDragged()
	if rec, ok := w.registry.Peek(); ok && rec.SourceWindow == w.id {
		w.registry.End()
	}
	w.session.EndDrag()
	w.publish(EventDragChanged)
}

// === File watching ===

func (w *Window) startWatcher(debounce time.Duration) error {
	fw, err := watcher.New(debounce)
	if err != nil {
		return err
	}
	changes := fw.Start()
	w.watcher = fw
	w.refreshWatch()

	return w.tasks.Go("watcher", func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case batch := <-changes:
				w.applyFileChanges(batch)
			}
		}
	})
}

func (w *Window) applyFileChanges(batch []watcher.Change) {
	w.mutate(func(c *tabs.Collection) bool {
		changed := 0
		for _, ch := range batch {
			switch ch.Kind {
			case watcher.ChangeRemoved:
				changed += c.MarkFileError(ch.Path, "file was removed")
			case watcher.ChangeWritten:
				changed += c.RestoreFile(ch.Path)
			}
		}
		return changed > 0
	})
}

func (w *Window) refreshWatch() {
	if w.watcher == nil {
		return
	}
	w.mu.RLock()
	paths := w.tabs.FilePaths()
	w.mu.RUnlock()
	if err := w.watcher.SetPaths(paths); err != nil {
		log.Debug(log.CatWatcher, "Some tab files cannot be watched", "window", w.id.Short(), "error", err)
	}
}

// === Lifecycle ===

// Close stops the window. In-flight transfers resolve as cancelled without
// touching the tabs, and requests arriving afterwards are refused.
func (w *Window) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()

		if rec, ok := w.registry.Peek(); ok && rec.SourceWindow == w.id {
			w.registry.End()
		}
		err = w.tasks.Shutdown(shutdownTimeout)
		w.session.Close()
		if w.watcher != nil {
			_ = w.watcher.Stop()
		}
		w.publish(EventClosed)
		w.events.Close()
		log.Info(log.CatWindow, "Window closed", "window", w.id.Short())
	})
	return err
}
