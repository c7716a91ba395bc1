package window

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/log"
	"github.com/zjrosen/tabdock/internal/pubsub"
	"github.com/zjrosen/tabdock/internal/tabs"
	"github.com/zjrosen/tabdock/internal/transfer"
)

// ErrNotFound is returned for unknown window IDs.
var ErrNotFound = errors.New("window not found")

// Manager keeps the live windows of the process. It is the transfer
// coordinators' WindowFactory and every window's Lister.
// Implementations must be thread-safe for concurrent access.
type Manager struct {
	base Config

	mu      sync.RWMutex
	windows map[domain.WindowID]*Window
	order   []domain.WindowID
	closed  bool

	// events announces opened (CreatedEvent) and closed (DeletedEvent) windows.
	events *pubsub.Broker[domain.WindowID]
}

// NewManager creates a manager. base supplies the shared registry and bus plus
// the per-window settings; its ID, Tabs, Directory and Position are ignored.
func NewManager(base Config) *Manager {
	base.ID = ""
	base.Tabs = nil
	base.Position = nil
	return &Manager{
		base:    base,
		windows: make(map[domain.WindowID]*Window),
		events:  pubsub.NewBroker[domain.WindowID](),
	}
}

// Open creates a window holding initial and registers it. The window is
// listed and reachable before Open returns.
func (m *Manager) Open(initial []tabs.Tab, dir string, pos *domain.Point) (*Window, error) {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	cfg := m.base
	cfg.Tabs = initial
	cfg.Directory = dir
	cfg.Position = pos
	cfg.Factory = m
	cfg.Lister = m

	w, err := New(cfg)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = w.Close()
		return nil, ErrClosed
	}
	m.windows[w.ID()] = w
	m.order = append(m.order, w.ID())
	m.mu.Unlock()

	m.events.Publish(pubsub.CreatedEvent, w.ID())
	return w, nil
}

// CreateWindow implements transfer.WindowFactory.
func (m *Manager) CreateWindow(ctx context.Context, seed tabs.Tab, cfg transfer.NewWindowConfig) (domain.WindowID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w, err := m.Open([]tabs.Tab{seed}, cfg.Directory, cfg.Position)
	if err != nil {
		return "", fmt.Errorf("opening window: %w", err)
	}
	log.Info(log.CatWindow, "Opened window for detached tab", "window", w.ID().Short(), "tab", seed.DisplayName())
	return w.ID(), nil
}

// ListWindowIDs implements Lister. IDs come back in opening order.
func (m *Manager) ListWindowIDs() []domain.WindowID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}

// Get returns the window with id.
func (m *Manager) Get(id domain.WindowID) (*Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[id]
	return w, ok
}

// Windows returns the live windows in opening order.
func (m *Manager) Windows() []*Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Window, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.windows[id])
	}
	return out
}

// Count returns the number of live windows.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Subscribe returns window open/close notifications.
func (m *Manager) Subscribe(ctx context.Context) <-chan pubsub.Event[domain.WindowID] {
	return m.events.Subscribe(ctx)
}

// CloseWindow unregisters and closes the window with id.
func (m *Manager) CloseWindow(id domain.WindowID) error {
	m.mu.Lock()
	w, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.windows, id)
	m.order = slices.DeleteFunc(m.order, func(x domain.WindowID) bool { return x == id })
	m.mu.Unlock()

	m.events.Publish(pubsub.DeletedEvent, id)
	return w.Close()
}

// Close closes every window. Later Opens fail.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	ids := slices.Clone(m.order)
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.CloseWindow(id); err != nil {
			errs = append(errs, err)
		}
	}
	m.events.Close()
	return errors.Join(errs...)
}
