// Package workspace is the terminal front end: it draws every window side by
// side and turns keys and mouse drags into window operations.
package workspace

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/keys"
	"github.com/zjrosen/tabdock/internal/log"
	"github.com/zjrosen/tabdock/internal/pubsub"
	"github.com/zjrosen/tabdock/internal/transfer"
	"github.com/zjrosen/tabdock/internal/ui/toaster"
	"github.com/zjrosen/tabdock/internal/window"
)

const toastDuration = 3 * time.Second

// Config wires the workspace to the window manager.
type Config struct {
	Manager       *window.Manager
	Keys          keys.KeyMap
	ShowStatusBar bool
	// Logs, when non-nil, shows the latest info-or-worse entry in the status bar.
	Logs *log.LogListener
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx     context.Context
	manager *window.Manager
	keys    keys.KeyMap
	help    help.Model
	toaster toaster.Model

	width  int
	height int

	focus      domain.WindowID
	showHelp   bool
	showStatus bool
	lastLog    string

	listeners     *listeners
	managerEvents <-chan pubsub.Event[domain.WindowID]
	logs          *log.LogListener

	// drag is non-nil while a tab is picked up.
	drag *dragState
}

// listeners holds one event subscription per window. It is shared by every
// copy of the Model.
type listeners struct {
	byWindow map[domain.WindowID]<-chan pubsub.Event[window.Event]
}

// New creates the workspace model. ctx bounds every subscription it makes.
func New(ctx context.Context, cfg Config) Model {
	m := Model{
		ctx:        ctx,
		manager:    cfg.Manager,
		keys:       cfg.Keys,
		help:       help.New(),
		toaster:    toaster.New(),
		showStatus: cfg.ShowStatusBar,
		listeners:  &listeners{byWindow: make(map[domain.WindowID]<-chan pubsub.Event[window.Event])},
		logs:       cfg.Logs,
	}
	// Subscribe before listing so a window opened in between is not missed.
	m.managerEvents = cfg.Manager.Subscribe(ctx)
	for _, w := range cfg.Manager.Windows() {
		m.subscribe(w.ID())
		if m.focus == "" {
			m.focus = w.ID()
		}
	}
	return m
}

// Init starts listening for window, manager and log events.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{pubsub.ListenCmd(m.ctx, m.managerEvents)}
	for id := range m.listeners.byWindow {
		cmds = append(cmds, m.listen(id))
	}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

// Focused returns the focused window ID.
func (m Model) Focused() domain.WindowID {
	return m.focus
}

// Dragging reports whether a tab is picked up.
func (m Model) Dragging() bool {
	return m.drag != nil
}

func (m *Model) subscribe(id domain.WindowID) bool {
	if _, ok := m.listeners.byWindow[id]; ok {
		return false
	}
	w, ok := m.manager.Get(id)
	if !ok {
		return false
	}
	m.listeners.byWindow[id] = w.Subscribe(m.ctx)
	return true
}

func (m Model) listen(id domain.WindowID) tea.Cmd {
	ch, ok := m.listeners.byWindow[id]
	if !ok {
		return nil
	}
	return pubsub.ListenCmd(m.ctx, ch)
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case pubsub.Event[window.Event]:
		return m.handleWindowEvent(msg.Payload)

	case pubsub.Event[domain.WindowID]:
		return m.handleManagerEvent(msg)

	case log.LogEvent:
		if msg.Payload.Level >= log.LevelInfo {
			m.lastLog = fmt.Sprintf("[%s] %s", msg.Payload.Category, msg.Payload.Message)
		}
		if m.logs == nil {
			return m, nil
		}
		return m, m.logs.Listen()

	case toaster.DismissMsg:
		m.toaster = m.toaster.Hide()
		return m, nil
	}
	return m, nil
}

func (m Model) handleWindowEvent(ev window.Event) (tea.Model, tea.Cmd) {
	if ev.Kind == window.EventClosed {
		delete(m.listeners.byWindow, ev.Window)
		return m, nil
	}

	var cmds []tea.Cmd
	if ev.Kind == window.EventTransferFinished && ev.Result != nil && ev.Result.Outcome != transfer.OutcomeIneligible {
		m.toaster = m.toaster.ShowResult(*ev.Result)
		cmds = append(cmds, toaster.ScheduleDismiss(toastDuration))
	}
	cmds = append(cmds, m.listen(ev.Window))
	return m, tea.Batch(cmds...)
}

func (m Model) handleManagerEvent(ev pubsub.Event[domain.WindowID]) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{pubsub.ListenCmd(m.ctx, m.managerEvents)}

	switch ev.Type {
	case pubsub.CreatedEvent:
		if m.subscribe(ev.Payload) {
			cmds = append(cmds, m.listen(ev.Payload))
		}
		m.focus = ev.Payload
	case pubsub.DeletedEvent:
		delete(m.listeners.byWindow, ev.Payload)
		if m.drag != nil && (m.drag.source == ev.Payload || m.drag.target == ev.Payload) {
			m.cancelDrag()
		}
		if m.focus == ev.Payload {
			m.focus = ""
			if ids := m.manager.ListWindowIDs(); len(ids) > 0 {
				m.focus = ids[0]
			}
		}
		if m.manager.Count() == 0 {
			return m, tea.Quit
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) focused() (*window.Window, bool) {
	return m.manager.Get(m.focus)
}

func (m *Model) cycleFocus(delta int) {
	ids := m.manager.ListWindowIDs()
	if len(ids) == 0 {
		return
	}
	i := slices.Index(ids, m.focus)
	if i < 0 {
		m.focus = ids[0]
		return
	}
	m.focus = ids[(i+delta+len(ids))%len(ids)]
}

// nextWindow returns the window after id in opening order.
func (m Model) nextWindow(id domain.WindowID) (domain.WindowID, bool) {
	ids := m.manager.ListWindowIDs()
	if len(ids) < 2 {
		return "", false
	}
	// Index -1 wraps to the first window.
	i := slices.Index(ids, id)
	return ids[(i+1)%len(ids)], true
}

func (m *Model) notify(msg string, style toaster.Style) tea.Cmd {
	m.toaster = m.toaster.Show(msg, style)
	return toaster.ScheduleDismiss(toastDuration)
}
