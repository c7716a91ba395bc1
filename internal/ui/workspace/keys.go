package workspace

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/tabdock/internal/tabs"
	"github.com/zjrosen/tabdock/internal/ui/toaster"
	"github.com/zjrosen/tabdock/internal/window"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.drag != nil {
		return m.handleDragKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.ToggleStatus):
		m.showStatus = !m.showStatus
		return m, nil
	case key.Matches(msg, m.keys.NextWindow):
		m.cycleFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevWindow):
		m.cycleFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.NewWindow):
		return m, m.openWindow()
	}

	w, ok := m.focused()
	if !ok {
		return m, nil
	}
	active := w.Active()
	count := len(w.Tabs())

	switch {
	case key.Matches(msg, m.keys.PrevTab):
		w.SwitchTo(max(active-1, 0))
	case key.Matches(msg, m.keys.NextTab):
		w.SwitchTo(min(active+1, count-1))
	case key.Matches(msg, m.keys.MoveTabLeft):
		if active > 0 {
			w.Reorder(active, active-1)
		}
	case key.Matches(msg, m.keys.MoveTabRight):
		// Reorder inserts before the tab at the target index.
		if active < count-1 {
			w.Reorder(active, active+2)
		}
	case key.Matches(msg, m.keys.NewTab):
		w.NewTab()
	case key.Matches(msg, m.keys.CloseTab):
		w.CloseTab(active)
	case key.Matches(msg, m.keys.Preferences):
		w.TogglePreferences()
	case key.Matches(msg, m.keys.MoveToWindow):
		return m, m.moveToNextWindow(w)
	case key.Matches(msg, m.keys.Detach):
		if !w.IsTransferable(active) {
			return m, m.notify("This tab cannot leave its window", toaster.StyleWarn)
		}
		w.OpenInNewWindow(active, nil)
	case key.Matches(msg, m.keys.CloseWindow):
		if err := m.manager.CloseWindow(w.ID()); err != nil {
			return m, m.notify(err.Error(), toaster.StyleError)
		}
	case key.Matches(msg, m.keys.Grab):
		return m, m.grab(w)
	}
	return m, nil
}

func (m *Model) moveToNextWindow(w *window.Window) tea.Cmd {
	active := w.Active()
	if !w.IsTransferable(active) {
		return m.notify("This tab cannot leave its window", toaster.StyleWarn)
	}
	target, ok := m.nextWindow(w.ID())
	if !ok {
		return m.notify("No other window to move to", toaster.StyleInfo)
	}
	w.MoveToWindow(active, target)
	return nil
}

// openWindow opens an empty window next to the focused one, sharing its
// directory.
func (m *Model) openWindow() tea.Cmd {
	var dir string
	if w, ok := m.focused(); ok {
		dir = w.Directory()
	}
	if _, err := m.manager.Open([]tabs.Tab{tabs.NewEmptyTab()}, dir, nil); err != nil {
		return m.notify(err.Error(), toaster.StyleError)
	}
	return nil
}

// handleDragKey drives a picked-up tab: tab keys move the insertion point,
// window keys move between windows.
func (m Model) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.cancelDrag()
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		m.cancelDrag()
		return m, tea.Quit
	}
	if !m.drag.keyboard {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.PrevTab):
		m.moveSlot(-1)
	case key.Matches(msg, m.keys.NextTab):
		m.moveSlot(1)
	case key.Matches(msg, m.keys.NextWindow):
		m.moveTarget(1)
	case key.Matches(msg, m.keys.PrevWindow):
		m.moveTarget(-1)
	case key.Matches(msg, m.keys.Drop):
		return m, m.drop()
	case key.Matches(msg, m.keys.DropOutside):
		return m, m.dropOutside()
	}
	return m, nil
}
