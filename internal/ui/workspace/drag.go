package workspace

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/ui/toaster"
	"github.com/zjrosen/tabdock/internal/window"
)

// dragState follows one picked-up tab. The windows own the drag session and
// registry record; this only remembers where the pointer is.
type dragState struct {
	source   domain.WindowID
	index    int
	label    string
	keyboard bool

	// target is the window under the pointer, "" when outside every window.
	target domain.WindowID
	// slot is the insertion index in target, -1 when off its tab strip.
	slot int
	// pos is the pointer in screen cells.
	pos domain.Point
}

// grab picks up the active tab of w for a keyboard drag.
func (m *Model) grab(w *window.Window) tea.Cmd {
	idx := w.Active()
	if !w.DragStart(idx, domain.Point{}) {
		return m.notify("This tab cannot be dragged", toaster.StyleWarn)
	}
	m.drag = &dragState{
		source:   w.ID(),
		index:    idx,
		label:    w.Tabs()[idx].DisplayName(),
		keyboard: true,
		target:   w.ID(),
	}
	m.hover(idx)
	return nil
}

func (m *Model) moveSlot(delta int) {
	t, ok := m.manager.Get(m.drag.target)
	if !ok {
		return
	}
	slot := m.drag.slot
	if slot < 0 {
		slot = m.drag.index
	}
	m.hover(min(max(slot+delta, 0), len(t.Tabs())))
}

func (m *Model) moveTarget(delta int) {
	ids := m.manager.ListWindowIDs()
	if len(ids) == 0 {
		return
	}
	next := ids[0]
	if i := slices.Index(ids, m.drag.target); i >= 0 {
		next = ids[(i+delta+len(ids))%len(ids)]
	}
	m.setTarget(next)
	if t, ok := m.manager.Get(next); ok {
		m.hover(len(t.Tabs()))
	}
	m.focus = next
}

// setTarget moves the pointer from one window to another, firing the leave
// and enter handlers.
func (m *Model) setTarget(id domain.WindowID) {
	if m.drag.target == id {
		return
	}
	if old, ok := m.manager.Get(m.drag.target); ok {
		old.DragLeave()
	}
	m.drag.target = id
	m.drag.slot = -1
	if w, ok := m.manager.Get(id); ok {
		w.DragEnter()
	}
}

// hover places the insertion marker. Only the source window shows a marker;
// tabs dropped on another window are appended there.
func (m *Model) hover(slot int) {
	m.drag.slot = slot
	if m.drag.target != m.drag.source {
		return
	}
	if src, ok := m.manager.Get(m.drag.source); ok {
		src.DragOver(slot, slot >= 0)
	}
}

// drop releases the tab over the current target.
func (m *Model) drop() tea.Cmd {
	d := m.drag
	src, ok := m.manager.Get(d.source)
	if !ok {
		m.drag = nil
		return nil
	}
	t, ok := m.manager.Get(d.target)
	if !ok {
		return m.dropOutside()
	}

	if d.target == d.source {
		// Inserting before or after itself leaves the order as it is.
		if d.slot < 0 || d.slot == d.index || d.slot == d.index+1 {
			m.cancelDrag()
			return nil
		}
		t.Drop(d.slot)
	} else {
		t.Drop(len(t.Tabs()))
	}
	m.drag = nil
	src.DragEnd(d.pos)
	return nil
}

// dropOutside releases the tab where no window is. The source window opens a
// new window for it unless detaching is turned off.
func (m *Model) dropOutside() tea.Cmd {
	d := m.drag
	m.setTarget("")
	m.drag = nil

	src, ok := m.manager.Get(d.source)
	if !ok {
		return nil
	}
	pos := d.pos
	if d.keyboard {
		pos = domain.Point{X: float64(m.width / 2), Y: float64(m.height / 2)}
	}
	if src.DragEnd(pos) == nil {
		return m.notify("Dropping outside a window is turned off", toaster.StyleInfo)
	}
	return nil
}

func (m *Model) cancelDrag() {
	if m.drag == nil {
		return
	}
	d := m.drag
	if d.target != d.source {
		if t, ok := m.manager.Get(d.target); ok {
			t.DragLeave()
		}
	}
	if src, ok := m.manager.Get(d.source); ok {
		src.CancelDrag()
	}
	m.drag = nil
}

// === Mouse ===

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.drag != nil && m.drag.keyboard {
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.press(msg)
		}
	case tea.MouseActionMotion:
		if m.drag != nil {
			m.track(msg)
		}
	case tea.MouseActionRelease:
		if m.drag != nil {
			m.track(msg)
			return m, m.drop()
		}
	}
	return m, nil
}

// press focuses the window under the pointer; on a tab it also activates the
// tab and picks it up.
func (m *Model) press(msg tea.MouseMsg) {
	hit, ok := m.tabAt(msg)
	if !ok {
		if w, ok := m.windowAt(msg); ok {
			m.focus = w.ID()
		}
		return
	}

	w := hit.window
	m.focus = w.ID()
	w.SwitchTo(hit.index)

	x, y := hit.zone.Pos(msg)
	if !w.DragStart(hit.index, domain.Point{X: float64(x), Y: float64(y)}) {
		return
	}
	m.drag = &dragState{
		source: w.ID(),
		index:  hit.index,
		label:  w.Tabs()[hit.index].DisplayName(),
		target: w.ID(),
		slot:   -1,
		pos:    pointOf(msg),
	}
}

// track follows the pointer during a mouse drag.
func (m *Model) track(msg tea.MouseMsg) {
	m.drag.pos = pointOf(msg)

	w, ok := m.windowAt(msg)
	if !ok {
		m.setTarget("")
		return
	}
	m.setTarget(w.ID())
	m.hover(m.slotAt(w, msg))
}

func pointOf(msg tea.MouseMsg) domain.Point {
	return domain.Point{X: float64(msg.X), Y: float64(msg.Y)}
}
