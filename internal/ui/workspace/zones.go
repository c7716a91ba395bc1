package workspace

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/window"
)

// Zone ID prefixes for mouse hit-testing.
const (
	zoneWindowPrefix = "window:"
	zoneTabPrefix    = "tab:"
	zoneStripPrefix  = "strip-end:"
)

func makeWindowZoneID(id domain.WindowID) string {
	return zoneWindowPrefix + string(id)
}

func makeTabZoneID(id domain.WindowID, index int) string {
	return fmt.Sprintf("%s%s:%d", zoneTabPrefix, id, index)
}

// makeStripEndZoneID marks the empty part of a tab strip after the last tab.
func makeStripEndZoneID(id domain.WindowID) string {
	return zoneStripPrefix + string(id)
}

// tabHit is a tab under the pointer.
type tabHit struct {
	window *window.Window
	index  int
	zone   *zone.ZoneInfo
}

func (m Model) windowAt(msg tea.MouseMsg) (*window.Window, bool) {
	for _, w := range m.manager.Windows() {
		if z := zone.Get(makeWindowZoneID(w.ID())); z != nil && z.InBounds(msg) {
			return w, true
		}
	}
	return nil, false
}

func (m Model) tabAt(msg tea.MouseMsg) (tabHit, bool) {
	for _, w := range m.manager.Windows() {
		for i := range len(w.Tabs()) {
			if z := zone.Get(makeTabZoneID(w.ID(), i)); z != nil && z.InBounds(msg) {
				return tabHit{window: w, index: i, zone: z}, true
			}
		}
	}
	return tabHit{}, false
}

// slotAt returns the insertion index under the pointer in w's tab strip, or
// -1 when the pointer is not over the strip. The right half of a tab inserts
// after it.
func (m Model) slotAt(w *window.Window, msg tea.MouseMsg) int {
	n := len(w.Tabs())
	for i := range n {
		z := zone.Get(makeTabZoneID(w.ID(), i))
		if z == nil || !z.InBounds(msg) {
			continue
		}
		x, _ := z.Pos(msg)
		if x*2 >= z.EndX-z.StartX+1 {
			return i + 1
		}
		return i
	}
	if z := zone.Get(makeStripEndZoneID(w.ID())); z != nil && z.InBounds(msg) {
		return n
	}
	return -1
}
