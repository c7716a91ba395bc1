package workspace

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/tabdock/internal/drag"
	"github.com/zjrosen/tabdock/internal/tabs"
	"github.com/zjrosen/tabdock/internal/ui/overlay"
	"github.com/zjrosen/tabdock/internal/ui/styles"
	"github.com/zjrosen/tabdock/internal/window"
)

const (
	minWindowWidth = 24
	maxLabelWidth  = 18
	dropMarker     = "▏"
)

// View renders the workspace.
func (m Model) View() string {
	windows := m.manager.Windows()
	if len(windows) == 0 {
		return "No windows open."
	}

	width := minWindowWidth
	if m.width > 0 {
		width = max(minWindowWidth, m.width/len(windows))
	}
	boxes := make([]string, 0, len(windows))
	for _, w := range windows {
		boxes = append(boxes, m.renderWindow(w, width))
	}

	sections := []string{lipgloss.JoinHorizontal(lipgloss.Top, boxes...)}
	if m.showStatus {
		sections = append(sections, m.renderStatus())
	}
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	} else if m.drag != nil && m.drag.keyboard {
		sections = append(sections, m.help.ShortHelpView(m.keys.DragKeyMap()))
	} else {
		sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	// Zones are resolved before anything is drawn on top.
	view := zone.Scan(lipgloss.JoinVertical(lipgloss.Left, sections...))
	view = m.renderGhost(view)
	return m.toaster.Overlay(view, m.width, m.height)
}

func (m Model) renderWindow(w *window.Window, width int) string {
	id := w.ID()
	snap := w.DragState()

	style := styles.WindowStyle
	switch {
	case w.IsDropCandidate():
		style = styles.WindowTargetStyle
	case id == m.focus:
		style = styles.WindowFocusedStyle
	}
	inner := width - style.GetHorizontalFrameSize()

	title := id.Short()
	if dir := w.Directory(); dir != "" {
		title += "  " + dir
	}
	title = ansi.Truncate(title, inner, "…")

	tabList := w.Tabs()
	active := w.Active()
	var body string
	if active >= 0 && active < len(tabList) {
		body = renderBody(tabList[active], inner)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.WindowTitleStyle.Render(title),
		m.renderStrip(w, tabList, active, snap, inner),
		"",
		body,
	)
	return zone.Mark(makeWindowZoneID(id), style.Width(width-style.GetHorizontalBorderSize()).Render(content))
}

// renderStrip draws the tab labels, the insertion marker of a drag in
// progress, and a trailing zone that accepts drops at the end.
func (m Model) renderStrip(w *window.Window, tabList []tabs.Tab, active int, snap drag.Snapshot, inner int) string {
	var b strings.Builder
	marker := styles.DropMarkerStyle.Render(dropMarker)
	for i, tab := range tabList {
		if snap.HasDropTarget && snap.DropTarget == i {
			b.WriteString(marker)
		}
		label := runewidth.Truncate(tab.DisplayName(), maxLabelWidth, "…")
		if tab.Content.Kind == tabs.KindFileError {
			label = "! " + label
		}
		b.WriteString(zone.Mark(makeTabZoneID(w.ID(), i), tabStyle(tab, i, active, snap).Render(label)))
	}
	if snap.HasDropTarget && snap.DropTarget >= len(tabList) {
		b.WriteString(marker)
	}

	strip := b.String()
	rest := max(inner-lipgloss.Width(strip), 1)
	return strip + zone.Mark(makeStripEndZoneID(w.ID()), strings.Repeat(" ", rest))
}

func tabStyle(tab tabs.Tab, i, active int, snap drag.Snapshot) lipgloss.Style {
	switch {
	case snap.Dragging && snap.DraggedIndex == i:
		return styles.TabDraggedStyle
	case i == active && snap.Settling:
		return styles.TabSettlingStyle
	case i == active:
		return styles.TabActiveStyle
	case tab.Content.Kind == tabs.KindFileError:
		return styles.TabErrorStyle
	default:
		return styles.TabStyle
	}
}

func renderBody(tab tabs.Tab, width int) string {
	var text string
	switch tab.Content.Kind {
	case tabs.KindFile:
		text = tab.Content.Path
	case tabs.KindFileError:
		return styles.StatusErrorStyle.Render(ansi.Truncate(fmt.Sprintf("%s: %s", tab.Content.Path, tab.Content.Err), width, "…"))
	case tabs.KindInline:
		text = wordwrap.String(tab.Content.Text, width)
	case tabs.KindPreferences:
		text = "Preferences"
	default:
		text = "Empty tab"
	}
	return styles.BodyStyle.Width(width).Render(text)
}

func (m Model) renderStatus() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d windows", m.manager.Count()))
	if m.drag != nil {
		target := "outside"
		if m.drag.target != "" {
			target = m.drag.target.Short()
		}
		parts = append(parts, fmt.Sprintf("dragging %q over %s", m.drag.label, target))
	}
	if m.lastLog != "" {
		parts = append(parts, m.lastLog)
	}
	line := strings.Join(parts, " · ")
	if m.width > 0 {
		line = ansi.Truncate(line, m.width, "…")
	}
	return styles.StatusBarStyle.Render(line)
}

// renderGhost draws the dragged tab next to the pointer while it is outside
// every window.
func (m Model) renderGhost(view string) string {
	if m.drag == nil || m.drag.keyboard || m.drag.target != "" {
		return view
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Absolute,
		X:        int(m.drag.pos.X) + 1,
		Y:        int(m.drag.pos.Y),
	}, styles.DragGhostStyle.Render(m.drag.label), view)
}
