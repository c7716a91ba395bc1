// Package toaster shows short notifications at the bottom of the screen.
package toaster

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tabdock/internal/transfer"
	"github.com/zjrosen/tabdock/internal/ui/overlay"
	"github.com/zjrosen/tabdock/internal/ui/styles"
)

// Style determines the border color and icon of a toast.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// Model holds the toaster state.
type Model struct {
	message string
	style   Style
	visible bool
}

// New creates a hidden toaster.
func New() Model {
	return Model{}
}

// Show displays message with the given style.
func (m Model) Show(message string, style Style) Model {
	m.message = message
	m.style = style
	m.visible = true
	return m
}

// ShowResult turns a finished transfer into a toast. Ineligible requests are
// not worth a notification and leave the toaster unchanged.
func (m Model) ShowResult(r transfer.Result) Model {
	name := r.TabID.String()
	if len(name) > 8 {
		name = name[:8]
	}
	switch r.Outcome {
	case transfer.OutcomeCommitted:
		return m.Show(fmt.Sprintf("Tab moved to window %s", r.Target.Short()), StyleSuccess)
	case transfer.OutcomeRejected:
		return m.Show(fmt.Sprintf("Window %s refused the tab: %s", r.Target.Short(), r.Reason), StyleWarn)
	case transfer.OutcomeTimedOut:
		return m.Show(fmt.Sprintf("No answer from window %s, tab %s kept", r.Target.Short(), name), StyleWarn)
	case transfer.OutcomeAborted:
		return m.Show(fmt.Sprintf("Transfer failed: %v", r.Err), StyleError)
	case transfer.OutcomeCancelled:
		return m.Show("Transfer cancelled", StyleInfo)
	default:
		return m
	}
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible reports whether a toast is showing.
func (m Model) Visible() bool {
	return m.visible
}

// View renders the toast box, or "" when hidden.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	var icon string
	switch m.style {
	case StyleError:
		style, icon = style.BorderForeground(styles.ToastBorderErrorColor), "✗"
	case StyleInfo:
		style, icon = style.BorderForeground(styles.ToastBorderInfoColor), "i"
	case StyleWarn:
		style, icon = style.BorderForeground(styles.ToastBorderWarnColor), "!"
	default:
		style, icon = style.BorderForeground(styles.ToastBorderSuccessColor), "✓"
	}
	return style.Render(icon + " " + m.message)
}

// Overlay renders the toast over bg, centered above the bottom edge.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}, m.View(), bg)
}

// DismissMsg asks the owner to hide the toast.
type DismissMsg struct{}

// ScheduleDismiss returns a command that emits DismissMsg after d.
func ScheduleDismiss(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{}
	})
}
