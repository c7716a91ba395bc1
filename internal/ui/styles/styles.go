// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // hints, footers

	// Window frames
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusedColor = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}
	BorderTargetColor  = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"} // window under a foreign drag

	// Tab strip
	TabActiveBgColor   = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#1A5276"}
	TabActiveFgColor   = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	TabDraggedColor    = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#6C7086"}
	DropMarkerColor    = lipgloss.AdaptiveColor{Light: "#FE640B", Dark: "#FAB387"}
	TabSettlingBgColor = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#3498DB", Dark: "#3498DB"}

	// Toast borders
	ToastBorderSuccessColor = StatusSuccessColor
	ToastBorderErrorColor   = StatusErrorColor
	ToastBorderInfoColor    = StatusInfoColor
	ToastBorderWarnColor    = StatusWarningColor

	WindowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDefaultColor).
			Padding(0, 1)

	WindowFocusedStyle = WindowStyle.BorderForeground(BorderFocusedColor)
	WindowTargetStyle  = WindowStyle.BorderForeground(BorderTargetColor)

	WindowTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TextSecondaryColor)

	TabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(TextPrimaryColor)

	TabActiveStyle = TabStyle.
			Bold(true).
			Foreground(TabActiveFgColor).
			Background(TabActiveBgColor)

	TabSettlingStyle = TabActiveStyle.Background(TabSettlingBgColor)

	TabDraggedStyle = TabStyle.Faint(true).Foreground(TabDraggedColor)

	TabErrorStyle = TabStyle.Foreground(StatusErrorColor)

	DropMarkerStyle = lipgloss.NewStyle().Bold(true).Foreground(DropMarkerColor)

	// DragGhostStyle renders the tab that follows the pointer.
	DragGhostStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(DropMarkerColor).
			Padding(0, 1)

	BodyStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)

	StatusBarStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	StatusErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)
)
