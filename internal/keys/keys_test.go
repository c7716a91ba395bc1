package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_AllBindingsHaveHelp(t *testing.T) {
	km := DefaultKeyMap()
	for _, group := range km.FullHelp() {
		for _, b := range group {
			require.NotEmpty(t, b.Keys(), "binding without keys")
			require.NotEmpty(t, b.Help().Key, "binding %v without help key", b.Keys())
			require.NotEmpty(t, b.Help().Desc, "binding %v without description", b.Keys())
		}
	}
}

func TestDefaultKeyMap_NoConflictsInsideGroups(t *testing.T) {
	km := DefaultKeyMap()
	seen := map[string]string{}
	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				prev, dup := seen[k]
				require.False(t, dup, "key %q bound to both %q and %q", k, prev, b.Help().Desc)
				seen[k] = b.Help().Desc
			}
		}
	}
}

func TestDefaultKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"space grabs", tea.KeyMsg{Type: tea.KeySpace}, km.Grab},
		{"enter drops", tea.KeyMsg{Type: tea.KeyEnter}, km.Drop},
		{"esc cancels", tea.KeyMsg{Type: tea.KeyEsc}, km.Cancel},
		{"tab cycles windows", tea.KeyMsg{Type: tea.KeyTab}, km.NextWindow},
		{"shift+tab cycles back", tea.KeyMsg{Type: tea.KeyShiftTab}, km.PrevWindow},
		{"H moves tab left", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'H'}}, km.MoveTabLeft},
		{"m moves to window", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}}, km.MoveToWindow},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, key.Matches(tt.msg, tt.binding), "msg %q", tt.msg.String())
		})
	}
}

func TestShortHelpIsSubsetOfFullHelp(t *testing.T) {
	km := DefaultKeyMap()
	full := map[string]bool{}
	for _, group := range km.FullHelp() {
		for _, b := range group {
			full[b.Help().Desc] = true
		}
	}
	for _, b := range km.ShortHelp() {
		require.True(t, full[b.Help().Desc], "%q missing from full help", b.Help().Desc)
	}
	for _, b := range km.DragKeyMap() {
		require.True(t, full[b.Help().Desc], "%q missing from full help", b.Help().Desc)
	}
}
