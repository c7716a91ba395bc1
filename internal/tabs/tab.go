// Package tabs owns the ordered tab sequence of a single window together with
// its active pointer. Every mutation re-derives the active index so it keeps
// pointing at the same logical tab.
package tabs

import (
	"path/filepath"

	"github.com/google/uuid"
)

// ID identifies a tab for its whole lifetime, including across windows.
type ID string

// NewID generates a new unique tab ID.
func NewID() ID {
	return ID(uuid.New().String())
}

func (id ID) String() string {
	return string(id)
}

// Kind is the type of content a tab shows.
type Kind int

const (
	// KindNone is an empty placeholder tab.
	KindNone Kind = iota
	// KindFile is a tab backed by a file on disk.
	KindFile
	// KindFileError is a file-backed tab whose file could not be read.
	KindFileError
	// KindInline shows built-in content such as the welcome page.
	KindInline
	// KindPreferences shows the preferences view.
	KindPreferences
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFile:
		return "file"
	case KindFileError:
		return "file_error"
	case KindInline:
		return "inline"
	case KindPreferences:
		return "preferences"
	default:
		return "unknown"
	}
}

// Content is what a tab displays.
type Content struct {
	Kind Kind
	Path string // File and FileError
	Err  string // FileError
	Text string // Inline
}

// Tab is a unit of open content. Tabs are plain values: assigning a Tab
// copies it, which is how a tab travels between windows.
type Tab struct {
	ID      ID
	Content Content
}

// NewEmptyTab returns a placeholder tab.
func NewEmptyTab() Tab {
	return Tab{ID: NewID()}
}

// NewFileTab returns a tab showing the file at path.
func NewFileTab(path string) Tab {
	return Tab{ID: NewID(), Content: Content{Kind: KindFile, Path: path}}
}

// NewInlineTab returns a tab showing built-in text.
func NewInlineTab(text string) Tab {
	return Tab{ID: NewID(), Content: Content{Kind: KindInline, Text: text}}
}

// NewPreferencesTab returns a preferences tab.
func NewPreferencesTab() Tab {
	return Tab{ID: NewID(), Content: Content{Kind: KindPreferences}}
}

// IsFileBacked reports whether the tab represents file content. Only these
// tabs may leave their window.
func (t Tab) IsFileBacked() bool {
	return t.Content.Kind == KindFile || t.Content.Kind == KindFileError
}

// Path returns the file path for file-backed tabs and "" otherwise.
func (t Tab) Path() string {
	if !t.IsFileBacked() {
		return ""
	}
	return t.Content.Path
}

// DisplayName returns the label shown in the tab strip.
func (t Tab) DisplayName() string {
	switch t.Content.Kind {
	case KindFile, KindFileError:
		name := filepath.Base(t.Content.Path)
		if t.Content.Path == "" || name == "." || name == string(filepath.Separator) {
			return "Unnamed file"
		}
		return name
	case KindInline:
		return "Welcome"
	case KindPreferences:
		return "Preferences"
	default:
		return "No file"
	}
}
