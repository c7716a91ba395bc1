package tabs

import (
	"slices"

	"github.com/zjrosen/tabdock/internal/log"
)

// Collection is the ordered tab sequence of one window plus its active index.
//
// Invariants:
//   - the sequence is never empty
//   - 0 <= active < Len()
//
// Collection is not safe for concurrent use; the owning window serializes
// access.
type Collection struct {
	tabs   []Tab
	active int
}

// NewCollection creates a collection from the given tabs with the first one
// active. An empty argument list yields a single empty tab.
func NewCollection(initial ...Tab) *Collection {
	c := &Collection{}
	if len(initial) == 0 {
		c.tabs = []Tab{NewEmptyTab()}
		return c
	}
	c.tabs = slices.Clone(initial)
	return c
}

// Len returns the number of tabs.
func (c *Collection) Len() int {
	return len(c.tabs)
}

// Active returns the active index.
func (c *Collection) Active() int {
	return c.active
}

// Tabs returns a copy of the tab sequence.
func (c *Collection) Tabs() []Tab {
	return slices.Clone(c.tabs)
}

// Get returns a copy of the tab at index.
func (c *Collection) Get(index int) (Tab, bool) {
	if index < 0 || index >= len(c.tabs) {
		return Tab{}, false
	}
	return c.tabs[index], true
}

// Current returns a copy of the active tab.
func (c *Collection) Current() Tab {
	return c.tabs[c.active]
}

// Index returns the position of the tab with the given ID, or -1.
func (c *Collection) Index(id ID) int {
	return slices.IndexFunc(c.tabs, func(t Tab) bool { return t.ID == id })
}

// Reorder moves the tab at from so that it lands before the tab currently at
// to; to == Len() means "move to the end". It returns the moved tab's final
// index and true, or (0, false) without touching anything when from == to or
// either index is out of range. Stale indices from the UI are expected, so
// they are not errors.
func (c *Collection) Reorder(from, to int) (int, bool) {
	if from == to {
		return 0, false
	}
	if from < 0 || from >= len(c.tabs) || to < 0 || to > len(c.tabs) {
		log.Debug(log.CatTabs, "Ignoring out-of-range reorder", "from", from, "to", to, "len", len(c.tabs))
		return 0, false
	}

	tab := c.tabs[from]
	c.tabs = slices.Delete(c.tabs, from, from+1)

	// Removal shifted everything after from one slot left.
	insertAt := to
	if from < to {
		insertAt = to - 1
	}
	c.tabs = slices.Insert(c.tabs, insertAt, tab)

	c.active = rebaseActive(c.active, from, insertAt)
	return insertAt, true
}

// rebaseActive returns where the previously active tab ended up after the tab
// at from moved to newPos.
func rebaseActive(active, from, newPos int) int {
	switch {
	case active == from:
		return newPos
	case from < active && active <= newPos:
		return active - 1
	case newPos <= active && active < from:
		return active + 1
	default:
		return active
	}
}

// Add appends tab and optionally activates it. It returns the new tab's index.
func (c *Collection) Add(tab Tab, activate bool) int {
	c.tabs = append(c.tabs, tab)
	index := len(c.tabs) - 1
	if activate {
		c.active = index
	}
	return index
}

// AddEmpty appends an empty tab.
func (c *Collection) AddEmpty(activate bool) int {
	return c.Add(NewEmptyTab(), activate)
}

// OpenFile shows path: an existing tab for the same file is activated, an
// active empty tab is reused, otherwise a new tab is appended and activated.
// It returns the index of the tab showing the file.
func (c *Collection) OpenFile(path string) int {
	if i := slices.IndexFunc(c.tabs, func(t Tab) bool { return t.Path() == path }); i >= 0 {
		c.active = i
		return i
	}
	if c.tabs[c.active].Content.Kind == KindNone {
		c.tabs[c.active].Content = Content{Kind: KindFile, Path: path}
		return c.active
	}
	return c.Add(NewFileTab(path), true)
}

// SwitchTo activates the tab at index.
func (c *Collection) SwitchTo(index int) bool {
	if index < 0 || index >= len(c.tabs) {
		return false
	}
	c.active = index
	return true
}

// Close removes the tab at index. Closing the only tab replaces it with an
// empty one so the window never ends up without tabs.
func (c *Collection) Close(index int) bool {
	if index < 0 || index >= len(c.tabs) {
		return false
	}
	if len(c.tabs) == 1 {
		c.tabs[0] = NewEmptyTab()
		c.active = 0
		return true
	}

	c.tabs = slices.Delete(c.tabs, index, index+1)
	switch {
	case c.active > index:
		c.active--
	case c.active == index && c.active >= len(c.tabs):
		c.active = len(c.tabs) - 1
	}
	return true
}

// RemoveByID closes the tab with the given ID. It reports false when no such
// tab exists, which makes repeated removals of the same tab harmless.
func (c *Collection) RemoveByID(id ID) bool {
	i := c.Index(id)
	if i < 0 {
		return false
	}
	return c.Close(i)
}

// TogglePreferences closes an active preferences tab, activates an inactive
// one, or opens a new one.
func (c *Collection) TogglePreferences() {
	if c.tabs[c.active].Content.Kind == KindPreferences {
		c.Close(c.active)
		return
	}
	if i := slices.IndexFunc(c.tabs, func(t Tab) bool { return t.Content.Kind == KindPreferences }); i >= 0 {
		c.active = i
		return
	}
	c.Add(NewPreferencesTab(), true)
}

// IsTransferable reports whether the tab at index may move to another window:
// it must be file-backed and must not be the window's last tab.
func (c *Collection) IsTransferable(index int) bool {
	tab, ok := c.Get(index)
	if !ok {
		return false
	}
	return tab.IsFileBacked() && len(c.tabs) > 1
}

// MarkFileError flags every tab showing path as unreadable and returns how
// many tabs changed.
func (c *Collection) MarkFileError(path, reason string) int {
	changed := 0
	for i := range c.tabs {
		if c.tabs[i].Content.Kind == KindFile && c.tabs[i].Content.Path == path {
			c.tabs[i].Content = Content{Kind: KindFileError, Path: path, Err: reason}
			changed++
		}
	}
	return changed
}

// RestoreFile clears the error state of every tab showing path and returns
// how many tabs changed.
func (c *Collection) RestoreFile(path string) int {
	changed := 0
	for i := range c.tabs {
		if c.tabs[i].Content.Kind == KindFileError && c.tabs[i].Content.Path == path {
			c.tabs[i].Content = Content{Kind: KindFile, Path: path}
			changed++
		}
	}
	return changed
}

// FilePaths returns the distinct paths of all file-backed tabs.
func (c *Collection) FilePaths() []string {
	var paths []string
	for _, t := range c.tabs {
		if p := t.Path(); p != "" && !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}
	return paths
}
