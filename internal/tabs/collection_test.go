package tabs

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// === Helper Functions ===

// fileTabs creates one file tab per name, e.g. fileTabs("a", "b") -> /a.md, /b.md.
func fileTabs(names ...string) []Tab {
	out := make([]Tab, 0, len(names))
	for _, n := range names {
		out = append(out, NewFileTab("/"+n+".md"))
	}
	return out
}

// names returns the display names of the collection in order.
func names(c *Collection) []string {
	var out []string
	for _, t := range c.Tabs() {
		out = append(out, t.DisplayName())
	}
	return out
}

func newWithActive(t *testing.T, active int, names ...string) *Collection {
	t.Helper()
	c := NewCollection(fileTabs(names...)...)
	require.True(t, c.SwitchTo(active))
	return c
}

// === Unit Tests: Reorder ===

func TestReorder_ForwardMove(t *testing.T) {
	c := newWithActive(t, 1, "a", "b", "c")

	newIndex, ok := c.Reorder(0, 2)

	require.True(t, ok)
	require.Equal(t, 1, newIndex)
	require.Equal(t, []string{"b.md", "a.md", "c.md"}, names(c))
	// from < active <= newPos -> active shifts left
	require.Equal(t, 0, c.Active())
	require.Equal(t, "b.md", c.Current().DisplayName())
}

func TestReorder_ActiveTabFollowsItsMove(t *testing.T) {
	c := newWithActive(t, 0, "a", "b", "c")

	newIndex, ok := c.Reorder(0, 2)

	require.True(t, ok)
	require.Equal(t, 1, newIndex)
	require.Equal(t, []string{"b.md", "a.md", "c.md"}, names(c))
	require.Equal(t, 1, c.Active())
	require.Equal(t, "a.md", c.Current().DisplayName())
}

func TestReorder_BackwardMove(t *testing.T) {
	c := newWithActive(t, 0, "a", "b", "c")

	newIndex, ok := c.Reorder(2, 0)

	require.True(t, ok)
	require.Equal(t, 0, newIndex)
	require.Equal(t, []string{"c.md", "a.md", "b.md"}, names(c))
	require.Equal(t, 1, c.Active())
	require.Equal(t, "a.md", c.Current().DisplayName())
}

func TestReorder_MoveToEnd(t *testing.T) {
	c := newWithActive(t, 2, "a", "b", "c")

	newIndex, ok := c.Reorder(0, 3)

	require.True(t, ok)
	require.Equal(t, 2, newIndex)
	require.Equal(t, []string{"b.md", "c.md", "a.md"}, names(c))
	require.Equal(t, "c.md", c.Current().DisplayName())
}

func TestReorder_UnaffectedActiveStays(t *testing.T) {
	c := newWithActive(t, 2, "a", "b", "c")

	_, ok := c.Reorder(0, 1)

	// Dropping before itself is still a move request (to=1 lands at 0); active untouched.
	require.True(t, ok)
	require.Equal(t, 2, c.Active())
}

func TestReorder_NoOps(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
	}{
		{"same index", 1, 1},
		{"from out of range", 5, 0},
		{"to beyond end", 0, 5},
		{"negative from", -1, 0},
		{"negative to", 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newWithActive(t, 1, "a", "b")
			before := c.Tabs()

			newIndex, ok := c.Reorder(tt.from, tt.to)

			require.False(t, ok)
			require.Equal(t, 0, newIndex)
			require.Equal(t, before, c.Tabs())
			require.Equal(t, 1, c.Active())
		})
	}
}

// TestReorder_ActiveRebasingExhaustive checks every (size, active, from, to)
// combination for collections up to five tabs, including out-of-range indices.
func TestReorder_ActiveRebasingExhaustive(t *testing.T) {
	for size := 1; size <= 5; size++ {
		for active := 0; active < size; active++ {
			for from := -1; from <= size; from++ {
				for to := -1; to <= size+1; to++ {
					t.Run(fmt.Sprintf("n%d_a%d_%d_to_%d", size, active, from, to), func(t *testing.T) {
						initial := make([]Tab, size)
						for i := range initial {
							initial[i] = NewFileTab(fmt.Sprintf("/%d.md", i))
						}
						c := NewCollection(initial...)
						require.True(t, c.SwitchTo(active))
						activeID := c.Current().ID
						before := c.Tabs()

						newIndex, ok := c.Reorder(from, to)

						require.Equal(t, activeID, c.Current().ID, "active pointer must track the same tab")
						require.Equal(t, size, c.Len())
						if !ok {
							require.Equal(t, before, c.Tabs())
							return
						}
						require.Equal(t, before[from].ID, c.tabs[newIndex].ID, "moved tab must be at returned index")
					})
				}
			}
		}
	}
}

// === Property Tests ===

func TestReorder_PreservesMultisetProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 12).Draw(t, "size")
		initial := make([]Tab, size)
		for i := range initial {
			initial[i] = NewFileTab(fmt.Sprintf("/doc-%d.md", i))
		}
		c := NewCollection(initial...)
		c.SwitchTo(rapid.IntRange(0, size-1).Draw(t, "active"))
		activeID := c.Current().ID

		from := rapid.IntRange(-2, size+2).Draw(t, "from")
		to := rapid.IntRange(-2, size+2).Draw(t, "to")
		c.Reorder(from, to)

		require.Equal(t, size, c.Len())
		got := c.Tabs()
		slices.SortFunc(got, func(a, b Tab) int { return compareIDs(a.ID, b.ID) })
		want := slices.Clone(initial)
		slices.SortFunc(want, func(a, b Tab) int { return compareIDs(a.ID, b.ID) })
		require.Equal(t, want, got)
		require.Equal(t, activeID, c.Current().ID)
		require.GreaterOrEqual(t, c.Active(), 0)
		require.Less(t, c.Active(), c.Len())
	})
}

func TestReorder_SequenceOfMovesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 6).Draw(t, "size")
		initial := make([]Tab, size)
		for i := range initial {
			initial[i] = NewFileTab(fmt.Sprintf("/doc-%d.md", i))
		}
		c := NewCollection(initial...)
		activeID := c.Current().ID

		moves := rapid.IntRange(1, 20).Draw(t, "moves")
		for i := range moves {
			from := rapid.IntRange(0, size-1).Draw(t, fmt.Sprintf("from-%d", i))
			to := rapid.IntRange(0, size).Draw(t, fmt.Sprintf("to-%d", i))
			c.Reorder(from, to)
			require.Equal(t, activeID, c.Current().ID)
		}
	})
}

func compareIDs(a, b ID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// === Unit Tests: Close / Add / Open ===

func TestClose_LastTabIsReplacedByEmpty(t *testing.T) {
	c := NewCollection(NewFileTab("/a.md"))

	require.True(t, c.Close(0))

	require.Equal(t, 1, c.Len())
	require.Equal(t, KindNone, c.Current().Content.Kind)
	require.Equal(t, 0, c.Active())
}

func TestClose_RebasesActive(t *testing.T) {
	tests := []struct {
		name       string
		active     int
		close      int
		wantActive string
	}{
		{"close before active", 2, 0, "c.md"},
		{"close after active", 0, 2, "a.md"},
		{"close active middle", 1, 1, "c.md"},
		{"close active last", 2, 2, "b.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newWithActive(t, tt.active, "a", "b", "c")
			require.True(t, c.Close(tt.close))
			require.Equal(t, 2, c.Len())
			require.Equal(t, tt.wantActive, c.Current().DisplayName())
		})
	}
}

func TestClose_OutOfRange(t *testing.T) {
	c := NewCollection(fileTabs("a")...)
	require.False(t, c.Close(3))
	require.False(t, c.Close(-1))
}

func TestRemoveByID(t *testing.T) {
	c := newWithActive(t, 2, "a", "b", "c")
	id := c.tabs[0].ID

	require.True(t, c.RemoveByID(id))
	require.False(t, c.RemoveByID(id), "second removal of the same tab is a no-op")
	require.Equal(t, []string{"b.md", "c.md"}, names(c))
	require.Equal(t, "c.md", c.Current().DisplayName())
}

func TestOpenFile(t *testing.T) {
	c := NewCollection()

	// Empty active tab is reused
	require.Equal(t, 0, c.OpenFile("/a.md"))
	require.Equal(t, 1, c.Len())

	// New file is appended and activated
	require.Equal(t, 1, c.OpenFile("/b.md"))
	require.Equal(t, 1, c.Active())

	// Already-open file is activated, not duplicated
	require.Equal(t, 0, c.OpenFile("/a.md"))
	require.Equal(t, 2, c.Len())
	require.Equal(t, 0, c.Active())
}

func TestAdd(t *testing.T) {
	c := NewCollection(fileTabs("a")...)

	require.Equal(t, 1, c.AddEmpty(false))
	require.Equal(t, 0, c.Active())
	require.Equal(t, 2, c.Add(NewInlineTab("hi"), true))
	require.Equal(t, 2, c.Active())
	require.Equal(t, "Welcome", c.Current().DisplayName())
}

func TestTogglePreferences(t *testing.T) {
	c := NewCollection(fileTabs("a")...)

	c.TogglePreferences()
	require.Equal(t, KindPreferences, c.Current().Content.Kind)
	require.Equal(t, 2, c.Len())

	c.SwitchTo(0)
	c.TogglePreferences()
	require.Equal(t, KindPreferences, c.Current().Content.Kind, "existing preferences tab is activated")
	require.Equal(t, 2, c.Len())

	c.TogglePreferences()
	require.Equal(t, 1, c.Len(), "active preferences tab is closed")
	require.Equal(t, "a.md", c.Current().DisplayName())
}

// === Unit Tests: Transferability ===

func TestIsTransferable(t *testing.T) {
	c := NewCollection(NewFileTab("/a.md"))
	require.False(t, c.IsTransferable(0), "sole remaining tab is never transferable")

	c.Add(NewInlineTab("welcome"), false)
	c.Add(NewPreferencesTab(), false)
	c.Add(NewEmptyTab(), false)
	c.Add(Tab{ID: NewID(), Content: Content{Kind: KindFileError, Path: "/gone.md", Err: "removed"}}, false)

	require.True(t, c.IsTransferable(0))
	require.False(t, c.IsTransferable(1), "inline")
	require.False(t, c.IsTransferable(2), "preferences")
	require.False(t, c.IsTransferable(3), "empty")
	require.True(t, c.IsTransferable(4), "file error is still file-backed")
	require.False(t, c.IsTransferable(9))
}

func TestLastTabGuardProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kind := Kind(rapid.IntRange(int(KindNone), int(KindPreferences)).Draw(t, "kind"))
		c := NewCollection(Tab{ID: NewID(), Content: Content{Kind: kind, Path: "/x.md"}})
		require.False(t, c.IsTransferable(0))
	})
}

// === Unit Tests: File state ===

func TestMarkAndRestoreFile(t *testing.T) {
	c := NewCollection(fileTabs("a", "b")...)

	require.Equal(t, 1, c.MarkFileError("/a.md", "removed"))
	tab, _ := c.Get(0)
	require.Equal(t, KindFileError, tab.Content.Kind)
	require.Equal(t, "removed", tab.Content.Err)
	require.Equal(t, 0, c.MarkFileError("/a.md", "removed"), "already errored")

	require.Equal(t, 1, c.RestoreFile("/a.md"))
	tab, _ = c.Get(0)
	require.Equal(t, KindFile, tab.Content.Kind)
	require.Empty(t, tab.Content.Err)

	require.Equal(t, []string{"/a.md", "/b.md"}, c.FilePaths())
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "a.md", NewFileTab("/x/a.md").DisplayName())
	require.Equal(t, "Unnamed file", NewFileTab("").DisplayName())
	require.Equal(t, "Welcome", NewInlineTab("x").DisplayName())
	require.Equal(t, "Preferences", NewPreferencesTab().DisplayName())
	require.Equal(t, "No file", NewEmptyTab().DisplayName())
	require.Equal(t, "file_error", KindFileError.String())
}
