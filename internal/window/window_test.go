package window

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/drag"
	"github.com/zjrosen/tabdock/internal/tabs"
	"github.com/zjrosen/tabdock/internal/transfer"
)

func newTestManager(t *testing.T, mutate ...func(*Config)) *Manager {
	t.Helper()
	cfg := Config{
		Registry:          drag.NewRegistry(),
		Bus:               transfer.NewBus(0),
		TransferTimeout:   time.Second,
		SettleDuration:    100 * time.Millisecond,
		DetachToNewWindow: true,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	m := NewManager(cfg)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func openWindow(t *testing.T, m *Manager, initial ...tabs.Tab) *Window {
	t.Helper()
	w, err := m.Open(initial, "/work", nil)
	require.NoError(t, err)
	return w
}

func awaitResult(t *testing.T, ch <-chan transfer.Result) transfer.Result {
	t.Helper()
	require.NotNil(t, ch)
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("transfer did not finish")
		return transfer.Result{}
	}
}

func tabIDs(w *Window) []tabs.ID {
	var ids []tabs.ID
	for _, tab := range w.Tabs() {
		ids = append(ids, tab.ID)
	}
	return ids
}

func TestNew_RequiresRegistryAndBus(t *testing.T) {
	_, err := New(Config{Bus: transfer.NewBus(0)})
	require.Error(t, err)
	_, err = New(Config{Registry: drag.NewRegistry()})
	require.Error(t, err)
}

func TestWindow_ReorderPublishesChange(t *testing.T) {
	m := newTestManager(t)
	a, b, c := tabs.NewFileTab("/a"), tabs.NewFileTab("/b"), tabs.NewFileTab("/c")
	w := openWindow(t, m, a, b, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := w.Subscribe(ctx)

	newIndex, ok := w.Reorder(0, 3)
	require.True(t, ok)
	require.Equal(t, 2, newIndex)
	require.Equal(t, []tabs.ID{b.ID, c.ID, a.ID}, tabIDs(w))
	require.Equal(t, 2, w.Active(), "active follows the moved tab")

	select {
	case ev := <-events:
		require.Equal(t, EventTabsChanged, ev.Payload.Kind)
		require.Equal(t, w.ID(), ev.Payload.Window)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}

	_, ok = w.Reorder(5, 0)
	require.False(t, ok)
}

func TestWindow_LocalTabOperations(t *testing.T) {
	m := newTestManager(t)
	w := openWindow(t, m)
	require.Len(t, w.Tabs(), 1)

	require.Equal(t, 0, w.OpenFile("/x.go"), "empty tab is reused")
	require.Equal(t, 1, w.NewTab())
	require.Equal(t, 0, w.OpenFile("/x.go"), "open file is focused, not duplicated")
	require.True(t, w.SwitchTo(1))
	require.True(t, w.CloseTab(1))
	require.Len(t, w.Tabs(), 1)

	w.TogglePreferences()
	require.Equal(t, tabs.KindPreferences, w.Tabs()[w.Active()].Content.Kind)
	w.TogglePreferences()
	require.Len(t, w.Tabs(), 1)
}

func TestWindow_MoveToWindow(t *testing.T) {
	m := newTestManager(t)
	moving := tabs.NewFileTab("/src/moving.go")
	src := openWindow(t, m, tabs.NewFileTab("/src/stay.go"), moving)
	dst := openWindow(t, m, tabs.NewInlineTab("hello"))

	res := awaitResult(t, src.MoveToWindow(1, dst.ID()))
	require.True(t, res.Committed(), "err: %v", res.Err)

	require.Equal(t, []tabs.ID{src.Tabs()[0].ID}, tabIDs(src))
	require.Len(t, dst.Tabs(), 2)
	require.Equal(t, moving.ID, dst.Tabs()[dst.Active()].ID, "adopted tab is active")
}

func TestWindow_MoveToWindowFollowsReorder(t *testing.T) {
	m := newTestManager(t)
	a, b, c := tabs.NewFileTab("/a"), tabs.NewFileTab("/b"), tabs.NewFileTab("/c")
	src := openWindow(t, m, a, b, c)
	dst := openWindow(t, m)

	ch := src.MoveToWindow(0, dst.ID())
	src.Reorder(2, 0)

	res := awaitResult(t, ch)
	require.True(t, res.Committed())
	require.Equal(t, a.ID, res.TabID)
	require.ElementsMatch(t, []tabs.ID{b.ID, c.ID}, tabIDs(src))
}

func TestWindow_MoveToWindowIneligible(t *testing.T) {
	m := newTestManager(t)
	src := openWindow(t, m, tabs.NewInlineTab("welcome"), tabs.NewFileTab("/x"))
	dst := openWindow(t, m)

	res := awaitResult(t, src.MoveToWindow(0, dst.ID()))
	require.Equal(t, transfer.OutcomeIneligible, res.Outcome)
	require.ErrorIs(t, res.Err, transfer.ErrNotTransferable)

	res = awaitResult(t, src.MoveToWindow(9, dst.ID()))
	require.Equal(t, transfer.OutcomeIneligible, res.Outcome)
	require.Len(t, src.Tabs(), 2)
}

func TestWindow_DragAcrossWindows(t *testing.T) {
	m := newTestManager(t)
	moving := tabs.NewFileTab("/x.go")
	src := openWindow(t, m, tabs.NewFileTab("/y.go"), moving)
	dst := openWindow(t, m)

	require.True(t, src.DragStart(1, domain.Point{X: 2, Y: 0}))
	require.True(t, src.DragState().Dragging)

	dst.DragEnter()
	require.True(t, dst.IsDropCandidate())
	require.False(t, src.IsDropCandidate())

	require.True(t, dst.Drop(0))
	res := awaitResult(t, src.DragEnd(domain.Point{X: 100, Y: 5}))
	require.True(t, res.Committed())
	require.Equal(t, dst.ID(), res.Target)

	require.False(t, src.DragState().Dragging)
	require.False(t, m.base.Registry.IsDragging(), "registry is cleared")
	require.Contains(t, tabIDs(dst), moving.ID)
	require.NotContains(t, tabIDs(src), moving.ID)
	require.Equal(t, 2, m.Count(), "no window was created")
}

func TestWindow_DragLeaveClearsTarget(t *testing.T) {
	m := newTestManager(t)
	src := openWindow(t, m, tabs.NewFileTab("/y.go"), tabs.NewFileTab("/x.go"))
	dst := openWindow(t, m)

	src.DragStart(0, domain.Point{})
	dst.DragEnter()
	dst.DragLeave()
	require.False(t, dst.IsDropCandidate())

	rec, ok := m.base.Registry.Peek()
	require.True(t, ok)
	require.False(t, rec.HasTarget())
}

func TestWindow_DragWithinWindowReorders(t *testing.T) {
	m := newTestManager(t)
	a, b, c := tabs.NewFileTab("/a"), tabs.NewFileTab("/b"), tabs.NewFileTab("/c")
	w := openWindow(t, m, a, b, c)

	require.True(t, w.DragStart(0, domain.Point{}))
	w.DragOver(3, true)
	snap := w.DragState()
	require.True(t, snap.HasDropTarget)
	require.Equal(t, 3, snap.DropTarget)

	require.True(t, w.Drop(3))
	require.Nil(t, w.DragEnd(domain.Point{}))

	require.Equal(t, []tabs.ID{b.ID, c.ID, a.ID}, tabIDs(w))
	require.True(t, w.DragState().Settling)
	require.Eventually(t, func() bool { return !w.DragState().Settling }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, m.Count())
}

func TestWindow_DragOutsideDetaches(t *testing.T) {
	m := newTestManager(t)
	moving := tabs.NewFileTab("/x.go")
	src := openWindow(t, m, tabs.NewFileTab("/y.go"), moving)

	require.True(t, src.DragStart(1, domain.Point{X: 3, Y: 1}))
	res := awaitResult(t, src.DragEnd(domain.Point{X: 50, Y: 20}))
	require.True(t, res.Committed(), "err: %v", res.Err)

	created, ok := m.Get(res.Target)
	require.True(t, ok)
	require.Equal(t, []tabs.ID{moving.ID}, tabIDs(created))
	require.Equal(t, &domain.Point{X: 47, Y: 19}, created.Position())
	require.Equal(t, "/work", created.Directory())
	require.NotContains(t, tabIDs(src), moving.ID)
	require.Equal(t, []domain.WindowID{src.ID(), created.ID()}, m.ListWindowIDs())
}

func TestWindow_DragOutsideDetachesDraggedTabAfterEarlierTabLeaves(t *testing.T) {
	m := newTestManager(t)
	a, b, c := tabs.NewFileTab("/a"), tabs.NewFileTab("/b"), tabs.NewFileTab("/c")
	src := openWindow(t, m, a, b, c)
	dst := openWindow(t, m)

	require.True(t, src.DragStart(1, domain.Point{}))
	moved := awaitResult(t, src.MoveToWindow(0, dst.ID()))
	require.True(t, moved.Committed(), "err: %v", moved.Err)

	res := awaitResult(t, src.DragEnd(domain.Point{X: 50, Y: 20}))
	require.True(t, res.Committed(), "err: %v", res.Err)
	require.Equal(t, b.ID, res.TabID)
	require.Equal(t, []tabs.ID{c.ID}, tabIDs(src))

	created, ok := m.Get(res.Target)
	require.True(t, ok)
	require.Equal(t, []tabs.ID{b.ID}, tabIDs(created))
}

func TestWindow_DropReordersDraggedTabAfterEarlierTabLeaves(t *testing.T) {
	m := newTestManager(t)
	a, b, c, d := tabs.NewFileTab("/a"), tabs.NewFileTab("/b"), tabs.NewFileTab("/c"), tabs.NewFileTab("/d")
	w := openWindow(t, m, a, b, c, d)
	dst := openWindow(t, m)

	require.True(t, w.DragStart(2, domain.Point{}))
	require.True(t, awaitResult(t, w.MoveToWindow(0, dst.ID())).Committed())

	require.True(t, w.Drop(3))
	require.Nil(t, w.DragEnd(domain.Point{}))
	require.Equal(t, []tabs.ID{b.ID, d.ID, c.ID}, tabIDs(w))
}

func TestWindow_DragCancelledWhenDraggedTabLeaves(t *testing.T) {
	m := newTestManager(t)
	a, b, c := tabs.NewFileTab("/a"), tabs.NewFileTab("/b"), tabs.NewFileTab("/c")
	src := openWindow(t, m, a, b, c)
	dst := openWindow(t, m)

	require.True(t, src.DragStart(1, domain.Point{}))
	require.True(t, awaitResult(t, src.MoveToWindow(1, dst.ID())).Committed())

	require.Nil(t, src.DragEnd(domain.Point{X: 50, Y: 20}))
	require.Equal(t, []tabs.ID{a.ID, c.ID}, tabIDs(src))
	require.False(t, m.base.Registry.IsDragging())
	require.Equal(t, 2, m.Count(), "no window was created")

	require.True(t, src.DragStart(1, domain.Point{}))
	require.True(t, awaitResult(t, src.MoveToWindow(1, dst.ID())).Committed())

	require.False(t, src.Drop(0))
	require.Equal(t, []tabs.ID{a.ID}, tabIDs(src))
	require.False(t, src.DragState().Dragging)
	require.False(t, m.base.Registry.IsDragging())
}

func TestWindow_DragOutsideWithoutDetach(t *testing.T) {
	m := newTestManager(t, func(c *Config) { c.DetachToNewWindow = false })
	src := openWindow(t, m, tabs.NewFileTab("/y.go"), tabs.NewFileTab("/x.go"))
	before := tabIDs(src)

	require.True(t, src.DragStart(1, domain.Point{}))
	require.Nil(t, src.DragEnd(domain.Point{X: 50, Y: 20}))
	require.Equal(t, before, tabIDs(src))
	require.False(t, m.base.Registry.IsDragging())
	require.Equal(t, 1, m.Count())
}

func TestWindow_DragStartRequiresTransferableTab(t *testing.T) {
	m := newTestManager(t)
	w := openWindow(t, m, tabs.NewPreferencesTab(), tabs.NewFileTab("/x"))
	require.False(t, w.DragStart(0, domain.Point{}))
	require.False(t, m.base.Registry.IsDragging())

	solo := openWindow(t, m, tabs.NewFileTab("/only"))
	require.False(t, solo.DragStart(0, domain.Point{}), "last tab stays put")
}

func TestWindow_DropWithoutDragIsIgnored(t *testing.T) {
	m := newTestManager(t)
	w := openWindow(t, m, tabs.NewFileTab("/a"), tabs.NewFileTab("/b"))
	require.False(t, w.Drop(0))
	require.Nil(t, w.DragEnd(domain.Point{}))
}

func TestWindow_CloseCancelsInFlightTransfer(t *testing.T) {
	m := newTestManager(t, func(c *Config) { c.TransferTimeout = time.Minute })
	src := openWindow(t, m, tabs.NewFileTab("/a"), tabs.NewFileTab("/b"))
	_ = openWindow(t, m) // keeps the bus populated
	before := tabIDs(src)

	ch := src.MoveToWindow(0, "no-such-window")
	require.NoError(t, src.Close())

	res := awaitResult(t, ch)
	require.Equal(t, transfer.OutcomeCancelled, res.Outcome)
	require.Equal(t, before, tabIDs(src))

	res = awaitResult(t, src.MoveToWindow(0, "other"))
	require.Equal(t, transfer.OutcomeCancelled, res.Outcome)
}

func TestWindow_AdoptTab(t *testing.T) {
	m := newTestManager(t)
	w := openWindow(t, m)
	tab := tabs.NewFileTab("/x")

	require.NoError(t, w.AdoptTab(tab, "/elsewhere"))
	require.ErrorIs(t, w.AdoptTab(tab, ""), ErrDuplicateTab)

	require.NoError(t, w.Close())
	require.ErrorIs(t, w.AdoptTab(tabs.NewFileTab("/y"), ""), ErrClosed)
}

func TestWindow_OtherWindows(t *testing.T) {
	m := newTestManager(t)
	a := openWindow(t, m)
	b := openWindow(t, m)
	c := openWindow(t, m)

	require.Equal(t, []domain.WindowID{b.ID(), c.ID()}, a.OtherWindows())
	require.NoError(t, m.CloseWindow(b.ID()))
	require.Equal(t, []domain.WindowID{a.ID()}, c.OtherWindows())
}

func TestWindow_WatchesFileTabs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	m := newTestManager(t, func(c *Config) {
		c.WatchFiles = true
		c.WatchDebounce = 20 * time.Millisecond
	})
	w := openWindow(t, m, tabs.NewFileTab(path), tabs.NewInlineTab("hi"))

	kindOf := func() tabs.Kind { return w.Tabs()[0].Content.Kind }

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool { return kindOf() == tabs.KindFileError }, 2*time.Second, 10*time.Millisecond)
	require.True(t, w.IsTransferable(0), "errored file tabs may still move")

	require.NoError(t, os.WriteFile(path, []byte("back"), 0o644))
	require.Eventually(t, func() bool { return kindOf() == tabs.KindFile }, 2*time.Second, 10*time.Millisecond)
}

func TestWindow_CancelDrag(t *testing.T) {
	m := newTestManager(t)
	src := openWindow(t, m, tabs.NewFileTab("/y.go"), tabs.NewFileTab("/x.go"))
	before := tabIDs(src)

	require.True(t, src.DragStart(0, domain.Point{}))
	src.CancelDrag()

	require.False(t, src.DragState().Dragging)
	require.False(t, m.base.Registry.IsDragging())
	require.Nil(t, src.DragEnd(domain.Point{X: 99}), "nothing left to finish")
	require.Equal(t, before, tabIDs(src))
	require.Equal(t, 1, m.Count())
}
