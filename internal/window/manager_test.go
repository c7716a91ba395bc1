package window

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/pubsub"
	"github.com/zjrosen/tabdock/internal/tabs"
	"github.com/zjrosen/tabdock/internal/transfer"
)

func TestManager_OpenAnnouncesWindow(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := m.Subscribe(ctx)

	w := openWindow(t, m)
	require.Equal(t, []domain.WindowID{w.ID()}, m.ListWindowIDs())

	got, ok := m.Get(w.ID())
	require.True(t, ok)
	require.Same(t, w, got)

	ev := <-events
	require.Equal(t, pubsub.CreatedEvent, ev.Type)
	require.Equal(t, w.ID(), ev.Payload)
}

func TestManager_CreateWindowIsReachableOnReturn(t *testing.T) {
	m := newTestManager(t)
	src := openWindow(t, m, tabs.NewFileTab("/a"), tabs.NewFileTab("/b"))

	seed := tabs.NewFileTab("/seed")
	id, err := m.CreateWindow(context.Background(), seed, transfer.NewWindowConfig{Directory: "/d"})
	require.NoError(t, err)

	created, ok := m.Get(id)
	require.True(t, ok)
	require.Equal(t, "/d", created.Directory())
	require.Nil(t, created.Position())

	// The new window answers transfers right away.
	res := awaitResult(t, src.MoveToWindow(0, id))
	require.True(t, res.Committed(), "err: %v", res.Err)
	require.Len(t, created.Tabs(), 2)
}

func TestManager_CreateWindowHonoursContext(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.CreateWindow(ctx, tabs.NewFileTab("/x"), transfer.NewWindowConfig{})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, m.Count())
}

func TestManager_CloseWindow(t *testing.T) {
	m := newTestManager(t)
	a := openWindow(t, m)
	b := openWindow(t, m)

	require.NoError(t, m.CloseWindow(a.ID()))
	require.Equal(t, []domain.WindowID{b.ID()}, m.ListWindowIDs())
	require.ErrorIs(t, m.CloseWindow(a.ID()), ErrNotFound)
}

func TestManager_CloseRejectsLaterOpens(t *testing.T) {
	m := newTestManager(t)
	openWindow(t, m)
	openWindow(t, m)

	require.NoError(t, m.Close())
	require.Zero(t, m.Count())

	_, err := m.Open(nil, "", nil)
	require.ErrorIs(t, err, ErrClosed)
}

func TestSupervisor_ShutdownCancelsAndWaits(t *testing.T) {
	s := NewSupervisor(context.Background(), "test")
	stopped := make(chan struct{})
	require.NoError(t, s.Go("blocker", func(ctx context.Context) {
		<-ctx.Done()
		close(stopped)
	}))

	require.NoError(t, s.Shutdown(time.Second))
	select {
	case <-stopped:
	default:
		t.Fatal("task still running after Shutdown")
	}
	require.ErrorIs(t, s.Go("late", func(context.Context) {}), ErrSupervisorClosed)
}

func TestSupervisor_ShutdownTimeout(t *testing.T) {
	s := NewSupervisor(context.Background(), "test")
	release := make(chan struct{})
	defer close(release)
	require.NoError(t, s.Go("stuck", func(context.Context) { <-release }))

	require.ErrorIs(t, s.Shutdown(10*time.Millisecond), context.DeadlineExceeded)
}

func TestSupervisor_RecoversPanics(t *testing.T) {
	s := NewSupervisor(context.Background(), "test")
	require.NoError(t, s.Go("boom", func(context.Context) { panic("boom") }))
	require.NoError(t, s.Shutdown(time.Second), "a panicking task still counts as done")
}
