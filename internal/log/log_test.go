package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer for writers on other goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWrite_FormatsEntry(t *testing.T) {
	var buf syncBuffer
	t.Cleanup(InitWriter(&buf))

	Info(CatTransfer, "Request sent", "target", "w1", "tab", 3)

	line := buf.String()
	require.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2} \[INFO\] \[transfer\] Request sent target=w1 tab=3\n$`, line)
}

func TestWrite_OddFieldsAndErrors(t *testing.T) {
	var buf syncBuffer
	t.Cleanup(InitWriter(&buf))

	Warn(CatDrag, "orphan", "key")
	ErrorErr(CatWindow, "failed", errors.New("boom"), "window", "a")
	ErrorErr(CatWindow, "nil error", nil)

	out := buf.String()
	require.Contains(t, out, "[WARN] [drag] orphan key=<missing>")
	require.Contains(t, out, "[ERROR] [window] failed window=a error=boom")
	require.Contains(t, out, "nil error error=<nil>")
}

func TestMinLevelAndEnabled(t *testing.T) {
	var buf syncBuffer
	t.Cleanup(InitWriter(&buf))

	SetMinLevel(LevelWarn)
	Info(CatConfig, "hidden")
	Warn(CatConfig, "shown")

	SetEnabled(false)
	Error(CatConfig, "paused")
	SetEnabled(true)

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	require.NotContains(t, out, "paused")
}

func TestUninitializedIsSilent(t *testing.T) {
	require.NotPanics(t, func() {
		Debug(CatUI, "nobody listening")
		SetMinLevel(LevelError)
	})
	require.Nil(t, NewListener(context.Background()))
}

func TestListenerReceivesEntries(t *testing.T) {
	var buf syncBuffer
	t.Cleanup(InitWriter(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatWindow, "Window opened", "window", "abc")

	msg := listener.Listen()()
	ev, ok := msg.(LogEvent)
	require.True(t, ok)
	require.Equal(t, LevelInfo, ev.Payload.Level)
	require.Equal(t, CatWindow, ev.Payload.Category)
	require.Equal(t, "Window opened", ev.Payload.Message)
	require.Equal(t, "window=abc", ev.Payload.Fields)
}

func TestInit_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)

	Info(CatConfig, "first")
	cleanup()
	Info(CatConfig, "after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "first")
	require.NotContains(t, string(data), "after close")
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	var buf syncBuffer
	t.Cleanup(InitWriter(&buf))

	SafeGo("exploding", func() { panic("kaboom") })

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(buf.String()), []byte("Recovered panic in goroutine name=exploding panic=kaboom"))
	}, time.Second, 5*time.Millisecond)
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}
