// Package log is tabdock's debug log. Entries go to a file opened with
// tea.LogToFile and to in-process subscribers such as the status bar.
// Nothing is written until Init or InitWithTeaLog runs.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/tabdock/internal/pubsub"
)

// Level is the severity of an entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category names the subsystem an entry comes from.
type Category string

const (
	CatTabs     Category = "tabs"
	CatDrag     Category = "drag"
	CatTransfer Category = "transfer"
	CatWindow   Category = "window" // lifecycle and background tasks
	CatWatcher  Category = "watcher"
	CatConfig   Category = "config"
	CatCache    Category = "cache"
	CatUI       Category = "ui"
)

// Entry is one log record.
type Entry struct {
	Time     time.Time
	Level    Level
	Category Category
	Message  string
	// Fields holds the formatted key=value pairs.
	Fields string
}

// String formats the entry as it appears in the log file, without the
// trailing newline.
func (e Entry) String() string {
	line := fmt.Sprintf("%s [%s] [%s] %s", e.Time.Format("2006-01-02T15:04:05"), e.Level, e.Category, e.Message)
	if e.Fields != "" {
		line += " " + e.Fields
	}
	return line
}

// LogEvent carries an Entry to subscribers.
type LogEvent = pubsub.Event[Entry]

// LogListener is a continuous subscription to log entries.
type LogListener = pubsub.ContinuousListener[Entry]

type logger struct {
	mu       sync.Mutex
	out      io.Writer
	closer   io.Closer
	minLevel Level
	enabled  bool
	entries  *pubsub.Broker[Entry]
}

var (
	mu     sync.RWMutex
	active *logger
)

func install(out io.Writer, closer io.Closer) func() {
	l := &logger{
		out:      out,
		closer:   closer,
		minLevel: LevelDebug,
		enabled:  true,
		entries:  pubsub.NewBroker[Entry](),
	}
	mu.Lock()
	prev := active
	active = l
	mu.Unlock()
	if prev != nil {
		prev.entries.Close()
	}

	return func() {
		mu.Lock()
		if active == l {
			active = nil
		}
		mu.Unlock()
		l.entries.Close()
		if l.closer != nil {
			_ = l.closer.Close()
		}
	}
}

// Init appends entries to the file at path. The returned function closes it.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: debug log path chosen by the user
	if err != nil {
		return nil, err
	}
	return install(f, f), nil
}

// InitWithTeaLog opens path through tea.LogToFile, which also routes
// Bubble Tea's own logging there.
func InitWithTeaLog(path, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	return install(f, f), nil
}

// InitWriter sends entries to w. It is meant for tests.
func InitWriter(w io.Writer) func() {
	return install(w, nil)
}

func current() *logger {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// SetEnabled pauses or resumes logging.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel drops entries below level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

func Debug(cat Category, msg string, fields ...any) { write(LevelDebug, cat, msg, fields) }
func Info(cat Category, msg string, fields ...any)  { write(LevelInfo, cat, msg, fields) }
func Warn(cat Category, msg string, fields ...any)  { write(LevelWarn, cat, msg, fields) }
func Error(cat Category, msg string, fields ...any) { write(LevelError, cat, msg, fields) }

// ErrorErr logs msg at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	text := "<nil>"
	if err != nil {
		text = err.Error()
	}
	write(LevelError, cat, msg, append(fields, "error", text))
}

func write(level Level, cat Category, msg string, fields []any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	if !l.enabled || level < l.minLevel {
		l.mu.Unlock()
		return
	}
	e := Entry{Time: time.Now(), Level: level, Category: cat, Message: msg, Fields: formatFields(fields)}
	_, _ = io.WriteString(l.out, e.String()+"\n")
	l.mu.Unlock()

	l.entries.Publish(pubsub.CreatedEvent, e)
}

// formatFields renders key/value pairs; a trailing key without a value is
// marked <missing>.
func formatFields(fields []any) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(fields); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i+1 < len(fields) {
			fmt.Fprintf(&b, "%v=%v", fields[i], fields[i+1])
		} else {
			fmt.Fprintf(&b, "%v=<missing>", fields[i])
		}
	}
	return b.String()
}

// NewListener subscribes to new entries until ctx ends. It returns nil when
// logging is not initialized.
func NewListener(ctx context.Context) *LogListener {
	l := current()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, l.entries)
}

// SafeGo runs fn on a new goroutine. A panic in fn is logged with its stack
// instead of crashing the process.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Error(CatWindow, "Recovered panic in goroutine", "name", name, "panic", r, "stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}
