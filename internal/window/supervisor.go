package window

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zjrosen/tabdock/internal/log"
)

// ErrSupervisorClosed is returned when spawning on a stopped supervisor.
var ErrSupervisorClosed = errors.New("supervisor closed")

// Supervisor owns the background tasks of one window. Every task receives a
// context that is cancelled by Shutdown, and Shutdown waits for the tasks to
// return.
type Supervisor struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewSupervisor creates a supervisor whose tasks stop when parent ends or
// Shutdown is called.
func NewSupervisor(parent context.Context, name string) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	return &Supervisor{name: name, ctx: ctx, cancel: cancel}
}

// Go runs fn on its own goroutine with panic recovery.
func (s *Supervisor) Go(task string, fn func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSupervisorClosed
	}

	s.wg.Add(1)
	log.SafeGo(s.name+"/"+task, func() {
		defer s.wg.Done()
		fn(s.ctx)
	})
	return nil
}

// Context returns the context handed to tasks.
func (s *Supervisor) Context() context.Context {
	return s.ctx
}

// Shutdown cancels all tasks and waits up to timeout for them to return.
// Later calls only wait.
func (s *Supervisor) Shutdown(timeout time.Duration) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		log.Warn(log.CatWindow, "Supervisor shutdown timed out", "supervisor", s.name, "timeout", timeout)
		return context.DeadlineExceeded
	}
}
