package drag

import (
	"sync"
	"time"
)

// DefaultSettleDuration is how long the settle flag stays up after a drop.
const DefaultSettleDuration = 300 * time.Millisecond

// State is the lifecycle state of a Session.
// Valid transitions:
//
//	Idle     -> Dragging
//	Dragging -> Idle, Settling
//	Settling -> Idle, Dragging
type State int

const (
	// StateIdle means no gesture is in progress.
	StateIdle State = iota
	// StateDragging means a tab of this window is being dragged.
	StateDragging
	// StateSettling means a drop just happened and the settle flag is up.
	StateSettling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateSettling:
		return "settling"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of a Session, used for rendering.
type Snapshot struct {
	State         State
	DraggedIndex  int
	Dragging      bool
	DropTarget    int
	HasDropTarget bool
	Settling      bool
}

// Session is the per-window drag state machine. It never touches the tab
// collection: callers perform the reorder or transfer and then call EndDrag.
type Session struct {
	mu            sync.Mutex
	dragging      bool
	draggedIndex  int
	hasDropTarget bool
	dropTarget    int
	settling      bool

	settleDuration time.Duration
	settleTimer    *time.Timer
	// settleGen invalidates timers armed by an earlier TriggerSettle.
	settleGen uint64
	onChange  func()
}

// NewSession creates an idle session. onChange, if non-nil, is called (without
// the session lock held) after the settle flag clears on its own.
func NewSession(settleDuration time.Duration, onChange func()) *Session {
	if settleDuration <= 0 {
		settleDuration = DefaultSettleDuration
	}
	return &Session{settleDuration: settleDuration, onChange: onChange}
}

// StartDrag begins dragging the tab at index.
func (s *Session) StartDrag(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = true
	s.draggedIndex = index
	s.hasDropTarget = false
	s.dropTarget = 0
	s.stopSettleLocked()
}

// UpdateDropTarget moves the insertion marker; ok=false hides it. It returns
// false and changes nothing unless a drag is in progress.
func (s *Session) UpdateDropTarget(index int, ok bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dragging {
		return false
	}
	s.hasDropTarget = ok
	s.dropTarget = 0
	if ok {
		s.dropTarget = index
	}
	return true
}

// EndDrag clears the dragged index and drop target.
func (s *Session) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = false
	s.draggedIndex = 0
	s.hasDropTarget = false
	s.dropTarget = 0
}

// TriggerSettle raises the settle flag; it clears itself after the settle
// duration unless a newer settle or drag replaces it first.
func (s *Session) TriggerSettle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSettleLocked()
	s.settling = true
	gen := s.settleGen
	s.settleTimer = time.AfterFunc(s.settleDuration, func() {
		s.clearSettle(gen)
	})
}

func (s *Session) clearSettle(gen uint64) {
	s.mu.Lock()
	if gen != s.settleGen || !s.settling {
		s.mu.Unlock()
		return
	}
	s.settling = false
	s.settleTimer = nil
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// stopSettleLocked drops the settle flag and invalidates any armed timer.
func (s *Session) stopSettleLocked() {
	s.settleGen++
	s.settling = false
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.dragging:
		return StateDragging
	case s.settling:
		return StateSettling
	default:
		return StateIdle
	}
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:         s.stateLocked(),
		DraggedIndex:  s.draggedIndex,
		Dragging:      s.dragging,
		DropTarget:    s.dropTarget,
		HasDropTarget: s.hasDropTarget,
		Settling:      s.settling,
	}
}

// Close stops a pending settle timer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSettleLocked()
}
