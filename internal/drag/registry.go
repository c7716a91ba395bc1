// Package drag tracks tab drag gestures: the per-window Session drives visual
// feedback, and the process-wide Registry records which tab is in flight so
// other windows can react while the pointer hovers them.
package drag

import (
	"sync"

	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/log"
)

// Record describes the tab currently being dragged.
type Record struct {
	SourceWindow domain.WindowID
	SourceIndex  int
	// Offset is the pointer position within the tab at drag start.
	Offset domain.Point
	// TargetWindow is the window the pointer currently hovers, "" when none.
	TargetWindow domain.WindowID
	// DroppedInWindow is set by the window that received the drop.
	DroppedInWindow bool
}

// HasTarget reports whether a candidate target window is set.
func (r Record) HasTarget() bool {
	return r.TargetWindow != ""
}

// Registry holds at most one Record. Reads happen on every pointer move in
// every window while writes only happen at drag start/end and target changes,
// so a RWMutex guards it and every critical section is a plain copy.
//
// A Registry is constructed once per process and handed to each window.
type Registry struct {
	mu     sync.RWMutex
	record *Record
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Start records a new drag, replacing any stale record left behind by an
// abnormally terminated gesture.
func (r *Registry) Start(window domain.WindowID, index int, offset domain.Point) {
	r.mu.Lock()
	stale := r.record != nil
	r.record = &Record{
		SourceWindow: window,
		SourceIndex:  index,
		Offset:       offset,
	}
	r.mu.Unlock()

	if stale {
		log.Warn(log.CatDrag, "Replacing stale drag record", "window", window, "index", index)
	}
}

// End clears the record.
func (r *Registry) End() {
	r.mu.Lock()
	r.record = nil
	r.mu.Unlock()
}

// SetTarget sets the candidate target window. It does nothing when no drag is
// in progress.
func (r *Registry) SetTarget(window domain.WindowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record != nil {
		r.record.TargetWindow = window
	}
}

// ClearTarget clears the candidate target window.
func (r *Registry) ClearTarget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record != nil {
		r.record.TargetWindow = ""
	}
}

// MarkDropped records that window accepted the drop.
func (r *Registry) MarkDropped(window domain.WindowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record != nil {
		r.record.TargetWindow = window
		r.record.DroppedInWindow = true
	}
}

// Peek returns a copy of the current record.
func (r *Registry) Peek() (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.record == nil {
		return Record{}, false
	}
	return *r.record, true
}

// IsDragging reports whether a drag is in progress.
func (r *Registry) IsDragging() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.record != nil
}
