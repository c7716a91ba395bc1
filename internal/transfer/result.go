package transfer

import (
	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/tabs"
)

// Outcome is how a transfer attempt ended.
type Outcome int

const (
	// OutcomeIneligible means the attempt never started: the tab may not
	// leave or the target is invalid.
	OutcomeIneligible Outcome = iota
	// OutcomeCommitted means the tab now lives in the target only.
	OutcomeCommitted
	// OutcomeRejected means the target answered Nack.
	OutcomeRejected
	// OutcomeTimedOut means no matching response arrived in time.
	OutcomeTimedOut
	// OutcomeAborted means an infrastructure failure stopped the attempt.
	OutcomeAborted
	// OutcomeCancelled means the caller gave up, usually on window close.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIneligible:
		return "ineligible"
	case OutcomeCommitted:
		return "committed"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeAborted:
		return "aborted"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result reports a finished transfer attempt.
type Result struct {
	RequestID domain.RequestID
	TabID     tabs.ID
	Target    domain.WindowID
	Outcome   Outcome
	// Reason carries the target's explanation for a rejection.
	Reason string
	Err    error
}

// Committed reports whether ownership moved.
func (r Result) Committed() bool {
	return r.Outcome == OutcomeCommitted
}
