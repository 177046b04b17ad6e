package transcriber

import (
	"strings"
	"time"
)

// Result is the recognized text of one segment
type Result struct {
	Index  int
	Offset time.Duration
	Text   string
}

// Transcript is the ordered outcome of a run
type Transcript struct {
	Results []Result
}

// Text joins the segment texts in index order with a single space
func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}
	texts := make([]string, len(t.Results))
	for i, r := range t.Results {
		texts[i] = r.Text
	}
	return strings.Join(texts, " ")
}

// SegmentState tracks a segment through Pending -> Dispatched -> Completed|Failed.
// A dispatched segment whose call was cut short by the run being cancelled ends
// in Cancelled instead of Failed.
type SegmentState int

const (
	StatePending SegmentState = iota
	StateDispatched
	StateCompleted
	StateFailed
	StateCancelled
)

func (s SegmentState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDispatched:
		return "dispatched"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RunState tracks a whole aggregation: Running -> AllCompleted|Aborted
type RunState int

const (
	RunRunning RunState = iota
	RunAllCompleted
	RunAborted
)

func (s RunState) String() string {
	switch s {
	case RunRunning:
		return "running"
	case RunAllCompleted:
		return "all_completed"
	case RunAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

type nopObserver struct{}

func (nopObserver) SegmentState(int, SegmentState) {}
func (nopObserver) RunState(RunState, int)         {}
