package engine

import "time"

// EventType discriminates the events a session emits to its sink.
type EventType int

const (
	// EventStarted is emitted once when the session transitions to running.
	EventStarted EventType = iota
	// EventLine carries one non-blank output line from the rclone process,
	// in emission order.
	EventLine
	// EventWarning carries advisory messages (dropped flags, lock cleanup).
	EventWarning
	// EventCompleted, EventFailed, EventTimedOut and EventCancelled are
	// terminal. Exactly one of them is emitted per session, last.
	EventCompleted
	EventFailed
	EventTimedOut
	EventCancelled
)

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventLine:
		return "line"
	case EventWarning:
		return "warning"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventTimedOut:
		return "timed-out"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Event is one notification from a sync session. Terminal events carry the
// final error (nil on success) and the elapsed wall time of the attempt.
type Event struct {
	Type      EventType
	SessionID string
	Line      string
	Err       error
	Elapsed   time.Duration
}

// Terminal reports whether the event ends the session.
func (e Event) Terminal() bool {
	switch e.Type {
	case EventCompleted, EventFailed, EventTimedOut, EventCancelled:
		return true
	}
	return false
}

// Sink receives session events. It must not block for long and must not
// panic; the session treats it as fire-and-forget.
type Sink func(Event)
