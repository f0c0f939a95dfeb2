package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// SessionState is the lifecycle of a sync attempt. Idle is initial and
// terminal-reentrant: every attempt starts from Idle and the controller
// returns to Idle after finalization.
type SessionState int

const (
	StateIdle SessionState = iota
	StateRunning
	StateStopping
	StateCompleted
	StateFailed
	StateTimedOut
	StateCancelled
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed-out"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// LockDecision is consulted when stale bisync lock files are found before a
// run. Returning true clears them. The controller never decides on its own.
type LockDecision func([]LockArtifact) bool

// transferMarker is the rclone stats line used as a coarse progress hint.
// Best effort only: completion detection never depends on output content.
const transferMarker = "Transferred:"

// flockName is the sentinel file guarding the workdir across OS processes.
// It must stay outside the *.lck glob the inspector scans.
const flockName = "sync.flock"

// WorkdirGuard returns the cross-process lock guarding a bisync workdir.
// Held by a running session; lock cleanup tools must take it first.
func WorkdirGuard(workdir string) *flock.Flock {
	return flock.New(filepath.Join(workdir, flockName))
}

// Controller owns at most one sync session at a time. It wires the lock
// inspector, the command builder and the process supervisor into one
// state machine and reports progress through an event sink.
type Controller struct {
	engine    *Engine
	inspector *Inspector

	// Attempt deadlines. Overridable in tests, SyncTimeout/ResyncTimeout
	// everywhere else.
	syncTimeout   time.Duration
	resyncTimeout time.Duration
	graceTimeout  time.Duration

	mu        sync.Mutex
	state     SessionState
	lastState SessionState
	proc      *Process
	started   time.Time
	sessionID string
	done      chan struct{}
	lastErr   error

	cancelled atomic.Bool
	progress  atomic.Uint64 // float64 bits
}

func NewController(e *Engine) *Controller {
	return &Controller{
		engine:        e,
		inspector:     NewInspector(e.Workdir),
		syncTimeout:   SyncTimeout,
		resyncTimeout: ResyncTimeout,
		graceTimeout:  GraceTimeout,
	}
}

// State returns the current session state.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastState returns the terminal state of the most recent attempt.
func (c *Controller) LastState() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastState
}

// Progress returns a coarse completion fraction in [0,1]. UI hint only.
func (c *Controller) Progress() float64 {
	return math.Float64frombits(c.progress.Load())
}

func (c *Controller) setProgress(v float64) {
	c.progress.Store(math.Float64bits(v))
}

// Start begins a sync attempt in the background. It fails synchronously with
// ErrAlreadyRunning while a session is active, and with a ValidationError
// when the request is malformed; no process is spawned in either case. The
// locks callback decides whether stale bisync lock files found in the workdir
// are cleared before the run.
func (c *Controller) Start(req SyncRequest, sink Sink, locks LockDecision) error {
	if req.ForceResync && req.Mode != ModeBidirectional {
		return &ValidationError{Field: "force resync", Reason: "only valid for bidirectional sync"}
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}

	// Guard the workdir against a second application instance. Held until
	// finalization.
	flk := WorkdirGuard(c.engine.Workdir)
	locked, err := flk.TryLock()
	if err != nil || !locked {
		c.mu.Unlock()
		if err != nil {
			slog.Warn("workdir lock", "err", err)
		}
		return ErrAlreadyRunning
	}

	c.state = StateRunning
	c.started = time.Now()
	c.sessionID = uuid.NewString()
	c.done = make(chan struct{})
	c.lastErr = nil
	c.cancelled.Store(false)
	c.setProgress(0.1)
	c.mu.Unlock()

	// Stale lock handling happens before the child exists. The clear-or-keep
	// decision is the caller's, never the controller's.
	if req.Mode == ModeBidirectional {
		if artifacts := c.inspector.Scan(); len(artifacts) > 0 && locks != nil && locks(artifacts) {
			if removed := c.inspector.Clear(artifacts); removed > 0 {
				c.emit(sink, Event{
					Type: EventWarning,
					Line: fmt.Sprintf("Removed %d stale bisync lock file(s)", removed),
				})
			}
		}
	}

	argv, warnings := BuildArgs(req, c.engine.Workdir)
	timeout := c.syncTimeout
	if req.ForceResync {
		timeout = c.resyncTimeout
	}

	slog.Info("sync session starting",
		"session", c.sessionID,
		"mode", req.Mode.String(),
		"remote", req.Remote,
		"local", req.LocalPath,
		"resync", req.ForceResync,
		"timeout", timeout,
	)

	go func() {
		err := c.attempt(req, argv, warnings, timeout, sink)
		c.finish(err, sink, flk)
	}()
	return nil
}

// Stop requests cooperative cancellation of the running session. No-op when
// nothing is running. Every Stop that finds a running session ends in a
// Cancelled terminal state, even if the child exits cleanly in the meantime.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.state = StateStopping
	id := c.sessionID
	c.mu.Unlock()

	c.cancelled.Store(true)
	slog.Info("sync stop requested", "session", id)
}

// Wait blocks until the current attempt reaches a terminal state and returns
// its terminal error (nil on success). Returns immediately when idle.
func (c *Controller) Wait() error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// attempt runs one spawn-stream-wait cycle on the worker goroutine. Any
// failure, including a panic, is converted into the returned error; the
// worker never crashes the process.
func (c *Controller) attempt(req SyncRequest, argv []string, warnings []string, timeout time.Duration, sink Sink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("sync worker panic", "session", c.sessionID, "panic", r)
			err = fmt.Errorf("internal sync error: %v", r)
		}
	}()

	c.emit(sink, Event{
		Type: EventStarted,
		Line: fmt.Sprintf("Starting %s: %s <-> %s", req.Mode, req.Remote, req.LocalPath),
	})
	for _, w := range warnings {
		c.emit(sink, Event{Type: EventWarning, Line: w})
	}
	if req.DryRun {
		c.emit(sink, Event{Type: EventWarning, Line: "Dry run mode - no changes will be made"})
	}

	proc, err := c.engine.spawn(argv)
	if err != nil {
		return err
	}
	slog.Debug("rclone spawned", "session", c.sessionID, "pid", proc.Pid(), "args", strings.Join(argv, " "))

	c.mu.Lock()
	c.proc = proc
	c.mu.Unlock()

	// The handle is released on every path out of this function.
	defer func() {
		proc.Close()
		c.mu.Lock()
		c.proc = nil
		c.mu.Unlock()
	}()

	outcome := proc.Stream(func(line string) {
		c.emit(sink, Event{Type: EventLine, Line: line})
		if strings.Contains(line, transferMarker) {
			c.setProgress(0.7)
		}
	}, time.Now().Add(timeout), c.cancelled.Load)

	code, waitErr := proc.Wait(c.graceTimeout)

	// A Stop racing a natural exit still ends Cancelled.
	if outcome == OutcomeCancelled || c.cancelled.Load() {
		return ErrCancelled
	}
	if outcome == OutcomeTimedOut {
		return fmt.Errorf("%w after %s", ErrTimedOut, timeout)
	}

	// A read failure (oversized line, broken pipe) would otherwise surface
	// as the terminated child's wait error, hiding the real cause.
	if rerr := proc.ReadErr(); rerr != nil {
		return fmt.Errorf("read rclone output: %w", rerr)
	}

	if code < 0 && waitErr != nil {
		return fmt.Errorf("rclone wait: %w", waitErr)
	}
	return interpretExit(req.Mode, code)
}

// finish translates the attempt's error into exactly one terminal event and
// resets the controller to Idle. The terminal state is committed before the
// event goes out, so no observer ever sees a Running session after the final
// notification.
func (c *Controller) finish(err error, sink Sink, flk *flock.Flock) {
	elapsed := time.Since(c.started)

	c.mu.Lock()
	// A Stop that found this session Running must end it Cancelled, even
	// when it lands after the attempt's own cancellation check.
	if err == nil && (c.state == StateStopping || c.cancelled.Load()) {
		err = ErrCancelled
	}

	ev := Event{Err: err, Elapsed: elapsed}
	var terminal SessionState
	var hint string
	switch {
	case err == nil:
		terminal = StateCompleted
		ev.Type = EventCompleted
		ev.Line = fmt.Sprintf("Sync completed in %s", elapsed.Round(time.Second))
	case errors.Is(err, ErrCancelled):
		terminal = StateCancelled
		ev.Type = EventCancelled
		ev.Line = "Sync stopped by user"
	case errors.Is(err, ErrTimedOut):
		terminal = StateTimedOut
		ev.Type = EventTimedOut
		ev.Line = fmt.Sprintf("Sync timed out after %s", elapsed.Round(time.Second))
	case errors.Is(err, ErrBaselineRequired):
		terminal = StateFailed
		hint = "Bisync requires initialization - run a force resync to rebuild the baseline"
		ev.Type = EventFailed
		ev.Line = "Sync failed: " + err.Error()
	default:
		terminal = StateFailed
		ev.Type = EventFailed
		ev.Line = "Sync failed: " + err.Error()
	}

	c.proc = nil
	c.lastErr = err
	c.lastState = terminal
	c.state = StateIdle
	done := c.done
	c.mu.Unlock()

	if terminal == StateCompleted {
		c.setProgress(1.0)
	}
	if hint != "" {
		c.emit(sink, Event{Type: EventWarning, Line: hint})
	}
	c.emit(sink, ev)

	if err != nil {
		slog.Warn("sync session finished", "session", c.sessionID, "state", terminal.String(), "elapsed", elapsed, "err", err)
	} else {
		slog.Info("sync session finished", "session", c.sessionID, "state", terminal.String(), "elapsed", elapsed)
	}

	if uerr := flk.Unlock(); uerr != nil {
		slog.Debug("workdir unlock", "session", c.sessionID, "err", uerr)
	}

	c.setProgress(0)
	close(done)
}

// emit forwards one event to the sink. The sink is fire-and-forget: a
// panicking sink is logged and does not take the worker down.
func (c *Controller) emit(sink Sink, ev Event) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("output sink panicked", "session", c.sessionID, "panic", r)
		}
	}()
	ev.SessionID = c.sessionID
	sink(ev)
}
