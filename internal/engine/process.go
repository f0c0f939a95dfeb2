package engine

import (
	"bufio"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

const (
	// SyncTimeout bounds a routine sync attempt end to end.
	SyncTimeout = time.Hour
	// ResyncTimeout bounds a force-resync attempt.
	ResyncTimeout = 5 * time.Minute
	// GraceTimeout is the bounded wait at each step of two-phase termination.
	GraceTimeout = 10 * time.Second

	// maxLineSize is the largest single output line the scanner will accept.
	maxLineSize = 1024 * 1024
)

// ExitOutcome reports how stream consumption ended.
type ExitOutcome int

const (
	// OutcomeExited means the process closed its output stream on its own.
	OutcomeExited ExitOutcome = iota
	// OutcomeTimedOut means the attempt deadline expired mid-stream.
	OutcomeTimedOut
	// OutcomeCancelled means the cancel check fired mid-stream.
	OutcomeCancelled
)

func (o ExitOutcome) String() string {
	switch o {
	case OutcomeExited:
		return "exited"
	case OutcomeTimedOut:
		return "timed-out"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// cancelPollInterval bounds how long Stream can go without observing a
// cancellation or deadline expiry while no output arrives.
const cancelPollInterval = 200 * time.Millisecond

// Process is one spawned rclone invocation with stdout and stderr merged
// into a single line stream. It is exclusively owned by one session.
type Process struct {
	cmd  *exec.Cmd
	out  *os.File // read end of the merged output pipe
	info *process.Process

	lines chan string

	done     chan struct{} // closed by monitor after reap
	exitCode int
	exitErr  error

	readErr error // why scanning stopped; valid once lines is closed

	quit      chan struct{} // unblocks the reader when streaming stops early
	closeOnce sync.Once
}

// Spawn launches bin with the given argv, inheriting the parent environment
// plus extraEnv. Stdout and stderr are combined into one text stream; invalid
// byte sequences are replaced, never fatal. Returns a SpawnError when the
// binary is missing or not executable.
func Spawn(bin string, argv []string, extraEnv []string) (*Process, error) {
	cmd := exec.Command(bin, argv...)
	cmd.Env = append(os.Environ(), extraEnv...)
	cmd.Stdin = nil

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Bin: bin, Err: err}
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, &SpawnError{Bin: bin, Err: err}
	}
	// The child holds its own copy of the write end.
	pw.Close()

	p := &Process{
		cmd:   cmd,
		out:   pr,
		lines: make(chan string),
		done:  make(chan struct{}),
		quit:  make(chan struct{}),
	}

	// Process info for tree-wide termination. A failure here only degrades
	// Stop to signalling the direct child.
	if info, err := process.NewProcess(int32(cmd.Process.Pid)); err == nil {
		p.info = info
	}

	go p.read()
	go p.monitor()

	return p, nil
}

// Pid returns the child's process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// read pumps output lines into p.lines until EOF or until streaming is
// abandoned. The channel is unbuffered so delivery stays one line ahead of
// the consumer at most.
func (p *Process) read() {
	defer close(p.lines)

	scanner := bufio.NewScanner(p.out)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := strings.ToValidUTF8(scanner.Text(), "�")
		select {
		case p.lines <- line:
		case <-p.quit:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("process output read failed", "pid", p.Pid(), "err", err)
		p.readErr = err
	}
}

// ReadErr reports why line scanning stopped. Nil on a clean EOF; an
// oversized line or a broken pipe shows up here so the supervisor can
// distinguish a read failure from the child's own exit. Only valid after
// Stream has returned OutcomeExited.
func (p *Process) ReadErr() error {
	return p.readErr
}

// monitor reaps the child and publishes its exit status.
func (p *Process) monitor() {
	err := p.cmd.Wait()
	code := p.cmd.ProcessState.ExitCode()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
	}

	p.exitCode = code
	p.exitErr = err
	close(p.done)
}

// Stream consumes output line by line, invoking onLine for each non-blank
// line in emission order. It returns OutcomeCancelled as soon as cancelled()
// reports true, and OutcomeTimedOut once now passes deadline; both checks run
// before each delivered line and at least every cancelPollInterval while the
// stream is quiet, so no read blocks long past the deadline. Stream never
// terminates the child itself - Wait owes every exit path its two-phase
// termination.
func (p *Process) Stream(onLine func(string), deadline time.Time, cancelled func() bool) ExitOutcome {
	expire := time.NewTimer(time.Until(deadline))
	defer expire.Stop()
	poll := time.NewTicker(cancelPollInterval)
	defer poll.Stop()

	for {
		select {
		case line, ok := <-p.lines:
			if !ok {
				return OutcomeExited
			}
			if cancelled() {
				return OutcomeCancelled
			}
			if !time.Now().Before(deadline) {
				return OutcomeTimedOut
			}
			if line != "" {
				onLine(line)
			}
		case <-poll.C:
			if cancelled() {
				return OutcomeCancelled
			}
		case <-expire.C:
			return OutcomeTimedOut
		}
	}
}

// Wait blocks until the child is reaped, escalating if it lingers: up to
// grace for a voluntary exit, then SIGTERM to the whole process tree and
// another grace, then SIGKILL and a final blocking reap. Runs on every exit
// path - normal completion, cancellation and timeout alike - so no child is
// ever orphaned.
func (p *Process) Wait(grace time.Duration) (int, error) {
	select {
	case <-p.done:
		return p.exitCode, p.exitErr
	case <-time.After(grace):
	}

	slog.Debug("process still alive, terminating", "pid", p.Pid())
	p.signalTree(false)

	select {
	case <-p.done:
		return p.exitCode, p.exitErr
	case <-time.After(grace):
	}

	slog.Warn("process ignored SIGTERM, killing", "pid", p.Pid())
	p.signalTree(true)

	<-p.done
	return p.exitCode, p.exitErr
}

// Close releases the output pipe and unblocks the reader. Idempotent and
// safe to call on any path.
func (p *Process) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
		p.out.Close()
	})
}

// signalTree delivers SIGTERM (or SIGKILL) to the child and all its
// descendants, children first, so rclone helpers don't outlive it.
func (p *Process) signalTree(kill bool) {
	targets := p.descendantsBottomUp()

	for _, target := range targets {
		var err error
		if kill {
			if exists, e := process.PidExists(target.Pid); e != nil || !exists {
				continue
			}
			err = target.Kill()
		} else {
			err = target.Terminate()
		}
		if err != nil {
			slog.Debug("signal process", "pid", target.Pid, "kill", kill, "err", err)
		}
	}

	if len(targets) == 0 {
		// No process info available; fall back to the direct child.
		if kill {
			_ = p.cmd.Process.Kill()
		} else {
			_ = p.cmd.Process.Signal(syscall.SIGTERM)
		}
	}
}

// descendantsBottomUp flattens the child's process tree with leaves first.
func (p *Process) descendantsBottomUp() []*process.Process {
	if p.info == nil {
		return nil
	}
	return processTreeBottomUp(p.info)
}

func processTreeBottomUp(proc *process.Process) []*process.Process {
	var tree []*process.Process
	children, err := proc.Children()
	if err == nil {
		for _, child := range children {
			tree = append(tree, processTreeBottomUp(child)...)
		}
	}
	return append(tree, proc)
}

// interpretExit translates an rclone exit code into the session's error
// taxonomy. Exit code 2 under bisync means the baseline is missing, a
// recoverable condition, not a generic failure.
func interpretExit(mode SyncMode, code int) error {
	switch {
	case code == 0:
		return nil
	case code == 2 && mode == ModeBidirectional:
		return ErrBaselineRequired
	default:
		return &ProcessExitError{Code: code}
	}
}
