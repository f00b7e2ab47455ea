package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// DefaultKillGrace is how long a signalled ffmpeg may take to exit before
// it is killed.
const DefaultKillGrace = 5 * time.Second

// tailLines is the number of diagnostics lines kept for error reporting.
const tailLines = 20

// Observer receives every event of the merged output stream in order.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Snapshot is the last progress state seen for one encode.
type Snapshot struct {
	OutTime time.Duration
	Speed   float64
	Ended   bool // progress=end was seen
}

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	ExitCode int
	Final    Snapshot
	Tail     []string
	Elapsed  time.Duration
}

// Supervisor runs one ffmpeg process at a time.
type Supervisor struct {
	Timeout   time.Duration // per-encode limit; 0 disables
	KillGrace time.Duration // SIGINT-to-kill delay; 0 uses DefaultKillGrace
	Echo      io.Writer     // receives diagnostics lines when non-nil
}

// Run starts args[0] with args[1:], streams its output through obs and
// waits for it to exit. Cancelling ctx or reaching Timeout sends SIGINT;
// the process is killed if it is still alive after KillGrace.
//
// Errors: [ErrNotFound] when the binary is missing, [ErrInterrupted] when
// ctx was cancelled, [ErrEncodeTimeout] when the timeout expired, and
// *[EncodeError] for a non-zero exit.
func (s *Supervisor) Run(ctx context.Context, args []string, obs Observer) (ExecResult, error) {
	res := ExecResult{ExitCode: -1}
	if len(args) == 0 {
		return res, fmt.Errorf("%w: empty command", ErrNotFound)
	}
	bin, err := exec.LookPath(args[0])
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, bin, args[1:]...)
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = s.KillGrace
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultKillGrace
	}

	progressR, progressW := io.Pipe()
	diagR, diagW := io.Pipe()
	cmd.Stdout = progressW
	cmd.Stderr = diagW

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("start ffmpeg: %w", err)
	}

	var waitErr error
	waited := make(chan struct{})
	go func() {
		waitErr = cmd.Wait()
		progressW.Close()
		diagW.Close()
		close(waited)
	}()

	tail := make([]string, 0, tailLines)
	for ev := range Events(progressR, diagR) {
		switch ev.Kind {
		case EventTime:
			res.Final.OutTime = ev.OutTime
		case EventSpeed:
			res.Final.Speed = ev.Speed
		case EventEnd:
			res.Final.Ended = true
		case EventDiagnostic:
			if len(tail) == tailLines {
				tail = append(tail[:0], tail[1:]...)
			}
			tail = append(tail, ev.Text)
			if s.Echo != nil {
				fmt.Fprintln(s.Echo, ev.Text)
			}
		}
		if obs != nil {
			obs.Observe(ev)
		}
	}
	<-waited

	res.Elapsed = time.Since(start)
	res.Tail = tail
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case ctx.Err() != nil:
		return res, fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return res, fmt.Errorf("%w after %s", ErrEncodeTimeout, s.Timeout)
	case waitErr == nil:
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return res, &EncodeError{ExitCode: exitErr.ExitCode(), Reason: Classify(tail), Tail: tail}
	}
	if errors.Is(waitErr, exec.ErrWaitDelay) && res.ExitCode == 0 {
		// Exited cleanly but a leftover child held the output pipes open.
		return res, nil
	}
	return res, fmt.Errorf("wait ffmpeg: %w", waitErr)
}
