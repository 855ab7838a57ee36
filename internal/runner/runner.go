// Package runner launches the tool under test and captures its output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxOutputBytes caps captured output per invocation.
const DefaultMaxOutputBytes int64 = 16 << 20

// Invocation describes one run of the tool under test.
type Invocation struct {
	Tool string
	Args []string

	// Dir is the working directory. Empty means the current one.
	Dir string

	// Env is appended to the inherited environment.
	Env []string

	// Timeout bounds the run. Zero means no limit beyond the context.
	Timeout time.Duration
}

// Output is what the tool printed, stdout and stderr interleaved as written.
type Output struct {
	Combined  []byte
	ExitCode  int
	Duration  time.Duration
	Truncated bool
}

// Executor runs invocations. The zero value is usable.
type Executor struct {
	Logger         *zap.Logger
	MaxOutputBytes int64
}

// Run executes inv with a default Executor.
func Run(ctx context.Context, inv Invocation) (*Output, error) {
	var e Executor
	return e.Run(ctx, inv)
}

// Run blocks until the tool exits. A non-zero exit status is reported in
// Output, not as an error; launch failures, signals and timeouts return a
// *SubprocessError.
func (e *Executor) Run(ctx context.Context, inv Invocation) (*Output, error) {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if inv.Tool == "" {
		return nil, &SubprocessError{Tool: inv.Tool, ExitCode: -1, Err: errors.New("no tool given")}
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, inv.Tool, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}
	// Children that inherit the pipes must not keep Run from returning.
	cmd.WaitDelay = time.Second

	limit := e.MaxOutputBytes
	if limit <= 0 {
		limit = DefaultMaxOutputBytes
	}
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, max: limit}
	// One writer for both streams keeps their relative order.
	cmd.Stdout = lw
	cmd.Stderr = lw

	log.Debug("launching tool",
		zap.String("tool", inv.Tool),
		zap.Strings("args", inv.Args),
		zap.String("dir", inv.Dir),
		zap.Duration("timeout", inv.Timeout))

	start := time.Now()
	err := cmd.Run()
	out := &Output{
		Combined:  buf.Bytes(),
		ExitCode:  0,
		Duration:  time.Since(start),
		Truncated: lw.truncated,
	}
	if lw.truncated {
		log.Warn("tool output truncated", zap.Int64("limit", limit), zap.Int64("discarded", lw.discarded))
	}

	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		log.Debug("tool left its output open after exiting", zap.String("tool", inv.Tool))
		err = nil
	}
	if err == nil {
		log.Debug("tool exited", zap.Int("exit_code", 0), zap.Duration("duration", out.Duration))
		return out, nil
	}

	if runCtx.Err() != nil {
		serr := &SubprocessError{Tool: inv.Tool, ExitCode: -1, Err: runCtx.Err()}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			serr.Timeout = inv.Timeout
		}
		log.Warn("tool did not finish", zap.String("tool", inv.Tool), zap.Error(serr))
		return out, serr
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, &SubprocessError{Tool: inv.Tool, ExitCode: -1, Err: err}
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		serr := &SubprocessError{Tool: inv.Tool, ExitCode: -1, Signal: ws.Signal().String()}
		log.Warn("tool killed by signal", zap.String("tool", inv.Tool), zap.String("signal", serr.Signal))
		return out, serr
	}

	out.ExitCode = exitErr.ExitCode()
	log.Debug("tool exited", zap.Int("exit_code", out.ExitCode), zap.Duration("duration", out.Duration))
	return out, nil
}

// SubprocessError reports a tool that could not be run to completion.
type SubprocessError struct {
	Tool     string
	ExitCode int
	Signal   string
	Timeout  time.Duration
	Err      error
}

func (e *SubprocessError) Error() string {
	switch {
	case e.Timeout > 0:
		return fmt.Sprintf("%s: timed out after %s", e.Tool, e.Timeout)
	case e.Signal != "":
		return fmt.Sprintf("%s: killed by signal: %s", e.Tool, e.Signal)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: exit status %d", e.Tool, e.ExitCode)
}

func (e *SubprocessError) Unwrap() error {
	return e.Err
}

// limitedWriter stops storing once max bytes have been written, but keeps
// accepting input so the tool never sees a short write.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	remaining := lw.max - lw.written
	if remaining <= 0 {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil
	}
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		p = p[:remaining]
	}
	written, err := lw.w.Write(p)
	lw.written += int64(written)
	if err != nil {
		return written, err
	}
	return n, nil
}
