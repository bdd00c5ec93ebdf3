/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: executor.go
Description: Process executor for the Akaylee triage pipeline. Starts target, debugger and
minimizer processes, enforces per-invocation timeouts by killing the whole process group,
and returns the raw wait status for signal-based classification.
*/

package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// waitDelay bounds how long Wait keeps copying output after the process is gone
const waitDelay = time.Second

// Invocation describes a single process run
type Invocation struct {
	Argv      []string      // Program and arguments, no shell interpretation
	StdinFile string        // File fed on standard input (empty = null device)
	Output    io.Writer     // Receives stdout and stderr combined (nil = discarded)
	Timeout   time.Duration // Kill the process group after this long (zero = unbounded)
}

// Result is the outcome of a finished invocation
type Result struct {
	Status   syscall.WaitStatus // Raw wait status of the process
	TimedOut bool               // Process group was killed because Timeout elapsed
	Duration time.Duration      // Wall time from start to reap
}

// ExitCode returns the exit code, or -1 if the process did not exit normally
func (r *Result) ExitCode() int {
	if r.Status.Exited() {
		return r.Status.ExitStatus()
	}
	return -1
}

// ProcessExecutor runs invocations. Every process gets its own group, which is
// killed when the invocation times out or its context is cancelled.
type ProcessExecutor struct {
	logger *logrus.Logger
}

// NewProcessExecutor creates a new process executor instance
func NewProcessExecutor(logger *logrus.Logger) *ProcessExecutor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProcessExecutor{logger: logger}
}

// Run starts the invocation and waits for it to finish or time out.
// A non-nil error means the process could not be run or was cancelled through ctx;
// non-zero exits and fatal signals are reported in the Result instead.
func (e *ProcessExecutor) Run(ctx context.Context, inv Invocation) (*Result, error) {
	if len(inv.Argv) == 0 || inv.Argv[0] == "" {
		return nil, errors.New("empty command")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("invocation cancelled: %w", err)
	}

	cmd := exec.Command(inv.Argv[0], inv.Argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = waitDelay
	if inv.Output != nil {
		cmd.Stdout = inv.Output
		cmd.Stderr = inv.Output
	}
	if inv.StdinFile != "" {
		f, err := os.Open(inv.StdinFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open stdin file: %w", err)
		}
		defer f.Close()
		cmd.Stdin = f
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", inv.Argv[0], err)
	}

	var killed atomic.Bool
	done := make(chan struct{})
	go func() {
		select {
		case <-runCtx.Done():
			killed.Store(true)
			killGroup(cmd.Process)
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	close(done)

	result := &Result{Duration: time.Since(startTime)}
	if cmd.ProcessState != nil {
		if ws, ok := cmd.ProcessState.Sys().(syscall.WaitStatus); ok {
			result.Status = ws
		}
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return nil, fmt.Errorf("failed to wait for %s: %w", inv.Argv[0], waitErr)
	}

	if killed.Load() && result.Status.Signaled() && result.Status.Signal() == syscall.SIGKILL {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("invocation cancelled: %w", ctx.Err())
		}
		result.TimedOut = true
	}

	e.logger.WithFields(logrus.Fields{
		"command":   inv.Argv[0],
		"pid":       cmd.Process.Pid,
		"duration":  result.Duration,
		"timed_out": result.TimedOut,
		"status":    int(result.Status),
	}).Debug("Process finished")

	return result, nil
}

// RunShell runs line through /bin/sh -c
func (e *ProcessExecutor) RunShell(ctx context.Context, line string, output io.Writer, timeout time.Duration) (*Result, error) {
	return e.Run(ctx, Invocation{
		Argv:    []string{"/bin/sh", "-c", line},
		Output:  output,
		Timeout: timeout,
	})
}

// killGroup kills the process group led by p, falling back to the process itself
func killGroup(p *os.Process) {
	if err := syscall.Kill(-p.Pid, syscall.SIGKILL); err != nil {
		p.Kill()
	}
}
