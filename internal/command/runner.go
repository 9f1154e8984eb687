// internal/command/runner.go
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout marks a command that exceeded its bound and was killed.
var ErrTimeout = errors.New("command timed out")

// Runner executes external commands.
// Every collaborator shells out through this so tests can substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Exec runs real processes, each under its own timeout.
// A zero Timeout leaves the caller's context as the only bound.
type Exec struct {
	Timeout time.Duration
}

// waitDelay bounds how long Run waits for output pipes after the process is killed.
const waitDelay = time.Second

func (e Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	start := time.Now()
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return out.Bytes(), nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return out.Bytes(), fmt.Errorf("%s: %w after %s", describe(name, args), ErrTimeout, applied(ctx, start))
	case errors.Is(ctx.Err(), context.Canceled):
		return out.Bytes(), fmt.Errorf("%s: %w", describe(name, args), ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.Bytes(), &ExitError{
			Command: describe(name, args),
			Code:    exitErr.ExitCode(),
			Output:  strings.TrimSpace(out.String()),
		}
	}
	return out.Bytes(), fmt.Errorf("%s: %w", describe(name, args), err)
}

// applied is the bound that was in force: the tighter of Timeout and the caller's deadline.
func applied(ctx context.Context, start time.Time) time.Duration {
	dl, ok := ctx.Deadline()
	if !ok {
		return time.Since(start).Round(time.Millisecond)
	}
	return dl.Sub(start).Round(time.Millisecond)
}

// ExitError is a command that ran to completion with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Output  string
}

func (e *ExitError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.Code, firstLine(e.Output))
}

// ExitCode returns the status code, or -1 if err is not an *ExitError.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return -1
}

func describe(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
