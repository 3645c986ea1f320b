package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"
)

// Command describes one external tool invocation.
type Command struct {
	Name    string
	Args    []string
	Env     []string      // extra environment, appended to the process env
	Timeout time.Duration // zero means no per-invocation bound
	Sudo    bool          // prefix with sudo -n when not already root
}

// Result carries the fully captured outcome of an invocation. Output streams
// are captured even on timeout and failure.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	TimedOut bool
}

// Runner is the seam between the adapter and the operating system. The real
// implementation spawns processes; tests substitute a mock.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// SystemRunner executes commands on the local system.
type SystemRunner struct{}

// Run spawns the command with a bounded context, captures both output
// streams, and translates the exit status. The process group is terminated
// on cancellation so a hung tool cannot stall the run.
func (SystemRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	name := cmd.Name
	args := cmd.Args
	if cmd.Sudo && !isRoot() {
		args = append([]string{"-n", name}, args...)
		name = "sudo"
	}

	c := exec.CommandContext(ctx, name, args...)
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
		Duration: time.Since(start),
		TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
	}
	return res, err
}

// exitCode extracts the process exit status, or zero when the command
// succeeded or never ran.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 0
}

// MockRunner implements Runner for tests. Each call is recorded; RunFunc
// controls the response. Safe for concurrent use so parallel orchestration
// can be exercised.
type MockRunner struct {
	RunFunc func(ctx context.Context, cmd Command) (Result, error)

	mu    sync.Mutex
	calls []Command
}

// Run records the command and delegates to RunFunc.
func (m *MockRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, cmd)
	}
	return Result{}, nil
}

// Calls returns a snapshot of every command run so far.
func (m *MockRunner) Calls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Command(nil), m.calls...)
}

var _ Runner = (*MockRunner)(nil)
var _ Runner = SystemRunner{}
