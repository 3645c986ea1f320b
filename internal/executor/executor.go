// Package executor handles external tool invocation with timeouts, output
// capture, and privilege escalation support.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrTimeout is returned when an invocation exceeds its configured bound.
// The partial captured output is still available on the Result.
var ErrTimeout = errors.New("command timed out")

// InvocationError is a structured error for a nonzero exit. The stderr
// capture travels with it so reporting never loses the tool's own message.
type InvocationError struct {
	Cmd      string
	ExitCode int
	Stderr   string
}

func (e *InvocationError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Cmd, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Executor is the chokepoint through which every manager invokes its
// underlying tool. It is the only component allowed to spawn a mutating
// external process, which is what makes dry-run safe: in dry-run mode the
// mutating verbs never reach the Runner.
type Executor struct {
	runner  Runner
	timeout time.Duration
	dryRun  bool
	verbose bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner substitutes the execution surface (used by tests).
func WithRunner(r Runner) Option {
	return func(e *Executor) { e.runner = r }
}

// WithTimeout sets the per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// WithDryRun enables dry-run mode.
func WithDryRun(dryRun bool) Option {
	return func(e *Executor) { e.dryRun = dryRun }
}

// WithVerbose logs every invocation at debug level.
func WithVerbose(verbose bool) Option {
	return func(e *Executor) { e.verbose = verbose }
}

// New creates an Executor backed by the real system runner unless overridden.
func New(opts ...Option) *Executor {
	e := &Executor{
		runner:  SystemRunner{},
		timeout: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DryRun reports whether the executor is in dry-run mode.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// LookPath reports whether a binary can be resolved on PATH. Availability
// probes build on this; it never spawns a process.
func (e *Executor) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Output runs a non-mutating query command and returns its captured stdout.
// Query verbs run even in dry-run mode: discovery is read-only by contract.
// A nonzero exit is translated into *InvocationError rather than raised
// uncontrolled; a deadline produces ErrTimeout with partial output attached.
func (e *Executor) Output(ctx context.Context, name string, args ...string) (string, error) {
	res, err := e.invoke(ctx, Command{Name: name, Args: args, Timeout: e.timeout})
	return res.Stdout, err
}

// Apply runs a mutating command. In dry-run mode nothing is spawned and an
// empty result is returned.
func (e *Executor) Apply(ctx context.Context, name string, args ...string) (Result, error) {
	if e.dryRun {
		log.Debugf("[dry-run] would execute: %s %s", name, strings.Join(args, " "))
		return Result{}, nil
	}
	return e.invoke(ctx, Command{Name: name, Args: args, Timeout: e.timeout})
}

// ApplySudo runs a mutating command through sudo in non-interactive mode.
// The -n flag guarantees the invocation can never block on a password
// prompt; the privilege negotiator is responsible for only sending work here
// when cached credentials exist.
func (e *Executor) ApplySudo(ctx context.Context, name string, args ...string) (Result, error) {
	if e.dryRun {
		log.Debugf("[dry-run] would execute (with sudo): %s %s", name, strings.Join(args, " "))
		return Result{}, nil
	}
	return e.invoke(ctx, Command{Name: name, Args: args, Timeout: e.timeout, Sudo: true})
}

// ProbeSudo checks for live cached sudo credentials without ever prompting.
// Running as root counts as available.
func (e *Executor) ProbeSudo(ctx context.Context) bool {
	if isRoot() {
		return true
	}
	if !hasSudo() {
		return false
	}
	// sudo -n true exits nonzero when no credentials are cached.
	_, err := e.invoke(ctx, Command{Name: "sudo", Args: []string{"-n", "true"}, Timeout: 10 * time.Second})
	return err == nil
}

func (e *Executor) invoke(ctx context.Context, cmd Command) (Result, error) {
	if e.verbose {
		log.WithField("cmd", cmd.Name).Debugf("executing: %s %s", cmd.Name, strings.Join(cmd.Args, " "))
	}

	res, err := e.runner.Run(ctx, cmd)
	if err == nil {
		return res, nil
	}

	if res.TimedOut {
		return res, fmt.Errorf("%w: %s after %s", ErrTimeout, cmd.Name, res.Duration.Round(time.Millisecond))
	}
	if res.ExitCode != 0 {
		return res, &InvocationError{Cmd: cmd.Name, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res, err
}

// WarmSudo interactively refreshes the sudo credential cache with the
// terminal attached, so that later non-interactive invocations find live
// credentials. Callers must only invoke this when an interactive session
// exists. No-op when already root or when sudo is missing.
func (e *Executor) WarmSudo(ctx context.Context) error {
	if isRoot() || !hasSudo() {
		return nil
	}
	cmd := exec.CommandContext(ctx, "sudo", "-v")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// CanElevate reports whether the process can obtain root, either because it
// already is root or because sudo exists.
func CanElevate() bool {
	return isRoot() || hasSudo()
}

// IsRoot reports whether the current process runs with root privileges.
func IsRoot() bool {
	return isRoot()
}
