// Package executor runs external commands with an explicit argument list,
// honoring dry-run mode and privilege elevation.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledkb-setup/internal/logger"
)

// Command describes one external invocation. Arguments are never joined into
// a shell string; Name and Args go to the runner as-is.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Elevate runs the command through sudo unless the process is already root.
	Elevate bool
	// Interactive attaches the terminal's stdin (password prompts).
	Interactive bool
}

// String renders the command for logs and dry-run traces, quoting arguments
// that contain whitespace.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	s := strings.Join(parts, " ")
	if c.Dir != "" {
		s = fmt.Sprintf("(cd %s) %s", c.Dir, s)
	}
	return s
}

// CommandError is returned when a command exits non-zero.
type CommandError struct {
	Command  Command
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Command.String())
	if e.ExitCode > 0 {
		msg = fmt.Sprintf("%s with exit code %d", msg, e.ExitCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner performs the actual process execution. LiveRunner is the production
// implementation; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
	Output(ctx context.Context, cmd Command) ([]byte, error)
	LookPath(name string) (string, error)
	IsRoot() bool
}

// Executor wraps a Runner with dry-run handling, sudo elevation and logging.
type Executor struct {
	runner Runner
	dryRun bool
}

// New returns an Executor over runner. With dryRun set, mutating commands are
// printed instead of run.
func New(runner Runner, dryRun bool) *Executor {
	return &Executor{runner: runner, dryRun: dryRun}
}

// DryRun reports whether mutating commands are only traced.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// IsRoot reports whether the process already has administrative privileges.
func (e *Executor) IsRoot() bool {
	return e.runner.IsRoot()
}

// Run executes a mutating command. In dry-run mode it logs a trace line and
// reports success without touching the system.
func (e *Executor) Run(ctx context.Context, cmd Command) error {
	resolved := e.resolve(cmd)
	if e.dryRun {
		logger.Info("[dry-run] %s", resolved)
		return nil
	}

	logger.Info("Running: %s", resolved)
	if err := e.runner.Run(ctx, resolved); err != nil {
		return wrap(resolved, err, nil)
	}
	return nil
}

// Output runs a read-only probe and returns its stdout. Unprivileged probes run
// even in dry-run mode since they cannot change the system; elevated probes are
// traced and return no output.
func (e *Executor) Output(ctx context.Context, cmd Command) ([]byte, error) {
	resolved := e.resolve(cmd)
	if e.dryRun && cmd.Elevate {
		logger.Info("[dry-run] %s", resolved)
		return nil, nil
	}

	logger.Debug("Probing: %s", resolved)
	out, err := e.runner.Output(ctx, resolved)
	if err != nil {
		return out, wrap(resolved, err, out)
	}
	return out, nil
}

// LookPath reports whether name resolves on the search path.
func (e *Executor) LookPath(name string) (string, error) {
	path, err := e.runner.LookPath(name)
	if err != nil {
		logger.Debug("%s not found on PATH: %v", name, err)
		return "", err
	}
	logger.Debug("%s found at %s", name, path)
	return path, nil
}

// resolve turns an elevated command into an explicit sudo invocation.
func (e *Executor) resolve(cmd Command) Command {
	if !cmd.Elevate {
		return cmd
	}
	if e.runner.IsRoot() {
		cmd.Elevate = false
		return cmd
	}
	args := append([]string{cmd.Name}, cmd.Args...)
	return Command{
		Name:        "sudo",
		Args:        args,
		Dir:         cmd.Dir,
		Interactive: cmd.Interactive,
	}
}

func wrap(cmd Command, err error, out []byte) error {
	cerr := &CommandError{Command: cmd, Err: err, Output: strings.TrimSpace(string(out))}
	// *exec.ExitError satisfies this.
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		cerr.ExitCode = coder.ExitCode()
	}
	return cerr
}
