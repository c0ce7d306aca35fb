// Package executortest provides a recording Runner for tests.
package executortest

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"ledkb-setup/internal/executor"
)

// ExitError mimics a process that exited non-zero.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

func (e *ExitError) ExitCode() int { return e.Code }

// Fake records every command it receives. Commands are matched by the prefix
// of their rendered form, e.g. "sudo pacman -S" or "systemctl is-enabled".
// When several registered prefixes match, the one registered last wins.
type Fake struct {
	Root bool

	// Hook, if set, runs for every Run and Output call before the failure
	// table is consulted. Tests use it to simulate side effects.
	Hook func(cmd executor.Command) error

	tools    map[string]bool
	failures []rule[error]
	outputs  []rule[[]byte]

	Runs   []executor.Command
	Probes []executor.Command
}

// New returns a fake where the given tools are present on PATH.
func New(tools ...string) *Fake {
	f := &Fake{tools: map[string]bool{}}
	for _, t := range tools {
		f.tools[t] = true
	}
	return f
}

// AddTool puts name on the fake PATH.
func (f *Fake) AddTool(name string) { f.tools[name] = true }

// Fail makes every command starting with prefix return err.
func (f *Fake) Fail(prefix string, err error) {
	f.failures = append(f.failures, rule[error]{prefix, err})
}

// Respond sets the stdout returned by probes starting with prefix.
func (f *Fake) Respond(prefix string, out string) {
	f.outputs = append(f.outputs, rule[[]byte]{prefix, []byte(out)})
}

func (f *Fake) Run(_ context.Context, cmd executor.Command) error {
	f.Runs = append(f.Runs, cmd)
	return f.result(cmd)
}

func (f *Fake) Output(_ context.Context, cmd executor.Command) ([]byte, error) {
	f.Probes = append(f.Probes, cmd)
	if err := f.result(cmd); err != nil {
		return nil, err
	}
	out, _ := match(f.outputs, cmd.String())
	return out, nil
}

func (f *Fake) LookPath(name string) (string, error) {
	if f.tools[name] {
		return "/usr/bin/" + name, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func (f *Fake) IsRoot() bool { return f.Root }

// RunLines returns the rendered form of every Run call, in order.
func (f *Fake) RunLines() []string {
	lines := make([]string, 0, len(f.Runs))
	for _, c := range f.Runs {
		lines = append(lines, c.String())
	}
	return lines
}

// Ran reports whether any Run call starts with prefix.
func (f *Fake) Ran(prefix string) bool {
	for _, line := range f.RunLines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func (f *Fake) result(cmd executor.Command) error {
	if f.Hook != nil {
		if err := f.Hook(cmd); err != nil {
			return err
		}
	}
	err, _ := match(f.failures, cmd.String())
	return err
}

type rule[T any] struct {
	prefix string
	value  T
}

// match returns the value of the last rule whose prefix matches line.
func match[T any](rules []rule[T], line string) (T, bool) {
	for i := len(rules) - 1; i >= 0; i-- {
		if strings.HasPrefix(line, rules[i].prefix) {
			return rules[i].value, true
		}
	}
	var zero T
	return zero, false
}

// ErrBoom is a generic failure for tests that do not care about the cause.
var ErrBoom = errors.New("boom")
