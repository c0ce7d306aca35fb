// Package device drives the third-party keyboard-control CLI.
package device

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/logger"
)

// ErrToolNotFound means the keyboard tool binary is not on PATH.
var ErrToolNotFound = errors.New("keyboard tool not found")

// Tool wraps one keyboard-control binary such as g810-led.
type Tool struct {
	ex     *executor.Executor
	binary string
}

// NewTool wraps binary, which is looked up on PATH at call time.
func NewTool(ex *executor.Executor, binary string) *Tool {
	return &Tool{ex: ex, binary: binary}
}

func (t *Tool) Binary() string { return t.binary }

// Available reports ErrToolNotFound when the binary is not on PATH.
func (t *Tool) Available() error {
	if _, err := t.ex.LookPath(t.binary); err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, t.binary)
	}
	return nil
}

// pending reports whether the binary is missing only because a dry-run traced
// the install instead of performing it. Callers then trace instead of running.
func (t *Tool) pending(args ...string) bool {
	if !t.ex.DryRun() || t.Available() == nil {
		return false
	}
	logger.Info("[dry-run] %s", executor.Command{Name: t.binary, Args: args})
	return true
}

// ListKeyboards returns the tool's list of connected keyboards, one per line.
func (t *Tool) ListKeyboards(ctx context.Context) ([]string, error) {
	if t.pending("--list-keyboards") {
		return nil, nil
	}
	if err := t.Available(); err != nil {
		return nil, err
	}
	out, err := t.ex.Output(ctx, executor.Command{Name: t.binary, Args: []string{"--list-keyboards"}})
	if err != nil {
		return nil, fmt.Errorf("failed to list keyboards: %w", err)
	}
	var keyboards []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			keyboards = append(keyboards, line)
		}
	}
	return keyboards, nil
}

// Test lights every key with color to confirm the keyboard responds.
func (t *Tool) Test(ctx context.Context, color string) error {
	if t.pending("-a", color) {
		return nil
	}
	if err := t.Available(); err != nil {
		return err
	}
	if err := t.ex.Run(ctx, executor.Command{Name: t.binary, Args: []string{"-a", color}}); err != nil {
		return fmt.Errorf("keyboard did not accept a color change: %w", err)
	}
	return nil
}

// Load applies a profile file from disk.
func (t *Tool) Load(ctx context.Context, path string) error {
	if t.pending("-p", path) {
		return nil
	}
	if err := t.Available(); err != nil {
		return err
	}
	if err := t.ex.Run(ctx, executor.Command{Name: t.binary, Args: []string{"-p", path}}); err != nil {
		return fmt.Errorf("failed to load profile %s: %w", path, err)
	}
	return nil
}
