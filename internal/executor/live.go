package executor

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// LiveRunner executes commands on the host. Command output is streamed to
// Stdout/Stderr so long builds stay visible.
type LiveRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewLiveRunner returns a runner that streams to the process's own stdout/stderr.
func NewLiveRunner() *LiveRunner {
	return &LiveRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (l *LiveRunner) Run(ctx context.Context, c Command) error {
	cmd := l.command(ctx, c)
	cmd.Stdout, cmd.Stderr = l.Stdout, l.Stderr
	return cmd.Run()
}

func (l *LiveRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	cmd := l.command(ctx, c)
	return cmd.Output()
}

func (l *LiveRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (l *LiveRunner) IsRoot() bool {
	return os.Geteuid() == 0
}

func (l *LiveRunner) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Interactive {
		cmd.Stdin = os.Stdin
	}
	return cmd
}
