package executor_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/executor/executortest"
	"ledkb-setup/internal/logger"
)

func captureConsole(t *testing.T) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	_, err := logger.Init(logger.Options{Console: &out})
	require.NoError(t, err)
	return &out
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		name string
		cmd  executor.Command
		want string
	}{
		{"plain", executor.Command{Name: "git", Args: []string{"fetch", "origin"}}, "git fetch origin"},
		{"quoted", executor.Command{Name: "cp", Args: []string{"/tmp/a b", "/etc/x"}}, `cp "/tmp/a b" /etc/x`},
		{"dir", executor.Command{Name: "make", Args: []string{"bin"}, Dir: "/src"}, "(cd /src) make bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestRun_DryRunTracesWithoutExecuting(t *testing.T) {
	out := captureConsole(t)
	fake := executortest.New()
	ex := executor.New(fake, true)

	err := ex.Run(context.Background(), executor.Command{Name: "pacman", Args: []string{"-S", "hidapi"}, Elevate: true})

	require.NoError(t, err)
	assert.Empty(t, fake.Runs)
	assert.Contains(t, out.String(), "[dry-run] sudo pacman -S hidapi")
}

func TestRun_ElevatesThroughSudo(t *testing.T) {
	captureConsole(t)
	fake := executortest.New()
	ex := executor.New(fake, false)

	require.NoError(t, ex.Run(context.Background(), executor.Command{Name: "udevadm", Args: []string{"trigger"}, Elevate: true}))

	require.Len(t, fake.Runs, 1)
	assert.Equal(t, "sudo", fake.Runs[0].Name)
	assert.Equal(t, []string{"udevadm", "trigger"}, fake.Runs[0].Args)
}

func TestRun_RootSkipsSudo(t *testing.T) {
	captureConsole(t)
	fake := executortest.New()
	fake.Root = true
	ex := executor.New(fake, false)

	require.NoError(t, ex.Run(context.Background(), executor.Command{Name: "udevadm", Args: []string{"trigger"}, Elevate: true}))

	assert.Equal(t, []string{"udevadm trigger"}, fake.RunLines())
}

func TestRun_NonZeroExitIsCommandError(t *testing.T) {
	captureConsole(t)
	fake := executortest.New()
	fake.Fail("make", &executortest.ExitError{Code: 2})
	ex := executor.New(fake, false)

	err := ex.Run(context.Background(), executor.Command{Name: "make", Args: []string{"bin"}})

	var cerr *executor.CommandError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 2, cerr.ExitCode)
	assert.Contains(t, err.Error(), `"make bin"`)
	assert.Contains(t, err.Error(), "exit code 2")
}

func TestOutput(t *testing.T) {
	t.Run("unprivileged probes run in dry-run", func(t *testing.T) {
		captureConsole(t)
		fake := executortest.New()
		fake.Respond("g810-led --list-keyboards", "G810\n")
		ex := executor.New(fake, true)

		out, err := ex.Output(context.Background(), executor.Command{Name: "g810-led", Args: []string{"--list-keyboards"}})

		require.NoError(t, err)
		assert.Equal(t, "G810\n", string(out))
		assert.Len(t, fake.Probes, 1)
	})

	t.Run("elevated probes are traced in dry-run", func(t *testing.T) {
		out := captureConsole(t)
		fake := executortest.New()
		ex := executor.New(fake, true)

		_, err := ex.Output(context.Background(), executor.Command{Name: "true", Elevate: true})

		require.NoError(t, err)
		assert.Empty(t, fake.Probes)
		assert.Contains(t, out.String(), "[dry-run] sudo true")
	})
}

func TestLookPath(t *testing.T) {
	captureConsole(t)
	ex := executor.New(executortest.New("git"), false)

	path, err := ex.LookPath("git")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/git", path)

	_, err = ex.LookPath("pacman")
	assert.Error(t, err)
}
