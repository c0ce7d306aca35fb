package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineFormat = regexp.MustCompile(`^\[[^\]]+\] \[(INFO|WARN|ERROR|DEBUG)\] .+$`)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestInit_WritesBracketedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "setup.log")
	var out bytes.Buffer

	closer, err := Init(Options{LogPath: path, Console: &out})
	require.NoError(t, err)

	Info("installing %s", "g810-led")
	Warn("device listing failed")
	Error("make install failed\n")
	require.NoError(t, closer.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Regexp(t, lineFormat, line)
	}
	assert.True(t, strings.HasSuffix(lines[0], "[INFO] installing g810-led"))
	assert.True(t, strings.HasSuffix(lines[1], "[WARN] device listing failed"))
	assert.True(t, strings.HasSuffix(lines[2], "[ERROR] make install failed"))

	assert.Contains(t, out.String(), "[INFO] installing g810-led")
}

func TestInit_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0644))

	closer, err := Init(Options{LogPath: path, Console: &bytes.Buffer{}})
	require.NoError(t, err)
	Info("second run")
	require.NoError(t, closer.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "previous run", lines[0])
}

func TestDebug(t *testing.T) {
	t.Run("suppressed when disabled", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setup.log")
		var out bytes.Buffer
		closer, err := Init(Options{LogPath: path, Console: &out})
		require.NoError(t, err)

		Debug("hidden")
		Info("shown")
		require.NoError(t, closer.Close())

		assert.NotContains(t, out.String(), "hidden")
		lines := readLines(t, path)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "shown")
	})

	t.Run("emitted when enabled", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setup.log")
		var out bytes.Buffer
		closer, err := Init(Options{Debug: true, LogPath: path, Console: &out})
		require.NoError(t, err)

		Debug("check %d", 1)
		require.NoError(t, closer.Close())

		assert.True(t, DebugEnabled())
		assert.Contains(t, out.String(), "[DEBUG] check 1")
		lines := readLines(t, path)
		require.Len(t, lines, 1)
		assert.True(t, strings.HasSuffix(lines[0], "[DEBUG] check 1"))
	})
}

func TestPlain_SkipsLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.log")
	var out bytes.Buffer
	closer, err := Init(Options{LogPath: path, Console: &out})
	require.NoError(t, err)

	Plain("a %s\n", "ffffff")
	require.NoError(t, closer.Close())

	assert.Equal(t, "a ffffff\n", out.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
