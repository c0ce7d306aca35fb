package state_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledkb-setup/internal/state"
)

func TestSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	rec := state.InstallRecord{
		Platform:    "arch",
		Manager:     "pacman",
		Method:      state.MethodSource,
		RepoDir:     "/home/u/.cache/ledkb-setup/src",
		ProfilePath: "/etc/g810-led/profile",
		InstalledAt: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, state.Save(path, rec))

	got, err := state.Load(path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)

	require.NoError(t, state.Clear(path))
	assert.NoFileExists(t, path)
	require.NoError(t, state.Clear(path), "clearing twice is fine")
}

func TestLoad_Missing(t *testing.T) {
	got, err := state.Load(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := state.Load(path)
	assert.Error(t, err)
}
