package profile_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledkb-setup/internal/config"
	"ledkb-setup/internal/device"
	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/executor/executortest"
	"ledkb-setup/internal/logger"
	"ledkb-setup/internal/profile"
)

var fixedTime = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func settingsAt(path string) config.Settings {
	s := config.DefaultSettings()
	s.ProfilePath = path
	return s
}

// fsHook makes the fake runner perform the file operations the profile
// manager delegates to install, cp and rm.
func fsHook(cmd executor.Command) error {
	args := cmd.Args
	if cmd.Name == "sudo" {
		cmd.Name, args = args[0], args[1:]
	}
	switch cmd.Name {
	case "install":
		src, dst := args[len(args)-2], args[len(args)-1]
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0644)
	case "cp":
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		return os.WriteFile(args[2], data, 0644)
	case "rm":
		return os.Remove(args[1])
	}
	return nil
}

type recordingConfirmer struct {
	answer bool
	asked  []string
}

func (r *recordingConfirmer) Confirm(q string) (bool, error) {
	r.asked = append(r.asked, q)
	return r.answer, nil
}

func newManager(t *testing.T, dryRun bool, confirm profile.Confirmer) (*profile.Manager, *executortest.Fake, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	_, err := logger.Init(logger.Options{Console: &out})
	require.NoError(t, err)

	fake := executortest.New("g810-led")
	fake.Hook = fsHook
	ex := executor.New(fake, dryRun)
	return profile.NewManager(ex, device.NewTool(ex, "g810-led"), confirm), fake, &out
}

func TestRender(t *testing.T) {
	s := settingsAt("/etc/g810-led/profile")
	s.Groups = []config.GroupColor{{Name: "logo", Color: "00ff00"}}

	got := string(profile.Generate(s, fixedTime).Render())

	want := "# Keyboard lighting profile generated by ledkb-setup\n" +
		"# Generated at 2026-10-16T12:00:00Z\n" +
		"# Changes are overwritten on the next setup run.\n" +
		"\n" +
		"a ffffff\n" +
		"g fkeys ff0000\n" +
		"g logo 00ff00\n" +
		"c\n"
	assert.Equal(t, want, got)
}

func TestGenerate_Deterministic(t *testing.T) {
	s := settingsAt("/etc/g810-led/profile")

	a := profile.Generate(s, fixedTime).Render()
	b := profile.Generate(s, fixedTime).Render()
	assert.Equal(t, a, b)

	later := profile.Generate(s, fixedTime.Add(time.Hour)).Render()
	stripHeader := func(b []byte) []byte {
		var kept []string
		for _, l := range strings.Split(string(b), "\n") {
			if !strings.HasPrefix(l, "# Generated at") {
				kept = append(kept, l)
			}
		}
		return []byte(strings.Join(kept, "\n"))
	}
	assert.Equal(t, stripHeader(a), stripHeader(later))
}

func TestParse(t *testing.T) {
	got, err := profile.Parse([]byte("# header\n\na   ffffff\ng fkeys  FF0000\nc\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a ffffff", "g fkeys FF0000", "c"}, got)

	for _, bad := range []string{"a red\n", "g fkeys\n", "c now\n", "x 000000\n"} {
		_, err := profile.Parse([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	target := filepath.Join(t.TempDir(), "g810-led", "profile")
	m, fake, _ := newManager(t, false, profile.Always(true))
	p := profile.Generate(settingsAt(target), fixedTime)

	require.NoError(t, m.Write(context.Background(), p))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	directives, err := profile.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, p.Directives(), directives)

	require.Len(t, fake.Runs, 1)
	assert.Equal(t, "sudo", fake.Runs[0].Name)
	assert.Equal(t, "install", fake.Runs[0].Args[0])
}

func TestWrite_BacksUpChangedProfile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "profile")
	require.NoError(t, os.WriteFile(target, []byte("a 000000\nc\n"), 0644))
	confirm := &recordingConfirmer{answer: true}
	m, _, _ := newManager(t, false, confirm)

	require.NoError(t, m.Write(context.Background(), profile.Generate(settingsAt(target), fixedTime)))

	assert.Len(t, confirm.asked, 1)
	backup, err := os.ReadFile(target + profile.BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "a 000000\nc\n", string(backup))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "g fkeys ff0000")
}

func TestWrite_DeclinedBackupStillWrites(t *testing.T) {
	target := filepath.Join(t.TempDir(), "profile")
	require.NoError(t, os.WriteFile(target, []byte("a 000000\nc\n"), 0644))
	m, fake, _ := newManager(t, false, &recordingConfirmer{answer: false})

	require.NoError(t, m.Write(context.Background(), profile.Generate(settingsAt(target), fixedTime)))

	assert.NoFileExists(t, target+profile.BackupSuffix)
	assert.False(t, fake.Ran("sudo cp"))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a ffffff")
}

func TestWrite_UnchangedProfileIsSkipped(t *testing.T) {
	target := filepath.Join(t.TempDir(), "profile")
	p := profile.Generate(settingsAt(target), fixedTime)
	require.NoError(t, os.WriteFile(target, profile.Generate(settingsAt(target), fixedTime.Add(-time.Hour)).Render(), 0644))
	confirm := &recordingConfirmer{answer: true}
	m, fake, _ := newManager(t, false, confirm)

	require.NoError(t, m.Write(context.Background(), p))

	assert.Empty(t, confirm.asked)
	assert.Empty(t, fake.Runs)
}

func TestWrite_DryRunPrintsContent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "profile")
	require.NoError(t, os.WriteFile(target, []byte("a 000000\nc\n"), 0644))
	confirm := &recordingConfirmer{answer: true}
	m, fake, out := newManager(t, true, confirm)

	require.NoError(t, m.Write(context.Background(), profile.Generate(settingsAt(target), fixedTime)))

	assert.Empty(t, confirm.asked)
	assert.Empty(t, fake.Runs)
	assert.Contains(t, out.String(), "a ffffff\ng fkeys ff0000\nc\n")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "a 000000\nc\n", string(data), "dry-run must not touch the file")
}

func TestWrite_InstallFailure(t *testing.T) {
	target := filepath.Join(t.TempDir(), "profile")
	m, fake, _ := newManager(t, false, profile.Always(true))
	fake.Fail("sudo install", &executortest.ExitError{Code: 1})

	err := m.Write(context.Background(), profile.Generate(settingsAt(target), fixedTime))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	t.Run("missing profile", func(t *testing.T) {
		m, _, _ := newManager(t, false, profile.Always(true))
		p := profile.Generate(settingsAt(filepath.Join(t.TempDir(), "profile")), fixedTime)

		err := m.Apply(context.Background(), p)
		assert.True(t, errors.Is(err, profile.ErrProfileNotFound))
	})

	t.Run("missing tool", func(t *testing.T) {
		var out bytes.Buffer
		_, _ = logger.Init(logger.Options{Console: &out})
		target := filepath.Join(t.TempDir(), "profile")
		require.NoError(t, os.WriteFile(target, []byte("c\n"), 0644))
		ex := executor.New(executortest.New(), false)
		m := profile.NewManager(ex, device.NewTool(ex, "g810-led"), profile.Always(true))

		err := m.Apply(context.Background(), profile.Generate(settingsAt(target), fixedTime))
		assert.True(t, errors.Is(err, device.ErrToolNotFound))
	})

	t.Run("loads through the tool", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "profile")
		require.NoError(t, os.WriteFile(target, []byte("c\n"), 0644))
		m, fake, _ := newManager(t, false, profile.Always(true))

		require.NoError(t, m.Apply(context.Background(), profile.Generate(settingsAt(target), fixedTime)))
		assert.Equal(t, []string{"g810-led -p " + target}, fake.RunLines())
	})
}

func TestRemove(t *testing.T) {
	target := filepath.Join(t.TempDir(), "profile")
	require.NoError(t, os.WriteFile(target, []byte("a 123456\nc\n"), 0644))
	m, _, _ := newManager(t, false, profile.Always(true))

	require.NoError(t, m.Remove(context.Background(), target))

	assert.NoFileExists(t, target)
	assert.FileExists(t, target+profile.BackupSuffix)

	require.NoError(t, m.Remove(context.Background(), target), "second removal is a no-op")
}
