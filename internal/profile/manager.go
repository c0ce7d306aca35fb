package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"ledkb-setup/internal/device"
	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/logger"
)

// ErrProfileNotFound is returned when applying a profile that was never written.
var ErrProfileNotFound = errors.New("profile file not found")

// BackupSuffix is appended to the previous profile before it is replaced.
const BackupSuffix = ".bak"

// Manager writes profiles to their system location and hands them to the
// keyboard tool. All writes go through the executor so they are elevated and
// honor dry-run.
type Manager struct {
	ex      *executor.Executor
	tool    *device.Tool
	confirm Confirmer
}

// NewManager returns a Manager that applies profiles with tool. confirm is
// asked before an existing profile is backed up and replaced.
func NewManager(ex *executor.Executor, tool *device.Tool, confirm Confirmer) *Manager {
	return &Manager{ex: ex, tool: tool, confirm: confirm}
}

// Write installs the rendered profile at p.TargetPath. An existing file with
// different directives is backed up to a .bak sibling if the user agrees.
// Dry-run prints the content instead and never prompts.
func (m *Manager) Write(ctx context.Context, p KeyboardProfile) error {
	content := p.Render()
	if m.ex.DryRun() {
		logger.Info("[dry-run] would write %s with:", p.TargetPath)
		logger.Plain("%s", content)
		return nil
	}

	existing, err := os.ReadFile(p.TargetPath)
	switch {
	case err == nil:
		if current, perr := Parse(existing); perr == nil && slices.Equal(current, p.Directives()) {
			logger.Info("Profile %s is already up to date", p.TargetPath)
			return nil
		}
		if err := m.backup(ctx, p.TargetPath); err != nil {
			return err
		}
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("no existing profile at %s", p.TargetPath)
	default:
		// Unreadable without privileges; still back it up before replacing it.
		logger.Debug("could not read %s: %v", p.TargetPath, err)
		if err := m.backup(ctx, p.TargetPath); err != nil {
			return err
		}
	}

	tmp, err := m.stage(content)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := m.ex.Run(ctx, executor.Command{
		Name:    "install",
		Args:    []string{"-D", "-m", "0644", tmp, p.TargetPath},
		Elevate: true,
	}); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", p.TargetPath, err)
	}
	logger.Info("Wrote keyboard profile to %s", p.TargetPath)
	return nil
}

// Apply loads the written profile through the keyboard tool.
func (m *Manager) Apply(ctx context.Context, p KeyboardProfile) error {
	if !m.ex.DryRun() {
		if _, err := os.Stat(p.TargetPath); err != nil {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, p.TargetPath)
		}
	}
	return m.tool.Load(ctx, p.TargetPath)
}

// Remove deletes the profile at path, keeping a .bak copy. A missing file is
// not an error.
func (m *Manager) Remove(ctx context.Context, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info("No profile at %s, nothing to remove", path)
		return nil
	}
	if err := m.ex.Run(ctx, executor.Command{Name: "cp", Args: []string{"-p", path, path + BackupSuffix}, Elevate: true}); err != nil {
		return fmt.Errorf("failed to back up %s: %w", path, err)
	}
	if err := m.ex.Run(ctx, executor.Command{Name: "rm", Args: []string{"-f", path}, Elevate: true}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	logger.Info("Removed %s (backup kept at %s%s)", path, path, BackupSuffix)
	return nil
}

func (m *Manager) backup(ctx context.Context, path string) error {
	dest := path + BackupSuffix
	ok, err := m.confirm.Confirm(fmt.Sprintf("A profile already exists at %s. Back it up to %s?", path, dest))
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !ok {
		logger.Warn("Replacing %s without a backup", path)
		return nil
	}
	if err := m.ex.Run(ctx, executor.Command{Name: "cp", Args: []string{"-p", path, dest}, Elevate: true}); err != nil {
		return fmt.Errorf("failed to back up %s: %w", path, err)
	}
	logger.Info("Backed up previous profile to %s", dest)
	return nil
}

// stage writes content to a private temp file that install(1) copies into place.
func (m *Manager) stage(content []byte) (string, error) {
	f, err := os.CreateTemp("", "ledkb-profile-*")
	if err != nil {
		return "", fmt.Errorf("failed to stage profile: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage profile: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage profile: %w", err)
	}
	return f.Name(), nil
}
