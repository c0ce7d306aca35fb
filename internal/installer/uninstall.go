package installer

import (
	"context"
	"errors"
	"fmt"

	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/logger"
	"ledkb-setup/internal/platform"
	"ledkb-setup/internal/state"
)

// ErrNoCheckout means a source build cannot be undone because its tree is gone.
var ErrNoCheckout = errors.New("source checkout not found")

// Uninstall removes the tool the way it was installed. rec may be nil when no
// install was recorded; the platform's default method is assumed then.
func (i *Installer) Uninstall(ctx context.Context, profile platform.Profile, rec *state.InstallRecord) error {
	s, m, err := strategyFor(profile.Manager)
	if err != nil {
		return err
	}
	if rec != nil && rec.Method != "" && rec.Method != s.method() {
		logger.Warn("Recorded install method %s differs from %s for %s", rec.Method, s.method(), profile.Manager)
	}

	logger.Info("Removing %s from %s (%s)", i.settings.Tool, profile.ID, s.method())
	return s.uninstall(ctx, i, m, rec)
}

func (packageInstall) uninstall(ctx context.Context, i *Installer, m platform.Manager, rec *state.InstallRecord) error {
	pkgs := i.settings.AptPackages
	if rec != nil && len(rec.Packages) > 0 {
		pkgs = rec.Packages
	}
	if err := m.Remove(ctx, i.ex, pkgs...); err != nil {
		return fmt.Errorf("failed to remove %v: %w", pkgs, err)
	}
	return nil
}

// uninstall runs the project's own uninstall target; build dependencies stay.
func (sourceBuild) uninstall(ctx context.Context, i *Installer, _ platform.Manager, rec *state.InstallRecord) error {
	dir := i.repoDir
	if rec != nil && rec.RepoDir != "" {
		dir = rec.RepoDir
	}
	if !i.ex.DryRun() && !hasMakefile(dir) {
		return fmt.Errorf("%w: %s", ErrNoCheckout, dir)
	}
	c := executor.Command{Name: "make", Args: []string{"-C", dir, "uninstall"}, Elevate: true}
	if err := i.ex.Run(ctx, c); err != nil {
		return fmt.Errorf("failed to uninstall from %s: %w", dir, err)
	}
	return nil
}
