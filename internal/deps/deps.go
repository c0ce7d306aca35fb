// Package deps verifies the external tools and privileges the installer needs.
package deps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/logger"
	"ledkb-setup/internal/platform"
)

var baseTools = []string{"git", "sudo"}

// RequiredTools lists the executables that must be on PATH for profile.
func RequiredTools(profile platform.Profile) ([]string, error) {
	m, err := platform.ManagerFor(profile.Manager)
	if err != nil {
		return nil, err
	}
	tools := append([]string{}, baseTools...)
	return append(tools, m.Binary()), nil
}

// MissingToolsError names every required tool that was not found.
type MissingToolsError struct {
	Tools []string
}

func (e *MissingToolsError) Error() string {
	return fmt.Sprintf("missing required commands: %s", strings.Join(e.Tools, ", "))
}

// Check tests each tool and reports all missing ones in a single error.
func Check(ex *executor.Executor, tools []string) error {
	var missing []string
	for _, t := range tools {
		if _, err := ex.LookPath(t); err != nil {
			logger.Debug("Required command missing: %s", t)
			missing = append(missing, t)
			continue
		}
		logger.Debug("Required command present: %s", t)
	}
	if len(missing) > 0 {
		return &MissingToolsError{Tools: missing}
	}
	return nil
}

// CheckDependencies resolves the tool set for profile and checks it.
func CheckDependencies(ex *executor.Executor, profile platform.Profile) error {
	tools, err := RequiredTools(profile)
	if err != nil {
		return err
	}
	return Check(ex, tools)
}

// ErrNoElevatedAccess is returned when sudo cannot be used non-interactively
// or after a prompt.
var ErrNoElevatedAccess = errors.New("could not obtain administrative privileges")

// VerifyElevatedAccess tries a non-interactive sudo first and falls back to
// prompting for a password. Dry-run and root runs need nothing.
func VerifyElevatedAccess(ctx context.Context, ex *executor.Executor) error {
	if ex.DryRun() {
		logger.Info("[dry-run] skipping privilege check")
		return nil
	}
	if ex.IsRoot() {
		logger.Debug("running as root, no sudo needed")
		return nil
	}

	// Probes, so they run for real; Elevate is not used because these are the
	// sudo checks themselves.
	if _, err := ex.Output(ctx, executor.Command{Name: "sudo", Args: []string{"-n", "true"}}); err == nil {
		return nil
	}
	logger.Info("Administrative privileges are required; sudo may ask for your password")
	if err := ex.Run(ctx, executor.Command{Name: "sudo", Args: []string{"-v"}, Interactive: true}); err != nil {
		return fmt.Errorf("%w: %v", ErrNoElevatedAccess, err)
	}
	return nil
}

// InstallPackages installs names through the profile's package manager.
func InstallPackages(ctx context.Context, ex *executor.Executor, profile platform.Profile, names []string) error {
	m, err := platform.ManagerFor(profile.Manager)
	if err != nil {
		return err
	}
	logger.Info("Installing packages with %s: %s", m.Binary(), strings.Join(names, " "))
	if err := m.Install(ctx, ex, names...); err != nil {
		return fmt.Errorf("failed to install %s: %w", strings.Join(names, ", "), err)
	}
	return nil
}
