// Package provision drives the install and uninstall workflows. It is the only
// package that knows the order of steps; every other component is called from
// here and never calls back.
package provision

import (
	"context"
	"errors"
	"strings"
	"time"

	"ledkb-setup/internal/config"
	"ledkb-setup/internal/deps"
	"ledkb-setup/internal/device"
	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/installer"
	"ledkb-setup/internal/logger"
	"ledkb-setup/internal/platform"
	"ledkb-setup/internal/profile"
	"ledkb-setup/internal/service"
	"ledkb-setup/internal/state"
)

var errNoKeyboards = errors.New("no supported keyboard detected")

// Provisioner owns one install or uninstall run. The detected platform and the
// install record are filled in as steps run.
type Provisioner struct {
	cfg       config.RunConfig
	ex        *executor.Executor
	detector  platform.Detector
	installer *installer.Installer
	tool      *device.Tool
	profiles  *profile.Manager
	services  *service.Enabler
	now       func() time.Time

	platform platform.Profile
	record   *state.InstallRecord
}

// New wires the components for one run. now supplies the profile timestamp
// and the install record time.
func New(cfg config.RunConfig, ex *executor.Executor, confirm profile.Confirmer, now func() time.Time) *Provisioner {
	tool := device.NewTool(ex, cfg.Settings.Tool)
	return &Provisioner{
		cfg:       cfg,
		ex:        ex,
		detector:  platform.Detector{Root: cfg.Root},
		installer: installer.New(ex, cfg),
		tool:      tool,
		profiles:  profile.NewManager(ex, tool, confirm),
		services:  service.NewEnabler(ex),
		now:       now,
	}
}

// Run executes the install workflow, or the uninstall workflow when the run
// config asks for it.
func (p *Provisioner) Run(ctx context.Context) (Summary, error) {
	if p.cfg.DryRun {
		logger.Info("Dry-run mode: commands are printed, nothing is changed")
	}
	if p.cfg.Uninstall {
		return execute(ctx, p.UninstallSteps())
	}
	return execute(ctx, p.InstallSteps())
}

// preflight is shared by both workflows.
func (p *Provisioner) preflight() []Step {
	return []Step{
		Required{Label: "detect platform", Phase: Detected, Do: p.detect},
		Required{Label: "validate platform", Phase: Validated, Do: func(context.Context) error {
			return platform.Validate(p.platform)
		}},
		Required{Label: "check dependencies", Phase: DepsVerified, Do: func(context.Context) error {
			return deps.CheckDependencies(p.ex, p.platform)
		}},
		Required{Label: "verify administrative access", Phase: AccessVerified, Do: func(ctx context.Context) error {
			return deps.VerifyElevatedAccess(ctx, p.ex)
		}},
	}
}

// InstallSteps is the ordered install workflow.
func (p *Provisioner) InstallSteps() []Step {
	kp := profile.Generate(p.cfg.Settings, p.now())
	unit := p.cfg.Settings.ServiceUnit

	return append(p.preflight(),
		Required{Label: "install " + p.cfg.Settings.Tool, Phase: Installed, Do: p.install},
		BestEffort{Label: "record install", Do: p.saveRecord},
		BestEffort{Label: "list keyboards", Do: p.listKeyboards},
		BestEffort{Label: "test keyboard", Do: func(ctx context.Context) error {
			return p.tool.Test(ctx, p.cfg.Settings.AllKeysColor)
		}},
		Required{Label: "write profile", Phase: Configured, Do: func(ctx context.Context) error {
			return p.profiles.Write(ctx, kp)
		}},
		BestEffort{Label: "apply profile", Do: func(ctx context.Context) error {
			return p.profiles.Apply(ctx, kp)
		}},
		BestEffort{Label: "enable " + unit, Phase: ServiceEnabled, Do: func(ctx context.Context) error {
			return p.services.EnsureEnabled(ctx, unit)
		}},
	)
}

// UninstallSteps is the ordered removal workflow.
func (p *Provisioner) UninstallSteps() []Step {
	unit := p.cfg.Settings.ServiceUnit

	return append(p.preflight(),
		BestEffort{Label: "read install record", Do: p.loadRecord},
		BestEffort{Label: "disable " + unit, Phase: ServiceDisabled, Do: func(ctx context.Context) error {
			return p.services.Disable(ctx, unit)
		}},
		Required{Label: "remove " + p.cfg.Settings.Tool, Phase: Removed, Do: p.remove},
		BestEffort{Label: "remove profile", Do: func(ctx context.Context) error {
			return p.profiles.Remove(ctx, p.profilePath())
		}},
		BestEffort{Label: "clear install record", Do: p.clearRecord},
	)
}

func (p *Provisioner) detect(context.Context) error {
	p.platform = p.detector.Detect()
	logger.Info("Detected platform: %s", p.platform)
	return nil
}

func (p *Provisioner) install(ctx context.Context) error {
	rec, err := p.installer.Install(ctx, p.platform)
	if err != nil {
		return err
	}
	if err := p.installer.ReloadDeviceRules(ctx); err != nil {
		return err
	}
	rec.InstalledAt = p.now().UTC()
	p.record = &rec
	return nil
}

func (p *Provisioner) saveRecord(context.Context) error {
	if p.cfg.DryRun || p.record == nil {
		return nil
	}
	return state.Save(p.cfg.StatePath, *p.record)
}

func (p *Provisioner) loadRecord(context.Context) error {
	rec, err := state.Load(p.cfg.StatePath)
	if err != nil {
		return err
	}
	if rec == nil {
		logger.Info("No install record at %s; assuming a default install", p.cfg.StatePath)
	}
	p.record = rec
	return nil
}

func (p *Provisioner) clearRecord(context.Context) error {
	if p.cfg.DryRun {
		logger.Info("[dry-run] remove %s", p.cfg.StatePath)
		return nil
	}
	return state.Clear(p.cfg.StatePath)
}

func (p *Provisioner) remove(ctx context.Context) error {
	if err := p.installer.Uninstall(ctx, p.platform, p.record); err != nil {
		return err
	}
	return p.installer.ReloadDeviceRules(ctx)
}

func (p *Provisioner) profilePath() string {
	if p.record != nil && p.record.ProfilePath != "" {
		return p.record.ProfilePath
	}
	return p.cfg.Settings.ProfilePath
}

func (p *Provisioner) listKeyboards(ctx context.Context) error {
	keyboards, err := p.tool.ListKeyboards(ctx)
	if err != nil {
		return err
	}
	if len(keyboards) == 0 {
		if p.ex.DryRun() {
			return nil
		}
		return errNoKeyboards
	}
	logger.Info("Connected keyboards:\n  %s", strings.Join(keyboards, "\n  "))
	return nil
}

// Report prints the end-of-run summary to the console.
// unit is named in the manual-check hint.
func Report(sum Summary, err error, unit string) {
	if err != nil {
		logger.Error("Failed: %v", err)
		return
	}
	if len(sum.Warnings) == 0 {
		logger.Info("Finished")
		return
	}
	logger.Warn("Finished with %d warning(s):", len(sum.Warnings))
	for _, w := range sum.Warnings {
		logger.Plain("  - %s\n", w)
	}
	logger.Plain("Check these manually: is the keyboard connected, and is %s enabled?\n", unit)
}
