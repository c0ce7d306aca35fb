package installer

import (
	"context"
	"errors"
	"fmt"

	"ledkb-setup/internal/config"
	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/logger"
	"ledkb-setup/internal/platform"
	"ledkb-setup/internal/state"
)

// Installer puts the keyboard tool on the host: built from source on pacman
// hosts, installed as a distribution package on apt hosts.
type Installer struct {
	ex            *executor.Executor
	settings      config.Settings
	repoDir       string
	sourceArchive string
}

// New returns an Installer configured from cfg.
func New(ex *executor.Executor, cfg config.RunConfig) *Installer {
	return &Installer{
		ex:            ex,
		settings:      cfg.Settings,
		repoDir:       cfg.RepoDir,
		sourceArchive: cfg.SourceArchive,
	}
}

// strategy installs or removes the tool for one package manager family.
type strategy interface {
	method() state.Method
	install(ctx context.Context, i *Installer, m platform.Manager) (state.InstallRecord, error)
	uninstall(ctx context.Context, i *Installer, m platform.Manager, rec *state.InstallRecord) error
}

var strategies = map[platform.ManagerKind]strategy{
	platform.Pacman: sourceBuild{},
	platform.Apt:    packageInstall{},
}

// ErrNoStrategy means there is no install method for the package manager.
var ErrNoStrategy = errors.New("no install strategy for package manager")

func strategyFor(kind platform.ManagerKind) (strategy, platform.Manager, error) {
	m, err := platform.ManagerFor(kind)
	if err != nil {
		return nil, nil, err
	}
	s, ok := strategies[kind]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoStrategy, kind)
	}
	return s, m, nil
}

// Install installs the tool for profile and describes what it did.
func (i *Installer) Install(ctx context.Context, profile platform.Profile) (state.InstallRecord, error) {
	s, m, err := strategyFor(profile.Manager)
	if err != nil {
		return state.InstallRecord{}, err
	}

	logger.Info("Installing %s on %s (%s)", i.settings.Tool, profile.ID, s.method())
	rec, err := s.install(ctx, i, m)
	if err != nil {
		return state.InstallRecord{}, err
	}
	rec.Platform = string(profile.ID)
	rec.Manager = string(profile.Manager)
	rec.Method = s.method()
	rec.ProfilePath = i.settings.ProfilePath
	return rec, nil
}

// ReloadDeviceRules makes freshly installed udev rules take effect without a reboot.
func (i *Installer) ReloadDeviceRules(ctx context.Context) error {
	if err := i.ex.Run(ctx, executor.Command{Name: "udevadm", Args: []string{"control", "--reload-rules"}, Elevate: true}); err != nil {
		return fmt.Errorf("failed to reload udev rules: %w", err)
	}
	if err := i.ex.Run(ctx, executor.Command{Name: "udevadm", Args: []string{"trigger"}, Elevate: true}); err != nil {
		return fmt.Errorf("failed to trigger udev: %w", err)
	}
	return nil
}

type packageInstall struct{}

func (packageInstall) method() state.Method { return state.MethodPackage }

func (packageInstall) install(ctx context.Context, i *Installer, m platform.Manager) (state.InstallRecord, error) {
	if err := m.Install(ctx, i.ex, i.settings.AptPackages...); err != nil {
		return state.InstallRecord{}, fmt.Errorf("failed to install %v: %w", i.settings.AptPackages, err)
	}
	return state.InstallRecord{Packages: append([]string{}, i.settings.AptPackages...)}, nil
}

type sourceBuild struct{}

func (sourceBuild) method() state.Method { return state.MethodSource }

func (sourceBuild) install(ctx context.Context, i *Installer, m platform.Manager) (state.InstallRecord, error) {
	if err := m.Install(ctx, i.ex, i.settings.BuildPackages...); err != nil {
		return state.InstallRecord{}, fmt.Errorf("failed to install build dependencies: %w", err)
	}
	if err := i.prepareSource(ctx); err != nil {
		return state.InstallRecord{}, err
	}
	if err := i.build(ctx); err != nil {
		return state.InstallRecord{}, err
	}
	return state.InstallRecord{RepoDir: i.repoDir}, nil
}

func (i *Installer) build(ctx context.Context) error {
	steps := []executor.Command{
		{Name: "make", Args: []string{"-C", i.repoDir, "clean"}},
		{Name: "make", Args: []string{"-C", i.repoDir, i.settings.BuildTarget}},
		{Name: "make", Args: []string{"-C", i.repoDir, "install"}, Elevate: true},
	}
	for _, c := range steps {
		if err := i.ex.Run(ctx, c); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
	}
	return nil
}
