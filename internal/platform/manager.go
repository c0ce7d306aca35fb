package platform

import (
	"context"
	"errors"
	"fmt"

	"ledkb-setup/internal/executor"
)

// Manager is the capability set of one package manager family. Adding a
// distribution family means adding one implementation here.
type Manager interface {
	Kind() ManagerKind
	// Binary is the executable that must be on PATH.
	Binary() string
	RefreshIndex(ctx context.Context, ex *executor.Executor) error
	Install(ctx context.Context, ex *executor.Executor, pkgs ...string) error
	Remove(ctx context.Context, ex *executor.Executor, pkgs ...string) error
}

// ErrUnknownManager means no package manager is known for the platform.
var ErrUnknownManager = errors.New("unknown package manager")

// ManagerFor returns the implementation for kind.
func ManagerFor(kind ManagerKind) (Manager, error) {
	switch kind {
	case Pacman:
		return pacman{}, nil
	case Apt:
		return apt{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownManager, kind)
	}
}

type pacman struct{}

func (pacman) Kind() ManagerKind { return Pacman }
func (pacman) Binary() string    { return "pacman" }

func (pacman) RefreshIndex(ctx context.Context, ex *executor.Executor) error {
	return ex.Run(ctx, executor.Command{Name: "pacman", Args: []string{"-Sy", "--noconfirm"}, Elevate: true})
}

// Install never refreshes: -Sy without a full upgrade leaves a partial upgrade.
func (pacman) Install(ctx context.Context, ex *executor.Executor, pkgs ...string) error {
	if len(pkgs) == 0 {
		return nil
	}
	args := append([]string{"-S", "--needed", "--noconfirm"}, pkgs...)
	return ex.Run(ctx, executor.Command{Name: "pacman", Args: args, Elevate: true})
}

func (pacman) Remove(ctx context.Context, ex *executor.Executor, pkgs ...string) error {
	if len(pkgs) == 0 {
		return nil
	}
	args := append([]string{"-Rns", "--noconfirm"}, pkgs...)
	return ex.Run(ctx, executor.Command{Name: "pacman", Args: args, Elevate: true})
}

type apt struct{}

func (apt) Kind() ManagerKind { return Apt }
func (apt) Binary() string    { return "apt" }

func (apt) RefreshIndex(ctx context.Context, ex *executor.Executor) error {
	return ex.Run(ctx, executor.Command{Name: "apt", Args: []string{"update"}, Elevate: true})
}

func (a apt) Install(ctx context.Context, ex *executor.Executor, pkgs ...string) error {
	if len(pkgs) == 0 {
		return nil
	}
	if err := a.RefreshIndex(ctx, ex); err != nil {
		return fmt.Errorf("failed to refresh package index: %w", err)
	}
	args := append([]string{"install", "-y"}, pkgs...)
	return ex.Run(ctx, executor.Command{Name: "apt", Args: args, Elevate: true})
}

func (apt) Remove(ctx context.Context, ex *executor.Executor, pkgs ...string) error {
	if len(pkgs) == 0 {
		return nil
	}
	args := append([]string{"remove", "-y"}, pkgs...)
	return ex.Run(ctx, executor.Command{Name: "apt", Args: args, Elevate: true})
}
