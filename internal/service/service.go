// Package service manages the systemd unit that re-applies the profile at boot.
package service

import (
	"context"
	"errors"
	"fmt"

	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/logger"
)

const systemctl = "systemctl"

// ErrNoServiceManager means systemctl is not on PATH.
var ErrNoServiceManager = errors.New("systemctl not found")

// Enabler turns systemd units on and off through systemctl.
type Enabler struct {
	ex *executor.Executor
}

// NewEnabler returns an Enabler that runs systemctl through ex.
func NewEnabler(ex *executor.Executor) *Enabler {
	return &Enabler{ex: ex}
}

// IsEnabled asks systemd whether unit is enabled.
func (s *Enabler) IsEnabled(ctx context.Context, unit string) bool {
	_, err := s.ex.Output(ctx, executor.Command{Name: systemctl, Args: []string{"is-enabled", "--quiet", unit}})
	return err == nil
}

// EnsureEnabled enables unit unless it already is. A host without systemd
// yields ErrNoServiceManager.
func (s *Enabler) EnsureEnabled(ctx context.Context, unit string) error {
	if _, err := s.ex.LookPath(systemctl); err != nil {
		return ErrNoServiceManager
	}
	if s.IsEnabled(ctx, unit) {
		logger.Info("Service %s is already enabled", unit)
		return nil
	}

	if err := s.ex.Run(ctx, executor.Command{Name: systemctl, Args: []string{"daemon-reload"}, Elevate: true}); err != nil {
		return fmt.Errorf("failed to reload systemd: %w", err)
	}
	if err := s.ex.Run(ctx, executor.Command{Name: systemctl, Args: []string{"enable", unit}, Elevate: true}); err != nil {
		return fmt.Errorf("failed to enable %s: %w", unit, err)
	}
	logger.Info("Enabled %s", unit)
	return nil
}

// Disable is the inverse of EnsureEnabled; a unit that is not enabled is left alone.
func (s *Enabler) Disable(ctx context.Context, unit string) error {
	if _, err := s.ex.LookPath(systemctl); err != nil {
		return ErrNoServiceManager
	}
	if !s.IsEnabled(ctx, unit) {
		logger.Info("Service %s is not enabled", unit)
		return nil
	}
	if err := s.ex.Run(ctx, executor.Command{Name: systemctl, Args: []string{"disable", unit}, Elevate: true}); err != nil {
		return fmt.Errorf("failed to disable %s: %w", unit, err)
	}
	logger.Info("Disabled %s", unit)
	return nil
}
