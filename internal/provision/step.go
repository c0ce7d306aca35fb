package provision

import (
	"context"
	"fmt"
)

// StepResult is what every orchestrated step reports.
type StepResult struct {
	OK      bool
	Fatal   bool
	Message string
	Err     error
}

// Step is one unit of the workflow. The two implementations decide how a
// failure is classified; callers cannot override it.
type Step interface {
	Name() string
	// Reaches is the state entered once the step has run; empty keeps the current one.
	Reaches() State
	Run(ctx context.Context) StepResult
}

// Required aborts the run when Do fails.
type Required struct {
	Label string
	Phase State
	Do    func(ctx context.Context) error
}

func (r Required) Name() string   { return r.Label }
func (r Required) Reaches() State { return r.Phase }

func (r Required) Run(ctx context.Context) StepResult {
	if err := r.Do(ctx); err != nil {
		return StepResult{Fatal: true, Message: fmt.Sprintf("%s: %v", r.Label, err), Err: err}
	}
	return StepResult{OK: true, Message: r.Label}
}

// BestEffort turns a failure of Do into a warning. It never yields a fatal result.
type BestEffort struct {
	Label string
	Phase State
	Do    func(ctx context.Context) error
}

func (b BestEffort) Name() string   { return b.Label }
func (b BestEffort) Reaches() State { return b.Phase }

func (b BestEffort) Run(ctx context.Context) StepResult {
	if err := b.Do(ctx); err != nil {
		return StepResult{Message: fmt.Sprintf("%s: %v", b.Label, err), Err: err}
	}
	return StepResult{OK: true, Message: b.Label}
}
