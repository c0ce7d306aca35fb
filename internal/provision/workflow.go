package provision

import (
	"context"
	"errors"
	"fmt"

	"ledkb-setup/internal/logger"
)

// ErrInterrupted is returned when the run context is cancelled by a signal.
var ErrInterrupted = errors.New("interrupted")

// Summary describes how far a run got.
type Summary struct {
	State    State
	Warnings []string
	// FailedStep names the step that aborted the run, if any.
	FailedStep string
}

// execute runs steps in order. Cancellation is checked before every step and
// after every failed one, so a signal during a command surfaces as
// ErrInterrupted rather than as the command's own failure or a warning.
// Fatal errors are returned, not logged; Report prints them once.
func execute(ctx context.Context, steps []Step) (Summary, error) {
	sum := Summary{State: Start}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return interrupted(sum, s.Name(), err)
		}

		logger.Debug("step %q from state %s", s.Name(), sum.State)
		res := s.Run(ctx)
		if !res.OK {
			if err := ctx.Err(); err != nil {
				return interrupted(sum, s.Name(), err)
			}
		}
		switch {
		case res.Fatal:
			sum.State = Failed
			sum.FailedStep = s.Name()
			return sum, fmt.Errorf("%s: %w", s.Name(), res.Err)
		case !res.OK:
			logger.Warn("%s", res.Message)
			sum.Warnings = append(sum.Warnings, res.Message)
		}

		if next := s.Reaches(); next != "" {
			sum.State = next
		}
	}
	sum.State = Done
	return sum, nil
}

func interrupted(sum Summary, step string, cause error) (Summary, error) {
	sum.State = Failed
	sum.FailedStep = step
	return sum, fmt.Errorf("%s: %w: %v", step, ErrInterrupted, cause)
}
