package profile

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"ledkb-setup/internal/logger"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// TerminalConfirmer prompts on the terminal. Without a terminal on stdin it
// answers yes so unattended runs keep their backups.
type TerminalConfirmer struct{}

func (TerminalConfirmer) Confirm(question string) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		logger.Info("%s yes (non-interactive)", question)
		return true, nil
	}
	return pterm.DefaultInteractiveConfirm.WithDefaultValue(true).Show(question)
}

// Always answers every question with a fixed value.
type Always bool

func (a Always) Confirm(string) (bool, error) { return bool(a), nil }
