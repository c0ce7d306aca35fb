package state

import (
	"encoding/json" // For JSON encoding and decoding of the state file
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ledkb-setup/internal/logger"
)

// Method records how the keyboard tool was installed.
type Method string

const (
	MethodSource  Method = "source"
	MethodPackage Method = "package"
)

// InstallRecord is what the uninstall workflow needs to know about a previous
// install.
type InstallRecord struct {
	Platform    string    `json:"platform"`     // Detected platform id, e.g. "arch"
	Manager     string    `json:"manager"`      // Package manager used, e.g. "pacman"
	Method      Method    `json:"method"`       // source or package
	RepoDir     string    `json:"repo_dir"`     // Checkout used by a source build
	Packages    []string  `json:"packages"`     // Packages installed for a package install
	ProfilePath string    `json:"profile_path"` // Where the profile was written
	InstalledAt time.Time `json:"installed_at"`
}

// Load reads the record at path. A missing file returns (nil, nil).
func Load(path string) (*InstallRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	var rec InstallRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return &rec, nil
}

// Save writes rec to path as indented JSON, creating parent directories.
func Save(path string, rec InstallRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	logger.Debug("Writing state to %s:\n%s", path, string(data))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}

// Clear removes the record. A missing file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove state file %s: %w", path, err)
	}
	return nil
}
