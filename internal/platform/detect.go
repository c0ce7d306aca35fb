// Package platform identifies the host distribution and exposes the package
// manager variant that serves it.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ledkb-setup/internal/logger"
)

// ID names a supported distribution.
type ID string

const (
	CachyOS ID = "cachyos"
	Arch    ID = "arch"
	Debian  ID = "debian"
	Ubuntu  ID = "ubuntu"
	Unknown ID = "unknown"
)

// ManagerKind names a package manager family.
type ManagerKind string

const (
	Pacman         ManagerKind = "pacman"
	Apt            ManagerKind = "apt"
	UnknownManager ManagerKind = "unknown"
)

// Profile is the detected distribution plus its package manager.
type Profile struct {
	ID      ID
	Manager ManagerKind
}

func (p Profile) String() string {
	return fmt.Sprintf("%s/%s", p.ID, p.Manager)
}

// Supported reports whether the profile has a usable package manager.
func (p Profile) Supported() bool {
	return p.Manager != UnknownManager && p.ID != Unknown
}

// ErrUnsupportedPlatform is returned by Validate for anything but the
// supported distributions.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Validate fails for the unknown profile.
func Validate(p Profile) error {
	if !p.Supported() {
		return fmt.Errorf("%w: could not identify a supported distribution (CachyOS, Arch, Debian, Ubuntu)", ErrUnsupportedPlatform)
	}
	return nil
}

// OSReleasePath is the identity file inspected first, relative to the detector root.
const OSReleasePath = "etc/os-release"

type rule struct {
	needle  string
	profile Profile
}

// More specific identities come first: CachyOS declares ID_LIKE=arch and
// Ubuntu declares ID_LIKE=debian, so the generic names would match them too.
var releaseRules = []rule{
	{"cachyos", Profile{CachyOS, Pacman}},
	{"arch", Profile{Arch, Pacman}},
	{"ubuntu", Profile{Ubuntu, Apt}},
	{"debian", Profile{Debian, Apt}},
}

// Marker files consulted when os-release is missing or names nothing we know.
var markerRules = []rule{
	{"etc/arch-release", Profile{Arch, Pacman}},
	{"etc/debian_version", Profile{Debian, Apt}},
}

// Detector inspects host identity files under Root ("/" in production).
type Detector struct {
	Root string
}

// NewDetector returns a detector that reads the host's own /etc/os-release.
func NewDetector() Detector {
	return Detector{Root: "/"}
}

// Detect returns the first matching profile, or unknown/unknown.
func (d Detector) Detect() Profile {
	data, err := os.ReadFile(filepath.Join(d.Root, OSReleasePath))
	if err != nil {
		logger.Debug("could not read %s: %v", OSReleasePath, err)
	} else if p, ok := MatchRelease(string(data)); ok {
		logger.Debug("matched %s from /%s", p, OSReleasePath)
		return p
	}

	for _, r := range markerRules {
		if _, err := os.Stat(filepath.Join(d.Root, r.needle)); err == nil {
			logger.Debug("matched %s from marker /%s", r.profile, r.needle)
			return r.profile
		}
	}
	return Profile{Unknown, UnknownManager}
}

// MatchRelease applies the ordered identity rules to os-release content.
func MatchRelease(content string) (Profile, bool) {
	lower := strings.ToLower(content)
	for _, r := range releaseRules {
		if strings.Contains(lower, r.needle) {
			return r.profile, true
		}
	}
	return Profile{Unknown, UnknownManager}, false
}
