package config

// AppName is used for default state, cache and config locations.
const AppName = "ledkb-setup"

// GroupColor sets one key group of the keyboard profile.
// - Name: group known to the keyboard tool (fkeys, logo, arrows, ...).
// - Color: RRGGBB hex value.
type GroupColor struct {
	Name  string `yaml:"name" toml:"name" validate:"required,oneof=logo indicators multimedia fkeys modifiers arrows numeric functions keys gkeys"`
	Color string `yaml:"color" toml:"color" validate:"required,rgbhex"`
}

// Settings is the file-backed part of the configuration. Every field has a
// default, so the settings file is optional and may set any subset.
// - Tool: keyboard-control binary, also the unit name stem.
// - RepoURL: source repository cloned on pacman hosts.
// - ProfilePath: where the static profile is written and loaded from.
// - ServiceUnit: boot-time unit that re-applies the profile.
// - AllKeysColor / FKeysColor: the two colors every profile carries.
// - Groups: extra group colors rendered after the fkeys line.
// - BuildTarget: make target that builds the binary.
// - BuildPackages: pacman packages needed to build from source.
// - AptPackages: packages that provide the prebuilt tool on apt hosts.
type Settings struct {
	Tool          string       `yaml:"tool" toml:"tool" validate:"required,excludesall=/"`
	RepoURL       string       `yaml:"repo_url" toml:"repo_url" validate:"required"`
	ProfilePath   string       `yaml:"profile_path" toml:"profile_path" validate:"required,startswith=/"`
	ServiceUnit   string       `yaml:"service_unit" toml:"service_unit" validate:"required"`
	AllKeysColor  string       `yaml:"all_keys_color" toml:"all_keys_color" validate:"required,rgbhex"`
	FKeysColor    string       `yaml:"fkeys_color" toml:"fkeys_color" validate:"required,rgbhex"`
	Groups        []GroupColor `yaml:"groups" toml:"groups" validate:"dive"`
	BuildTarget   string       `yaml:"build_target" toml:"build_target" validate:"required"`
	BuildPackages []string     `yaml:"build_packages" toml:"build_packages" validate:"dive,required"`
	AptPackages   []string     `yaml:"apt_packages" toml:"apt_packages" validate:"min=1,dive,required"`
}

// DefaultSettings targets g810-led from its upstream repository.
func DefaultSettings() Settings {
	return Settings{
		Tool:          "g810-led",
		RepoURL:       "https://github.com/MatMoul/g810-led.git",
		ProfilePath:   "/etc/g810-led/profile",
		ServiceUnit:   "g810-led.service",
		AllKeysColor:  "ffffff",
		FKeysColor:    "ff0000",
		BuildTarget:   "bin",
		BuildPackages: []string{"git", "base-devel", "hidapi"},
		AptPackages:   []string{"g810-led"},
	}
}

// RunConfig is built once from flags, environment and the settings file, then
// passed by value to every component. Nothing reads process state afterwards.
type RunConfig struct {
	DryRun    bool
	Uninstall bool
	Debug     bool

	LogPath       string
	RepoDir       string
	SourceArchive string
	ConfigPath    string
	StatePath     string
	// Root is the filesystem root for host detection.
	Root string

	Settings Settings
}
