package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Options are the raw inputs a RunConfig is assembled from. Empty paths fall
// back to XDG defaults.
type Options struct {
	DryRun        bool
	Uninstall     bool
	Debug         bool
	LogPath       string
	RepoDir       string
	SourceArchive string
	ConfigPath    string
	StatePath     string
	Root          string
}

// Build resolves defaults, loads the settings file if one exists and returns
// the immutable run configuration.
func Build(opts Options) (RunConfig, error) {
	cfg := RunConfig{
		DryRun:        opts.DryRun,
		Uninstall:     opts.Uninstall,
		Debug:         opts.Debug,
		LogPath:       orDefault(opts.LogPath, DefaultLogPath),
		RepoDir:       orDefault(opts.RepoDir, DefaultRepoDir),
		SourceArchive: opts.SourceArchive,
		ConfigPath:    orDefault(opts.ConfigPath, FindConfigFile),
		StatePath:     orDefault(opts.StatePath, DefaultStatePath),
		Root:          opts.Root,
		Settings:      DefaultSettings(),
	}
	if cfg.Root == "" {
		cfg.Root = "/"
	}

	if cfg.ConfigPath != "" {
		settings, err := LoadSettings(cfg.ConfigPath)
		if err != nil {
			return RunConfig{}, err
		}
		cfg.Settings = settings
	}
	return cfg, nil
}

func orDefault(v string, def func() string) string {
	if v != "" {
		return v
	}
	return def()
}

// DefaultLogPath is the log file under the XDG state directory.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// DefaultRepoDir is where the source checkout lives, under the XDG cache directory.
func DefaultRepoDir() string {
	return filepath.Join(xdg.CacheHome, AppName, "src")
}

// DefaultStatePath is the install record file under the XDG state directory.
func DefaultStatePath() string {
	return filepath.Join(xdg.StateHome, AppName, "state.json")
}

// FindConfigFile searches the XDG config directories for config.yaml, then
// config.toml. It returns "" when neither exists.
func FindConfigFile() string {
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		if path, err := xdg.SearchConfigFile(filepath.Join(AppName, name)); err == nil {
			return path
		}
	}
	return ""
}

// EnvEnabled interprets a boolean-ish environment toggle such as DEBUG=1.
func EnvEnabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// LoadSettings reads a YAML or TOML settings file (chosen by extension) over
// the defaults and validates the result.
func LoadSettings(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	s := DefaultSettings()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(raw, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	s = s.normalized()
	if err := Validate(s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// normalized lowercases colors and strips a leading '#'.
func (s Settings) normalized() Settings {
	s.AllKeysColor = NormalizeColor(s.AllKeysColor)
	s.FKeysColor = NormalizeColor(s.FKeysColor)
	if len(s.Groups) == 0 {
		s.Groups = nil
		return s
	}
	groups := make([]GroupColor, len(s.Groups))
	for i, g := range s.Groups {
		groups[i] = GroupColor{Name: strings.ToLower(strings.TrimSpace(g.Name)), Color: NormalizeColor(g.Color)}
	}
	s.Groups = groups
	return s
}

// NormalizeColor trims whitespace and a leading "#" and lowercases c, so
// "#00FF00" becomes "00ff00".
func NormalizeColor(c string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c), "#"))
}

var rgbHex = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		return rgbHex.MatchString(fl.Field().String())
	})
	// Report fields by their settings-file names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks settings against their struct tags.
func Validate(s Settings) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Settings.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s (got %q)", field, fe.Tag(), fe.Param(), fmt.Sprint(fe.Value())))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s (got %q)", field, fe.Tag(), fmt.Sprint(fe.Value())))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// IsRGBHex reports whether c is a six-digit hex color without prefix.
func IsRGBHex(c string) bool {
	return rgbHex.MatchString(c)
}
