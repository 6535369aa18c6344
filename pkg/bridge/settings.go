package bridge

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/composer-npm-bridge/pkg/composer"
	"github.com/matzehuels/composer-npm-bridge/pkg/errors"
)

const (
	// ExtraKey is the composer.json extra section holding bridge settings.
	ExtraKey = "npm-bridge"

	// ConfigFile is the optional per-project settings file.
	ConfigFile = "npm-bridge.toml"

	// DisableEnv disables the bridge when set to any non-empty value.
	DisableEnv = "COMPOSER_NPM_BRIDGE_DISABLE"
)

// Settings controls how npm is run for one package. Nil fields are unset and
// fall back to lower-precedence sources.
type Settings struct {
	// Timeout overrides the npm execution timeout in seconds.
	Timeout *int `json:"timeout" toml:"timeout"`

	// Optional skips the package with a warning when npm is unavailable.
	Optional *bool `json:"optional" toml:"optional"`

	// Disable skips the package entirely.
	Disable *bool `json:"disable" toml:"disable"`

	// Executable is an npm binary, or a directory holding one, searched
	// before PATH. Only the project settings file sets it.
	Executable string `json:"-" toml:"executable"`
}

// Merge returns s with every field set in o taking precedence.
func (s Settings) Merge(o Settings) Settings {
	if o.Timeout != nil {
		s.Timeout = o.Timeout
	}
	if o.Optional != nil {
		s.Optional = o.Optional
	}
	if o.Disable != nil {
		s.Disable = o.Disable
	}
	if o.Executable != "" {
		s.Executable = o.Executable
	}
	return s
}

// IsOptional reports whether a missing npm is tolerated.
func (s Settings) IsOptional() bool {
	return s.Optional != nil && *s.Optional
}

// IsDisabled reports whether npm must not run.
func (s Settings) IsDisabled() bool {
	return s.Disable != nil && *s.Disable
}

// Validate rejects settings npm cannot honour.
func (s Settings) Validate() error {
	if s.Timeout != nil && *s.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative, got %d", *s.Timeout)
	}
	return nil
}

// PackageSettings reads the extra.npm-bridge section of pkg.
func PackageSettings(pkg *composer.Package) (Settings, error) {
	var s Settings
	if _, err := pkg.ExtraValue(ExtraKey, &s); err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid %s settings", ExtraKey)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadFile reads ConfigFile from dir. A missing file yields empty settings.
func LoadFile(dir string) (Settings, error) {
	path := filepath.Join(dir, ConfigFile)
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	if s.Executable != "" && !filepath.IsAbs(s.Executable) {
		s.Executable = filepath.Join(dir, s.Executable)
	}
	return s, nil
}

// EnvSettings derives settings from the environment.
func EnvSettings(getenv func(string) string) Settings {
	if getenv == nil {
		getenv = os.Getenv
	}
	if getenv(DisableEnv) != "" {
		disable := true
		return Settings{Disable: &disable}
	}
	return Settings{}
}
