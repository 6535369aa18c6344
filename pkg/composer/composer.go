package composer

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/composer-npm-bridge/pkg/errors"
)

const (
	// ManifestFile is the name of the root manifest.
	ManifestFile = "composer.json"

	// DefaultVendorDir is used when composer.json sets no config.vendor-dir.
	DefaultVendorDir = "vendor"
)

// Package is a Composer package, either the root project or an installed
// dependency.
type Package struct {
	Name       string
	Version    string
	Type       string
	Require    map[string]string
	RequireDev map[string]string
	Extra      map[string]json.RawMessage

	// InstallPath is the absolute directory the package is installed in.
	// It is empty for the root package.
	InstallPath string

	// Dev reports whether the package was installed for require-dev only.
	// Only Composer 2 records this.
	Dev bool
}

// Requires reports whether the package depends on name. Development
// requirements are consulted only when includeDev is set.
func (p *Package) Requires(name string, includeDev bool) bool {
	if hasKey(p.Require, name) {
		return true
	}
	return includeDev && hasKey(p.RequireDev, name)
}

// ExtraValue decodes extra[key] into v. The result is false when the key is
// not present.
func (p *Package) ExtraValue(key string, v any) (bool, error) {
	raw, ok := p.Extra[key]
	if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s: extra.%s", p.displayName(), key)
	}
	return true, nil
}

func (p *Package) displayName() string {
	if p.Name == "" {
		return "root package"
	}
	return p.Name
}

func hasKey(m map[string]string, name string) bool {
	for k := range m {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// Project is a Composer project on disk.
type Project struct {
	// Dir is the absolute project directory.
	Dir string

	// VendorDir is the absolute vendor directory.
	VendorDir string

	// Root is the package described by composer.json.
	Root *Package

	// Packages is the local repository in installed.json order.
	Packages []*Package
}

// Load reads the project in dir.
func Load(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", dir)
	}

	manifest, err := readManifest(filepath.Join(abs, ManifestFile))
	if err != nil {
		return nil, err
	}

	vendorDir, err := resolveVendorDir(abs, manifest.Config.VendorDir)
	if err != nil {
		return nil, err
	}

	packages, err := readInstalled(vendorDir)
	if err != nil {
		return nil, err
	}

	return &Project{
		Dir:       abs,
		VendorDir: vendorDir,
		Root:      manifest.toPackage(),
		Packages:  packages,
	}, nil
}

// Package returns the installed package called name.
func (p *Project) Package(name string) (*Package, bool) {
	for _, pkg := range p.Packages {
		if strings.EqualFold(pkg.Name, name) {
			return pkg, true
		}
	}
	return nil, false
}

func resolveVendorDir(projectDir, configured string) (string, error) {
	if configured == "" {
		return filepath.Join(projectDir, DefaultVendorDir), nil
	}
	if err := errors.ValidatePath(configured); err != nil {
		return "", err
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured), nil
	}
	return filepath.Join(projectDir, configured), nil
}

type manifestFile struct {
	Name       string                     `json:"name"`
	Version    string                     `json:"version"`
	Type       string                     `json:"type"`
	Require    map[string]string          `json:"require"`
	RequireDev map[string]string          `json:"require-dev"`
	Extra      map[string]json.RawMessage `json:"extra"`
	Config     struct {
		VendorDir string `json:"vendor-dir"`
	} `json:"config"`
}

func (m *manifestFile) toPackage() *Package {
	return &Package{
		Name:       m.Name,
		Version:    m.Version,
		Type:       m.Type,
		Require:    m.Require,
		RequireDev: m.RequireDev,
		Extra:      m.Extra,
	}
}

func readManifest(path string) (*manifestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	var m manifestFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	return &m, nil
}
