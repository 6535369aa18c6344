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

// InstalledFile is the local repository file, relative to the vendor dir.
const InstalledFile = "composer/installed.json"

type installedPackage struct {
	Name        string                     `json:"name"`
	Version     string                     `json:"version"`
	Type        string                     `json:"type"`
	Require     map[string]string          `json:"require"`
	RequireDev  map[string]string          `json:"require-dev"`
	Extra       map[string]json.RawMessage `json:"extra"`
	InstallPath string                     `json:"install-path"`
}

// installedV2 is the Composer 2 layout. Composer 1 writes a bare array.
type installedV2 struct {
	Packages        []installedPackage `json:"packages"`
	DevPackageNames []string           `json:"dev-package-names"`
}

// readInstalled returns the local repository below vendorDir. A missing
// installed.json means nothing is installed yet.
func readInstalled(vendorDir string) ([]*Package, error) {
	path := filepath.Join(vendorDir, filepath.FromSlash(InstalledFile))
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	entries, devNames, err := decodeInstalled(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}

	dev := make(map[string]bool, len(devNames))
	for _, name := range devNames {
		dev[strings.ToLower(name)] = true
	}

	packages := make([]*Package, 0, len(entries))
	for _, e := range entries {
		if err := errors.ValidateComposerPackageName(e.Name); err != nil {
			return nil, err
		}
		installPath, err := resolveInstallPath(vendorDir, e)
		if err != nil {
			return nil, err
		}
		packages = append(packages, &Package{
			Name:        e.Name,
			Version:     e.Version,
			Type:        e.Type,
			Require:     e.Require,
			RequireDev:  e.RequireDev,
			Extra:       e.Extra,
			InstallPath: installPath,
			Dev:         dev[strings.ToLower(e.Name)],
		})
	}
	return packages, nil
}

func decodeInstalled(data []byte) ([]installedPackage, []string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []installedPackage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, nil, err
		}
		return entries, nil, nil
	}

	var v2 installedV2
	if err := json.Unmarshal(trimmed, &v2); err != nil {
		return nil, nil, err
	}
	return v2.Packages, v2.DevPackageNames, nil
}

func resolveInstallPath(vendorDir string, e installedPackage) (string, error) {
	if e.InstallPath == "" {
		return filepath.Join(vendorDir, filepath.FromSlash(strings.ToLower(e.Name))), nil
	}
	if err := errors.ValidatePath(e.InstallPath); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidManifest, err, "install path of %s", e.Name)
	}
	p := filepath.FromSlash(e.InstallPath)
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Join(vendorDir, "composer", p), nil
}
