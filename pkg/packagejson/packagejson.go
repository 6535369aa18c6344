// Package packagejson reads the package.json of a JavaScript package.
//
// The bridge never interprets dependencies itself; npm does that. The
// manifest is read only to report what npm is about to work on.
package packagejson

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/composer-npm-bridge/pkg/errors"
)

// File is the manifest file name.
const File = "package.json"

// Manifest holds the fields of package.json the bridge reports on.
type Manifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Private          bool              `json:"private"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`

	// Exists is false when dir has no package.json.
	Exists bool `json:"-"`

	// Warnings lists non-fatal problems, such as an invalid package name.
	Warnings []string `json:"-"`
}

// DependencyCount returns the number of dependencies npm installs. Development
// dependencies are counted only when includeDev is set.
func (m *Manifest) DependencyCount(includeDev bool) int {
	n := len(m.Dependencies)
	if includeDev {
		n += len(m.DevDependencies)
	}
	return n
}

// Read reads dir/package.json. A missing file yields a Manifest with Exists
// set to false and no error.
func Read(dir string) (*Manifest, error) {
	path := filepath.Join(dir, File)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return &Manifest{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	m.Exists = true

	if m.Name != "" {
		if err := errors.ValidateNpmPackageName(m.Name); err != nil {
			m.Warnings = append(m.Warnings, errors.UserMessage(err))
		}
	}
	return &m, nil
}
