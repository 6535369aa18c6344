package npm

import (
	"os"
	"os/exec"
	"path/filepath"
)

// PathFinder resolves executables from a list of extra locations and then
// from PATH. Only POSIX systems are supported, matching ShellExecutor.
type PathFinder struct {
	// ExtraDirs are searched before PATH. An entry may name a directory or
	// the executable itself.
	ExtraDirs []string

	lookPath func(string) (string, error)
}

// NewPathFinder creates a PathFinder that searches extraDirs before PATH.
// Empty entries are ignored.
func NewPathFinder(extraDirs ...string) *PathFinder {
	f := &PathFinder{lookPath: exec.LookPath}
	for _, dir := range extraDirs {
		if dir != "" {
			f.ExtraDirs = append(f.ExtraDirs, dir)
		}
	}
	return f
}

// Find implements ExecutableFinder.
func (f *PathFinder) Find(name string) (string, bool) {
	for _, entry := range f.ExtraDirs {
		if path, ok := findIn(entry, name); ok {
			return path, true
		}
	}

	lookPath := f.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

func findIn(entry, name string) (string, bool) {
	info, err := os.Stat(entry)
	if err != nil {
		return "", false
	}
	if !info.IsDir() {
		if filepath.Base(entry) == name && isExecutable(info) {
			return entry, true
		}
		return "", false
	}
	path := filepath.Join(entry, name)
	if info, err := os.Stat(path); err == nil && !info.IsDir() && isExecutable(info) {
		return path, true
	}
	return "", false
}

func isExecutable(info os.FileInfo) bool {
	return info.Mode()&0o111 != 0
}
