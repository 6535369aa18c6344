package npm

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeExecutable(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPathFinderExtraDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX permission bits")
	}

	dir := t.TempDir()
	want := writeExecutable(t, dir, "npm", 0o755)

	f := NewPathFinder("", dir)
	f.lookPath = func(string) (string, error) {
		t.Error("PATH lookup should not run when an extra dir matches")
		return "", errors.New("unexpected")
	}

	got, ok := f.Find("npm")
	if !ok || got != want {
		t.Errorf("Find() = (%q, %v), want (%q, true)", got, ok, want)
	}
}

func TestPathFinderExtraFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX permission bits")
	}

	dir := t.TempDir()
	want := writeExecutable(t, dir, "npm", 0o755)

	f := NewPathFinder(want)
	got, ok := f.Find("npm")
	if !ok || got != want {
		t.Errorf("Find() = (%q, %v), want (%q, true)", got, ok, want)
	}
}

func TestPathFinderSkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX permission bits")
	}

	dir := t.TempDir()
	writeExecutable(t, dir, "npm", 0o644)

	f := NewPathFinder(dir)
	f.lookPath = func(string) (string, error) { return "/usr/bin/npm", nil }

	got, ok := f.Find("npm")
	if !ok || got != "/usr/bin/npm" {
		t.Errorf("Find() = (%q, %v), want PATH fallback", got, ok)
	}
}

func TestPathFinderFallsBackToPath(t *testing.T) {
	f := NewPathFinder(filepath.Join(t.TempDir(), "missing"))
	f.lookPath = func(name string) (string, error) {
		if name != "npm" {
			t.Errorf("lookPath(%q), want npm", name)
		}
		return "/path/to/npm", nil
	}

	got, ok := f.Find("npm")
	if !ok || got != "/path/to/npm" {
		t.Errorf("Find() = (%q, %v), want (/path/to/npm, true)", got, ok)
	}
}

func TestPathFinderNotFound(t *testing.T) {
	f := NewPathFinder()
	f.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	if got, ok := f.Find("npm"); ok {
		t.Errorf("Find() = (%q, true), want not found", got)
	}
}
