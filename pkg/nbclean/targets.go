package nbclean

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultTargetDir is the directory cleaned when no targets are given,
// relative to the executable.
const DefaultTargetDir = "notebooks"

// DefaultTargets returns the notebooks directory next to the running executable.
func DefaultTargets() ([]string, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return []string{filepath.Join(filepath.Dir(exe), DefaultTargetDir)}, nil
}

// ExpandTargets resolves targets to document paths. A directory yields its
// direct entries ending in ext, sorted by name, as absolute paths. Anything
// else is passed through unchanged.
func ExpandTargets(targets []string, ext string) ([]string, error) {
	var paths []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil || !info.IsDir() {
			paths = append(paths, target)
			continue
		}

		entries, err := os.ReadDir(target)
		if err != nil {
			return nil, err
		}
		dir, err := filepath.Abs(target)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
				continue
			}
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
