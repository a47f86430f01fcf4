// Package project provides utilities for detecting project root directories.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wizzomafizzo/precommit/internal/constants"
)

// markers identify a repository root. A worktree or submodule has a .git file
// rather than a directory, so only existence is checked.
var markers = []string{".git"}

// FindRoot finds the project root directory starting from the working directory.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return FindRootFrom(cwd), nil
}

// FindRootFrom finds the project root starting from dir. The
// PRECOMMIT_PROJECT_DIR environment variable wins when it names a directory;
// otherwise the nearest ancestor holding a marker is used, falling back to dir.
func FindRootFrom(dir string) string {
	if root, found := checkProjectDirEnv(); found {
		return root
	}
	if root, found := FindProjectMarkerFrom(dir); found {
		return root
	}
	return dir
}

// FindProjectMarkerFrom searches for project root markers starting from startDir.
func FindProjectMarkerFrom(startDir string) (string, bool) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}

	for {
		if hasProjectMarker(currentDir) {
			return currentDir, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", false
}

func checkProjectDirEnv() (string, bool) {
	dir := os.Getenv(constants.ProjectDirEnv)
	if dir == "" {
		return "", false
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", false
	}

	return abs, true
}

func hasProjectMarker(dir string) bool {
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
