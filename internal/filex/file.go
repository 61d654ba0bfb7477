// Package filex holds file system helpers for the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureSubDir creates dirName, relative to the working directory unless
// absolute, and returns its absolute path.
func EnsureSubDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// WriteFile stores data as dir/name. The content goes to a temporary file
// first, so readers never see a partial file.
func WriteFile(dir, name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	target := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("rename to %s: %w", target, err)
	}
	return target, nil
}
