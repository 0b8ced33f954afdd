// Package fs contains utilities for working with the filesystem.
package fs

import (
	"errors"
	"io/fs"
	"os"
)

// FileExists returns true if path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
