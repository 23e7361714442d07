// Package filex contains small filesystem helpers shared by the client:
// data-directory resolution and media file reads.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureSubDir creates (if needed) and returns a subdirectory of base.
// When base is empty the current working directory is used.
func EnsureSubDir(base, dirName string) (string, error) {
	if base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		base = cwd
	}

	dir := filepath.Join(base, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ReadLocalFile reads the contents of a locally picked file. File URIs of the
// form file:///path are accepted alongside plain paths.
func ReadLocalFile(path string) ([]byte, error) {
	p := strings.TrimPrefix(path, "file://")
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// Ext returns the lowercase extension of path without the leading dot,
// or "" when the file name has no extension.
func Ext(path string) string {
	e := filepath.Ext(strings.TrimPrefix(path, "file://"))
	return strings.ToLower(strings.TrimPrefix(e, "."))
}
