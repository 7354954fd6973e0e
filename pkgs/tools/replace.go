// Package tools provides helpers recipes use to prepare and build sources.
package tools

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// ErrPatternNotFound is returned by ReplaceInFile when the search text does
// not occur in the file.
var ErrPatternNotFound = errors.New("pattern not found")

// ReplaceInFile replaces every occurrence of search in the file at path with
// replace. If search does not occur the file is left untouched and the
// returned error wraps ErrPatternNotFound.
func ReplaceInFile(path, search, replace string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !bytes.Contains(data, []byte(search)) {
		return fmt.Errorf("%s: %w: %q", path, ErrPatternNotFound, search)
	}
	data = bytes.ReplaceAll(data, []byte(search), []byte(replace))
	return os.WriteFile(path, data, info.Mode().Perm())
}
