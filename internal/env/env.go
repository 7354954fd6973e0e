package env

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "llar-minisat"

// WorkDir returns the default workspace for built packages,
// $XDG_CACHE_HOME/llar-minisat, creating it with 0700 permissions.
//
//	Linux:   ~/.cache/llar-minisat
//	macOS:   ~/Library/Caches/llar-minisat
func WorkDir() (string, error) {
	dir := filepath.Join(xdg.CacheHome, appName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
