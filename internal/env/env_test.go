package env

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/adrg/xdg"
)

func TestWorkDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CACHE_HOME is only honoured on Linux")
	}
	tempDir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", tempDir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	dir, err := WorkDir()
	if err != nil {
		t.Fatalf("WorkDir() returned error: %v", err)
	}
	if want := filepath.Join(tempDir, appName); dir != want {
		t.Errorf("WorkDir() = %q, want %q", dir, want)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("WorkDir() created a file instead of a directory")
	}
	if mode := info.Mode().Perm(); mode != 0o700 {
		t.Errorf("Directory has permissions %v, want %v", mode, os.FileMode(0o700))
	}
}

// TestWorkDirIdempotent verifies that repeated calls return the same
// directory without side effects.
func TestWorkDirIdempotent(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	dir1, err := WorkDir()
	if err != nil {
		t.Fatalf("First WorkDir() call failed: %v", err)
	}
	dir2, err := WorkDir()
	if err != nil {
		t.Fatalf("Second WorkDir() call failed: %v", err)
	}
	if dir1 != dir2 {
		t.Errorf("WorkDir() not idempotent: first call = %q, second call = %q", dir1, dir2)
	}
}
