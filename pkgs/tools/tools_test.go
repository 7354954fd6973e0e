package tools

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestReplaceInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CMakeLists.txt")
	if err := os.WriteFile(path, []byte("a\nproject(x)\nb\n"), 0o640); err != nil {
		t.Fatal(err)
	}

	if err := ReplaceInFile(path, "project(x)", "project(x)\ninclude(y)"); err != nil {
		t.Fatalf("ReplaceInFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "a\nproject(x)\ninclude(y)\nb\n"; got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
	if runtime.GOOS != "windows" {
		info, _ := os.Stat(path)
		if info.Mode().Perm() != 0o640 {
			t.Errorf("mode = %v, want %v", info.Mode().Perm(), os.FileMode(0o640))
		}
	}
}

func TestReplaceInFileAllOccurrences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	os.WriteFile(path, []byte("x-x-x"), 0o644)

	if err := ReplaceInFile(path, "x", "yy"); err != nil {
		t.Fatalf("ReplaceInFile() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "yy-yy-yy" {
		t.Errorf("content = %q, want %q", data, "yy-yy-yy")
	}
}

func TestReplaceInFilePatternNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CMakeLists.txt")
	orig := []byte("project(Other)\n")
	os.WriteFile(path, orig, 0o644)

	err := ReplaceInFile(path, "project(x)", "whatever")
	if !errors.Is(err, ErrPatternNotFound) {
		t.Fatalf("ReplaceInFile() error = %v, want ErrPatternNotFound", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != string(orig) {
		t.Errorf("file modified on failure: %q", data)
	}
}

func TestReplaceInFileMissing(t *testing.T) {
	err := ReplaceInFile(filepath.Join(t.TempDir(), "nope"), "a", "b")
	if err == nil || errors.Is(err, ErrPatternNotFound) {
		t.Fatalf("ReplaceInFile() error = %v, want a not-exist error", err)
	}
	if !os.IsNotExist(err) {
		t.Errorf("ReplaceInFile() error = %v, want os.IsNotExist", err)
	}
}

func TestCPUCount(t *testing.T) {
	n := CPUCount()
	if n < 1 {
		t.Fatalf("CPUCount() = %d, want >= 1", n)
	}
	if n > runtime.NumCPU() {
		t.Errorf("CPUCount() = %d, exceeds runtime.NumCPU() = %d", n, runtime.NumCPU())
	}
}
