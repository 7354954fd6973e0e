package formula

import (
	"context"
	"path/filepath"
	"slices"
	"strconv"
	"testing"

	"github.com/cybercalc/minisat-recipe/pkgs/tools"
)

func TestPackageInfo_PkgConfig(t *testing.T) {
	info := NewPackageInfo()
	info.CppInfo.Libs = append(info.CppInfo.Libs, "minisat")
	info.CppInfo.Defines = []string{"MINISAT_STATIC"}

	prefix := filepath.Join("opt", "minisat")
	want := "-DMINISAT_STATIC -I" + filepath.Join(prefix, "include") +
		" -L" + filepath.Join(prefix, "lib") + " -lminisat"
	if got := info.PkgConfig(prefix); got != want {
		t.Errorf("PkgConfig() = %q, want %q", got, want)
	}
}

func TestContext_Context(t *testing.T) {
	c := &Context{SourceDir: "src"}
	if c.Context() != context.Background() {
		t.Error("Context() without binding should be context.Background()")
	}

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	c2 := c.WithContext(ctx)
	if c2.Context().Value(key{}) != "v" {
		t.Error("WithContext() did not bind the context")
	}
	if c2.SourceDir != "src" {
		t.Errorf("WithContext() SourceDir = %q, want %q", c2.SourceDir, "src")
	}
	if c.Context() != context.Background() {
		t.Error("WithContext() modified the receiver")
	}
}

func TestBase_CMakeOptions(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantShared string
		wantLTO    string
	}{
		{"static", Options{"shared": False, "lto": False}, "OFF", "OFF"},
		{"shared", Options{"shared": True, "lto": False}, "ON", "OFF"},
		{"lto", Options{"shared": False, "lto": True}, "OFF", "ON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{
				Settings:   Settings{BuildType: "Release"},
				Options:    tt.opts,
				SourceDir:  "src",
				BuildDir:   "build",
				PackageDir: "pkg",
			}
			defs := Base{}.CMake(ctx).Definitions()
			if defs["BUILD_SHARED_LIBS"] != tt.wantShared {
				t.Errorf("BUILD_SHARED_LIBS = %q, want %q", defs["BUILD_SHARED_LIBS"], tt.wantShared)
			}
			if defs["CMAKE_INTERPROCEDURAL_OPTIMIZATION"] != tt.wantLTO {
				t.Errorf("CMAKE_INTERPROCEDURAL_OPTIMIZATION = %q, want %q",
					defs["CMAKE_INTERPROCEDURAL_OPTIMIZATION"], tt.wantLTO)
			}
		})
	}
}

func TestBase_CMakeWithoutOptions(t *testing.T) {
	c := Base{}.CMake(&Context{BuildDir: "build", PackageDir: "pkg"})
	if defs := c.Definitions(); len(defs) != 0 {
		t.Errorf("Definitions() = %v, want none", defs)
	}
	if got := c.OutputDir(); got != "pkg" {
		t.Errorf("OutputDir() = %q, want %q", got, "pkg")
	}
}

func TestBase_CMakeEnv(t *testing.T) {
	dep := t.TempDir()
	t.Setenv("CMAKE_PREFIX_PATH", "")

	env := Base{}.CMake(&Context{BuildDir: "build", Deps: []string{dep}}).Environ()
	for _, want := range []string{
		"CMAKE_BUILD_PARALLEL_LEVEL=" + strconv.Itoa(tools.CPUCount()),
		"CMAKE_PREFIX_PATH=" + dep,
	} {
		if !slices.Contains(env, want) {
			t.Errorf("Environ() lacks %q", want)
		}
	}
}
