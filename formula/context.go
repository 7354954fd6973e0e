package formula

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Settings are the platform settings a package is built for.
type Settings struct {
	OS        string `mapstructure:"os" json:"os"`
	Arch      string `mapstructure:"arch" json:"arch"`
	Compiler  string `mapstructure:"compiler" json:"compiler"`
	BuildType string `mapstructure:"build_type" json:"build_type"`
}

// DefaultSettings returns the settings of the host. The compiler is taken
// from $CXX when set.
func DefaultSettings() Settings {
	compiler := "gcc"
	if runtime.GOOS == "darwin" {
		compiler = "apple-clang"
	} else if runtime.GOOS == "windows" {
		compiler = "msvc"
	}
	if cxx := os.Getenv("CXX"); cxx != "" {
		compiler = filepath.Base(cxx)
	}
	return Settings{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Compiler:  compiler,
		BuildType: "Release",
	}
}

// Context is the build configuration handed to each recipe callback.
// It belongs to the orchestrator; recipes must not keep it past the call.
type Context struct {
	Settings Settings
	Options  Options

	SourceDir  string
	BuildDir   string
	PackageDir string

	// Generator selects the CMake generator; empty means the CMake default.
	Generator string
	// Toolchain is an optional CMAKE_TOOLCHAIN_FILE.
	Toolchain string

	// Deps are install prefixes of already-built dependencies.
	Deps []string

	ShouldTest bool

	Stdout io.Writer
	Stderr io.Writer

	ctx context.Context
}

// Context returns the context.Context bound to c, or context.Background.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// WithContext returns a shallow copy of c bound to ctx.
func (c *Context) WithContext(ctx context.Context) *Context {
	c2 := *c
	c2.ctx = ctx
	return &c2
}

func (c *Context) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *Context) stderr() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}
