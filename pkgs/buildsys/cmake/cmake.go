// Package cmake wraps the cmake configure/build/install/ctest workflow.
package cmake

import (
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/cybercalc/minisat-recipe/pkgs/buildsys"
	"github.com/qiniu/x/log"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake drives CMake-based builds.
type CMake struct {
	sourceDir  string
	buildDir   string
	installDir string
	generator  string
	buildType  string
	toolchain  string
	defines    map[string]defineValue
	env        map[string]string

	stdout io.Writer
	stderr io.Writer
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New returns a ready-to-use CMake.
func New(sourceDir, buildDir, installDir string) *CMake {
	return &CMake{
		sourceDir:  sourceDir,
		buildDir:   buildDir,
		installDir: installDir,
		defines:    make(map[string]defineValue),
		env:        make(map[string]string),
	}
}

// Source overrides the source directory.
func (c *CMake) Source(dir string) { c.sourceDir = dir }

// InstallDir overrides the install prefix.
func (c *CMake) InstallDir(dir string) { c.installDir = dir }

// BuildDir returns the binary directory.
func (c *CMake) BuildDir() string { return c.buildDir }

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) { c.generator = name }

// BuildType sets CMAKE_BUILD_TYPE (e.g. "Release", "Debug").
func (c *CMake) BuildType(name string) { c.buildType = name }

// Toolchain sets CMAKE_TOOLCHAIN_FILE.
func (c *CMake) Toolchain(path string) { c.toolchain = path }

// Output redirects the output of spawned commands. Nil means os.Stdout/os.Stderr.
func (c *CMake) Output(stdout, stderr io.Writer) {
	c.stdout = stdout
	c.stderr = stderr
}

// Define adds a -D<key>:STRING=<value> definition.
func (c *CMake) Define(key, value string) {
	c.defines[key] = defineValue{value: value, typeName: "STRING"}
}

// DefineBool adds a -D<key>:BOOL=ON/OFF definition.
func (c *CMake) DefineBool(key string, value bool) {
	v := "OFF"
	if value {
		v = "ON"
	}
	c.defines[key] = defineValue{value: v, typeName: "BOOL"}
}

// Definitions returns a copy of the definitions as key → value.
func (c *CMake) Definitions() map[string]string {
	out := make(map[string]string, len(c.defines))
	for k, d := range c.defines {
		out[k] = d.value
	}
	return out
}

// Env sets an environment variable for every command spawned by c.
func (c *CMake) Env(key, value string) {
	c.env[key] = value
}

// Use configures the environment so that CMake and compilers find headers,
// libraries and pkg-config files of a dependency installed at root.
func (c *CMake) Use(root string) {
	includeDir := filepath.Join(root, "include")
	libDir := filepath.Join(root, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	if _, err := os.Stat(pkgconfigDir); err == nil {
		c.prependPath("PKG_CONFIG_PATH", pkgconfigDir)
	}
	c.prependPath("CMAKE_PREFIX_PATH", root)
	if _, err := os.Stat(includeDir); err == nil {
		c.prependPath("CMAKE_INCLUDE_PATH", includeDir)
	}
	if _, err := os.Stat(libDir); err == nil {
		c.prependPath("CMAKE_LIBRARY_PATH", libDir)
	}

	if runtime.GOOS == "windows" {
		if _, err := os.Stat(includeDir); err == nil {
			c.prependPath("INCLUDE", includeDir)
		}
		if _, err := os.Stat(libDir); err == nil {
			c.prependPath("LIB", libDir)
		}
	} else {
		if _, err := os.Stat(includeDir); err == nil {
			c.appendFlag("CPPFLAGS", "-I"+includeDir)
		}
		if _, err := os.Stat(libDir); err == nil {
			c.appendFlag("LDFLAGS", "-L"+libDir)
		}
	}
}

// Configure runs "cmake -S <source> -B <build>" with all configured options.
// Extra args are appended at the end.
func (c *CMake) Configure(ctx context.Context, args ...string) error {
	if err := os.MkdirAll(c.buildDir, 0o755); err != nil {
		return err
	}
	cmakeArgs := []string{"-S", c.sourceDir, "-B", c.buildDir}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	if c.installDir != "" {
		c.Define("CMAKE_INSTALL_PREFIX", c.installDir)
	}
	if c.toolchain != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", c.toolchain)
	}
	if c.buildType != "" && !c.IsMultiConfiguration() {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	cmakeArgs = append(cmakeArgs, args...)
	return c.run(ctx, "", "cmake", cmakeArgs)
}

// Build runs "cmake --build <build>" with optional extra arguments.
func (c *CMake) Build(ctx context.Context, args ...string) error {
	cmakeArgs := []string{"--build", c.buildDir}
	if c.buildType != "" {
		cmakeArgs = append(cmakeArgs, "--config", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, args...)
	return c.run(ctx, "", "cmake", cmakeArgs)
}

// Install runs "cmake --install <build>" with optional extra arguments.
func (c *CMake) Install(ctx context.Context, args ...string) error {
	cmakeArgs := []string{"--install", c.buildDir}
	if c.installDir != "" {
		cmakeArgs = append(cmakeArgs, "--prefix", c.installDir)
	}
	if c.buildType != "" && c.IsMultiConfiguration() {
		cmakeArgs = append(cmakeArgs, "--config", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, args...)
	return c.run(ctx, "", "cmake", cmakeArgs)
}

// IsMultiConfiguration reports whether the generator builds several
// configurations from one binary directory, so the configuration has to be
// chosen at build and test time.
func (c *CMake) IsMultiConfiguration() bool {
	g := c.generator
	return strings.HasPrefix(g, "Visual Studio") ||
		g == "Xcode" ||
		g == "Ninja Multi-Config"
}

// BuildConfig returns the active build type.
func (c *CMake) BuildConfig() string {
	return c.buildType
}

// TestCommand returns the ctest command line running jobs tests in parallel.
func (c *CMake) TestCommand(jobs int) []string {
	if jobs < 1 {
		jobs = 1
	}
	cmd := []string{"ctest", "-j", strconv.Itoa(jobs)}
	if cfg := c.BuildConfig(); c.IsMultiConfiguration() && cfg != "" {
		cmd = append(cmd, "-C", cfg)
	}
	return cmd
}

// Test runs ctest in the build directory with the environment of c.
func (c *CMake) Test(ctx context.Context, jobs int, args ...string) error {
	cmd := c.TestCommand(jobs)
	return c.run(ctx, c.buildDir, cmd[0], append(cmd[1:], args...))
}

// OutputDir returns installDir if set, otherwise buildDir.
func (c *CMake) OutputDir() string {
	if c.installDir != "" {
		return c.installDir
	}
	return c.buildDir
}

// Environ returns the environment spawned commands run with.
func (c *CMake) Environ() []string {
	return mergeEnv(os.Environ(), c.env)
}

func (c *CMake) run(ctx context.Context, dir, name string, args []string) error {
	log.Debug("cmake: run", name, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = orDefault(c.stdout, os.Stdout)
	cmd.Stderr = orDefault(c.stderr, os.Stderr)
	if len(c.env) > 0 {
		cmd.Env = c.Environ()
	}
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &buildsys.RunError{
			Cmd:      strings.TrimSpace(name + " " + strings.Join(args, " ")),
			ExitCode: code,
			Err:      err,
		}
	}
	return nil
}

func (c *CMake) definesArgs() []string {
	if len(c.defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.defines))
	for k := range c.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		d := c.defines[k]
		args = append(args, "-D"+k+":"+d.typeName+"="+d.value)
	}
	return args
}

// prependPath prepends value to a PATH-style variable of c's environment,
// seeded from the process environment.
func (c *CMake) prependPath(key, value string) {
	sep := ":"
	if runtime.GOOS == "windows" {
		sep = ";"
	}
	if cur := c.lookupEnv(key); cur != "" {
		value += sep + cur
	}
	c.env[key] = value
}

// appendFlag appends a space-separated flag to a variable of c's environment.
func (c *CMake) appendFlag(key, flag string) {
	if cur := c.lookupEnv(key); cur != "" {
		flag = cur + " " + flag
	}
	c.env[key] = flag
}

func (c *CMake) lookupEnv(key string) string {
	if v, ok := c.env[key]; ok {
		return v
	}
	return os.Getenv(key)
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base)+len(override))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	maps.Copy(envMap, override)
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}

func orDefault(w io.Writer, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
