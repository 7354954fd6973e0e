package formula

import (
	"strconv"

	"github.com/cybercalc/minisat-recipe/pkgs/buildsys"
	"github.com/cybercalc/minisat-recipe/pkgs/buildsys/cmake"
	"github.com/cybercalc/minisat-recipe/pkgs/tools"
)

// RunError reports a build tool command that exited unsuccessfully.
type RunError = buildsys.RunError

// Base carries conventions shared by CMake-based recipes. Embed it in a
// recipe type.
type Base struct{}

// CMake returns a CMake helper configured from ctx: source, binary and
// install directories, generator, toolchain, build type, and the shared/lto
// options mapped onto BUILD_SHARED_LIBS and CMAKE_INTERPROCEDURAL_OPTIMIZATION.
// Dependencies in ctx.Deps are made visible to every command it spawns.
func (Base) CMake(ctx *Context) *cmake.CMake {
	c := cmake.New(ctx.SourceDir, ctx.BuildDir, ctx.PackageDir)
	c.Output(ctx.stdout(), ctx.stderr())
	if ctx.Generator != "" {
		c.Generator(ctx.Generator)
	}
	if ctx.Toolchain != "" {
		c.Toolchain(ctx.Toolchain)
	}
	if ctx.Settings.BuildType != "" {
		c.BuildType(ctx.Settings.BuildType)
	}
	if v, ok := ctx.Options["shared"]; ok {
		c.DefineBool("BUILD_SHARED_LIBS", v == True)
	}
	if v, ok := ctx.Options["lto"]; ok {
		c.DefineBool("CMAKE_INTERPROCEDURAL_OPTIMIZATION", v == True)
	}
	c.Env("CMAKE_BUILD_PARALLEL_LEVEL", strconv.Itoa(tools.CPUCount()))
	for _, dep := range ctx.Deps {
		c.Use(dep)
	}
	return c
}
