// Package minisat packages the MiniSat SAT solver library.
package minisat

import (
	"path/filepath"

	"github.com/cybercalc/minisat-recipe/formula"
	"github.com/cybercalc/minisat-recipe/internal/buildinfo"
	"github.com/cybercalc/minisat-recipe/pkgs/tools"
	"github.com/qiniu/x/log"
)

// ProjectLine is the line of the upstream CMakeLists.txt the build info is
// spliced after.
const ProjectLine = "project(MiniSat VERSION 2.2 LANGUAGES CXX)"

// LibName is the library consumers link against.
const LibName = "minisat"

const url = "https://demeeslx0105/cybercalc/external-deps/minisat"

// Recipe builds MiniSat with CMake.
type Recipe struct {
	formula.Base
}

var _ formula.Recipe = (*Recipe)(nil)

// New returns the MiniSat recipe.
func New() *Recipe {
	return &Recipe{}
}

func (r *Recipe) Descriptor() formula.Descriptor {
	return formula.Descriptor{
		Name:        "minisat",
		URL:         url,
		Homepage:    url,
		License:     "MIT",
		Author:      "Niklas Sorensson <niklasso@gmail.com>",
		Description: "A minimalistic and high-performance SAT solver",
		SCM: formula.SCM{
			Type:     "git",
			URL:      formula.Auto,
			Revision: formula.Auto,
		},
	}
}

func (r *Recipe) Options() formula.OptionSet {
	return formula.OptionSet{
		"shared": formula.BoolOption(false),
		"lto":    formula.BoolOption(false),
	}
}

// Source splices the generated build info into CMakeLists.txt right after
// the project() declaration.
func (r *Recipe) Source(ctx *formula.Context) error {
	return tools.ReplaceInFile(
		filepath.Join(ctx.SourceDir, "CMakeLists.txt"),
		ProjectLine,
		ProjectLine+"\n"+buildinfo.Splice,
	)
}

func (r *Recipe) Build(ctx *formula.Context) error {
	c := r.CMake(ctx)
	if err := c.Configure(ctx.Context()); err != nil {
		return err
	}
	if err := c.Build(ctx.Context()); err != nil {
		return err
	}
	if !ctx.ShouldTest {
		return nil
	}
	log.Debug("minisat: cmake definitions", c.Definitions())
	return c.Test(ctx.Context(), tools.CPUCount())
}

func (r *Recipe) Package(ctx *formula.Context) error {
	return r.CMake(ctx).Install(ctx.Context())
}

func (r *Recipe) PackageInfo(_ *formula.Context, info *formula.PackageInfo) {
	info.CppInfo.Libs = append(info.CppInfo.Libs, LibName)
}
