package formula

import (
	"path/filepath"
	"strings"
)

// -----------------------------------------------------------------------------

// Descriptor is the identity of a package.
type Descriptor struct {
	Name        string
	Version     string
	URL         string
	Homepage    string
	License     string
	Author      string
	Description string
	SCM         SCM
}

// Auto asks the orchestrator to take an SCM field from the checkout.
const Auto = "auto"

// SCM locates the upstream sources of a package.
type SCM struct {
	Type     string // "git"
	URL      string // remote URL or Auto
	Revision string // commit, tag or Auto
}

// -----------------------------------------------------------------------------

// Recipe tells the orchestrator how to obtain, build and package a library.
//
// The orchestrator calls Source, Build, Package and PackageInfo in that order
// and never concurrently for the same Context.
type Recipe interface {
	Descriptor() Descriptor
	Options() OptionSet

	// Source prepares the checkout in ctx.SourceDir.
	Source(ctx *Context) error

	// Build configures and compiles in ctx.BuildDir, running tests if
	// ctx.ShouldTest is set.
	Build(ctx *Context) error

	// Package installs artifacts into ctx.PackageDir.
	Package(ctx *Context) error

	// PackageInfo declares what downstream consumers link against.
	PackageInfo(ctx *Context, info *PackageInfo)
}

// -----------------------------------------------------------------------------

// CppInfo describes how to consume a packaged C/C++ library. Directories are
// relative to the package root.
type CppInfo struct {
	Libs        []string
	IncludeDirs []string
	LibDirs     []string
	BinDirs     []string
	Defines     []string
}

// PackageInfo is filled by Recipe.PackageInfo.
type PackageInfo struct {
	CppInfo CppInfo
}

// NewPackageInfo returns a PackageInfo with the conventional layout.
func NewPackageInfo() *PackageInfo {
	return &PackageInfo{
		CppInfo: CppInfo{
			IncludeDirs: []string{"include"},
			LibDirs:     []string{"lib"},
			BinDirs:     []string{"bin"},
		},
	}
}

// PkgConfig renders compiler and linker flags for a package installed at
// prefix, in pkg-config --cflags --libs form.
func (p *PackageInfo) PkgConfig(prefix string) string {
	var flags []string
	for _, d := range p.CppInfo.Defines {
		flags = append(flags, "-D"+d)
	}
	for _, d := range p.CppInfo.IncludeDirs {
		flags = append(flags, "-I"+filepath.Join(prefix, d))
	}
	for _, d := range p.CppInfo.LibDirs {
		flags = append(flags, "-L"+filepath.Join(prefix, d))
	}
	for _, l := range p.CppInfo.Libs {
		flags = append(flags, "-l"+l)
	}
	return strings.Join(flags, " ")
}
