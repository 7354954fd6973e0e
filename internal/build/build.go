package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cybercalc/minisat-recipe/formula"
	"github.com/cybercalc/minisat-recipe/internal/buildinfo"
	"github.com/cybercalc/minisat-recipe/internal/env"
	"github.com/cybercalc/minisat-recipe/internal/smoke"
	"github.com/cybercalc/minisat-recipe/internal/vcs"
	"github.com/qiniu/x/log"
	"github.com/samber/lo"
)

// Step names a recipe lifecycle callback.
type Step string

const (
	StepSource      Step = "source"
	StepBuild       Step = "build"
	StepPackage     Step = "package"
	StepPackageInfo Step = "package_info"
)

// StepError reports the lifecycle step a recipe failed in.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string { return string(e.Step) + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

// Options configures a Builder.
type Options struct {
	// WorkspaceDir holds caches and package outputs. Defaults to env.WorkDir().
	WorkspaceDir string

	Settings  formula.Settings
	Generator string
	// Toolchain is passed to CMake as CMAKE_TOOLCHAIN_FILE.
	Toolchain string
	Deps      []string

	ShouldTest bool
	// Force rebuilds even if the cache has an entry.
	Force bool

	Stdout io.Writer
	Stderr io.Writer

	// VCS reads version information from checkouts. Defaults to git.
	VCS vcs.VCS
}

// Result describes one packaged variant.
type Result struct {
	Name      string
	Version   string
	Options   formula.Options
	SCM       formula.SCM
	OutputDir string
	Info      *formula.PackageInfo
	Metadata  string
	Cached    bool
}

// Builder drives recipes through their lifecycle.
type Builder struct {
	workspaceDir string
	opts         Options
	vcs          vcs.VCS
}

// NewBuilder creates a Builder from opts.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.WorkspaceDir == "" {
		dir, err := env.WorkDir()
		if err != nil {
			return nil, err
		}
		opts.WorkspaceDir = dir
	}
	abs, err := filepath.Abs(opts.WorkspaceDir)
	if err != nil {
		return nil, err
	}
	if opts.Settings == (formula.Settings{}) {
		opts.Settings = formula.DefaultSettings()
	}
	v := opts.VCS
	if v == nil {
		v = vcs.NewGitVCS()
	}
	return &Builder{workspaceDir: abs, opts: opts, vcs: v}, nil
}

// Source runs only the source step of r on srcDir, in place.
func (b *Builder) Source(ctx context.Context, r formula.Recipe, srcDir string) error {
	fctx := (&formula.Context{
		Settings:  b.opts.Settings,
		SourceDir: srcDir,
		Stdout:    b.opts.Stdout,
		Stderr:    b.opts.Stderr,
	}).WithContext(ctx)
	if err := r.Source(fctx); err != nil {
		return &StepError{Step: StepSource, Err: err}
	}
	return nil
}

// CreateAll packages every option combination of r for the builder's
// settings.
func (b *Builder) CreateAll(ctx context.Context, r formula.Recipe, srcDir string) ([]*Result, error) {
	m := r.Options().Matrix()
	s := b.opts.Settings
	m.Require = map[string][]string{
		"os":         {s.OS},
		"arch":       {s.Arch},
		"compiler":   {s.Compiler},
		"build_type": {s.BuildType},
	}
	log.Infof("%s: %d combinations", r.Descriptor().Name, m.CombinationCount())
	log.Debugf("%s: %s", r.Descriptor().Name, strings.Join(m.Combinations(), " "))

	optionNames := lo.Keys(m.Options)
	var results []*Result
	for _, combo := range m.Expand() {
		overrides := lo.PickByKeys(combo, optionNames)
		res, err := b.Create(ctx, r, srcDir, overrides)
		if err != nil {
			return results, fmt.Errorf("options %s: %w", formula.Options(overrides), err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Create packages r from the checkout in srcDir with the given option
// overrides. It runs source, build, package and package_info in that order on
// a private copy of srcDir, so the checkout itself is never modified.
func (b *Builder) Create(ctx context.Context, r formula.Recipe, srcDir string, overrides map[string]string) (*Result, error) {
	desc := r.Descriptor()
	opts, err := r.Options().Resolve(overrides)
	if err != nil {
		return nil, err
	}
	srcDir, err = filepath.Abs(srcDir)
	if err != nil {
		return nil, err
	}

	version, scm := b.identify(ctx, desc, srcDir)
	variant := variant(b.opts.Settings, opts)
	outDir := b.installDir(desc.Name, version, variant)

	cache, err := b.loadCache(desc.Name)
	if err != nil {
		return nil, err
	}
	if entry, ok := cache.get(version, variant); ok && !b.opts.Force {
		if _, err := os.Stat(outDir); err == nil {
			log.Infof("%s/%s: cached (%s)", desc.Name, version, opts)
			info := formula.NewPackageInfo()
			info.CppInfo.Libs = entry.Libs
			return &Result{
				Name:      desc.Name,
				Version:   version,
				Options:   opts,
				SCM:       entry.SCM,
				OutputDir: outDir,
				Info:      info,
				Metadata:  entry.Metadata,
				Cached:    true,
			}, nil
		}
	}

	tmpRoot := filepath.Join(b.workspaceDir, ".tmp")
	if err := os.MkdirAll(tmpRoot, 0o755); err != nil {
		return nil, err
	}
	scratch, err := os.MkdirTemp(tmpRoot, desc.Name+"-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	fctx := (&formula.Context{
		Settings:   b.opts.Settings,
		Options:    opts,
		SourceDir:  filepath.Join(scratch, "src"),
		BuildDir:   filepath.Join(scratch, "build"),
		PackageDir: filepath.Join(scratch, "package"),
		Generator:  b.opts.Generator,
		Toolchain:  b.opts.Toolchain,
		Deps:       b.opts.Deps,
		ShouldTest: b.opts.ShouldTest,
		Stdout:     b.opts.Stdout,
		Stderr:     b.opts.Stderr,
	}).WithContext(ctx)

	if err := copyTree(srcDir, fctx.SourceDir); err != nil {
		return nil, fmt.Errorf("copy sources: %w", err)
	}

	// Recipes may touch the process environment; restore it afterwards.
	savedEnv := os.Environ()
	defer restoreEnv(savedEnv)

	info, err := b.lifecycle(fctx, r, desc.Name)
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(outDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(fctx.PackageDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.Rename(fctx.PackageDir, outDir); err != nil {
		return nil, err
	}

	res := &Result{
		Name:      desc.Name,
		Version:   version,
		Options:   opts,
		SCM:       scm,
		OutputDir: outDir,
		Info:      info,
		Metadata:  info.PkgConfig(outDir),
	}
	cache.set(version, variant, &buildEntry{
		Metadata:  res.Metadata,
		Libs:      info.CppInfo.Libs,
		SCM:       scm,
		BuildTime: time.Now(),
	})
	if err := b.saveCache(desc.Name, cache); err != nil {
		return nil, err
	}
	log.Infof("%s/%s: packaged to %s", desc.Name, version, outDir)
	return res, nil
}

func (b *Builder) lifecycle(fctx *formula.Context, r formula.Recipe, name string) (*formula.PackageInfo, error) {
	step := func(s Step, f func() error) error {
		log.Infof("%s: %s", name, s)
		start := time.Now()
		if err := f(); err != nil {
			return &StepError{Step: s, Err: err}
		}
		log.Debugf("%s: %s done in %v", name, s, time.Since(start).Round(time.Millisecond))
		return nil
	}

	if err := step(StepSource, func() error { return r.Source(fctx) }); err != nil {
		return nil, err
	}
	if err := step(StepBuild, func() error {
		if _, err := buildinfo.Write(fctx.BuildDir, buildinfo.Info{
			Name:      name,
			BuildType: fctx.Settings.BuildType,
			Options:   fctx.Options,
			Deps:      fctx.Deps,
		}); err != nil {
			return err
		}
		return r.Build(fctx)
	}); err != nil {
		return nil, err
	}
	if err := step(StepPackage, func() error { return r.Package(fctx) }); err != nil {
		return nil, err
	}
	log.Infof("%s: %s", name, StepPackageInfo)
	info := formula.NewPackageInfo()
	r.PackageInfo(fctx, info)
	return info, nil
}

// identify determines the package version and resolves SCM coordinates.
// A declared version wins; otherwise it is read from the checkout.
func (b *Builder) identify(ctx context.Context, desc formula.Descriptor, srcDir string) (string, formula.SCM) {
	scm, err := vcs.ResolveSCM(ctx, b.vcs, desc.SCM, srcDir)
	if err != nil {
		log.Debugf("%s: cannot resolve scm: %v", desc.Name, err)
	}
	if desc.Version != "" {
		return desc.Version, scm
	}
	describe, err := b.vcs.Describe(ctx, srcDir)
	if err != nil {
		log.Warnf("%s: no version from %s, using \"local\": %v", desc.Name, srcDir, err)
		return "local", scm
	}
	return vcs.Version(describe), scm
}

// Verify runs the packaged minisat executable of res through the smoke cases.
func (b *Builder) Verify(ctx context.Context, res *Result) error {
	bin := filepath.Join(res.OutputDir, "bin", res.Name)
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	if _, err := os.Stat(bin); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	return smoke.Verify(ctx, bin, smoke.DefaultCases)
}

func restoreEnv(saved []string) {
	os.Clearenv()
	for _, e := range saved {
		if k, v, ok := strings.Cut(e, "="); ok {
			os.Setenv(k, v)
		}
	}
}
