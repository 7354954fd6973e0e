package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cybercalc/minisat-recipe/formula"
	"golang.org/x/mod/semver"
)

// VCS defines the interface for version control operations.
type VCS interface {
	// Sync ensures the local repo exists and is at the specified ref.
	// ref can be branch, tag, or commit hash.
	Sync(ctx context.Context, remote, ref, dir string) error

	// Describe returns the nearest tag of the checkout in dir, suffixed the
	// way "git describe --tags --always" does.
	Describe(ctx context.Context, dir string) (string, error)

	// Head returns the commit hash checked out in dir.
	Head(ctx context.Context, dir string) (string, error)

	// RemoteURL returns the URL of the "origin" remote of dir.
	RemoteURL(ctx context.Context, dir string) (string, error)
}

// gitVCS implements VCS using git.
type gitVCS struct {
	git string
}

// GitOption configures gitVCS.
type GitOption func(*gitVCS)

// WithGitPath sets a custom git executable path.
func WithGitPath(path string) GitOption {
	return func(g *gitVCS) {
		g.git = path
	}
}

// NewGitVCS creates a new git VCS instance.
func NewGitVCS(opts ...GitOption) VCS {
	g := &gitVCS{git: "git"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *gitVCS) ensureInit(ctx context.Context, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		return g.run(ctx, dir, "init", "-q")
	}
	return nil
}

func (g *gitVCS) Sync(ctx context.Context, remote, ref, dir string) error {
	if err := g.ensureInit(ctx, dir); err != nil {
		return err
	}
	if err := g.run(ctx, dir, "fetch", "--depth", "1", remote, ref); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if err := g.run(ctx, dir, "checkout", "-q", "FETCH_HEAD"); err != nil {
		return fmt.Errorf("checkout %s: %w", ref, err)
	}
	return nil
}

func (g *gitVCS) Describe(ctx context.Context, dir string) (string, error) {
	out, err := g.output(ctx, dir, "describe", "--tags", "--always")
	if err != nil {
		return "", fmt.Errorf("describe: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (g *gitVCS) Head(ctx context.Context, dir string) (string, error) {
	out, err := g.output(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("rev-parse HEAD: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (g *gitVCS) RemoteURL(ctx context.Context, dir string) (string, error) {
	out, err := g.output(ctx, dir, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("remote get-url origin: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (g *gitVCS) run(ctx context.Context, dir string, args ...string) error {
	_, err := g.output(ctx, dir, args...)
	return err
}

func (g *gitVCS) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.git, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s", msg)
		}
		return "", err
	}
	return stdout.String(), nil
}

// ResolveSCM replaces formula.Auto fields of scm with values read from the
// checkout in dir. A missing origin remote leaves URL empty.
func ResolveSCM(ctx context.Context, v VCS, scm formula.SCM, dir string) (formula.SCM, error) {
	if scm.URL == formula.Auto {
		url, err := v.RemoteURL(ctx, dir)
		if err != nil {
			url = ""
		}
		scm.URL = url
	}
	if scm.Revision == formula.Auto {
		rev, err := v.Head(ctx, dir)
		if err != nil {
			return scm, err
		}
		scm.Revision = rev
	}
	return scm, nil
}

// Version turns "git describe" output into a package version. Semver-like
// tags are canonicalised without the leading "v" ("v2.2" → "2.2.0"); commits
// past the tag keep the describe suffix as build metadata. Anything else is
// returned unchanged.
func Version(describe string) string {
	tag, suffix := describe, ""
	// <tag>-<n>-g<hash>
	if parts := strings.Split(describe, "-"); len(parts) >= 3 && strings.HasPrefix(parts[len(parts)-1], "g") {
		tag = strings.Join(parts[:len(parts)-2], "-")
		suffix = parts[len(parts)-2] + "." + parts[len(parts)-1]
	}
	v := tag
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return describe
	}
	v = strings.TrimPrefix(semver.Canonical(v), "v")
	if suffix != "" {
		v += "+" + suffix
	}
	return v
}
