package buildsys

import (
	"context"
	"fmt"
)

// BuildSystem captures shared capabilities of native build helpers.
// Implementations add their own extras.
type BuildSystem interface {
	// Use makes a dependency installed at root visible to the build.
	Use(root string)

	// Basic paths.
	Source(dir string)
	InstallDir(dir string)

	// Environment helper.
	Env(key, val string)

	// Lifecycle.
	Configure(ctx context.Context, args ...string) error
	Build(ctx context.Context, args ...string) error
	Install(ctx context.Context, args ...string) error

	// Where artifacts land.
	OutputDir() string
}

// RunError reports a build tool command that exited unsuccessfully.
// ExitCode is -1 when the command could not be started.
type RunError struct {
	Cmd      string
	ExitCode int
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("command %q failed (exit %d): %v", e.Cmd, e.ExitCode, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
