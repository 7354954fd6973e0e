package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cybercalc/minisat-recipe/internal/build"
	"github.com/cybercalc/minisat-recipe/recipes/minisat"
	"github.com/spf13/cobra"
)

var (
	createOptions    map[string]string
	createSettings   map[string]string
	createWorkspace  string
	createGenerator  string
	createToolchain  string
	createDeps       []string
	createTest       bool
	createForce      bool
	createAllOptions bool
	createSmoke      bool
)

var createCmd = &cobra.Command{
	Use:   "create <srcdir>",
	Short: "Build and package MiniSat from a checkout",
	Long: `Create runs the source, build, package and package_info steps on a copy of
the MiniSat checkout in srcdir and stores the result in the workspace.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringToStringVarP(&createOptions, "option", "o", nil, "Recipe option as name=value (shared, lto)")
	createCmd.Flags().StringToStringVarP(&createSettings, "setting", "s", nil, "Setting as key=value (os, arch, compiler, build_type)")
	createCmd.Flags().StringVar(&createWorkspace, "workspace", "", "Workspace directory (default: user cache dir)")
	createCmd.Flags().StringVarP(&createGenerator, "generator", "G", "", "CMake generator")
	createCmd.Flags().StringVar(&createToolchain, "toolchain", "", "CMake toolchain file")
	createCmd.Flags().StringArrayVar(&createDeps, "use", nil, "Install prefix of a dependency to build against")
	createCmd.Flags().BoolVar(&createTest, "test", false, "Run the test suite after building")
	createCmd.Flags().BoolVar(&createForce, "force", false, "Rebuild even if a cached package exists")
	createCmd.Flags().BoolVar(&createAllOptions, "all-options", false, "Package every option combination (cannot be combined with -o)")
	createCmd.Flags().BoolVar(&createSmoke, "smoke", false, "Cross-check the packaged solver on sample formulas")
	rootCmd.AddCommand(createCmd)
}

var errAllOptionsWithOverrides = errors.New("--all-options cannot be combined with -o")

func runCreate(cmd *cobra.Command, args []string) error {
	if createAllOptions && len(createOptions) > 0 {
		return errAllOptionsWithOverrides
	}
	settings, err := parseSettings(createSettings)
	if err != nil {
		return err
	}

	var stdout, stderr io.Writer = os.Stdout, os.Stderr
	if !verbose {
		stdout, stderr = io.Discard, io.Discard
	}

	builder, err := build.NewBuilder(build.Options{
		WorkspaceDir: createWorkspace,
		Settings:     settings,
		Generator:    createGenerator,
		Toolchain:    createToolchain,
		Deps:         createDeps,
		ShouldTest:   createTest,
		Force:        createForce,
		Stdout:       stdout,
		Stderr:       stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to create builder: %w", err)
	}

	ctx := context.Background()
	recipe := minisat.New()

	var results []*build.Result
	if createAllOptions {
		results, err = builder.CreateAll(ctx, recipe, args[0])
	} else {
		var res *build.Result
		res, err = builder.Create(ctx, recipe, args[0], createOptions)
		results = append(results, res)
	}
	if err != nil {
		return fmt.Errorf("failed to create minisat: %w", err)
	}

	for _, res := range results {
		if createSmoke {
			if err := builder.Verify(ctx, res); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s [%s] %s\n", res.Name, res.Version, res.Options, res.OutputDir)
		fmt.Fprintln(cmd.OutOrStdout(), res.Metadata)
	}
	return nil
}
