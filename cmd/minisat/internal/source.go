package internal

import (
	"context"

	"github.com/cybercalc/minisat-recipe/internal/build"
	"github.com/cybercalc/minisat-recipe/recipes/minisat"
	"github.com/spf13/cobra"
)

var sourceCmd = &cobra.Command{
	Use:   "source <srcdir>",
	Short: "Patch a MiniSat checkout in place",
	Long:  `Source runs only the source step, splicing the build info include into srcdir/CMakeLists.txt.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSource,
}

func init() {
	rootCmd.AddCommand(sourceCmd)
}

func runSource(cmd *cobra.Command, args []string) error {
	builder, err := build.NewBuilder(build.Options{})
	if err != nil {
		return err
	}
	return builder.Source(context.Background(), minisat.New(), args[0])
}
