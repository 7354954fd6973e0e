package internal

import (
	"context"
	"fmt"

	"github.com/cybercalc/minisat-recipe/internal/vcs"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var fetchGit string

var fetchCmd = &cobra.Command{
	Use:   "fetch <remote> <ref> <dir>",
	Short: "Check out MiniSat sources at a branch, tag or commit",
	Args:  cobra.ExactArgs(3),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchGit, "git", "git", "Path to the git executable")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	remote, ref, dir := args[0], args[1], args[2]
	ctx := context.Background()
	v := vcs.NewGitVCS(vcs.WithGitPath(fetchGit))
	if err := v.Sync(ctx, remote, ref, dir); err != nil {
		return fmt.Errorf("failed to fetch %s@%s: %w", remote, ref, err)
	}
	if desc, err := v.Describe(ctx, dir); err == nil {
		log.Infof("fetched %s (%s)", vcs.Version(desc), dir)
	}
	return nil
}
