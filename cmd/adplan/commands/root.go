package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	mappingPath string
	verbose     bool
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adplan",
		Short: "adplan - directory bulk-provisioning planner",
		Long: `adplan reconciles tabular input (CSV exports) against a directory
service and computes the minimal set of provisioning actions: OU and
account creation, updates, moves, group memberships, folder and team
provisioning, and orphan cleanup.

adplan never mutates the directory; it produces a reviewable plan that a
separate execution phase applies.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVarP(&mappingPath, "mapping", "m", "mapping.yaml", "mapping config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newPlanCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}
