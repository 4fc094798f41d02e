package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "odyssey-authctl",
		Short:        "Operational commands for odyssey-auth",
		SilenceUsage: true,
	}
	cmd.AddCommand(newMigrateCmd(), newHashPasswordCmd())
	return cmd
}
