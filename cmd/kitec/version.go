package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kitelang/kite/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the kitec version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "kitec %s\n", version.Version)
		if version.GitCommit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", version.BuildDate)
		}
		return nil
	},
}
