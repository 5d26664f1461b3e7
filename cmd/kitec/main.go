package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kitelang/kite/internal/config"
	"github.com/kitelang/kite/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "kitec",
	Short: "Kite semantic checker and toolchain",
	Long:  `kitec checks Kite unit bundles and writes module export files`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", config.ColorAuto, "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to kite.yaml (default: nearest one upward from the working directory)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
