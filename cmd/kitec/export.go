package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kitelang/kite/internal/config"
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] <unit.kiteb>",
	Short: "Check a unit bundle and write its export file",
	Long:  `Export checks one unit bundle and, when the check is clean, writes the unit's public surface as a .kitex file for dependent units to import`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output path (default: the bundle path with "+config.ExportFileExt+")")
	exportCmd.Flags().StringArray("import", nil, "library export file (.kitex) to resolve against; repeatable")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	colored, err := resolveColor(cmd, cfg)
	if err != nil {
		return err
	}

	importPaths, err := cmd.Flags().GetStringArray("import")
	if err != nil {
		return err
	}
	imports, err := loadImports(importPaths)
	if err != nil {
		return err
	}

	path := args[0]
	out, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if out == "" {
		out = exportPathFor(path)
	}

	ctx, err := checkUnit(path, cfg, imports, out)
	if err != nil {
		return err
	}
	if ctx.HasErrors() {
		renderDiagnostics(os.Stderr, ctx.Errors, colored)
		os.Exit(1)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}

// exportPathFor derives the default output path from the bundle path.
func exportPathFor(bundlePath string) string {
	if strings.HasSuffix(bundlePath, config.BundleFileExt) {
		return strings.TrimSuffix(bundlePath, config.BundleFileExt) + config.ExportFileExt
	}
	return bundlePath + config.ExportFileExt
}
