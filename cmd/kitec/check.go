package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kitelang/kite/internal/analyzer"
	"github.com/kitelang/kite/internal/bundle"
	"github.com/kitelang/kite/internal/config"
	"github.com/kitelang/kite/internal/export"
	"github.com/kitelang/kite/internal/pipeline"
	"github.com/kitelang/kite/internal/symbols"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <unit.kiteb>...",
	Short: "Check unit bundles and report diagnostics",
	Long:  `Check runs semantic analysis on each unit bundle: name resolution, type and kind checking, interface dispatch, pattern analysis and generic instantiation`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringArray("import", nil, "library export file (.kitex) to resolve against; repeatable")
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	failed := false
	for _, path := range args {
		ctx, err := checkUnit(path, cfg, imports, "")
		if err != nil {
			return err
		}
		if ctx.HasErrors() {
			failed = true
			renderDiagnostics(os.Stderr, ctx.Errors, colored)
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

// checkUnit runs the pipeline on one bundle against a fresh table:
// prelude first, then the import surfaces, then the unit itself. With
// a non-empty exportPath the export stage writes the surface after a
// clean analysis.
func checkUnit(path string, cfg *config.Config, imports []*export.File, exportPath string) (*pipeline.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	unit, err := bundle.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	table := symbols.NewEmptySymbolTable()
	if !cfg.NoPrelude {
		analyzer.RegisterPrelude(table)
	}
	for _, imp := range imports {
		if err := export.Materialize(imp, table); err != nil {
			return nil, err
		}
	}

	ctx := &pipeline.Context{
		Unit:           unit,
		File:           path,
		Table:          table,
		DepthBound:     cfg.DepthBound,
		MaxDiagnostics: cfg.MaxDiagnostics,
		NoPrelude:      cfg.NoPrelude,
		ExportPath:     exportPath,
	}
	ctx = pipeline.New(&analyzer.Processor{}, &export.Processor{}).Run(ctx)
	if ctx.ExportErr != nil {
		return nil, ctx.ExportErr
	}
	return ctx, nil
}

func loadImports(paths []string) ([]*export.File, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	files := make([]*export.File, 0, len(paths))
	for _, p := range paths {
		f, err := export.Load(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// resolveConfig loads the configuration named by --config, or the
// nearest kite.yaml upward from the working directory, or defaults.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		return config.LoadConfig(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	found, err := config.FindConfig(wd)
	if err != nil {
		return nil, err
	}
	if found != "" {
		return config.LoadConfig(found)
	}
	return config.Default(), nil
}

// resolveColor picks the color mode: the --color flag when given,
// else the configuration, and decides against stderr, where the
// diagnostics go.
func resolveColor(cmd *cobra.Command, cfg *config.Config) (bool, error) {
	mode := cfg.Color
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("color") {
		m, err := flags.GetString("color")
		if err != nil {
			return false, err
		}
		mode = m
	}
	switch mode {
	case config.ColorAuto, config.ColorOn, config.ColorOff:
	default:
		return false, fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
	enabled := colorEnabled(mode, os.Stderr)
	applyColor(enabled)
	return enabled, nil
}
