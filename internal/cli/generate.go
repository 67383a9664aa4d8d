package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/docgraph-dev/docgraph/internal/config"
	"github.com/docgraph-dev/docgraph/internal/languages"
	"github.com/docgraph-dev/docgraph/internal/linker"
	"github.com/docgraph-dev/docgraph/internal/loader"
	"github.com/docgraph-dev/docgraph/internal/pipeline"
	"github.com/docgraph-dev/docgraph/internal/render"
)

func RunGenerate(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveProjectRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.Discover(rootPath)
	if err != nil {
		return err
	}
	if err := applyGenerateFlags(cmd, &cfg); err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}

	start := time.Now()
	result, err := buildProject(cmd, rootPath, cfg)
	if err != nil {
		return err
	}
	reportDiagnostics(result)

	outDir := cfg.OutputDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(rootPath, outDir)
	}

	var artifacts []string
	if cfg.Format == config.FormatHTML || cfg.Format == config.FormatBoth {
		renderer, err := render.NewHTMLRenderer(render.HTMLOptions{Title: cfg.Title}, result.Hrefs)
		if err != nil {
			return err
		}
		if err := renderer.Write(outDir, result.Tree, result.Graph); err != nil {
			return fmt.Errorf("failed to write HTML site: %w", err)
		}
		artifacts = append(artifacts, "html")
	}
	if cfg.Format == config.FormatJSON || cfg.Format == config.FormatBoth {
		if err := render.WriteDocTree(outDir, render.BuildDocTree(result.Tree, result.Graph)); err != nil {
			return fmt.Errorf("failed to write doc tree: %w", err)
		}
		artifacts = append(artifacts, "doctree")
	}
	index := render.BuildSearchIndex(result.Index, result.Hrefs)
	if err := render.WriteSearchIndex(outDir, index); err != nil {
		return fmt.Errorf("failed to write search index: %w", err)
	}
	artifacts = append(artifacts, "search")

	summary := RunSummary{
		Mode:        "generate",
		RootPath:    rootPath,
		OutputDir:   outDir,
		Artifacts:   artifacts,
		Modules:     len(result.Graph.Modules),
		Roots:       len(result.Graph.Roots),
		Symbols:     result.Index.Len(),
		Diagnostics: len(result.Diagnostics()),
		DurationMS:  time.Since(start).Milliseconds(),
	}
	return PrintRunSummary(summary, asJSON)
}

// buildProject resolves entrypoints and runs the pipeline up to the
// render-ready Result.
func buildProject(cmd *cobra.Command, rootPath string, cfg config.Config) (*pipeline.Result, error) {
	roots, err := resolveEntrypoints(cmd, rootPath, cfg)
	if err != nil {
		return nil, err
	}

	ambient := linker.DefaultAmbient()
	for name, href := range cfg.Ambient {
		ambient[name] = href
	}

	resolver := loader.NewFSResolver(rootPath)
	registry := languages.NewDefaultRegistry()
	return pipeline.Build(cmd.Context(), roots, resolver, registry, pipeline.Options{
		Workers: cfg.Workers,
		Ambient: ambient,
	})
}

func resolveEntrypoints(cmd *cobra.Command, rootPath string, cfg config.Config) ([]string, error) {
	if flagged, err := cmd.Flags().GetStringSlice("entry"); err == nil && len(flagged) > 0 {
		return flagged, nil
	}
	if len(cfg.Entrypoints) > 0 {
		return cfg.Entrypoints, nil
	}
	discovered, err := DiscoverEntrypoints(rootPath, cfg.Ignore)
	if err != nil {
		return nil, err
	}
	if len(discovered) == 0 {
		return nil, fmt.Errorf("no documentable source files found under %s", rootPath)
	}
	return discovered, nil
}

func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) error {
	if title, err := cmd.Flags().GetString("title"); err == nil && title != "" {
		cfg.Title = title
	}
	if out, err := cmd.Flags().GetString("out"); err == nil && out != "" {
		cfg.OutputDir = out
	}
	format, err := cmd.Flags().GetString("format")
	if err == nil && format != "" {
		switch format {
		case config.FormatHTML, config.FormatJSON, config.FormatBoth:
			cfg.Format = format
		default:
			return fmt.Errorf("unsupported format %q (expected html, json, or both)", format)
		}
	}
	return nil
}

func resolveProjectRoot(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	rootPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return "", fmt.Errorf("failed to access path %q: %w", rootPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path %q is not a directory", rootPath)
	}
	return rootPath, nil
}

// reportDiagnostics prints every non-fatal finding to stderr, one per line.
func reportDiagnostics(result *pipeline.Result) {
	for _, d := range result.Diagnostics() {
		fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", d.Kind, d.Span, d.Message)
	}
}
