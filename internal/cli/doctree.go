package cli

import (
	"github.com/spf13/cobra"

	"github.com/docgraph-dev/docgraph/internal/config"
	"github.com/docgraph-dev/docgraph/internal/fileutil"
	"github.com/docgraph-dev/docgraph/internal/render"
)

func RunDoctree(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveProjectRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.Discover(rootPath)
	if err != nil {
		return err
	}

	result, err := buildProject(cmd, rootPath, cfg)
	if err != nil {
		return err
	}
	reportDiagnostics(result)

	tree := render.BuildDocTree(result.Tree, result.Graph)
	return fileutil.PrintJSON(tree)
}
