// Package cli wires the documentation engine into the docgraph command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docgraph-dev/docgraph/internal/config"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docgraph",
		Short: "Generate cross-linked API documentation from TypeScript/JavaScript sources",
		Long: `Docgraph loads a module graph from one or more entrypoints, extracts every
documented declaration, resolves re-export chains and type references across
the whole graph, and renders a static HTML site plus machine-readable
search and document-tree indexes.

Failures in individual modules never abort a build; they surface as
diagnostics in the output.`,
	}

	generateCmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Build the documentation site for a project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunGenerate,
	}
	generateCmd.Flags().StringSliceP("entry", "e", nil, "Entrypoint modules (default: config or auto-discover)")
	generateCmd.Flags().StringP("out", "o", "", "Output directory (default: config output_dir)")
	generateCmd.Flags().String("title", "", "Site title (default: config title)")
	generateCmd.Flags().String("format", "", "Artifacts to write: html|json|both (default: config format)")
	generateCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	doctreeCmd := &cobra.Command{
		Use:   "doctree [path]",
		Short: "Build the document tree and print it as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunDoctree,
	}
	doctreeCmd.Flags().StringSliceP("entry", "e", nil, "Entrypoint modules (default: config or auto-discover)")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query a previously generated search index",
		Args:  cobra.ExactArgs(1),
		RunE:  RunSearch,
	}
	searchCmd.Flags().StringP("dir", "d", config.Default().OutputDir, "Output directory holding the search index")
	searchCmd.Flags().Int("limit", 10, "Maximum number of results")
	searchCmd.Flags().Bool("json", false, "Print machine-readable results")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("docgraph %s\n", version)
		},
	}

	rootCmd.AddCommand(
		generateCmd,
		doctreeCmd,
		searchCmd,
		versionCmd,
	)

	return rootCmd
}
