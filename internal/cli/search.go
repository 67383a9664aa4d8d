package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docgraph-dev/docgraph/internal/fileutil"
	"github.com/docgraph-dev/docgraph/internal/render"
)

// SearchHit is one row of the machine-readable search output.
type SearchHit struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Signature string  `json:"signature,omitempty"`
	Module    string  `json:"module"`
	Line      int     `json:"line"`
	Href      string  `json:"href,omitempty"`
	Doc       string  `json:"doc,omitempty"`
	Score     float64 `json:"score"`
}

func RunSearch(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return fmt.Errorf("failed to read --dir flag: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to read --limit flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}

	index, err := render.LoadSearchIndex(dir)
	if err != nil {
		return err
	}

	results := render.Search(index, args[0], limit)
	hits := make([]SearchHit, 0, len(results))
	for _, result := range results {
		doc := index.Document(result.ID)
		if doc == nil {
			continue
		}
		hits = append(hits, SearchHit{
			ID:        doc.ID,
			Name:      doc.Name,
			Kind:      doc.Kind,
			Signature: doc.Signature,
			Module:    doc.Module,
			Line:      doc.Line,
			Href:      doc.Href,
			Doc:       doc.Doc,
			Score:     result.Score,
		})
	}

	if asJSON {
		return fileutil.PrintJSON(hits)
	}
	if len(hits) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("%-9s %s (%s:%d)\n", hit.Kind, hit.Name, hit.Module, hit.Line)
		if hit.Signature != "" {
			fmt.Printf("          %s\n", hit.Signature)
		}
		if hit.Doc != "" {
			fmt.Printf("          %s\n", hit.Doc)
		}
	}
	return nil
}
