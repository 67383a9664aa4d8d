package cli

import (
	"fmt"
	"strings"

	"github.com/docgraph-dev/docgraph/internal/fileutil"
)

// RunSummary is the generate command's result report.
type RunSummary struct {
	Mode        string   `json:"mode"`
	RootPath    string   `json:"root_path"`
	OutputDir   string   `json:"output_dir"`
	Artifacts   []string `json:"artifacts"`
	Modules     int      `json:"modules"`
	Roots       int      `json:"roots"`
	Symbols     int      `json:"symbols"`
	Diagnostics int      `json:"diagnostics"`
	DurationMS  int64    `json:"duration_ms"`
}

func PrintRunSummary(summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(summary)
	}

	fmt.Printf("generate complete in %dms\n", summary.DurationMS)
	fmt.Printf("output: %s (%s)\n", summary.OutputDir, strings.Join(summary.Artifacts, ", "))
	fmt.Printf("graph: roots=%d modules=%d symbols=%d\n", summary.Roots, summary.Modules, summary.Symbols)
	if summary.Diagnostics > 0 {
		fmt.Printf("diagnostics: %d (see stderr)\n", summary.Diagnostics)
	}
	return nil
}
