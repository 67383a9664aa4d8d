// Package pipeline sequences the documentation build. The loader owns the
// only mutable phase; every stage after its barrier reads an immutable graph,
// so the whole-graph stages need no locking beyond what they do internally.
package pipeline

import (
	"context"
	"fmt"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/exports"
	"github.com/docgraph-dev/docgraph/internal/linker"
	"github.com/docgraph-dev/docgraph/internal/loader"
	"github.com/docgraph-dev/docgraph/internal/nstree"
	"github.com/docgraph-dev/docgraph/internal/render"
	"github.com/docgraph-dev/docgraph/internal/syntax"
)

// Options configures one build.
type Options struct {
	// Workers bounds the loader's fetch+parse pool; 0 means GOMAXPROCS.
	Workers int
	// Ambient maps global type names to external hrefs. Nil means
	// linker.DefaultAmbient().
	Ambient linker.Ambient
}

// Result is the output of a completed build, ready for any of the renderers.
type Result struct {
	Graph   *loader.Graph
	Exports *exports.Table
	Index   *linker.Index
	Tree    *nstree.Node
	Hrefs   map[docnode.DeclID]string
}

// Diagnostics returns every non-fatal finding of the build in sorted module
// order.
func (r *Result) Diagnostics() []docnode.Diagnostic {
	return r.Graph.Diagnostics()
}

// Build runs load+extract, export resolution, linking, and the namespace
// tree. Rendering is left to the caller; embedding hosts often want only the
// Result.
func Build(ctx context.Context, roots []string, resolver loader.Resolver, parser syntax.Parser, opts Options) (*Result, error) {
	g, err := loader.Load(ctx, roots, resolver, parser, loader.Options{Workers: opts.Workers})
	if err != nil {
		return nil, fmt.Errorf("failed to load module graph: %w", err)
	}

	table := exports.Resolve(g)

	ambient := opts.Ambient
	if ambient == nil {
		ambient = linker.DefaultAmbient()
	}
	index := linker.Link(g, table, ambient)

	tree := nstree.Build(g, table)

	return &Result{
		Graph:   g,
		Exports: table,
		Index:   index,
		Tree:    tree,
		Hrefs:   render.Hrefs(tree),
	}, nil
}
