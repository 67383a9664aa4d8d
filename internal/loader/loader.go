package loader

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/extractor"
	"github.com/docgraph-dev/docgraph/internal/syntax"
)

// ErrNoRoots is returned when none of the root specifiers resolve; with no
// entry module there is nothing to document.
var ErrNoRoots = errors.New("no root specifier could be resolved")

// Resolver turns specifiers into module identifiers and fetches module
// source. Implementations decide what a specifier means: filesystem paths,
// fixture keys, or anything the embedding host supplies.
type Resolver interface {
	// Resolve canonicalizes a specifier relative to the importing module.
	// from is empty for root specifiers.
	Resolve(specifier string, from docnode.ModuleID) (docnode.ModuleID, error)

	// Load fetches the raw source of a resolved module.
	Load(id docnode.ModuleID) ([]byte, error)
}

// Options tunes the load.
type Options struct {
	// Workers bounds the fetch+parse pool; 0 means GOMAXPROCS.
	Workers int
}

// Load builds the closed module graph reachable from roots. Fetch, parse,
// and extraction of one module is an independent unit of work; units run on
// a bounded pool and results join at a barrier between waves, so the graph
// is complete before any whole-graph stage reads it.
//
// Per-module failures never abort the build: the module stays in the graph
// as a stub carrying a diagnostic. Only a build with zero resolvable roots
// fails.
func Load(ctx context.Context, roots []string, resolver Resolver, parser syntax.Parser, opts Options) (*Graph, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g := &Graph{Modules: make(map[docnode.ModuleID]*Module)}

	var wave []docnode.ModuleID
	enqueued := make(map[docnode.ModuleID]bool)
	for _, root := range roots {
		id, err := resolver.Resolve(root, "")
		if err != nil {
			stub := &Module{ID: docnode.ModuleID(root), Stub: true}
			stub.Diagnostics = append(stub.Diagnostics, docnode.Diagnostic{
				Kind:    docnode.DiagResolutionError,
				Span:    docnode.Span{Module: stub.ID},
				Message: fmt.Sprintf("root specifier %q: %v", root, err),
			})
			g.Modules[stub.ID] = stub
			continue
		}
		if !enqueued[id] {
			enqueued[id] = true
			wave = append(wave, id)
			g.Roots = append(g.Roots, id)
		}
	}
	if len(g.Roots) == 0 {
		return nil, fmt.Errorf("%w: %d specifier(s) given", ErrNoRoots, len(roots))
	}

	var mu sync.Mutex
	for len(wave) > 0 {
		sort.Slice(wave, func(i, j int) bool { return wave[i] < wave[j] })

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(workers)
		loaded := make([]*Module, len(wave))
		for i, id := range wave {
			i, id := i, id
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				loaded[i] = loadOne(id, resolver, parser)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		// Barrier: merge the wave, resolve its specifiers, queue the next.
		var next []docnode.ModuleID
		mu.Lock()
		for _, mod := range loaded {
			g.Modules[mod.ID] = mod
			if mod.Symbols == nil {
				continue
			}
			for _, spec := range mod.Symbols.Specifiers {
				target, err := resolver.Resolve(spec, mod.ID)
				if err != nil {
					mod.Unresolved[spec] = err.Error()
					mod.Diagnostics = append(mod.Diagnostics, docnode.Diagnostic{
						Kind:    docnode.DiagResolutionError,
						Span:    docnode.Span{Module: mod.ID},
						Message: fmt.Sprintf("cannot resolve %q: %v", spec, err),
					})
					continue
				}
				mod.Resolved[spec] = target
				if !enqueued[target] {
					enqueued[target] = true
					next = append(next, target)
				}
			}
		}
		mu.Unlock()
		wave = next
	}

	return g, nil
}

// loadOne fetches, parses, and extracts a single module. Any failure turns
// the module into a stub with a diagnostic attached.
func loadOne(id docnode.ModuleID, resolver Resolver, parser syntax.Parser) *Module {
	mod := &Module{
		ID:         id,
		Resolved:   make(map[string]docnode.ModuleID),
		Unresolved: make(map[string]string),
	}

	source, err := resolver.Load(id)
	if err != nil {
		mod.Stub = true
		mod.Diagnostics = append(mod.Diagnostics, docnode.Diagnostic{
			Kind:    docnode.DiagResolutionError,
			Span:    docnode.Span{Module: id},
			Message: fmt.Sprintf("failed to load module: %v", err),
		})
		return mod
	}

	tree, err := parser.Parse(id, source)
	if err != nil {
		mod.Stub = true
		span := docnode.Span{Module: id}
		var parseErr *syntax.ParseError
		if errors.As(err, &parseErr) {
			span = parseErr.Span
		}
		mod.Diagnostics = append(mod.Diagnostics, docnode.Diagnostic{
			Kind:    docnode.DiagParseError,
			Span:    span,
			Message: err.Error(),
		})
		return mod
	}

	mod.Symbols = extractor.Extract(tree)
	return mod
}
