// Package loader builds the module graph: starting from root specifiers it
// follows import and re-export edges until the graph is closed, parsing and
// extracting each module along the way.
package loader

import (
	"sort"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/extractor"
)

// Module is one node of the module graph. Failed modules stay in the graph
// as stubs so dependents can report an unresolved module instead of the
// whole build aborting.
type Module struct {
	ID      docnode.ModuleID
	Symbols *extractor.ModuleSymbols // nil for stubs
	Stub    bool

	// Resolved maps each specifier this module references to the module it
	// resolved to. Specifiers that failed to resolve are in Unresolved with
	// the resolver's message.
	Resolved   map[string]docnode.ModuleID
	Unresolved map[string]string

	Diagnostics []docnode.Diagnostic
}

// Decls returns the module's top-level declarations, empty for stubs.
func (m *Module) Decls() []*docnode.DeclNode {
	if m.Symbols == nil {
		return nil
	}
	return m.Symbols.Decls
}

// Graph is the full set of loaded modules. It owns every DeclNode; later
// stages reference declarations by DeclID only.
type Graph struct {
	Modules map[docnode.ModuleID]*Module
	Roots   []docnode.ModuleID
}

// ModuleIDs returns every module identifier in sorted order.
func (g *Graph) ModuleIDs() []docnode.ModuleID {
	ids := make([]docnode.ModuleID, 0, len(g.Modules))
	for id := range g.Modules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Module returns the graph node for id, nil when absent.
func (g *Graph) Module(id docnode.ModuleID) *Module {
	return g.Modules[id]
}

// Decl looks a declaration up by identity. Nested namespace members are
// found by walking namespace bodies.
func (g *Graph) Decl(id docnode.DeclID) *docnode.DeclNode {
	mod := g.Modules[id.Module]
	if mod == nil {
		return nil
	}
	var found *docnode.DeclNode
	for _, d := range mod.Decls() {
		docnode.Walk(d, func(n *docnode.DeclNode) {
			if found == nil && n.Name == id.Name && n.Overload == id.Overload {
				found = n
			}
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// TopLevel returns the top-level declarations of a module matching name, in
// overload order.
func (g *Graph) TopLevel(module docnode.ModuleID, name string) []*docnode.DeclNode {
	mod := g.Modules[module]
	if mod == nil {
		return nil
	}
	var out []*docnode.DeclNode
	for _, d := range mod.Decls() {
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out
}

// Diagnostics collects every diagnostic in the graph, ordered by module.
func (g *Graph) Diagnostics() []docnode.Diagnostic {
	var out []docnode.Diagnostic
	for _, id := range g.ModuleIDs() {
		out = append(out, g.Modules[id].Diagnostics...)
	}
	return out
}
