// Package exports computes, per module, the final set of publicly visible
// bindings by collapsing re-export chains. Cycles in the re-export graph are
// detected with explicit path tracking and surface as diagnostics, never as
// infinite loops or build failures.
package exports

import (
	"fmt"
	"sort"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/loader"
)

// BindingState is the terminal state of one resolved export binding.
type BindingState int

const (
	// BindingResolved points at a local declaration of Target.Module.
	BindingResolved BindingState = iota
	// BindingModule mounts a whole module under the exported name
	// (export * as ns from "m").
	BindingModule
	// BindingCycle marks a name whose resolution revisited a
	// (module, name) pair on the active path.
	BindingCycle
	// BindingAmbiguous marks a name two wildcard sources disagree on.
	BindingAmbiguous
	// BindingUnresolvedModule marks a re-export from a module that could
	// not be resolved or loaded.
	BindingUnresolvedModule
)

func (s BindingState) String() string {
	switch s {
	case BindingResolved:
		return "resolved"
	case BindingModule:
		return "module"
	case BindingCycle:
		return "cycle"
	case BindingAmbiguous:
		return "ambiguous"
	case BindingUnresolvedModule:
		return "unresolved-module"
	default:
		return "unknown"
	}
}

// Target names a declaration site: the module that declares it and the local
// name there. Overloads share one target.
type Target struct {
	Module docnode.ModuleID `json:"module"`
	Name   string           `json:"name"`
}

// Binding is one entry of a module's final export set.
type Binding struct {
	Name       string           `json:"name"`
	State      BindingState     `json:"state"`
	Target     Target           `json:"target,omitempty"`
	Module     docnode.ModuleID `json:"target_module,omitempty"` // for BindingModule
	Candidates []Target         `json:"candidates,omitempty"`
	Span       docnode.Span     `json:"span"`
}

// ModuleExports is the resolved binding table of one module.
type ModuleExports struct {
	Bindings map[string]Binding
}

// Names returns the binding names in sorted order.
func (m *ModuleExports) Names() []string {
	names := make([]string, 0, len(m.Bindings))
	for name := range m.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table holds the resolved exports of every module in the graph.
type Table struct {
	modules map[docnode.ModuleID]*ModuleExports
}

// Module returns the binding table for id, nil when the module is unknown.
func (t *Table) Module(id docnode.ModuleID) *ModuleExports {
	return t.modules[id]
}

// Lookup finds one binding by module and exported name.
func (t *Table) Lookup(module docnode.ModuleID, name string) (Binding, bool) {
	exp := t.modules[module]
	if exp == nil {
		return Binding{}, false
	}
	b, ok := exp.Bindings[name]
	return b, ok
}

type pathKey struct {
	module docnode.ModuleID
	name   string
}

type resolver struct {
	graph *loader.Graph
	memo  map[pathKey]Binding
}

// Resolve computes the final export binding table for every module. It must
// run after the graph is complete and before the linker reads the tables.
func Resolve(g *loader.Graph) *Table {
	r := &resolver{graph: g, memo: make(map[pathKey]Binding)}
	table := &Table{modules: make(map[docnode.ModuleID]*ModuleExports)}

	for _, id := range g.ModuleIDs() {
		mod := g.Modules[id]
		exp := &ModuleExports{Bindings: make(map[string]Binding)}
		table.modules[id] = exp

		names := r.exportedNames(id, map[docnode.ModuleID]bool{})
		for _, name := range names {
			binding, ok := r.resolveName(id, name, map[pathKey]bool{})
			if !ok {
				continue
			}
			exp.Bindings[name] = binding
			switch binding.State {
			case BindingCycle:
				mod.Diagnostics = append(mod.Diagnostics, docnode.Diagnostic{
					Kind:    docnode.DiagReExportCycle,
					Span:    binding.Span,
					Message: fmt.Sprintf("export %q traverses a re-export cycle", name),
				})
			case BindingAmbiguous:
				mod.Diagnostics = append(mod.Diagnostics, docnode.Diagnostic{
					Kind:    docnode.DiagAmbiguousExport,
					Span:    binding.Span,
					Message: fmt.Sprintf("export %q is supplied by %d conflicting wildcard sources", name, len(binding.Candidates)),
				})
			case BindingUnresolvedModule:
				// The loader already attached a resolution diagnostic.
			}
		}
	}
	return table
}

// exportedNames enumerates the names a module exports, explicit exports
// first, then wildcard contributions. visiting cuts wildcard cycles; the
// per-name resolution reports them.
func (r *resolver) exportedNames(id docnode.ModuleID, visiting map[docnode.ModuleID]bool) []string {
	mod := r.graph.Modules[id]
	if mod == nil || mod.Symbols == nil || visiting[id] {
		return nil
	}
	visiting[id] = true
	defer delete(visiting, id)

	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, rec := range mod.Symbols.Exports {
		if rec.Kind != docnode.ExportWildcard {
			add(rec.Exported)
		}
	}
	for _, rec := range mod.Symbols.Exports {
		if rec.Kind != docnode.ExportWildcard {
			continue
		}
		source, ok := mod.Resolved[rec.Specifier]
		if !ok {
			continue
		}
		for _, name := range r.exportedNames(source, visiting) {
			// Default exports never travel through wildcards.
			if name == "default" {
				continue
			}
			add(name)
		}
	}
	sort.Strings(names)
	return names
}

// resolveName follows re-export edges for one exported name until a local
// declaration is reached or a cycle closes. Explicit exports shadow wildcard
// contributions. The active path is tracked as an explicit visited set; a
// revisited (module, name) pair terminates with BindingCycle.
func (r *resolver) resolveName(id docnode.ModuleID, name string, path map[pathKey]bool) (Binding, bool) {
	key := pathKey{module: id, name: name}
	if path[key] {
		return Binding{Name: name, State: BindingCycle, Span: docnode.Span{Module: id}}, true
	}
	if cached, ok := r.memo[key]; ok {
		return cached, true
	}

	mod := r.graph.Modules[id]
	if mod == nil || mod.Symbols == nil {
		return Binding{
			Name:  name,
			State: BindingUnresolvedModule,
			Span:  docnode.Span{Module: id},
		}, true
	}

	path[key] = true
	defer delete(path, key)

	// Explicit exports win over wildcards.
	for _, rec := range mod.Symbols.Exports {
		if rec.Kind == docnode.ExportWildcard || rec.Exported != name {
			continue
		}
		binding, ok := r.resolveRecord(mod, rec, path)
		if ok {
			if binding.State != BindingCycle {
				r.memo[key] = binding
			}
			return binding, true
		}
	}

	if name == "default" {
		return Binding{}, false
	}

	// Wildcard sources, in statement order. Distinct final targets for the
	// same name are a conflict that is surfaced, not silently broken.
	var candidates []Binding
	sawCycle := false
	for _, rec := range mod.Symbols.Exports {
		if rec.Kind != docnode.ExportWildcard {
			continue
		}
		source, ok := mod.Resolved[rec.Specifier]
		if !ok {
			continue
		}
		binding, ok := r.resolveName(source, name, path)
		if !ok {
			continue
		}
		switch binding.State {
		case BindingCycle:
			sawCycle = true
		case BindingUnresolvedModule:
			// Source itself broken; its own diagnostics cover it.
		default:
			binding.Span = rec.Span
			candidates = append(candidates, binding)
		}
	}

	distinct := dedupeBindings(candidates)
	switch {
	case len(distinct) == 1:
		binding := distinct[0]
		binding.Name = name
		r.memo[key] = binding
		return binding, true
	case len(distinct) > 1:
		binding := Binding{Name: name, State: BindingAmbiguous, Span: distinct[0].Span}
		for _, c := range distinct {
			binding.Candidates = append(binding.Candidates, c.Target)
		}
		r.memo[key] = binding
		return binding, true
	case sawCycle:
		return Binding{Name: name, State: BindingCycle, Span: docnode.Span{Module: id}}, true
	default:
		return Binding{}, false
	}
}

func (r *resolver) resolveRecord(mod *loader.Module, rec docnode.ExportRecord, path map[pathKey]bool) (Binding, bool) {
	switch rec.Kind {
	case docnode.ExportLocal:
		return Binding{
			Name:   rec.Exported,
			State:  BindingResolved,
			Target: Target{Module: mod.ID, Name: rec.Original},
			Span:   rec.Span,
		}, true

	case docnode.ExportNamed:
		source, ok := mod.Resolved[rec.Specifier]
		if !ok {
			return Binding{
				Name:  rec.Exported,
				State: BindingUnresolvedModule,
				Span:  rec.Span,
			}, true
		}
		if rec.Original == "*" {
			return Binding{
				Name:   rec.Exported,
				State:  BindingModule,
				Module: source,
				Span:   rec.Span,
			}, true
		}
		binding, ok := r.resolveName(source, rec.Original, path)
		if !ok {
			// The source never exports that name; keep the edge visible
			// as an unresolved binding instead of dropping it.
			return Binding{
				Name:  rec.Exported,
				State: BindingUnresolvedModule,
				Span:  rec.Span,
			}, true
		}
		binding.Name = rec.Exported
		binding.Span = rec.Span
		return binding, true
	}
	return Binding{}, false
}

func dedupeBindings(bindings []Binding) []Binding {
	var out []Binding
	seen := make(map[string]bool)
	for _, b := range bindings {
		key := b.State.String() + "|" + string(b.Target.Module) + "|" + b.Target.Name + "|" + string(b.Module)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}
