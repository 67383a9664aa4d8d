// Package linker resolves every type reference in every signature to the
// declaration it names, across the whole module graph. It runs after the
// export resolver, so import lookups see collapsed re-export chains.
package linker

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/exports"
	"github.com/docgraph-dev/docgraph/internal/loader"
)

// Ambient maps well-known global names (built-in types, host globals) to
// stable external hrefs. Supplied by the caller; step three of the
// resolution order.
type Ambient map[string]string

// DefaultAmbient covers the ECMAScript and TypeScript built-ins documented
// on MDN and the TypeScript handbook.
func DefaultAmbient() Ambient {
	mdn := func(name string) string {
		return "https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Global_Objects/" + name
	}
	out := Ambient{}
	for _, name := range []string{
		"Array", "ArrayBuffer", "BigInt", "Boolean", "DataView", "Date",
		"Error", "EvalError", "Function", "Infinity", "JSON", "Map", "Math",
		"NaN", "Number", "Object", "Promise", "Proxy", "RangeError",
		"ReferenceError", "Reflect", "RegExp", "Set", "String", "Symbol",
		"SyntaxError", "TypeError", "URIError", "Uint8Array", "WeakMap",
		"WeakRef", "WeakSet",
	} {
		out[name] = mdn(name)
	}
	for _, name := range []string{
		"Partial", "Required", "Readonly", "Record", "Pick", "Omit",
		"Exclude", "Extract", "NonNullable", "Parameters", "ReturnType",
		"InstanceType", "Awaited",
	} {
		out[name] = "https://www.typescriptlang.org/docs/handbook/utility-types.html"
	}
	return out
}

// Index is the global symbol index: every declaration in the graph keyed by
// identity. Read-only once linking completes.
type Index struct {
	decls map[docnode.DeclID]*docnode.DeclNode
}

// Decl returns the declaration with the given identity, nil when absent.
func (ix *Index) Decl(id docnode.DeclID) *docnode.DeclNode {
	return ix.decls[id]
}

// IDs returns every indexed identity in sorted order.
func (ix *Index) IDs() []docnode.DeclID {
	ids := make([]docnode.DeclID, 0, len(ix.decls))
	for id := range ix.decls {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Len returns the number of indexed declarations.
func (ix *Index) Len() int {
	return len(ix.decls)
}

// Link resolves every TypeRef in the graph and returns the global symbol
// index. By this point the graph is immutable apart from the resolution
// slots inside TypeRefs, and each declaration's refs are disjoint, so
// modules link in parallel.
func Link(g *loader.Graph, table *exports.Table, ambient Ambient) *Index {
	index := &Index{decls: make(map[docnode.DeclID]*docnode.DeclNode)}
	for _, id := range g.ModuleIDs() {
		for _, d := range g.Modules[id].Decls() {
			docnode.Walk(d, func(n *docnode.DeclNode) {
				index.decls[n.ID()] = n
			})
		}
	}

	eg := new(errgroup.Group)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, id := range g.ModuleIDs() {
		mod := g.Modules[id]
		if mod.Symbols == nil {
			continue
		}
		eg.Go(func() error {
			newModuleLinker(mod, g, table, ambient).run()
			return nil
		})
	}
	// Workers never fail; Wait is only the barrier.
	_ = eg.Wait()
	return index
}

type moduleLinker struct {
	mod     *loader.Module
	graph   *loader.Graph
	table   *exports.Table
	ambient Ambient

	topLevel map[string][]*docnode.DeclNode
	imports  map[string]docnode.ImportRecord
}

func newModuleLinker(mod *loader.Module, g *loader.Graph, table *exports.Table, ambient Ambient) *moduleLinker {
	ml := &moduleLinker{
		mod:      mod,
		graph:    g,
		table:    table,
		ambient:  ambient,
		topLevel: make(map[string][]*docnode.DeclNode),
		imports:  make(map[string]docnode.ImportRecord),
	}
	for _, d := range mod.Decls() {
		ml.topLevel[d.Name] = append(ml.topLevel[d.Name], d)
	}
	for _, imp := range mod.Symbols.Imports {
		ml.imports[imp.LocalName] = imp
	}
	return ml
}

// run links every declaration of the module, descending into namespace
// bodies with their local scopes stacked on top of the module scope.
func (ml *moduleLinker) run() {
	var scopes []map[string][]*docnode.DeclNode
	var link func(d *docnode.DeclNode)
	link = func(d *docnode.DeclNode) {
		for _, ref := range d.TypeRefs() {
			ml.resolveRef(ref, scopes)
		}
		if d.Namespace != nil {
			scope := make(map[string][]*docnode.DeclNode)
			for _, child := range d.Namespace.Decls {
				scope[child.Name] = append(scope[child.Name], child)
			}
			scopes = append(scopes, scope)
			for _, child := range d.Namespace.Decls {
				link(child)
			}
			scopes = scopes[:len(scopes)-1]
		}
	}
	for _, d := range ml.mod.Decls() {
		link(d)
	}
}

// resolveRef fills the ref's resolution slot. Resolution order: enclosing
// namespace scopes innermost first, the module's own declarations, names
// brought in by the module's imports (one hop through the resolved export
// tables), the ambient table, then Unresolved. Unresolved is a normal
// terminal state, not an error.
func (ml *moduleLinker) resolveRef(ref *docnode.TypeRef, scopes []map[string][]*docnode.DeclNode) {
	if ref.Resolved != nil || ref.Name == "" {
		if ref.Resolved == nil {
			ref.Resolved = &docnode.ResolvedRef{Kind: docnode.RefUnresolved}
		}
		return
	}

	for i := len(scopes) - 1; i >= 0; i-- {
		if decls := scopes[i][ref.Name]; len(decls) > 0 {
			ref.Resolved = ml.qualified(ref, decls[0])
			return
		}
	}

	if decls := ml.topLevel[ref.Name]; len(decls) > 0 {
		ref.Resolved = ml.qualified(ref, decls[0])
		return
	}

	if imp, ok := ml.imports[ref.Name]; ok {
		ref.Resolved = ml.resolveImport(ref, imp)
		return
	}

	if href, ok := ml.ambient[ref.Name]; ok {
		ref.Resolved = &docnode.ResolvedRef{Kind: docnode.RefExternal, Href: href}
		return
	}

	ref.Resolved = &docnode.ResolvedRef{Kind: docnode.RefUnresolved}
}

// qualified resolves a plain or dotted reference that starts at a local
// declaration. For dotted names whose head is a namespace, the tail is
// looked up inside the namespace body.
func (ml *moduleLinker) qualified(ref *docnode.TypeRef, head *docnode.DeclNode) *docnode.ResolvedRef {
	segments := dotSegments(ref.Raw)
	if len(segments) <= 1 || head.Namespace == nil {
		return &docnode.ResolvedRef{Kind: docnode.RefLocal, Target: head.ID()}
	}

	current := head
	for _, segment := range segments[1:] {
		if current.Namespace == nil {
			break
		}
		var next *docnode.DeclNode
		for _, child := range current.Namespace.Decls {
			if child.Name == segment {
				next = child
				break
			}
		}
		if next == nil {
			// Dotted tail missing: link the namespace head itself.
			return &docnode.ResolvedRef{Kind: docnode.RefLocal, Target: current.ID()}
		}
		current = next
	}
	return &docnode.ResolvedRef{Kind: docnode.RefLocal, Target: current.ID()}
}

// resolveImport follows one import hop through the export resolver's output,
// so chains of re-exports land directly on the declaring module.
func (ml *moduleLinker) resolveImport(ref *docnode.TypeRef, imp docnode.ImportRecord) *docnode.ResolvedRef {
	source, ok := ml.mod.Resolved[imp.Specifier]
	if !ok {
		return &docnode.ResolvedRef{Kind: docnode.RefUnresolved}
	}

	name := imp.Imported
	if imp.Namespace {
		// import * as ns: a dotted reference selects an export of the
		// source module; a bare one names the module itself.
		segments := dotSegments(ref.Raw)
		if len(segments) <= 1 {
			return &docnode.ResolvedRef{Kind: docnode.RefUnresolved}
		}
		name = segments[1]
	}

	binding, ok := ml.table.Lookup(source, name)
	if !ok {
		return &docnode.ResolvedRef{Kind: docnode.RefUnresolved}
	}

	switch binding.State {
	case exports.BindingResolved:
		// Look the target up among the declaring module's top-level decls;
		// its overload index need not be zero.
		decls := ml.graph.TopLevel(binding.Target.Module, binding.Target.Name)
		if len(decls) == 0 {
			return &docnode.ResolvedRef{Kind: docnode.RefUnresolved}
		}
		return &docnode.ResolvedRef{Kind: docnode.RefLocal, Target: decls[0].ID()}
	case exports.BindingAmbiguous:
		resolved := &docnode.ResolvedRef{Kind: docnode.RefAmbiguous}
		for _, c := range binding.Candidates {
			if decls := ml.graph.TopLevel(c.Module, c.Name); len(decls) > 0 {
				resolved.Candidates = append(resolved.Candidates, decls[0].ID())
				continue
			}
			resolved.Candidates = append(resolved.Candidates, docnode.DeclID{Module: c.Module, Name: c.Name})
		}
		ml.mod.Diagnostics = append(ml.mod.Diagnostics, docnode.Diagnostic{
			Kind:    docnode.DiagAmbiguousReference,
			Span:    ref.Span,
			Message: fmt.Sprintf("reference %q matches %d declarations", ref.Raw, len(resolved.Candidates)),
		})
		return resolved
	default:
		return &docnode.ResolvedRef{Kind: docnode.RefUnresolved}
	}
}

func dotSegments(raw string) []string {
	head := raw
	if idx := strings.IndexAny(head, "<[({ "); idx != -1 {
		head = head[:idx]
	}
	return strings.Split(head, ".")
}
