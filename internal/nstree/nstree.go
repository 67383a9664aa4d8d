// Package nstree groups resolved declarations into the hierarchical
// namespace used for navigation and output. The tree is purely derived from
// the graph and the resolved export tables, and read-only once built.
package nstree

import (
	"path"
	"sort"
	"strings"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/exports"
	"github.com/docgraph-dev/docgraph/internal/loader"
)

// Node is one namespace: a module, a directory of modules, or a namespace
// declaration. Children are owned by their parent; DeclNodes are referenced,
// not owned, since a re-exported symbol appears in every namespace that
// exports it.
type Node struct {
	Name string
	Path string // slash-joined qualified path, "" for the root
	Doc  docnode.JSDoc

	// Module is set for nodes backed by a loaded module.
	Module docnode.ModuleID

	children map[string]*Node
	groups   map[string][]*docnode.DeclNode
}

func newNode(name, parentPath string) *Node {
	nodePath := name
	if parentPath != "" {
		nodePath = parentPath + "/" + name
	}
	return &Node{
		Name:     name,
		Path:     nodePath,
		children: make(map[string]*Node),
		groups:   make(map[string][]*docnode.DeclNode),
	}
}

// Child returns the named child namespace, nil when absent.
func (n *Node) Child(name string) *Node {
	return n.children[name]
}

// ChildNames returns child namespace names in sorted order.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Group returns the same-name declaration group for name. Overloads and
// distinct kinds sharing a name stay together; nothing is discarded.
func (n *Node) Group(name string) []*docnode.DeclNode {
	return n.groups[name]
}

// GroupNames returns group names in sorted order.
func (n *Node) GroupNames() []string {
	names := make([]string, 0, len(n.groups))
	for name := range n.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk visits the node and all descendants, parents before children, in
// deterministic order.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, name := range n.ChildNames() {
		n.children[name].Walk(visit)
	}
}

func (n *Node) ensureChild(name string) *Node {
	if child, ok := n.children[name]; ok {
		return child
	}
	child := newNode(name, n.Path)
	n.children[name] = child
	return child
}

func (n *Node) addDecl(name string, decls ...*docnode.DeclNode) {
	for _, d := range decls {
		if d == nil {
			continue
		}
		if containsDecl(n.groups[name], d) {
			continue
		}
		n.groups[name] = append(n.groups[name], d)
	}
}

func containsDecl(group []*docnode.DeclNode, d *docnode.DeclNode) bool {
	for _, existing := range group {
		if existing == d {
			return true
		}
	}
	return false
}

// Build constructs the namespace tree from each module's final export
// bindings plus declared namespace blocks. Every loaded module gets a node
// keyed by its path segments, so unexported declarations still have a
// canonical page position.
func Build(g *loader.Graph, table *exports.Table) *Node {
	root := newNode("", "")
	root.Name = ""
	root.Path = ""

	for _, id := range g.ModuleIDs() {
		mod := g.Modules[id]
		node := root
		for _, segment := range ModulePathSegments(id) {
			node = node.ensureChild(segment)
		}
		node.Module = id
		if mod.Symbols != nil && node.Doc.Empty() {
			node.Doc = mod.Symbols.ModuleDoc
		}
		mountModule(node, g, table, id, map[docnode.ModuleID]bool{})
	}
	return root
}

// mountModule attaches a module's resolved exports to a tree node. Module
// bindings (export * as ns) mount the source module as a child namespace;
// visiting guards against namespace re-export cycles.
func mountModule(node *Node, g *loader.Graph, table *exports.Table, id docnode.ModuleID, visiting map[docnode.ModuleID]bool) {
	if visiting[id] {
		return
	}
	visiting[id] = true
	defer delete(visiting, id)

	exp := table.Module(id)
	if exp == nil {
		return
	}
	for _, name := range exp.Names() {
		binding := exp.Bindings[name]
		switch binding.State {
		case exports.BindingResolved:
			decls := g.TopLevel(binding.Target.Module, binding.Target.Name)
			for _, d := range decls {
				mountDecl(node, name, d)
			}
		case exports.BindingModule:
			child := node.ensureChild(name)
			if src := g.Modules[binding.Module]; src != nil && src.Symbols != nil && child.Doc.Empty() {
				child.Doc = src.Symbols.ModuleDoc
			}
			mountModule(child, g, table, binding.Module, visiting)
		default:
			// Cycle, ambiguous, and unresolved-module bindings carry
			// diagnostics; they have no declaration to place.
		}
	}
}

// mountDecl places one declaration, expanding namespace declarations into
// child nodes. The namespace doc comes from the most specific namespace
// declaration carrying one.
func mountDecl(node *Node, name string, d *docnode.DeclNode) {
	if d.Kind == docnode.KindNamespace && d.Namespace != nil {
		child := node.ensureChild(name)
		if !d.Doc.Empty() {
			child.Doc = d.Doc
		}
		for _, member := range d.Namespace.Decls {
			mountDecl(child, member.Name, member)
		}
		return
	}
	node.addDecl(name, d)
}

// ModulePathSegments converts a module identifier into its tree position:
// the extension is dropped and a trailing index file collapses into its
// directory.
func ModulePathSegments(id docnode.ModuleID) []string {
	p := strings.TrimPrefix(string(id), "./")
	ext := path.Ext(p)
	if ext != "" {
		p = strings.TrimSuffix(p, ext)
	}
	p = strings.TrimSuffix(p, ".d") // .d.ts leaves a .d behind
	if path.Base(p) == "index" && path.Dir(p) != "." {
		p = path.Dir(p)
	}
	if p == "" || p == "." {
		return []string{"index"}
	}
	return strings.Split(p, "/")
}

// ModulePath returns the slash-joined tree path of a module.
func ModulePath(id docnode.ModuleID) string {
	return strings.Join(ModulePathSegments(id), "/")
}
