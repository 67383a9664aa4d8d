package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/fileutil"
	"github.com/docgraph-dev/docgraph/internal/loader"
	"github.com/docgraph-dev/docgraph/internal/nstree"
)

const (
	DocTreeFile    = "doctree.json"
	DocTreeVersion = "docgraph-doctree-v1"
)

// DocTree is the serialized namespace hierarchy with every placed symbol,
// written alongside the HTML output for tooling that consumes the docs
// programmatically.
type DocTree struct {
	Version     string               `json:"version"`
	Root        *TreeNode            `json:"root"`
	Diagnostics []docnode.Diagnostic `json:"diagnostics,omitempty"`
}

// TreeNode is one namespace of the doc tree.
type TreeNode struct {
	Name     string        `json:"name,omitempty"`
	Path     string        `json:"path,omitempty"`
	Module   string        `json:"module,omitempty"`
	Doc      string        `json:"doc,omitempty"`
	Symbols  []SymbolGroup `json:"symbols,omitempty"`
	Children []*TreeNode   `json:"children,omitempty"`
}

// SymbolGroup is a same-name group of declarations inside one namespace.
type SymbolGroup struct {
	Name    string        `json:"name"`
	Href    string        `json:"href"`
	Entries []SymbolEntry `json:"entries"`
}

// SymbolEntry is one declaration of a group.
type SymbolEntry struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Signature  string `json:"signature,omitempty"`
	Summary    string `json:"summary,omitempty"`
	Deprecated bool   `json:"deprecated,omitempty"`
	Module     string `json:"module"`
	Line       int    `json:"line"`
}

// BuildDocTree converts the namespace tree into its serialized form.
// Diagnostics are collected from every module in sorted module order.
func BuildDocTree(tree *nstree.Node, g *loader.Graph) *DocTree {
	return &DocTree{
		Version:     DocTreeVersion,
		Root:        buildTreeNode(tree),
		Diagnostics: sortedDiagnostics(g),
	}
}

func buildTreeNode(node *nstree.Node) *TreeNode {
	out := &TreeNode{
		Name:   node.Name,
		Path:   node.Path,
		Module: string(node.Module),
		Doc:    node.Doc.Summary(),
	}
	for _, name := range node.GroupNames() {
		group := SymbolGroup{Name: name, Href: GroupHref(node, name)}
		for _, d := range node.Group(name) {
			group.Entries = append(group.Entries, SymbolEntry{
				ID:         d.ID().String(),
				Kind:       d.Kind.String(),
				Signature:  Signature(d),
				Summary:    d.Doc.Summary(),
				Deprecated: d.Deprecated(),
				Module:     string(d.Span.Module),
				Line:       d.Span.StartLine,
			})
		}
		out.Symbols = append(out.Symbols, group)
	}
	for _, name := range node.ChildNames() {
		out.Children = append(out.Children, buildTreeNode(node.Child(name)))
	}
	return out
}

func sortedDiagnostics(g *loader.Graph) []docnode.Diagnostic {
	var out []docnode.Diagnostic
	for _, id := range g.ModuleIDs() {
		out = append(out, g.Modules[id].Diagnostics...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Span.Module != out[j].Span.Module {
			return out[i].Span.Module < out[j].Span.Module
		}
		if out[i].Span.StartLine != out[j].Span.StartLine {
			return out[i].Span.StartLine < out[j].Span.StartLine
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// WriteDocTree encodes the tree into outDir, touching the file only when its
// content changes.
func WriteDocTree(outDir string, tree *DocTree) error {
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode doc tree: %w", err)
	}
	data = append(data, '\n')
	return fileutil.WriteIfChanged(filepath.Join(outDir, DocTreeFile), data)
}

// LoadDocTree reads a previously written doc tree back from outDir.
func LoadDocTree(outDir string) (*DocTree, error) {
	path := filepath.Join(outDir, DocTreeFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("doc tree missing at %s (run docgraph generate)", path)
		}
		return nil, fmt.Errorf("failed to read doc tree: %w", err)
	}
	var tree DocTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode doc tree: %w", err)
	}
	return &tree, nil
}
