// Package extractor walks a module's syntax tree once and produces the
// ordered list of declarations it documents, together with the module's raw
// import and export records. Extraction is total: shapes the walker does not
// understand degrade to opaque declarations instead of failing the module.
package extractor

import (
	"strings"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/syntax"
)

// ModuleSymbols is everything extraction yields for one module.
type ModuleSymbols struct {
	Module    docnode.ModuleID
	Decls     []*docnode.DeclNode
	Imports   []docnode.ImportRecord
	Exports   []docnode.ExportRecord
	ModuleDoc docnode.JSDoc

	// Specifiers lists every raw specifier referenced by imports and
	// re-exports, deduplicated in first-seen order. The loader follows
	// these to close the graph.
	Specifiers []string
}

type extraction struct {
	tree *syntax.Tree
	out  *ModuleSymbols
	seen map[string]bool // specifier dedupe
}

// Extract produces the module's symbols from its syntax tree.
func Extract(tree *syntax.Tree) *ModuleSymbols {
	e := &extraction{
		tree: tree,
		out:  &ModuleSymbols{Module: tree.Module},
		seen: make(map[string]bool),
	}

	e.out.ModuleDoc = e.moduleDoc(tree.Root)
	e.out.Decls = e.statements(tree.Root, false)
	assignOverloadIndexes(e.out.Decls)
	return e.out
}

// statements walks one statement list (the program or a namespace body) and
// extracts declarations in source order. exportedScope marks namespace
// bodies whose members are visible through the namespace.
func (e *extraction) statements(list *syntax.Node, exportedScope bool) []*docnode.DeclNode {
	var decls []*docnode.DeclNode
	var lastComment *syntax.Node

	for _, child := range list.Children {
		switch child.Kind {
		case "comment":
			lastComment = child
			continue
		case "import_statement":
			e.importStatement(child)
		case "export_statement":
			decls = append(decls, e.exportStatement(child, e.docFor(lastComment, child))...)
		case "ambient_declaration":
			// declare <decl>: document the inner declaration.
			if inner := e.innerDeclaration(child); inner != nil {
				decls = append(decls, e.declaration(inner, e.docFor(lastComment, child), exportedScope, false)...)
			}
		default:
			decls = append(decls, e.declaration(child, e.docFor(lastComment, child), exportedScope, false)...)
		}
		lastComment = nil
	}
	return decls
}

// docFor attaches a doc comment only when it immediately precedes the
// declaration (at most one blank line of separation).
func (e *extraction) docFor(comment *syntax.Node, decl *syntax.Node) docnode.JSDoc {
	if comment == nil || decl == nil {
		return docnode.JSDoc{}
	}
	text := e.tree.Text(comment)
	if !strings.HasPrefix(text, "/**") {
		return docnode.JSDoc{}
	}
	if decl.StartLine-comment.EndLine > 1 {
		return docnode.JSDoc{}
	}
	return docnode.ParseJSDoc(text)
}

// moduleDoc finds a leading doc comment that is not attached to the first
// declaration: either separated by a blank line, followed by another
// comment, or carrying an @module tag.
func (e *extraction) moduleDoc(root *syntax.Node) docnode.JSDoc {
	var first *syntax.Node
	var next *syntax.Node
	for _, child := range root.Children {
		if first == nil {
			if child.Kind != "comment" {
				return docnode.JSDoc{}
			}
			first = child
			continue
		}
		next = child
		break
	}
	if first == nil {
		return docnode.JSDoc{}
	}
	text := e.tree.Text(first)
	if !strings.HasPrefix(text, "/**") {
		return docnode.JSDoc{}
	}

	doc := docnode.ParseJSDoc(text)
	for _, tag := range doc.Tags {
		if tag.Kind == docnode.TagUnknown && strings.EqualFold(tag.Name, "module") {
			return doc
		}
	}
	if next == nil || next.Kind == "comment" || next.StartLine-first.EndLine > 1 {
		return doc
	}
	return docnode.JSDoc{}
}

func (e *extraction) innerDeclaration(ambient *syntax.Node) *syntax.Node {
	for _, child := range ambient.Children {
		switch child.Kind {
		case "declare", "comment":
			continue
		default:
			return child
		}
	}
	return nil
}

func (e *extraction) recordSpecifier(spec string) {
	if spec == "" || e.seen[spec] {
		return
	}
	e.seen[spec] = true
	e.out.Specifiers = append(e.out.Specifiers, spec)
}

func (e *extraction) importStatement(node *syntax.Node) {
	spec := e.stringValue(node.Field("source"))
	if spec == "" {
		return
	}
	e.recordSpecifier(spec)
	span := e.tree.Span(node)

	clause := node.ChildOfKind("import_clause")
	if clause == nil {
		return // bare side-effect import
	}
	for _, part := range clause.Children {
		switch part.Kind {
		case "identifier":
			e.out.Imports = append(e.out.Imports, docnode.ImportRecord{
				LocalName: e.tree.Text(part),
				Imported:  "default",
				Specifier: spec,
				Span:      span,
			})
		case "namespace_import":
			if name := part.ChildOfKind("identifier"); name != nil {
				e.out.Imports = append(e.out.Imports, docnode.ImportRecord{
					LocalName: e.tree.Text(name),
					Imported:  "*",
					Specifier: spec,
					Namespace: true,
					Span:      span,
				})
			}
		case "named_imports":
			for _, specNode := range part.ChildrenOfKind("import_specifier") {
				name := e.tree.Text(specNode.Field("name"))
				local := name
				if alias := specNode.Field("alias"); alias != nil {
					local = e.tree.Text(alias)
				}
				if name == "" || local == "" {
					continue
				}
				e.out.Imports = append(e.out.Imports, docnode.ImportRecord{
					LocalName: local,
					Imported:  name,
					Specifier: spec,
					Span:      span,
				})
			}
		}
	}
}

// exportStatement handles every export form: exported declarations, default
// exports, export clauses, and re-exports (named, renamed, wildcard).
func (e *extraction) exportStatement(node *syntax.Node, doc docnode.JSDoc) []*docnode.DeclNode {
	span := e.tree.Span(node)
	spec := e.stringValue(node.Field("source"))
	isDefault := node.ChildOfKind("default") != nil

	// export <declaration> / export default <declaration>
	if decl := node.Field("declaration"); decl != nil {
		decls := e.declaration(decl, doc, true, isDefault)
		for _, d := range decls {
			exported := d.Name
			if isDefault {
				// Importers see a default export under the name "default".
				exported = "default"
			}
			e.out.Exports = append(e.out.Exports, docnode.ExportRecord{
				Kind:     docnode.ExportLocal,
				Exported: exported,
				Original: d.Name,
				Span:     d.Span,
			})
		}
		return decls
	}

	if spec != "" {
		e.recordSpecifier(spec)

		// export * from "m" / export * as ns from "m"
		if ns := node.ChildOfKind("namespace_export"); ns != nil {
			name := ""
			if id := ns.ChildOfKind("identifier"); id != nil {
				name = e.tree.Text(id)
			}
			e.out.Exports = append(e.out.Exports, docnode.ExportRecord{
				Kind:      docnode.ExportNamed,
				Exported:  name,
				Original:  "*",
				Specifier: spec,
				Span:      span,
			})
			return nil
		}
		if node.ChildOfKind("*") != nil {
			e.out.Exports = append(e.out.Exports, docnode.ExportRecord{
				Kind:      docnode.ExportWildcard,
				Specifier: spec,
				Span:      span,
			})
			return nil
		}
		// export { a, b as c } from "m"
		if clause := node.ChildOfKind("export_clause"); clause != nil {
			for _, specNode := range clause.ChildrenOfKind("export_specifier") {
				name := e.tree.Text(specNode.Field("name"))
				exported := name
				if alias := specNode.Field("alias"); alias != nil {
					exported = e.tree.Text(alias)
				}
				if name == "" || exported == "" {
					continue
				}
				e.out.Exports = append(e.out.Exports, docnode.ExportRecord{
					Kind:      docnode.ExportNamed,
					Exported:  exported,
					Original:  name,
					Specifier: spec,
					Span:      e.tree.Span(specNode),
				})
			}
		}
		return nil
	}

	// export { a, b as c } over local bindings
	if clause := node.ChildOfKind("export_clause"); clause != nil {
		for _, specNode := range clause.ChildrenOfKind("export_specifier") {
			name := e.tree.Text(specNode.Field("name"))
			exported := name
			if alias := specNode.Field("alias"); alias != nil {
				exported = e.tree.Text(alias)
			}
			if name == "" || exported == "" {
				continue
			}
			e.out.Exports = append(e.out.Exports, docnode.ExportRecord{
				Kind:     docnode.ExportLocal,
				Exported: exported,
				Original: name,
				Span:     e.tree.Span(specNode),
			})
		}
		return nil
	}

	// export = <expression> (export assignment): importers consume it as the
	// module's default binding.
	if node.ChildOfKind("=") != nil {
		expr := e.exportAssignmentValue(node)
		if expr != nil && expr.Kind == "identifier" {
			e.out.Exports = append(e.out.Exports, docnode.ExportRecord{
				Kind:     docnode.ExportLocal,
				Exported: "default",
				Original: e.tree.Text(expr),
				Span:     span,
			})
			return nil
		}
		// Non-identifier assignment: keep it visible as an opaque default.
		d := &docnode.DeclNode{
			Kind:     docnode.KindOpaque,
			Name:     "default",
			Span:     span,
			Doc:      doc,
			Exported: true,
			Default:  true,
			RawText:  clipRaw(e.tree.Text(expr)),
		}
		e.out.Exports = append(e.out.Exports, docnode.ExportRecord{
			Kind:     docnode.ExportLocal,
			Exported: "default",
			Original: "default",
			Span:     span,
		})
		return []*docnode.DeclNode{d}
	}

	// export default <expression>: documented under the name "default".
	if value := node.Field("value"); value != nil {
		d := &docnode.DeclNode{
			Kind:     docnode.KindOpaque,
			Name:     "default",
			Span:     span,
			Doc:      doc,
			Exported: true,
			Default:  true,
			RawText:  clipRaw(e.tree.Text(value)),
		}
		e.out.Exports = append(e.out.Exports, docnode.ExportRecord{
			Kind:     docnode.ExportLocal,
			Exported: "default",
			Original: "default",
			Span:     span,
		})
		return []*docnode.DeclNode{d}
	}

	return nil
}

// assignOverloadIndexes numbers same-name declarations in source order.
// Overloads are not an error; they stay distinct DeclNodes. One counter
// spans the whole module, namespace bodies included, so a namespace member
// sharing a top-level name keeps a distinct identity.
func assignOverloadIndexes(decls []*docnode.DeclNode) {
	numberDecls(decls, make(map[string]int))
}

func numberDecls(decls []*docnode.DeclNode, counts map[string]int) {
	for _, d := range decls {
		d.Overload = counts[d.Name]
		counts[d.Name]++
		if d.Namespace != nil {
			numberDecls(d.Namespace.Decls, counts)
		}
	}
}

// exportAssignmentValue picks the assigned expression out of an
// export-assignment statement, skipping the keyword and punctuation tokens.
func (e *extraction) exportAssignmentValue(node *syntax.Node) *syntax.Node {
	for _, child := range node.Children {
		switch child.Kind {
		case "export", "=", ";", "comment":
			continue
		}
		return child
	}
	return nil
}

// stringValue unwraps a string literal node ("./mod" → ./mod).
func (e *extraction) stringValue(node *syntax.Node) string {
	if node == nil {
		return ""
	}
	text := e.tree.Text(node)
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'' || text[0] == '`') {
		return text[1 : len(text)-1]
	}
	return text
}

// clipRaw bounds opaque signature text to a single reasonable line.
func clipRaw(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx != -1 {
		text = text[:idx] + " …"
	}
	const max = 200
	if len(text) > max {
		text = text[:max] + "…"
	}
	return text
}
