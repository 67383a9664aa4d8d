package languages

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/syntax"
)

// TypeScriptParser implements syntax.Parser for TypeScript and JavaScript
// sources. The grammar is chosen per file extension.
type TypeScriptParser struct {
	tsLang  *sitter.Language
	tsxLang *sitter.Language
	jsLang  *sitter.Language
}

// NewTypeScriptParser creates a parser covering .ts, .tsx, and the
// JavaScript extensions.
func NewTypeScriptParser() *TypeScriptParser {
	return &TypeScriptParser{
		tsLang:  typescript.GetLanguage(),
		tsxLang: tsx.GetLanguage(),
		jsLang:  javascript.GetLanguage(),
	}
}

func (t *TypeScriptParser) Language() string {
	return "typescript"
}

func (t *TypeScriptParser) Extensions() []string {
	return []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}
}

// Parse turns one module's source into the engine's syntax-tree shape.
func (t *TypeScriptParser) Parse(module docnode.ModuleID, source []byte) (*syntax.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(t.languageFor(string(module)))

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, &syntax.ParseError{
			Span: docnode.Span{Module: module, StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1},
			Msg:  err.Error(),
		}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, &syntax.ParseError{
			Span: docnode.Span{Module: module, StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1},
			Msg:  "empty syntax tree",
		}
	}

	return &syntax.Tree{
		Module: module,
		Source: source,
		Root:   convertNode(root, ""),
	}, nil
}

func (t *TypeScriptParser) languageFor(path string) *sitter.Language {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tsx"), strings.HasSuffix(lower, ".jsx"):
		return t.tsxLang
	case strings.HasSuffix(lower, ".js"),
		strings.HasSuffix(lower, ".mjs"),
		strings.HasSuffix(lower, ".cjs"):
		return t.jsLang
	default:
		return t.tsLang
	}
}

// convertNode copies a tree-sitter node into the engine's shape. All
// children are kept, including anonymous tokens; keyword tokens such as
// "export" and "*" matter to the extractor.
func convertNode(n *sitter.Node, fieldName string) *syntax.Node {
	out := &syntax.Node{
		Kind:      n.Type(),
		FieldName: fieldName,
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		StartLine: int(n.StartPoint().Row) + 1,
		StartCol:  int(n.StartPoint().Column) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		EndCol:    int(n.EndPoint().Column) + 1,
	}

	count := int(n.ChildCount())
	if count > 0 {
		out.Children = make([]*syntax.Node, 0, count)
		for i := 0; i < count; i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			out.Children = append(out.Children, convertNode(child, n.FieldNameForChild(i)))
		}
	}
	return out
}

// Registry maps file extensions to front-end parsers.
type Registry struct {
	parsers   map[string]NamedParser
	extToName map[string]string
}

// NamedParser is a front-end parser that announces its language name and the
// file extensions it handles.
type NamedParser interface {
	syntax.Parser
	Language() string
	Extensions() []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]NamedParser),
		extToName: make(map[string]string),
	}
}

// NewDefaultRegistry returns a registry with the TypeScript/JavaScript
// front-end registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewTypeScriptParser())
	return r
}

// Register adds a front-end parser to the registry.
func (r *Registry) Register(p NamedParser) {
	r.parsers[p.Language()] = p
	for _, ext := range p.Extensions() {
		r.extToName[ext] = p.Language()
	}
}

// ParserFor returns the parser handling the given module path.
func (r *Registry) ParserFor(path string) (syntax.Parser, bool) {
	ext := strings.ToLower(pathExt(path))
	name, ok := r.extToName[ext]
	if !ok {
		return nil, false
	}
	p, ok := r.parsers[name]
	return p, ok
}

// SupportedExtensions returns every registered file extension.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToName))
	for ext := range r.extToName {
		exts = append(exts, ext)
	}
	return exts
}

// Parse dispatches to the parser matching the module's extension.
func (r *Registry) Parse(module docnode.ModuleID, source []byte) (*syntax.Tree, error) {
	p, ok := r.ParserFor(string(module))
	if !ok {
		return nil, &syntax.ParseError{
			Span: docnode.Span{Module: module, StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1},
			Msg:  fmt.Sprintf("no front-end registered for %q", module),
		}
	}
	return p.Parse(module, source)
}

func pathExt(path string) string {
	if idx := strings.LastIndex(path, "."); idx != -1 {
		return path[idx:]
	}
	return ""
}
