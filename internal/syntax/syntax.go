// Package syntax defines the syntax-tree shape the documentation engine
// consumes. The engine never parses raw text itself; a front-end (see
// internal/languages) turns source into this shape.
package syntax

import (
	"fmt"

	"github.com/docgraph-dev/docgraph/internal/docnode"
)

// Node is one syntax-tree node: a kind, a span, an ordered child list, and
// the field name it occupies in its parent, when the grammar assigns one.
type Node struct {
	Kind      string
	FieldName string
	Children  []*Node

	StartByte uint32
	EndByte   uint32
	StartLine int // 1-based
	StartCol  int // 1-based
	EndLine   int
	EndCol    int
}

// Tree is a parsed module: its identifier, the raw source, and the root node.
type Tree struct {
	Module docnode.ModuleID
	Source []byte
	Root   *Node
}

// Parser turns raw module source into a Tree, or fails with a *ParseError.
type Parser interface {
	Parse(module docnode.ModuleID, source []byte) (*Tree, error)
}

// ParseError reports an unparsable module, carrying the span of the failure.
type ParseError struct {
	Span docnode.Span
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Span, e.Msg)
}

// Text returns the source text covered by the node.
func (t *Tree) Text(n *Node) string {
	if n == nil {
		return ""
	}
	start, end := int(n.StartByte), int(n.EndByte)
	if start < 0 || end > len(t.Source) || start > end {
		return ""
	}
	return string(t.Source[start:end])
}

// Span converts a node's position into a docnode.Span for this module.
func (t *Tree) Span(n *Node) docnode.Span {
	if n == nil {
		return docnode.Span{Module: t.Module}
	}
	return docnode.Span{
		Module:    t.Module,
		StartLine: n.StartLine,
		StartCol:  n.StartCol,
		EndLine:   n.EndLine,
		EndCol:    n.EndCol,
	}
}

// Field returns the first child occupying the named grammar field.
func (n *Node) Field(name string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.FieldName == name {
			return child
		}
	}
	return nil
}

// ChildOfKind returns the first child of the given kind.
func (n *Node) ChildOfKind(kind string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

// ChildrenOfKind returns all children of the given kind, in order.
func (n *Node) ChildrenOfKind(kind string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			out = append(out, child)
		}
	}
	return out
}
