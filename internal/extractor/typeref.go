package extractor

import (
	"strings"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/syntax"
)

// typeAnnotation unwraps a ": T" annotation node into a TypeRef.
func (e *extraction) typeAnnotation(annotation *syntax.Node) *docnode.TypeRef {
	return e.lastTypeChild(annotation)
}

// lastTypeChild returns the ref for the trailing type node of a wrapper
// (type_annotation, constraint, default_type all end with the type).
func (e *extraction) lastTypeChild(wrapper *syntax.Node) *docnode.TypeRef {
	if wrapper == nil || len(wrapper.Children) == 0 {
		return nil
	}
	return e.typeRef(wrapper.Children[len(wrapper.Children)-1])
}

// typeRef converts a type node into a TypeRef. Named types carry a head
// identifier the linker can resolve; composite types (unions, tuples,
// literals) keep their raw text and surface any named types they contain as
// arguments so those still get linked.
func (e *extraction) typeRef(node *syntax.Node) *docnode.TypeRef {
	if node == nil {
		return nil
	}
	raw := strings.TrimSpace(e.tree.Text(node))
	ref := &docnode.TypeRef{Raw: raw, Span: e.tree.Span(node)}

	switch node.Kind {
	case "type_identifier", "identifier":
		ref.Name = raw
	case "nested_type_identifier", "nested_identifier":
		// Qualified names (A.B.C) link through their head segment.
		ref.Name = strings.TrimSpace(strings.SplitN(raw, ".", 2)[0])
		ref.Raw = raw
	case "generic_type":
		if name := node.Field("name"); name != nil {
			head := strings.TrimSpace(e.tree.Text(name))
			ref.Name = strings.TrimSpace(strings.SplitN(head, ".", 2)[0])
		}
		if args := node.ChildOfKind("type_arguments"); args != nil {
			for _, child := range args.Children {
				if arg := e.typeRef(child); arg != nil && arg.Raw != "" && !isPunctuation(child.Kind) {
					ref.Args = append(ref.Args, arg)
				}
			}
		}
	case "predefined_type", "literal_type", "this_type":
		// Built-ins and literals have no declaration to link to.
	case "array_type":
		if len(node.Children) > 0 {
			if elem := e.typeRef(node.Children[0]); elem != nil && elem.Name != "" {
				ref.Args = append(ref.Args, elem)
			}
		}
	case "parenthesized_type", "type_query", "readonly_type", "optional_type", "rest_type":
		if inner := e.innerTypeRef(node); inner != nil {
			ref.Args = append(ref.Args, inner)
		}
	default:
		// union_type, intersection_type, tuple_type, object_type,
		// function_type, conditional_type, ...: collect named components.
		ref.Args = e.namedComponents(node)
	}
	return ref
}

// namedTypeRef returns a ref only for nodes that name a type; used where the
// grammar mixes keywords and types in one child list.
func (e *extraction) namedTypeRef(node *syntax.Node) *docnode.TypeRef {
	switch node.Kind {
	case "type_identifier", "nested_type_identifier", "generic_type", "identifier", "nested_identifier":
		return e.typeRef(node)
	default:
		return nil
	}
}

func (e *extraction) innerTypeRef(node *syntax.Node) *docnode.TypeRef {
	for _, child := range node.Children {
		if isPunctuation(child.Kind) {
			continue
		}
		if ref := e.typeRef(child); ref != nil && (ref.Name != "" || len(ref.Args) > 0) {
			return ref
		}
	}
	return nil
}

// namedComponents digs named type references out of a composite type node.
func (e *extraction) namedComponents(node *syntax.Node) []*docnode.TypeRef {
	var out []*docnode.TypeRef
	var walk func(n *syntax.Node)
	walk = func(n *syntax.Node) {
		switch n.Kind {
		case "type_identifier", "nested_type_identifier", "generic_type":
			if ref := e.typeRef(n); ref != nil {
				out = append(out, ref)
			}
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, child := range node.Children {
		walk(child)
	}
	return out
}

func isPunctuation(kind string) bool {
	switch kind {
	case "<", ">", ",", "(", ")", "[", "]", "{", "}", "|", "&", ";", ":", "readonly", "typeof", "?", "...":
		return true
	}
	return false
}
