package extractor

import (
	"strings"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/syntax"
)

// declaration extracts zero or more DeclNodes from one statement node.
// Variable statements may declare several names; everything else yields at
// most one node. Unknown statement shapes that look declarative degrade to
// an opaque node.
func (e *extraction) declaration(node *syntax.Node, doc docnode.JSDoc, exported, isDefault bool) []*docnode.DeclNode {
	switch node.Kind {
	case "function_declaration", "generator_function_declaration", "function_signature":
		if d := e.function(node, doc, exported, isDefault); d != nil {
			return []*docnode.DeclNode{d}
		}
	case "class_declaration", "abstract_class_declaration":
		if d := e.class(node, doc, exported, isDefault); d != nil {
			return []*docnode.DeclNode{d}
		}
	case "interface_declaration":
		if d := e.iface(node, doc, exported); d != nil {
			return []*docnode.DeclNode{d}
		}
	case "enum_declaration":
		if d := e.enum(node, doc, exported); d != nil {
			return []*docnode.DeclNode{d}
		}
	case "type_alias_declaration":
		if d := e.typeAlias(node, doc, exported); d != nil {
			return []*docnode.DeclNode{d}
		}
	case "lexical_declaration", "variable_declaration":
		return e.variables(node, doc, exported)
	case "internal_module", "module":
		if d := e.namespace(node, doc, exported); d != nil {
			return []*docnode.DeclNode{d}
		}
	case "ambient_declaration":
		if inner := e.innerDeclaration(node); inner != nil {
			return e.declaration(inner, doc, exported, isDefault)
		}
	case "expression_statement", "empty_statement", ";":
		return nil
	default:
		if d := e.opaque(node, doc, exported); d != nil {
			return []*docnode.DeclNode{d}
		}
	}
	return nil
}

func (e *extraction) function(node *syntax.Node, doc docnode.JSDoc, exported, isDefault bool) *docnode.DeclNode {
	name := e.tree.Text(node.Field("name"))
	if name == "" {
		if !isDefault {
			return nil
		}
		name = "default"
	}
	fn := e.functionDef(node)
	fn.Generator = node.Kind == "generator_function_declaration" || node.ChildOfKind("*") != nil
	return &docnode.DeclNode{
		Kind:     docnode.KindFunction,
		Name:     name,
		Span:     e.tree.Span(node),
		Doc:      doc,
		Exported: exported,
		Default:  isDefault,
		Function: fn,
	}
}

func (e *extraction) functionDef(node *syntax.Node) *docnode.FunctionDef {
	return &docnode.FunctionDef{
		Params:     e.params(node.Field("parameters")),
		ReturnType: e.typeAnnotation(node.Field("return_type")),
		TypeParams: e.typeParams(node.Field("type_parameters")),
		Async:      node.ChildOfKind("async") != nil,
	}
}

func (e *extraction) params(list *syntax.Node) []docnode.Param {
	params := make([]docnode.Param, 0)
	if list == nil {
		return params
	}
	for _, child := range list.Children {
		switch child.Kind {
		case "required_parameter", "optional_parameter":
			pattern := child.Field("pattern")
			param := docnode.Param{
				Name:     e.patternName(pattern),
				Type:     e.typeAnnotation(child.Field("type")),
				Optional: child.Kind == "optional_parameter",
			}
			if pattern != nil && pattern.Kind == "rest_pattern" {
				param.Rest = true
			}
			params = append(params, param)
		case "identifier":
			// Plain JavaScript parameters have no wrapper node.
			params = append(params, docnode.Param{Name: e.tree.Text(child)})
		case "rest_pattern":
			params = append(params, docnode.Param{Name: e.patternName(child), Rest: true})
		}
	}
	return params
}

func (e *extraction) patternName(pattern *syntax.Node) string {
	if pattern == nil {
		return ""
	}
	switch pattern.Kind {
	case "identifier", "this":
		return e.tree.Text(pattern)
	case "rest_pattern":
		for _, child := range pattern.Children {
			if child.Kind == "identifier" {
				return e.tree.Text(child)
			}
		}
	}
	// Destructuring patterns keep their raw shape as the display name.
	return clipRaw(e.tree.Text(pattern))
}

func (e *extraction) typeParams(list *syntax.Node) []docnode.TypeParam {
	if list == nil {
		return nil
	}
	var out []docnode.TypeParam
	for _, child := range list.ChildrenOfKind("type_parameter") {
		tp := docnode.TypeParam{Name: e.tree.Text(child.Field("name"))}
		if constraint := child.ChildOfKind("constraint"); constraint != nil {
			tp.Constraint = e.lastTypeChild(constraint)
		}
		if def := child.ChildOfKind("default_type"); def != nil {
			tp.Default = e.lastTypeChild(def)
		}
		out = append(out, tp)
	}
	return out
}

func (e *extraction) class(node *syntax.Node, doc docnode.JSDoc, exported, isDefault bool) *docnode.DeclNode {
	name := e.tree.Text(node.Field("name"))
	if name == "" {
		if !isDefault {
			return nil
		}
		name = "default"
	}

	def := &docnode.ClassDef{
		TypeParams: e.typeParams(node.Field("type_parameters")),
		Members:    make([]docnode.ClassMember, 0),
		Abstract:   node.Kind == "abstract_class_declaration",
	}

	if heritage := node.ChildOfKind("class_heritage"); heritage != nil {
		if ext := heritage.ChildOfKind("extends_clause"); ext != nil {
			if value := ext.Field("value"); value != nil {
				def.Extends = e.typeRef(value)
			}
		}
		if impl := heritage.ChildOfKind("implements_clause"); impl != nil {
			for _, child := range impl.Children {
				if ref := e.namedTypeRef(child); ref != nil {
					def.Implements = append(def.Implements, ref)
				}
			}
		}
	}

	if body := node.Field("body"); body != nil {
		def.Members = e.classMembers(body)
	}

	return &docnode.DeclNode{
		Kind:     docnode.KindClass,
		Name:     name,
		Span:     e.tree.Span(node),
		Doc:      doc,
		Exported: exported,
		Default:  isDefault,
		Class:    def,
	}
}

func (e *extraction) classMembers(body *syntax.Node) []docnode.ClassMember {
	members := make([]docnode.ClassMember, 0)
	var lastComment *syntax.Node
	for _, child := range body.Children {
		if child.Kind == "comment" {
			lastComment = child
			continue
		}
		doc := e.docFor(lastComment, child)
		lastComment = nil

		switch child.Kind {
		case "method_definition", "abstract_method_signature", "method_signature":
			member := docnode.ClassMember{
				Kind:     docnode.MemberMethod,
				Name:     e.tree.Text(child.Field("name")),
				Span:     e.tree.Span(child),
				Doc:      doc,
				Function: e.functionDef(child),
				Static:   child.ChildOfKind("static") != nil,
				Abstract: child.Kind == "abstract_method_signature" || child.ChildOfKind("abstract") != nil,
			}
			switch {
			case child.ChildOfKind("get") != nil:
				member.Kind = docnode.MemberGetter
			case child.ChildOfKind("set") != nil:
				member.Kind = docnode.MemberSetter
			case member.Name == "constructor":
				member.Kind = docnode.MemberConstructor
			}
			member.Accessibility = e.accessibility(child)
			if member.Name != "" {
				members = append(members, member)
			}
		case "public_field_definition", "property_signature":
			member := docnode.ClassMember{
				Kind:          docnode.MemberProperty,
				Name:          e.tree.Text(child.Field("name")),
				Span:          e.tree.Span(child),
				Doc:           doc,
				Type:          e.typeAnnotation(child.Field("type")),
				Static:        child.ChildOfKind("static") != nil,
				Abstract:      child.ChildOfKind("abstract") != nil,
				Readonly:      child.ChildOfKind("readonly") != nil,
				Optional:      child.ChildOfKind("?") != nil,
				Accessibility: e.accessibility(child),
			}
			if member.Name != "" {
				members = append(members, member)
			}
		}
	}
	return members
}

func (e *extraction) accessibility(node *syntax.Node) string {
	if mod := node.ChildOfKind("accessibility_modifier"); mod != nil {
		return e.tree.Text(mod)
	}
	return ""
}

func (e *extraction) iface(node *syntax.Node, doc docnode.JSDoc, exported bool) *docnode.DeclNode {
	name := e.tree.Text(node.Field("name"))
	if name == "" {
		return nil
	}

	def := &docnode.InterfaceDef{
		TypeParams: e.typeParams(node.Field("type_parameters")),
		Members:    make([]docnode.ClassMember, 0),
	}

	if ext := node.ChildOfKind("extends_type_clause"); ext != nil {
		for _, child := range ext.Children {
			if ref := e.namedTypeRef(child); ref != nil {
				def.Extends = append(def.Extends, ref)
			}
		}
	}

	if body := node.Field("body"); body != nil {
		var lastComment *syntax.Node
		for _, child := range body.Children {
			if child.Kind == "comment" {
				lastComment = child
				continue
			}
			memberDoc := e.docFor(lastComment, child)
			lastComment = nil

			switch child.Kind {
			case "method_signature":
				member := docnode.ClassMember{
					Kind:     docnode.MemberMethod,
					Name:     e.tree.Text(child.Field("name")),
					Span:     e.tree.Span(child),
					Doc:      memberDoc,
					Function: e.functionDef(child),
					Optional: child.ChildOfKind("?") != nil,
				}
				if member.Name != "" {
					def.Members = append(def.Members, member)
				}
			case "property_signature":
				member := docnode.ClassMember{
					Kind:     docnode.MemberProperty,
					Name:     e.tree.Text(child.Field("name")),
					Span:     e.tree.Span(child),
					Doc:      memberDoc,
					Type:     e.typeAnnotation(child.Field("type")),
					Readonly: child.ChildOfKind("readonly") != nil,
					Optional: child.ChildOfKind("?") != nil,
				}
				if member.Name != "" {
					def.Members = append(def.Members, member)
				}
			case "index_signature", "call_signature", "construct_signature":
				// Preserved, not modeled: raw text under a synthetic name.
				def.Members = append(def.Members, docnode.ClassMember{
					Kind: docnode.MemberProperty,
					Name: "[" + child.Kind + "]",
					Span: e.tree.Span(child),
					Doc:  memberDoc,
					Type: &docnode.TypeRef{Raw: clipRaw(e.tree.Text(child)), Span: e.tree.Span(child)},
				})
			}
		}
	}

	return &docnode.DeclNode{
		Kind:      docnode.KindInterface,
		Name:      name,
		Span:      e.tree.Span(node),
		Doc:       doc,
		Exported:  exported,
		Interface: def,
	}
}

func (e *extraction) enum(node *syntax.Node, doc docnode.JSDoc, exported bool) *docnode.DeclNode {
	name := e.tree.Text(node.Field("name"))
	if name == "" {
		return nil
	}

	def := &docnode.EnumDef{
		Members: make([]docnode.EnumMember, 0),
		Const:   node.ChildOfKind("const") != nil,
	}
	if body := node.Field("body"); body != nil {
		var lastComment *syntax.Node
		for _, child := range body.Children {
			switch child.Kind {
			case "comment":
				lastComment = child
				continue
			case "enum_assignment":
				def.Members = append(def.Members, docnode.EnumMember{
					Name: e.tree.Text(child.Field("name")),
					Init: strings.TrimSpace(e.tree.Text(child.Field("value"))),
					Doc:  e.docFor(lastComment, child),
				})
			case "property_identifier", "string":
				def.Members = append(def.Members, docnode.EnumMember{
					Name: strings.Trim(e.tree.Text(child), `"'`),
					Doc:  e.docFor(lastComment, child),
				})
			}
			lastComment = nil
		}
	}

	return &docnode.DeclNode{
		Kind:     docnode.KindEnum,
		Name:     name,
		Span:     e.tree.Span(node),
		Doc:      doc,
		Exported: exported,
		Enum:     def,
	}
}

func (e *extraction) typeAlias(node *syntax.Node, doc docnode.JSDoc, exported bool) *docnode.DeclNode {
	name := e.tree.Text(node.Field("name"))
	if name == "" {
		return nil
	}
	var target *docnode.TypeRef
	if value := node.Field("value"); value != nil {
		target = e.typeRef(value)
	}
	return &docnode.DeclNode{
		Kind:     docnode.KindTypeAlias,
		Name:     name,
		Span:     e.tree.Span(node),
		Doc:      doc,
		Exported: exported,
		TypeAlias: &docnode.TypeAliasDef{
			Target:     target,
			TypeParams: e.typeParams(node.Field("type_parameters")),
		},
	}
}

func (e *extraction) variables(node *syntax.Node, doc docnode.JSDoc, exported bool) []*docnode.DeclNode {
	declKind := "var"
	if node.Kind == "lexical_declaration" {
		declKind = "const"
		if node.ChildOfKind("let") != nil {
			declKind = "let"
		}
	}

	var out []*docnode.DeclNode
	for _, child := range node.ChildrenOfKind("variable_declarator") {
		name := e.patternName(child.Field("name"))
		if name == "" {
			continue
		}

		// Arrow functions and function expressions document as functions.
		if value := child.Field("value"); value != nil &&
			(value.Kind == "arrow_function" || value.Kind == "function_expression" || value.Kind == "function") {
			out = append(out, &docnode.DeclNode{
				Kind:     docnode.KindFunction,
				Name:     name,
				Span:     e.tree.Span(child),
				Doc:      doc,
				Exported: exported,
				Function: e.functionDef(value),
			})
			continue
		}

		out = append(out, &docnode.DeclNode{
			Kind:     docnode.KindVariable,
			Name:     name,
			Span:     e.tree.Span(child),
			Doc:      doc,
			Exported: exported,
			Variable: &docnode.VariableDef{
				DeclKind: declKind,
				Type:     e.typeAnnotation(child.Field("type")),
			},
		})
	}
	return out
}

func (e *extraction) namespace(node *syntax.Node, doc docnode.JSDoc, exported bool) *docnode.DeclNode {
	nameNode := node.Field("name")
	name := strings.Trim(e.tree.Text(nameNode), `"'`)
	if name == "" {
		return nil
	}

	def := &docnode.NamespaceDef{Decls: make([]*docnode.DeclNode, 0)}
	if body := node.Field("body"); body != nil {
		def.Decls = e.statements(body, true)
	}

	// Dotted names (namespace A.B) nest from the outside in.
	segments := strings.Split(name, ".")
	decl := &docnode.DeclNode{
		Kind:      docnode.KindNamespace,
		Name:      segments[len(segments)-1],
		Span:      e.tree.Span(node),
		Doc:       doc,
		Exported:  exported,
		Namespace: def,
	}
	for i := len(segments) - 2; i >= 0; i-- {
		decl = &docnode.DeclNode{
			Kind:      docnode.KindNamespace,
			Name:      segments[i],
			Span:      e.tree.Span(node),
			Exported:  exported,
			Namespace: &docnode.NamespaceDef{Decls: []*docnode.DeclNode{decl}},
		}
	}
	return decl
}

// opaque keeps an unrecognized declarative statement visible rather than
// dropping it. Statements without any name-like child are skipped.
func (e *extraction) opaque(node *syntax.Node, doc docnode.JSDoc, exported bool) *docnode.DeclNode {
	if !strings.HasSuffix(node.Kind, "_declaration") && !strings.HasSuffix(node.Kind, "_signature") {
		return nil
	}
	name := e.tree.Text(node.Field("name"))
	if name == "" {
		name = node.Kind
	}
	return &docnode.DeclNode{
		Kind:     docnode.KindOpaque,
		Name:     name,
		Span:     e.tree.Span(node),
		Doc:      doc,
		Exported: exported,
		RawText:  clipRaw(e.tree.Text(node)),
	}
}
