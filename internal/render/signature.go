package render

import (
	"strings"

	"github.com/docgraph-dev/docgraph/internal/docnode"
)

// Signature renders the one-line display signature of a declaration. The
// output is stable across runs; both the search index and the HTML pages
// build on it.
func Signature(d *docnode.DeclNode) string {
	switch d.Kind {
	case docnode.KindFunction:
		return functionSignature(d.Name, d.Function, d.Default)
	case docnode.KindClass:
		return classSignature(d)
	case docnode.KindInterface:
		return interfaceSignature(d)
	case docnode.KindEnum:
		if d.Enum != nil && d.Enum.Const {
			return "const enum " + d.Name
		}
		return "enum " + d.Name
	case docnode.KindTypeAlias:
		return typeAliasSignature(d)
	case docnode.KindVariable:
		return variableSignature(d)
	case docnode.KindNamespace:
		return "namespace " + d.Name
	default:
		if d.RawText != "" {
			return d.RawText
		}
		return d.Name
	}
}

// MemberSignature renders the display signature of a class or interface
// member.
func MemberSignature(m *docnode.ClassMember) string {
	var b strings.Builder
	if m.Accessibility != "" {
		b.WriteString(m.Accessibility)
		b.WriteByte(' ')
	}
	if m.Static {
		b.WriteString("static ")
	}
	if m.Abstract {
		b.WriteString("abstract ")
	}
	if m.Readonly {
		b.WriteString("readonly ")
	}

	switch m.Kind {
	case docnode.MemberGetter:
		b.WriteString("get ")
	case docnode.MemberSetter:
		b.WriteString("set ")
	}

	b.WriteString(m.Name)
	if m.Optional {
		b.WriteByte('?')
	}
	if m.Function != nil {
		b.WriteString(functionTail(m.Function))
	} else if m.Type != nil {
		b.WriteString(": ")
		b.WriteString(m.Type.Raw)
	}
	return b.String()
}

func functionSignature(name string, fn *docnode.FunctionDef, isDefault bool) string {
	var b strings.Builder
	if isDefault {
		b.WriteString("export default ")
	}
	if fn != nil && fn.Async {
		b.WriteString("async ")
	}
	b.WriteString("function")
	if fn != nil && fn.Generator {
		b.WriteByte('*')
	}
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(functionTail(fn))
	return b.String()
}

func functionTail(fn *docnode.FunctionDef) string {
	if fn == nil {
		return "()"
	}
	var b strings.Builder
	b.WriteString(typeParamList(fn.TypeParams))
	b.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Rest {
			b.WriteString("...")
		}
		b.WriteString(p.Name)
		if p.Optional {
			b.WriteByte('?')
		}
		if p.Type != nil {
			b.WriteString(": ")
			b.WriteString(p.Type.Raw)
		}
	}
	b.WriteByte(')')
	if fn.ReturnType != nil {
		b.WriteString(": ")
		b.WriteString(fn.ReturnType.Raw)
	}
	return b.String()
}

func classSignature(d *docnode.DeclNode) string {
	var b strings.Builder
	cls := d.Class
	if cls != nil && cls.Abstract {
		b.WriteString("abstract ")
	}
	b.WriteString("class ")
	b.WriteString(d.Name)
	if cls == nil {
		return b.String()
	}
	b.WriteString(typeParamList(cls.TypeParams))
	if cls.Extends != nil {
		b.WriteString(" extends ")
		b.WriteString(cls.Extends.Raw)
	}
	if len(cls.Implements) > 0 {
		b.WriteString(" implements ")
		for i, ref := range cls.Implements {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ref.Raw)
		}
	}
	return b.String()
}

func interfaceSignature(d *docnode.DeclNode) string {
	var b strings.Builder
	b.WriteString("interface ")
	b.WriteString(d.Name)
	ifc := d.Interface
	if ifc == nil {
		return b.String()
	}
	b.WriteString(typeParamList(ifc.TypeParams))
	if len(ifc.Extends) > 0 {
		b.WriteString(" extends ")
		for i, ref := range ifc.Extends {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ref.Raw)
		}
	}
	return b.String()
}

func typeAliasSignature(d *docnode.DeclNode) string {
	var b strings.Builder
	b.WriteString("type ")
	b.WriteString(d.Name)
	alias := d.TypeAlias
	if alias == nil {
		return b.String()
	}
	b.WriteString(typeParamList(alias.TypeParams))
	if alias.Target != nil {
		b.WriteString(" = ")
		b.WriteString(alias.Target.Raw)
	}
	return b.String()
}

func variableSignature(d *docnode.DeclNode) string {
	var b strings.Builder
	kind := "const"
	if d.Variable != nil && d.Variable.DeclKind != "" {
		kind = d.Variable.DeclKind
	}
	b.WriteString(kind)
	b.WriteByte(' ')
	b.WriteString(d.Name)
	if d.Variable != nil && d.Variable.Type != nil {
		b.WriteString(": ")
		b.WriteString(d.Variable.Type.Raw)
	}
	return b.String()
}

func typeParamList(params []docnode.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('<')
	for i, tp := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tp.Name)
		if tp.Constraint != nil {
			b.WriteString(" extends ")
			b.WriteString(tp.Constraint.Raw)
		}
		if tp.Default != nil {
			b.WriteString(" = ")
			b.WriteString(tp.Default.Raw)
		}
	}
	b.WriteByte('>')
	return b.String()
}
