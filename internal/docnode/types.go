package docnode

import "fmt"

// ModuleID is the canonicalized specifier of a resolved module.
// It never changes once the loader has assigned it.
type ModuleID string

// Span locates an entity inside a module. Lines and columns are 1-based.
type Span struct {
	Module    ModuleID `json:"module"`
	StartLine int      `json:"start_line"`
	StartCol  int      `json:"start_col"`
	EndLine   int      `json:"end_line"`
	EndCol    int      `json:"end_col"`
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.Module, s.StartLine, s.StartCol)
}

// DeclKind is the closed set of declaration kinds. Anything the extractor
// does not understand degrades to KindOpaque instead of failing the module.
type DeclKind int

const (
	KindFunction DeclKind = iota
	KindClass
	KindInterface
	KindEnum
	KindTypeAlias
	KindVariable
	KindNamespace
	KindOpaque
)

func (k DeclKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindTypeAlias:
		return "typealias"
	case KindVariable:
		return "variable"
	case KindNamespace:
		return "namespace"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// DeclID identifies a declaration across the whole graph. A name may carry
// several overloads; the overload index keeps them distinct.
type DeclID struct {
	Module   ModuleID `json:"module"`
	Name     string   `json:"name"`
	Overload int      `json:"overload"`
}

func (id DeclID) String() string {
	if id.Overload == 0 {
		return fmt.Sprintf("%s~%s", id.Module, id.Name)
	}
	return fmt.Sprintf("%s~%s#%d", id.Module, id.Name, id.Overload)
}

// DeclNode is one documented declaration. It is immutable after extraction;
// only the resolution slots inside its TypeRefs are filled in later, and only
// by the linker stage.
type DeclNode struct {
	Kind     DeclKind `json:"kind"`
	Name     string   `json:"name"`
	Span     Span     `json:"span"`
	Doc      JSDoc    `json:"doc"`
	Exported bool     `json:"exported"`
	Default  bool     `json:"default,omitempty"`
	Overload int      `json:"overload,omitempty"`

	// Exactly one of these is populated, matching Kind. Opaque decls carry
	// only RawText.
	Function  *FunctionDef  `json:"function,omitempty"`
	Class     *ClassDef     `json:"class,omitempty"`
	Interface *InterfaceDef `json:"interface,omitempty"`
	Enum      *EnumDef      `json:"enum,omitempty"`
	TypeAlias *TypeAliasDef `json:"type_alias,omitempty"`
	Variable  *VariableDef  `json:"variable,omitempty"`
	Namespace *NamespaceDef `json:"namespace,omitempty"`
	RawText   string        `json:"raw_text,omitempty"`
}

// ID returns the graph-wide identity of the declaration.
func (d *DeclNode) ID() DeclID {
	return DeclID{Module: d.Span.Module, Name: d.Name, Overload: d.Overload}
}

// Deprecated reports whether the declaration carries an @deprecated tag.
func (d *DeclNode) Deprecated() bool {
	return d.Doc.Deprecated()
}

// TypeRef is a reference to a named type appearing inside a signature.
// Resolution is not attempted during extraction; the linker fills Resolved
// once the whole graph is loaded.
type TypeRef struct {
	Raw      string       `json:"raw"`
	Name     string       `json:"name"`
	Args     []*TypeRef   `json:"args,omitempty"`
	Span     Span         `json:"span"`
	Resolved *ResolvedRef `json:"resolved,omitempty"`
}

// RefKind classifies the terminal state of a resolved reference.
type RefKind int

const (
	RefUnresolved RefKind = iota
	RefLocal
	RefExternal
	RefAmbiguous
)

func (k RefKind) String() string {
	switch k {
	case RefLocal:
		return "local"
	case RefExternal:
		return "external"
	case RefAmbiguous:
		return "ambiguous"
	default:
		return "unresolved"
	}
}

// ResolvedRef is the outcome of linking one TypeRef. Every TypeRef ends in
// exactly one of the four states; Unresolved is a normal terminal state, not
// an error.
type ResolvedRef struct {
	Kind       RefKind  `json:"kind"`
	Target     DeclID   `json:"target,omitempty"`
	Href       string   `json:"href,omitempty"`
	Candidates []DeclID `json:"candidates,omitempty"`
}

// Param is one entry of an ordered parameter list.
type Param struct {
	Name     string   `json:"name"`
	Type     *TypeRef `json:"type,omitempty"`
	Optional bool     `json:"optional,omitempty"`
	Rest     bool     `json:"rest,omitempty"`
}

// TypeParam is a generic parameter with optional constraint and default.
type TypeParam struct {
	Name       string   `json:"name"`
	Constraint *TypeRef `json:"constraint,omitempty"`
	Default    *TypeRef `json:"default,omitempty"`
}

// FunctionDef describes a function or method signature.
type FunctionDef struct {
	Params     []Param     `json:"params"`
	ReturnType *TypeRef    `json:"return_type,omitempty"`
	TypeParams []TypeParam `json:"type_params,omitempty"`
	Async      bool        `json:"async,omitempty"`
	Generator  bool        `json:"generator,omitempty"`
}

// ClassMemberKind distinguishes class member shapes.
type ClassMemberKind int

const (
	MemberConstructor ClassMemberKind = iota
	MemberMethod
	MemberProperty
	MemberGetter
	MemberSetter
)

func (k ClassMemberKind) String() string {
	switch k {
	case MemberConstructor:
		return "constructor"
	case MemberMethod:
		return "method"
	case MemberProperty:
		return "property"
	case MemberGetter:
		return "getter"
	case MemberSetter:
		return "setter"
	default:
		return "unknown"
	}
}

// ClassMember is a constructor, method, property, or accessor of a class or
// interface.
type ClassMember struct {
	Kind          ClassMemberKind `json:"kind"`
	Name          string          `json:"name"`
	Span          Span            `json:"span"`
	Doc           JSDoc           `json:"doc"`
	Function      *FunctionDef    `json:"function,omitempty"`
	Type          *TypeRef        `json:"type,omitempty"`
	Static        bool            `json:"static,omitempty"`
	Abstract      bool            `json:"abstract,omitempty"`
	Readonly      bool            `json:"readonly,omitempty"`
	Optional      bool            `json:"optional,omitempty"`
	Accessibility string          `json:"accessibility,omitempty"` // public | protected | private
}

// ClassDef describes a class declaration.
type ClassDef struct {
	Extends    *TypeRef      `json:"extends,omitempty"`
	Implements []*TypeRef    `json:"implements,omitempty"`
	TypeParams []TypeParam   `json:"type_params,omitempty"`
	Members    []ClassMember `json:"members"`
	Abstract   bool          `json:"abstract,omitempty"`
}

// InterfaceDef describes an interface declaration. Index and call signatures
// are preserved as opaque members carrying raw text.
type InterfaceDef struct {
	Extends    []*TypeRef    `json:"extends,omitempty"`
	TypeParams []TypeParam   `json:"type_params,omitempty"`
	Members    []ClassMember `json:"members"`
}

// EnumMember is one enum constant with its raw initializer text, if any.
type EnumMember struct {
	Name string `json:"name"`
	Init string `json:"init,omitempty"`
	Doc  JSDoc  `json:"doc"`
}

// EnumDef describes an enum declaration.
type EnumDef struct {
	Members []EnumMember `json:"members"`
	Const   bool         `json:"const,omitempty"`
}

// TypeAliasDef describes a type alias. Target carries the aliased type.
type TypeAliasDef struct {
	Target     *TypeRef    `json:"target,omitempty"`
	TypeParams []TypeParam `json:"type_params,omitempty"`
}

// VariableDef describes a variable or constant declaration.
type VariableDef struct {
	DeclKind string   `json:"decl_kind"` // const | let | var
	Type     *TypeRef `json:"type,omitempty"`
}

// NamespaceDef holds the declarations nested inside a namespace or module
// block, in source order. Children keep a reference back to their parent by
// construction; they are not flattened into the module's top level.
type NamespaceDef struct {
	Decls []*DeclNode `json:"decls"`
}

// Walk visits d and every nested declaration reachable through namespace
// bodies, in source order.
func Walk(d *DeclNode, visit func(*DeclNode)) {
	visit(d)
	if d.Namespace != nil {
		for _, child := range d.Namespace.Decls {
			Walk(child, visit)
		}
	}
}

// TypeRefs collects every TypeRef appearing in the declaration's signature,
// including class and interface members. Nested namespace declarations are
// not descended into; callers walk those separately.
func (d *DeclNode) TypeRefs() []*TypeRef {
	var out []*TypeRef
	add := func(refs ...*TypeRef) {
		for _, ref := range refs {
			if ref != nil {
				out = append(out, ref)
			}
		}
	}
	addFn := func(fn *FunctionDef) {
		if fn == nil {
			return
		}
		for i := range fn.Params {
			add(fn.Params[i].Type)
		}
		add(fn.ReturnType)
		for i := range fn.TypeParams {
			add(fn.TypeParams[i].Constraint, fn.TypeParams[i].Default)
		}
	}
	addMembers := func(members []ClassMember) {
		for i := range members {
			addFn(members[i].Function)
			add(members[i].Type)
		}
	}

	switch {
	case d.Function != nil:
		addFn(d.Function)
	case d.Class != nil:
		add(d.Class.Extends)
		add(d.Class.Implements...)
		for i := range d.Class.TypeParams {
			add(d.Class.TypeParams[i].Constraint, d.Class.TypeParams[i].Default)
		}
		addMembers(d.Class.Members)
	case d.Interface != nil:
		add(d.Interface.Extends...)
		for i := range d.Interface.TypeParams {
			add(d.Interface.TypeParams[i].Constraint, d.Interface.TypeParams[i].Default)
		}
		addMembers(d.Interface.Members)
	case d.TypeAlias != nil:
		add(d.TypeAlias.Target)
		for i := range d.TypeAlias.TypeParams {
			add(d.TypeAlias.TypeParams[i].Constraint, d.TypeAlias.TypeParams[i].Default)
		}
	case d.Variable != nil:
		add(d.Variable.Type)
	}

	// Nested type arguments resolve alongside their parent ref.
	var withArgs []*TypeRef
	var expand func(ref *TypeRef)
	expand = func(ref *TypeRef) {
		withArgs = append(withArgs, ref)
		for _, arg := range ref.Args {
			expand(arg)
		}
	}
	for _, ref := range out {
		expand(ref)
	}
	return withArgs
}
