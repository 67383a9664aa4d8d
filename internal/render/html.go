package render

import (
	"fmt"
	"html"
	"html/template"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/fileutil"
	"github.com/docgraph-dev/docgraph/internal/loader"
	"github.com/docgraph-dev/docgraph/internal/nstree"
)

// HTMLOptions tunes the static site output.
type HTMLOptions struct {
	// Title is the site name shown in page headers.
	Title string
}

// HTMLRenderer writes the static documentation site: one index page per
// namespace and one detail page per same-name symbol group. Output is
// deterministic; rendering the same graph twice produces identical bytes.
type HTMLRenderer struct {
	opts      HTMLOptions
	hrefs     map[docnode.DeclID]string
	nameHrefs map[string]string
	tmpl      *template.Template
}

// NewHTMLRenderer prepares a renderer for one output pass. hrefs comes from
// Hrefs over the same tree that will be rendered.
func NewHTMLRenderer(opts HTMLOptions, hrefs map[docnode.DeclID]string) (*HTMLRenderer, error) {
	if opts.Title == "" {
		opts.Title = "API Documentation"
	}
	tmpl, err := template.New("docgraph").Parse(pageTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	// Bare {@link Name} targets resolve by declaration name; the smallest ID
	// wins so repeated runs agree.
	nameHrefs := make(map[string]string)
	ids := make([]docnode.DeclID, 0, len(hrefs))
	for id := range hrefs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		if _, ok := nameHrefs[id.Name]; !ok {
			nameHrefs[id.Name] = hrefs[id]
		}
	}

	return &HTMLRenderer{opts: opts, hrefs: hrefs, nameHrefs: nameHrefs, tmpl: tmpl}, nil
}

// Write renders the whole site into outDir. Files are only touched when
// their content changes.
func (r *HTMLRenderer) Write(outDir string, tree *nstree.Node, g *loader.Graph) error {
	if err := fileutil.WriteIfChanged(filepath.Join(outDir, "style.css"), []byte(styleSheet)); err != nil {
		return err
	}

	var renderErr error
	tree.Walk(func(node *nstree.Node) {
		if renderErr != nil {
			return
		}
		diags := []docnode.Diagnostic(nil)
		if node.Path == "" {
			diags = sortedDiagnostics(g)
		}
		if err := r.writeNamespacePage(outDir, node, diags); err != nil {
			renderErr = err
			return
		}
		for _, name := range node.GroupNames() {
			if err := r.writeSymbolPage(outDir, node, name); err != nil {
				renderErr = err
				return
			}
		}
	})
	return renderErr
}

func pageDepth(href string) int {
	return strings.Count(href, "/")
}

func relPrefix(depth int) string {
	return strings.Repeat("../", depth)
}

type breadcrumb struct {
	Name string
	Href string
}

type nsChildView struct {
	Name    string
	Href    string
	Summary string
}

type groupRowView struct {
	Name       string
	Href       string
	Kinds      string
	Summary    template.HTML
	Deprecated bool
}

type diagView struct {
	Kind     string
	Location string
	Message  string
}

type nsPageView struct {
	Title       string
	SiteTitle   string
	Rel         string
	Name        string
	Breadcrumbs []breadcrumb
	DocHTML     template.HTML
	Children    []nsChildView
	Groups      []groupRowView
	Diagnostics []diagView
}

func (r *HTMLRenderer) writeNamespacePage(outDir string, node *nstree.Node, diags []docnode.Diagnostic) error {
	href := NamespaceHref(node)
	depth := pageDepth(href)
	rel := relPrefix(depth)

	view := nsPageView{
		Title:       r.pageTitle(node.Name),
		SiteTitle:   r.opts.Title,
		Rel:         rel,
		Name:        node.Name,
		Breadcrumbs: r.breadcrumbs(node.Path, rel),
		DocHTML:     r.docHTML(node.Doc.Doc, rel),
	}
	if node.Name == "" {
		view.Name = r.opts.Title
	}

	for _, childName := range node.ChildNames() {
		child := node.Child(childName)
		view.Children = append(view.Children, nsChildView{
			Name:    childName,
			Href:    rel + NamespaceHref(child),
			Summary: child.Doc.Summary(),
		})
	}
	for _, name := range node.GroupNames() {
		group := node.Group(name)
		view.Groups = append(view.Groups, groupRowView{
			Name:       name,
			Href:       rel + GroupHref(node, name),
			Kinds:      groupKinds(group),
			Summary:    r.docHTML(group[0].Doc.Summary(), rel),
			Deprecated: groupDeprecated(group),
		})
	}
	for _, d := range diags {
		view.Diagnostics = append(view.Diagnostics, diagView{
			Kind:     d.Kind.String(),
			Location: d.Span.String(),
			Message:  d.Message,
		})
	}

	var buf strings.Builder
	if err := r.tmpl.ExecuteTemplate(&buf, "namespace", view); err != nil {
		return fmt.Errorf("failed to render namespace page %s: %w", href, err)
	}
	return fileutil.WriteIfChanged(filepath.Join(outDir, filepath.FromSlash(href)), []byte(buf.String()))
}

type exampleView struct {
	Title string
	Code  string
}

type paramDocView struct {
	Name string
	Doc  string
}

type memberView struct {
	Signature  template.HTML
	DocHTML    template.HTML
	Deprecated bool
}

type declView struct {
	Anchor         string
	Kind           string
	Default        bool
	Signature      template.HTML
	Deprecated     bool
	DeprecatedNote string
	DocHTML        template.HTML
	Params         []paramDocView
	Returns        string
	Examples       []exampleView
	SeeAlso        []template.HTML
	Members        []memberView
	EnumMembers    []memberView
	Source         string
}

type symbolPageView struct {
	Title       string
	SiteTitle   string
	Rel         string
	Name        string
	Breadcrumbs []breadcrumb
	Decls       []declView
}

func (r *HTMLRenderer) writeSymbolPage(outDir string, node *nstree.Node, name string) error {
	href := GroupHref(node, name)
	depth := pageDepth(href)
	rel := relPrefix(depth)

	view := symbolPageView{
		Title:       r.pageTitle(name),
		SiteTitle:   r.opts.Title,
		Rel:         rel,
		Name:        name,
		Breadcrumbs: r.breadcrumbs(node.Path, rel),
	}
	for _, d := range node.Group(name) {
		view.Decls = append(view.Decls, r.declView(d, rel))
	}

	var buf strings.Builder
	if err := r.tmpl.ExecuteTemplate(&buf, "symbol", view); err != nil {
		return fmt.Errorf("failed to render symbol page %s: %w", href, err)
	}
	return fileutil.WriteIfChanged(filepath.Join(outDir, filepath.FromSlash(href)), []byte(buf.String()))
}

func (r *HTMLRenderer) declView(d *docnode.DeclNode, rel string) declView {
	view := declView{
		Anchor:     anchorFor(d),
		Kind:       d.Kind.String(),
		Default:    d.Default,
		Signature:  r.signatureHTML(d, rel),
		Deprecated: d.Deprecated(),
		DocHTML:    r.docHTML(d.Doc.Doc, rel),
		Source:     d.Span.String(),
	}
	for _, tag := range d.Doc.Tags {
		switch tag.Kind {
		case docnode.TagDeprecated:
			if view.DeprecatedNote == "" {
				view.DeprecatedNote = tag.Doc
			}
		case docnode.TagParam:
			view.Params = append(view.Params, paramDocView{Name: tag.Name, Doc: tag.Doc})
		case docnode.TagReturns:
			if view.Returns == "" {
				view.Returns = tag.Doc
			}
		case docnode.TagExample:
			title, code := splitExample(tag.Doc)
			view.Examples = append(view.Examples, exampleView{Title: title, Code: code})
		case docnode.TagSee:
			view.SeeAlso = append(view.SeeAlso, r.inlineHTML(tag.Doc, rel))
		}
	}

	var members []docnode.ClassMember
	switch {
	case d.Class != nil:
		members = d.Class.Members
	case d.Interface != nil:
		members = d.Interface.Members
	}
	for i := range members {
		m := &members[i]
		view.Members = append(view.Members, memberView{
			Signature:  r.memberSignatureHTML(m, rel),
			DocHTML:    r.docHTML(m.Doc.Doc, rel),
			Deprecated: m.Doc.Deprecated(),
		})
	}
	if d.Enum != nil {
		for _, m := range d.Enum.Members {
			sig := m.Name
			if m.Init != "" {
				sig += " = " + m.Init
			}
			view.EnumMembers = append(view.EnumMembers, memberView{
				Signature:  template.HTML(html.EscapeString(sig)),
				DocHTML:    r.docHTML(m.Doc.Doc, rel),
				Deprecated: m.Doc.Deprecated(),
			})
		}
	}
	return view
}

func anchorFor(d *docnode.DeclNode) string {
	if d.Overload == 0 {
		return "decl"
	}
	return fmt.Sprintf("overload-%d", d.Overload)
}

func groupKinds(group []*docnode.DeclNode) string {
	seen := make(map[string]bool)
	var kinds []string
	for _, d := range group {
		kind := d.Kind.String()
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	return strings.Join(kinds, ", ")
}

func groupDeprecated(group []*docnode.DeclNode) bool {
	for _, d := range group {
		if !d.Deprecated() {
			return false
		}
	}
	return true
}

func (r *HTMLRenderer) pageTitle(name string) string {
	if name == "" {
		return r.opts.Title
	}
	return name + " | " + r.opts.Title
}

func (r *HTMLRenderer) breadcrumbs(nsPath, rel string) []breadcrumb {
	crumbs := []breadcrumb{{Name: r.opts.Title, Href: rel + "index.html"}}
	if nsPath == "" {
		return crumbs
	}
	segments := strings.Split(nsPath, "/")
	for i, segment := range segments {
		crumbs = append(crumbs, breadcrumb{
			Name: segment,
			Href: rel + strings.Join(segments[:i+1], "/") + "/index.html",
		})
	}
	return crumbs
}

// signatureHTML mirrors Signature but emits escaped HTML with resolved type
// references wrapped in anchors.
func (r *HTMLRenderer) signatureHTML(d *docnode.DeclNode, rel string) template.HTML {
	var b strings.Builder
	esc := func(s string) { b.WriteString(html.EscapeString(s)) }

	switch d.Kind {
	case docnode.KindFunction:
		if d.Default {
			esc("export default ")
		}
		if d.Function != nil && d.Function.Async {
			esc("async ")
		}
		esc("function")
		if d.Function != nil && d.Function.Generator {
			esc("*")
		}
		esc(" " + d.Name)
		r.functionTailHTML(&b, d.Function, rel)
	case docnode.KindClass:
		if d.Class != nil && d.Class.Abstract {
			esc("abstract ")
		}
		esc("class " + d.Name)
		if d.Class != nil {
			r.typeParamsHTML(&b, d.Class.TypeParams, rel)
			if d.Class.Extends != nil {
				esc(" extends ")
				b.WriteString(string(r.typeRefHTML(d.Class.Extends, rel)))
			}
			for i, ref := range d.Class.Implements {
				if i == 0 {
					esc(" implements ")
				} else {
					esc(", ")
				}
				b.WriteString(string(r.typeRefHTML(ref, rel)))
			}
		}
	case docnode.KindInterface:
		esc("interface " + d.Name)
		if d.Interface != nil {
			r.typeParamsHTML(&b, d.Interface.TypeParams, rel)
			for i, ref := range d.Interface.Extends {
				if i == 0 {
					esc(" extends ")
				} else {
					esc(", ")
				}
				b.WriteString(string(r.typeRefHTML(ref, rel)))
			}
		}
	case docnode.KindTypeAlias:
		esc("type " + d.Name)
		if d.TypeAlias != nil {
			r.typeParamsHTML(&b, d.TypeAlias.TypeParams, rel)
			if d.TypeAlias.Target != nil {
				esc(" = ")
				b.WriteString(string(r.typeRefHTML(d.TypeAlias.Target, rel)))
			}
		}
	case docnode.KindVariable:
		kind := "const"
		if d.Variable != nil && d.Variable.DeclKind != "" {
			kind = d.Variable.DeclKind
		}
		esc(kind + " " + d.Name)
		if d.Variable != nil && d.Variable.Type != nil {
			esc(": ")
			b.WriteString(string(r.typeRefHTML(d.Variable.Type, rel)))
		}
	default:
		esc(Signature(d))
	}
	return template.HTML(b.String())
}

func (r *HTMLRenderer) memberSignatureHTML(m *docnode.ClassMember, rel string) template.HTML {
	var b strings.Builder
	esc := func(s string) { b.WriteString(html.EscapeString(s)) }

	if m.Accessibility != "" {
		esc(m.Accessibility + " ")
	}
	if m.Static {
		esc("static ")
	}
	if m.Abstract {
		esc("abstract ")
	}
	if m.Readonly {
		esc("readonly ")
	}
	switch m.Kind {
	case docnode.MemberGetter:
		esc("get ")
	case docnode.MemberSetter:
		esc("set ")
	}
	esc(m.Name)
	if m.Optional {
		esc("?")
	}
	if m.Function != nil {
		r.functionTailHTML(&b, m.Function, rel)
	} else if m.Type != nil {
		esc(": ")
		b.WriteString(string(r.typeRefHTML(m.Type, rel)))
	}
	return template.HTML(b.String())
}

func (r *HTMLRenderer) functionTailHTML(b *strings.Builder, fn *docnode.FunctionDef, rel string) {
	esc := func(s string) { b.WriteString(html.EscapeString(s)) }
	if fn == nil {
		esc("()")
		return
	}
	r.typeParamsHTML(b, fn.TypeParams, rel)
	esc("(")
	for i, p := range fn.Params {
		if i > 0 {
			esc(", ")
		}
		if p.Rest {
			esc("...")
		}
		esc(p.Name)
		if p.Optional {
			esc("?")
		}
		if p.Type != nil {
			esc(": ")
			b.WriteString(string(r.typeRefHTML(p.Type, rel)))
		}
	}
	esc(")")
	if fn.ReturnType != nil {
		esc(": ")
		b.WriteString(string(r.typeRefHTML(fn.ReturnType, rel)))
	}
}

func (r *HTMLRenderer) typeParamsHTML(b *strings.Builder, params []docnode.TypeParam, rel string) {
	if len(params) == 0 {
		return
	}
	esc := func(s string) { b.WriteString(html.EscapeString(s)) }
	esc("<")
	for i, tp := range params {
		if i > 0 {
			esc(", ")
		}
		esc(tp.Name)
		if tp.Constraint != nil {
			esc(" extends ")
			b.WriteString(string(r.typeRefHTML(tp.Constraint, rel)))
		}
		if tp.Default != nil {
			esc(" = ")
			b.WriteString(string(r.typeRefHTML(tp.Default, rel)))
		}
	}
	esc(">")
}

// typeRefHTML renders one type reference. Generic heads get their own anchor
// with arguments recursing; plain refs anchor the whole raw text. Unresolved
// and ambiguous refs render as plain escaped text.
func (r *HTMLRenderer) typeRefHTML(ref *docnode.TypeRef, rel string) template.HTML {
	if ref == nil {
		return ""
	}
	href := r.refHref(ref, rel)

	if len(ref.Args) > 0 && ref.Name != "" {
		var b strings.Builder
		if href != "" {
			fmt.Fprintf(&b, `<a href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(ref.Name))
		} else {
			b.WriteString(html.EscapeString(ref.Name))
		}
		b.WriteString("&lt;")
		for i, arg := range ref.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(string(r.typeRefHTML(arg, rel)))
		}
		b.WriteString("&gt;")
		return template.HTML(b.String())
	}

	if href != "" {
		return template.HTML(fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(ref.Raw)))
	}
	return template.HTML(html.EscapeString(ref.Raw))
}

func (r *HTMLRenderer) refHref(ref *docnode.TypeRef, rel string) string {
	if ref.Resolved == nil {
		return ""
	}
	switch ref.Resolved.Kind {
	case docnode.RefLocal:
		if target, ok := r.hrefs[ref.Resolved.Target]; ok {
			return rel + target
		}
	case docnode.RefExternal:
		return ref.Resolved.Href
	}
	return ""
}

// docHTML turns a markdown-ish doc body into HTML: paragraphs split on blank
// lines, fenced code blocks preserved verbatim, {@link} tags rewritten.
func (r *HTMLRenderer) docHTML(text, rel string) template.HTML {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	segments := strings.Split(text, "```")
	for i, segment := range segments {
		if i%2 == 1 {
			// Inside a fence; the first line may carry a language hint.
			code := segment
			if idx := strings.Index(code, "\n"); idx != -1 {
				code = code[idx+1:]
			}
			b.WriteString("<pre><code>")
			b.WriteString(html.EscapeString(strings.TrimRight(code, "\n")))
			b.WriteString("</code></pre>\n")
			continue
		}
		for _, para := range strings.Split(segment, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			b.WriteString("<p>")
			b.WriteString(string(r.inlineHTML(para, rel)))
			b.WriteString("</p>\n")
		}
	}
	return template.HTML(b.String())
}

// inlineHTML escapes one run of doc text, rewriting {@link} tags into
// anchors.
func (r *HTMLRenderer) inlineHTML(text, rel string) template.HTML {
	var b strings.Builder
	last := 0
	for _, loc := range linkTagPattern.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		link := resolveLinkTag(text[loc[0]:loc[1]], r.linkResolver(rel))
		writeInlineLink(&b, link)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return template.HTML(b.String())
}

func (r *HTMLRenderer) linkResolver(rel string) LinkResolver {
	return func(target string) (string, bool) {
		name := target
		if idx := strings.LastIndex(name, "."); idx != -1 {
			name = name[idx+1:]
		}
		if href, ok := r.nameHrefs[target]; ok {
			return rel + href, true
		}
		if href, ok := r.nameHrefs[name]; ok {
			return rel + href, true
		}
		return "", false
	}
}

func writeInlineLink(b *strings.Builder, link inlineLink) {
	label := html.EscapeString(link.Label)
	if link.Code {
		label = "<code>" + label + "</code>"
	}
	if link.Href == "" {
		b.WriteString(label)
		return
	}
	fmt.Fprintf(b, `<a href="%s">%s</a>`, html.EscapeString(link.Href), label)
}

// splitExample separates an @example body into its leading title text and
// the first fenced code block. Bodies without a fence are all code.
func splitExample(text string) (title, code string) {
	text = strings.TrimSpace(text)
	idx := strings.Index(text, "```")
	if idx == -1 {
		return "", text
	}
	title = strings.TrimSpace(text[:idx])
	code = text[idx+3:]
	if nl := strings.Index(code, "\n"); nl != -1 {
		code = code[nl+1:]
	}
	if end := strings.Index(code, "```"); end != -1 {
		code = code[:end]
	}
	return title, strings.TrimRight(strings.TrimPrefix(code, "\n"), "\n")
}
