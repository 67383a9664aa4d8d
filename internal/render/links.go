package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/nstree"
)

// Hrefs maps every placed declaration to its canonical page URL, relative to
// the output root. When a symbol is re-exported into several namespaces the
// node backed by its declaring module wins; otherwise the first placement in
// deterministic walk order sticks.
func Hrefs(tree *nstree.Node) map[docnode.DeclID]string {
	hrefs := make(map[docnode.DeclID]string)
	canonical := make(map[docnode.DeclID]bool)
	tree.Walk(func(node *nstree.Node) {
		for _, name := range node.GroupNames() {
			page := GroupHref(node, name)
			for _, d := range node.Group(name) {
				id := d.ID()
				href := page + overloadAnchor(d)
				isHome := node.Module == d.Span.Module
				if _, seen := hrefs[id]; !seen || (isHome && !canonical[id]) {
					hrefs[id] = href
					canonical[id] = isHome
				}
			}
		}
	})
	return hrefs
}

// NamespaceHref returns the index page URL of a namespace node.
func NamespaceHref(node *nstree.Node) string {
	if node.Path == "" {
		return "index.html"
	}
	return node.Path + "/index.html"
}

// GroupHref returns the detail page URL of a same-name group. The tilde
// keeps symbol pages from colliding with child namespace directories.
func GroupHref(node *nstree.Node, name string) string {
	if node.Path == "" {
		return "~" + name + ".html"
	}
	return node.Path + "/~" + name + ".html"
}

func overloadAnchor(d *docnode.DeclNode) string {
	if d.Overload == 0 {
		return ""
	}
	return fmt.Sprintf("#overload-%d", d.Overload)
}

var linkTagPattern = regexp.MustCompile(`\{@link(?:code|plain)?\s+([^}]+)\}`)

// LinkResolver resolves an inline link target to an href. ok is false when
// the target is not a known symbol or URL.
type LinkResolver func(target string) (href string, ok bool)

// inlineLink is one rewritten {@link} occurrence.
type inlineLink struct {
	Label string
	Href  string
	Code  bool
}

// splitLinkTag separates the target from its optional label. Both
// "{@link Target label}" and "{@link Target | label}" spellings are accepted.
func splitLinkTag(body string) (target, label string) {
	body = strings.TrimSpace(body)
	if idx := strings.Index(body, "|"); idx != -1 {
		return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+1:])
	}
	if idx := strings.IndexAny(body, " \t"); idx != -1 {
		return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+1:])
	}
	return body, ""
}

// resolveLinkTag turns one matched {@link} tag into an inline link. URLs pass
// through untouched; symbol targets go through resolve; unresolvable targets
// keep their label as plain code.
func resolveLinkTag(match string, resolve LinkResolver) inlineLink {
	code := strings.HasPrefix(match, "{@linkcode")
	sub := linkTagPattern.FindStringSubmatch(match)
	if sub == nil {
		return inlineLink{Label: match, Code: code}
	}
	target, label := splitLinkTag(sub[1])
	if label == "" {
		label = target
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return inlineLink{Label: label, Href: target, Code: code}
	}
	if resolve != nil {
		if href, ok := resolve(target); ok {
			return inlineLink{Label: label, Href: href, Code: code}
		}
	}
	return inlineLink{Label: label, Code: true}
}
