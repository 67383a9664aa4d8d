package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/exports"
	"github.com/docgraph-dev/docgraph/internal/languages"
	"github.com/docgraph-dev/docgraph/internal/linker"
	"github.com/docgraph-dev/docgraph/internal/loader"
	"github.com/docgraph-dev/docgraph/internal/nstree"
)

type fixture struct {
	graph *loader.Graph
	index *linker.Index
	tree  *nstree.Node
	hrefs map[docnode.DeclID]string
}

func buildFixture(t *testing.T, sources map[string]string, roots ...string) *fixture {
	t.Helper()
	g, err := loader.Load(context.Background(), roots, loader.NewMapResolver(sources), languages.NewDefaultRegistry(), loader.Options{})
	require.NoError(t, err)
	table := exports.Resolve(g)
	index := linker.Link(g, table, linker.DefaultAmbient())
	tree := nstree.Build(g, table)
	return &fixture{graph: g, index: index, tree: tree, hrefs: Hrefs(tree)}
}

var renderSources = map[string]string{
	"main.ts": `
/**
 * Demo entry module.
 * @module
 */
import { Widget } from "./widget";

/**
 * Builds a widget.
 *
 * See {@link Widget} for the result shape.
 * @param name display name
 * @returns the widget
 * @example
 * basic
 * ` + "```ts\nbuild(\"x\");\n```" + `
 */
export function build(name: string): Widget { return new Widget(name); }

/** @deprecated use build instead */
export function oldBuild(name: string): Widget { return build(name); }
`,
	"widget.ts": `
/** A renderable widget. */
export class Widget {
  constructor(public name: string) {}
}
`,
}

func TestHrefsPreferDeclaringModule(t *testing.T) {
	fx := buildFixture(t, map[string]string{
		"core.ts": `export function shared(): void {}`,
		"hub.ts":  `export * from "./core";`,
	}, "hub.ts")

	href, ok := fx.hrefs[docnode.DeclID{Module: "core.ts", Name: "shared"}]
	require.True(t, ok)
	assert.Equal(t, "core/~shared.html", href)
}

func TestSearchIndexCoversEveryDecl(t *testing.T) {
	fx := buildFixture(t, renderSources, "main.ts")
	index := BuildSearchIndex(fx.index, fx.hrefs)

	assert.Equal(t, SearchVersion, index.Version)
	assert.Equal(t, len(index.Documents), index.DocumentCount)

	ids := make(map[string]bool)
	for _, doc := range index.Documents {
		ids[doc.ID] = true
	}
	assert.True(t, ids["main.ts~build"])
	assert.True(t, ids["main.ts~oldBuild"])
	assert.True(t, ids["widget.ts~Widget"])
}

func TestSearchFindsByNameAndDocText(t *testing.T) {
	fx := buildFixture(t, renderSources, "main.ts")
	index := BuildSearchIndex(fx.index, fx.hrefs)

	results := Search(index, "build", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "main.ts~build", results[0].ID)

	results = Search(index, "renderable", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "widget.ts~Widget", results[0].ID)
}

func TestSearchFuzzyFallback(t *testing.T) {
	fx := buildFixture(t, renderSources, "main.ts")
	index := BuildSearchIndex(fx.index, fx.hrefs)

	results := Search(index, "wdget", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "widget.ts~Widget", results[0].ID)
}

func TestSearchIndexRoundTrip(t *testing.T) {
	fx := buildFixture(t, renderSources, "main.ts")
	index := BuildSearchIndex(fx.index, fx.hrefs)

	dir := t.TempDir()
	require.NoError(t, WriteSearchIndex(dir, index))

	loaded, err := LoadSearchIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, index.DocumentCount, loaded.DocumentCount)

	results := Search(loaded, "widget", 5)
	assert.NotEmpty(t, results)
}

func TestDocTreeShape(t *testing.T) {
	fx := buildFixture(t, renderSources, "main.ts")
	tree := BuildDocTree(fx.tree, fx.graph)

	assert.Equal(t, DocTreeVersion, tree.Version)
	require.NotNil(t, tree.Root)

	var main *TreeNode
	for _, child := range tree.Root.Children {
		if child.Name == "main" {
			main = child
		}
	}
	require.NotNil(t, main)
	assert.Equal(t, "Demo entry module.", main.Doc)

	var build *SymbolGroup
	for i := range main.Symbols {
		if main.Symbols[i].Name == "build" {
			build = &main.Symbols[i]
		}
	}
	require.NotNil(t, build)
	assert.Equal(t, "main/~build.html", build.Href)
	require.Len(t, build.Entries, 1)
	assert.Equal(t, "function", build.Entries[0].Kind)
	assert.False(t, build.Entries[0].Deprecated)

	for _, group := range main.Symbols {
		if group.Name == "oldBuild" {
			assert.True(t, group.Entries[0].Deprecated)
		}
	}
}

func TestHTMLOutputIsDeterministic(t *testing.T) {
	fx := buildFixture(t, renderSources, "main.ts")
	renderer, err := NewHTMLRenderer(HTMLOptions{Title: "Demo"}, fx.hrefs)
	require.NoError(t, err)

	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, renderer.Write(dirA, fx.tree, fx.graph))
	require.NoError(t, renderer.Write(dirB, fx.tree, fx.graph))

	filepath.Walk(dirA, func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dirA, path)
		require.NoError(t, err)
		a, err := os.ReadFile(path)
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, rel))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), rel)
		return nil
	})
}

func TestHTMLDetailPageContent(t *testing.T) {
	fx := buildFixture(t, renderSources, "main.ts")
	renderer, err := NewHTMLRenderer(HTMLOptions{Title: "Demo"}, fx.hrefs)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, renderer.Write(dir, fx.tree, fx.graph))

	page, err := os.ReadFile(filepath.Join(dir, "main", "~build.html"))
	require.NoError(t, err)
	html := string(page)

	// Linked return type and rewritten {@link}.
	assert.Contains(t, html, `<a href="../widget/~Widget.html">Widget</a>`)
	assert.Contains(t, html, "display name")
	assert.Contains(t, html, "build(&#34;x&#34;);")

	old, err := os.ReadFile(filepath.Join(dir, "main", "~oldBuild.html"))
	require.NoError(t, err)
	assert.Contains(t, string(old), "deprecated")

	idx, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(idx), "main/index.html")
}

func TestWriteIfChangedKeepsIdenticalFiles(t *testing.T) {
	fx := buildFixture(t, renderSources, "main.ts")
	index := BuildSearchIndex(fx.index, fx.hrefs)

	dir := t.TempDir()
	require.NoError(t, WriteSearchIndex(dir, index))
	first, err := os.Stat(filepath.Join(dir, SearchIndexFile))
	require.NoError(t, err)

	require.NoError(t, WriteSearchIndex(dir, index))
	second, err := os.Stat(filepath.Join(dir, SearchIndexFile))
	require.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime())
}

func TestSplitLinkTag(t *testing.T) {
	cases := []struct {
		body   string
		target string
		label  string
	}{
		{"Widget", "Widget", ""},
		{"Widget | the widget", "Widget", "the widget"},
		{"Widget the widget", "Widget", "the widget"},
		{"https://example.com docs", "https://example.com", "docs"},
	}
	for _, tc := range cases {
		target, label := splitLinkTag(tc.body)
		assert.Equal(t, tc.target, target, tc.body)
		assert.Equal(t, tc.label, label, tc.body)
	}
}
