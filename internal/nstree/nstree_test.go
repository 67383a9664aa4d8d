package nstree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/exports"
	"github.com/docgraph-dev/docgraph/internal/languages"
	"github.com/docgraph-dev/docgraph/internal/loader"
)

func buildTree(t *testing.T, sources map[string]string, roots ...string) *Node {
	t.Helper()
	g, err := loader.Load(context.Background(), roots, loader.NewMapResolver(sources), languages.NewDefaultRegistry(), loader.Options{})
	require.NoError(t, err)
	return Build(g, exports.Resolve(g))
}

func TestModulePathSegments(t *testing.T) {
	cases := []struct {
		id   docnode.ModuleID
		want []string
	}{
		{"main.ts", []string{"main"}},
		{"lib/util.ts", []string{"lib", "util"}},
		{"lib/index.ts", []string{"lib"}},
		{"types.d.ts", []string{"types"}},
		{"index.ts", []string{"index"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ModulePathSegments(tc.id), string(tc.id))
	}
}

func TestBuildPlacesModulesByPath(t *testing.T) {
	tree := buildTree(t, map[string]string{
		"main.ts":     `import "./lib/util"; export function entry(): void {}`,
		"lib/util.ts": `export function helper(): void {}`,
	}, "main.ts")

	main := tree.Child("main")
	require.NotNil(t, main)
	assert.Equal(t, docnode.ModuleID("main.ts"), main.Module)
	require.Len(t, main.Group("entry"), 1)

	util := tree.Child("lib").Child("util")
	require.NotNil(t, util)
	require.Len(t, util.Group("helper"), 1)
}

func TestSameNameGroupsKeepOverloadsAndTypeValuePairs(t *testing.T) {
	tree := buildTree(t, map[string]string{
		"main.ts": `
export function parse(input: string): number;
export function parse(input: number): string;
export function parse(input: unknown): unknown { return input; }
export interface Pair { a: number; }
export const Pair = { a: 0 };
`,
	}, "main.ts")

	main := tree.Child("main")
	require.NotNil(t, main)
	assert.Len(t, main.Group("parse"), 3)

	pair := main.Group("Pair")
	require.Len(t, pair, 2)
	kinds := []docnode.DeclKind{pair[0].Kind, pair[1].Kind}
	assert.Contains(t, kinds, docnode.KindInterface)
	assert.Contains(t, kinds, docnode.KindVariable)
}

func TestNamespaceDeclsBecomeChildNodes(t *testing.T) {
	tree := buildTree(t, map[string]string{
		"main.ts": `
/** Top level tools. */
export namespace tools {
  export function hammer(): void {}
  export namespace nested {
    export const nail = 1;
  }
}
`,
	}, "main.ts")

	tools := tree.Child("main").Child("tools")
	require.NotNil(t, tools)
	assert.Equal(t, "Top level tools.", tools.Doc.Summary())
	require.Len(t, tools.Group("hammer"), 1)

	nested := tools.Child("nested")
	require.NotNil(t, nested)
	require.Len(t, nested.Group("nail"), 1)
	assert.Equal(t, "main/tools/nested", nested.Path)
}

func TestReExportedSymbolAppearsInBothNamespaces(t *testing.T) {
	tree := buildTree(t, map[string]string{
		"core.ts": `export function shared(): void {}`,
		"hub.ts":  `export * from "./core";`,
	}, "hub.ts")

	hub := tree.Child("hub")
	core := tree.Child("core")
	require.NotNil(t, hub)
	require.NotNil(t, core)

	hubGroup := hub.Group("shared")
	coreGroup := core.Group("shared")
	require.Len(t, hubGroup, 1)
	require.Len(t, coreGroup, 1)
	// Same declaration, not a copy.
	assert.Same(t, coreGroup[0], hubGroup[0])
}

func TestModuleBindingMountsSourceAsChildNamespace(t *testing.T) {
	tree := buildTree(t, map[string]string{
		"bundle.ts": `export function tool(): void {}`,
		"hub.ts":    `export * as tools from "./bundle";`,
	}, "hub.ts")

	mounted := tree.Child("hub").Child("tools")
	require.NotNil(t, mounted)
	require.Len(t, mounted.Group("tool"), 1)
}

func TestModuleBindingCycleDoesNotRecurseForever(t *testing.T) {
	tree := buildTree(t, map[string]string{
		"a.ts": `export * as b from "./b"; export const fromA = 1;`,
		"b.ts": `export * as a from "./a"; export const fromB = 2;`,
	}, "a.ts")

	a := tree.Child("a")
	require.NotNil(t, a)
	b := a.Child("b")
	require.NotNil(t, b)
	require.Len(t, b.Group("fromB"), 1)
	// The cycle stops instead of mounting a under b again under a...
	inner := b.Child("a")
	if inner != nil {
		assert.Nil(t, inner.Child("b"))
	}
}

func TestModuleDocAttachesToModuleNode(t *testing.T) {
	tree := buildTree(t, map[string]string{
		"main.ts": `
/**
 * Entry module.
 * @module
 */
export function run(): void {}
`,
	}, "main.ts")

	main := tree.Child("main")
	require.NotNil(t, main)
	assert.Equal(t, "Entry module.", main.Doc.Summary())
}

func TestWalkOrderIsDeterministic(t *testing.T) {
	tree := buildTree(t, map[string]string{
		"b.ts": `export const b = 1;`,
		"a.ts": `export const a = 1;`,
		"c.ts": `export const c = 1;`,
	}, "a.ts", "b.ts", "c.ts")

	var order []string
	tree.Walk(func(n *Node) { order = append(order, n.Path) })
	assert.Equal(t, []string{"", "a", "b", "c"}, order)
}
