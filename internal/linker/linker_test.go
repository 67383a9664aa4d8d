package linker

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

func linkFixture(t *testing.T, sources map[string]string, roots ...string) (*loader.Graph, *Index) {
	t.Helper()
	g, err := loader.Load(context.Background(), roots, loader.NewMapResolver(sources), languages.NewDefaultRegistry(), loader.Options{})
	require.NoError(t, err)
	table := exports.Resolve(g)
	return g, Link(g, table, DefaultAmbient())
}

func refOf(t *testing.T, g *loader.Graph, module docnode.ModuleID, declName string) *docnode.ResolvedRef {
	t.Helper()
	d := g.Decl(docnode.DeclID{Module: module, Name: declName})
	require.NotNil(t, d, "decl %s", declName)
	refs := d.TypeRefs()
	require.NotEmpty(t, refs, "decl %s has no type refs", declName)
	require.NotNil(t, refs[0].Resolved, "ref %q not linked", refs[0].Raw)
	return refs[0].Resolved
}

func TestLinkModuleLocalReference(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"a.ts": `
export interface Config { debug: boolean; }
export function load(): Config { return { debug: false }; }
`,
	}, "a.ts")

	ref := refOf(t, g, "a.ts", "load")
	assert.Equal(t, docnode.RefLocal, ref.Kind)
	assert.Equal(t, docnode.DeclID{Module: "a.ts", Name: "Config"}, ref.Target)
}

func TestLinkSelfReferentialType(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"a.ts": `
export interface Node {
  parent: Node;
}
`,
	}, "a.ts")

	ref := refOf(t, g, "a.ts", "Node")
	assert.Equal(t, docnode.RefLocal, ref.Kind)
	assert.Equal(t, docnode.DeclID{Module: "a.ts", Name: "Node"}, ref.Target)
}

func TestLinkMutuallyRecursiveTypes(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"a.ts": `
export interface Ping { next: Pong; }
export interface Pong { next: Ping; }
`,
	}, "a.ts")

	ping := refOf(t, g, "a.ts", "Ping")
	pong := refOf(t, g, "a.ts", "Pong")
	assert.Equal(t, docnode.DeclID{Module: "a.ts", Name: "Pong"}, ping.Target)
	assert.Equal(t, docnode.DeclID{Module: "a.ts", Name: "Ping"}, pong.Target)
}

func TestLinkImportedReferenceCollapsesReExportChain(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"types.ts": `export interface Payload { body: string; }`,
		"hub.ts":   `export { Payload } from "./types";`,
		"main.ts": `
import { Payload } from "./hub";
export function send(p: Payload): void {}
`,
	}, "main.ts")

	ref := refOf(t, g, "main.ts", "send")
	assert.Equal(t, docnode.RefLocal, ref.Kind)
	assert.Equal(t, docnode.DeclID{Module: "types.ts", Name: "Payload"}, ref.Target)
}

func TestLinkRenamedImport(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"types.ts": `export interface Wide { w: number; }`,
		"main.ts": `
import { Wide as Narrow } from "./types";
export function use(x: Narrow): void {}
`,
	}, "main.ts")

	ref := refOf(t, g, "main.ts", "use")
	assert.Equal(t, docnode.RefLocal, ref.Kind)
	assert.Equal(t, docnode.DeclID{Module: "types.ts", Name: "Wide"}, ref.Target)
}

func TestLinkNamespaceImportDottedReference(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"types.ts": `export interface Options { deep: boolean; }`,
		"main.ts": `
import * as types from "./types";
export function configure(o: types.Options): void {}
`,
	}, "main.ts")

	ref := refOf(t, g, "main.ts", "configure")
	assert.Equal(t, docnode.RefLocal, ref.Kind)
	assert.Equal(t, docnode.DeclID{Module: "types.ts", Name: "Options"}, ref.Target)
}

func TestLinkNamespaceScopedReference(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"a.ts": `
export namespace api {
  export interface Request { url: string; }
  export function fetch(r: Request): void {}
}
`,
	}, "a.ts")

	ref := refOf(t, g, "a.ts", "fetch")
	assert.Equal(t, docnode.RefLocal, ref.Kind)
	assert.Equal(t, docnode.DeclID{Module: "a.ts", Name: "Request"}, ref.Target)
}

func TestLinkAmbientFallsBackToExternal(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"a.ts": `export function wait(): Promise<void> { return Promise.resolve(); }`,
	}, "a.ts")

	ref := refOf(t, g, "a.ts", "wait")
	assert.Equal(t, docnode.RefExternal, ref.Kind)
	assert.Contains(t, ref.Href, "mozilla.org")
}

func TestLinkUnknownNameStaysUnresolved(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"a.ts": `export function mystery(x: NeverDeclared): void {}`,
	}, "a.ts")

	ref := refOf(t, g, "a.ts", "mystery")
	assert.Equal(t, docnode.RefUnresolved, ref.Kind)
	assert.Empty(t, g.Modules["a.ts"].Diagnostics)
}

func TestLinkAmbiguousImportGetsDiagnostic(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"l.ts":   `export interface Clash { l: number; }`,
		"r.ts":   `export interface Clash { r: number; }`,
		"hub.ts": `export * from "./l"; export * from "./r";`,
		"main.ts": `
import { Clash } from "./hub";
export function pick(c: Clash): void {}
`,
	}, "main.ts")

	ref := refOf(t, g, "main.ts", "pick")
	assert.Equal(t, docnode.RefAmbiguous, ref.Kind)
	assert.Len(t, ref.Candidates, 2)

	var kinds []docnode.DiagKind
	for _, d := range g.Modules["main.ts"].Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, docnode.DiagAmbiguousReference)
}

func TestIndexCoversNestedDecls(t *testing.T) {
	_, index := linkFixture(t, map[string]string{
		"a.ts": `
export function top(): void {}
export namespace ns {
  export function nested(): void {}
}
`,
	}, "a.ts")

	assert.NotNil(t, index.Decl(docnode.DeclID{Module: "a.ts", Name: "top"}))
	assert.NotNil(t, index.Decl(docnode.DeclID{Module: "a.ts", Name: "ns"}))
	assert.NotNil(t, index.Decl(docnode.DeclID{Module: "a.ts", Name: "nested"}))
	assert.Equal(t, 3, index.Len())
}

func TestIndexKeepsNamespaceScopedNamesDistinct(t *testing.T) {
	g, index := linkFixture(t, map[string]string{
		"a.ts": `
export function parse(input: string): number { return 0; }
export namespace ns {
  export function parse(input: number): string { return ""; }
}
`,
	}, "a.ts")

	assert.Equal(t, 3, index.Len())

	top := index.Decl(docnode.DeclID{Module: "a.ts", Name: "parse"})
	require.NotNil(t, top)
	assert.Equal(t, 2, top.Span.StartLine)

	nested := index.Decl(docnode.DeclID{Module: "a.ts", Name: "parse", Overload: 1})
	require.NotNil(t, nested)
	assert.Equal(t, 4, nested.Span.StartLine)
	assert.NotSame(t, top, nested)

	assert.Same(t, top, g.Decl(top.ID()))
	assert.Same(t, nested, g.Decl(nested.ID()))
}

func TestLinkImportLandsOnTopLevelDeclWhenNamespaceMemberShadowsName(t *testing.T) {
	g, _ := linkFixture(t, map[string]string{
		"types.ts": `
export namespace inner {
  export interface Shape { s: number; }
}
export interface Shape { sides: number; }
`,
		"main.ts": `
import { Shape } from "./types";
export function area(s: Shape): number { return 0; }
`,
	}, "main.ts")

	ref := refOf(t, g, "main.ts", "area")
	assert.Equal(t, docnode.RefLocal, ref.Kind)
	assert.Equal(t, docnode.DeclID{Module: "types.ts", Name: "Shape", Overload: 1}, ref.Target)
}
