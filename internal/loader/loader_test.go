package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/languages"
)

func loadGraph(t *testing.T, sources map[string]string, roots ...string) *Graph {
	t.Helper()
	g, err := Load(context.Background(), roots, NewMapResolver(sources), languages.NewDefaultRegistry(), Options{})
	require.NoError(t, err)
	return g
}

func TestLoadClosesGraphOverImports(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"main.ts": `
import { helper } from "./util";
export { helper };
export function entry(): void {}
`,
		"util.ts": `
import { deep } from "./nested/deep";
export function helper(): void { deep(); }
`,
		"nested/deep.ts": `export function deep(): void {}`,
	}, "main.ts")

	assert.Equal(t, []docnode.ModuleID{"main.ts"}, g.Roots)
	assert.Equal(t, []docnode.ModuleID{"main.ts", "nested/deep.ts", "util.ts"}, g.ModuleIDs())

	main := g.Modules["main.ts"]
	require.NotNil(t, main)
	assert.Equal(t, docnode.ModuleID("util.ts"), main.Resolved["./util"])
	assert.Empty(t, main.Diagnostics)
}

func TestLoadDiamondLoadsSharedModuleOnce(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"root.ts":   `import "./left"; import "./right";`,
		"left.ts":   `import { shared } from "./shared"; export const l = shared;`,
		"right.ts":  `import { shared } from "./shared"; export const r = shared;`,
		"shared.ts": `export const shared = 1;`,
	}, "root.ts")

	assert.Len(t, g.Modules, 4)
	assert.Equal(t, docnode.ModuleID("shared.ts"), g.Modules["left.ts"].Resolved["./shared"])
	assert.Equal(t, docnode.ModuleID("shared.ts"), g.Modules["right.ts"].Resolved["./shared"])
}

func TestLoadUnresolvableImportStaysNonFatal(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"main.ts": `
import { x } from "some-npm-package";
export function ok(): void {}
`,
	}, "main.ts")

	main := g.Modules["main.ts"]
	require.NotNil(t, main)
	assert.False(t, main.Stub)
	assert.Contains(t, main.Unresolved, "some-npm-package")
	require.Len(t, main.Diagnostics, 1)
	assert.Equal(t, docnode.DiagResolutionError, main.Diagnostics[0].Kind)
}

func TestLoadNoRootsFails(t *testing.T) {
	_, err := Load(context.Background(), []string{"nope.ts"}, NewMapResolver(nil), languages.NewDefaultRegistry(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRoots))
}

func TestLoadFailedRootAmongGoodRootsContinues(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"good.ts": `export const ok = true;`,
	}, "good.ts", "missing.ts")

	assert.Equal(t, []docnode.ModuleID{"good.ts"}, g.Roots)
	stub := g.Modules["missing.ts"]
	require.NotNil(t, stub)
	assert.True(t, stub.Stub)
	require.Len(t, stub.Diagnostics, 1)
	assert.Equal(t, docnode.DiagResolutionError, stub.Diagnostics[0].Kind)
}

// failingLoader resolves everything the inner resolver does but refuses to
// load one module, standing in for transport failures.
type failingLoader struct {
	inner Resolver
	deny  docnode.ModuleID
}

func (f *failingLoader) Resolve(specifier string, from docnode.ModuleID) (docnode.ModuleID, error) {
	return f.inner.Resolve(specifier, from)
}

func (f *failingLoader) Load(id docnode.ModuleID) ([]byte, error) {
	if id == f.deny {
		return nil, fmt.Errorf("connection reset")
	}
	return f.inner.Load(id)
}

func TestLoadFetchFailureBecomesStub(t *testing.T) {
	inner := NewMapResolver(map[string]string{
		"main.ts":   `import { b } from "./broken"; export const a = 1;`,
		"broken.ts": `export const b = 2;`,
	})
	resolver := &failingLoader{inner: inner, deny: "broken.ts"}

	g, err := Load(context.Background(), []string{"main.ts"}, resolver, languages.NewDefaultRegistry(), Options{})
	require.NoError(t, err)

	broken := g.Modules["broken.ts"]
	require.NotNil(t, broken)
	assert.True(t, broken.Stub)
	assert.Nil(t, broken.Symbols)
	require.Len(t, broken.Diagnostics, 1)
	assert.Equal(t, docnode.DiagResolutionError, broken.Diagnostics[0].Kind)

	// The importing side still resolved the edge.
	assert.Equal(t, docnode.ModuleID("broken.ts"), g.Modules["main.ts"].Resolved["./broken"])
}

func TestGraphDeclLookup(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"main.ts": `
export function solo(): void {}
export namespace box {
  export function inner(): void {}
}
`,
	}, "main.ts")

	solo := g.Decl(docnode.DeclID{Module: "main.ts", Name: "solo"})
	require.NotNil(t, solo)
	assert.Equal(t, docnode.KindFunction, solo.Kind)

	inner := g.Decl(docnode.DeclID{Module: "main.ts", Name: "inner"})
	require.NotNil(t, inner)

	assert.Nil(t, g.Decl(docnode.DeclID{Module: "main.ts", Name: "absent"}))
}

func TestFSResolverProbesExtensionsAndIndexFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.ts"), []byte("export {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "index.ts"), []byte("export {}"), 0644))

	r := NewFSResolver(root)

	id, err := r.Resolve("main.ts", "")
	require.NoError(t, err)
	assert.Equal(t, docnode.ModuleID("main.ts"), id)

	id, err = r.Resolve("./main", "other.ts")
	require.NoError(t, err)
	assert.Equal(t, docnode.ModuleID("main.ts"), id)

	id, err = r.Resolve("./pkg", "main.ts")
	require.NoError(t, err)
	assert.Equal(t, docnode.ModuleID("pkg/index.ts"), id)

	_, err = r.Resolve("react", "main.ts")
	require.Error(t, err)

	data, err := r.Load("main.ts")
	require.NoError(t, err)
	assert.Equal(t, "export {}", string(data))
}
