package pipeline

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

func TestBuildProducesFullResult(t *testing.T) {
	sources := map[string]string{
		"main.ts": `
import { Widget } from "./widget";
export { Widget } from "./widget";

/** Builds a widget. */
export function build(name: string): Widget { return new Widget(name); }
`,
		"widget.ts": `
/** A widget. */
export class Widget {
  constructor(public name: string) {}
}
`,
	}

	res, err := Build(context.Background(), []string{"main.ts"},
		loader.NewMapResolver(sources), languages.NewDefaultRegistry(), Options{})
	require.NoError(t, err)

	assert.Len(t, res.Graph.ModuleIDs(), 2)

	widget, ok := res.Exports.Lookup("main.ts", "Widget")
	require.True(t, ok)
	assert.Equal(t, exports.Target{Module: "widget.ts", Name: "Widget"}, widget.Target)

	build := res.Graph.Decl(docnode.DeclID{Module: "main.ts", Name: "build"})
	require.NotNil(t, build)
	refs := build.TypeRefs()
	require.NotEmpty(t, refs)
	require.NotNil(t, refs[0].Resolved)
	assert.Equal(t, docnode.RefLocal, refs[0].Resolved.Kind)

	require.NotNil(t, res.Tree.Child("main"))
	require.NotNil(t, res.Tree.Child("widget"))

	href, ok := res.Hrefs[docnode.DeclID{Module: "widget.ts", Name: "Widget"}]
	require.True(t, ok)
	assert.Equal(t, "widget/~Widget.html", href)

	assert.Empty(t, res.Diagnostics())
}

func TestBuildCollectsDiagnosticsAcrossStages(t *testing.T) {
	sources := map[string]string{
		"main.ts": `
import { missing } from "not-a-real-package";
export * from "./l";
export * from "./r";
export function run(): void {}
`,
		"l.ts": `export const clash = 1;`,
		"r.ts": `export const clash = 2;`,
	}

	res, err := Build(context.Background(), []string{"main.ts"},
		loader.NewMapResolver(sources), languages.NewDefaultRegistry(), Options{})
	require.NoError(t, err)

	var kinds []docnode.DiagKind
	for _, d := range res.Diagnostics() {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, docnode.DiagResolutionError)
	assert.Contains(t, kinds, docnode.DiagAmbiguousExport)
}

func TestBuildFailsWithoutRoots(t *testing.T) {
	_, err := Build(context.Background(), nil,
		loader.NewMapResolver(nil), languages.NewDefaultRegistry(), Options{})
	require.Error(t, err)
}
