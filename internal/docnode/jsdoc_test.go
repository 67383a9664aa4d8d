package docnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSDocBodyAndTags(t *testing.T) {
	raw := `/**
 * Adds two numbers.
 *
 * Works for negatives too.
 * @param a the first operand
 * @param b - the second operand
 * @returns {number} the sum
 * @deprecated use addAll instead
 */`

	doc := ParseJSDoc(raw)
	assert.Equal(t, "Adds two numbers.\n\nWorks for negatives too.", doc.Doc)
	require.Len(t, doc.Tags, 4)

	assert.Equal(t, Tag{Kind: TagParam, Name: "a", Doc: "the first operand"}, doc.Tags[0])
	assert.Equal(t, Tag{Kind: TagParam, Name: "b", Doc: "the second operand"}, doc.Tags[1])
	assert.Equal(t, Tag{Kind: TagReturns, Doc: "the sum"}, doc.Tags[2])
	assert.Equal(t, Tag{Kind: TagDeprecated, Doc: "use addAll instead"}, doc.Tags[3])
	assert.True(t, doc.Deprecated())
	assert.Equal(t, "the first operand", doc.ParamDoc("a"))
}

func TestParseJSDocOptionalParamNames(t *testing.T) {
	cases := []struct {
		line string
		name string
	}{
		{"@param {string} name plain", "name"},
		{"@param [opt] optional", "opt"},
		{"@param [retries=3] with default", "retries"},
	}
	for _, tc := range cases {
		doc := ParseJSDoc("/** x\n * " + tc.line + "\n */")
		require.Len(t, doc.Tags, 1, tc.line)
		assert.Equal(t, tc.name, doc.Tags[0].Name, tc.line)
	}
}

func TestParseJSDocUnknownTagKept(t *testing.T) {
	doc := ParseJSDoc("/**\n * @internal keep me\n */")
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, Tag{Kind: TagUnknown, Name: "internal", Doc: "keep me"}, doc.Tags[0])
}

func TestParseJSDocMultilineTagBody(t *testing.T) {
	doc := ParseJSDoc(`/**
 * @example
 * basic usage
 * ` + "```ts\nfoo();\n```" + `
 */`)
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, TagExample, doc.Tags[0].Kind)
	assert.Contains(t, doc.Tags[0].Doc, "basic usage")
	assert.Contains(t, doc.Tags[0].Doc, "foo();")
}

func TestSummarySplitsAtBlankLine(t *testing.T) {
	doc := JSDoc{Doc: "First sentence.\nStill first block.\n\nRest of the body."}
	assert.Equal(t, "First sentence.\nStill first block.", doc.Summary())
}

func TestSummarySplitsAtCodeFence(t *testing.T) {
	doc := JSDoc{Doc: "Short intro.\n```ts\ncode();\n```\nafter"}
	assert.Equal(t, "Short intro.", doc.Summary())
}

func TestSummaryEmpty(t *testing.T) {
	assert.Equal(t, "", JSDoc{}.Summary())
	assert.True(t, JSDoc{}.Empty())
}

func TestDeclIDString(t *testing.T) {
	id := DeclID{Module: "lib/a.ts", Name: "parse"}
	assert.Equal(t, "lib/a.ts~parse", id.String())
	id.Overload = 2
	assert.Equal(t, "lib/a.ts~parse#2", id.String())
}
