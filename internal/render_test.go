package textlinks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Title: "Welcome",
		Text:  "For details see the Privacy Policy or the Help Center.",
		Links: []Link{
			{Text: "Privacy Policy", Payload: "https://example.test/privacy"},
			{Text: "Help Center", Payload: "refund"},
			{Text: "details"},
		},
	}
}

func TestBuildOutputCapturesSpanText(t *testing.T) {
	out := BuildOutput(sampleDocument())

	require.Len(t, out.Spans, 3)
	assert.Equal(t, "Privacy Policy", out.Spans[0].Text)
	assert.Equal(t, "refund", out.Spans[1].Payload)
	assert.Equal(t, 2, out.Spans[2].Link)
}

func TestMarshalJSONFlatProducesArrayOfSpans(t *testing.T) {
	payload, err := MarshalJSON(BuildOutput(sampleDocument()), true)
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.Equal(t, byte('['), payload[0], "flat JSON is an array")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, float64(20), decoded[0]["start"])
}

func TestMarshalJSONNestedIncludesText(t *testing.T) {
	payload, err := MarshalJSON(BuildOutput(sampleDocument()), false)
	require.NoError(t, err)

	assert.Contains(t, string(payload), "\"title\": \"Welcome\"")
	assert.Contains(t, string(payload), "\"spans\": [")
}

func TestRenderMarkdownWritesLinks(t *testing.T) {
	doc := sampleDocument()

	want := "# Welcome\n\nFor details see the [Privacy Policy](https://example.test/privacy) or the [Help Center](refund).\n"
	assert.Equal(t, want, RenderMarkdown(doc, doc.Spans()))
}

func TestRenderMarkdownSkipsOverlaps(t *testing.T) {
	doc := Document{
		Text: "Help Center",
		Links: []Link{
			{Text: "Center", Payload: "b"},
			{Text: "Help Center", Payload: "a"},
		},
	}

	assert.Equal(t, "[Help Center](a)\n", RenderMarkdown(doc, doc.Spans()))
}
