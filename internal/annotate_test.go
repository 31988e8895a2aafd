package textlinks

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccurrences(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		display string
		all     bool
		want    []Range
	}{
		{name: "empty text", text: "", display: "a", want: nil},
		{name: "empty display text", text: "abc", display: "", all: true, want: nil},
		{name: "display longer than text", text: "ab", display: "abc", want: nil},
		{name: "no match", text: "hello", display: "world", want: nil},
		{name: "first only", text: "a a a", display: "a", want: []Range{{0, 1}}},
		{name: "all occurrences", text: "a a a", display: "a", all: true, want: []Range{{0, 1}, {2, 3}, {4, 5}}},
		{name: "case sensitive", text: "Help help", display: "help", want: []Range{{5, 9}}},
		{name: "inside a word", text: "category", display: "cat", want: []Range{{0, 3}}},
		{name: "non overlapping", text: "aaaa", display: "aa", all: true, want: []Range{{0, 2}, {2, 4}}},
		{name: "rune offsets", text: "héllo wörld wörld", display: "wörld", all: true, want: []Range{{6, 11}, {12, 17}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Occurrences(tc.text, tc.display, tc.all)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildSpansHelpCenter(t *testing.T) {
	links := []Link{{Text: "Help Center", Payload: "refund"}}

	spans := BuildSpans("Visit Help Center now", links)

	require.Len(t, spans, 1)
	assert.Equal(t, 6, spans[0].Start)
	assert.Equal(t, 17, spans[0].End)
	assert.Equal(t, "refund", spans[0].Payload)

	payload, ok := ResolveClick(spans, 8)
	assert.True(t, ok)
	assert.Equal(t, "refund", payload)

	_, ok = ResolveClick(spans, 2)
	assert.False(t, ok)
}

func TestBuildSpansAllOccurrences(t *testing.T) {
	spans := BuildSpans("a a a", []Link{{Text: "a", AllOccurrences: true}})

	require.Len(t, spans, 3)
	for i, want := range []Range{{0, 1}, {2, 3}, {4, 5}} {
		assert.Equal(t, want, spans[i].Range())
	}
}

func TestBuildSpansNoMatchesIsEmpty(t *testing.T) {
	links := []Link{
		{Text: "Privacy Policy"},
		{Text: "Account Settings", AllOccurrences: true},
	}
	assert.Empty(t, BuildSpans("Nothing to see here", links))
	assert.Empty(t, BuildSpans("", links))
	assert.Empty(t, BuildSpans("Nothing", nil))
}

func TestBuildSpansOrderFollowsLinks(t *testing.T) {
	text := "Privacy Policy and Help Center and Help Center"
	links := []Link{
		{Text: "Help Center", Payload: "help", AllOccurrences: true},
		{Text: "Privacy Policy", Payload: "privacy"},
	}

	spans := BuildSpans(text, links)

	require.Len(t, spans, 3)
	assert.Equal(t, []int{0, 0, 1}, []int{spans[0].Link, spans[1].Link, spans[2].Link})
	assert.Equal(t, 19, spans[0].Start)
	assert.Equal(t, 35, spans[1].Start)
	assert.Equal(t, 0, spans[2].Start)

	for _, span := range spans {
		runes := []rune(text)
		assert.Equal(t, links[span.Link].Text, string(runes[span.Start:span.End]))
	}
}

func TestBuildSpansIsIdempotent(t *testing.T) {
	text := "see docs, then docs again"
	links := []Link{{Text: "docs", Payload: "https://example.test/docs", AllOccurrences: true}}

	assert.Equal(t, BuildSpans(text, links), BuildSpans(text, links))
}

func TestResolveClickBoundaries(t *testing.T) {
	spans := BuildSpans("Visit Help Center now", []Link{{Text: "Help Center", Payload: "refund"}})

	for offset := 6; offset < 17; offset++ {
		payload, ok := ResolveClick(spans, offset)
		assert.True(t, ok, "offset %d", offset)
		assert.Equal(t, "refund", payload)
	}

	for _, offset := range []int{-1, 0, 5, 17, 100} {
		_, ok := ResolveClick(spans, offset)
		assert.False(t, ok, "offset %d", offset)
	}
}

func TestResolveClickFirstSpanWinsOnOverlap(t *testing.T) {
	links := []Link{
		{Text: "Help Center", Payload: "center"},
		{Text: "Help", Payload: "help"},
	}
	spans := BuildSpans("Help Center", links)
	require.Len(t, spans, 2)

	payload, ok := ResolveClick(spans, 1)
	require.True(t, ok)
	assert.Equal(t, "center", payload)
}

func TestActivateFiresOnce(t *testing.T) {
	var calls []string
	record := func(name string) Handler {
		return func(payload string) error {
			calls = append(calls, name+":"+payload)
			return nil
		}
	}

	links := []Link{
		{Text: "docs", Payload: "first", OnActivate: record("first")},
		{Text: "docs", Payload: "second", OnActivate: record("second")},
	}
	spans := BuildSpans("read the docs", links)
	require.Len(t, spans, 2)

	payload, ok, err := Activate(links, spans, 10)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", payload)
	assert.Equal(t, []string{"first:first"}, calls)
}

func TestActivateMissIsSilent(t *testing.T) {
	called := false
	links := []Link{{Text: "docs", OnActivate: func(string) error {
		called = true
		return nil
	}}}
	spans := BuildSpans("read the docs", links)

	_, ok, err := Activate(links, spans, 0)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called)
}

func TestActivatePropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	links := []Link{{Text: "docs", Payload: "p", OnActivate: func(string) error { return boom }}}
	spans := BuildSpans("docs", links)

	payload, ok, err := Activate(links, spans, 0)

	assert.True(t, ok)
	assert.Equal(t, "p", payload)
	assert.Same(t, boom, err)
}

func TestActivateNilHandler(t *testing.T) {
	links := []Link{{Text: "docs", Payload: "p"}}
	spans := BuildSpans("docs", links)

	payload, ok, err := Activate(links, spans, 2)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "p", payload)
}

func TestActivateIgnoresForeignSpans(t *testing.T) {
	spans := []Span{{Start: 0, End: 4, Payload: "p", Link: 3}}

	payload, ok, err := Activate(nil, spans, 1)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "p", payload)
}

func TestSpansStayInBounds(t *testing.T) {
	text := strings.Repeat("ab ", 50) + "café"
	links := []Link{
		{Text: "ab", AllOccurrences: true},
		{Text: "é"},
		{Text: "b a", AllOccurrences: true},
	}
	n := len([]rune(text))
	for _, span := range BuildSpans(text, links) {
		assert.GreaterOrEqual(t, span.Start, 0)
		assert.Less(t, span.Start, span.End)
		assert.LessOrEqual(t, span.End, n)
	}
}
