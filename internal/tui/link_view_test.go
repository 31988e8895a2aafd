package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	textlinks "github.com/Quish-Labs/gh-textlinks/internal"
)

const sampleText = "For details see the Privacy Policy or the Help Center."

type recorder struct {
	calls []string
	err   error
}

func (r *recorder) handler(payload string) error {
	r.calls = append(r.calls, payload)
	return r.err
}

func sampleDoc(r *recorder) textlinks.Document {
	return textlinks.Document{
		Text: sampleText,
		Links: []textlinks.Link{
			{Text: "Privacy Policy", Payload: "https://example.test/privacy", OnActivate: r.handler},
			{Text: "Help Center", Payload: "refund", OnActivate: r.handler},
		},
	}
}

func newTestView(t *testing.T, doc textlinks.Document, width, height int) LinkViewModel {
	t.Helper()
	m := NewLinkViewModel(doc, ViewOptions{Logger: zerolog.Nop(), Copy: func(string) error { return nil }})
	return send(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

func send(t *testing.T, m LinkViewModel, msg tea.Msg) LinkViewModel {
	t.Helper()
	updated, _ := m.Update(msg)
	view, ok := updated.(LinkViewModel)
	require.True(t, ok)
	return view
}

func leftClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestLinkViewClickActivatesLink(t *testing.T) {
	r := &recorder{}
	m := newTestView(t, sampleDoc(r), 80, 10)

	m = send(t, m, leftClick(42, 0))

	assert.Equal(t, []string{"refund"}, r.calls)
	assert.Equal(t, []string{"refund"}, m.Activated())
	assert.NoError(t, m.Err())
	assert.Contains(t, m.View(), "activated refund")
}

func TestLinkViewClickOnPlainTextDoesNothing(t *testing.T) {
	r := &recorder{}
	m := newTestView(t, sampleDoc(r), 80, 10)

	m = send(t, m, leftClick(3, 0))
	m = send(t, m, leftClick(70, 0))
	m = send(t, m, leftClick(0, 5))

	assert.Empty(t, r.calls)
	assert.Empty(t, m.Activated())
}

func TestLinkViewIgnoresOtherMouseEvents(t *testing.T) {
	r := &recorder{}
	m := newTestView(t, sampleDoc(r), 80, 10)

	m = send(t, m, tea.MouseMsg{X: 42, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = send(t, m, tea.MouseMsg{X: 42, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})

	assert.Empty(t, r.calls)
}

func TestLinkViewClickAccountsForTitleAndWrapping(t *testing.T) {
	r := &recorder{}
	doc := sampleDoc(r)
	doc.Title = "Welcome"
	// Width 30 wraps as "For details see the Privacy" / "Policy or the Help Center."
	m := newTestView(t, doc, 30, 12)

	m = send(t, m, leftClick(2, 3))

	assert.Equal(t, []string{"https://example.test/privacy"}, r.calls)
}

func TestLinkViewHandlerErrorIsReported(t *testing.T) {
	boom := errors.New("boom")
	r := &recorder{err: boom}
	m := newTestView(t, sampleDoc(r), 80, 10)

	m = send(t, m, leftClick(20, 0))

	require.Error(t, m.Err())
	assert.ErrorIs(t, m.Err(), boom)
	assert.Equal(t, []string{"https://example.test/privacy"}, r.calls)
	assert.Contains(t, m.View(), "boom")
}

func TestLinkViewKeyboardActivation(t *testing.T) {
	r := &recorder{}
	m := newTestView(t, sampleDoc(r), 80, 10)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, r.calls, "nothing focused yet")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"refund"}, r.calls)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"refund", "https://example.test/privacy"}, r.calls, "focus wraps around")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"refund", "https://example.test/privacy", "refund"}, r.calls)
}

func TestLinkViewFocusFollowsReadingOrder(t *testing.T) {
	r := &recorder{}
	doc := textlinks.Document{
		Text: "a b a",
		Links: []textlinks.Link{
			{Text: "a", Payload: "A", AllOccurrences: true, OnActivate: r.handler},
			{Text: "b", Payload: "B", OnActivate: r.handler},
		},
	}
	m := newTestView(t, doc, 80, 10)

	for range 3 {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	}

	assert.Equal(t, []string{"A", "B", "A"}, r.calls)
}

func TestLinkViewCopiesFocusedPayload(t *testing.T) {
	var copied []string
	m := NewLinkViewModel(sampleDoc(&recorder{}), ViewOptions{
		Logger: zerolog.Nop(),
		Copy: func(s string) error {
			copied = append(copied, s)
			return nil
		},
	})

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.Empty(t, copied)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.Equal(t, []string{"https://example.test/privacy"}, copied)
	assert.Contains(t, m.View(), "copied https://example.test/privacy")
}

func TestLinkViewFocusScrollsIntoView(t *testing.T) {
	r := &recorder{}
	doc := textlinks.Document{
		Text:  strings.Repeat("filler\n", 20) + "Help Center",
		Links: []textlinks.Link{{Text: "Help Center", Payload: "refund", OnActivate: r.handler}},
	}
	m := newTestView(t, doc, 40, 10)
	require.Equal(t, 8, m.viewport.Height)
	assert.Equal(t, 0, m.viewport.YOffset)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 13, m.viewport.YOffset)

	// The link is now on the last visible row.
	send(t, m, leftClick(0, 7))
	assert.Equal(t, []string{"refund"}, r.calls)
}

func TestLinkViewQuit(t *testing.T) {
	m := newTestView(t, sampleDoc(&recorder{}), 80, 10)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, "", updated.View())
}

func TestLinkViewFullHelpKeepsViewInsideTerminal(t *testing.T) {
	for _, title := range []string{"", "Welcome"} {
		t.Run("title="+title, func(t *testing.T) {
			r := &recorder{}
			doc := sampleDoc(r)
			doc.Title = title
			m := newTestView(t, doc, 80, 10)
			require.Len(t, strings.Split(m.View(), "\n"), 10)

			m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
			require.True(t, m.help.ShowAll)
			assert.Len(t, strings.Split(m.View(), "\n"), 10)
			assert.Equal(t, 10, m.headerHeight()+m.viewport.Height+m.footerHeight())

			// The first text row sits right below the header.
			m = send(t, m, leftClick(42, m.headerHeight()))
			assert.Equal(t, []string{"refund"}, r.calls)

			// Rows taken by the help never reach the text.
			send(t, m, leftClick(42, 9))
			assert.Equal(t, []string{"refund"}, r.calls)
		})
	}
}

func TestLinkViewRendersTextAndCount(t *testing.T) {
	doc := sampleDoc(&recorder{})
	doc.Title = "Welcome"
	m := newTestView(t, doc, 80, 10)

	view := m.View()
	assert.Contains(t, view, "Welcome")
	assert.Contains(t, view, sampleText)
	assert.Contains(t, view, "2 links")
}

func TestWrapString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected []string
	}{
		{name: "empty string", input: "", width: 10, expected: []string{""}},
		{name: "shorter than width", input: "hello", width: 10, expected: []string{"hello"}},
		{name: "simple word wrap", input: "hello world", width: 7, expected: []string{"hello", "world"}},
		{name: "multiple lines", input: "the quick brown fox jumps over the lazy dog", width: 15, expected: []string{"the quick brown", "fox jumps over", "the lazy dog"}},
		{name: "zero width", input: "hello world", width: 0, expected: []string{"hello world"}},
		{name: "negative width", input: "hello world", width: -1, expected: []string{"hello world"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, wrapString(tt.input, tt.width))
		})
	}
}
