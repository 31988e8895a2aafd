package textlinks

import (
	"net/url"
	"strings"
)

const (
	oscHyperlinkPrefix  = "\u001b]8;;"
	oscHyperlinkClosure = "\u001b]8;;\u0007"
)

func applyHyperlink(enabled bool, url, text string) string {
	if !enabled || url == "" || text == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(oscHyperlinkPrefix) + len(url) + len(text) + len(oscHyperlinkClosure) + 1)
	b.WriteString(oscHyperlinkPrefix)
	b.WriteString(url)
	b.WriteByte('\a')
	b.WriteString(text)
	b.WriteString(oscHyperlinkClosure)
	return b.String()
}

// IsURL reports whether payload is an absolute http(s) or mailto URL.
func IsURL(payload string) bool {
	if payload == "" || strings.ContainsAny(payload, " \t\n") {
		return false
	}
	parsed, err := url.Parse(payload)
	if err != nil {
		return false
	}
	switch parsed.Scheme {
	case "http", "https":
		return parsed.Host != ""
	case "mailto":
		return parsed.Opaque != ""
	default:
		return false
	}
}

// Painter renders text with span styles applied.
type Painter struct {
	// Color enables ANSI styling. When false the text is returned as is.
	Color bool
	// Hyperlinks wraps spans whose payload is a URL in OSC 8 sequences.
	Hyperlinks bool

	focus    int
	hasFocus bool
}

// WithFocus returns a painter that draws span i reversed.
func (p Painter) WithFocus(i int) Painter {
	p.focus = i
	p.hasFocus = i >= 0
	return p
}

// Paint renders the whole text.
func (p Painter) Paint(text string, spans []Span) string {
	runes := []rune(text)
	return p.PaintRange(runes, spans, 0, len(runes))
}

// PaintRange renders runes[from:to]. Where spans overlap, the one appearing
// later in spans owns the rune, so later links paint over earlier ones.
func (p Painter) PaintRange(runes []rune, spans []Span, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(runes) {
		to = len(runes)
	}
	if from >= to {
		return ""
	}
	if !p.Color {
		return string(runes[from:to])
	}

	owner := spanOwners(spans, from, to)

	var b strings.Builder
	for i := from; i < to; {
		j := i + 1
		for j < to && owner[j-from] == owner[i-from] {
			j++
		}
		b.WriteString(p.segment(string(runes[i:j]), spans, owner[i-from]))
		i = j
	}
	return b.String()
}

func spanOwners(spans []Span, from, to int) []int {
	owner := make([]int, to-from)
	for i := range owner {
		owner[i] = -1
	}
	for idx, span := range spans {
		start := max(span.Start, from)
		end := min(span.End, to)
		for k := start; k < end; k++ {
			owner[k-from] = idx
		}
	}
	return owner
}

func (p Painter) segment(text string, spans []Span, idx int) string {
	if idx < 0 {
		return text
	}
	span := spans[idx]
	style := span.Style.Lipgloss()
	if p.hasFocus && idx == p.focus {
		style = style.Reverse(true)
	}
	hyperlink := p.Hyperlinks && IsURL(span.Payload)

	// lipgloss pads multi-line blocks to a common width, so style each line
	// on its own to keep offsets aligned with the source text.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = applyHyperlink(hyperlink, span.Payload, style.Render(line))
	}
	return strings.Join(lines, "\n")
}
