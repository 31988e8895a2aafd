package textlinks

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Output is the JSON contract for a rendered document.
type Output struct {
	Title string       `json:"title,omitempty"`
	Text  string       `json:"text"`
	Spans []SpanOutput `json:"spans"`
}

// SpanOutput is a span together with the text it covers.
type SpanOutput struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Text    string `json:"text"`
	Payload string `json:"payload"`
	Link    int    `json:"link"`
	Style   Style  `json:"style"`
}

// BuildOutput annotates the document and captures the span table.
func BuildOutput(doc Document) Output {
	spans := doc.Spans()
	runes := []rune(doc.Text)

	out := Output{
		Title: doc.Title,
		Text:  doc.Text,
		Spans: make([]SpanOutput, 0, len(spans)),
	}
	for _, span := range spans {
		out.Spans = append(out.Spans, SpanOutput{
			Start:   span.Start,
			End:     span.End,
			Text:    string(runes[span.Start:span.End]),
			Payload: span.Payload,
			Link:    span.Link,
			Style:   span.Style,
		})
	}
	return out
}

// MarshalJSON encodes the output as either the full document or a flat span array.
func MarshalJSON(out Output, flat bool) ([]byte, error) {
	if flat {
		return json.MarshalIndent(out.Spans, "", "  ")
	}
	return json.MarshalIndent(out, "", "  ")
}

// RenderMarkdown emits the text with each span written as a Markdown link.
// Spans without a payload stay plain. When spans overlap, the one starting
// first is kept.
func RenderMarkdown(doc Document, spans []Span) string {
	var b strings.Builder

	if doc.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	}

	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	runes := []rune(doc.Text)
	pos := 0
	for _, span := range ordered {
		if span.Start < pos || span.End > len(runes) {
			continue
		}
		b.WriteString(string(runes[pos:span.Start]))
		label := string(runes[span.Start:span.End])
		if span.Payload == "" {
			b.WriteString(label)
		} else {
			fmt.Fprintf(&b, "[%s](%s)", escapeMarkdownLabel(label), markdownTarget(span.Payload))
		}
		pos = span.End
	}
	b.WriteString(string(runes[pos:]))

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func escapeMarkdownLabel(label string) string {
	replacer := strings.NewReplacer("[", `\[`, "]", `\]`)
	return replacer.Replace(label)
}

func markdownTarget(payload string) string {
	if strings.ContainsAny(payload, " ()") {
		return "<" + payload + ">"
	}
	return payload
}
