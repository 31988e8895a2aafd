package textlinks

import (
	"strings"
	"unicode/utf8"
)

// Occurrences returns the rune ranges where displayText appears in fullText.
// Matching is literal and case-sensitive. When all is false only the first
// match is returned; otherwise the search resumes after each match, so the
// returned ranges never overlap.
func Occurrences(fullText, displayText string, all bool) []Range {
	if displayText == "" || len(displayText) > len(fullText) {
		return nil
	}

	width := utf8.RuneCountInString(displayText)

	var found []Range
	bytePos, runePos := 0, 0
	for {
		idx := strings.Index(fullText[bytePos:], displayText)
		if idx < 0 {
			break
		}
		runePos += utf8.RuneCountInString(fullText[bytePos : bytePos+idx])
		found = append(found, Range{Start: runePos, End: runePos + width})
		if !all {
			break
		}
		bytePos += idx + len(displayText)
		runePos += width
	}
	return found
}

// BuildSpans annotates fullText with one span per link occurrence. Spans are
// ordered by link, then by position within that link; they are not sorted
// globally and spans of different links may overlap.
func BuildSpans(fullText string, links []Link) []Span {
	var spans []Span
	for i, link := range links {
		for _, r := range Occurrences(fullText, link.Text, link.AllOccurrences) {
			spans = append(spans, Span{
				Start:   r.Start,
				End:     r.End,
				Style:   link.Style,
				Payload: link.Payload,
				Link:    i,
			})
		}
	}
	return spans
}

// SpanAt returns the index of the first span covering offset.
func SpanAt(spans []Span, offset int) (int, bool) {
	for i, span := range spans {
		if span.Start <= offset && offset < span.End {
			return i, true
		}
	}
	return -1, false
}

// ResolveClick returns the payload of the first span covering offset.
func ResolveClick(spans []Span, offset int) (string, bool) {
	i, ok := SpanAt(spans, offset)
	if !ok {
		return "", false
	}
	return spans[i].Payload, true
}

// Activate resolves offset and invokes the owning link's handler once.
// The handler's error is returned as is.
func Activate(links []Link, spans []Span, offset int) (string, bool, error) {
	i, ok := SpanAt(spans, offset)
	if !ok {
		return "", false, nil
	}
	return spans[i].Payload, true, ActivateSpan(links, spans[i])
}

// ActivateSpan invokes the handler of the link that produced span. Spans
// pointing outside links, or at a link without a handler, do nothing.
func ActivateSpan(links []Link, span Span) error {
	if span.Link < 0 || span.Link >= len(links) {
		return nil
	}
	handler := links[span.Link].OnActivate
	if handler == nil {
		return nil
	}
	return handler(span.Payload)
}
