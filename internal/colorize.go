package textlinks

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	jsonTitlePattern    = regexp.MustCompile(`("title":\s*)"((?:[^"\\]|\\.)*)"`)
	jsonSpanTextPattern = regexp.MustCompile(`("text":\s*)"((?:[^"\\]|\\.)*)"`)
	jsonPayloadPattern  = regexp.MustCompile(`("payload":\s*)"((?:[^"\\]|\\.)*)"`)
	jsonColourPattern   = regexp.MustCompile(`("(?:foreground|background)":\s*)"((?:[^"\\]|\\.)*)"`)
	jsonOffsetPattern   = regexp.MustCompile(`("(?:start|end|link)":\s*)(\d+)`)
)

// Lipgloss styles for JSON colorization
var (
	dimStyle        = lipgloss.NewStyle().Faint(true)                                     // JSON keys
	brightCyanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))                // Span text
	yellowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))                 // Offsets
	magentaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))                 // Colours
	greenStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))                // Title
	linkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true) // URL payloads
)

// ColouriseJSONSpans applies ANSI styling to span table JSON.
func ColouriseJSONSpans(enabled bool, payload []byte) []byte {
	if !enabled || len(payload) == 0 {
		return payload
	}

	text := string(payload)

	text = colouriseJSONNumber(text, jsonOffsetPattern, func(value string) string {
		return yellowStyle.Render(value)
	})

	text = colouriseJSONValue(text, jsonTitlePattern, func(value string) string {
		return greenStyle.Render(value)
	})

	text = colouriseJSONValue(text, jsonSpanTextPattern, func(value string) string {
		return brightCyanStyle.Render(value)
	})

	text = colouriseJSONValue(text, jsonColourPattern, func(value string) string {
		return magentaStyle.Render(value)
	})

	text = colouriseJSONValue(text, jsonPayloadPattern, func(value string) string {
		if !IsURL(value) {
			return value
		}
		return applyHyperlink(true, value, linkStyle.Render(value))
	})

	text = colouriseJSONKeys(text, func(key string) string {
		return dimStyle.Render(key)
	})

	return []byte(text)
}

func colouriseJSONKeys(text string, transform func(string) string) string {
	var b strings.Builder
	var current strings.Builder
	inString := false
	escape := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			if escape {
				escape = false
				current.WriteByte(ch)
				continue
			}
			if ch == '\\' {
				escape = true
				current.WriteByte(ch)
				continue
			}
			if ch == '"' {
				inString = false
				if followedByColon(text, i+1) {
					b.WriteString(transform(current.String()))
				} else {
					b.WriteString(current.String())
				}
				b.WriteByte('"')
				current.Reset()
				continue
			}
			current.WriteByte(ch)
			continue
		}

		if ch == '"' {
			inString = true
			escape = false
			b.WriteByte('"')
			current.Reset()
			continue
		}

		b.WriteByte(ch)
	}

	if inString {
		b.WriteString(current.String())
	}

	return b.String()
}

func followedByColon(text string, from int) bool {
	for j := from; j < len(text); j++ {
		switch text[j] {
		case ' ', '\t', '\n', '\r':
			continue
		case ':':
			return true
		default:
			return false
		}
	}
	return false
}

func colouriseJSONValue(text string, pattern *regexp.Regexp, transform func(string) string) string {
	return pattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := pattern.FindStringSubmatch(match)
		if len(sub) != 3 {
			return match
		}
		return sub[1] + `"` + transform(sub[2]) + `"`
	})
}

func colouriseJSONNumber(text string, pattern *regexp.Regexp, transform func(string) string) string {
	return pattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := pattern.FindStringSubmatch(match)
		if len(sub) != 3 {
			return match
		}
		return sub[1] + transform(sub[2])
	})
}
