package textlinks

import "github.com/charmbracelet/lipgloss"

// DefaultLinkStyle is used for links that declare no style of their own.
var DefaultLinkStyle = Style{Foreground: "12", Underline: true}

// Lipgloss converts the style token into a lipgloss style. Colours accept
// anything lipgloss.Color does: ANSI indexes ("12") or hex ("#ff00ff").
func (s Style) Lipgloss() lipgloss.Style {
	style := lipgloss.NewStyle()
	if s.Foreground != "" {
		style = style.Foreground(lipgloss.Color(s.Foreground))
	}
	if s.Background != "" {
		style = style.Background(lipgloss.Color(s.Background))
	}
	if s.Bold {
		style = style.Bold(true)
	}
	if s.Italic {
		style = style.Italic(true)
	}
	if s.Underline {
		style = style.Underline(true)
	}
	if s.Strikethrough {
		style = style.Strikethrough(true)
	}
	if s.Faint {
		style = style.Faint(true)
	}
	return style
}

// OrDefault returns DefaultLinkStyle for a zero style.
func (s Style) OrDefault() Style {
	if s.IsZero() {
		return DefaultLinkStyle
	}
	return s
}
