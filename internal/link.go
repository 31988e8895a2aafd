package textlinks

// Handler is invoked with a link's payload when the link is activated.
type Handler func(payload string) error

// Style is carried through to spans untouched. Only the painter reads it.
type Style struct {
	Foreground    string `yaml:"foreground" json:"foreground,omitempty"`
	Background    string `yaml:"background" json:"background,omitempty"`
	Bold          bool   `yaml:"bold" json:"bold,omitempty"`
	Italic        bool   `yaml:"italic" json:"italic,omitempty"`
	Underline     bool   `yaml:"underline" json:"underline,omitempty"`
	Strikethrough bool   `yaml:"strikethrough" json:"strikethrough,omitempty"`
	Faint         bool   `yaml:"faint" json:"faint,omitempty"`
}

// IsZero reports whether no attribute is set.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Link describes one clickable substring.
type Link struct {
	// Text is the display text searched for in the document.
	Text string
	// Payload is handed to OnActivate. Empty when the link carries none.
	Payload string
	Style   Style
	// AllOccurrences links every non-overlapping occurrence of Text
	// instead of only the first one.
	AllOccurrences bool
	OnActivate     Handler
}

// Document pairs the full text with its links.
type Document struct {
	Title string
	Text  string
	Links []Link
}

// Spans annotates the document text.
func (d Document) Spans() []Span {
	return BuildSpans(d.Text, d.Links)
}

// Range is a half-open rune range [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of runes covered.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether offset falls inside the range.
func (r Range) Contains(offset int) bool {
	return r.Start <= offset && offset < r.End
}

// Span is one styled occurrence of a link within the text.
type Span struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Style   Style  `json:"style"`
	Payload string `json:"payload"`
	// Link is the index of the source link in the slice passed to BuildSpans.
	Link int `json:"link"`
}

// Range returns the span's offsets.
func (s Span) Range() Range {
	return Range{Start: s.Start, End: s.End}
}
