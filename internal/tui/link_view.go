package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rs/zerolog"

	textlinks "github.com/Quish-Labs/gh-textlinks/internal"
)

// KeyMap defines keybindings for the link view.
type KeyMap struct {
	NextLink key.Binding
	PrevLink key.Binding
	Activate key.Binding
	Copy     key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
	Help     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextLink: key.NewBinding(
			key.WithKeys("tab", "n"),
			key.WithHelp("tab/n", "next link"),
		),
		PrevLink: key.NewBinding(
			key.WithKeys("shift+tab", "N"),
			key.WithHelp("shift+tab/N", "prev link"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter/click", "activate"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y", "c"),
			key.WithHelp("y/c", "copy payload"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextLink, k.Activate, k.Copy, k.Quit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextLink, k.PrevLink, k.Activate, k.Copy},
		{k.Up, k.Down, k.Quit, k.Help},
	}
}

// ViewOptions configures the link view.
type ViewOptions struct {
	Color      bool
	Hyperlinks bool
	Logger     zerolog.Logger
	// Copy replaces the system clipboard. Used by tests.
	Copy func(string) error
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// LinkViewModel shows a document and activates links on click or keypress.
type LinkViewModel struct {
	viewport viewport.Model
	help     help.Model
	keys     KeyMap
	doc      textlinks.Document
	runes    []rune
	spans    []textlinks.Span
	order    []int // span indexes in reading order
	lines    []line
	painter  textlinks.Painter
	copy     func(string) error
	logger   zerolog.Logger

	focus     int // position in order, -1 when nothing is focused
	status    string
	lastErr   error
	activated []string
	width     int
	height    int
	quitting  bool
}

// NewLinkViewModel annotates doc and prepares the view.
func NewLinkViewModel(doc textlinks.Document, opts ViewOptions) LinkViewModel {
	spans := doc.Spans()

	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return spans[order[a]].Start < spans[order[b]].Start
	})

	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	m := LinkViewModel{
		viewport: viewport.New(80, 20),
		help:     help.New(),
		keys:     DefaultKeyMap(),
		doc:      doc,
		runes:    []rune(doc.Text),
		spans:    spans,
		order:    order,
		painter:  textlinks.Painter{Color: opts.Color, Hyperlinks: opts.Hyperlinks},
		copy:     copyFn,
		logger:   opts.Logger,
		focus:    -1,
		width:    80,
	}
	m.height = 20 + m.headerHeight() + m.footerHeight()
	m.relayout()
	return m
}

// headerHeight is the number of rows above the viewport.
func (m LinkViewModel) headerHeight() int {
	if m.doc.Title == "" {
		return 0
	}
	return 2
}

// footerHeight is the status row plus however many rows the help takes.
func (m LinkViewModel) footerHeight() int {
	return 1 + lipgloss.Height(m.help.View(m.keys))
}

// Init implements tea.Model.
func (m LinkViewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m LinkViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.relayout()
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.X, msg.Y)
			return m, nil
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextLink):
			m.moveFocus(1)
			return m, nil

		case key.Matches(msg, m.keys.PrevLink):
			m.moveFocus(-1)
			return m, nil

		case key.Matches(msg, m.keys.Activate):
			if i, ok := m.focusedSpan(); ok {
				m.activate(i)
			}
			return m, nil

		case key.Matches(msg, m.keys.Copy):
			if i, ok := m.focusedSpan(); ok {
				payload := m.spans[i].Payload
				if err := m.copy(payload); err != nil {
					m.setError(fmt.Errorf("copy: %w", err))
				} else {
					m.status = "copied " + payload
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.relayout()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// click resolves a screen cell to a text offset and activates whatever
// link covers it. Clicks on plain text or outside the text do nothing.
func (m *LinkViewModel) click(x, y int) {
	row := y - m.headerHeight()
	if row < 0 || row >= m.viewport.Height {
		return
	}
	offset, ok := offsetAt(m.runes, m.lines, x, row+m.viewport.YOffset)
	if !ok {
		return
	}

	i, ok := textlinks.SpanAt(m.spans, offset)
	if !ok {
		m.logger.Debug().Int("offset", offset).Msg("click outside links")
		return
	}
	m.logger.Debug().Int("offset", offset).Int("span", i).Msg("click on link")

	payload, _, err := textlinks.Activate(m.doc.Links, m.spans, offset)
	m.focusSpan(i)
	m.recordActivation(payload, err)
}

func (m *LinkViewModel) activate(i int) {
	span := m.spans[i]
	err := textlinks.ActivateSpan(m.doc.Links, span)
	m.recordActivation(span.Payload, err)
}

func (m *LinkViewModel) recordActivation(payload string, err error) {
	m.activated = append(m.activated, payload)
	if err != nil {
		m.setError(fmt.Errorf("activate %q: %w", payload, err))
		return
	}
	m.lastErr = nil
	m.status = "activated " + payload
	m.logger.Info().Str("payload", payload).Msg("link activated")
}

func (m *LinkViewModel) setError(err error) {
	m.lastErr = err
	m.status = err.Error()
	m.logger.Error().Err(err).Msg("link action failed")
}

func (m *LinkViewModel) moveFocus(delta int) {
	if len(m.order) == 0 {
		return
	}
	next := m.focus + delta
	if m.focus < 0 && delta < 0 {
		next = len(m.order) - 1
	}
	next = (next + len(m.order)) % len(m.order)
	m.setFocus(next)
}

func (m *LinkViewModel) focusSpan(spanIndex int) {
	for pos, i := range m.order {
		if i == spanIndex {
			m.setFocus(pos)
			return
		}
	}
}

func (m *LinkViewModel) setFocus(pos int) {
	m.focus = pos
	span := m.spans[m.order[pos]]
	m.status = fmt.Sprintf("%s → %s", string(m.runes[span.Start:span.End]), span.Payload)
	m.refresh()

	row := lineOf(m.lines, span.Start)
	switch {
	case row < m.viewport.YOffset:
		m.viewport.SetYOffset(row)
	case row >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(row - m.viewport.Height + 1)
	}
}

func (m LinkViewModel) focusedSpan() (int, bool) {
	if m.focus < 0 || m.focus >= len(m.order) {
		return -1, false
	}
	return m.order[m.focus], true
}

func (m *LinkViewModel) relayout() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-m.headerHeight()-m.footerHeight(), 1)
	m.lines = layoutLines(m.runes, m.width)
	m.refresh()
}

func (m *LinkViewModel) refresh() {
	painter := m.painter
	if i, ok := m.focusedSpan(); ok {
		painter = painter.WithFocus(i)
	}

	rendered := make([]string, len(m.lines))
	for i, l := range m.lines {
		rendered[i] = painter.PaintRange(m.runes, m.spans, l.start, l.end)
	}
	m.viewport.SetContent(strings.Join(rendered, "\n"))
}

// View implements tea.Model.
func (m LinkViewModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.doc.Title != "" {
		b.WriteString(titleStyle.Render(m.doc.Title))
		b.WriteString("\n\n")
	}

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.status != "" {
		style := statusStyle
		if m.lastErr != nil {
			style = errorStyle
		}
		status := wrapString(m.status, m.width)
		b.WriteString(style.Render(status[0]))
	} else {
		b.WriteString(statusStyle.Render(fmt.Sprintf("%d links", len(m.spans))))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// Activated returns the payloads activated so far, in order.
func (m LinkViewModel) Activated() []string {
	return m.activated
}

// Err returns the last activation error, if any.
func (m LinkViewModel) Err() error {
	return m.lastErr
}

// wrapString wraps s to width and always returns at least one line.
func wrapString(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	return strings.Split(wordwrap.String(s, width), "\n")
}

// RunLinkView runs the link view full screen and returns the final model.
func RunLinkView(doc textlinks.Document, opts ViewOptions) (LinkViewModel, error) {
	model := NewLinkViewModel(doc, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return model, fmt.Errorf("run link view: %w", err)
	}
	if m, ok := finalModel.(LinkViewModel); ok {
		return m, nil
	}
	return model, nil
}
