package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	textlinks "github.com/Quish-Labs/gh-textlinks/internal"
)

// ErrPickCancelled is returned when the picker is closed without a choice.
var ErrPickCancelled = errors.New("selection cancelled")

// LinkPickerModel lists every annotated span and activates the chosen one.
type LinkPickerModel struct {
	list     list.Model
	doc      textlinks.Document
	spans    []textlinks.Span
	choice   *textlinks.Span
	err      error
	quitting bool
}

// spanItem wraps a span for use with the bubbles list component.
type spanItem struct {
	index int
	span  textlinks.Span
	text  string
}

func (i spanItem) FilterValue() string {
	return i.text + " " + i.span.Payload
}

func (i spanItem) Title() string {
	return i.text
}

func (i spanItem) Description() string {
	return fmt.Sprintf("[%d→%d] %s", i.span.Start, i.span.End, i.span.Payload)
}

// NewLinkPickerModel creates a picker over the spans of doc.
func NewLinkPickerModel(doc textlinks.Document) LinkPickerModel {
	spans := doc.Spans()
	runes := []rune(doc.Text)

	items := make([]list.Item, len(spans))
	for i, span := range spans {
		items[i] = spanItem{index: i, span: span, text: string(runes[span.Start:span.End])}
	}

	delegate := list.NewDefaultDelegate()

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedItemStyle := lipgloss.NewStyle().
		PaddingLeft(1).
		Foreground(lipgloss.Color("170")).
		Bold(true)

	delegate.Styles.NormalTitle = itemStyle
	delegate.Styles.SelectedTitle = selectedItemStyle
	delegate.Styles.SelectedDesc = selectedItemStyle.Foreground(lipgloss.Color("241"))

	title := "Select a link"
	if doc.Title != "" {
		title = doc.Title
	}

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "activate"),
			),
		}
	}

	return LinkPickerModel{
		list:  l,
		doc:   doc,
		spans: spans,
	}
}

// Init implements tea.Model.
func (m LinkPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m LinkPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := lipgloss.NewStyle().GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		return m, nil

	case tea.KeyMsg:
		// Let the list own keys while the filter prompt is open.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if item, ok := m.list.SelectedItem().(spanItem); ok {
				span := item.span
				m.choice = &span
				m.err = textlinks.ActivateSpan(m.doc.Links, span)
				m.quitting = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m LinkPickerModel) View() string {
	if m.quitting && m.choice != nil {
		return ""
	}
	if m.quitting {
		return "Selection cancelled.\n"
	}
	return m.list.View()
}

// Choice returns the activated span, or nil if none was chosen.
func (m LinkPickerModel) Choice() *textlinks.Span {
	return m.choice
}

// PickLink runs the picker and returns the activated span. The handler's
// error, if any, is returned alongside the span.
func PickLink(doc textlinks.Document) (*textlinks.Span, error) {
	model := NewLinkPickerModel(doc)
	if len(model.spans) == 0 {
		return nil, fmt.Errorf("no links found in text")
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("error running link picker: %w", err)
	}

	if m, ok := finalModel.(LinkPickerModel); ok && m.choice != nil {
		return m.choice, m.err
	}
	return nil, ErrPickCancelled
}
