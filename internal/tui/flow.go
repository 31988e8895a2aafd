package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	textlinks "github.com/Quish-Labs/gh-textlinks/internal"
)

// FlowState represents the current state of the interactive flow.
type FlowState int

const (
	StateLoading FlowState = iota
	StateViewing
	StateQuitting
)

// Loader produces the document to show, typically by fetching it over the network.
type Loader func() (textlinks.Document, error)

// FlowModel loads a document in the background and then hands over to the
// link view in the same program, so the screen never flashes between them.
type FlowModel struct {
	state   FlowState
	spinner spinner.Model
	view    LinkViewModel
	load    Loader
	label   string
	opts    ViewOptions
	err     error
	width   int
	height  int
}

// documentLoadedMsg is sent when the loader returns.
type documentLoadedMsg struct {
	doc textlinks.Document
	err error
}

// NewFlowModel creates a flow that starts by running load. label describes
// what is being loaded.
func NewFlowModel(label string, load Loader, opts ViewOptions) FlowModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	return FlowModel{
		state:   StateLoading,
		spinner: s,
		load:    load,
		label:   label,
		opts:    opts,
	}
}

// Init implements tea.Model.
func (m FlowModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m FlowModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		if m.load == nil {
			return documentLoadedMsg{err: fmt.Errorf("no loader configured")}
		}
		doc, err := m.load()
		return documentLoadedMsg{doc: doc, err: err}
	}
}

// Update implements tea.Model.
func (m FlowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
	}

	switch m.state {
	case StateLoading:
		switch msg := msg.(type) {
		case documentLoadedMsg:
			if msg.err != nil {
				m.err = msg.err
				m.state = StateQuitting
				return m, tea.Quit
			}
			m.view = NewLinkViewModel(msg.doc, m.opts)
			if m.width > 0 {
				updated, _ := m.view.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
				m.view = updated.(LinkViewModel)
			}
			m.state = StateViewing
			return m, m.view.Init()

		case tea.KeyMsg:
			if msg.String() == "ctrl+c" || msg.String() == "q" {
				m.state = StateQuitting
				return m, tea.Quit
			}

		case spinner.TickMsg:
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case StateViewing:
		updated, cmd := m.view.Update(msg)
		m.view = updated.(LinkViewModel)
		if m.view.quitting {
			m.state = StateQuitting
			return m, tea.Quit
		}
		return m, cmd

	default:
		return m, tea.Quit
	}
}

// View implements tea.Model.
func (m FlowModel) View() string {
	switch m.state {
	case StateLoading:
		return lipgloss.NewStyle().Padding(1, 2).Render(
			fmt.Sprintf("%s %s", m.spinner.View(), titleStyle.Render("Loading "+m.label+"...")),
		)
	case StateViewing:
		return m.view.View()
	default:
		return ""
	}
}

// State returns the current flow state.
func (m FlowModel) State() FlowState {
	return m.state
}

// Err returns the load error, or the last activation error once viewing.
func (m FlowModel) Err() error {
	if m.err != nil {
		return m.err
	}
	return m.view.Err()
}

// RunFlow loads a document and shows it in a single TUI session.
func RunFlow(label string, load Loader, opts ViewOptions) error {
	model := NewFlowModel(label, load, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("run flow: %w", err)
	}
	if m, ok := finalModel.(FlowModel); ok {
		return m.err
	}
	return nil
}
