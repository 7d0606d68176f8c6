package views

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"rootforge/internal/adapters/tui/styles"
)

// ProgressModel shows the stages of a running clone
type ProgressModel struct {
	ViewState
	Request CloneRequest
	spinner spinner.Model
	stages  []string
	running bool
}

// NewProgressModel creates a new progress view model
func NewProgressModel() *ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner
	return &ProgressModel{spinner: s}
}

// Start resets the view for a new clone and starts the spinner
func (m *ProgressModel) Start(request CloneRequest) tea.Cmd {
	m.Request = request
	m.stages = nil
	m.running = true
	m.ClearMessage()
	return m.spinner.Tick
}

// Stages returns the labels reported so far
func (m *ProgressModel) Stages() []string {
	return m.stages
}

// Init initializes the progress view
func (m *ProgressModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the progress view
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StageMsg:
		m.stages = append(m.stages, msg.Stage)
		return m, nil

	case CloneDoneMsg:
		m.running = false
		return m, nil
	}
	return m, nil
}

// View renders the progress view
func (m *ProgressModel) View() string {
	v := NewViewBuilder().
		Title("Cloning").
		Subtitle(m.Request.Source.String() + " → " + m.Request.Destination.String())

	for i, stage := range m.stages {
		v.Stage(stage, m.spinner.View(), m.running && i == len(m.stages)-1)
	}
	if len(m.stages) == 0 && m.running {
		v.Line(m.spinner.View() + styles.MutedText.Render("starting..."))
	}

	return v.Message(m.Message, m.MessageErr).String()
}
