package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmKeyMap defines key bindings for confirmation views
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// ConfirmModel asks before a clone replaces the destination's modifications
type ConfirmModel struct {
	ViewState
	Request CloneRequest
	Keys    ConfirmKeyMap
}

// NewConfirmModel creates a new confirmation model with default keys
func NewConfirmModel() *ConfirmModel {
	return &ConfirmModel{
		Keys: DefaultConfirmKeys,
	}
}

// SetRequest sets the request being confirmed
func (m *ConfirmModel) SetRequest(request CloneRequest) {
	m.Request = request
	m.ClearMessage()
}

// Init initializes the confirmation view
func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the confirmation view
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		request := m.Request
		switch {
		case key.Matches(msg, m.Keys.Cancel):
			return m, func() tea.Msg { return SwitchToFormMsg{} }
		case key.Matches(msg, m.Keys.Confirm):
			return m, func() tea.Msg { return StartCloneMsg{Request: request} }
		}
	}
	return m, nil
}

// View renders the confirmation view
func (m *ConfirmModel) View() string {
	r := m.Request
	v := NewViewBuilder().
		Title("Confirm Clone").
		Root("Source", r.Source).
		Root("Destination", r.Destination)

	if r.Variant >= 0 {
		v.Field("Variant", fmt.Sprintf("%d on every destination variant", r.Variant))
	} else {
		v.Field("Variant", "all")
	}
	v.BlankLine()

	if r.Source == r.Destination {
		v.Warningf("Source and destination are the same root; only metadata is rewritten.")
	} else {
		v.Warningf("Every existing modification under %s will be removed.", r.Destination.RootFolder())
	}

	return v.Line("Clone? " + helpLine(m.Keys.Confirm, m.Keys.Cancel)).String()
}
