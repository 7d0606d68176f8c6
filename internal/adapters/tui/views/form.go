package views

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"rootforge/internal/domain"
)

const (
	fieldSource = iota
	fieldDestination
	fieldVariant
)

var formHelpKey = key.NewBinding(
	key.WithKeys("ctrl+h", "f1"),
	key.WithHelp("f1", "help"),
)

// FormModel collects the roots and variant of a clone
type FormModel struct {
	ViewState
	form *InputForm
}

// NewFormModel creates the clone form, prefilled from request when its roots are set
func NewFormModel(request CloneRequest) *FormModel {
	source := NewInputField("Source root", "equipment/12/top", "type/id[/subtype/subid][/slot] or an archive path", 120)
	source.Preview = previewRoot
	destination := NewInputField("Destination root", "equipment/87/top", "existing modifications of this root are replaced", 120)
	destination.Preview = previewRoot

	form := NewInputForm(
		source,
		destination,
		NewInputField("Variant", "all", "leave empty to keep every variant", 4),
	)
	m := &FormModel{form: form}
	m.Prefill(request)
	return m
}

// previewRoot shows the folder a typed root resolves to
func previewRoot(value string) (string, bool) {
	root, err := domain.ParseRoot(value)
	if err != nil {
		return err.Error(), false
	}
	if !root.IsCloneable() {
		return root.RootFolder() + " (cannot be cloned)", false
	}
	return root.RootFolder(), true
}

// Prefill copies a previous request into the fields
func (m *FormModel) Prefill(request CloneRequest) {
	if request.Source.PrimaryType != domain.ItemTypeNone {
		m.form.SetValue(fieldSource, request.Source.String())
	}
	if request.Destination.PrimaryType != domain.ItemTypeNone {
		m.form.SetValue(fieldDestination, request.Destination.String())
	}
	if request.Variant >= 0 {
		m.form.SetValue(fieldVariant, strconv.Itoa(request.Variant))
	}
}

// Init initializes the form view
func (m *FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the form view
func (m *FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, tea.Quit
		case key.Matches(msg, formHelpKey):
			return m, func() tea.Msg { return SwitchToHelpMsg{} }
		case key.Matches(msg, m.form.Keys.Submit):
			request, err := m.Request()
			if err != nil {
				m.SetMessage(err.Error(), true)
				return m, nil
			}
			m.ClearMessage()
			return m, func() tea.Msg { return SwitchToConfirmMsg{Request: request} }
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

// Request parses the fields into a clone request
func (m *FormModel) Request() (CloneRequest, error) {
	request := CloneRequest{Variant: -1}

	src, err := domain.ParseRoot(m.form.Value(fieldSource))
	if err != nil {
		return request, fmt.Errorf("source: %w", err)
	}
	dst, err := domain.ParseRoot(m.form.Value(fieldDestination))
	if err != nil {
		return request, fmt.Errorf("destination: %w", err)
	}
	request.Source, request.Destination = src, dst

	if v := m.form.Value(fieldVariant); v != "" && v != "all" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return request, fmt.Errorf("variant must be a non-negative number, got %q", v)
		}
		request.Variant = n
	}
	return request, nil
}

// View renders the form view
func (m *FormModel) View() string {
	v := NewViewBuilder().
		Title("Clone Root").
		Subtitle("Copy a root's models, materials, textures and metadata onto another root")

	for i := range m.form.Fields {
		v.Line(m.form.RenderField(i)).BlankLine()
	}

	return v.Message(m.Message, m.MessageErr).
		Help(m.form.Keys.Next, m.form.Keys.Submit, formHelpKey, m.form.Keys.Cancel).
		String()
}
