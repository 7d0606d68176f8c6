package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"rootforge/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "f1"),
		key.WithHelp("esc/q", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return SwitchToFormMsg{}
			}
		}
	}

	return m, nil
}

type helpSection struct {
	title   string
	entries [][2]string
}

var helpSections = []helpSection{
	{"Form", [][2]string{
		{"tab / ↓", "Next field"},
		{"shift+tab / ↑", "Previous field"},
		{"enter", "Review the clone"},
		{"esc", "Quit"},
	}},
	{"Result", [][2]string{
		{"j / k", "Move through the file map"},
		{"h / l", "Previous / next page"},
		{"c", "Copy the selected destination path"},
		{"C", "Copy the whole file map"},
		{"e", "Open the export manifest in $EDITOR"},
		{"n", "Start another clone"},
	}},
	{"Roots", [][2]string{
		{"equipment/12/top", "Equipment, one slot"},
		{"accessory/3/ear", "Accessory, one slot"},
		{"weapon/201/body/1", "Weapon body"},
		{"human/101/hair/5", "Hairstyle of one race"},
	}},
}

// View renders the help view
func (m *HelpModel) View() string {
	v := NewViewBuilder().
		Title("Rootforge Help").
		Subtitle("Clone an item root onto another")

	for _, section := range helpSections {
		v.Line(styles.InputLabel.Render(section.title))
		for _, e := range section.entries {
			v.Line("  " + styles.HelpKey.Render(fmt.Sprintf("%-20s", e[0])) + styles.HelpDesc.Render(e[1]))
		}
		v.BlankLine()
	}

	return v.Help(HelpKeys.Close).String()
}
