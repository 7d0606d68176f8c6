package views

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"

	"rootforge/internal/adapters/tui/styles"
	"rootforge/internal/application/commands"
)

// copyToClipboard is swapped in tests
var copyToClipboard = clipboard.WriteAll

// ResultKeyMap defines key bindings for the result view
type ResultKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Copy    key.Binding
	CopyAll key.Binding
	Edit    key.Binding
	Again   key.Binding
	Quit    key.Binding
}

var ResultKeys = ResultKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("j/k", "move"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy path"),
	),
	CopyAll: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "copy file map"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit manifest"),
	),
	Again: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "new clone"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}

type filePair struct {
	from, to string
}

// ResultModel shows the outcome of a finished clone
type ResultModel struct {
	ViewState
	result *commands.CloneRootResult
	err    error
	pairs  []filePair
	pages  paginator.Model
	cursor int
}

// NewResultModel creates a new result view model
func NewResultModel() *ResultModel {
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = 15
	return &ResultModel{pages: p}
}

// SetOutcome loads a finished clone. result may be nil when err is set.
func (m *ResultModel) SetOutcome(result *commands.CloneRootResult, err error) {
	m.result = result
	m.err = err
	m.pairs = nil
	m.cursor = 0
	m.ClearMessage()
	if result != nil {
		result.Files.Each(func(oldPath, newPath string) {
			m.pairs = append(m.pairs, filePair{oldPath, newPath})
		})
	}
	m.pages.Page = 0
	m.pages.SetTotalPages(len(m.pairs))
}

// Selected returns the destination path under the cursor
func (m *ResultModel) Selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.pairs) {
		return "", false
	}
	return m.pairs[m.cursor].to, true
}

// Init initializes the result view
func (m *ResultModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the result view
func (m *ResultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, ResultKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, ResultKeys.Edit):
			if m.result == nil {
				return m, nil
			}
			return m, func() tea.Msg { return OpenManifestMsg{} }
		case key.Matches(msg, ResultKeys.Again):
			return m, func() tea.Msg { return SwitchToFormMsg{} }
		case key.Matches(msg, ResultKeys.Up):
			m.move(-1)
			return m, nil
		case key.Matches(msg, ResultKeys.Down):
			m.move(1)
			return m, nil
		case key.Matches(msg, ResultKeys.Copy):
			if p, ok := m.Selected(); ok {
				m.copy(p, "Copied "+p)
			}
			return m, nil
		case key.Matches(msg, ResultKeys.CopyAll):
			if m.result != nil {
				m.copy(m.fileMap(), fmt.Sprintf("Copied %d paths", len(m.pairs)))
			}
			return m, nil
		}

		page := m.pages.Page
		var cmd tea.Cmd
		m.pages, cmd = m.pages.Update(msg)
		if m.pages.Page != page {
			m.cursor, _ = m.pages.GetSliceBounds(len(m.pairs))
		}
		return m, cmd
	}
	return m, nil
}

func (m *ResultModel) move(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.pairs) {
		return
	}
	m.cursor = next
	m.pages.Page = next / m.pages.PerPage
}

func (m *ResultModel) copy(text, done string) {
	if err := copyToClipboard(text); err != nil {
		m.SetMessage(fmt.Sprintf("failed to copy to clipboard: %v", err), true)
		return
	}
	m.SetMessage(done, false)
}

func (m *ResultModel) fileMap() string {
	var sb strings.Builder
	for _, p := range m.pairs {
		fmt.Fprintf(&sb, "%s -> %s\n", p.from, p.to)
	}
	return sb.String()
}

// View renders the result view
func (m *ResultModel) View() string {
	v := NewViewBuilder()
	if m.result == nil {
		return v.Title("Clone Failed").
			Message(m.err.Error(), true).
			Help(ResultKeys.Again, ResultKeys.Quit).
			String()
	}

	v.Title("Clone Complete").Line(styles.Success.Render(m.result.Message))
	if m.err != nil {
		v.Line(styles.ErrorMsg.Render(m.err.Error()))
	}
	v.Field("Mod pack", m.result.ModPack)
	if m.result.Purged > 0 {
		v.Field("Removed", fmt.Sprintf("%d existing modifications", m.result.Purged))
	}
	for _, rc := range m.result.RaceModels {
		v.Muted(fmt.Sprintf("created %s model from %s", rc.Race, rc.Base))
	}
	for _, o := range m.result.Skipped {
		v.Line(styles.WarningMsg.Render(fmt.Sprintf("skipped %s: %s", o.Source, o.Reason)))
	}
	if m.result.Gaps > 0 {
		v.Line(styles.WarningMsg.Render(fmt.Sprintf("%d material set entries could not be filled", m.result.Gaps)))
	}
	v.BlankLine()

	start, end := m.pages.GetSliceBounds(len(m.pairs))
	for i := start; i < end; i++ {
		v.Line(RenderPathPair(m.pairs[i].from, m.pairs[i].to, m.Width-6, i == m.cursor))
	}
	if m.pages.TotalPages > 1 {
		v.Muted(m.pages.View())
	}
	v.BlankLine()

	return v.Message(m.Message, m.MessageErr).
		Help(ResultKeys.Up, ResultKeys.Copy, ResultKeys.CopyAll, ResultKeys.Edit, ResultKeys.Again, ResultKeys.Quit).
		String()
}
