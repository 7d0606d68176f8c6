package tui

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"rootforge/internal/adapters/editor"
	"rootforge/internal/adapters/filesystem"
	"rootforge/internal/adapters/tui/views"
	"rootforge/internal/application/commands"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewForm ViewState = iota
	ViewConfirm
	ViewProgress
	ViewResult
	ViewHelp
)

var interruptKey = key.NewBinding(key.WithKeys("ctrl+c"))

// CloneFunc runs one clone and reports its stages to sink
type CloneFunc func(ctx context.Context, request views.CloneRequest, sink ports.ProgressSink) (*commands.CloneRootResult, error)

// CloneOptions are the collaborators NewCommandCloner wires into every clone
type CloneOptions struct {
	Archive           ports.Archive
	Codecs            commands.Codecs
	Catalog           ports.ItemCatalog
	Exporter          ports.Exporter
	ExportDirectory   string
	SourceApplication string
}

// NewCommandCloner returns a CloneFunc backed by CloneRootCommand
func NewCommandCloner(opts CloneOptions) CloneFunc {
	return func(ctx context.Context, request views.CloneRequest, sink ports.ProgressSink) (*commands.CloneRootResult, error) {
		cmd := commands.NewCloneRootCommand(opts.Archive, opts.Codecs,
			domain.Root{Info: request.Source}, domain.Root{Info: request.Destination}, opts.SourceApplication)
		cmd.VariantIndex = request.Variant
		cmd.Catalog = opts.Catalog
		cmd.Exporter = opts.Exporter
		cmd.ExportDirectory = opts.ExportDirectory
		cmd.Progress = sink
		return cmd.Execute(ctx)
	}
}

// eventSink forwards progress labels into the event channel of a running clone
type eventSink chan tea.Msg

func (s eventSink) Report(stage string) {
	s <- views.StageMsg{Stage: stage}
}

// App is the main TUI application model
type App struct {
	clone     CloneFunc
	editor    *editor.Opener
	exportDir string

	state    ViewState
	form     *views.FormModel
	confirm  *views.ConfirmModel
	progress *views.ProgressModel
	result   *views.ResultModel
	help     *views.HelpModel

	events chan tea.Msg
	cancel context.CancelFunc

	width  int
	height int
}

// NewApp creates a new TUI application. A request naming both roots skips
// the form and opens the confirmation. ed and exportDir may be empty; the
// manifest shortcut then reports that nothing was exported.
func NewApp(clone CloneFunc, request views.CloneRequest, ed *editor.Opener, exportDir string) *App {
	a := &App{
		clone:     clone,
		editor:    ed,
		exportDir: exportDir,
		state:    ViewForm,
		form:     views.NewFormModel(request),
		confirm:  views.NewConfirmModel(),
		progress: views.NewProgressModel(),
		result:   views.NewResultModel(),
		help:     views.NewHelpModel(),
	}
	if request.Source.PrimaryType != domain.ItemTypeNone && request.Destination.PrimaryType != domain.ItemTypeNone {
		a.confirm.SetRequest(request)
		a.state = ViewConfirm
	}
	return a
}

// State returns the current view
func (a *App) State() ViewState {
	return a.state
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.form.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.form.SetSize(msg.Width, msg.Height)
		a.confirm.SetSize(msg.Width, msg.Height)
		a.progress.SetSize(msg.Width, msg.Height)
		a.result.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, interruptKey) {
			if a.cancel != nil {
				a.cancel()
			}
			return a, tea.Quit
		}

	// View switching messages
	case views.SwitchToFormMsg:
		a.state = ViewForm
		return a, a.form.Init()

	case views.SwitchToConfirmMsg:
		a.confirm.SetRequest(msg.Request)
		a.state = ViewConfirm
		return a, nil

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	// Clone lifecycle messages
	case views.StartCloneMsg:
		a.state = ViewProgress
		return a, tea.Batch(a.progress.Start(msg.Request), a.start(msg.Request))

	case views.StageMsg:
		a.progress.Update(msg)
		return a, a.waitForEvent()

	case views.CloneDoneMsg:
		a.progress.Update(msg)
		a.cancel = nil
		a.events = nil
		a.form.Prefill(msg.Request)
		a.result.SetOutcome(msg.Result, msg.Err)
		a.state = ViewResult
		return a, nil

	case views.OpenManifestMsg:
		return a, a.openManifest()

	case editorFinishedMsg:
		if msg.err != nil {
			a.result.SetMessage(msg.err.Error(), true)
		}
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewForm:
		_, cmd = a.form.Update(msg)
	case ViewConfirm:
		_, cmd = a.confirm.Update(msg)
	case ViewProgress:
		_, cmd = a.progress.Update(msg)
	case ViewResult:
		_, cmd = a.result.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

// start runs the clone in the background. Stages and the final CloneDoneMsg
// arrive through the event channel in the order they happened.
func (a *App) start(request views.CloneRequest) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.events = make(chan tea.Msg, 16)
	events := a.events

	run := func() tea.Msg {
		defer cancel()
		result, err := a.clone(ctx, request, eventSink(events))
		events <- views.CloneDoneMsg{Request: request, Result: result, Err: err}
		return nil
	}
	return tea.Batch(run, a.waitForEvent())
}

func (a *App) waitForEvent() tea.Cmd {
	events := a.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		return <-events
	}
}

type editorFinishedMsg struct{ err error }

func (a *App) openManifest() tea.Cmd {
	if a.exportDir == "" {
		return func() tea.Msg {
			return editorFinishedMsg{err: errors.New("no export directory configured")}
		}
	}
	if a.editor == nil {
		return nil
	}

	cmd, err := a.editor.Command(filepath.Join(a.exportDir, filesystem.ManifestName))
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewConfirm:
		return a.confirm.View()
	case ViewProgress:
		return a.progress.View()
	case ViewResult:
		return a.result.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.form.View()
	}
}
