package tui

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"rootforge/internal/adapters/editor"
	"rootforge/internal/adapters/tui/views"
	"rootforge/internal/application/commands"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

var (
	shirt12 = domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 12, Slot: "top"}
	shirt87 = domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 87, Slot: "top"}
)

// pump runs cmd and every command it produces, feeding messages back into
// the app the way the bubbletea runtime would. Spinner ticks are dropped.
func pump(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("command queue did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := a.Update(msg)
			queue = append(queue, next)
		}
	}
}

func TestApp_CloneFlow(t *testing.T) {
	var got views.CloneRequest
	clone := func(ctx context.Context, request views.CloneRequest, sink ports.ProgressSink) (*commands.CloneRootResult, error) {
		got = request
		sink.Report(commands.ProgressAnalyzing)
		sink.Report(commands.ProgressModels)
		return &commands.CloneRootResult{
			Files: domain.NewPathMap(map[string]string{
				"chara/equipment/e0012/e0012_top.meta": "chara/equipment/e0087/e0087_top.meta",
			}),
			Message: "Cloned 1 file",
		}, nil
	}

	a := NewApp(clone, views.CloneRequest{Source: shirt12, Destination: shirt87, Variant: 2}, nil, "")
	if a.State() != ViewConfirm {
		t.Fatalf("expected confirm view for a complete request, got %d", a.State())
	}

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	pump(t, a, cmd)

	if a.State() != ViewResult {
		t.Fatalf("expected result view, got %d", a.State())
	}
	want := views.CloneRequest{Source: shirt12, Destination: shirt87, Variant: 2}
	if got != want {
		t.Errorf("clone ran with %+v, want %+v", got, want)
	}
	if stages := a.progress.Stages(); !reflect.DeepEqual(stages, []string{commands.ProgressAnalyzing, commands.ProgressModels}) {
		t.Errorf("unexpected stages %v", stages)
	}
	if p, ok := a.result.Selected(); !ok || p != "chara/equipment/e0087/e0087_top.meta" {
		t.Errorf("Selected() = %q, %v", p, ok)
	}
	if a.events != nil || a.cancel != nil {
		t.Error("finished clone should release its channel and cancel func")
	}
}

func TestApp_CloneFailure(t *testing.T) {
	failure := errors.New("partition chara is locked")
	clone := func(ctx context.Context, request views.CloneRequest, sink ports.ProgressSink) (*commands.CloneRootResult, error) {
		return nil, failure
	}

	a := NewApp(clone, views.CloneRequest{Variant: -1}, nil, "")
	if a.State() != ViewForm {
		t.Fatalf("expected form view, got %d", a.State())
	}

	_, cmd := a.Update(views.StartCloneMsg{Request: views.CloneRequest{Source: shirt12, Destination: shirt87, Variant: -1}})
	pump(t, a, cmd)

	if a.State() != ViewResult {
		t.Fatalf("expected result view, got %d", a.State())
	}
	if _, ok := a.result.Selected(); ok {
		t.Error("failed clone should have no file map")
	}

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	a.Update(cmd())
	if a.State() != ViewForm {
		t.Errorf("expected form view after n, got %d", a.State())
	}
	request, err := a.form.Request()
	if err != nil {
		t.Fatalf("form should be prefilled with the last request: %v", err)
	}
	if request.Source != shirt12 || request.Destination != shirt87 {
		t.Errorf("prefilled request = %+v", request)
	}
}

func TestApp_InterruptCancelsClone(t *testing.T) {
	a := NewApp(nil, views.CloneRequest{Variant: -1}, nil, "")
	cancelled := false
	a.cancel = func() { cancelled = true }

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !cancelled {
		t.Error("ctrl+c should cancel the running clone")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestApp_OpenManifestWithoutExport(t *testing.T) {
	a := NewApp(nil, views.CloneRequest{Variant: -1}, editor.NewOpener("true"), "")
	a.result.SetOutcome(&commands.CloneRootResult{Message: "done"}, nil)
	a.state = ViewResult

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	pump(t, a, cmd)

	if !a.result.MessageErr {
		t.Error("opening a manifest without an export directory should report an error")
	}
}
