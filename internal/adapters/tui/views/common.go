package views

import (
	"rootforge/internal/application/commands"
	"rootforge/internal/domain"
)

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// CloneRequest is what the form collects before a clone starts
type CloneRequest struct {
	Source      domain.RootInfo
	Destination domain.RootInfo
	// Variant is -1 to keep every variant
	Variant int
}

// SwitchToFormMsg returns to the clone form
type SwitchToFormMsg struct{}

// SwitchToConfirmMsg asks for confirmation of a parsed request
type SwitchToConfirmMsg struct {
	Request CloneRequest
}

// SwitchToHelpMsg opens the help view
type SwitchToHelpMsg struct{}

// StartCloneMsg is sent once the user confirmed a request
type StartCloneMsg struct {
	Request CloneRequest
}

// StageMsg carries one progress label of a running clone
type StageMsg struct {
	Stage string
}

// CloneDoneMsg ends a clone. Result may be set together with Err when the
// clone committed but its export failed.
type CloneDoneMsg struct {
	Request CloneRequest
	Result  *commands.CloneRootResult
	Err     error
}

// OpenManifestMsg asks to open the export manifest of the last clone
type OpenManifestMsg struct{}
