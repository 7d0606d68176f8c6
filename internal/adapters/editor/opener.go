package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Opener launches the user's editor on exported files such as a clone manifest
type Opener struct {
	preferred string
	lookPath  func(string) (string, error)
	getenv    func(string) string
}

// NewOpener creates a new editor opener. preferred, when set, wins over the
// environment and may carry arguments (e.g. "code --wait").
func NewOpener(preferred string) *Opener {
	return &Opener{
		preferred: preferred,
		lookPath:  exec.LookPath,
		getenv:    os.Getenv,
	}
}

// OpenFile opens a file in the user's preferred editor and waits for it to exit
func (o *Opener) OpenFile(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns an exec.Cmd for opening a file in the editor.
// This is useful for integrating with bubbletea's ExecProcess
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	argv := strings.Fields(o.findEditor())
	if len(argv) == 0 {
		return nil, fmt.Errorf("no editor found: set editor in the config or $EDITOR")
	}

	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

func (o *Opener) findEditor() string {
	if o.preferred != "" {
		return o.preferred
	}
	if editor := o.getenv("EDITOR"); editor != "" {
		return editor
	}
	if visual := o.getenv("VISUAL"); visual != "" {
		return visual
	}

	for _, editor := range []string{"nvim", "vim", "vi", "nano"} {
		if path, err := o.lookPath(editor); err == nil {
			return path
		}
	}
	return ""
}
