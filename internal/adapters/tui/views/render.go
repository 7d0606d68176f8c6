package views

import (
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"rootforge/internal/adapters/tui/styles"
	"rootforge/internal/domain"
)

// helpLine joins key bindings as "key desc • key desc"
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderPathPair renders old → new, coloring the new path by file kind.
// Both sides are shortened to width when width is positive.
func RenderPathPair(oldPath, newPath string, width int, selected bool) string {
	if width > 0 {
		half := (width - lipgloss.Width(styles.Arrow.String())) / 2
		oldPath = truncateLeft(oldPath, half)
		newPath = truncateLeft(newPath, half)
	}
	line := styles.PathOld.Render(oldPath) + styles.Arrow.String() +
		styles.PathNew.Foreground(styles.KindColor(path.Ext(newPath))).Render(newPath)
	if selected {
		return styles.PathSelected.Render("> ") + line
	}
	return "  " + line
}

// truncateLeft keeps the end of s, which is where archive paths differ
func truncateLeft(s string, n int) string {
	if n <= 1 || len(s) <= n {
		return s
	}
	return "…" + s[len(s)-n+1:]
}

// ViewBuilder accumulates the lines of one screen
type ViewBuilder struct {
	b strings.Builder
}

func NewViewBuilder() *ViewBuilder {
	return &ViewBuilder{}
}

func (v *ViewBuilder) Title(title string) *ViewBuilder {
	v.b.WriteString(styles.Title.Render(title))
	v.b.WriteString("\n\n")
	return v
}

func (v *ViewBuilder) Subtitle(subtitle string) *ViewBuilder {
	v.b.WriteString(styles.Subtitle.Render(subtitle))
	v.b.WriteString("\n\n")
	return v
}

func (v *ViewBuilder) Line(text string) *ViewBuilder {
	v.b.WriteString(text)
	v.b.WriteByte('\n')
	return v
}

func (v *ViewBuilder) BlankLine() *ViewBuilder {
	v.b.WriteByte('\n')
	return v
}

func (v *ViewBuilder) Muted(text string) *ViewBuilder {
	return v.Line(styles.MutedText.Render(text))
}

// Field adds a "label: value" line
func (v *ViewBuilder) Field(label, value string) *ViewBuilder {
	return v.Line(styles.InputLabel.Render(label+":") + " " + value)
}

// Root adds a root with its folder underneath
func (v *ViewBuilder) Root(label string, root domain.RootInfo) *ViewBuilder {
	return v.Field(label, root.String()).Line("  " + styles.MutedText.Render(root.RootFolder()))
}

// Warningf adds a highlighted line followed by a blank line
func (v *ViewBuilder) Warningf(format string, args ...any) *ViewBuilder {
	return v.Line(styles.WarningMsg.Render(fmt.Sprintf(format, args...))).BlankLine()
}

// Stage adds one progress stage, with prefix in place of the check mark
// while the stage is still running
func (v *ViewBuilder) Stage(label, prefix string, current bool) *ViewBuilder {
	if current {
		return v.Line(prefix + styles.StageCurrent.Render(label))
	}
	return v.Line(styles.StageDone.Render("✓ ") + label)
}

// Message adds the view's status message, if any
func (v *ViewBuilder) Message(message string, isError bool) *ViewBuilder {
	switch {
	case message == "":
		return v
	case isError:
		v.b.WriteString(styles.ErrorMsg.Render(message))
	default:
		v.b.WriteString(styles.Success.Render(message))
	}
	v.b.WriteString("\n\n")
	return v
}

func (v *ViewBuilder) Help(bindings ...key.Binding) *ViewBuilder {
	v.b.WriteString(helpLine(bindings...))
	return v
}

// String returns the screen wrapped in the app style
func (v *ViewBuilder) String() string {
	return styles.App.Render(v.b.String())
}
