package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Forge palette
	Primary   = lipgloss.Color("#EA580C") // ember
	Secondary = lipgloss.Color("#22C55E")
	Muted     = lipgloss.Color("#78716C") // ash
	Warning   = lipgloss.Color("#EAB308")
	Error     = lipgloss.Color("#DC2626")
	White     = lipgloss.Color("#FAFAF9")

	// One color per archive file kind, used for destination paths
	KindModel    = lipgloss.Color("#38BDF8")
	KindMaterial = lipgloss.Color("#F472B6")
	KindTexture  = lipgloss.Color("#FB923C")
	KindMeta     = lipgloss.Color("#A78BFA")

	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Progress
	Spinner = lipgloss.NewStyle().
		Foreground(Primary)

	StageDone = lipgloss.NewStyle().
			Foreground(Secondary)

	StageCurrent = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	// File map
	PathOld = lipgloss.NewStyle().
		Foreground(Muted)

	PathNew = lipgloss.NewStyle()

	PathSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	Arrow = lipgloss.NewStyle().
		Foreground(Muted).
		SetString(" → ")

	// Form
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputField = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	// Key help
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Status lines
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	WarningMsg = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// KindColor returns the color for an archive file extension
func KindColor(ext string) lipgloss.Color {
	switch ext {
	case ".mdl":
		return KindModel
	case ".mtrl":
		return KindMaterial
	case ".tex", ".atex":
		return KindTexture
	case ".meta", ".imc", ".eqp", ".eqdp", ".est", ".gmp":
		return KindMeta
	case ".avfx":
		return Warning
	default:
		return Primary
	}
}
