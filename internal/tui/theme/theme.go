package theme

import "github.com/charmbracelet/lipgloss"

// Palette is a set of colors for the TUI.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color
	Muted     lipgloss.Color
	Highlight lipgloss.Color
	BarBg     lipgloss.Color
	BarFg     lipgloss.Color
}

var palettes = map[string]Palette{
	"default": {
		Primary:   "63",
		Secondary: "241",
		Success:   "42",
		Warning:   "214",
		Error:     "196",
		Border:    "238",
		Muted:     "245",
		Highlight: "229",
		BarBg:     "236",
		BarFg:     "252",
	},
	"ocean": {
		Primary:   "39",
		Secondary: "67",
		Success:   "48",
		Warning:   "221",
		Error:     "203",
		Border:    "24",
		Muted:     "110",
		Highlight: "159",
		BarBg:     "17",
		BarFg:     "153",
	},
	"mono": {
		Primary:   "255",
		Secondary: "246",
		Success:   "252",
		Warning:   "250",
		Error:     "255",
		Border:    "240",
		Muted:     "244",
		Highlight: "231",
		BarBg:     "235",
		BarFg:     "250",
	},
}

// Current colors. Set by Apply.
var (
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorError     lipgloss.Color
	ColorBorder    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorHighlight lipgloss.Color
)

// Shared styles used across TUI components. Set by Apply.
var (
	StyleBorder       lipgloss.Style
	StyleActiveBorder lipgloss.Style
	StyleTitle        lipgloss.Style
	StyleMuted        lipgloss.Style
	StyleError        lipgloss.Style
	StyleWarning      lipgloss.Style
	StyleSuccess      lipgloss.Style
	StyleStatusBar    lipgloss.Style
	StyleSelected     lipgloss.Style
)

func init() {
	Apply("default")
}

// Names returns the available theme names.
func Names() []string {
	return []string{"default", "ocean", "mono"}
}

// Apply switches the package colors and styles to the named palette. Unknown
// names fall back to "default" and report false.
func Apply(name string) bool {
	p, ok := palettes[name]
	if !ok {
		p = palettes["default"]
	}

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error
	ColorBorder = p.Border
	ColorMuted = p.Muted
	ColorHighlight = p.Highlight

	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)
	StyleActiveBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary)
	StyleTitle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		Padding(0, 1)
	StyleMuted = lipgloss.NewStyle().Foreground(p.Muted)
	StyleError = lipgloss.NewStyle().Foreground(p.Error)
	StyleWarning = lipgloss.NewStyle().Foreground(p.Warning)
	StyleSuccess = lipgloss.NewStyle().Foreground(p.Success)
	StyleStatusBar = lipgloss.NewStyle().
		Background(p.BarBg).
		Foreground(p.BarFg).
		Padding(0, 1)
	StyleSelected = lipgloss.NewStyle().
		Foreground(p.Highlight).
		Bold(true)
	return ok
}
