package tui

import "github.com/charmbracelet/lipgloss"

// Theme names accepted by config and the theme toggle
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Theme holds every style the view uses
type Theme struct {
	Name string

	Title       lipgloss.Style
	Subtle      lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Selected    lipgloss.Style
	Link        lipgloss.Style
	Head        lipgloss.Style
	HeadActive  lipgloss.Style
	BadgeMale   lipgloss.Style
	BadgeOther  lipgloss.Style
	Button      lipgloss.Style
	ButtonMuted lipgloss.Style
	Modal       lipgloss.Style
	Focused     lipgloss.Style
}

// palette is the set of colors a theme is built from
type palette struct {
	fg, muted, accent, link   lipgloss.Color
	red, green, yellow        lipgloss.Color
	selectedBg, selectedFg    lipgloss.Color
	maleBg, otherBg, badgeFg  lipgloss.Color
	buttonBg, buttonFg, modal lipgloss.Color
}

var (
	lightPalette = palette{
		fg:         lipgloss.Color("#1f2328"),
		muted:      lipgloss.Color("#555555"),
		accent:     lipgloss.Color("#008b8b"),
		link:       lipgloss.Color("#0550ae"),
		red:        lipgloss.Color("#8b0000"),
		green:      lipgloss.Color("#006400"),
		yellow:     lipgloss.Color("#b8860b"),
		selectedBg: lipgloss.Color("#d3d3d3"),
		selectedFg: lipgloss.Color("#000000"),
		maleBg:     lipgloss.Color("#cfe2ff"),
		otherBg:    lipgloss.Color("#f8d7da"),
		badgeFg:    lipgloss.Color("#1f2328"),
		buttonBg:   lipgloss.Color("#0550ae"),
		buttonFg:   lipgloss.Color("#ffffff"),
		modal:      lipgloss.Color("#008b8b"),
	}

	darkPalette = palette{
		fg:         lipgloss.Color("#e6edf3"),
		muted:      lipgloss.Color("#888888"),
		accent:     lipgloss.Color("#00ffff"),
		link:       lipgloss.Color("#79c0ff"),
		red:        lipgloss.Color("#ff5555"),
		green:      lipgloss.Color("#00ff00"),
		yellow:     lipgloss.Color("#ffff00"),
		selectedBg: lipgloss.Color("#3a3a3a"),
		selectedFg: lipgloss.Color("#ffffff"),
		maleBg:     lipgloss.Color("#1f3a5f"),
		otherBg:    lipgloss.Color("#5f1f3a"),
		badgeFg:    lipgloss.Color("#e6edf3"),
		buttonBg:   lipgloss.Color("#1f6feb"),
		buttonFg:   lipgloss.Color("#ffffff"),
		modal:      lipgloss.Color("#00ffff"),
	}
)

func newTheme(name string, p palette) Theme {
	return Theme{
		Name:        name,
		Title:       lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Subtle:      lipgloss.NewStyle().Foreground(p.muted),
		Error:       lipgloss.NewStyle().Foreground(p.red),
		Success:     lipgloss.NewStyle().Foreground(p.green),
		Warning:     lipgloss.NewStyle().Foreground(p.yellow),
		Selected:    lipgloss.NewStyle().Background(p.selectedBg).Foreground(p.selectedFg),
		Link:        lipgloss.NewStyle().Underline(true).Foreground(p.link),
		Head:        lipgloss.NewStyle().Bold(true).Foreground(p.fg),
		HeadActive:  lipgloss.NewStyle().Bold(true).Foreground(p.accent).Underline(true),
		BadgeMale:   lipgloss.NewStyle().Background(p.maleBg).Foreground(p.badgeFg),
		BadgeOther:  lipgloss.NewStyle().Background(p.otherBg).Foreground(p.badgeFg),
		Button:      lipgloss.NewStyle().Background(p.buttonBg).Foreground(p.buttonFg).Padding(0, 1),
		ButtonMuted: lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		Modal:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.modal).Padding(0, 1),
		Focused:     lipgloss.NewStyle().Foreground(p.accent).Bold(true),
	}
}

// LightTheme is the default theme
func LightTheme() Theme {
	return newTheme(ThemeLight, lightPalette)
}

// DarkTheme is the alternate theme
func DarkTheme() Theme {
	return newTheme(ThemeDark, darkPalette)
}

// ThemeByName returns the named theme, falling back to light
func ThemeByName(name string) Theme {
	if name == ThemeDark {
		return DarkTheme()
	}
	return LightTheme()
}

// Toggled returns the other theme
func (t Theme) Toggled() Theme {
	if t.Name == ThemeDark {
		return LightTheme()
	}
	return DarkTheme()
}
