package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the console colours.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:      "default",
		Primary:   lipgloss.Color("86"),
		Secondary: lipgloss.Color("49"),
		Text:      lipgloss.Color("252"),
		Muted:     lipgloss.Color("240"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#006600"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#88ff00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeMonochrome = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Text:      lipgloss.Color("#dddddd"),
		Muted:     lipgloss.Color("#777777"),
		Success:   lipgloss.Color("#ffffff"),
		Warning:   lipgloss.Color("#bbbbbb"),
		Error:     lipgloss.Color("#ffffff"),
	}

	Themes = []Theme{ThemeDefault, ThemeRetroGreen, ThemeMonochrome}
)

// GetTheme returns the named theme, or the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
