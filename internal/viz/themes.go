package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the live view.
type Theme struct {
	Name   string
	Graph  lipgloss.Color
	Header lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
	Stable lipgloss.Color
	Moving lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:   "cyberpunk",
		Graph:  lipgloss.Color("#00ffff"),
		Header: lipgloss.Color("#ff00ff"),
		Accent: lipgloss.Color("#ffff00"),
		Muted:  lipgloss.Color("#666666"),
		Stable: lipgloss.Color("#00ff00"),
		Moving: lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Graph:  lipgloss.Color("#00ff00"),
		Header: lipgloss.Color("#88ff88"),
		Accent: lipgloss.Color("#ccffcc"),
		Muted:  lipgloss.Color("#005500"),
		Stable: lipgloss.Color("#88ff88"),
		Moving: lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Graph:  lipgloss.Color("#ffffff"),
		Header: lipgloss.Color("#cccccc"),
		Accent: lipgloss.Color("#0088ff"),
		Muted:  lipgloss.Color("#888888"),
		Stable: lipgloss.Color("#00ff00"),
		Moving: lipgloss.Color("#ffaa00"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Graph:  lipgloss.Color("#00a8cc"),
		Header: lipgloss.Color("#e0f0ff"),
		Accent: lipgloss.Color("#ffd700"),
		Muted:  lipgloss.Color("#4488aa"),
		Stable: lipgloss.Color("#00ff88"),
		Moving: lipgloss.Color("#ffcc00"),
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, or the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
