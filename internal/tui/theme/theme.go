// Package theme defines color themes for the fincast TUI dashboard.
package theme

import (
	"github.com/theirongolddev/fincast/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name string

	// Surfaces, darkest first.
	Background    lipgloss.Color
	Surface       lipgloss.Color // cards and panels
	SurfaceHover  lipgloss.Color // active tab
	SurfaceBright lipgloss.Color // selected row

	Border       lipgloss.Color
	BorderAccent lipgloss.Color

	// Text, lowest contrast first.
	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	Green       lipgloss.Color
	GreenBright lipgloss.Color
	Orange      lipgloss.Color
	Red         lipgloss.Color
	Blue        lipgloss.Color
	Yellow      lipgloss.Color
	Cyan        lipgloss.Color
}

// AccountColor returns the series color for an account. The pairing
// follows the classic projection plot: savings red, current blue,
// ISA green and LISA orange.
func (t Theme) AccountColor(a model.Account) lipgloss.Color {
	switch a {
	case model.Current:
		return t.Blue
	case model.Savings:
		return t.Red
	case model.ISA:
		return t.Green
	case model.LISA:
		return t.Orange
	default:
		return t.Accent
	}
}

// Gain colors money that moved up.
func (t Theme) Gain() lipgloss.Color { return t.GreenBright }

// Loss colors money that moved down.
func (t Theme) Loss() lipgloss.Color { return t.Red }

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default: warm paper tones on near-black.
var FlexokiDark = Theme{
	Name:       "flexoki-dark",
	Background: "#100F0F", Surface: "#1C1B1A", SurfaceHover: "#282726", SurfaceBright: "#343331",
	Border: "#403E3C", BorderAccent: "#3AA99F",
	TextDim: "#575653", TextMuted: "#878580", TextPrimary: "#FFFCF0",
	Accent: "#3AA99F", AccentBright: "#5BC8BE",
	Green: "#879A39", GreenBright: "#A3B859", Orange: "#DA702C", Red: "#D14D41",
	Blue: "#4385BE", Yellow: "#D0A215", Cyan: "#24837B",
}

// CatppuccinMocha is the pastel Mocha flavour.
var CatppuccinMocha = Theme{
	Name:       "catppuccin-mocha",
	Background: "#1E1E2E", Surface: "#313244", SurfaceHover: "#45475A", SurfaceBright: "#585B70",
	Border: "#585B70", BorderAccent: "#89B4FA",
	TextDim: "#6C7086", TextMuted: "#A6ADC8", TextPrimary: "#CDD6F4",
	Accent: "#89B4FA", AccentBright: "#B4D0FB",
	Green: "#A6E3A1", GreenBright: "#C6F6C1", Orange: "#FAB387", Red: "#F38BA8",
	Blue: "#74C7EC", Yellow: "#F9E2AF", Cyan: "#94E2D5",
}

// TokyoNight is a cool blue and purple theme.
var TokyoNight = Theme{
	Name:       "tokyo-night",
	Background: "#1A1B26", Surface: "#24283B", SurfaceHover: "#343A52", SurfaceBright: "#414868",
	Border: "#565F89", BorderAccent: "#7AA2F7",
	TextDim: "#565F89", TextMuted: "#A9B1D6", TextPrimary: "#C0CAF5",
	Accent: "#7AA2F7", AccentBright: "#A9C1FF",
	Green: "#9ECE6A", GreenBright: "#B9E87A", Orange: "#FF9E64", Red: "#F7768E",
	Blue: "#2AC3DE", Yellow: "#E0AF68", Cyan: "#7DCFFF",
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:       "terminal",
	Background: "0", Surface: "0", SurfaceHover: "8", SurfaceBright: "8",
	Border: "8", BorderAccent: "6",
	TextDim: "8", TextMuted: "7", TextPrimary: "15",
	Accent: "6", AccentBright: "14",
	Green: "2", GreenBright: "10", Orange: "3", Red: "1",
	Blue: "4", Yellow: "11", Cyan: "6",
}

// All available themes, in display order.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// Names returns the names of all themes in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
