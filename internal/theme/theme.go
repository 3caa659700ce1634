// Package theme provides color schemes for the rxbook console and its spectrum surfaces
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rxbook/rxbook-go/internal/render"
)

// DefaultTheme is used when no theme is configured
const DefaultTheme = "dark"

// SpectrumColors are the hex colors painted on the spectrum surface
type SpectrumColors struct {
	Background string
	Grid       string
	Trace      string
	Cursor     string
	Marker     string
	Label      string
}

// Theme defines a color scheme for the console
type Theme struct {
	Name        string
	Description string

	// Primary colors
	Primary       lipgloss.Color
	PrimaryBright lipgloss.Color
	PrimaryDim    lipgloss.Color
	Secondary     lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// UI elements
	Selected  lipgloss.Color
	Border    lipgloss.Color
	BorderDim lipgloss.Color
	Text      lipgloss.Color
	TextDim   lipgloss.Color

	Spectrum SpectrumColors
}

// Palette returns the render palette for the spectrum surface
func (t *Theme) Palette() render.Palette {
	s := t.Spectrum
	return render.NewPalette(s.Background, s.Grid, s.Trace, s.Cursor, s.Marker, s.Label)
}

// order is the cycling order of the theme key
var order = []string{"dark", "light", "classic", "amber", "ice", "cyberpunk", "phosphor", "matrix"}

// themes contains all available theme definitions
var themes = map[string]*Theme{
	"dark": {
		Name:          "Dark",
		Description:   "Dark console with green trace",
		Primary:       lipgloss.Color("#00ff00"),
		PrimaryBright: lipgloss.Color("#66ff66"),
		PrimaryDim:    lipgloss.Color("#2e7d32"),
		Secondary:     lipgloss.Color("#00bcd4"),
		Success:       lipgloss.Color("#28a745"),
		Warning:       lipgloss.Color("#ffc107"),
		Error:         lipgloss.Color("#dc3545"),
		Info:          lipgloss.Color("#17a2b8"),
		Selected:      lipgloss.Color("#ffc107"),
		Border:        lipgloss.Color("#6c757d"),
		BorderDim:     lipgloss.Color("#495057"),
		Text:          lipgloss.Color("#eeeeee"),
		TextDim:       lipgloss.Color("#adb5bd"),
		Spectrum: SpectrumColors{
			Background: "#333333",
			Grid:       "#555555",
			Trace:      "#00ff00",
			Cursor:     "#ffc107",
			Marker:     "#00bcd4",
			Label:      "#eeeeee",
		},
	},
	"light": {
		Name:          "Light",
		Description:   "Light console for bright terminals",
		Primary:       lipgloss.Color("#007bff"),
		PrimaryBright: lipgloss.Color("#0056b3"),
		PrimaryDim:    lipgloss.Color("#6c757d"),
		Secondary:     lipgloss.Color("#17a2b8"),
		Success:       lipgloss.Color("#28a745"),
		Warning:       lipgloss.Color("#fd7e14"),
		Error:         lipgloss.Color("#dc3545"),
		Info:          lipgloss.Color("#007bff"),
		Selected:      lipgloss.Color("#dc3545"),
		Border:        lipgloss.Color("#adb5bd"),
		BorderDim:     lipgloss.Color("#ced4da"),
		Text:          lipgloss.Color("#333333"),
		TextDim:       lipgloss.Color("#6c757d"),
		Spectrum: SpectrumColors{
			Background: "#e0e0e0",
			Grid:       "#cccccc",
			Trace:      "#28a745",
			Cursor:     "#dc3545",
			Marker:     "#007bff",
			Label:      "#333333",
		},
	},
	"classic": {
		Name:          "Classic Green",
		Description:   "Traditional green phosphor display",
		Primary:       lipgloss.Color("28"),  // green
		PrimaryBright: lipgloss.Color("46"),  // bright_green
		PrimaryDim:    lipgloss.Color("22"),  // dark_green
		Secondary:     lipgloss.Color("37"),  // cyan
		Success:       lipgloss.Color("46"),  // bright_green
		Warning:       lipgloss.Color("226"), // bright_yellow
		Error:         lipgloss.Color("196"), // bright_red
		Info:          lipgloss.Color("51"),  // bright_cyan
		Selected:      lipgloss.Color("226"), // bright_yellow
		Border:        lipgloss.Color("28"),  // green
		BorderDim:     lipgloss.Color("22"),  // dark_green
		Text:          lipgloss.Color("28"),  // green
		TextDim:       lipgloss.Color("22"),  // dark_green
		Spectrum: SpectrumColors{
			Background: "#000000",
			Grid:       "#005f00",
			Trace:      "#00ff00",
			Cursor:     "#ffff00",
			Marker:     "#00ffff",
			Label:      "#00af00",
		},
	},
	"amber": {
		Name:          "Amber",
		Description:   "Vintage amber monochrome display",
		Primary:       lipgloss.Color("178"), // yellow
		PrimaryBright: lipgloss.Color("226"), // bright_yellow
		PrimaryDim:    lipgloss.Color("130"), // dark_orange
		Secondary:     lipgloss.Color("226"), // bright_yellow
		Success:       lipgloss.Color("226"), // bright_yellow
		Warning:       lipgloss.Color("231"), // bright_white
		Error:         lipgloss.Color("196"), // bright_red
		Info:          lipgloss.Color("226"), // bright_yellow
		Selected:      lipgloss.Color("231"), // bright_white
		Border:        lipgloss.Color("178"), // yellow
		BorderDim:     lipgloss.Color("130"), // dark_orange
		Text:          lipgloss.Color("178"), // yellow
		TextDim:       lipgloss.Color("130"), // dark_orange
		Spectrum: SpectrumColors{
			Background: "#000000",
			Grid:       "#5f3700",
			Trace:      "#ffaf00",
			Cursor:     "#ffffff",
			Marker:     "#ffff00",
			Label:      "#d7af00",
		},
	},
	"ice": {
		Name:          "Blue Ice",
		Description:   "Cold blue tactical display",
		Primary:       lipgloss.Color("21"),  // blue
		PrimaryBright: lipgloss.Color("33"),  // bright_blue
		PrimaryDim:    lipgloss.Color("18"),  // dark_blue
		Secondary:     lipgloss.Color("37"),  // cyan
		Success:       lipgloss.Color("51"),  // bright_cyan
		Warning:       lipgloss.Color("226"), // bright_yellow
		Error:         lipgloss.Color("196"), // bright_red
		Info:          lipgloss.Color("33"),  // bright_blue
		Selected:      lipgloss.Color("231"), // bright_white
		Border:        lipgloss.Color("21"),  // blue
		BorderDim:     lipgloss.Color("18"),  // dark_blue
		Text:          lipgloss.Color("33"),  // bright_blue
		TextDim:       lipgloss.Color("21"),  // blue
		Spectrum: SpectrumColors{
			Background: "#000010",
			Grid:       "#000087",
			Trace:      "#00ffff",
			Cursor:     "#ffffff",
			Marker:     "#0087ff",
			Label:      "#5fafff",
		},
	},
	"cyberpunk": {
		Name:          "Cyberpunk",
		Description:   "Neon futuristic display",
		Primary:       lipgloss.Color("165"), // magenta
		PrimaryBright: lipgloss.Color("201"), // bright_magenta
		PrimaryDim:    lipgloss.Color("90"),  // dark_magenta
		Secondary:     lipgloss.Color("37"),  // cyan
		Success:       lipgloss.Color("51"),  // bright_cyan
		Warning:       lipgloss.Color("226"), // bright_yellow
		Error:         lipgloss.Color("196"), // bright_red
		Info:          lipgloss.Color("201"), // bright_magenta
		Selected:      lipgloss.Color("231"), // bright_white
		Border:        lipgloss.Color("201"), // bright_magenta
		BorderDim:     lipgloss.Color("165"), // magenta
		Text:          lipgloss.Color("51"),  // bright_cyan
		TextDim:       lipgloss.Color("37"),  // cyan
		Spectrum: SpectrumColors{
			Background: "#0d0221",
			Grid:       "#5f0087",
			Trace:      "#00ffff",
			Cursor:     "#ffff00",
			Marker:     "#ff00ff",
			Label:      "#00d7d7",
		},
	},
	"phosphor": {
		Name:          "Phosphor",
		Description:   "Realistic CRT phosphor glow",
		Primary:       lipgloss.Color("#33ff33"),
		PrimaryBright: lipgloss.Color("#66ff66"),
		PrimaryDim:    lipgloss.Color("#116611"),
		Secondary:     lipgloss.Color("#33ffff"),
		Success:       lipgloss.Color("#66ff66"),
		Warning:       lipgloss.Color("#ffff33"),
		Error:         lipgloss.Color("#ff3333"),
		Info:          lipgloss.Color("#33ffff"),
		Selected:      lipgloss.Color("#ffff66"),
		Border:        lipgloss.Color("#33ff33"),
		BorderDim:     lipgloss.Color("#116611"),
		Text:          lipgloss.Color("#33ff33"),
		TextDim:       lipgloss.Color("#116611"),
		Spectrum: SpectrumColors{
			Background: "#020a02",
			Grid:       "#114411",
			Trace:      "#66ff66",
			Cursor:     "#ffff66",
			Marker:     "#33ffff",
			Label:      "#33ff33",
		},
	},
	"matrix": {
		Name:          "Matrix",
		Description:   "Matrix digital rain inspired",
		Primary:       lipgloss.Color("#00ff00"),
		PrimaryBright: lipgloss.Color("#00ff00"),
		PrimaryDim:    lipgloss.Color("#003300"),
		Secondary:     lipgloss.Color("#00ff00"),
		Success:       lipgloss.Color("#00ff00"),
		Warning:       lipgloss.Color("#ffff00"),
		Error:         lipgloss.Color("#ff0000"),
		Info:          lipgloss.Color("#00ff00"),
		Selected:      lipgloss.Color("#ffffff"),
		Border:        lipgloss.Color("#00ff00"),
		BorderDim:     lipgloss.Color("#004400"),
		Text:          lipgloss.Color("#00ff00"),
		TextDim:       lipgloss.Color("#006600"),
		Spectrum: SpectrumColors{
			Background: "#000000",
			Grid:       "#003300",
			Trace:      "#00ff00",
			Cursor:     "#ffffff",
			Marker:     "#88ff88",
			Label:      "#00cc00",
		},
	},
}

// Get returns a theme by name, defaults to dark if not found
func Get(name string) *Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[DefaultTheme]
}

// Exists returns true if name is a known theme
func Exists(name string) bool {
	_, ok := themes[name]
	return ok
}

// List returns all available theme names in cycling order
func List() []string {
	names := make([]string, len(order))
	copy(names, order)
	return names
}

// Next returns the theme name after name, wrapping around
func Next(name string) string {
	for i, n := range order {
		if n == name {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

// ThemeInfo contains theme metadata for display
type ThemeInfo struct {
	Key         string
	Name        string
	Description string
}

// GetInfo returns information about all themes
func GetInfo() []ThemeInfo {
	info := make([]ThemeInfo, 0, len(order))
	for _, key := range order {
		t := themes[key]
		info = append(info, ThemeInfo{Key: key, Name: t.Name, Description: t.Description})
	}
	return info
}

// PrimaryStyle returns a style using the primary color
func (t *Theme) PrimaryStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Primary)
}

// TextStyle returns a style using the text color
func (t *Theme) TextStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text)
}

// TextDimStyle returns a style using the dim text color
func (t *Theme) TextDimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.TextDim)
}

// BorderStyle returns a style using the border color
func (t *Theme) BorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Border)
}
