package components

import "github.com/charmbracelet/lipgloss"

// Palette holds the colours a theme applies to every component
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Error     lipgloss.Color
}

var palettes = map[string]Palette{
	"dark": {
		Primary:   lipgloss.Color("212"),
		Secondary: lipgloss.Color("86"),
		Muted:     lipgloss.Color("240"),
		Border:    lipgloss.Color("62"),
		Highlight: lipgloss.Color("62"),
		Text:      lipgloss.Color("230"),
		Error:     lipgloss.Color("196"),
	},
	"light": {
		Primary:   lipgloss.Color("125"),
		Secondary: lipgloss.Color("30"),
		Muted:     lipgloss.Color("245"),
		Border:    lipgloss.Color("67"),
		Highlight: lipgloss.Color("153"),
		Text:      lipgloss.Color("16"),
		Error:     lipgloss.Color("160"),
	},
}

// PaletteFor returns the named palette, falling back to dark
func PaletteFor(theme string) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes["dark"]
}
