package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jscyril/preview_player/internal/transport"
	"github.com/jscyril/preview_player/internal/ui/components"
)

// Play button icons. The button shows the action it performs.
const (
	IconPlay  = "▶"
	IconPause = "⏸"
)

var visualizerBars = []rune("▁▂▃▄▅▆▇█")

// PlayerView is the detail panel for the loaded track
type PlayerView struct {
	Width       int
	Height      int
	Track       transport.NowPlaying
	HasTrack    bool
	Playing     bool
	Volume      float64
	ShowBack    bool
	Frame       int
	ProgressBar components.ProgressBar

	// Styles
	TitleStyle    lipgloss.Style
	ArtistStyle   lipgloss.Style
	AlbumStyle    lipgloss.Style
	StatusStyle   lipgloss.Style
	ControlsStyle lipgloss.Style
	BorderStyle   lipgloss.Style
	palette       components.Palette
}

// NewPlayerView creates a new player view
func NewPlayerView(width, height int, p components.Palette) PlayerView {
	return PlayerView{
		Width:       width,
		Height:      height,
		ProgressBar: components.NewProgressBar(width-8, p),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		ArtistStyle: lipgloss.NewStyle().
			Foreground(p.Secondary),
		AlbumStyle: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),
		StatusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		ControlsStyle: lipgloss.NewStyle().
			Foreground(p.Muted).
			MarginTop(1),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(1, 2),
		palette: p,
	}
}

// SetSize resizes the panel
func (v *PlayerView) SetSize(width, height int) {
	v.Width = width
	v.Height = height
	v.ProgressBar.Width = max(10, width-8)
}

// SetTrack shows a newly loaded track with the scrub control at the start
func (v *PlayerView) SetTrack(info transport.NowPlaying) {
	v.Track = info
	v.HasTrack = true
	v.ProgressBar.Reset()
}

// SetProgress moves the scrub control
func (v *PlayerView) SetProgress(p transport.Progress) {
	v.ProgressBar.SetProgress(p.Percent, p.Elapsed, p.Total)
}

// Tick advances the visualizer while playing
func (v *PlayerView) Tick() {
	if v.Playing {
		v.Frame++
	}
}

// PlayIcon returns the play button label
func (v PlayerView) PlayIcon() string {
	if v.Playing {
		return IconPause
	}
	return IconPlay
}

// View renders the player view
func (v PlayerView) View() string {
	var sb strings.Builder
	inner := max(10, v.Width-8)

	if !v.HasTrack {
		sb.WriteString(v.TitleStyle.Render("♪ Nothing playing"))
		sb.WriteString("\n\n")
		sb.WriteString(v.ControlsStyle.Render("Pick a song to hear its preview"))
	} else {
		sb.WriteString(v.visualizer(inner))
		sb.WriteString("\n\n")
		sb.WriteString(v.TitleStyle.Render(runewidth.Truncate(v.Track.Title, inner, "…")))
		sb.WriteString("\n")
		sb.WriteString(v.ArtistStyle.Render(runewidth.Truncate(v.Track.Artist, inner, "…")))
		sb.WriteString("\n")
		sb.WriteString(v.AlbumStyle.Render(runewidth.Truncate(v.Track.Album, inner, "…")))
		sb.WriteString("\n")
		sb.WriteString(v.AlbumStyle.Render(runewidth.Truncate("🖼 "+v.Track.ArtworkURL, inner, "…")))
		sb.WriteString("\n\n")

		sb.WriteString(v.ProgressBar.View())
		sb.WriteString("\n\n")

		sb.WriteString(v.StatusStyle.Render("⏮  " + v.PlayIcon() + "  ⏭"))
		sb.WriteString("\n\n")

		sb.WriteString(fmt.Sprintf("Volume: %s %d%%", renderVolumeBar(v.Volume, v.palette), int(v.Volume*100+0.5)))
	}

	help := "[Space] Play/Pause  [n] Next  [p] Prev  [←/→] Seek  [+/-] Volume"
	if v.ShowBack {
		help += "  [b] Back"
	}
	sb.WriteString("\n")
	sb.WriteString(v.ControlsStyle.Render(help))

	return v.BorderStyle.Width(max(1, v.Width-2)).Render(sb.String())
}

// visualizer draws moving bars while playing and a flat line otherwise
func (v PlayerView) visualizer(width int) string {
	n := min(width, 24)
	bars := make([]rune, n)
	for i := range bars {
		if v.Playing {
			bars[i] = visualizerBars[(i*3+v.Frame*5+i*i)%len(visualizerBars)]
		} else {
			bars[i] = visualizerBars[0]
		}
	}
	return lipgloss.NewStyle().Foreground(v.palette.Primary).Render(string(bars))
}

// renderVolumeBar renders a volume bar
func renderVolumeBar(volume float64, p components.Palette) string {
	filled := int(volume*10 + 0.5)
	empty := 10 - filled

	filledStyle := lipgloss.NewStyle().Foreground(p.Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(p.Muted)

	return filledStyle.Render(strings.Repeat("●", filled)) + emptyStyle.Render(strings.Repeat("○", empty))
}
