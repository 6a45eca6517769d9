package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar is the scrub control of the player panel
type ProgressBar struct {
	Width       int
	Percent     float64
	Elapsed     string
	Total       string
	BarChar     string
	EmptyChar   string
	KnobChar    string
	ShowTime    bool
	Style       lipgloss.Style
	FilledStyle lipgloss.Style
	EmptyStyle  lipgloss.Style
}

// NewProgressBar creates a new progress bar
func NewProgressBar(width int, p Palette) ProgressBar {
	return ProgressBar{
		Width:       width,
		Elapsed:     "0:00",
		Total:       "0:00",
		BarChar:     "━",
		EmptyChar:   "─",
		KnobChar:    "●",
		ShowTime:    true,
		Style:       lipgloss.NewStyle(),
		FilledStyle: lipgloss.NewStyle().Foreground(p.Primary),
		EmptyStyle:  lipgloss.NewStyle().Foreground(p.Muted),
	}
}

// SetProgress sets the knob position (0-100) and the time labels
func (p *ProgressBar) SetProgress(percent float64, elapsed, total string) {
	p.Percent = percent
	p.Elapsed = elapsed
	p.Total = total
}

// Reset returns the bar to the start
func (p *ProgressBar) Reset() {
	p.SetProgress(0, "0:00", "0:00")
}

// View renders the progress bar
func (p ProgressBar) View() string {
	var sb strings.Builder

	percent := p.Percent / 100
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}

	timeLabel := p.Elapsed + " / " + p.Total
	barWidth := p.Width
	if p.ShowTime {
		barWidth -= len(timeLabel) + 1
	}
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth-1) * percent)
	empty := barWidth - 1 - filled

	sb.WriteString(p.FilledStyle.Render(strings.Repeat(p.BarChar, filled) + p.KnobChar))
	sb.WriteString(p.EmptyStyle.Render(strings.Repeat(p.EmptyChar, empty)))

	if p.ShowTime {
		sb.WriteString(" ")
		sb.WriteString(timeLabel)
	}

	return p.Style.Render(sb.String())
}
