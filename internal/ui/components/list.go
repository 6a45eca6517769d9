package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jscyril/preview_player/internal/render"
)

// ResultList is a scrollable list of search results
type ResultList struct {
	Items         []render.Item
	Placeholder   string
	Selected      int
	Height        int
	Width         int
	Offset        int
	Title         string
	Focused       bool
	SelectedStyle lipgloss.Style
	ActiveStyle   lipgloss.Style
	NormalStyle   lipgloss.Style
	SubtleStyle   lipgloss.Style
	TitleStyle    lipgloss.Style
}

// NewResultList creates a new result list
func NewResultList(height, width int, p Palette) ResultList {
	return ResultList{
		Items:  make([]render.Item, 0),
		Height: height,
		Width:  width,
		SelectedStyle: lipgloss.NewStyle().
			Background(p.Highlight).
			Foreground(p.Text).
			Bold(true).
			Padding(0, 1),
		ActiveStyle: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			Padding(0, 1),
		NormalStyle: lipgloss.NewStyle().
			Padding(0, 1),
		SubtleStyle: lipgloss.NewStyle().
			Foreground(p.Muted),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
	}
}

// SetItems replaces the list contents
func (l *ResultList) SetItems(items []render.Item, placeholder string) {
	l.Items = items
	l.Placeholder = placeholder
	l.Selected = 0
	l.Offset = 0
}

// Update handles messages for the list
func (l ResultList) Update(msg tea.Msg) (ResultList, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home":
			l.Selected = 0
			l.Offset = 0
		case "end":
			if len(l.Items) > 0 {
				l.Selected = len(l.Items) - 1
				l.ensureVisible()
			}
		case "pgup":
			l.PageUp()
		case "pgdown":
			l.PageDown()
		}
	}
	return l, nil
}

// MoveUp moves selection up
func (l *ResultList) MoveUp() {
	if l.Selected > 0 {
		l.Selected--
		l.ensureVisible()
	}
}

// MoveDown moves selection down
func (l *ResultList) MoveDown() {
	if l.Selected < len(l.Items)-1 {
		l.Selected++
		l.ensureVisible()
	}
}

// PageUp moves selection up by a page
func (l *ResultList) PageUp() {
	l.Selected -= l.visibleHeight()
	if l.Selected < 0 {
		l.Selected = 0
	}
	l.ensureVisible()
}

// PageDown moves selection down by a page
func (l *ResultList) PageDown() {
	l.Selected += l.visibleHeight()
	if l.Selected >= len(l.Items) {
		l.Selected = len(l.Items) - 1
	}
	if l.Selected < 0 {
		l.Selected = 0
	}
	l.ensureVisible()
}

func (l *ResultList) visibleHeight() int {
	// Title and counter
	return max(1, l.Height-2)
}

func (l *ResultList) ensureVisible() {
	h := l.visibleHeight()
	if l.Selected < l.Offset {
		l.Offset = l.Selected
	} else if l.Selected >= l.Offset+h {
		l.Offset = l.Selected - h + 1
	}
}

// SelectedIndex returns the cursor position, or -1 for an empty list
func (l ResultList) SelectedIndex() int {
	if l.Selected >= 0 && l.Selected < len(l.Items) {
		return l.Selected
	}
	return -1
}

// View renders the list
func (l ResultList) View() string {
	var sb strings.Builder

	if l.Title != "" {
		sb.WriteString(l.TitleStyle.Render(l.Title))
		sb.WriteString("\n")
	}

	if len(l.Items) == 0 {
		sb.WriteString(l.NormalStyle.Render(l.SubtleStyle.Render(l.Placeholder)))
		return sb.String()
	}

	h := l.visibleHeight()
	end := min(l.Offset+h, len(l.Items))
	lineWidth := max(4, l.Width-2)

	for i := l.Offset; i < end; i++ {
		item := l.Items[i]
		marker := "  "
		if item.Active {
			marker = "♪ "
		}
		line := runewidth.Truncate(marker+item.Title+"  "+item.Subtitle, lineWidth, "…")

		switch {
		case i == l.Selected && l.Focused:
			sb.WriteString(l.SelectedStyle.Render(line))
		case item.Active:
			sb.WriteString(l.ActiveStyle.Render(line))
		default:
			sb.WriteString(l.NormalStyle.Render(line))
		}

		if i < end-1 {
			sb.WriteString("\n")
		}
	}

	if len(l.Items) > h {
		sb.WriteString("\n")
		sb.WriteString(l.SubtleStyle.Render(fmt.Sprintf("  [%d/%d]", l.Selected+1, len(l.Items))))
	}

	return sb.String()
}
