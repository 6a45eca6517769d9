package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jscyril/preview_player/internal/render"
)

// CardWidth fits a truncated popular title plus padding
const CardWidth = 24

// cardHeight is two text lines plus the border
const cardHeight = 4

// CardGrid lays popular tracks out as cards, row by row
type CardGrid struct {
	Items         []render.Item
	Selected      int
	Width         int
	Height        int
	Offset        int // first visible row
	Focused       bool
	CardStyle     lipgloss.Style
	SelectedStyle lipgloss.Style
	TitleStyle    lipgloss.Style
	SubtleStyle   lipgloss.Style
}

// NewCardGrid creates an empty grid
func NewCardGrid(width, height int, p Palette) CardGrid {
	return CardGrid{
		Items:  make([]render.Item, 0),
		Width:  width,
		Height: height,
		CardStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Muted).
			Width(CardWidth - 2),
		SelectedStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Width(CardWidth - 2),
		TitleStyle:  lipgloss.NewStyle().Bold(true),
		SubtleStyle: lipgloss.NewStyle().Foreground(p.Muted),
	}
}

// SetItems replaces the cards
func (g *CardGrid) SetItems(items []render.Item) {
	g.Items = items
	g.Selected = 0
	g.Offset = 0
}

// Columns returns how many cards fit in one row
func (g CardGrid) Columns() int {
	return max(1, g.Width/CardWidth)
}

func (g CardGrid) visibleRows() int {
	return max(1, g.Height/cardHeight)
}

// Update handles cursor movement
func (g CardGrid) Update(msg tea.Msg) (CardGrid, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		cols := g.Columns()
		switch msg.String() {
		case "h":
			g.move(-1)
		case "l":
			g.move(1)
		case "up", "k":
			g.move(-cols)
		case "down", "j":
			g.move(cols)
		}
	}
	return g, nil
}

func (g *CardGrid) move(delta int) {
	next := g.Selected + delta
	if next < 0 || next >= len(g.Items) {
		return
	}
	g.Selected = next

	row := g.Selected / g.Columns()
	if row < g.Offset {
		g.Offset = row
	} else if row >= g.Offset+g.visibleRows() {
		g.Offset = row - g.visibleRows() + 1
	}
}

// SelectedIndex returns the cursor position, or -1 for an empty grid
func (g CardGrid) SelectedIndex() int {
	if g.Selected >= 0 && g.Selected < len(g.Items) {
		return g.Selected
	}
	return -1
}

// View renders the visible rows of cards
func (g CardGrid) View() string {
	if len(g.Items) == 0 {
		return ""
	}

	cols := g.Columns()
	first := g.Offset * cols
	last := min(len(g.Items), first+g.visibleRows()*cols)

	var rows []string
	for start := first; start < last; start += cols {
		end := min(start+cols, last)
		cards := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cards = append(cards, g.card(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n")
}

func (g CardGrid) card(i int) string {
	item := g.Items[i]
	inner := CardWidth - 2
	body := g.TitleStyle.Render(runewidth.Truncate(item.Title, inner, "…")) + "\n" +
		g.SubtleStyle.Render(runewidth.Truncate(item.Subtitle, inner, "…"))

	if i == g.Selected && g.Focused {
		return g.SelectedStyle.Render(body)
	}
	return g.CardStyle.Render(body)
}
