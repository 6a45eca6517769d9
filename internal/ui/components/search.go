package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SearchInput is the bordered search field above the library
type SearchInput struct {
	Input      textinput.Model
	Width      int
	Style      lipgloss.Style
	FocusStyle lipgloss.Style
}

// NewSearchInput creates a new search input
func NewSearchInput(width int, p Palette) SearchInput {
	ti := textinput.New()
	ti.Placeholder = "Search songs or artists..."
	ti.Prompt = "🔍 "
	ti.CharLimit = 156
	ti.PromptStyle = lipgloss.NewStyle().Foreground(p.Primary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(p.Muted)

	s := SearchInput{
		Input: ti,
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Muted).
			Padding(0, 1),
		FocusStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(0, 1),
	}
	s.SetWidth(width)
	return s
}

// SetWidth resizes the field, border included
func (s *SearchInput) SetWidth(width int) {
	s.Width = width
	// Border, padding and prompt
	s.Input.Width = max(1, width-8)
}

// Focus sets focus on the input
func (s *SearchInput) Focus() tea.Cmd {
	return s.Input.Focus()
}

// Blur removes focus from the input
func (s *SearchInput) Blur() {
	s.Input.Blur()
}

// Focused reports whether keystrokes go to the input
func (s SearchInput) Focused() bool {
	return s.Input.Focused()
}

// Value returns the current contents
func (s SearchInput) Value() string {
	return s.Input.Value()
}

// Update handles messages for the search input
func (s SearchInput) Update(msg tea.Msg) (SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	return s, cmd
}

// View renders the search input
func (s SearchInput) View() string {
	style := s.Style
	if s.Focused() {
		style = s.FocusStyle
	}
	return style.Width(max(1, s.Width-2)).Render(s.Input.View())
}
