package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jscyril/preview_player/internal/render"
	"github.com/jscyril/preview_player/internal/ui/components"
)

// Focus is the library section that receives navigation keys
type Focus int

const (
	FocusPopular Focus = iota
	FocusResults
)

// LibraryView holds the search field, the popular grid and the results list
type LibraryView struct {
	Width          int
	Height         int
	SearchBar      components.SearchInput
	Grid           components.CardGrid
	Results        components.ResultList
	Spinner        spinner.Model
	Focus          Focus
	LoadingPopular bool
	LoadingResults bool
	Popular        render.List
	Found          render.List
	HasResults     bool
	BorderStyle    lipgloss.Style
	TitleStyle     lipgloss.Style
	HelpStyle      lipgloss.Style
}

// NewLibraryView creates a new library view
func NewLibraryView(width, height int, p components.Palette) LibraryView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(p.Primary)

	results := components.NewResultList(0, 0, p)
	results.Title = "Results"

	v := LibraryView{
		SearchBar: components.NewSearchInput(width, p),
		Grid:      components.NewCardGrid(0, 0, p),
		Results:   results,
		Spinner:   s,
		Popular:   render.List{Target: render.TargetPopular},
		Found:     render.List{Target: render.TargetResults},
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		HelpStyle: lipgloss.NewStyle().Foreground(p.Muted),
	}
	v.SetSize(width, height)
	v.applyFocus()
	return v
}

// SetSize lays the sections out for the panel size
func (v *LibraryView) SetSize(width, height int) {
	v.Width = width
	v.Height = height
	inner := max(10, width-4)
	v.SearchBar.SetWidth(inner)

	// Border, search bar, section titles and help
	body := max(4, height-10)
	gridHeight := body
	if v.HasResults {
		gridHeight = body / 2
		v.Results.Height = body - gridHeight
	}
	v.Grid.Width = inner
	v.Grid.Height = gridHeight
	v.Results.Width = inner
}

// SetPopular shows a rendered popular list
func (v *LibraryView) SetPopular(list render.List) {
	v.Popular = list
	v.LoadingPopular = false
	v.Grid.SetItems(list.Items)
}

// SetResults shows a rendered results list. The first results make the
// section appear.
func (v *LibraryView) SetResults(list render.List) {
	v.Found = list
	v.LoadingResults = false
	v.Results.SetItems(list.Items, list.Placeholder)
	if !v.HasResults {
		v.HasResults = true
		v.SetSize(v.Width, v.Height)
	}
}

// RefreshActive redraws the active marker after a selection
func (v *LibraryView) RefreshActive() {
	v.Results.Items = v.Found.Items
}

// CycleFocus moves navigation between the grid and the results
func (v *LibraryView) CycleFocus() {
	if v.Focus == FocusPopular && v.HasResults {
		v.Focus = FocusResults
	} else {
		v.Focus = FocusPopular
	}
	v.applyFocus()
}

func (v *LibraryView) applyFocus() {
	v.Grid.Focused = v.Focus == FocusPopular
	v.Results.Focused = v.Focus == FocusResults
}

// Selection returns the focused list and its cursor, or -1
func (v *LibraryView) Selection() (*render.List, int) {
	if v.Focus == FocusResults {
		return &v.Found, v.Results.SelectedIndex()
	}
	return &v.Popular, v.Grid.SelectedIndex()
}

// Update handles navigation within the focused section
func (v LibraryView) Update(msg tea.Msg) (LibraryView, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case spinner.TickMsg:
		v.Spinner, cmd = v.Spinner.Update(msg)
	case tea.KeyMsg:
		if v.Focus == FocusResults {
			v.Results, cmd = v.Results.Update(msg)
		} else {
			v.Grid, cmd = v.Grid.Update(msg)
		}
	}
	return v, cmd
}

// View renders the library view
func (v LibraryView) View() string {
	var sb strings.Builder

	sb.WriteString(v.SearchBar.View())
	sb.WriteString("\n")

	sb.WriteString(v.section("Popular", v.LoadingPopular))
	sb.WriteString("\n")
	sb.WriteString(v.Grid.View())

	if v.HasResults || v.LoadingResults {
		sb.WriteString("\n")
		if v.LoadingResults {
			sb.WriteString(v.section("Searching", true))
			sb.WriteString("\n")
		}
		sb.WriteString(v.Results.View())
	}

	sb.WriteString("\n")
	if v.SearchBar.Focused() {
		sb.WriteString(v.HelpStyle.Render("[Esc/Enter] Done"))
	} else {
		sb.WriteString(v.HelpStyle.Render("[/] Search  [Tab] Switch  [↑↓hl] Navigate  [Enter] Play"))
	}

	return v.BorderStyle.Width(max(1, v.Width-2)).Render(sb.String())
}

func (v LibraryView) section(title string, loading bool) string {
	s := v.TitleStyle.Render(title)
	if loading {
		s += " " + v.Spinner.View()
	}
	return s
}
