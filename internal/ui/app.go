package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/jscyril/preview_player/api"
	"github.com/jscyril/preview_player/internal/config"
	"github.com/jscyril/preview_player/internal/layout"
	"github.com/jscyril/preview_player/internal/render"
	"github.com/jscyril/preview_player/internal/search"
	"github.com/jscyril/preview_player/internal/transport"
	"github.com/jscyril/preview_player/internal/ui/components"
	"github.com/jscyril/preview_player/internal/ui/views"
)

// volumeStep is the change applied by one volume key press
const volumeStep = 0.1

// Deps are the collaborators the UI drives
type Deps struct {
	Dispatcher *search.Dispatcher
	Renderer   *render.Renderer
	Controller *transport.Controller
	Player     api.Player
	Panels     *layout.Panels
	Surface    *Surface
	Keys       config.KeyMap
	SeekStep   float64
	Theme      string
	Log        logrus.FieldLogger
}

// searchResultMsg carries a finished lookup
type searchResultMsg search.Response

// playResultMsg carries the outcome of a transport action
type playResultMsg struct {
	err error
}

// volumeMsg carries the volume after a change
type volumeMsg float64

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int
	sized  bool

	// Views
	library    views.LibraryView
	playerView views.PlayerView

	// Components
	dispatcher *search.Dispatcher
	renderer   *render.Renderer
	controller *transport.Controller
	player     api.Player
	panels     *layout.Panels
	surface    *Surface
	keys       config.KeyMap
	seekStep   float64
	log        logrus.FieldLogger

	// State
	ctx     context.Context
	popular search.Request
	err     error

	// Styles
	headerStyle lipgloss.Style
	errorStyle  lipgloss.Style
}

// NewModel creates a new application model
func NewModel(ctx context.Context, d Deps) Model {
	p := components.PaletteFor(d.Theme)
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}

	m := Model{
		width:      80,
		height:     24,
		dispatcher: d.Dispatcher,
		renderer:   d.Renderer,
		controller: d.Controller,
		player:     d.Player,
		panels:     d.Panels,
		surface:    d.Surface,
		keys:       d.Keys,
		seekStep:   d.SeekStep,
		log:        d.Log,
		ctx:        ctx,
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		errorStyle: lipgloss.NewStyle().
			Foreground(p.Error).
			Bold(true),
	}

	m.library = views.NewLibraryView(m.width, m.height-2, p)
	m.playerView = views.NewPlayerView(m.width, m.height-2, p)
	m.playerView.Volume = d.Player.Volume()

	m.popular = d.Dispatcher.Popular()
	m.library.LoadingPopular = true

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.searchCmd(m.popular),
		m.surface.Listen(),
		m.library.Spinner.Tick,
	)
}

func (m Model) searchCmd(req search.Request) tea.Cmd {
	return func() tea.Msg {
		return searchResultMsg(m.dispatcher.Do(m.ctx, req))
	}
}

// transportCmd runs a controller action off the event loop
func (m Model) transportCmd(action func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return playResultMsg{err: action(m.ctx)}
	}
}

func (m Model) volumeCmd(delta float64) tea.Cmd {
	return func() tea.Msg {
		if err := m.controller.AdjustVolume(delta); err != nil {
			return playResultMsg{err: err}
		}
		return volumeMsg(m.player.Volume())
	}
}

func (m Model) seekCmd(delta float64) tea.Cmd {
	return func() tea.Msg {
		m.controller.SeekBy(delta)
		return nil
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if _, ok := msg.(surfaceMsg); ok {
		cmds = append(cmds, m.surface.Listen())
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.sized {
			m.panels.Init(msg.Width)
			m.sized = true
		} else {
			m.panels.Resize(msg.Width)
		}
		m.updateViewSizes()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.library, cmd = m.library.Update(msg)
		m.playerView.Tick()
		cmds = append(cmds, cmd)

	case searchResultMsg:
		m.applySearch(search.Response(msg))

	case trackMsg:
		m.playerView.SetTrack(transport.NowPlaying(msg))

	case playingMsg:
		m.playerView.Playing = bool(msg)

	case progressMsg:
		m.playerView.SetProgress(transport.Progress(msg))

	case openPlayerMsg:
		m.panels.OpenPlayer(m.width)
		m.updateViewSizes()

	case playResultMsg:
		m.err = msg.err

	case playerErrorMsg:
		m.err = msg.err

	case volumeMsg:
		m.playerView.Volume = float64(msg)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// applySearch renders a fresh response into its target. Failed lookups
// leave the target as it was.
func (m *Model) applySearch(resp search.Response) {
	if !m.dispatcher.Fresh(resp) {
		return
	}

	if resp.Purpose == search.PurposePopular {
		m.library.LoadingPopular = false
		if resp.Err == nil {
			m.library.SetPopular(m.renderer.Render(render.TargetPopular, resp.Tracks))
		}
		return
	}

	m.library.LoadingResults = false
	if resp.Err == nil {
		m.library.SetResults(m.renderer.Render(render.TargetResults, resp.Tracks))
		m.updateViewSizes()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// While the search field has focus every other key is text
	if m.library.SearchBar.Focused() {
		switch key {
		case "esc", "enter":
			m.library.SearchBar.Blur()
			return m, nil
		}

		before := m.library.SearchBar.Value()
		var cmd tea.Cmd
		m.library.SearchBar, cmd = m.library.SearchBar.Update(msg)
		cmds := []tea.Cmd{cmd}
		if value := m.library.SearchBar.Value(); value != before {
			if req, ok := m.dispatcher.Input(value); ok {
				m.library.LoadingResults = true
				cmds = append(cmds, m.searchCmd(req))
			}
		}
		return m, tea.Batch(cmds...)
	}

	k := m.keys
	switch key {
	case k.Quit:
		return m, tea.Quit

	case k.Search:
		if m.panels.IsMobile() && !m.panels.Visible(layout.Library) {
			m.panels.Back()
			m.updateViewSizes()
		}
		cmd := m.library.SearchBar.Focus()
		return m, cmd

	case k.Focus:
		m.library.CycleFocus()

	case k.PlayPause:
		return m, m.transportCmd(m.controller.Toggle)

	case k.Next:
		return m, m.transportCmd(m.controller.Next)

	case k.Previous:
		return m, m.transportCmd(m.controller.Previous)

	case k.SeekForward:
		return m, m.seekCmd(m.seekStep)

	case k.SeekBack:
		return m, m.seekCmd(-m.seekStep)

	case k.VolumeUp, "=":
		return m, m.volumeCmd(volumeStep)

	case k.VolumeDown:
		return m, m.volumeCmd(-volumeStep)

	case k.Back:
		if m.panels.IsMobile() {
			m.panels.Back()
			m.updateViewSizes()
		}

	case "enter":
		cmd := m.selectCurrent()
		return m, cmd

	default:
		var cmd tea.Cmd
		m.library, cmd = m.library.Update(msg)
		return m, cmd
	}

	return m, nil
}

// selectCurrent binds the item under the cursor and loads it
func (m *Model) selectCurrent() tea.Cmd {
	list, index := m.library.Selection()
	if !m.renderer.Bind(list, index) {
		return nil
	}
	m.library.RefreshActive()

	m.log.WithFields(logrus.Fields{
		"target": list.Target,
		"index":  index,
	}).Debug("item selected")

	return m.transportCmd(func(ctx context.Context) error {
		return m.controller.LoadTrack(ctx, index)
	})
}

// updateViewSizes splits the width between the visible panels
func (m *Model) updateViewSizes() {
	height := max(6, m.height-2)
	libraryWidth, playerWidth := m.width, m.width
	if m.panels.Visible(layout.Library) && m.panels.Visible(layout.Player) {
		libraryWidth = m.width * 3 / 5
		playerWidth = m.width - libraryWidth
	}
	m.library.SetSize(libraryWidth, height)
	m.playerView.SetSize(playerWidth, height)
	m.playerView.ShowBack = m.panels.IsMobile()
}

// View renders the UI
func (m Model) View() string {
	var panels []string
	if m.panels.Visible(layout.Library) {
		panels = append(panels, m.library.View())
	}
	if m.panels.Visible(layout.Player) {
		panels = append(panels, m.playerView.View())
	}
	if len(panels) == 0 {
		panels = append(panels, m.library.View())
	}

	sb := m.headerStyle.Render("♪ Preview Player") + "\n"
	sb += lipgloss.JoinHorizontal(lipgloss.Top, panels...)

	if m.err != nil {
		sb += "\n" + m.errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return sb
}

// Run starts the bubbletea program and blocks until it exits or ctx ends
func Run(ctx context.Context, model Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
