package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jscyril/preview_player/internal/transport"
)

// surfaceMsg marks messages produced by the Surface. Each one re-arms the
// listener.
type surfaceMsg interface {
	tea.Msg
	fromSurface()
}

type trackMsg transport.NowPlaying
type playingMsg bool
type progressMsg transport.Progress
type openPlayerMsg struct{}
type playerErrorMsg struct{ err error }

func (trackMsg) fromSurface()       {}
func (playingMsg) fromSurface()     {}
func (progressMsg) fromSurface()    {}
func (openPlayerMsg) fromSurface()  {}
func (playerErrorMsg) fromSurface() {}

// Surface delivers controller updates to the bubbletea event loop
type Surface struct {
	ctx  context.Context
	msgs chan tea.Msg
}

// NewSurface creates a surface. Sends give up once ctx is done.
func NewSurface(ctx context.Context) *Surface {
	return &Surface{ctx: ctx, msgs: make(chan tea.Msg, 64)}
}

func (s *Surface) send(msg tea.Msg) {
	select {
	case s.msgs <- msg:
	case <-s.ctx.Done():
	}
}

func (s *Surface) ShowTrack(info transport.NowPlaying) { s.send(trackMsg(info)) }
func (s *Surface) ShowPlaying(playing bool)            { s.send(playingMsg(playing)) }
func (s *Surface) ShowProgress(p transport.Progress)   { s.send(progressMsg(p)) }
func (s *Surface) OpenPlayer()                         { s.send(openPlayerMsg{}) }
func (s *Surface) ShowError(err error)                 { s.send(playerErrorMsg{err: err}) }

// Listen waits for the next update
func (s *Surface) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-s.msgs:
			return msg
		case <-s.ctx.Done():
			return nil
		}
	}
}
