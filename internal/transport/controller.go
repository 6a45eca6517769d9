// Package transport mediates between the transport controls and the
// playback port. It owns no view state: every visible change is pushed to a
// Surface.
package transport

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jscyril/preview_player/api"
	"github.com/jscyril/preview_player/internal/metrics"
	"github.com/jscyril/preview_player/internal/playlist"
	playerrors "github.com/jscyril/preview_player/pkg/errors"
)

// DefaultArtworkSize is the resolution requested for the detail view
const DefaultArtworkSize = "600x600"

// NowPlaying is the detail view content for the loaded track
type NowPlaying struct {
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
}

// Progress is the scrub control position and time labels
type Progress struct {
	Percent float64
	Elapsed string
	Total   string
}

// Surface receives every visible change the controller makes
type Surface interface {
	ShowTrack(info NowPlaying)
	ShowPlaying(playing bool)
	ShowProgress(p Progress)
	OpenPlayer()
	ShowError(err error)
}

// Options configures a Controller
type Options struct {
	Log         logrus.FieldLogger
	Metrics     *metrics.Metrics
	ArtworkSize string
}

// Controller drives the playback port from transport controls
type Controller struct {
	session     *playlist.Session
	player      api.Player
	surface     Surface
	log         logrus.FieldLogger
	metrics     *metrics.Metrics
	artworkSize string

	// loadMu orders track changes so the session index, the loaded source
	// and the shown track always describe the same record
	loadMu sync.Mutex

	mu     sync.Mutex
	slider float64
}

// New creates a controller for session playing through player
func New(session *playlist.Session, player api.Player, surface Surface, opts Options) *Controller {
	if opts.ArtworkSize == "" {
		opts.ArtworkSize = DefaultArtworkSize
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Controller{
		session:     session,
		player:      player,
		surface:     surface,
		log:         opts.Log,
		metrics:     opts.Metrics,
		artworkSize: opts.ArtworkSize,
	}
}

// Session returns the playback session the controller mutates
func (c *Controller) Session() *playlist.Session {
	return c.session
}

// LoadTrack shows the record at index, hands its preview to the player,
// switches to the player panel on narrow screens and starts playback.
// It is a no-op when index has no record. The returned error is the
// already-logged playback start failure, if any.
func (c *Controller) LoadTrack(ctx context.Context, index int) error {
	c.loadMu.Lock()
	ok := c.load(index)
	c.loadMu.Unlock()
	if !ok {
		return nil
	}
	return c.Play(ctx)
}

// load makes index the current track. Callers hold loadMu.
func (c *Controller) load(index int) bool {
	track, err := c.session.Select(index)
	if err != nil {
		return false
	}

	c.log.WithFields(logrus.Fields{
		"index": index,
		"track": track.TrackName,
	}).Info("loading track")

	c.surface.ShowTrack(NowPlaying{
		Title:      track.TrackName,
		Artist:     track.ArtistName,
		Album:      track.Collection(),
		ArtworkURL: api.ArtworkVariant(track.ArtworkURL, c.artworkSize),
	})

	c.player.Load(track.PreviewURL)
	c.metrics.TracksLoaded.Inc()
	c.setSlider(0)

	c.surface.OpenPlayer()
	return true
}

// step loads the track chosen by pick from the current index
func (c *Controller) step(ctx context.Context, pick func() (int, error)) error {
	c.loadMu.Lock()
	idx, err := pick()
	ok := err == nil && c.load(idx)
	c.loadMu.Unlock()
	if !ok {
		return nil
	}
	return c.Play(ctx)
}

// Play asks the player to start. On rejection the playing flag is left as
// it was and the visual state is not applied.
func (c *Controller) Play(ctx context.Context) error {
	if err := c.player.Play(ctx); err != nil {
		track, _ := c.session.Current()
		c.metrics.PlaybackFailures.Inc()
		c.log.WithError(err).WithField("track", track.TrackName).Warn("playback did not start")
		return &playerrors.PlaybackStartError{Track: track.TrackName, Err: err}
	}
	c.session.SetPlaying(true)
	c.surface.ShowPlaying(true)
	return nil
}

// Pause stops playback and reverts the visual state
func (c *Controller) Pause() {
	c.player.Pause()
	c.session.SetPlaying(false)
	c.surface.ShowPlaying(false)
}

// Toggle pauses when playing, otherwise plays
func (c *Controller) Toggle(ctx context.Context) error {
	if c.session.IsPlaying() {
		c.Pause()
		return nil
	}
	return c.Play(ctx)
}

// Next loads the following track, wrapping to the first
func (c *Controller) Next(ctx context.Context) error {
	return c.step(ctx, c.session.NextIndex)
}

// Previous loads the preceding track, wrapping to the last
func (c *Controller) Previous(ctx context.Context) error {
	return c.step(ctx, c.session.PreviousIndex)
}

// TimeUpdate maps the player position onto the scrub control and the time
// labels. Nothing happens while the duration is unknown.
func (c *Controller) TimeUpdate() {
	dur := c.player.Duration()
	if dur <= 0 {
		return
	}
	pos := c.player.Position()
	percent := percentOf(pos, dur)
	c.setSlider(percent)
	c.surface.ShowProgress(Progress{
		Percent: percent,
		Elapsed: FormatDuration(pos),
		Total:   FormatDuration(dur),
	})
}

// Seek moves playback to value percent of the duration immediately
func (c *Controller) Seek(value float64) {
	dur := c.player.Duration()
	if dur <= 0 {
		return
	}
	value = clampPercent(value)
	target := time.Duration(value * float64(dur) / 100)
	c.player.SetPosition(target)
	c.setSlider(value)
	c.surface.ShowProgress(Progress{
		Percent: value,
		Elapsed: FormatDuration(target),
		Total:   FormatDuration(dur),
	})
}

// SeekBy moves the scrub control by delta percent
func (c *Controller) SeekBy(delta float64) {
	c.Seek(c.Slider() + delta)
}

// Slider returns the last scrub control value
func (c *Controller) Slider() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slider
}

func (c *Controller) setSlider(v float64) {
	c.mu.Lock()
	c.slider = v
	c.mu.Unlock()
}

// AdjustVolume changes the volume by delta, clamped to 0..1
func (c *Controller) AdjustVolume(delta float64) error {
	level := math.Max(0, math.Min(1, c.player.Volume()+delta))
	// Round away float drift from repeated 0.1 steps
	level = math.Round(level*100) / 100
	return c.player.SetVolume(level)
}

// Run consumes time-update, ended and error signals until ctx is done. A
// finished preview advances to the next track.
func (c *Controller) Run(ctx context.Context) error {
	updates := c.player.Subscribe(api.EventPositionUpdate)
	ended := c.player.Subscribe(api.EventTrackEnded)
	failures := c.player.Subscribe(api.EventError)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-updates:
			if !ok {
				return nil
			}
			c.TimeUpdate()
		case _, ok := <-ended:
			if !ok {
				return nil
			}
			c.session.SetPlaying(false)
			c.surface.ShowPlaying(false)
			_ = c.Next(ctx)
		case ev, ok := <-failures:
			if !ok {
				return nil
			}
			err, _ := ev.Payload.(error)
			if err == nil {
				continue
			}
			c.log.WithError(err).Warn("player error")
			c.surface.ShowError(err)
		}
	}
}
