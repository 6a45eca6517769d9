package audio

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jscyril/preview_player/api"
	playerrors "github.com/jscyril/preview_player/pkg/errors"
	"github.com/jscyril/preview_player/pkg/events"
)

// Ensure AudioEngine implements Player interface at compile time
var _ api.Player = (*AudioEngine)(nil)

const (
	// PositionInterval is how often position updates are published
	PositionInterval = 250 * time.Millisecond
	// MaxPreviewSize is the default bound on a fetched preview
	MaxPreviewSize int64 = 32 << 20
)

// Sink is the audio output. Callers hold Lock while touching streamers the
// sink is playing.
type Sink interface {
	Init(sr beep.SampleRate) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// speakerSink plays through the beep speaker, re-initialising it when the
// sample rate changes
type speakerSink struct {
	rate beep.SampleRate
}

func (s *speakerSink) Init(sr beep.SampleRate) error {
	if s.rate == sr {
		return nil
	}
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return err
	}
	s.rate = sr
	return nil
}

func (s *speakerSink) Play(st beep.Streamer) { speaker.Play(st) }
func (s *speakerSink) Clear()                { speaker.Clear() }
func (s *speakerSink) Lock()                 { speaker.Lock() }
func (s *speakerSink) Unlock()               { speaker.Unlock() }

// Options configures an AudioEngine
type Options struct {
	Client     *http.Client
	Transcoder string
	Volume     float64
	Sink       Sink
	Log        logrus.FieldLogger
	// MaxSize bounds a fetched preview, MaxPreviewSize when zero
	MaxSize int64
}

// AudioEngine plays remote previews. Load, Play and Pause are serialised on
// a command goroutine; position and volume are applied immediately.
type AudioEngine struct {
	commands   chan api.AudioCommand
	bus        *events.EventBus
	client     *http.Client
	transcoder string
	sink       Sink
	log        logrus.FieldLogger
	maxSize    int64

	mu         sync.RWMutex
	src        string
	generation uint64
	streamer   beep.StreamSeekCloser
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	format     beep.Format
	level      float64
	playing    bool
}

// NewAudioEngine creates a new audio engine instance
func NewAudioEngine(opts Options) *AudioEngine {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Sink == nil {
		opts.Sink = &speakerSink{}
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Volume < 0 || opts.Volume > 1 {
		opts.Volume = 0.5
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = MaxPreviewSize
	}
	return &AudioEngine{
		commands:   make(chan api.AudioCommand, 10),
		bus:        events.NewEventBus(),
		client:     opts.Client,
		transcoder: opts.Transcoder,
		sink:       opts.Sink,
		log:        opts.Log,
		maxSize:    opts.MaxSize,
		level:      opts.Volume,
	}
}

// Start begins the audio engine goroutines
func (e *AudioEngine) Start(ctx context.Context) {
	go e.run(ctx)
	go e.trackPosition(ctx)
}

// Subscribe returns a channel of engine events of one type
func (e *AudioEngine) Subscribe(eventType api.EventType) <-chan api.AudioEvent {
	return e.bus.Subscribe(eventType)
}

// run is the main command processing loop
func (e *AudioEngine) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.cleanup()
			return

		case cmd := <-e.commands:
			var err error
			switch cmd.Type {
			case api.CmdLoad:
				e.load(cmd.Payload.(string))

			case api.CmdPlay:
				err = e.play(cmd.Payload.(context.Context))

			case api.CmdPause:
				e.pause()
			}
			if cmd.Reply != nil {
				cmd.Reply <- err
			}
		}
	}
}

// trackPosition publishes the playback position periodically
func (e *AudioEngine) trackPosition(ctx context.Context) {
	ticker := time.NewTicker(PositionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mu.RLock()
			playing := e.playing && e.streamer != nil
			e.mu.RUnlock()
			if playing {
				e.bus.Publish(api.AudioEvent{
					Type:    api.EventPositionUpdate,
					Payload: e.Position(),
				})
			}
		}
	}
}

// load releases the current stream and remembers src for the next play
func (e *AudioEngine) load(src string) {
	e.stopPlayback()

	e.mu.Lock()
	e.src = src
	e.generation++
	e.mu.Unlock()
}

// play resumes a paused stream or fetches, decodes and starts the loaded
// source. Only the command goroutine changes the source, so the fetch runs
// without holding e.mu.
func (e *AudioEngine) play(ctx context.Context) error {
	e.mu.Lock()
	src, gen := e.src, e.generation
	if src == "" {
		e.mu.Unlock()
		return playerrors.ErrNoSource
	}
	if e.ctrl != nil {
		e.sink.Lock()
		e.ctrl.Paused = false
		e.sink.Unlock()
		e.playing = true
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	data, err := e.fetch(ctx, src)
	if err != nil {
		return playerrors.NewPlayerError("fetch", src, err)
	}

	streamer, format, container, err := decode(ctx, e.transcoder, data, src)
	if err != nil {
		return playerrors.NewPlayerError("decode", src, err)
	}

	if err := e.sink.Init(format.SampleRate); err != nil {
		streamer.Close()
		return playerrors.NewPlayerError("speaker_init", src, err)
	}

	e.log.WithFields(logrus.Fields{
		"src":       src,
		"container": container,
		"embedded":  EmbeddedTitle(data),
		"duration":  format.SampleRate.D(streamer.Len()),
	}).Debug("preview decoded")

	e.mu.Lock()
	e.streamer = streamer
	e.format = format
	e.ctrl = &beep.Ctrl{Streamer: streamer, Paused: false}
	e.volume = &effects.Volume{Streamer: e.ctrl, Base: 2}
	e.applyVolume()
	e.playing = true
	e.sink.Play(beep.Seq(e.volume, beep.Callback(func() {
		// The sink holds its lock while streaming
		go e.finished(gen, src)
	})))
	e.mu.Unlock()

	e.bus.Publish(api.AudioEvent{Type: api.EventTrackStarted, Payload: src})
	return nil
}

// finished reports the end of the stream started for generation gen.
// Streams replaced by a later load are ignored.
func (e *AudioEngine) finished(gen uint64, src string) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.playing = false
	e.mu.Unlock()

	e.bus.Publish(api.AudioEvent{Type: api.EventTrackEnded, Payload: src})
}

func (e *AudioEngine) pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctrl != nil {
		e.sink.Lock()
		e.ctrl.Paused = true
		e.sink.Unlock()
	}
	e.playing = false
}

func (e *AudioEngine) fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("preview returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read preview")
	}
	if int64(len(data)) > e.maxSize {
		return nil, errors.Wrapf(playerrors.ErrPreviewTooLarge, "over %d bytes", e.maxSize)
	}
	return data, nil
}

// stopPlayback stops the current playback
func (e *AudioEngine) stopPlayback() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sink.Clear()
	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	e.ctrl = nil
	e.volume = nil
	e.playing = false
}

// applyVolume maps the 0..1 level onto the effect. Callers hold e.mu.
func (e *AudioEngine) applyVolume() {
	if e.volume == nil {
		return
	}
	e.sink.Lock()
	e.volume.Volume = e.level*2 - 1
	e.volume.Silent = e.level == 0
	e.sink.Unlock()
}

// cleanup releases resources
func (e *AudioEngine) cleanup() {
	e.stopPlayback()
	e.bus.Close()
}

// Load assigns a new source. Playback of the previous one stops.
func (e *AudioEngine) Load(src string) {
	e.commands <- api.AudioCommand{Type: api.CmdLoad, Payload: src}
}

// Play starts or resumes the loaded source. The call waits until the
// preview is fetched and decoded, or ctx ends.
func (e *AudioEngine) Play(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case e.commands <- api.AudioCommand{Type: api.CmdPlay, Payload: ctx, Reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause pauses playback
func (e *AudioEngine) Pause() {
	e.commands <- api.AudioCommand{Type: api.CmdPause}
}

// Position returns the elapsed time of the current stream
func (e *AudioEngine) Position() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.streamer == nil {
		return 0
	}
	e.sink.Lock()
	n := e.streamer.Position()
	e.sink.Unlock()
	return e.format.SampleRate.D(n)
}

// Duration returns the length of the current stream, 0 while unknown
func (e *AudioEngine) Duration() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(e.streamer.Len())
}

// SetPosition seeks the current stream, clamped to its length
func (e *AudioEngine) SetPosition(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return
	}
	n := e.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if l := e.streamer.Len(); n > l {
		n = l
	}

	e.sink.Lock()
	err := e.streamer.Seek(n)
	e.sink.Unlock()
	if err != nil {
		e.log.WithError(err).WithField("position", pos).Warn("seek failed")
		e.bus.Publish(api.AudioEvent{
			Type:    api.EventError,
			Payload: playerrors.NewPlayerError("seek", e.src, err),
		})
	}
}

// SetVolume sets the volume level (0.0 to 1.0)
func (e *AudioEngine) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return playerrors.ErrInvalidVolume
	}
	e.mu.Lock()
	e.level = level
	e.applyVolume()
	e.mu.Unlock()
	return nil
}

// Volume returns the current volume level
func (e *AudioEngine) Volume() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.level
}
