package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/jscyril/preview_player/api"
	"github.com/jscyril/preview_player/internal/metrics"
	"github.com/jscyril/preview_player/internal/playlist"
	"github.com/jscyril/preview_player/pkg/events"
	playerrors "github.com/jscyril/preview_player/pkg/errors"
)

// fakePlayer is an in-memory playback port
type fakePlayer struct {
	mu       sync.Mutex
	src      string
	loads    []string
	playErr  error
	plays    int
	paused   bool
	position time.Duration
	duration time.Duration
	volume   float64
	bus      *events.EventBus

	subscribed chan api.EventType
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		volume:     0.5,
		bus:        events.NewEventBus(),
		subscribed: make(chan api.EventType, 8),
	}
}

func (f *fakePlayer) Load(src string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.src = src
	f.loads = append(f.loads, src)
	f.position = 0
}

func (f *fakePlayer) Play(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	if f.playErr != nil {
		return f.playErr
	}
	f.paused = false
	return nil
}

func (f *fakePlayer) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
}

func (f *fakePlayer) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fakePlayer) SetPosition(pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = pos
}

func (f *fakePlayer) Duration() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *fakePlayer) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return playerrors.ErrInvalidVolume
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = level
	return nil
}

func (f *fakePlayer) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *fakePlayer) Subscribe(t api.EventType) <-chan api.AudioEvent {
	ch := f.bus.Subscribe(t)
	f.subscribed <- t
	return ch
}

// recordingSurface keeps the last value of every visible change
type recordingSurface struct {
	mu       sync.Mutex
	track    NowPlaying
	playing  bool
	progress []Progress
	opened   int
	errs     []error
}

func (s *recordingSurface) ShowTrack(info NowPlaying) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track = info
}

func (s *recordingSurface) ShowPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = playing
}

func (s *recordingSurface) ShowProgress(p Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, p)
}

func (s *recordingSurface) OpenPlayer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
}

func (s *recordingSurface) ShowError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *recordingSurface) shownTitle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track.Title
}

func (s *recordingSurface) errorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}

func (s *recordingSurface) isPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func makeTracks(n int) []api.TrackRecord {
	tracks := make([]api.TrackRecord, n)
	for i := range tracks {
		tracks[i] = api.TrackRecord{
			TrackName:      fmt.Sprintf("Song %d", i),
			ArtistName:     "Artist",
			CollectionName: "Album",
			ArtworkURL:     fmt.Sprintf("https://art.example/%d/100x100bb.jpg", i),
			PreviewURL:     fmt.Sprintf("https://audio.example/%d.mp3", i),
		}
	}
	return tracks
}

func newTestController(n int) (*Controller, *fakePlayer, *recordingSurface, *metrics.Metrics) {
	session := playlist.NewSession()
	session.SetPlaylist(makeTracks(n))
	player := newFakePlayer()
	surface := &recordingSurface{}
	logger, _ := logtest.NewNullLogger()
	m := metrics.New()
	c := New(session, player, surface, Options{Log: logger, Metrics: m})
	return c, player, surface, m
}

func TestLoadTrack(t *testing.T) {
	c, player, surface, m := newTestController(3)

	if err := c.LoadTrack(context.Background(), 1); err != nil {
		t.Fatalf("LoadTrack failed: %v", err)
	}

	if player.src != "https://audio.example/1.mp3" {
		t.Errorf("Unexpected source %s", player.src)
	}
	if player.plays != 1 {
		t.Errorf("Expected one play attempt, got %d", player.plays)
	}
	if c.Session().Index() != 1 || !c.Session().IsPlaying() {
		t.Errorf("Session not updated: index=%d playing=%v", c.Session().Index(), c.Session().IsPlaying())
	}
	want := NowPlaying{
		Title:      "Song 1",
		Artist:     "Artist",
		Album:      "Album",
		ArtworkURL: "https://art.example/1/600x600bb.jpg",
	}
	if surface.track != want {
		t.Errorf("ShowTrack = %+v, want %+v", surface.track, want)
	}
	if !surface.playing || surface.opened != 1 {
		t.Errorf("Expected playing visual state and one OpenPlayer, got %v %d", surface.playing, surface.opened)
	}
	if got := testutil.ToFloat64(m.TracksLoaded); got != 1 {
		t.Errorf("Expected 1 loaded track, got %v", got)
	}
}

func TestLoadTrackSingleFallback(t *testing.T) {
	c, _, surface, _ := newTestController(0)
	tracks := makeTracks(1)
	tracks[0].CollectionName = ""
	c.Session().SetPlaylist(tracks)

	c.LoadTrack(context.Background(), 0)
	if surface.track.Album != "Single" {
		t.Errorf("Expected Single, got %q", surface.track.Album)
	}
}

func TestLoadTrackOutOfRangeIsNoop(t *testing.T) {
	c, player, surface, _ := newTestController(2)

	for _, idx := range []int{-1, 2, 100} {
		if err := c.LoadTrack(context.Background(), idx); err != nil {
			t.Errorf("LoadTrack(%d) returned %v", idx, err)
		}
	}
	if len(player.loads) != 0 || player.plays != 0 || surface.opened != 0 {
		t.Errorf("Out of range load touched the player: loads=%v plays=%d", player.loads, player.plays)
	}
	if c.Session().Index() != playlist.NoTrack {
		t.Errorf("Index changed to %d", c.Session().Index())
	}
}

func TestPlayRejected(t *testing.T) {
	c, player, surface, m := newTestController(2)
	player.playErr = errors.New("NotAllowedError")

	err := c.LoadTrack(context.Background(), 0)

	var startErr *playerrors.PlaybackStartError
	if !errors.As(err, &startErr) {
		t.Fatalf("Expected PlaybackStartError, got %v", err)
	}
	if startErr.Track != "Song 0" {
		t.Errorf("Unexpected track in error: %q", startErr.Track)
	}
	if c.Session().IsPlaying() || surface.playing {
		t.Error("Rejected play must not apply the playing state")
	}
	// The track is still loaded and shown
	if c.Session().Index() != 0 || surface.track.Title != "Song 0" {
		t.Error("Rejected play should not roll back the loaded track")
	}
	if got := testutil.ToFloat64(m.PlaybackFailures); got != 1 {
		t.Errorf("Expected 1 playback failure, got %v", got)
	}
}

func TestPauseAndToggle(t *testing.T) {
	c, player, surface, _ := newTestController(1)
	ctx := context.Background()
	c.LoadTrack(ctx, 0)

	c.Toggle(ctx)
	if !player.paused || c.Session().IsPlaying() || surface.playing {
		t.Error("Toggle while playing should pause")
	}

	c.Toggle(ctx)
	if player.paused || !c.Session().IsPlaying() || !surface.playing {
		t.Error("Toggle while paused should play")
	}
	if player.plays != 2 {
		t.Errorf("Expected 2 play calls, got %d", player.plays)
	}
}

func TestNextPreviousWrap(t *testing.T) {
	c, player, _, _ := newTestController(3)
	ctx := context.Background()

	c.LoadTrack(ctx, 2)
	c.Next(ctx)
	if c.Session().Index() != 0 {
		t.Errorf("Next from last should wrap to 0, got %d", c.Session().Index())
	}
	c.Previous(ctx)
	if c.Session().Index() != 2 {
		t.Errorf("Previous from first should wrap to 2, got %d", c.Session().Index())
	}
	c.Previous(ctx)
	if c.Session().Index() != 1 {
		t.Errorf("Expected index 1, got %d", c.Session().Index())
	}
	if got := player.loads[len(player.loads)-1]; got != "https://audio.example/1.mp3" {
		t.Errorf("Unexpected last load %s", got)
	}
}

func TestNextOnEmptyPlaylistIsNoop(t *testing.T) {
	c, player, _, _ := newTestController(0)
	ctx := context.Background()
	c.Next(ctx)
	c.Previous(ctx)
	if len(player.loads) != 0 {
		t.Errorf("Expected no loads, got %v", player.loads)
	}
}

func TestTimeUpdate(t *testing.T) {
	c, player, surface, _ := newTestController(1)

	// Unknown duration: no update
	c.TimeUpdate()
	if len(surface.progress) != 0 {
		t.Fatalf("Expected no progress without duration, got %v", surface.progress)
	}

	player.duration = 30 * time.Second
	player.position = 15*time.Second + 400*time.Millisecond
	c.TimeUpdate()

	got := surface.progress[len(surface.progress)-1]
	want := Progress{Percent: float64(15400) / 30000 * 100, Elapsed: "0:15", Total: "0:30"}
	if got != want {
		t.Errorf("Progress = %+v, want %+v", got, want)
	}
	if c.Slider() != want.Percent {
		t.Errorf("Slider = %v, want %v", c.Slider(), want.Percent)
	}
}

func TestSeek(t *testing.T) {
	c, player, _, _ := newTestController(1)

	c.Seek(50)
	if player.position != 0 {
		t.Error("Seek without duration should be ignored")
	}

	player.duration = 30 * time.Second
	c.Seek(50)
	if player.position != 15*time.Second {
		t.Errorf("Expected position 15s, got %v", player.position)
	}

	c.SeekBy(10)
	if player.position != 18*time.Second {
		t.Errorf("Expected position 18s, got %v", player.position)
	}

	c.SeekBy(500)
	if player.position != 30*time.Second || c.Slider() != 100 {
		t.Errorf("Seek should clamp to the end, got %v slider=%v", player.position, c.Slider())
	}
}

func TestAdjustVolume(t *testing.T) {
	c, player, _, _ := newTestController(1)

	c.AdjustVolume(0.1)
	if player.volume != 0.6 {
		t.Errorf("Expected 0.6, got %v", player.volume)
	}
	for i := 0; i < 20; i++ {
		c.AdjustVolume(0.1)
	}
	if player.volume != 1 {
		t.Errorf("Volume should clamp to 1, got %v", player.volume)
	}
	for i := 0; i < 20; i++ {
		c.AdjustVolume(-0.1)
	}
	if player.volume != 0 {
		t.Errorf("Volume should clamp to 0, got %v", player.volume)
	}
}

func TestRunAdvancesOnEnded(t *testing.T) {
	c, player, surface, _ := newTestController(2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.LoadTrack(ctx, 1)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	for i := 0; i < 3; i++ {
		select {
		case <-player.subscribed:
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not subscribe")
		}
	}
	player.bus.Publish(api.AudioEvent{Type: api.EventTrackEnded})

	deadline := time.After(2 * time.Second)
	for c.Session().Index() != 0 {
		select {
		case <-deadline:
			t.Fatal("ended signal did not advance the playlist")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if !surface.isPlaying() {
		t.Error("Next track should be playing")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

// slowLoadPlayer delays Load for one source so track changes overlap
type slowLoadPlayer struct {
	*fakePlayer
	slowSrc string
	delay   time.Duration
}

func (p *slowLoadPlayer) Load(src string) {
	if src == p.slowSrc {
		time.Sleep(p.delay)
	}
	p.fakePlayer.Load(src)
}

func (f *fakePlayer) currentSrc() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.src
}

func TestOverlappingLoadsStayConsistent(t *testing.T) {
	tracks := makeTracks(3)
	session := playlist.NewSession()
	session.SetPlaylist(tracks)
	player := &slowLoadPlayer{fakePlayer: newFakePlayer(), slowSrc: tracks[1].PreviewURL, delay: 30 * time.Millisecond}
	surface := &recordingSurface{}
	logger, _ := logtest.NewNullLogger()
	c := New(session, player, surface, Options{Log: logger, Metrics: metrics.New()})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.LoadTrack(context.Background(), 1)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		c.LoadTrack(context.Background(), 2)
	}()
	wg.Wait()

	current, ok := session.Current()
	if !ok {
		t.Fatal("No current track")
	}
	if src := player.currentSrc(); src != current.PreviewURL {
		t.Errorf("Player loaded %s but session is on %s", src, current.PreviewURL)
	}
	if title := surface.shownTitle(); title != current.TrackName {
		t.Errorf("Surface shows %q but session is on %q", title, current.TrackName)
	}
}

func TestConcurrentNextAdvancesEachCall(t *testing.T) {
	c, player, _, _ := newTestController(4)
	c.LoadTrack(context.Background(), 0)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Next(context.Background())
		}()
	}
	wg.Wait()

	if c.Session().Index() != 2 {
		t.Errorf("Expected two steps to reach index 2, got %d", c.Session().Index())
	}
	player.mu.Lock()
	loads := append([]string(nil), player.loads...)
	player.mu.Unlock()
	want := []string{"https://audio.example/0.mp3", "https://audio.example/1.mp3", "https://audio.example/2.mp3"}
	if fmt.Sprint(loads) != fmt.Sprint(want) {
		t.Errorf("loads = %v, want %v", loads, want)
	}
}

func TestRunForwardsPlayerErrors(t *testing.T) {
	c, player, surface, _ := newTestController(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.Run(ctx)
	for i := 0; i < 3; i++ {
		select {
		case <-player.subscribed:
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not subscribe")
		}
	}

	player.bus.Publish(api.AudioEvent{Type: api.EventError, Payload: errors.New("seek failed")})

	deadline := time.After(2 * time.Second)
	for surface.errorCount() != 1 {
		select {
		case <-deadline:
			t.Fatal("player error was not shown")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
