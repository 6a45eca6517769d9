package playlist

import (
	"sync"

	"github.com/jscyril/preview_player/api"
	playerrors "github.com/jscyril/preview_player/pkg/errors"
)

// NoTrack is the current index before anything has been loaded
const NoTrack = -1

// Session is the process-wide playback state: the playlist the current
// track was chosen from, its index and whether the primitive is playing.
type Session struct {
	tracks    []api.TrackRecord
	index     int
	isPlaying bool
	mu        sync.RWMutex
}

// NewSession creates an empty session with no track loaded
func NewSession() *Session {
	return &Session{
		tracks: make([]api.TrackRecord, 0),
		index:  NoTrack,
	}
}

// SetPlaylist replaces the playlist with a copy of tracks. The current index
// is kept; it is only meaningful again once a track is loaded.
func (s *Session) SetPlaylist(tracks []api.TrackRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracks = make([]api.TrackRecord, len(tracks))
	copy(s.tracks, tracks)
}

// Playlist returns a copy of the playlist
func (s *Session) Playlist() []api.TrackRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]api.TrackRecord, len(s.tracks))
	copy(result, s.tracks)
	return result
}

// Track returns the record at index
func (s *Session) Track(index int) (api.TrackRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.tracks) {
		return api.TrackRecord{}, false
	}
	return s.tracks[index], true
}

// Select makes index the current track and returns its record
func (s *Session) Select(index int) (api.TrackRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.tracks) {
		return api.TrackRecord{}, playerrors.ErrTrackNotFound
	}
	s.index = index
	return s.tracks[index], nil
}

// Current returns the current track, if one is loaded
func (s *Session) Current() (api.TrackRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index < 0 || s.index >= len(s.tracks) {
		return api.TrackRecord{}, false
	}
	return s.tracks[s.index], true
}

// Index returns the current index, or NoTrack
func (s *Session) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Len returns the number of tracks in the playlist
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// NextIndex returns the index after the current one, wrapping to 0
func (s *Session) NextIndex() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.tracks)
	if n == 0 {
		return NoTrack, playerrors.ErrEmptyPlaylist
	}
	return (s.position() + 1) % n, nil
}

// PreviousIndex returns the index before the current one, wrapping to n-1
func (s *Session) PreviousIndex() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.tracks)
	if n == 0 {
		return NoTrack, playerrors.ErrEmptyPlaylist
	}
	return ((s.position()-1)%n + n) % n, nil
}

// position treats a session with nothing loaded as sitting on index 0
func (s *Session) position() int {
	if s.index < 0 {
		return 0
	}
	return s.index
}

// SetPlaying records the primitive's play state
func (s *Session) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isPlaying = playing
}

// IsPlaying returns whether the primitive is playing
func (s *Session) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPlaying
}
