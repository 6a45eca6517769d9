package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrTrackNotFound     = errors.New("track not found")
	ErrInvalidFormat     = errors.New("unsupported audio format")
	ErrPreviewTooLarge   = errors.New("preview exceeds size limit")
	ErrEmptyPlaylist     = errors.New("playlist is empty")
	ErrInvalidVolume     = errors.New("volume must be between 0.0 and 1.0")
	ErrNoSource          = errors.New("no source loaded")
	ErrMalformedResponse = errors.New("malformed search response")
)

// PlayerError wraps errors with additional context
type PlayerError struct {
	Op    string // Operation that failed
	Track string // Preview URL or track name if applicable
	Err   error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s failed for track %s: %v", e.Op, e.Track, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(op, track string, err error) *PlayerError {
	return &PlayerError{Op: op, Track: track, Err: err}
}

// RemoteFetchError is a network failure or malformed search response
type RemoteFetchError struct {
	Term    string
	Purpose string
	Err     error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("%s search for %q: %v", e.Purpose, e.Term, e.Err)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// PlaybackStartError is a rejected play request
type PlaybackStartError struct {
	Track string
	Err   error
}

func (e *PlaybackStartError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("start playback of %s: %v", e.Track, e.Err)
	}
	return fmt.Sprintf("start playback: %v", e.Err)
}

func (e *PlaybackStartError) Unwrap() error {
	return e.Err
}
