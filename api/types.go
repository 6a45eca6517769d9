package api

import (
	"context"
	"strings"
	"time"
)

// TrackRecord is one song as returned by the search service
type TrackRecord struct {
	ID             int64  `json:"trackId,omitempty"`
	TrackName      string `json:"trackName"`
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName,omitempty"`
	ArtworkURL     string `json:"artworkUrl100"`
	PreviewURL     string `json:"previewUrl"`
	TimeMillis     int64  `json:"trackTimeMillis,omitempty"`
}

// Collection returns the album title, or "Single" for singleton releases
func (t TrackRecord) Collection() string {
	if t.CollectionName == "" {
		return "Single"
	}
	return t.CollectionName
}

// ArtworkVariant swaps the 100x100 resolution token for size.
// The variant is not guaranteed to exist on the artwork server.
func ArtworkVariant(url, size string) string {
	return strings.Replace(url, "100x100", size, 1)
}

// EventType identifies signals emitted by the playback primitive
type EventType int

const (
	EventTrackStarted EventType = iota
	EventTrackEnded
	EventPositionUpdate
	EventError
)

// AudioEvent is published by the playback primitive
type AudioEvent struct {
	Type    EventType
	Payload interface{}
}

// CommandType identifies requests sent to the audio engine loop
type CommandType int

const (
	CmdLoad CommandType = iota
	CmdPlay
	CmdPause
)

// AudioCommand is a request to the audio engine loop. Reply, when set,
// receives the outcome of the command.
type AudioCommand struct {
	Type    CommandType
	Payload interface{}
	Reply   chan error
}

// Player is the playback port the transport controller drives.
// Play is asynchronous on the native side and may reject.
type Player interface {
	Load(src string)
	Play(ctx context.Context) error
	Pause()
	Position() time.Duration
	SetPosition(pos time.Duration)
	Duration() time.Duration
	SetVolume(level float64) error
	Volume() float64
	Subscribe(eventType EventType) <-chan AudioEvent
}
