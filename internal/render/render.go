// Package render turns track records into the two displayable lists, the
// popular grid and the search results, and binds selection to playback.
package render

import (
	"context"

	"github.com/jscyril/preview_player/api"
	"github.com/jscyril/preview_player/internal/playlist"
)

// Target names a list on screen
type Target int

const (
	TargetPopular Target = iota
	TargetResults
)

func (t Target) String() string {
	if t == TargetPopular {
		return "popular"
	}
	return "results"
}

const (
	// EmptyResults is shown in place of an empty results list
	EmptyResults = "Nothing found"
	// Ellipsis marks a truncated string
	Ellipsis = "..."

	GridTitleBudget      = 20
	GridArtistBudget     = 20
	CollectionBudget     = 30
	DefaultGridArtworkSz = "400x400"
)

// Item is one visual element of a list
type Item struct {
	Title      string
	Subtitle   string
	ArtworkURL string
	Active     bool
}

// List is a rendered target. Tracks is exactly the input the items were
// produced from.
type List struct {
	Target      Target
	Tracks      []api.TrackRecord
	Items       []Item
	Placeholder string
}

// Empty reports whether the list shows no track items
func (l List) Empty() bool {
	return len(l.Items) == 0
}

// Active returns the index of the active item, or -1
func (l List) Active() int {
	for i, it := range l.Items {
		if it.Active {
			return i
		}
	}
	return -1
}

// Truncate keeps s when it fits in n characters, otherwise cuts it to n-1
// characters followed by an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n < 1 {
		return Ellipsis
	}
	return string(r[:n-1]) + Ellipsis
}

// Loader starts playback of a playlist entry. *transport.Controller
// satisfies it.
type Loader interface {
	LoadTrack(ctx context.Context, index int) error
}

// Renderer builds lists and binds their selection to the session
type Renderer struct {
	session         *playlist.Session
	loader          Loader
	gridArtworkSize string
}

// NewRenderer creates a renderer. gridArtworkSize is the resolution
// requested for popular cards.
func NewRenderer(session *playlist.Session, loader Loader, gridArtworkSize string) *Renderer {
	if gridArtworkSize == "" {
		gridArtworkSize = DefaultGridArtworkSz
	}
	return &Renderer{session: session, loader: loader, gridArtworkSize: gridArtworkSize}
}

// Render clears target and produces one item per record
func (r *Renderer) Render(target Target, tracks []api.TrackRecord) List {
	list := List{
		Target: target,
		Tracks: tracks,
		Items:  make([]Item, 0, len(tracks)),
	}

	if target == TargetResults && len(tracks) == 0 {
		list.Placeholder = EmptyResults
		return list
	}

	for _, t := range tracks {
		list.Items = append(list.Items, r.item(target, t))
	}
	return list
}

func (r *Renderer) item(target Target, t api.TrackRecord) Item {
	if target == TargetPopular {
		return Item{
			Title:      Truncate(t.TrackName, GridTitleBudget),
			Subtitle:   Truncate(t.ArtistName, GridArtistBudget),
			ArtworkURL: api.ArtworkVariant(t.ArtworkURL, r.gridArtworkSize),
		}
	}
	return Item{
		Title:      t.TrackName,
		Subtitle:   t.ArtistName + " • " + Truncate(t.Collection(), CollectionBudget),
		ArtworkURL: t.ArtworkURL,
	}
}

// Bind makes item index of list the playback source: the session playlist
// becomes exactly list.Tracks and, for the results list, the item becomes
// the only active one. It reports false for indices without an item.
func (r *Renderer) Bind(list *List, index int) bool {
	if index < 0 || index >= len(list.Items) {
		return false
	}

	r.session.SetPlaylist(list.Tracks)

	if list.Target == TargetResults {
		for i := range list.Items {
			list.Items[i].Active = i == index
		}
	}
	return true
}

// Select handles a click on item index of list: Bind, then load the track.
// Indices without an item are ignored.
func (r *Renderer) Select(ctx context.Context, list *List, index int) error {
	if !r.Bind(list, index) {
		return nil
	}
	return r.loader.LoadTrack(ctx, index)
}
