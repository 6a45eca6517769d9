package render

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jscyril/preview_player/api"
	"github.com/jscyril/preview_player/internal/playlist"
)

type recordingLoader struct {
	indices []int
}

func (l *recordingLoader) LoadTrack(_ context.Context, index int) error {
	l.indices = append(l.indices, index)
	return nil
}

func makeTracks(n int) []api.TrackRecord {
	tracks := make([]api.TrackRecord, n)
	for i := range tracks {
		tracks[i] = api.TrackRecord{
			TrackName:      fmt.Sprintf("Song number %d with a long title", i),
			ArtistName:     "Artist",
			CollectionName: "A Collection Name That Is Clearly Too Long",
			ArtworkURL:     "https://art.example/100x100bb.jpg",
			PreviewURL:     fmt.Sprintf("https://audio.example/%d.m4a", i),
		}
	}
	return tracks
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"", 5, ""},
		{"short", 5, "short"},
		{"exactly twenty chars", 20, "exactly twenty chars"},
		{"twenty-one characters", 20, "twenty-one characte..."},
		{"Blinding Lights", 10, "Blinding ..."},
		{"ünïcödé strings", 8, "ünïcödé..."},
	}

	for _, tt := range tests {
		got := Truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if utf8.RuneCountInString(tt.in) > tt.n {
			if n := utf8.RuneCountInString(got); n != tt.n+2 {
				t.Errorf("Truncate(%q, %d) has %d characters, want %d", tt.in, tt.n, n, tt.n+2)
			}
		}
	}
}

func TestRenderPopular(t *testing.T) {
	r := NewRenderer(playlist.NewSession(), &recordingLoader{}, "")
	tracks := makeTracks(2)
	list := r.Render(TargetPopular, tracks)

	if len(list.Items) != 2 || list.Placeholder != "" {
		t.Fatalf("unexpected list %+v", list)
	}
	it := list.Items[0]
	if it.Title != Truncate(tracks[0].TrackName, 20) || !strings.HasSuffix(it.Title, Ellipsis) {
		t.Errorf("unexpected title %q", it.Title)
	}
	if it.Subtitle != "Artist" {
		t.Errorf("unexpected subtitle %q", it.Subtitle)
	}
	if it.ArtworkURL != "https://art.example/400x400bb.jpg" {
		t.Errorf("unexpected artwork %q", it.ArtworkURL)
	}
}

func TestRenderPopularEmptyHasNoPlaceholder(t *testing.T) {
	r := NewRenderer(playlist.NewSession(), &recordingLoader{}, "")
	list := r.Render(TargetPopular, nil)
	if list.Placeholder != "" || len(list.Items) != 0 {
		t.Errorf("popular grid should stay empty, got %+v", list)
	}
}

func TestRenderResults(t *testing.T) {
	r := NewRenderer(playlist.NewSession(), &recordingLoader{}, "")
	tracks := makeTracks(1)
	tracks = append(tracks, api.TrackRecord{TrackName: "Solo", ArtistName: "X", ArtworkURL: "a", PreviewURL: "p"})
	list := r.Render(TargetResults, tracks)

	if list.Items[0].Title != tracks[0].TrackName {
		t.Errorf("results titles are not truncated, got %q", list.Items[0].Title)
	}
	if want := "Artist • " + Truncate(tracks[0].CollectionName, 30); list.Items[0].Subtitle != want {
		t.Errorf("subtitle = %q, want %q", list.Items[0].Subtitle, want)
	}
	if list.Items[1].Subtitle != "X • Single" {
		t.Errorf("subtitle = %q, want X • Single", list.Items[1].Subtitle)
	}
	if list.Items[0].ArtworkURL != tracks[0].ArtworkURL {
		t.Errorf("results use the artwork as received, got %q", list.Items[0].ArtworkURL)
	}
}

func TestRenderResultsEmpty(t *testing.T) {
	r := NewRenderer(playlist.NewSession(), &recordingLoader{}, "")
	list := r.Render(TargetResults, []api.TrackRecord{})

	if list.Placeholder != EmptyResults {
		t.Errorf("expected placeholder %q, got %q", EmptyResults, list.Placeholder)
	}
	if !list.Empty() {
		t.Errorf("expected no track items, got %d", len(list.Items))
	}
}

func TestSelectReplacesPlaylistAndLoads(t *testing.T) {
	for _, target := range []Target{TargetPopular, TargetResults} {
		t.Run(target.String(), func(t *testing.T) {
			session := playlist.NewSession()
			session.SetPlaylist(makeTracks(7))
			loader := &recordingLoader{}
			r := NewRenderer(session, loader, "")

			tracks := makeTracks(4)
			list := r.Render(target, tracks)
			for i := range tracks {
				if err := r.Select(context.Background(), &list, i); err != nil {
					t.Fatal(err)
				}
				if !reflect.DeepEqual(session.Playlist(), tracks) {
					t.Fatalf("playlist is not exactly the rendered list")
				}
				if loader.indices[len(loader.indices)-1] != i {
					t.Fatalf("loaded %d, want %d", loader.indices[len(loader.indices)-1], i)
				}
			}
		})
	}
}

func TestSelectActiveIsExclusive(t *testing.T) {
	r := NewRenderer(playlist.NewSession(), &recordingLoader{}, "")
	list := r.Render(TargetResults, makeTracks(3))

	r.Select(context.Background(), &list, 0)
	r.Select(context.Background(), &list, 2)

	if list.Active() != 2 {
		t.Errorf("expected item 2 active, got %d", list.Active())
	}
	active := 0
	for _, it := range list.Items {
		if it.Active {
			active++
		}
	}
	if active != 1 {
		t.Errorf("expected one active item, got %d", active)
	}
}

func TestSelectPopularHasNoActiveMarker(t *testing.T) {
	r := NewRenderer(playlist.NewSession(), &recordingLoader{}, "")
	list := r.Render(TargetPopular, makeTracks(3))
	r.Select(context.Background(), &list, 1)
	if list.Active() != -1 {
		t.Errorf("popular grid should not mark items active, got %d", list.Active())
	}
}

func TestSelectOutOfRange(t *testing.T) {
	session := playlist.NewSession()
	loader := &recordingLoader{}
	r := NewRenderer(session, loader, "")
	list := r.Render(TargetResults, nil)

	r.Select(context.Background(), &list, 0)
	if len(loader.indices) != 0 || session.Len() != 0 {
		t.Error("selecting in an empty list should do nothing")
	}
}
