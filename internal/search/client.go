// Package search queries the public iTunes Search API for songs and
// sequences the requests issued by the UI so that late responses never
// replace newer ones.
package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/jscyril/preview_player/api"
	playerrors "github.com/jscyril/preview_player/pkg/errors"
)

// Purpose tags a request with the list it will fill.
type Purpose string

const (
	PurposePopular Purpose = "popular"
	PurposeSearch  Purpose = "search"
)

const (
	DefaultEndpoint = "https://itunes.apple.com/search"
	DefaultEntity   = "song"
	DefaultLimit    = 20
)

// Client provides access to Apple's iTunes Search API. The zero value is
// ready for use: it talks to DefaultEndpoint with http.DefaultClient and
// asks for DefaultLimit songs. No timeout is applied unless HTTP carries one.
type Client struct {
	HTTP     *http.Client
	Endpoint string
	Entity   string
	Limit    int
}

// NewClient builds a client for endpoint. A zero timeout means none.
func NewClient(endpoint, entity string, limit int, timeout time.Duration) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		Endpoint: endpoint,
		Entity:   entity,
		Limit:    limit,
	}
}

// response mirrors the subset of the iTunes JSON body we read. Results is a
// pointer so a body without the array can be told apart from an empty one.
type response struct {
	Results *[]api.TrackRecord `json:"results"`
}

// Search requests up to Limit songs matching term. Any failure is returned
// as a *errors.RemoteFetchError; an empty result set is not an error.
func (c *Client) Search(ctx context.Context, term string, purpose Purpose) ([]api.TrackRecord, error) {
	tracks, err := c.search(ctx, term)
	if err != nil {
		return nil, &playerrors.RemoteFetchError{Term: term, Purpose: string(purpose), Err: err}
	}
	return tracks, nil
}

func (c *Client) search(ctx context.Context, term string) ([]api.TrackRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(term), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "itunes request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("itunes search error: %s", resp.Status)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode itunes response")
	}
	if body.Results == nil {
		return nil, errors.Wrap(playerrors.ErrMalformedResponse, "missing results")
	}

	tracks := *body.Results
	for i, t := range tracks {
		if field := missingField(t); field != "" {
			return nil, errors.Wrapf(playerrors.ErrMalformedResponse, "result %d has no %s", i, field)
		}
	}
	return tracks, nil
}

// URL returns the request URL for term.
func (c *Client) URL(term string) string {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	entity := c.Entity
	if entity == "" {
		entity = DefaultEntity
	}
	limit := c.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	params := url.Values{
		"term":   {term},
		"entity": {entity},
		"limit":  {strconv.Itoa(limit)},
	}
	return endpoint + "?" + params.Encode()
}

func missingField(t api.TrackRecord) string {
	switch {
	case t.TrackName == "":
		return "trackName"
	case t.ArtistName == "":
		return "artistName"
	case t.ArtworkURL == "":
		return "artworkUrl100"
	case t.PreviewURL == "":
		return "previewUrl"
	}
	return ""
}
