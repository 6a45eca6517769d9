package search

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/jscyril/preview_player/api"
	"github.com/jscyril/preview_player/internal/metrics"
)

// MinQueryLength is the shortest trimmed input that triggers a search.
const MinQueryLength = 3

// Searcher performs a remote lookup. *Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, term string, purpose Purpose) ([]api.TrackRecord, error)
}

// Request is one dispatched lookup. Token increases with every request of
// the same purpose.
type Request struct {
	Term    string
	Purpose Purpose
	Token   uint64
}

// Response carries the outcome of a Request. Err is set when the lookup
// failed; it has already been logged.
type Response struct {
	Request
	Tracks []api.TrackRecord
	Err    error
}

// Dispatcher turns UI triggers into requests and drops stale responses.
type Dispatcher struct {
	searcher    Searcher
	popularTerm string
	log         logrus.FieldLogger
	metrics     *metrics.Metrics

	mu   sync.Mutex
	last map[Purpose]uint64
}

// NewDispatcher creates a dispatcher that runs lookups through s.
func NewDispatcher(s Searcher, popularTerm string, log logrus.FieldLogger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		searcher:    s,
		popularTerm: popularTerm,
		log:         log,
		metrics:     m,
		last:        make(map[Purpose]uint64),
	}
}

// Qualifies trims value and reports whether it is long enough to search.
func Qualifies(value string) (string, bool) {
	term := strings.TrimSpace(value)
	return term, utf8.RuneCountInString(term) >= MinQueryLength
}

// Popular returns the warm-up request issued on startup.
func (d *Dispatcher) Popular() Request {
	return d.next(d.popularTerm, PurposePopular)
}

// Input returns a search request for the current contents of the search
// field, or false when the input is too short. Every qualifying call
// produces a new request; nothing is debounced.
func (d *Dispatcher) Input(value string) (Request, bool) {
	term, ok := Qualifies(value)
	if !ok {
		return Request{}, false
	}
	return d.next(term, PurposeSearch), true
}

func (d *Dispatcher) next(term string, purpose Purpose) Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last[purpose]++
	return Request{Term: term, Purpose: purpose, Token: d.last[purpose]}
}

// Do runs req. Failures are logged and returned in the response.
func (d *Dispatcher) Do(ctx context.Context, req Request) Response {
	log := d.log.WithFields(logrus.Fields{
		"term":    req.Term,
		"purpose": req.Purpose,
		"token":   req.Token,
	})
	d.metrics.SearchRequests.WithLabelValues(string(req.Purpose)).Inc()

	tracks, err := d.searcher.Search(ctx, req.Term, req.Purpose)
	if err != nil {
		d.metrics.SearchFailures.WithLabelValues(string(req.Purpose)).Inc()
		log.WithError(err).Error("search failed")
		return Response{Request: req, Err: err}
	}

	log.WithField("results", len(tracks)).Debug("search completed")
	return Response{Request: req, Tracks: tracks}
}

// Fresh reports whether resp answers the last request dispatched for its
// purpose. Stale responses are counted and should be discarded.
func (d *Dispatcher) Fresh(resp Response) bool {
	d.mu.Lock()
	latest := d.last[resp.Purpose]
	d.mu.Unlock()

	if resp.Token == latest {
		return true
	}
	d.metrics.StaleResponses.WithLabelValues(string(resp.Purpose)).Inc()
	d.log.WithFields(logrus.Fields{
		"term":    resp.Term,
		"purpose": resp.Purpose,
		"token":   resp.Token,
		"latest":  latest,
	}).Debug("discarding stale search response")
	return false
}
