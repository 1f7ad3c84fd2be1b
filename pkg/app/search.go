package app

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/debounce"
	"tableflip.dev/readlog/pkg/store"
)

// SearchState is the phase of a search session.
type SearchState int

const (
	SearchIdle SearchState = iota
	SearchSearching
	SearchResults
	SearchRating
)

func (s SearchState) String() string {
	switch s {
	case SearchIdle:
		return "idle"
	case SearchSearching:
		return "searching"
	case SearchResults:
		return "results"
	case SearchRating:
		return "rating"
	default:
		return "unknown"
	}
}

// SearchSnapshot is a copy of the session state handed to observers.
type SearchSnapshot struct {
	State      SearchState
	Query      string
	Candidates []book.Candidate
	Selection  *book.RatingSelection
}

// SearchSession drives the add-a-book flow: type a query, pick a candidate,
// rate it and save it.
type SearchSession struct {
	persistence store.Persistence
	catalog     Searcher
	nav         Navigator
	log         zerolog.Logger
	minQuery    int
	debouncer   *debounce.Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      SearchState
	query      string
	candidates []book.Candidate
	selection  *book.RatingSelection
	closed     bool
	observers  []func(SearchSnapshot)
}

func newSearchSession(p store.Persistence, c Searcher, nav Navigator, log zerolog.Logger, delay time.Duration, minQuery int) *SearchSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchSession{
		persistence: p,
		catalog:     c,
		nav:         nav,
		log:         log,
		minQuery:    minQuery,
		debouncer:   debounce.New(delay),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// OnChange registers fn to run after every state change. fn is called
// without the session lock held and may run on any goroutine.
func (s *SearchSession) OnChange(fn func(SearchSnapshot)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.observers = append(s.observers, fn)
}

func (s *SearchSession) Snapshot() SearchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetQuery records the current input. Queries shorter than the minimum
// clear the candidates without touching the network; longer ones are
// searched once the input has been quiet for the debounce interval.
func (s *SearchSession) SetQuery(q string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state == SearchRating {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.query = q
	if !s.searchable(q) {
		s.debouncer.Cancel()
		s.candidates = nil
		s.state = SearchIdle
		notify := s.changedLocked()
		s.mu.Unlock()
		notify()
		return nil
	}
	s.mu.Unlock()

	s.debouncer.Trigger(func() {
		s.search(s.ctx, q)
	})
	return nil
}

// Submit searches q right away and returns the candidates. Short queries
// return no candidates.
func (s *SearchSession) Submit(ctx context.Context, q string) ([]book.Candidate, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.state == SearchRating {
		s.mu.Unlock()
		return nil, ErrInvalidState
	}
	s.debouncer.Cancel()
	s.query = q
	if !s.searchable(q) {
		s.candidates = nil
		s.state = SearchIdle
		notify := s.changedLocked()
		s.mu.Unlock()
		notify()
		return []book.Candidate{}, nil
	}
	s.mu.Unlock()

	s.search(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.query != q {
		// Superseded: the held candidates belong to another query.
		return []book.Candidate{}, nil
	}
	return append([]book.Candidate{}, s.candidates...), nil
}

// Select starts rating the candidate with externalID. The rating starts
// at zero.
func (s *SearchSession) Select(externalID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state == SearchRating {
		s.mu.Unlock()
		return ErrInvalidState
	}
	var picked *book.Candidate
	for i := range s.candidates {
		if s.candidates[i].ExternalID == externalID {
			c := s.candidates[i]
			picked = &c
			break
		}
	}
	if picked == nil {
		s.mu.Unlock()
		return ErrNoSelection
	}
	s.debouncer.Cancel()
	s.selection = &book.RatingSelection{Candidate: picked, Rating: book.MinRating}
	s.state = SearchRating
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// SetRating sets the pending rating, clamped to the valid range.
func (s *SearchSession) SetRating(r int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != SearchRating || s.selection == nil {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.selection.Rating = book.ClampRating(r)
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// Commit saves the selected candidate with its rating and navigates to the
// library. On a store failure the session stays in the rating state and
// the error is returned.
func (s *SearchSession) Commit(ctx context.Context) (int64, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrSessionClosed
	}
	if s.state != SearchRating || s.selection == nil {
		s.mu.Unlock()
		return 0, ErrInvalidState
	}
	if s.persistence == nil {
		s.mu.Unlock()
		return 0, ErrNoPersistence
	}
	title := s.selection.Title()
	rating := s.selection.Rating

	// The lock stays held so a second Commit cannot insert the same
	// selection twice.
	id, err := s.persistence.Insert(ctx, title, rating)
	if err != nil {
		s.mu.Unlock()
		s.log.Error().Err(err).Str("title", title).Msg("save book")
		return 0, err
	}
	s.log.Info().Int64("id", id).Str("title", title).Int("rating", rating).Msg("book saved")

	s.state = SearchIdle
	s.query = ""
	s.candidates = nil
	s.selection = nil
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()

	s.nav.OpenLibrary()
	return id, nil
}

// CancelRating drops the selection and returns to the results.
func (s *SearchSession) CancelRating() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != SearchRating {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.selection = nil
	s.state = SearchResults
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// Close abandons pending and in-flight searches. Responses that arrive
// later are dropped and observers are not called again.
func (s *SearchSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.observers = nil
	s.debouncer.Stop()
	s.cancel()
}

func (s *SearchSession) search(ctx context.Context, q string) {
	s.mu.Lock()
	if s.closed || s.query != q || s.state == SearchRating {
		s.mu.Unlock()
		return
	}
	s.state = SearchSearching
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()

	var results []book.Candidate
	if s.catalog != nil {
		results = s.catalog.Search(ctx, q)
	}
	s.log.Debug().Str("query", q).Int("results", len(results)).Msg("search finished")

	s.mu.Lock()
	// Only the response for the text currently in the input is shown.
	if s.closed || s.query != q || s.state != SearchSearching {
		s.mu.Unlock()
		s.log.Debug().Str("query", q).Msg("discarding stale results")
		return
	}
	if results == nil {
		results = []book.Candidate{}
	}
	s.candidates = results
	s.state = SearchResults
	notify = s.changedLocked()
	s.mu.Unlock()
	notify()
}

// MinQuery is the number of characters a query needs before it is searched.
func (s *SearchSession) MinQuery() int {
	return s.minQuery
}

func (s *SearchSession) searchable(q string) bool {
	return utf8.RuneCountInString(q) >= s.minQuery
}

func (s *SearchSession) snapshotLocked() SearchSnapshot {
	snap := SearchSnapshot{
		State:      s.state,
		Query:      s.query,
		Candidates: append([]book.Candidate(nil), s.candidates...),
	}
	if s.selection != nil {
		sel := *s.selection
		snap.Selection = &sel
	}
	return snap
}

// changedLocked captures the state and observers so they can be notified
// once the lock is released.
func (s *SearchSession) changedLocked() func() {
	if s.closed || len(s.observers) == 0 {
		return func() {}
	}
	snap := s.snapshotLocked()
	observers := append([]func(SearchSnapshot){}, s.observers...)
	return func() {
		for _, fn := range observers {
			fn(snap)
		}
	}
}
