package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/store"
)

var (
	ErrNoPersistence = errors.New("app: no persistence configured")
	// ErrNotInStore is returned when a detail view is opened for an id the
	// store does not hold.
	ErrNotInStore    = errors.New("app: book not in store")
	ErrInvalidState  = errors.New("app: operation not valid in current state")
	ErrNoSelection   = errors.New("app: no such candidate")
	ErrUnknownBook   = errors.New("app: book not in library view")
	ErrSessionClosed = errors.New("app: session closed")
)

const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultMinQuery = 3
)

// Searcher is the remote catalog as the controllers see it.
type Searcher interface {
	Search(ctx context.Context, query string) []book.Candidate
	SearchByTitle(ctx context.Context, title string) (book.Candidate, bool)
}

// Navigator moves between the library, search and detail screens. The
// presentation layer implements it.
type Navigator interface {
	OpenLibrary()
	OpenSearch()
	OpenDetail(id int64)
}

// NopNavigator ignores navigation requests.
type NopNavigator struct{}

func (NopNavigator) OpenLibrary() {}

func (NopNavigator) OpenSearch() {}

func (NopNavigator) OpenDetail(int64) {}

// Service wires the store and the catalog into the screen controllers so the
// TUI and the CLI share one set of rules.
type Service struct {
	Persistence store.Persistence
	Catalog     Searcher
	Logger      zerolog.Logger

	// Debounce is the quiet period before a typed query is searched.
	Debounce time.Duration
	// MinQuery is the minimum query length, in characters.
	MinQuery int
}

// OpenLibrary mounts and activates a library view.
func (s *Service) OpenLibrary(ctx context.Context, nav Navigator) (*LibraryView, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	lv := newLibraryView(s.Persistence, navOrNop(nav), s.Logger)
	if err := lv.Mount(ctx); err != nil {
		return lv, err
	}
	if _, err := lv.Activate(ctx); err != nil {
		return lv, err
	}
	return lv, nil
}

// OpenSearch starts a search session. Close it when the screen goes away.
func (s *Service) OpenSearch(nav Navigator) *SearchSession {
	debounce := s.Debounce
	if debounce < 0 {
		debounce = 0
	}
	minQuery := s.MinQuery
	if minQuery <= 0 {
		minQuery = DefaultMinQuery
	}
	return newSearchSession(s.Persistence, s.Catalog, navOrNop(nav), s.Logger, debounce, minQuery)
}

// OpenDetail loads the book with id into a detail view.
func (s *Service) OpenDetail(ctx context.Context, id int64, nav Navigator) (*DetailView, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	dv := newDetailView(s.Persistence, s.Catalog, navOrNop(nav), s.Logger)
	if err := dv.Load(ctx, id); err != nil {
		return nil, err
	}
	return dv, nil
}

// Books lists every saved book ordered by id.
func (s *Service) Books(ctx context.Context) ([]*book.Book, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	if err := s.Persistence.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return s.Persistence.ListAll(ctx)
}

// Watch subscribes to store change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

func navOrNop(nav Navigator) Navigator {
	if nav == nil {
		return NopNavigator{}
	}
	return nav
}

func notInStore(id int64) error {
	return fmt.Errorf("%w: id %d", ErrNotInStore, id)
}
