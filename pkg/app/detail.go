package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/store"
)

// DetailState is the phase of a detail view.
type DetailState int

const (
	DetailLoading DetailState = iota
	DetailLoaded
	DetailEditingRating
	DetailDeleted
)

func (s DetailState) String() string {
	switch s {
	case DetailLoading:
		return "loading"
	case DetailLoaded:
		return "loaded"
	case DetailEditingRating:
		return "editing"
	case DetailDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// DetailView shows one saved book with catalog metadata and edits its
// rating or deletes it.
type DetailView struct {
	persistence store.Persistence
	catalog     Searcher
	nav         Navigator
	log         zerolog.Logger

	mu       sync.Mutex
	state    DetailState
	book     *book.Book
	metadata *book.Candidate

	// selection is set only while the rating is being edited.
	selection *book.RatingSelection
}

func newDetailView(p store.Persistence, c Searcher, nav Navigator, log zerolog.Logger) *DetailView {
	return &DetailView{persistence: p, catalog: c, nav: nav, log: log}
}

// Load reads the book with id and looks its title up in the catalog. The
// lookup only adds metadata; a miss leaves Metadata empty.
func (v *DetailView) Load(ctx context.Context, id int64) error {
	v.mu.Lock()
	if v.state == DetailDeleted || v.state == DetailEditingRating {
		v.mu.Unlock()
		return ErrInvalidState
	}
	prev := v.state
	v.state = DetailLoading
	v.mu.Unlock()

	b, err := v.persistence.Get(ctx, id)
	if err == nil && b == nil {
		err = notInStore(id)
	}
	if err != nil {
		v.log.Error().Err(err).Int64("id", id).Msg("load book")
		v.mu.Lock()
		v.state = prev
		v.mu.Unlock()
		return err
	}

	var metadata *book.Candidate
	if v.catalog != nil {
		if c, ok := v.catalog.SearchByTitle(ctx, b.Title); ok {
			metadata = &c
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.book = b
	v.metadata = metadata
	v.selection = nil
	v.state = DetailLoaded
	return nil
}

func (v *DetailView) State() DetailState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Book returns a copy of the loaded record, or nil.
func (v *DetailView) Book() *book.Book {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.book == nil {
		return nil
	}
	cp := *v.book
	return &cp
}

// Metadata returns the catalog match for the title, if one was found.
func (v *DetailView) Metadata() (book.Candidate, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.metadata == nil {
		return book.Candidate{}, false
	}
	return *v.metadata, true
}

// PendingRating is the rating being edited. Outside an edit it is the
// saved rating.
func (v *DetailView) PendingRating() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.selection != nil:
		return v.selection.Rating
	case v.book != nil:
		return v.book.Rating
	}
	return 0
}

// Selection returns a copy of the edit in progress, or nil.
func (v *DetailView) Selection() *book.RatingSelection {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selection == nil {
		return nil
	}
	b := *v.selection.Book
	return &book.RatingSelection{Book: &b, Rating: v.selection.Rating}
}

// BeginEdit starts editing the rating from its current value.
func (v *DetailView) BeginEdit() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != DetailLoaded {
		return ErrInvalidState
	}
	v.selection = &book.RatingSelection{Book: v.book, Rating: v.book.Rating}
	v.state = DetailEditingRating
	return nil
}

func (v *DetailView) SetPendingRating(r int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != DetailEditingRating {
		return ErrInvalidState
	}
	v.selection.Rating = book.ClampRating(r)
	return nil
}

// SaveRating writes the pending rating. On failure the view keeps editing.
func (v *DetailView) SaveRating(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != DetailEditingRating {
		return ErrInvalidState
	}
	sel := v.selection
	if err := v.persistence.UpdateRating(ctx, sel.Book.ID, sel.Rating); err != nil {
		v.log.Error().Err(err).Int64("id", sel.Book.ID).Msg("update rating")
		return err
	}
	v.log.Info().Int64("id", sel.Book.ID).Int("rating", sel.Rating).Msg("rating updated")
	sel.Book.Rating = sel.Rating
	v.selection = nil
	v.state = DetailLoaded
	return nil
}

func (v *DetailView) CancelEdit() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != DetailEditingRating {
		return ErrInvalidState
	}
	v.selection = nil
	v.state = DetailLoaded
	return nil
}

// Delete removes the book and navigates to the library.
func (v *DetailView) Delete(ctx context.Context) error {
	v.mu.Lock()
	if v.state != DetailLoaded {
		v.mu.Unlock()
		return ErrInvalidState
	}
	id := v.book.ID
	if err := v.persistence.Delete(ctx, id); err != nil {
		v.mu.Unlock()
		v.log.Error().Err(err).Int64("id", id).Msg("delete book")
		return err
	}
	v.log.Info().Int64("id", id).Msg("book deleted")
	v.book = nil
	v.metadata = nil
	v.state = DetailDeleted
	v.mu.Unlock()

	v.nav.OpenLibrary()
	return nil
}
