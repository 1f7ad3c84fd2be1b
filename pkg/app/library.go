package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/store"
)

// LibraryView lists the saved books. The displayed set is replaced on every
// activation.
type LibraryView struct {
	persistence store.Persistence
	nav         Navigator
	log         zerolog.Logger

	mu      sync.Mutex
	mounted bool
	books   []*book.Book
	err     error
}

func newLibraryView(p store.Persistence, nav Navigator, log zerolog.Logger) *LibraryView {
	return &LibraryView{persistence: p, nav: nav, log: log}
}

// Mount creates the schema the first time it succeeds; later calls do
// nothing.
func (v *LibraryView) Mount(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		return nil
	}
	if err := v.persistence.EnsureSchema(ctx); err != nil {
		v.log.Error().Err(err).Msg("ensure schema")
		return err
	}
	v.mounted = true
	return nil
}

// Activate reloads every book. On a read failure the view is empty and the
// error is kept for Err.
func (v *LibraryView) Activate(ctx context.Context) ([]*book.Book, error) {
	if err := v.Mount(ctx); err != nil {
		v.mu.Lock()
		v.books, v.err = nil, err
		v.mu.Unlock()
		return nil, err
	}

	books, err := v.persistence.ListAll(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.log.Error().Err(err).Msg("list books")
		v.books, v.err = nil, err
		return nil, err
	}
	v.books, v.err = books, nil
	return cloneBooks(books), nil
}

// Books returns the set loaded by the latest activation.
func (v *LibraryView) Books() []*book.Book {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneBooks(v.books)
}

// Err returns the read error of the latest activation, if any.
func (v *LibraryView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Open navigates to the detail of a displayed book.
func (v *LibraryView) Open(id int64) error {
	v.mu.Lock()
	found := false
	for _, b := range v.books {
		if b.ID == id {
			found = true
			break
		}
	}
	v.mu.Unlock()
	if !found {
		return ErrUnknownBook
	}
	v.nav.OpenDetail(id)
	return nil
}

func cloneBooks(in []*book.Book) []*book.Book {
	out := make([]*book.Book, 0, len(in))
	for _, b := range in {
		if b == nil {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out
}
