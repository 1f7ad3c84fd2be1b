// Package store is the local library store: durable storage of saved books
// with schema creation and CRUD. Two backends exist, diskv (default) and
// sqlite; both serialize writes and make every write a single atomic unit.
package store

import (
	"context"
	"fmt"

	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/config"
)

// Persistence defines the persistence contract for saved books.
type Persistence interface {
	// EnsureSchema creates the books table if it is absent. Idempotent.
	EnsureSchema(ctx context.Context) error
	// Insert appends a book and returns its id. Ids are strictly increasing
	// and never reused. Titles are not unique.
	Insert(ctx context.Context, title string, rating int) (int64, error)
	// ListAll returns every book ordered by id.
	ListAll(ctx context.Context) ([]*book.Book, error)
	// Get returns nil, nil when no book has the id.
	Get(ctx context.Context, id int64) (*book.Book, error)
	// UpdateRating is a no-op when the id does not exist.
	UpdateRating(ctx context.Context, id int64, rating int) error
	// Delete is a no-op when the id does not exist.
	Delete(ctx context.Context, id int64) error
	// Watch streams change notifications until ctx is cancelled.
	Watch(ctx context.Context) (<-chan Event, error)
	Close() error
}

// Load opens the store described by cfg. A nil cfg loads the readlog config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	var (
		p   Persistence
		err error
	)
	switch cfg.Driver() {
	case config.DriverDiskv, "":
		p, err = openDiskv(cfg.BasePath())
	case config.DriverSQLite:
		p, err = openSQLite(cfg.BasePath())
	default:
		err = &Error{Op: "load", Err: fmt.Errorf("unknown driver %q", cfg.Driver())}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
