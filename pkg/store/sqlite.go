package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"tableflip.dev/readlog/pkg/book"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    rating INTEGER NOT NULL
);
`

// sqliteStore keeps books in a single SQLite table, one transaction per
// operation.
type sqliteStore struct {
	db   *sql.DB
	path string

	// mu serializes writers inside this process.
	mu sync.Mutex
}

// openSQLite opens path as a database file. A directory path gets a
// books.db file inside it.
func openSQLite(path string) (*sqliteStore, error) {
	if path == "" {
		return nil, &Error{Op: "open", Err: errors.New("database path unknown")}
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "books.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrap("open", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, wrap("open", err)
	}
	db.SetMaxOpenConns(1)
	return &sqliteStore{db: db, path: path}, nil
}

func (s *sqliteStore) EnsureSchema(ctx context.Context) error {
	return s.tx(ctx, "ensure schema", func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, schema)
		return err
	})
}

func (s *sqliteStore) Insert(ctx context.Context, title string, rating int) (int64, error) {
	var id int64
	err := s.tx(ctx, "insert", func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO books (title, rating) VALUES (?, ?)`, title, rating)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *sqliteStore) ListAll(ctx context.Context) ([]*book.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, rating FROM books ORDER BY id`)
	if err != nil {
		return nil, wrap("list", err)
	}
	defer rows.Close()

	all := make([]*book.Book, 0)
	for rows.Next() {
		b := &book.Book{}
		if err := rows.Scan(&b.ID, &b.Title, &b.Rating); err != nil {
			return nil, wrap("list", err)
		}
		all = append(all, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", err)
	}
	return all, nil
}

func (s *sqliteStore) Get(ctx context.Context, id int64) (*book.Book, error) {
	b := &book.Book{}
	err := s.db.QueryRowContext(ctx, `SELECT id, title, rating FROM books WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.Rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get", err)
	}
	return b, nil
}

func (s *sqliteStore) UpdateRating(ctx context.Context, id int64, rating int) error {
	return s.tx(ctx, "update rating", func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE books SET rating = ? WHERE id = ?`, rating, id)
		return err
	})
}

func (s *sqliteStore) Delete(ctx context.Context, id int64) error {
	return s.tx(ctx, "delete", func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
		return err
	})
}

func (s *sqliteStore) Watch(ctx context.Context) (<-chan Event, error) {
	dir := filepath.Dir(s.path)
	base := filepath.Base(s.path)
	// The database, its journal and WAL files all start with the db name.
	return watchDirs(ctx, []string{dir}, func(p string) bool {
		return strings.HasPrefix(filepath.Base(p), base)
	})
}

func (s *sqliteStore) Close() error {
	return wrap("close", s.db.Close())
}

// tx runs fn in its own transaction. Once started, a transaction is not
// cancelled by the caller's context; it commits or fails on its own.
func (s *sqliteStore) tx(ctx context.Context, op string, fn func(context.Context, *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(op, err)
	}
	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return wrap(op, err)
	}
	return wrap(op, tx.Commit())
}
