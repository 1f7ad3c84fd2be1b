package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/readlog/pkg/book"
)

const (
	booksBucket = "books"
	metaBucket  = "meta"
	tempDir     = ".tmp"

	sequenceKey   = metaBucket + "-sequence"
	schemaKey     = metaBucket + "-schema"
	schemaVersion = "1"

	lockFile  = "lock"
	lockRetry = 10 * time.Millisecond
)

func openDiskv(basePath string) (*persistence, error) {
	if basePath == "" {
		return nil, &Error{Op: "open", Err: errors.New("base path unknown")}
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		TempDir:           filepath.Join(basePath, tempDir),
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		// No cache: another readlog process may write the same files and
		// every activation must see them.
		CacheSizeMax: 0,
	}),
		basePath: basePath,
		flock:    flock.New(filepath.Join(basePath, metaBucket, lockFile)),
	}, nil
}

// persistence stores one JSON file per book under <base>/books and keeps the
// id sequence in <base>/meta/sequence. Files are replaced by atomic rename.
type persistence struct {
	d        *diskv.Diskv
	basePath string

	// mu serializes writers in this process and flock across processes
	// sharing basePath. A write holds both for exactly one operation.
	mu    sync.Mutex
	flock *flock.Flock
}

func (p *persistence) EnsureSchema(ctx context.Context) error {
	for _, dir := range []string{booksBucket, metaBucket, tempDir} {
		if err := os.MkdirAll(filepath.Join(p.basePath, dir), 0o755); err != nil {
			return wrap("ensure schema", err)
		}
	}
	return wrap("ensure schema", p.locked(ctx, func() error {
		if p.d.Has(schemaKey) {
			return nil
		}
		return p.write(schemaKey, []byte(schemaVersion))
	}))
}

func (p *persistence) Insert(ctx context.Context, title string, rating int) (int64, error) {
	var id int64
	err := p.locked(ctx, func() error {
		last, err := p.lastID()
		if err != nil {
			return err
		}
		id = last + 1

		// The sequence is persisted first: a crash between the two writes
		// leaves a gap, never a reused id.
		if err := p.write(sequenceKey, []byte(strconv.FormatInt(id, 10))); err != nil {
			return err
		}
		b := book.New(title, rating)
		b.ID = id
		data, err := json.Marshal(b)
		if err != nil {
			return err
		}
		return p.write(toKey(id), data)
	})
	if err != nil {
		return 0, wrap("insert", err)
	}
	return id, nil
}

func (p *persistence) ListAll(ctx context.Context) ([]*book.Book, error) {
	all := make([]*book.Book, 0)
	for key := range p.d.KeysPrefix(booksBucket+"-", ctx.Done()) {
		b, err := p.read(key)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// Deleted between listing and reading.
				continue
			}
			return nil, wrap("list", err)
		}
		all = append(all, b)
	}
	if err := ctx.Err(); err != nil {
		return nil, wrap("list", err)
	}
	sortBooks(all)
	return all, nil
}

func (p *persistence) Get(_ context.Context, id int64) (*book.Book, error) {
	b, err := p.read(toKey(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, wrap("get", err)
	}
	return b, nil
}

func (p *persistence) UpdateRating(ctx context.Context, id int64, rating int) error {
	return wrap("update rating", p.locked(ctx, func() error {
		key := toKey(id)
		b, err := p.read(key)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		b.Rating = rating
		data, err := json.Marshal(b)
		if err != nil {
			return err
		}
		return p.write(key, data)
	}))
}

func (p *persistence) Delete(ctx context.Context, id int64) error {
	return wrap("delete", p.locked(ctx, func() error {
		key := toKey(id)
		if !p.d.Has(key) {
			return nil
		}
		if err := p.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}))
}

// locked runs fn holding the write lock. Waiting for another process
// honors ctx; once fn starts it runs to completion.
func (p *persistence) locked(ctx context.Context, fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(p.basePath, metaBucket), 0o755); err != nil {
		return err
	}
	ok, err := p.flock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock %s: %w", p.flock.Path(), err)
	}
	if !ok {
		return fmt.Errorf("lock %s: not acquired", p.flock.Path())
	}
	defer func() { _ = p.flock.Unlock() }()
	return fn()
}

func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	bucket := filepath.Join(p.basePath, booksBucket)
	if err := os.MkdirAll(bucket, 0o755); err != nil {
		return nil, wrap("watch", fmt.Errorf("ensure books bucket: %w", err))
	}
	return watchDirs(ctx, []string{bucket}, func(string) bool { return true })
}

func (p *persistence) Close() error {
	return wrap("close", p.flock.Close())
}

func (p *persistence) write(key string, data []byte) error {
	return p.d.WriteStream(key, bytes.NewReader(data), true)
}

func (p *persistence) read(key string) (*book.Book, error) {
	val, err := p.d.Read(key)
	if err != nil {
		return nil, err
	}
	b := &book.Book{}
	if err := json.Unmarshal(val, b); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if id, ok := fromKey(key); ok {
		b.ID = id
	}
	return b, nil
}

// lastID is the highest id ever assigned: the stored sequence, or the
// largest id on disk if the sequence file was lost.
func (p *persistence) lastID() (int64, error) {
	var last int64
	if p.d.Has(sequenceKey) {
		val, err := p.d.Read(sequenceKey)
		if err != nil {
			return 0, err
		}
		last, err = strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt sequence: %w", err)
		}
	}
	for key := range p.d.KeysPrefix(booksBucket+"-", nil) {
		if id, ok := fromKey(key); ok && id > last {
			last = id
		}
	}
	return last, nil
}

func sortBooks(books []*book.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].ID < books[j].ID
	})
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `books-<zero padded id>` so file names sort by id.
func toKey(id int64) string {
	return fmt.Sprintf("%s-%019d", booksBucket, id)
}

func fromKey(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, booksBucket+"-")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
