package teaui

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/store"
)

type memoryPersistence struct {
	mu       sync.Mutex
	seq      int64
	books    map[int64]*book.Book
	writeErr error
}

func newMemoryPersistence(titles ...string) *memoryPersistence {
	mp := &memoryPersistence{books: make(map[int64]*book.Book)}
	for i, title := range titles {
		mp.seq++
		mp.books[mp.seq] = &book.Book{ID: mp.seq, Title: title, Rating: i}
	}
	return mp
}

func (m *memoryPersistence) EnsureSchema(context.Context) error { return nil }

func (m *memoryPersistence) Insert(_ context.Context, title string, rating int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.seq++
	m.books[m.seq] = &book.Book{ID: m.seq, Title: title, Rating: rating}
	return m.seq, nil
}

func (m *memoryPersistence) ListAll(context.Context) ([]*book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*book.Book, 0, len(m.books))
	for _, b := range m.books {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryPersistence) Get(_ context.Context, id int64) (*book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *memoryPersistence) UpdateRating(_ context.Context, id int64, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if b, ok := m.books[id]; ok {
		b.Rating = rating
	}
	return nil
}

func (m *memoryPersistence) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.books, id)
	return nil
}

func (m *memoryPersistence) Watch(context.Context) (<-chan store.Event, error) { return nil, nil }

func (m *memoryPersistence) Close() error { return nil }

type staticCatalog map[string][]book.Candidate

func (c staticCatalog) Search(_ context.Context, q string) []book.Candidate {
	return c[q]
}

func (c staticCatalog) SearchByTitle(_ context.Context, title string) (book.Candidate, bool) {
	res := c["intitle:"+title]
	if len(res) == 0 {
		return book.Candidate{}, false
	}
	return res[0], true
}

type harness struct {
	t      *testing.T
	m      *Model
	posted chan tea.Msg
}

func newHarness(t *testing.T, mp *memoryPersistence, cat app.Searcher) *harness {
	t.Helper()
	return newServiceHarness(t, &app.Service{Persistence: mp, Catalog: cat, MinQuery: app.DefaultMinQuery})
}

func newServiceHarness(t *testing.T, svc *app.Service) *harness {
	t.Helper()
	h := &harness{t: t, m: New(svc), posted: make(chan tea.Msg, 32)}
	h.m.send = func(msg tea.Msg) { h.posted <- msg }
	t.Cleanup(h.m.shutdown)
	h.run(h.m.Init())
	return h
}

// view renders the model without styling so tests can match on text.
func (h *harness) view() string {
	return ansi.Strip(h.m.View())
}

// run executes cmd and feeds the resulting messages back into the model.
// Commands that do not finish quickly (cursor blink, watch) are dropped.
func (h *harness) run(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 100; steps++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		done := make(chan tea.Msg, 1)
		go func() { done <- c() }()
		var msg tea.Msg
		select {
		case msg = <-done:
		case <-time.After(50 * time.Millisecond):
			continue
		}
		switch msg := msg.(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := h.m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func (h *harness) key(msgs ...tea.KeyPressMsg) {
	for _, msg := range msgs {
		_, cmd := h.m.Update(msg)
		h.run(cmd)
	}
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.key(tea.KeyPressMsg{Text: string(r), Code: r})
	}
}

// await feeds posted messages into the model until cond holds.
func (h *harness) await(what string, cond func() bool) {
	h.t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case msg := <-h.posted:
			_, cmd := h.m.Update(msg)
			h.run(cmd)
		case <-deadline:
			h.t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func TestInitLoadsLibrary(t *testing.T) {
	h := newHarness(t, newMemoryPersistence("Война и мир", "Бесы"), nil)

	if got := len(h.m.libList.Items()); got != 2 {
		t.Fatalf("expected 2 books in list, got %d", got)
	}
	view := h.view()
	for _, want := range []string{"Library", "Война и мир", "Бесы"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestEmptyLibraryHint(t *testing.T) {
	h := newHarness(t, newMemoryPersistence(), nil)
	if !strings.Contains(h.view(), "No books yet") {
		t.Fatalf("expected empty hint, got:\n%s", h.view())
	}
}

func TestTabTogglesSearch(t *testing.T) {
	h := newHarness(t, newMemoryPersistence(), nil)

	h.key(tea.KeyPressMsg{Code: tea.KeyTab})
	if h.m.screen != screenSearch {
		t.Fatalf("expected search screen, got %s", h.m.screen)
	}
	if view := h.view(); !strings.Contains(view, "Search:") {
		t.Fatalf("expected search prompt in view:\n%s", view)
	}
	h.key(tea.KeyPressMsg{Code: tea.KeyTab})
	if h.m.screen != screenLibrary {
		t.Fatalf("expected library screen, got %s", h.m.screen)
	}
}

func TestSearchRateAndSave(t *testing.T) {
	mp := newMemoryPersistence()
	cat := staticCatalog{
		"Вой": {book.NewCandidate("wp1", "Война и мир", []string{"Лев Толстой"}, "")},
	}
	h := newHarness(t, mp, cat)

	h.key(tea.KeyPressMsg{Code: tea.KeyTab})
	h.typeText("Вой")
	h.await("search results", func() bool {
		return h.m.searchSnap.State == app.SearchResults && len(h.m.results.Items()) == 1
	})

	h.key(tea.KeyPressMsg{Code: tea.KeyEnter})
	if h.m.searchSnap.State != app.SearchRating {
		t.Fatalf("expected rating state, got %s", h.m.searchSnap.State)
	}
	h.key(tea.KeyPressMsg{Text: "9", Code: '9'})
	if got := h.m.searchSnap.Selection.Rating; got != 9 {
		t.Fatalf("expected rating 9, got %d", got)
	}
	h.key(tea.KeyPressMsg{Code: tea.KeyEnter})
	h.await("library after save", func() bool {
		return h.m.screen == screenLibrary && len(h.m.libList.Items()) == 1
	})

	all, _ := mp.ListAll(context.Background())
	want := book.Book{ID: 1, Title: "Война и мир", Rating: 9}
	if len(all) != 1 || *all[0] != want {
		t.Fatalf("got %+v, want %+v", all, want)
	}
	if !strings.Contains(h.m.status, "Saved Война и мир") {
		t.Fatalf("unexpected status %q", h.m.status)
	}
}

func TestSearchShortQueryStaysIdle(t *testing.T) {
	h := newHarness(t, newMemoryPersistence(), staticCatalog{})
	h.key(tea.KeyPressMsg{Code: tea.KeyTab})
	h.typeText("ab")
	time.Sleep(20 * time.Millisecond)
	if h.m.search.Snapshot().State != app.SearchIdle {
		t.Fatalf("expected idle session")
	}
	if view := h.view(); !strings.Contains(view, "at least 3 characters") {
		t.Fatalf("expected idle hint:\n%s", view)
	}
}

func TestSearchIdleHintFollowsMinQuery(t *testing.T) {
	svc := &app.Service{Persistence: newMemoryPersistence(), Catalog: staticCatalog{}, MinQuery: 5}
	h := newServiceHarness(t, svc)
	h.key(tea.KeyPressMsg{Code: tea.KeyTab})
	if view := h.view(); !strings.Contains(view, "at least 5 characters") {
		t.Fatalf("expected hint for 5 characters:\n%s", view)
	}
}

func TestActiveTabRendersPlain(t *testing.T) {
	h := newHarness(t, newMemoryPersistence(), nil)
	tabs := ansi.Strip(h.m.tabsView())
	if !strings.Contains(tabs, "Library") || !strings.Contains(tabs, "Add book") {
		t.Fatalf("unexpected tabs %q", tabs)
	}
}

func TestSaveFailureShowsError(t *testing.T) {
	mp := newMemoryPersistence()
	mp.writeErr = &store.Error{Op: "insert", Err: errors.New("read-only file system")}
	cat := staticCatalog{"Бесы": {book.NewCandidate("b1", "Бесы", nil, "")}}
	h := newHarness(t, mp, cat)

	h.key(tea.KeyPressMsg{Code: tea.KeyTab})
	h.typeText("Бесы")
	h.await("search results", func() bool { return len(h.m.results.Items()) == 1 })
	h.key(tea.KeyPressMsg{Code: tea.KeyEnter}, tea.KeyPressMsg{Code: tea.KeyEnter})

	if !h.m.statusErr || !strings.Contains(h.m.status, "read-only file system") {
		t.Fatalf("expected error status, got %q", h.m.status)
	}
	if h.m.screen != screenSearch || h.m.search.Snapshot().State != app.SearchRating {
		t.Fatalf("expected to stay on rating picker")
	}
}

func TestDetailRateAndDelete(t *testing.T) {
	mp := newMemoryPersistence("Война и мир")
	_ = mp.UpdateRating(context.Background(), 1, 9)
	h := newHarness(t, mp, staticCatalog{
		"intitle:Война и мир": {book.NewCandidate("wp1", "Война и мир", []string{"Лев Толстой"}, "Роман-эпопея")},
	})

	h.key(tea.KeyPressMsg{Code: tea.KeyEnter})
	h.await("detail screen", func() bool { return h.m.screen == screenDetail && h.m.detail != nil })
	view := h.view()
	for _, want := range []string{"Лев Толстой", "9/10", "Роман-эпопея"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in detail view:\n%s", want, view)
		}
	}

	h.key(tea.KeyPressMsg{Text: "r", Code: 'r'}, tea.KeyPressMsg{Code: tea.KeyRight}, tea.KeyPressMsg{Code: tea.KeyEnter})
	if h.m.status != "Rating updated" {
		t.Fatalf("unexpected status %q", h.m.status)
	}
	if b, _ := mp.Get(context.Background(), 1); b.Rating != 10 {
		t.Fatalf("expected rating 10 stored, got %d", b.Rating)
	}

	h.key(tea.KeyPressMsg{Text: "d", Code: 'd'})
	h.await("library after delete", func() bool {
		return h.m.screen == screenLibrary && len(h.m.libList.Items()) == 0
	})
	if b, _ := mp.Get(context.Background(), 1); b != nil {
		t.Fatalf("expected book deleted, got %+v", b)
	}
}

func TestPickerKey(t *testing.T) {
	tests := []struct {
		key     string
		current int
		want    int
		ok      bool
	}{
		{"left", 5, 4, true},
		{"left", 0, 0, true},
		{"right", 10, 10, true},
		{"right", 3, 4, true},
		{"7", 1, 7, true},
		{"end", 2, 10, true},
		{"x", 3, 3, false},
	}
	for _, tt := range tests {
		got, ok := pickerKey(tt.key, tt.current)
		if got != tt.want || ok != tt.ok {
			t.Errorf("pickerKey(%q, %d) = %d, %v; want %d, %v", tt.key, tt.current, got, ok, tt.want, tt.ok)
		}
	}
}
