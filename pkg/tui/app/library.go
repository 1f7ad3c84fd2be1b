package teaui

import (
	"context"

	"github.com/charmbracelet/bubbles/v2/list"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/store"
)

type bookItem struct {
	book *book.Book
}

func (i bookItem) Title() string       { return i.book.Title }
func (i bookItem) Description() string { return book.RatingString(i.book.Rating) }
func (i bookItem) FilterValue() string { return i.book.Title }

type libraryLoadedMsg struct {
	view  *app.LibraryView
	books []*book.Book
	err   error
}

// openLibrary mounts the library view once and activates it.
func (m *Model) openLibrary() tea.Cmd {
	if m.svc == nil {
		return nil
	}
	svc, ctx, nav := m.svc, m.ctx, router{m}
	return func() tea.Msg {
		lv, err := svc.OpenLibrary(ctx, nav)
		if lv == nil {
			return libraryLoadedMsg{err: err}
		}
		return libraryLoadedMsg{view: lv, books: lv.Books(), err: err}
	}
}

// activateLibrary reloads the book list. Every switch to the library and
// every store change goes through here.
func (m *Model) activateLibrary() tea.Cmd {
	if m.library == nil {
		return m.openLibrary()
	}
	lv, ctx := m.library, m.ctx
	return func() tea.Msg {
		books, err := lv.Activate(ctx)
		return libraryLoadedMsg{view: lv, books: books, err: err}
	}
}

func (m *Model) handleLibraryLoaded(msg libraryLoadedMsg) {
	if m.library == nil && msg.view != nil {
		m.library = msg.view
	}
	if msg.err != nil {
		m.setError(msg.err)
	}
	items := make([]list.Item, 0, len(msg.books))
	for _, b := range msg.books {
		items = append(items, bookItem{book: b})
	}
	m.libList.SetItems(items)
}

func (m *Model) selectedBook() *book.Book {
	if it, ok := m.libList.SelectedItem().(bookItem); ok {
		return it.book
	}
	return nil
}

func (m *Model) handleLibraryKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		m.shutdown()
		return tea.Quit
	case "enter":
		b := m.selectedBook()
		if b == nil || m.library == nil {
			return nil
		}
		lv, id := m.library, b.ID
		return func() tea.Msg {
			if err := lv.Open(id); err != nil {
				return errMsg{err: err}
			}
			return nil
		}
	case "r":
		return m.activateLibrary()
	}

	var cmd tea.Cmd
	m.libList, cmd = m.libList.Update(msg)
	return cmd
}

func (m *Model) libraryView() string {
	if len(m.libList.Items()) == 0 {
		return m.theme.Footer.Help.Render("No books yet. Press Tab to add one.")
	}
	return m.libList.View()
}

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event store.Event
}

type watchStoppedMsg struct{}

func startWatchCmd(parent context.Context, svc *app.Service) tea.Cmd {
	if svc == nil || svc.Persistence == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := svc.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}
