// Package teaui hosts the Bubble Tea program for the readlog TUI.
package teaui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/store"
	"tableflip.dev/readlog/pkg/tui/theme"
)

type screen int

const (
	screenLibrary screen = iota
	screenSearch
	screenDetail
)

func (s screen) String() string {
	switch s {
	case screenLibrary:
		return "Library"
	case screenSearch:
		return "Add book"
	case screenDetail:
		return "Book"
	default:
		return ""
	}
}

// Model is the root Bubble Tea model. It owns one controller per screen and
// switches between them on navigation messages.
type Model struct {
	svc    *app.Service
	ctx    context.Context
	cancel context.CancelFunc
	theme  theme.Theme

	// send posts a message into the running program. Nil until Run.
	send func(tea.Msg)

	screen     screen
	termWidth  int
	termHeight int
	status     string
	statusErr  bool

	library *app.LibraryView
	libList list.Model

	search     *app.SearchSession
	searchSnap app.SearchSnapshot
	input      textinput.Model
	results    list.Model

	detail   *app.DetailView
	detailID int64

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc
}

// New creates a new UI model backed by the Service.
func New(svc *app.Service) *Model {
	th := theme.Default()

	libDel := list.NewDefaultDelegate()
	libDel.SetSpacing(0)
	libList := list.New([]list.Item{}, libDel, 40, 20)
	libList.SetShowHelp(false)
	libList.SetShowStatusBar(false)
	libList.SetShowTitle(false)
	libList.SetFilteringEnabled(false)

	resDel := list.NewDefaultDelegate()
	resDel.SetSpacing(0)
	results := list.New([]list.Item{}, resDel, 40, 16)
	results.SetShowHelp(false)
	results.SetShowStatusBar(false)
	results.SetShowTitle(false)
	results.SetFilteringEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "Title or author"
	ti.Prompt = "Search: "
	ti.CharLimit = 256

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		svc:     svc,
		ctx:     ctx,
		cancel:  cancel,
		theme:   th,
		screen:  screenLibrary,
		libList: libList,
		input:   ti,
		results: results,
	}
	if svc != nil {
		m.search = svc.OpenSearch(router{m})
		m.search.OnChange(func(app.SearchSnapshot) {
			m.post(searchChangedMsg{})
		})
	}
	return m
}

// Init mounts the library and starts watching the store.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.openLibrary(), startWatchCmd(m.ctx, m.svc))
}

// Run launches the TUI and blocks until it exits.
func Run(svc *app.Service) error {
	m := New(svc)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.send = p.Send
	defer m.shutdown()
	_, err := p.Run()
	return err
}

// post hands msg to the program without blocking the caller, which may be
// the update loop itself.
func (m *Model) post(msg tea.Msg) {
	if m.send == nil {
		return
	}
	go m.send(msg)
}

func (m *Model) shutdown() {
	m.stopWatch()
	if m.search != nil {
		m.search.Close()
	}
	m.cancel()
}

// router turns controller navigation into messages for the update loop.
type router struct {
	m *Model
}

func (r router) OpenLibrary() {
	r.m.post(navigateMsg{to: screenLibrary})
}

func (r router) OpenSearch() {
	r.m.post(navigateMsg{to: screenSearch})
}

func (r router) OpenDetail(id int64) {
	r.m.post(navigateMsg{to: screenDetail, id: id})
}

type navigateMsg struct {
	to screen
	id int64
}

type errMsg struct {
	err error
}

type statusMsg struct {
	text string
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.applySizes()
	case errMsg:
		m.setError(msg.err)
	case statusMsg:
		m.setStatus(msg.text)
	case navigateMsg:
		cmds = append(cmds, m.navigate(msg))
	case libraryLoadedMsg:
		m.handleLibraryLoaded(msg)
	case searchChangedMsg:
		m.handleSearchChanged()
	case detailLoadedMsg:
		cmds = append(cmds, m.handleDetailLoaded(msg))
	case bookSavedMsg:
		m.setStatus("Saved " + msg.title)
	case ratingSavedMsg:
		m.setStatus("Rating updated")
	case bookDeletedMsg:
		m.detail = nil
		m.setStatus("Book deleted")
	case watchStartedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		cmds = append(cmds, m.waitForWatch())
	case watchEventMsg:
		if m.screen == screenLibrary {
			cmds = append(cmds, m.activateLibrary())
		}
		cmds = append(cmds, m.waitForWatch())
	case watchStoppedMsg:
		m.stopWatch()
		if m.ctx.Err() == nil {
			cmds = append(cmds, startWatchCmd(m.ctx, m.svc))
		}
	case tea.KeyPressMsg:
		if cmd, quit := m.handleGlobalKey(msg); quit || cmd != nil {
			return m, cmd
		}
		switch m.screen {
		case screenLibrary:
			cmds = append(cmds, m.handleLibraryKey(msg))
		case screenSearch:
			cmds = append(cmds, m.handleSearchKey(msg))
		case screenDetail:
			cmds = append(cmds, m.handleDetailKey(msg))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleGlobalKey(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.shutdown()
		return tea.Quit, true
	case "tab", "shift+tab":
		if m.editing() {
			return nil, false
		}
		if m.screen == screenSearch {
			return m.navigate(navigateMsg{to: screenLibrary}), false
		}
		return m.navigate(navigateMsg{to: screenSearch}), false
	}
	return nil, false
}

// editing reports whether a rating picker owns the keyboard.
func (m *Model) editing() bool {
	switch m.screen {
	case screenSearch:
		return m.searchSnap.State == app.SearchRating
	case screenDetail:
		return m.detail != nil && m.detail.State() == app.DetailEditingRating
	}
	return false
}

func (m *Model) navigate(msg navigateMsg) tea.Cmd {
	prev := m.screen
	m.screen = msg.to
	switch msg.to {
	case screenLibrary:
		if prev == screenSearch {
			m.input.Blur()
		}
		return m.activateLibrary()
	case screenSearch:
		m.handleSearchChanged()
		if m.searchSnap.Query == "" {
			m.input.Reset()
		}
		m.input.Focus()
		return nil
	case screenDetail:
		m.detail = nil
		m.detailID = msg.id
		return m.loadDetail(msg.id)
	}
	return nil
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	if err == nil {
		return
	}
	m.status = "ERR: " + err.Error()
	m.statusErr = true
}

// applySizes recalculates list sizes based on current terminal size.
func (m *Model) applySizes() {
	if m.termWidth == 0 || m.termHeight == 0 {
		return
	}
	width := m.termWidth - 2
	if width < 20 {
		width = 20
	}
	// Leave room for tabs, status and help lines.
	height := m.termHeight - 5
	if height < 5 {
		height = 5
	}
	m.libList.SetSize(width, height)
	m.results.SetSize(width, height-2)
}

func (m *Model) View() string {
	var sections []string
	sections = append(sections, m.tabsView(), "")

	switch m.screen {
	case screenLibrary:
		sections = append(sections, m.libraryView())
	case screenSearch:
		sections = append(sections, m.searchView())
	case screenDetail:
		sections = append(sections, m.detailView())
	}

	sections = append(sections, "", m.footerView())
	return strings.Join(sections, "\n")
}

func (m *Model) tabsView() string {
	th := m.theme.Tabs
	var tabs []string
	for _, s := range []screen{screenLibrary, screenSearch} {
		if s == m.screen || (s == screenLibrary && m.screen == screenDetail) {
			tabs = append(tabs, th.Active.Render(s.String()))
		} else {
			tabs = append(tabs, th.Inactive.Render(s.String()))
		}
	}
	return strings.Join(tabs, th.Gap.Render(" │ "))
}

func (m *Model) footerView() string {
	th := m.theme.Footer
	var lines []string
	if m.status != "" {
		if m.statusErr {
			lines = append(lines, th.Error.Render(m.status))
		} else {
			lines = append(lines, th.Status.Render(m.status))
		}
	}
	lines = append(lines, th.Help.Render(m.helpText()))
	return strings.Join(lines, "\n")
}

func (m *Model) helpText() string {
	switch m.screen {
	case screenSearch:
		if m.searchSnap.State == app.SearchRating {
			return "←/→ or 0-9 rate · Enter save · Esc back to results"
		}
		return "Type to search · ↑/↓ choose · Enter rate · Tab library · ctrl+c quit"
	case screenDetail:
		if m.detail != nil && m.detail.State() == app.DetailEditingRating {
			return "←/→ or 0-9 rate · Enter save · Esc cancel"
		}
		return "r rate · d delete · Esc back · ctrl+c quit"
	default:
		return "↑/↓ move · Enter open · Tab add book · q quit"
	}
}
