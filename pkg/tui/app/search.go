package teaui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/book"
)

type candidateItem struct {
	candidate book.Candidate
}

func (i candidateItem) Title() string       { return i.candidate.DisplayTitle }
func (i candidateItem) Description() string { return i.candidate.AuthorLine() }
func (i candidateItem) FilterValue() string { return i.candidate.DisplayTitle }

// searchChangedMsg tells the update loop to re-read the session snapshot.
// Snapshots are read on arrival so out of order delivery cannot show an
// older state.
type searchChangedMsg struct{}

type bookSavedMsg struct {
	id    int64
	title string
}

func (m *Model) handleSearchChanged() {
	if m.search == nil {
		return
	}
	snap := m.search.Snapshot()
	resultsChanged := !sameCandidates(m.searchSnap.Candidates, snap.Candidates)
	m.searchSnap = snap
	if resultsChanged {
		items := make([]list.Item, 0, len(snap.Candidates))
		for _, c := range snap.Candidates {
			items = append(items, candidateItem{candidate: c})
		}
		m.results.SetItems(items)
		m.results.Select(0)
	}
}

func sameCandidates(a, b []book.Candidate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ExternalID != b[i].ExternalID {
			return false
		}
	}
	return true
}

func (m *Model) handleSearchKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.search == nil {
		return nil
	}
	if m.searchSnap.State == app.SearchRating {
		return m.handleSearchRatingKey(msg)
	}

	switch msg.String() {
	case "up":
		m.results.CursorUp()
		return nil
	case "down":
		m.results.CursorDown()
		return nil
	case "esc":
		return m.navigate(navigateMsg{to: screenLibrary})
	case "enter":
		it, ok := m.results.SelectedItem().(candidateItem)
		if !ok {
			return nil
		}
		if err := m.search.Select(it.candidate.ExternalID); err != nil {
			m.setError(err)
			return nil
		}
		m.handleSearchChanged()
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != before {
		if err := m.search.SetQuery(q); err != nil {
			m.setError(err)
		}
	}
	return cmd
}

func (m *Model) handleSearchRatingKey(msg tea.KeyPressMsg) tea.Cmd {
	sel := m.searchSnap.Selection
	if sel == nil {
		return nil
	}
	key := msg.String()
	switch key {
	case "esc":
		if err := m.search.CancelRating(); err != nil {
			m.setError(err)
		}
		m.handleSearchChanged()
		return nil
	case "enter":
		s, ctx, title := m.search, m.ctx, sel.Title()
		return func() tea.Msg {
			id, err := s.Commit(ctx)
			if err != nil {
				return errMsg{err: err}
			}
			return bookSavedMsg{id: id, title: title}
		}
	}
	if r, ok := pickerKey(key, sel.Rating); ok {
		if err := m.search.SetRating(r); err != nil {
			m.setError(err)
		}
		m.handleSearchChanged()
	}
	return nil
}

func (m *Model) searchView() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	snap := m.searchSnap
	switch snap.State {
	case app.SearchIdle:
		b.WriteString(m.theme.Footer.Help.Render(m.idleHint()))
	case app.SearchSearching:
		if len(snap.Candidates) == 0 {
			b.WriteString(m.theme.Footer.Help.Render("Searching…"))
		} else {
			b.WriteString(m.results.View())
		}
	case app.SearchResults:
		if len(snap.Candidates) == 0 {
			b.WriteString(m.theme.Footer.Help.Render("Nothing found."))
		} else {
			b.WriteString(m.results.View())
		}
	case app.SearchRating:
		if snap.Selection != nil {
			b.WriteString(m.theme.Detail.Title.Render(snap.Selection.Title()))
			b.WriteString("\n")
			if c := snap.Selection.Candidate; c != nil && c.AuthorLine() != "" {
				b.WriteString(m.theme.Detail.Label.Render(c.AuthorLine()))
				b.WriteString("\n")
			}
			b.WriteString("\n")
			b.WriteString(renderPicker(m.theme.Picker, "Rating", snap.Selection.Rating))
		}
	}
	return b.String()
}

func (m *Model) idleHint() string {
	n := app.DefaultMinQuery
	if m.search != nil {
		n = m.search.MinQuery()
	}
	if n == 1 {
		return "Type to search."
	}
	return fmt.Sprintf("Type at least %d characters to search.", n)
}
