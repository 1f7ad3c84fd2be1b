package teaui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/book"
)

type detailLoadedMsg struct {
	id   int64
	view *app.DetailView
	err  error
}

type ratingSavedMsg struct {
	rating int
}

type bookDeletedMsg struct {
	id int64
}

func (m *Model) loadDetail(id int64) tea.Cmd {
	if m.svc == nil {
		return nil
	}
	svc, ctx, nav := m.svc, m.ctx, router{m}
	return func() tea.Msg {
		dv, err := svc.OpenDetail(ctx, id, nav)
		return detailLoadedMsg{id: id, view: dv, err: err}
	}
}

func (m *Model) handleDetailLoaded(msg detailLoadedMsg) tea.Cmd {
	// The user may have moved on before the lookup finished.
	if m.screen != screenDetail || msg.id != m.detailID {
		return nil
	}
	if msg.err != nil {
		m.setError(msg.err)
		m.screen = screenLibrary
		return m.activateLibrary()
	}
	m.detail = msg.view
	return nil
}

func (m *Model) handleDetailKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if m.detail == nil {
		if key == "esc" || key == "backspace" {
			return m.navigate(navigateMsg{to: screenLibrary})
		}
		return nil
	}
	dv, ctx := m.detail, m.ctx

	if dv.State() == app.DetailEditingRating {
		switch key {
		case "esc":
			if err := dv.CancelEdit(); err != nil {
				m.setError(err)
			}
			return nil
		case "enter":
			return func() tea.Msg {
				if err := dv.SaveRating(ctx); err != nil {
					return errMsg{err: err}
				}
				return ratingSavedMsg{rating: dv.PendingRating()}
			}
		}
		if r, ok := pickerKey(key, dv.PendingRating()); ok {
			if err := dv.SetPendingRating(r); err != nil {
				m.setError(err)
			}
		}
		return nil
	}

	switch key {
	case "esc", "backspace", "q":
		return m.navigate(navigateMsg{to: screenLibrary})
	case "r", "e", "enter":
		if err := dv.BeginEdit(); err != nil {
			m.setError(err)
		}
	case "d":
		id := m.detailID
		return func() tea.Msg {
			if err := dv.Delete(ctx); err != nil {
				return errMsg{err: err}
			}
			return bookDeletedMsg{id: id}
		}
	}
	return nil
}

func (m *Model) detailView() string {
	th := m.theme.Detail
	if m.detail == nil {
		return th.Label.Render("Loading…")
	}
	b := m.detail.Book()
	if b == nil {
		return th.Label.Render("Book deleted.")
	}

	width := m.termWidth - 8
	if width < 20 {
		width = 60
	}

	var lines []string
	lines = append(lines, th.Title.Render(b.Title), "")
	meta, hasMeta := m.detail.Metadata()
	if hasMeta && meta.AuthorLine() != "" {
		lines = append(lines, th.Label.Render("Authors  ")+meta.AuthorLine())
	}
	if m.detail.State() == app.DetailEditingRating {
		lines = append(lines, renderPicker(m.theme.Picker, "Rating", m.detail.PendingRating()))
	} else {
		lines = append(lines, th.Label.Render("Rating   ")+book.RatingString(b.Rating))
	}
	if hasMeta && strings.TrimSpace(meta.Description) != "" {
		lines = append(lines, "", th.Body.Render(wordwrap.String(meta.Description, width)))
	}
	return th.Frame.Render(strings.Join(lines, "\n"))
}
