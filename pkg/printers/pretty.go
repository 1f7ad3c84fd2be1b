package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/book"
)

const descriptionWidth = 72

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " book")
	default:
		_, _ = c.Fprintln(pp.out(), " books")
	}
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Library prints saved books, one row each.
func (pp *PrettyPrint) Library(books ...*book.Book) {
	if len(books) == 0 {
		pp.none()
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for _, b := range books {
		id, title, rating := b.Row()
		if pp.ShowID {
			tbl.AddRow(y.Sprint(id), title, rating)
		} else {
			tbl.AddRow(title, rating)
		}
	}
	if pp.ShowID {
		tbl.RightAlign(0)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Candidates prints numbered search results. The numbers match add --pick.
func (pp *PrettyPrint) Candidates(candidates ...book.Candidate) {
	if len(candidates) == 0 {
		pp.none()
		return
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	for i, c := range candidates {
		authors := c.AuthorLine()
		if authors == "" {
			authors = "-"
		}
		if pp.ShowID {
			tbl.AddRow(strconv.Itoa(i+1), bold.Sprint(c.DisplayTitle), faint.Sprint(authors), faint.Sprint(c.ExternalID))
		} else {
			tbl.AddRow(strconv.Itoa(i+1), bold.Sprint(c.DisplayTitle), faint.Sprint(authors))
		}
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Detail prints a saved book and, when known, its catalog metadata.
func (pp *PrettyPrint) Detail(b *book.Book, meta *book.Candidate) {
	if b == nil {
		pp.none()
		return
	}
	pp.Title(b.Title)

	label := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	if pp.ShowID {
		tbl.AddRow(label.Sprint("id"), strconv.FormatInt(b.ID, 10))
	}
	tbl.AddRow(label.Sprint("rating"), book.RatingString(b.Rating))
	if meta != nil {
		if authors := meta.AuthorLine(); authors != "" {
			tbl.AddRow(label.Sprint("authors"), authors)
		}
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)

	if meta != nil && strings.TrimSpace(meta.Description) != "" {
		pp.NewLine()
		_, _ = fmt.Fprintln(pp.out(), wordwrap.String(meta.Description, descriptionWidth))
	}
	pp.NewLine()
}

// Report prints the library grouped by rating.
func (pp *PrettyPrint) Report(res app.ReportResult) {
	pp.TitleWithCount("Library", res.Total)
	if res.Total == 0 {
		pp.none()
		return
	}
	faint := color.New(color.Faint)
	_, _ = faint.Fprintf(pp.out(), "average %.1f/%d\n\n", res.Average, book.MaxRating)

	for _, s := range res.Sections {
		pp.TitleWithCount(book.RatingString(s.Rating), len(s.Books))
		pp.Library(s.Books...)
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	if w == nil {
		w = color.Output
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
