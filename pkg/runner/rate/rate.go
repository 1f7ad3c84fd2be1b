package rate

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/printers"
	"tableflip.dev/readlog/pkg/store"
)

// Rate changes the rating of a saved book.
type Rate struct {
	ID     int64
	Rating int
	JSON   bool
	Out    io.Writer

	Persistence store.Persistence
	Logger      zerolog.Logger
}

func (n *Rate) Do(ctx context.Context) error {
	svc := &app.Service{Persistence: n.Persistence, Logger: n.Logger}
	dv, err := svc.OpenDetail(ctx, n.ID, app.NopNavigator{})
	if err != nil {
		return err
	}
	if err := dv.BeginEdit(); err != nil {
		return err
	}
	if err := dv.SetPendingRating(n.Rating); err != nil {
		return err
	}
	if err := dv.SaveRating(ctx); err != nil {
		return err
	}

	b := dv.Book()
	if n.JSON {
		return printers.JSON(n.Out, b)
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintf(out, "Rating updated: %s %s\n", color.New(color.Bold).Sprint(b.Title), book.RatingString(b.Rating))
	return nil
}
