package remove

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/printers"
	"tableflip.dev/readlog/pkg/store"
)

// Remove deletes a saved book.
type Remove struct {
	ID   int64
	JSON bool
	Out  io.Writer

	Persistence store.Persistence
	Logger      zerolog.Logger
}

func (n *Remove) Do(ctx context.Context) error {
	svc := &app.Service{Persistence: n.Persistence, Logger: n.Logger}
	dv, err := svc.OpenDetail(ctx, n.ID, app.NopNavigator{})
	if err != nil {
		return err
	}
	b := dv.Book()
	if err := dv.Delete(ctx); err != nil {
		return err
	}

	if n.JSON {
		return printers.JSON(n.Out, map[string]interface{}{"deleted": b})
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintf(out, "Deleted %s\n", color.New(color.Bold).Sprint(b.Title))
	return nil
}
