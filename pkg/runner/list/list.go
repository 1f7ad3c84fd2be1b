package list

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/printers"
	"tableflip.dev/readlog/pkg/store"
)

// List prints every saved book.
type List struct {
	ShowID      bool
	JSON        bool
	Out         io.Writer
	Persistence store.Persistence
	Logger      zerolog.Logger
}

func (n *List) Do(ctx context.Context) error {
	svc := &app.Service{Persistence: n.Persistence, Logger: n.Logger}
	lv, err := svc.OpenLibrary(ctx, app.NopNavigator{})
	if err != nil {
		return err
	}
	books := lv.Books()

	if n.JSON {
		return printers.JSON(n.Out, books)
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.NewLine()
	pp.TitleWithCount("Library", len(books))
	pp.Library(books...)
	return nil
}
