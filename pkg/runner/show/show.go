package show

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/printers"
	"tableflip.dev/readlog/pkg/store"
)

// Show prints one saved book with metadata from the catalog.
type Show struct {
	ID     int64
	ShowID bool
	JSON   bool
	Out    io.Writer

	Persistence store.Persistence
	Catalog     app.Searcher
	Logger      zerolog.Logger
}

type detail struct {
	*book.Book
	Metadata *book.Candidate `json:"metadata,omitempty"`
}

func (n *Show) Do(ctx context.Context) error {
	svc := &app.Service{Persistence: n.Persistence, Catalog: n.Catalog, Logger: n.Logger}
	dv, err := svc.OpenDetail(ctx, n.ID, app.NopNavigator{})
	if err != nil {
		return err
	}

	var meta *book.Candidate
	if c, ok := dv.Metadata(); ok {
		meta = &c
	}

	if n.JSON {
		return printers.JSON(n.Out, detail{Book: dv.Book(), Metadata: meta})
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.NewLine()
	pp.Detail(dv.Book(), meta)
	return nil
}
