package add

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/printers"
	"tableflip.dev/readlog/pkg/store"
)

var ErrNoCandidates = errors.New("no books found")

// Add searches the catalog, picks one result and saves it with a rating.
type Add struct {
	Query    string
	Rating   int
	Pick     int
	JSON     bool
	MinQuery int
	Out      io.Writer

	Persistence store.Persistence
	Catalog     app.Searcher
	Logger      zerolog.Logger
}

func (n *Add) Do(ctx context.Context) error {
	svc := &app.Service{
		Persistence: n.Persistence,
		Catalog:     n.Catalog,
		Logger:      n.Logger,
		MinQuery:    n.MinQuery,
	}
	lv, err := svc.OpenLibrary(ctx, app.NopNavigator{})
	if err != nil {
		return err
	}

	session := svc.OpenSearch(app.NopNavigator{})
	defer session.Close()

	candidates, err := session.Submit(ctx, n.Query)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("%w for %q", ErrNoCandidates, n.Query)
	}
	pick := n.Pick
	if pick < 1 {
		pick = 1
	}
	if pick > len(candidates) {
		return fmt.Errorf("pick %d out of range, %d books found for %q", pick, len(candidates), n.Query)
	}

	if err := session.Select(candidates[pick-1].ExternalID); err != nil {
		return err
	}
	if err := session.SetRating(n.Rating); err != nil {
		return err
	}
	id, err := session.Commit(ctx)
	if err != nil {
		return err
	}

	saved := &book.Book{ID: id, Title: candidates[pick-1].DisplayTitle, Rating: book.ClampRating(n.Rating)}
	if n.JSON {
		return printers.JSON(n.Out, saved)
	}

	books, err := lv.Activate(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	pp.NewLine()
	pp.TitleWithCount("Library", len(books))
	pp.Library(books...)
	return nil
}
