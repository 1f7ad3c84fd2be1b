package search

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/printers"
)

// Search looks a query up in the catalog and prints the candidates.
type Search struct {
	Query    string
	ShowID   bool
	JSON     bool
	MinQuery int
	Out      io.Writer
	Catalog  app.Searcher
	Logger   zerolog.Logger
}

func (n *Search) Do(ctx context.Context) error {
	svc := &app.Service{Catalog: n.Catalog, Logger: n.Logger, MinQuery: n.MinQuery}
	session := svc.OpenSearch(app.NopNavigator{})
	defer session.Close()

	candidates, err := session.Submit(ctx, n.Query)
	if err != nil {
		return err
	}

	if n.JSON {
		return printers.JSON(n.Out, candidates)
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.NewLine()
	pp.TitleWithCount(n.Query, len(candidates))
	pp.Candidates(candidates...)
	return nil
}
