package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/readlog/pkg/commands/options"
	"tableflip.dev/readlog/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	ro := &options.RatingOptions{}
	var query string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Search the catalog and save a result with a rating.",
		Example: `
readlog add --rating 9 война и мир
readlog add --rating 7 --pick 2 толстой
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) < 1 {
				return errors.New("requires a query")
			}
			query = strings.Join(args, " ")
			return ro.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := add.Add{
				Query:       query,
				Rating:      ro.Rating,
				Pick:        ro.Pick,
				JSON:        output.JSON,
				MinQuery:    e.cfg.Search.MinQuery,
				Persistence: e.persistence,
				Catalog:     e.catalog,
				Logger:      e.log,
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddRatingArgs(cmd, ro)
	options.AddPickArgs(cmd, ro)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
