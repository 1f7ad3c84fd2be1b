package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/readlog/pkg/commands/options"
	"tableflip.dev/readlog/pkg/runner/search"
)

func addSearch(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var query string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the book catalog.",
		Example: `
readlog search война и мир
readlog search --json dostoevsky
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) < 1 {
				return errors.New("requires a query")
			}
			query = strings.Join(args, " ")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := search.Search{
				Query:    query,
				ShowID:   io.ShowID,
				JSON:     output.JSON,
				MinQuery: e.cfg.Search.MinQuery,
				Catalog:  e.catalog,
				Logger:   e.log,
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
