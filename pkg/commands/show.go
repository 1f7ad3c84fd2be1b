package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/readlog/pkg/commands/options"
	"tableflip.dev/readlog/pkg/runner/show"
)

func addShow(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a saved book with details from the catalog.",
		Example: `
readlog show <book id>
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) != 1 {
				return errors.New("requires a book id")
			}
			return io.ParseID(args[0])
		},
		ValidArgsFunction: bookCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := show.Show{
				ID:          io.ID,
				ShowID:      io.ShowID,
				JSON:        output.JSON,
				Persistence: e.persistence,
				Catalog:     e.catalog,
				Logger:      e.log,
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
