package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/readlog/pkg/commands/options"
	"tableflip.dev/readlog/pkg/runner/remove"
)

func addDelete(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "delete",
		Aliases: []string{"rm"},
		Short:   "Delete a saved book.",
		Example: `
readlog delete <book id>
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

			s := remove.Remove{
				ID:          io.ID,
				JSON:        output.JSON,
				Persistence: e.persistence,
				Logger:      e.log,
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
