package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/readlog/pkg/commands/options"
	"tableflip.dev/readlog/pkg/runner/rate"
)

func addRate(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	ro := &options.RatingOptions{Pick: 1}

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Change the rating of a saved book.",
		Example: `
readlog rate <book id> <rating>
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) != 2 {
				return errors.New("requires a book id and a rating")
			}
			if err := io.ParseID(args[0]); err != nil {
				return err
			}
			return ro.ParseRating(args[1])
		},
		ValidArgsFunction: bookCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := rate.Rate{
				ID:          io.ID,
				Rating:      ro.Rating,
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
