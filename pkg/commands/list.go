package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/readlog/pkg/commands/options"
	"tableflip.dev/readlog/pkg/runner/list"
)

func addList(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "get"},
		Short:   "List the books in the library.",
		Example: `
readlog list
readlog list --show-id
readlog list --json
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(false)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := list.List{
				ShowID:      io.ShowID,
				JSON:        output.JSON,
				Persistence: e.persistence,
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
