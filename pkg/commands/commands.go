package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/readlog/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
	logs   = &options.LogOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "readlog",
		Short: base.Wrap80("Keep a log of the books you read, rated from 0 to 10."),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A .env file is optional.
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	options.AddLogArgs(cmd, logs)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addList(topLevel)
	addSearch(topLevel)
	addAdd(topLevel)
	addShow(topLevel)
	addRate(topLevel)
	addDelete(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
	addUpgrade(topLevel)
}
