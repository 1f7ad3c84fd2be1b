package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/readlog/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
readlog ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			defer e.Close()
			i := ui.UI{Service: e.service()}
			return i.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
