package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/readlog/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the library and where it is stored.",
		Example: `
readlog info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()
			s := info.Info{
				Config:      e.cfg,
				Persistence: e.persistence,
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
