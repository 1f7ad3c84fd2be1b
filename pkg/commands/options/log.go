package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/readlog/pkg/logging"
)

// LogOptions override the log settings from the config file.
type LogOptions struct {
	Level   string
	Format  string
	Output  string
	Verbose bool
}

func AddLogArgs(cmd *cobra.Command, o *LogOptions) {
	cmd.PersistentFlags().StringVar(&o.Level, "log-level", "",
		"Log level: trace, debug, info, warn, error or disabled.")
	cmd.PersistentFlags().StringVar(&o.Format, "log-format", "",
		"Log format: console or json.")
	cmd.PersistentFlags().StringVar(&o.Output, "log-output", "",
		"Log destination: stderr, stdout, discard or a file path.")
	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false,
		"Shorthand for --log-level=debug.")
}

// Apply returns a copy of cfg with the flags that were set laid over it.
func (o *LogOptions) Apply(in *logging.Config) *logging.Config {
	cfg := *in
	if o.Level != "" {
		cfg.Level = o.Level
	}
	if o.Verbose && o.Level == "" {
		cfg.Level = "debug"
	}
	if o.Format != "" {
		cfg.Format = o.Format
	}
	if o.Output != "" {
		cfg.Output = o.Output
	}
	return &cfg
}
