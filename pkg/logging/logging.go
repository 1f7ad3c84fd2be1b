// Package logging builds the zerolog loggers used across readlog.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum level to output (debug, info, warn, error).
	Level string

	// Format is console or json.
	Format string

	// Output is stderr, stdout, discard, or a file path.
	Output string

	NoColor bool
}

// DefaultConfig returns a console logger on stderr at info level.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "console",
		Output:  "stderr",
		NoColor: termenv.EnvNoColor(),
	}
}

// New creates a logger from cfg. The returned closer releases a log file when
// Output names one; it is always safe to call.
func New(cfg *Config) (zerolog.Logger, func() error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out, closer := openOutput(cfg.Output)

	var w io.Writer = out
	if strings.ToLower(cfg.Format) != "json" {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor || !isTerminal(out),
		}
	}

	logger := zerolog.New(w).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
	return logger, closer
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func openOutput(output string) (io.Writer, func() error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stderr":
		return os.Stderr, noop
	case "stdout":
		return os.Stdout, noop
	case "discard", "none":
		return io.Discard, noop
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return os.Stderr, noop
	}
	return f, f.Close
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
