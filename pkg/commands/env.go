package commands

import (
	"github.com/rs/zerolog"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/catalog"
	"tableflip.dev/readlog/pkg/config"
	"tableflip.dev/readlog/pkg/logging"
	"tableflip.dev/readlog/pkg/store"
)

// env is what a command needs to run: config, logger, store and catalog.
type env struct {
	cfg         *config.Config
	log         zerolog.Logger
	persistence store.Persistence
	catalog     *catalog.Client

	closers []func() error
}

// loadEnv reads the config and opens the store. When tui is set, logs
// meant for the terminal are dropped so they do not tear the screen.
func loadEnv(tui bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	lc := logs.Apply(cfg.Logging())
	if tui && (lc.Output == "" || lc.Output == "stderr" || lc.Output == "stdout") {
		lc.Output = "discard"
	}
	log, closeLog := logging.New(lc)

	e := &env{cfg: cfg, log: log, closers: []func() error{closeLog}}

	p, err := store.Load(cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.persistence = p
	e.closers = append([]func() error{p.Close}, e.closers...)

	e.catalog = catalog.New(
		catalog.WithBaseURL(cfg.Catalog.URL),
		catalog.WithLanguage(cfg.Catalog.Lang),
		catalog.WithTimeout(cfg.Catalog.Timeout),
		catalog.WithRateLimit(cfg.Catalog.RPS),
		catalog.WithUserAgent(cfg.Catalog.UserAgent),
		catalog.WithLogger(log.With().Str("component", "catalog").Logger()),
	)

	log.Debug().
		Str("store", cfg.BasePath()).
		Str("driver", cfg.Driver()).
		Str("config", cfg.File).
		Msg("environment loaded")
	return e, nil
}

func (e *env) service() *app.Service {
	return &app.Service{
		Persistence: e.persistence,
		Catalog:     e.catalog,
		Logger:      e.log,
		Debounce:    e.cfg.Search.Debounce,
		MinQuery:    e.cfg.Search.MinQuery,
	}
}

func (e *env) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			e.log.Warn().Err(err).Msg("close")
		}
	}
}
