// Package config loads readlog settings from a .readlog file, READLOG_*
// environment variables and built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/readlog/pkg/logging"
)

const (
	DriverDiskv  = "diskv"
	DriverSQLite = "sqlite"

	DefaultCatalogURL = "https://www.googleapis.com/books/v1/volumes"

	// PathEnv names an extra directory searched for the config file.
	PathEnv = "READLOG_CONFIG_PATH"
)

// Config is the resolved configuration. It satisfies store.Config.
type Config struct {
	Path      string
	StoreKind string
	File      string

	Catalog Catalog
	Search  Search
	Log     Log
}

type Catalog struct {
	URL       string
	Lang      string
	Timeout   time.Duration
	RPS       float64
	UserAgent string
}

type Search struct {
	Debounce time.Duration
	MinQuery int
}

type Log struct {
	Level  string
	Format string
	Output string
}

// BasePath is the store location with a leading ~ expanded.
func (c *Config) BasePath() string {
	p, err := homedir.Expand(c.Path)
	if err != nil {
		return c.Path
	}
	return p
}

func (c *Config) Driver() string {
	return c.StoreKind
}

// Logging returns the log settings in the form pkg/logging takes.
func (c *Config) Logging() *logging.Config {
	lc := logging.DefaultConfig()
	if c.Log.Level != "" {
		lc.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		lc.Format = c.Log.Format
	}
	if c.Log.Output != "" {
		lc.Output = c.Log.Output
	}
	return lc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", "~/.readlog.db")
	v.SetDefault("driver", DriverDiskv)
	v.SetDefault("catalog.url", DefaultCatalogURL)
	v.SetDefault("catalog.lang", "ru")
	v.SetDefault("catalog.timeout", 15*time.Second)
	v.SetDefault("catalog.rps", 0)
	v.SetDefault("catalog.user_agent", "readlog")
	v.SetDefault("search.debounce", 300*time.Millisecond)
	v.SetDefault("search.min_query", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}

// Load reads the configuration. A missing config file is fine; an unreadable
// one is an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(".readlog") // .yaml is implicit
	v.SetEnvPrefix("READLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv(PathEnv); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Path:      v.GetString("path"),
		StoreKind: strings.ToLower(strings.TrimSpace(v.GetString("driver"))),
		File:      v.ConfigFileUsed(),
		Catalog: Catalog{
			URL:       v.GetString("catalog.url"),
			Lang:      v.GetString("catalog.lang"),
			Timeout:   v.GetDuration("catalog.timeout"),
			RPS:       v.GetFloat64("catalog.rps"),
			UserAgent: v.GetString("catalog.user_agent"),
		},
		Search: Search{
			Debounce: v.GetDuration("search.debounce"),
			MinQuery: v.GetInt("search.min_query"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}
	switch cfg.StoreKind {
	case DriverDiskv, DriverSQLite:
	default:
		return nil, fmt.Errorf("config: unknown driver %q (want %q or %q)", cfg.StoreKind, DriverDiskv, DriverSQLite)
	}
	if cfg.Search.MinQuery < 1 {
		cfg.Search.MinQuery = 1
	}
	if cfg.Search.Debounce < 0 {
		cfg.Search.Debounce = 0
	}
	return cfg, nil
}
