package store

import (
	"tableflip.dev/readlog/pkg/config"
)

// Config tells Load where the library lives and which backend to use.
type Config interface {
	BasePath() string
	Driver() string
}

// LoadConfig resolves the store configuration from the readlog config.
func LoadConfig() (Config, error) {
	return config.Load()
}
