package fskit

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Default driver to use (local, memory)
	Driver string `env:"FSKIT_DRIVER,default:local"`

	// Local driver configuration
	LocalRoot string `env:"FSKIT_LOCAL_ROOT,default:./storage"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
