package fskit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gobeaver/beaver-kit/config"
)

// Global instance
var (
	defaultFS   *FS
	defaultOnce sync.Once
	defaultErr  error
)

// Builder provides a way to create facades from environment variables with
// a custom prefix
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global facade using the builder's prefix
func (b *Builder) Init() error {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// Open creates a new facade using the builder's prefix
func (b *Builder) Open() (*FS, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return Open(cfg)
}

// Init initializes the global facade instance
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultFS, defaultErr = Open(cfg)
	})

	return defaultErr
}

// Open creates a facade bound to the driver named in cfg, resolved through
// the driver registry
func Open(cfg *Config) (*FS, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	d, err := CreateDriver(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	return New(d), nil
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg.Driver == "" {
		return errors.New("driver is required")
	}

	switch cfg.Driver {
	case "local":
		if cfg.LocalRoot == "" {
			return errors.New("local root is required for local driver")
		}
	case "memory":
		// No configuration beyond the driver name
	default:
		return fmt.Errorf("unknown driver: %s", cfg.Driver)
	}

	return nil
}

// Default returns the global facade, initializing it from the environment
// if needed
func Default() (*FS, error) {
	if defaultFS == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultFS, nil
}

// FromEnv creates a facade from environment variables (convenience
// constructor)
func FromEnv() (*FS, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return Open(cfg)
}

// Reset clears the global instance (for testing)
func Reset() {
	defaultFS = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}
