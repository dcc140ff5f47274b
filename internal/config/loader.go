package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "DDRSYNC_"
	envConfig  = envPrefix + "CONFIG"
	envDotFile = envPrefix + "ENV_FILE"
)

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	path string
}

// WithFile reads the YAML file at path instead of the one named by DDRSYNC_CONFIG.
func WithFile(path string) LoadOption {
	return func(c *loadConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile, or DDRSYNC_CONFIG if set
//  3. env (prefix DDRSYNC_), after an optional dotenv file named by DDRSYNC_ENV_FILE
func Load(ctx context.Context, opts ...LoadOption) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Dotenv never overrides variables already present in the process.
	if path := os.Getenv(envDotFile); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: env file %s: %w", ErrLoadConfig, path, err)
		}
	}

	lc := loadConfig{path: os.Getenv(envConfig)}
	for _, opt := range opts {
		opt(&lc)
	}

	k := koanf.New(".")

	if lc.path != "" {
		if err := k.Load(file.Provider(lc.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, lc.path, err)
		}
	}

	// DDRSYNC_FETCH_WORKERS -> fetch_workers (flat keys, underscores preserved)
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// The control variables are not config keys.
	k.Delete("config")
	k.Delete("env_file")

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
