// Package config defines ddrsync configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and the environment over those defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// FetchWorkers sets the number of fetch workers.
	FetchWorkers int `koanf:"fetch_workers"`

	// JobQueueSize bounds the in-memory fetch job queue.
	JobQueueSize int `koanf:"job_queue_size"`

	// PrimaryBaseURL and SecondaryBaseURL point at the two score trackers.
	PrimaryBaseURL   string `koanf:"primary_base_url"`
	SecondaryBaseURL string `koanf:"secondary_base_url"`

	// RequestsPerSecond limits each collaborator. Zero disables limiting.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// RequestTimeoutMS bounds a single HTTP request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	UserAgent string `koanf:"user_agent"`

	// SearchFuzzyThreshold is the minimum Jaro-Winkler similarity for title search.
	SearchFuzzyThreshold float64 `koanf:"search_fuzzy_threshold"`

	// Players is the roster to fetch.
	Players []Player `koanf:"players"`
}

// Player is one roster entry. At least one account must be set.
type Player struct {
	Name             string `koanf:"name"`
	PrimaryAccount   string `koanf:"primary_account"`
	SecondaryAccount string `koanf:"secondary_account"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		FetchWorkers:         runtime.NumCPU() * 2,
		JobQueueSize:         256,
		PrimaryBaseURL:       "https://3icecream.com",
		SecondaryBaseURL:     "http://skillattack.com",
		RequestsPerSecond:    4,
		RequestTimeoutMS:     15_000,
		UserAgent:            "ddrsync/1.0",
		SearchFuzzyThreshold: 0.85,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.PrimaryBaseURL) == "":
		return fmt.Errorf("%w: primary_base_url must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.SecondaryBaseURL) == "":
		return fmt.Errorf("%w: secondary_base_url must not be empty", ErrInvalidConfig)
	case c.FetchWorkers <= 0:
		return fmt.Errorf("%w: fetch_workers must be positive, got %d", ErrInvalidConfig, c.FetchWorkers)
	case c.JobQueueSize <= 0:
		return fmt.Errorf("%w: job_queue_size must be positive, got %d", ErrInvalidConfig, c.JobQueueSize)
	case c.RequestsPerSecond < 0:
		return fmt.Errorf("%w: requests_per_second must not be negative", ErrInvalidConfig)
	case c.RequestTimeoutMS < 0:
		return fmt.Errorf("%w: request_timeout_ms must not be negative", ErrInvalidConfig)
	case c.SearchFuzzyThreshold < 0 || c.SearchFuzzyThreshold > 1:
		return fmt.Errorf("%w: search_fuzzy_threshold must be within [0,1]", ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(c.Players))
	for i, p := range c.Players {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: players[%d] has no name", ErrInvalidConfig, i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.PrimaryAccount == "" && p.SecondaryAccount == "" {
			return fmt.Errorf("%w: player %q has no account", ErrInvalidConfig, p.Name)
		}
	}
	return nil
}

// Player returns the roster entry with the given name.
func (c *Config) Player(name string) (Player, bool) {
	for _, p := range c.Players {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}
