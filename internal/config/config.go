// Package config holds the harvest's tunable settings: search query
// terms, tracked file extensions, and the rate-limit low-water mark.
// Settings load from an optional TOML file over compiled-in defaults.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the harvest configuration.
type Config struct {
	// QueryTerms are searched one at a time, each as "<term> fork:true".
	// The hosting platform does not treat OpenCL as a first-class
	// language, so the net is cast wide and results are filtered by
	// file extension afterwards.
	QueryTerms []string `toml:"query_terms"`

	// Extensions are the tracked path suffixes.
	Extensions []string `toml:"extensions"`

	// RateLimitLowWater is the remaining-quota mark below which the
	// harvest blocks and waits for the quota to recover.
	RateLimitLowWater int `toml:"rate_limit_low_water"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		QueryTerms: []string{
			"opencl",
			"cl",
			"khronos",
			"gpu",
			"gpgpu",
			"cuda",
			"amd",
			"nvidia",
			"heterogeneous",
		},
		Extensions:        []string{".cl", ".ocl"},
		RateLimitLowWater: 100,
	}
}

// Load reads a TOML file over the defaults. Fields absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}
