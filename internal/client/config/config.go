// Package config holds runtime settings for the Journey Connect CLI.
package config

import (
	"os"
	"path/filepath"
	"time"
)

const envPrefix = "JOURNEY_CLI_"

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the REST backend, without the /api suffix.
//   - PollInterval: how often the message feed refreshes.
//   - RequestTimeout: per-request HTTP timeout.
//   - CredentialFile: where the session credential is kept between runs.
type Config struct {
	ServerURL      string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	CredentialFile string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8001"
	c.PollInterval = 5 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.CredentialFile = defaultCredentialFile()
}

func defaultCredentialFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".journey-session"
	}
	return filepath.Join(dir, "journeyconnect", "session")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
