package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/journeyconnect/journeyconnect/internal/flagx"
	"github.com/journeyconnect/journeyconnect/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals
// accept strings like "5s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	PollInterval   timex.Duration `json:"poll_interval"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	CredentialFile string         `json:"credential_file"`
}

// parseJson overlays cfg with the file named by -c/-config (or
// JOURNEY_CLI_CONFIG). Zero values in the file leave cfg untouched.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFilePath(args, envPrefix+"CONFIG")
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.PollInterval.Duration > 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CredentialFile != "" {
		cfg.CredentialFile = jc.CredentialFile
	}
	return nil
}
