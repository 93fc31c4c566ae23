package config

import (
	"flag"
	"io"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend
//	-i int      feed poll interval (in seconds)
//	-f string   credential file
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-f"})

	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "feed poll interval (in seconds)")
	fs.StringVar(&cfg.CredentialFile, "f", cfg.CredentialFile, "credential file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" && *pollInterval > 0 {
			cfg.PollInterval = time.Duration(*pollInterval) * time.Second
		}
	})
	return nil
}
