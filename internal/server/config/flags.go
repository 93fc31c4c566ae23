package config

import (
	"flag"
	"io"
	"strings"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g. ":8001")
//	-g string   gRPC health bind address
//	-d string   PostgreSQL DSN
//	-s string   session signing key
//	-t int      session validity, hours
//	-p string   auth provider session-data URL
//	-m string   admin emails, comma separated
//	-b string   S3 bucket name
//	-e string   S3 base endpoint
//	-r string   Redis address
//	-q string   AMQP URL
//	-l string   log level
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-t", "-p", "-m", "-b", "-e", "-r", "-q", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to serve the REST API")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to serve gRPC health")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionHours := fs.Int("t", int(config.SessionValidity.Hours()), "session validity (in hours)")
	fs.StringVar(&config.AuthProviderURL, "p", config.AuthProviderURL, "auth provider session-data URL")
	adminEmails := fs.String("m", strings.Join(config.AdminEmails, ","), "admin emails, comma separated")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.AMQPURL, "q", config.AMQPURL, "AMQP URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionValidity = time.Duration(*sessionHours) * time.Hour
		case "m":
			config.AdminEmails = parseEmails(*adminEmails)
		}
	})
	return nil
}
