package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "JOURNEY_"

// dotenvFile is the file loaded into the process environment before the
// JOURNEY_* variables are read. Variables already set win.
var dotenvFile = ".env"

// parseEnv overlays JOURNEY_* environment variables onto config.
func parseEnv(config *Config) error {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotenvFile, err)
	}

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("GRPC_ADDR", &config.GRPCAddr)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	str("AUTH_PROVIDER_URL", &config.AuthProviderURL)
	str("S3_ACCESS_KEY", &config.S3AccessKey)
	str("S3_SECRET_KEY", &config.S3SecretKey)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("REDIS_ADDR", &config.RedisAddr)
	str("REDIS_PASSWORD", &config.RedisPassword)
	str("AMQP_URL", &config.AMQPURL)
	str("SENTRY_DSN", &config.SentryDSN)
	str("LOG_FORMAT", &config.LogFormat)
	str("LOG_LEVEL", &config.LogLevel)
	str("ENV", &config.Env)

	if v, ok := os.LookupEnv(envPrefix + "ADMIN_EMAILS"); ok {
		config.AdminEmails = parseEmails(v)
	}

	if v, ok := os.LookupEnv(envPrefix + "COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCOOKIE_SECURE: %w", envPrefix, err)
		}
		config.CookieSecure = b
	}

	for key, dst := range map[string]*time.Duration{
		"SESSION_VALIDITY":  &config.SessionValidity,
		"REMINDER_INTERVAL": &config.ReminderInterval,
	} {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = d
	}

	return nil
}

// parseEmails splits a comma or space separated list and lowercases it.
func parseEmails(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ToLower(strings.TrimSpace(p)))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
