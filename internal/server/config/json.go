package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/journeyconnect/journeyconnect/internal/flagx"
	"github.com/journeyconnect/journeyconnect/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Interval
// fields use timex.Duration so both "1h" and integer nanoseconds parse.
// Only fields present in the file override the current values.
type JsonConfig struct {
	HTTPAddr         *string         `json:"http_addr"`
	GRPCAddr         *string         `json:"grpc_addr"`
	DatabaseDSN      *string         `json:"database_dsn"`
	SecretKey        *string         `json:"secret_key"`
	SessionValidity  *timex.Duration `json:"session_validity"`
	CookieSecure     *bool           `json:"cookie_secure"`
	AuthProviderURL  *string         `json:"auth_provider_url"`
	AdminEmails      []string        `json:"admin_emails"`
	S3AccessKey      *string         `json:"s3_access_key"`
	S3SecretKey      *string         `json:"s3_secret_key"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
	RedisAddr        *string         `json:"redis_addr"`
	RedisPassword    *string         `json:"redis_password"`
	AMQPURL          *string         `json:"amqp_url"`
	SentryDSN        *string         `json:"sentry_dsn"`
	LogFormat        *string         `json:"log_format"`
	LogLevel         *string         `json:"log_level"`
	Env              *string         `json:"env"`
	ReminderInterval *timex.Duration `json:"reminder_interval"`
}

// parseJson loads the file named by -c/-config (or JOURNEY_CONFIG) and
// overlays it onto config. No path means nothing to load.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFilePath(args, envPrefix+"CONFIG")
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(&config.HTTPAddr, c.HTTPAddr)
	setStr(&config.GRPCAddr, c.GRPCAddr)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setStr(&config.SecretKey, c.SecretKey)
	setStr(&config.AuthProviderURL, c.AuthProviderURL)
	setStr(&config.S3AccessKey, c.S3AccessKey)
	setStr(&config.S3SecretKey, c.S3SecretKey)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setStr(&config.RedisAddr, c.RedisAddr)
	setStr(&config.RedisPassword, c.RedisPassword)
	setStr(&config.AMQPURL, c.AMQPURL)
	setStr(&config.SentryDSN, c.SentryDSN)
	setStr(&config.LogFormat, c.LogFormat)
	setStr(&config.LogLevel, c.LogLevel)
	setStr(&config.Env, c.Env)

	if c.SessionValidity != nil {
		config.SessionValidity = c.SessionValidity.Duration
	}
	if c.ReminderInterval != nil {
		config.ReminderInterval = c.ReminderInterval.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.AdminEmails != nil {
		config.AdminEmails = parseEmails(strings.Join(c.AdminEmails, ","))
	}

	return nil
}
