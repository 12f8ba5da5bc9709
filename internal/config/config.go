// Package config loads sqsproxyd's configuration from flags, environment
// variables and an optional dotenv file, in that order of precedence, and
// validates it once at startup.
package config

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sqsproxyd/sqsproxyd/internal/apperror"
)

// Config is the fully-resolved, immutable-after-load configuration surface.
type Config struct {
	SQSURL        string
	WebhookURL    string
	OutputSQSURL  string // "" disables response forwarding

	WorkerConcurrency   int
	ConnectionTimeout   time.Duration
	MaxNumberOfMessages int64
	SleepInterval       time.Duration

	WebhookHealthCheckURL      string // "" disables the health gate
	WebhookHealthCheckInterval time.Duration

	ContentType string
	LogLevel    string

	AWSRegion          string
	AWSEndpoint        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSSessionToken    string
	RetryCount         int
}

// EnvPrefix is the environment variable prefix every setting binds under.
const EnvPrefix = "SQSPROXYD"

// BindFlags registers every recognized flag on cmd and binds it to viper
// under EnvPrefix, so flags and SQSPROXYD_-prefixed environment variables
// resolve through the same keys. Mirrors the cobra+viper pairing the rest
// of the retrieval pack uses for daemon configuration.
//
// webhook-url/worker-concurrency/connection-timeout/sleep-seconds each have a
// second, alias flag (api-url, num-workers, api-timeout-msec, sleep-msec)
// recognized under the same option pairing; the two timing aliases are
// milliseconds rather than a Go duration string. Aliases carry no default
// of their own so Load can tell "unset" apart from "set to zero" and fall
// back to the primary name's default.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()

	flags.String("sqs-url", "", "input queue URL (required)")
	flags.String("webhook-url", "", "downstream POST URL (required)")
	flags.String("api-url", "", "alias for --webhook-url")
	flags.String("output-sqs-url", "", "optional second queue for response bodies")
	flags.Int("worker-concurrency", 0, "worker pool size, default 1")
	flags.Int("num-workers", 0, "alias for --worker-concurrency")
	flags.Duration("connection-timeout", 0, "per-HTTP-request timeout, default 5s")
	flags.Int64("api-timeout-msec", 0, "alias for --connection-timeout, in milliseconds")
	flags.Int64("max-number-of-messages", 10, "batch size per receive, must be in [1,10]")
	flags.Duration("sleep-seconds", 0, "idle backoff between empty receives, default 1s")
	flags.Int64("sleep-msec", 0, "alias for --sleep-seconds, in milliseconds")
	flags.String("webhook-health-check-url", "", "optional readiness URL; absent disables the gate")
	flags.Duration("webhook-health-check-interval-seconds", time.Second, "retry interval while the health gate is closed")
	flags.String("content-type", "application/json", "value of Content-Type on POST")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")
	flags.String("aws-region", "", "AWS region")
	flags.String("aws-endpoint", "", "custom AWS endpoint, e.g. for local queue emulators")
	flags.String("aws-access-key-id", "", "AWS access key ID")
	flags.String("aws-secret-access-key", "", "AWS secret access key")
	flags.String("aws-session-token", "", "AWS session token")
	flags.Int("retry-count", 10, "exponential backoff attempts on the AWS session before giving up")
	flags.String("env", "", "optional dotenv file loaded before flag/env resolution")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	_ = v.BindPFlags(flags)
}

// Load builds a Config from v, which must already have flags bound via
// BindFlags and any dotenv file merged in. It validates the result and
// returns a *apperror.Error of KindConfigInvalid naming the offending
// option on failure.
func Load(v *viper.Viper) (*Config, error) {
	webhookURL := v.GetString("webhook-url")
	if webhookURL == "" {
		webhookURL = v.GetString("api-url")
	}

	workerConcurrency := v.GetInt("worker-concurrency")
	if workerConcurrency == 0 {
		workerConcurrency = v.GetInt("num-workers")
	}

	connectionTimeout := v.GetDuration("connection-timeout")
	if connectionTimeout == 0 {
		if msec := v.GetInt64("api-timeout-msec"); msec > 0 {
			connectionTimeout = time.Duration(msec) * time.Millisecond
		}
	}

	sleepInterval := v.GetDuration("sleep-seconds")
	if sleepInterval == 0 {
		if msec := v.GetInt64("sleep-msec"); msec > 0 {
			sleepInterval = time.Duration(msec) * time.Millisecond
		}
	}

	c := &Config{
		SQSURL:                     v.GetString("sqs-url"),
		WebhookURL:                 webhookURL,
		OutputSQSURL:               v.GetString("output-sqs-url"),
		WorkerConcurrency:          workerConcurrency,
		ConnectionTimeout:          connectionTimeout,
		MaxNumberOfMessages:        v.GetInt64("max-number-of-messages"),
		SleepInterval:              sleepInterval,
		WebhookHealthCheckURL:      v.GetString("webhook-health-check-url"),
		WebhookHealthCheckInterval: v.GetDuration("webhook-health-check-interval-seconds"),
		ContentType:                v.GetString("content-type"),
		LogLevel:                   v.GetString("log-level"),
		AWSRegion:                  v.GetString("aws-region"),
		AWSEndpoint:                v.GetString("aws-endpoint"),
		AWSAccessKeyID:             v.GetString("aws-access-key-id"),
		AWSSecretAccessKey:         v.GetString("aws-secret-access-key"),
		AWSSessionToken:            v.GetString("aws-session-token"),
		RetryCount:                 v.GetInt("retry-count"),
	}

	if c.ContentType == "" {
		c.ContentType = "application/json"
	}
	if c.WorkerConcurrency <= 0 {
		c.WorkerConcurrency = 1
	}
	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = 5 * time.Second
	}
	if c.SleepInterval <= 0 {
		c.SleepInterval = time.Second
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate enforces batch size bounds and the endpoint-requires-credentials rule.
func (c *Config) validate() error {
	if c.SQSURL == "" {
		return apperror.ErrConfigInvalid.WithOption("sqs-url")
	}
	if c.WebhookURL == "" {
		return apperror.ErrConfigInvalid.WithOption("webhook-url")
	}
	if c.MaxNumberOfMessages < 1 || c.MaxNumberOfMessages > 10 {
		return apperror.ErrConfigInvalid.WithOption("max-number-of-messages")
	}
	if c.AWSEndpoint != "" && (c.AWSAccessKeyID == "" || c.AWSSecretAccessKey == "") {
		return apperror.ErrConfigInvalid.WithOption("aws-endpoint")
	}
	return nil
}
