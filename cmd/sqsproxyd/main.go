// Command sqsproxyd bridges an AWS-SQS-shaped queue to an HTTP endpoint:
// long-poll, POST, optionally forward the response to a second queue,
// delete on success.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sqsproxyd/sqsproxyd/internal/config"
	"github.com/sqsproxyd/sqsproxyd/internal/dispatch"
	"github.com/sqsproxyd/sqsproxyd/internal/downstream"
	"github.com/sqsproxyd/sqsproxyd/internal/logging"
	"github.com/sqsproxyd/sqsproxyd/internal/metrics"
	"github.com/sqsproxyd/sqsproxyd/internal/queue"
)

// version is overridable via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	v := viper.New()

	root := &cobra.Command{
		Use:           "sqsproxyd",
		Short:         "bridge an SQS-shaped queue to an HTTP endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.BindFlags(root, v)
	root.SetArgs(args)

	var exitCode int
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		exitCode = runDaemon(v)
		return nil
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}

// runDaemon loads configuration, wires every adapter and runs the
// lifecycle controller to completion. It never panics on a recoverable
// condition; every fatal path returns a non-zero code instead. A healthy
// daemon blocks in controller.Run and never exits on its own.
func runDaemon(v *viper.Viper) int {
	if envFile := v.GetString("env"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "loading --env file %q: %v\n", envFile, err)
			return 1
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := logging.New(cfg.LogLevel)
	downstream.Version = version

	inputQueue, err := queue.NewSQSQueue(queue.Config{
		Key:                 cfg.AWSAccessKeyID,
		Secret:              cfg.AWSSecretAccessKey,
		SessionToken:        cfg.AWSSessionToken,
		Region:              cfg.AWSRegion,
		Endpoint:            cfg.AWSEndpoint,
		RetryCount:          cfg.RetryCount,
		QueueURL:            cfg.SQSURL,
		MaxNumberOfMessages: cfg.MaxNumberOfMessages,
	})
	if err != nil {
		log.WithError(err).Error("failed to open input queue session")
		return 1
	}

	var outputQueue queue.Queue
	if cfg.OutputSQSURL != "" {
		outputQueue, err = queue.NewSQSQueue(queue.Config{
			Key:          cfg.AWSAccessKeyID,
			Secret:       cfg.AWSSecretAccessKey,
			SessionToken: cfg.AWSSessionToken,
			Region:       cfg.AWSRegion,
			Endpoint:     cfg.AWSEndpoint,
			RetryCount:   cfg.RetryCount,
			QueueURL:     cfg.OutputSQSURL,
		})
		if err != nil {
			log.WithError(err).Error("failed to open output queue session")
			return 1
		}
	}

	client := downstream.NewClient(downstream.Config{
		WebhookURL:  cfg.WebhookURL,
		ContentType: cfg.ContentType,
		Timeout:     cfg.ConnectionTimeout,
	})

	controller := dispatch.NewController(dispatch.Options{
		InputQueue:          inputQueue,
		OutputQueue:         outputQueue,
		Downstream:          client,
		HealthCheckURL:      cfg.WebhookHealthCheckURL,
		HealthCheckInterval: cfg.WebhookHealthCheckInterval,
		WorkerConcurrency:   cfg.WorkerConcurrency,
		SleepInterval:       cfg.SleepInterval,
		Logger:              log,
		Metrics:             &metrics.Counters{},
	})

	if err := controller.Run(context.Background()); err != nil {
		log.WithError(err).Error("health gate never became ready, aborting")
		return 1
	}
	return 0
}
