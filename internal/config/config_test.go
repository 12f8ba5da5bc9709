package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqsproxyd/sqsproxyd/internal/apperror"
)

func newBoundViper(args ...string) (*viper.Viper, error) {
	v := viper.New()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	BindFlags(cmd, v)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	return v, nil
}

func TestLoad_RequiredFieldsMissing(t *testing.T) {
	v, err := newBoundViper()
	require.NoError(t, err)

	_, err = Load(v)
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindConfigInvalid, appErr.Kind)
	assert.Equal(t, "sqs-url", appErr.Option)
}

func TestLoad_ValidMinimalConfig(t *testing.T) {
	v, err := newBoundViper("--sqs-url", "https://sqs.example/q", "--webhook-url", "http://localhost:8080/")
	require.NoError(t, err)

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://sqs.example/q", c.SQSURL)
	assert.Equal(t, "http://localhost:8080/", c.WebhookURL)
	assert.Equal(t, "application/json", c.ContentType)
	assert.Equal(t, 1, c.WorkerConcurrency)
	assert.EqualValues(t, 10, c.MaxNumberOfMessages)
}

func TestLoad_MaxNumberOfMessagesOutOfBounds(t *testing.T) {
	for _, v := range []string{"0", "11"} {
		v, err := newBoundViper("--sqs-url", "u", "--webhook-url", "w", "--max-number-of-messages", v)
		require.NoError(t, err)

		_, err = Load(v)
		require.Error(t, err)
		var appErr *apperror.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "max-number-of-messages", appErr.Option)
	}
}

func TestLoad_CustomEndpointRequiresCredentials(t *testing.T) {
	v, err := newBoundViper("--sqs-url", "u", "--webhook-url", "w", "--aws-endpoint", "http://localhost:4566")
	require.NoError(t, err)

	_, err = Load(v)
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "aws-endpoint", appErr.Option)
}

func TestLoad_CustomEndpointWithCredentialsIsValid(t *testing.T) {
	v, err := newBoundViper(
		"--sqs-url", "u", "--webhook-url", "w",
		"--aws-endpoint", "http://localhost:4566",
		"--aws-access-key-id", "id",
		"--aws-secret-access-key", "secret",
	)
	require.NoError(t, err)

	_, err = Load(v)
	require.NoError(t, err)
}

func TestLoad_EnvironmentVariableOverride(t *testing.T) {
	t.Setenv("SQSPROXYD_SQS_URL", "https://sqs.example/from-env")
	t.Setenv("SQSPROXYD_WEBHOOK_URL", "http://localhost/from-env")

	v, err := newBoundViper()
	require.NoError(t, err)

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://sqs.example/from-env", c.SQSURL)
	assert.Equal(t, "http://localhost/from-env", c.WebhookURL)
}

func TestLoad_FlagOverridesEnvironmentVariable(t *testing.T) {
	t.Setenv("SQSPROXYD_SQS_URL", "https://sqs.example/from-env")

	v, err := newBoundViper("--sqs-url", "https://sqs.example/from-flag", "--webhook-url", "w")
	require.NoError(t, err)

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://sqs.example/from-flag", c.SQSURL)
}

func TestLoad_AliasOptionsResolveWhenPrimaryUnset(t *testing.T) {
	v, err := newBoundViper(
		"--sqs-url", "u",
		"--api-url", "http://localhost/from-alias",
		"--num-workers", "4",
		"--api-timeout-msec", "2500",
		"--sleep-msec", "250",
	)
	require.NoError(t, err)

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/from-alias", c.WebhookURL)
	assert.Equal(t, 4, c.WorkerConcurrency)
	assert.Equal(t, 2500*time.Millisecond, c.ConnectionTimeout)
	assert.Equal(t, 250*time.Millisecond, c.SleepInterval)
}

func TestLoad_PrimaryOptionWinsOverAlias(t *testing.T) {
	v, err := newBoundViper(
		"--sqs-url", "u",
		"--webhook-url", "http://localhost/primary",
		"--api-url", "http://localhost/alias",
		"--worker-concurrency", "2",
		"--num-workers", "9",
	)
	require.NoError(t, err)

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/primary", c.WebhookURL)
	assert.Equal(t, 2, c.WorkerConcurrency)
}

func TestLoad_DefaultsApplyWhenNeitherPrimaryNorAliasSet(t *testing.T) {
	v, err := newBoundViper("--sqs-url", "u", "--webhook-url", "w")
	require.NoError(t, err)

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.ConnectionTimeout)
	assert.Equal(t, time.Second, c.SleepInterval)
}
