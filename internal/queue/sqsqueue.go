package queue

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"

	"github.com/sqsproxyd/sqsproxyd/internal/apperror"
	"github.com/sqsproxyd/sqsproxyd/internal/message"
)

// Config configures the AWS session and queue addressing for a SQSQueue.
// There is no topic or fan-out concept here: one Config addresses exactly
// one queue.
type Config struct {
	// Key, Secret, SessionToken are the AWS credentials. A custom Endpoint requires Key+Secret.
	Key          string
	Secret       string
	SessionToken string
	// Region is passed straight through to the AWS session.
	Region string
	// Endpoint overrides the default AWS URL, for local emulators.
	Endpoint string
	// RetryCount bounds the AWS SDK's own exponential-backoff retrier. Default 10.
	RetryCount int
	// QueueURL is the address of this queue.
	QueueURL string
	// MaxNumberOfMessages is the batch size requested per long-poll, bounded to [1,10] by config validation.
	MaxNumberOfMessages int64
	// WaitTimeSeconds controls how long a single ReceiveMessage call long-polls for.
	WaitTimeSeconds int64
}

// SQSQueue is the reference Queue Port adapter, speaking the AWS SQS wire
// protocol via aws-sdk-go. It maps the native receive envelope onto
// message.Message, populating body, receipt handle, id and digest.
type SQSQueue struct {
	sqs      *sqs.SQS
	queueURL string
	maxMsgs  int64
	waitSecs int64
}

var attributeAll = "All"

// NewSQSQueue opens an AWS session per Config and returns a Queue Port bound to QueueURL.
func NewSQSQueue(c Config) (*SQSQueue, error) {
	sess, err := newSession(c)
	if err != nil {
		return nil, err
	}

	maxMsgs := c.MaxNumberOfMessages
	if maxMsgs == 0 {
		maxMsgs = 10
	}
	waitSecs := c.WaitTimeSeconds
	if waitSecs == 0 {
		waitSecs = 20
	}

	return &SQSQueue{
		sqs:      sqs.New(sess),
		queueURL: c.QueueURL,
		maxMsgs:  maxMsgs,
		waitSecs: waitSecs,
	}, nil
}

// ReceiveMessages requests MaxNumberOfMessages at a time via long-polling
// and maps the result onto message.Message, populating body, receipt
// handle, message id and MD5 digest.
func (q *SQSQueue) ReceiveMessages(ctx context.Context) ([]message.Message, error) {
	out, err := q.sqs.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              &q.queueURL,
		MaxNumberOfMessages:   &q.maxMsgs,
		WaitTimeSeconds:       &q.waitSecs,
		MessageAttributeNames: []*string{&attributeAll},
		AttributeNames:        []*string{&attributeAll},
	})
	if err != nil {
		return nil, apperror.ErrQueueUnavailable.Context(err)
	}

	if len(out.Messages) == 0 {
		return nil, nil
	}

	msgs := make([]message.Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, toMessage(m))
	}
	return msgs, nil
}

func toMessage(m *sqs.Message) message.Message {
	var body, receipt, id, digest string
	if m.Body != nil {
		body = *m.Body
	}
	if m.ReceiptHandle != nil {
		receipt = *m.ReceiptHandle
	}
	if m.MessageId != nil {
		id = *m.MessageId
	}
	if m.MD5OfBody != nil {
		digest = *m.MD5OfBody
	}
	return message.Message{Body: body, ReceiptHandle: receipt, ID: id, MD5OfBody: digest}
}

// SendMessage publishes body verbatim to this queue. It does not retry in
// a loop: a failure here becomes a QueueUnavailable the caller must treat
// as non-acknowledgement rather than something this method papers over.
func (q *SQSQueue) SendMessage(ctx context.Context, body string) error {
	_, err := q.sqs.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    &q.queueURL,
		MessageBody: &body,
	})
	if err != nil {
		return apperror.ErrQueueUnavailable.Context(err)
	}
	return nil
}

// DeleteMessage removes a message by receipt handle.
func (q *SQSQueue) DeleteMessage(ctx context.Context, receiptHandle string) error {
	_, err := q.sqs.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &q.queueURL,
		ReceiptHandle: &receiptHandle,
	})
	if err != nil {
		return apperror.ErrQueueUnavailable.Context(err)
	}
	return nil
}

type retryer struct {
	client.DefaultRetryer
	retryCount int
}

// MaxRetries sets the total exponential back off attempts, default 10 retries.
func (r retryer) MaxRetries() int {
	if r.retryCount > 0 {
		return r.retryCount
	}
	return 10
}

// newSession creates a new AWS session from Config: region, a bounded
// retryer and an optional endpoint override for local emulators (goaws,
// localstack). Credentials are only forced to the static Key/Secret pair
// when at least one is supplied; otherwise the session falls back to the
// SDK's default provider chain (env vars, shared config, EC2/ECS/IAM
// role), exactly as it must for the common production deployment where
// no explicit access key is configured.
func newSession(c Config) (*session.Session, error) {
	r := retryer{retryCount: c.RetryCount}
	awsCfg := aws.NewConfig().WithRegion(c.Region)

	if c.Key != "" || c.Secret != "" {
		creds := credentials.NewStaticCredentials(c.Key, c.Secret, c.SessionToken)
		if _, err := creds.Get(); err != nil {
			return nil, apperror.New(apperror.KindConfigInvalid, "invalid aws credentials").Context(err)
		}
		awsCfg = awsCfg.WithCredentials(creds)
	}

	cfg := request.WithRetryer(awsCfg, r)

	if c.Endpoint != "" {
		cfg.Endpoint = &c.Endpoint
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}
	return sess, nil
}
