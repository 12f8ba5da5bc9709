package downstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sqsproxyd/sqsproxyd/internal/apperror"
)

// healthCheckTimeout is intentionally long: a slow-starting application
// must not be mistaken for an unhealthy one mid-call.
const healthCheckTimeout = time.Hour

// Version is substituted into the User-Agent header. The sqsproxyd binary
// sets it at startup from main's version variable (-ldflags
// "-X main.version=...").
var Version = "dev"

// Config configures a Client.
type Config struct {
	// WebhookURL is the fixed POST destination for every message.
	WebhookURL string
	// ContentType is sent as the Content-Type header, default application/json.
	ContentType string
	// Timeout bounds each POST call.
	Timeout time.Duration
}

// Client is the reference Downstream adapter, built on net/http.
type Client struct {
	webhookURL  string
	contentType string
	postClient  *http.Client
	getClient   *http.Client
}

// NewClient builds a Client from Config, defaulting ContentType to application/json.
func NewClient(c Config) *Client {
	contentType := c.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	return &Client{
		webhookURL:  c.WebhookURL,
		contentType: contentType,
		postClient:  &http.Client{Timeout: c.Timeout},
		getClient:   &http.Client{Timeout: healthCheckTimeout},
	}
}

func userAgent() string {
	return fmt.Sprintf("sqsdproxy/%s", Version)
}

// Get issues a health-check GET. Any status outside 2xx, or a transport
// error, is reported as ApiUnreachable.
func (c *Client) Get(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperror.ErrAPIUnreachable.Context(err)
	}
	req.Header.Set("User-Agent", userAgent())

	res, err := c.getClient.Do(req)
	if err != nil {
		return apperror.ErrAPIUnreachable.Context(err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if !is2xx(res.StatusCode) {
		return apperror.ErrAPIUnreachable.Context(fmt.Errorf("health check returned status %d", res.StatusCode))
	}
	return nil
}

// Post delivers body to the configured webhook URL, setting User-Agent,
// Content-Type and the message-id header on every call.
func (c *Client) Post(ctx context.Context, body, messageID string) (bool, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, strings.NewReader(body))
	if err != nil {
		return false, "", apperror.ErrAPIUnreachable.Context(err)
	}
	req.Header.Set("User-Agent", userAgent())
	req.Header.Set("Content-Type", c.contentType)
	req.Header.Set("X-SQSPROXYD-MESSAGE-ID", messageID)

	res, err := c.postClient.Do(req)
	if err != nil {
		return false, "", apperror.ErrAPIUnreachable.Context(err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return false, "", apperror.ErrAPIUnreachable.Context(err)
	}

	return is2xx(res.StatusCode), string(respBody), nil
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
