// Package downstream defines the HTTP Port: the abstraction sqsproxyd uses
// to call the operator's application, plus the reference net/http adapter.
package downstream

import "context"

// Downstream is the capability set a downstream HTTP application must
// expose. Get is used only by the health gate; Post is used once per
// message by a worker.
type Downstream interface {
	// Get issues a health-check GET against url. Any 2xx is success; anything
	// else, including a transport error, is an ApiUnreachable failure.
	Get(ctx context.Context, url string) error
	// Post delivers body to the configured webhook URL, tagging the request
	// with messageID. success is true iff the response status is 2xx;
	// responseBody is the full response body regardless of status.
	Post(ctx context.Context, body, messageID string) (success bool, responseBody string, err error)
}
