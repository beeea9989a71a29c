// Package regional delivers review decisions to the per-region systems of
// record. Each region exposes an HTTP endpoint that acknowledges a review
// keyed by the event's external identifier.
package regional

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Notification is the review payload forwarded to a regional authority.
type Notification struct {
	ReviewedBy string    `json:"reviewedBy"`
	Decision   string    `json:"decision"`
	Rating     *int      `json:"rating,omitempty"`
	Comment    *string   `json:"comment,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Client posts review notifications to regional endpoints. The request timeout
// bounds how long a review transaction's row lock can be held across the call.
type Client struct {
	baseURLs   map[string]string
	httpClient *http.Client
}

// NewClient constructs a client from a region-code to base-URL mapping.
func NewClient(baseURLs map[string]string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURLs: baseURLs,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Notify delivers the notification for externalEventID to the authority for
// region. Any transport failure, timeout, or non-2xx response is an error; the
// caller treats all of them as a failed delivery.
func (c *Client) Notify(ctx context.Context, region, externalEventID string, n Notification) error {
	base, ok := c.baseURLs[region]
	if !ok || base == "" {
		return fmt.Errorf("regional: no endpoint configured for region %q", region)
	}
	endpoint := fmt.Sprintf("%s/events/%s/review", base, url.PathEscape(externalEventID))

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("regional: marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("regional: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("regional: post review to %s: %w", region, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("regional: %s returned status %d: %s", region, resp.StatusCode, detail)
	}
	return nil
}
