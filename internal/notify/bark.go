package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBarkURL is the public Bark push server.
const DefaultBarkURL = "https://api.day.app"

// BarkSender pushes notifications to an iOS device through a Bark server.
type BarkSender struct {
	client  *http.Client
	baseURL string
	key     string
}

// NewBarkSender creates a sender for the device key. An empty baseURL uses
// DefaultBarkURL.
func NewBarkSender(baseURL, key string) *BarkSender {
	if baseURL == "" {
		baseURL = DefaultBarkURL
	}
	return &BarkSender{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
	}
}

// Probe reports ErrUnsupported when no device key is configured.
func (b *BarkSender) Probe(_ context.Context) error {
	if b.key == "" {
		return fmt.Errorf("%w: bark key is empty", ErrUnsupported)
	}
	return nil
}

// Send pushes one notification: GET {base}/{key}/{title}/{body}.
func (b *BarkSender) Send(ctx context.Context, content Content) error {
	if b.key == "" {
		return fmt.Errorf("%w: bark key is empty", ErrUnsupported)
	}

	barkURL := fmt.Sprintf("%s/%s/%s/%s", b.baseURL,
		url.PathEscape(b.key), url.PathEscape(content.Title), url.PathEscape(content.Body))
	if group := content.Data["itemId"]; group != "" {
		barkURL += "?group=" + url.QueryEscape(group)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, barkURL, nil)
	if err != nil {
		return fmt.Errorf("creating bark request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending bark notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bark returned status %d", resp.StatusCode)
	}
	return nil
}
