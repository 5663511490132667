package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/banmai/schoolgate/internal/config"
)

// Sender delivers a text message to a phone number. The OTP service only
// depends on this interface; delivery failures surface to the caller.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// GatewayClient sends SMS through an HTTP JSON gateway
type GatewayClient struct {
	gatewayURL string
	apiKey     string
	httpClient *http.Client
}

// NewGatewayClient creates a new SMS gateway client
func NewGatewayClient(cfg config.SMSConfig) *GatewayClient {
	return &GatewayClient{
		gatewayURL: cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the message to the gateway
func (c *GatewayClient) Send(ctx context.Context, to, text string) error {
	payload, err := json.Marshal(map[string]string{
		"to":   to,
		"text": text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode SMS payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SMS gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
