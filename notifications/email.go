package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Mailer sends a single email and returns the provider's message id.
// Failures are logged by callers, never retried here.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// ResendClient delivers email through the Resend HTTP API.
type ResendClient struct {
	apiKey  string
	apiBase string
	from    string
	client  *http.Client
}

func NewResendClient(apiKey, apiBase, from string) *ResendClient {
	if apiBase == "" {
		apiBase = "https://api.resend.com"
	}
	return &ResendClient{
		apiKey:  apiKey,
		apiBase: strings.TrimRight(apiBase, "/"),
		from:    from,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *ResendClient) Send(ctx context.Context, to, subject, html string) (string, error) {
	payload := map[string]interface{}{
		"from":    r.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiBase+"/emails", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach email provider: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("email API error (%d): %s", resp.StatusCode, string(body))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse email response: %w", err)
	}
	return out.ID, nil
}
