package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Intent statuses the order flow cares about. Anything other than
// IntentSucceeded blocks order creation.
const (
	IntentSucceeded      = "succeeded"
	IntentRequiresAction = "requires_action"
	IntentCanceled       = "canceled"
)

// Intent is the processor's handle for a charge attempt.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Gateway is the slice of the payment processor the checkout flow depends on:
// create an intent for the client to confirm, and retrieve its verdict later.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
}

// StripeClient talks to the Stripe payment-intents API.
type StripeClient struct {
	apiKey  string
	apiBase string
	client  *http.Client
}

func NewStripeClient(apiKey, apiBase string) *StripeClient {
	if apiBase == "" {
		apiBase = "https://api.stripe.com/v1"
	}
	return &StripeClient{
		apiKey:  apiKey,
		apiBase: strings.TrimRight(apiBase, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *StripeClient) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	return s.do(ctx, http.MethodPost, "/payment_intents", form)
}

func (s *StripeClient) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	return s.do(ctx, http.MethodGet, "/payment_intents/"+url.PathEscape(intentID), nil)
}

func (s *StripeClient) do(ctx context.Context, method, path string, form url.Values) (*Intent, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, s.apiBase+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment processor: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var se stripeError
		if err := json.Unmarshal(data, &se); err == nil && se.Error.Message != "" {
			return nil, fmt.Errorf("stripe error (%d): %s", resp.StatusCode, se.Error.Message)
		}
		return nil, fmt.Errorf("stripe API error (%d): %s", resp.StatusCode, string(data))
	}

	var intent Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse stripe response: %w", err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("stripe returned empty intent id")
	}
	return &intent, nil
}
