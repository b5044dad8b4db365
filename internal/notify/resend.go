package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResendConfig configures the Resend client.
type ResendConfig struct {
	APIKey  string
	BaseURL string
	From    string
	Timeout time.Duration
}

// ResendClient sends email through the Resend HTTP API.
type ResendClient struct {
	apiKey  string
	baseURL string
	from    string
	http    *http.Client
}

// NewResendClient creates a Resend client.
func NewResendClient(cfg ResendConfig) *ResendClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResendClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		from:    cfg.From,
		http:    &http.Client{Timeout: timeout},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

type resendError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// ProviderError is a non-2xx response from Resend.
type ProviderError struct {
	Status  int
	Name    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("resend: %d %s: %s", e.Status, e.Name, e.Message)
	}
	return fmt.Sprintf("resend: %d: %s", e.Status, e.Message)
}

// Send posts the email to /emails.
func (c *ResendClient) Send(ctx context.Context, email Email) error {
	body, err := json.Marshal(resendRequest{
		From:    c.from,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	key := email.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	req.Header.Set("Idempotency-Key", key)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var re resendError
	if json.Unmarshal(raw, &re) != nil || re.Message == "" {
		re.Message = strings.TrimSpace(string(raw))
	}
	return &ProviderError{Status: resp.StatusCode, Name: re.Name, Message: re.Message}
}

// jobNamespace derives stable idempotency keys from outbox job IDs.
var jobNamespace = uuid.MustParse("6f1c2a4e-8d3b-4b7a-9e0f-5a2d1c3b4e6f")

// IdempotencyKeyFor returns the same key for every attempt of a job.
func IdempotencyKeyFor(jobID string) string {
	return uuid.NewSHA1(jobNamespace, []byte(jobID)).String()
}
