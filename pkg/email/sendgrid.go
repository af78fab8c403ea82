package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/teomanager/teomanager-backend/pkg/config"
)

const defaultBaseURL = "https://api.sendgrid.com"

// Message is one rendered email ready for delivery.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers rendered emails. The outbox worker is the only caller.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendgridClient talks to the SendGrid v3 mail send endpoint.
type SendgridClient struct {
	apiKey  string
	from    string
	baseURL string
	http    *http.Client
}

// NewSendgridClient builds a client from configuration.
func NewSendgridClient(cfg config.SendgridConfig) (*SendgridClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if cfg.DefaultFrom == "" {
		return nil, fmt.Errorf("sendgrid from address is required")
	}
	return &SendgridClient{
		apiKey:  cfg.APIKey,
		from:    cfg.DefaultFrom,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type sendgridRequest struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
}

type sendgridPersonalization struct {
	To []sendgridAddress `json:"to"`
}

type sendgridAddress struct {
	Email string `json:"email"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send posts the message to SendGrid. Any non-2xx response is an error; the
// outbox worker decides whether to retry.
func (c *SendgridClient) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}

	content := make([]sendgridContent, 0, 2)
	if msg.TextBody != "" {
		content = append(content, sendgridContent{Type: "text/plain", Value: msg.TextBody})
	}
	if msg.HTMLBody != "" {
		content = append(content, sendgridContent{Type: "text/html", Value: msg.HTMLBody})
	}
	if len(content) == 0 {
		return fmt.Errorf("message body is required")
	}

	payload := sendgridRequest{
		Personalizations: []sendgridPersonalization{{To: []sendgridAddress{{Email: msg.To}}}},
		From:             sendgridAddress{Email: c.from},
		Subject:          msg.Subject,
		Content:          content,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendgrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

// NoopSender logs nothing and delivers nothing. Used in development when no
// API key is configured.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, msg Message) error { return nil }
