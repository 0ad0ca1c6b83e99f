package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// EmailConfig holds the email relay endpoint settings.
type EmailConfig struct {
	BaseURL     string
	APIKey      string
	FromAddress string
	FromName    string
	Timeout     time.Duration
}

// EmailClient delivers mail through the company relay's HTTP API. It
// implements notification.EmailSender.
type EmailClient struct {
	cfg        EmailConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewEmailClient creates a new email relay client
func NewEmailClient(cfg EmailConfig, logger *zap.Logger) *EmailClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &EmailClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type emailRequest struct {
	From     string `json:"from"`
	FromName string `json:"from_name,omitempty"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// SendEmail posts one message to the relay. Non-2xx responses are errors;
// the relay's own retry queue handles transient downstream failures.
func (c *EmailClient) SendEmail(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(emailRequest{
		From:     c.cfg.FromAddress,
		FromName: c.cfg.FromName,
		To:       to,
		Subject:  subject,
		Body:     body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call email relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email relay returned %d: %s", resp.StatusCode, string(snippet))
	}

	c.logger.Debug("Email accepted by relay", zap.String("to", to), zap.String("subject", subject))
	return nil
}
