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

// SMSConfig holds the SMS gateway endpoint settings.
type SMSConfig struct {
	BaseURL  string
	APIKey   string
	SenderID string
	Timeout  time.Duration
}

// SMSClient delivers texts through the aggregator's HTTP API. It
// implements notification.SMSSender.
type SMSClient struct {
	cfg        SMSConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSMSClient creates a new SMS gateway client
func NewSMSClient(cfg SMSConfig, logger *zap.Logger) *SMSClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &SMSClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type smsRequest struct {
	SenderID string `json:"sender_id,omitempty"`
	To       string `json:"to"`
	Message  string `json:"message"`
}

type smsResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

// SendSMS posts one text to the gateway and checks the envelope status,
// since some aggregators report per-message failures inside a 200.
func (c *SMSClient) SendSMS(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(smsRequest{
		SenderID: c.cfg.SenderID,
		To:       to,
		Message:  body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/sms", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(snippet))
	}

	var out smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode sms response: %w", err)
	}
	if out.Status != "" && out.Status != "queued" && out.Status != "sent" {
		return fmt.Errorf("sms gateway rejected message: %s", out.Error)
	}

	c.logger.Debug("SMS accepted by gateway", zap.String("to", to), zap.String("message_id", out.MessageID))
	return nil
}
