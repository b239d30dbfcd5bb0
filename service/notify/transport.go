package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	mail "github.com/wneessen/go-mail"

	"vitastore.GO/config"
)

// Transport delivers a rendered message. sent is false with a nil error when
// delivery was skipped because nothing is configured.
type Transport interface {
	Send(ctx context.Context, msg Message) (sent bool, err error)
}

// NewTransport picks the HTTP bridge when EMAIL_BRIDGE_URL is set, SMTP when
// credentials are set, and a silent no-op otherwise.
func NewTransport(cfg config.MailConfig) Transport {
	switch {
	case cfg.BridgeURL != "":
		b := NewHTTPBridge(cfg.BridgeURL)
		b.Auth = cfg.BridgeAuth
		return b
	case cfg.SMTPConfigured():
		return NewSMTPTransport(cfg)
	default:
		return NopTransport{}
	}
}

// NopTransport skips every message.
type NopTransport struct{}

func (NopTransport) Send(context.Context, Message) (bool, error) {
	return false, nil
}

// HTTPBridge posts {to, subject, html} to an email relay endpoint.
type HTTPBridge struct {
	URL    string
	Auth   string
	Client *http.Client
}

func NewHTTPBridge(url string) *HTTPBridge {
	return &HTTPBridge{URL: url, Client: &http.Client{Timeout: 20 * time.Second}}
}

// BridgeResponse is what the bridge answers; failures still come back as HTTP 200.
type BridgeResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

func (b *HTTPBridge) Send(ctx context.Context, msg Message) (bool, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.URL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.Auth != "" {
		req.Header.Set("Authorization", b.Auth)
	}

	res, err := b.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return false, fmt.Errorf("email bridge: status %d", res.StatusCode)
	}
	var out BridgeResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("email bridge: decode response: %w", err)
	}
	if !out.Success && out.Message != "" {
		log.Printf("email bridge: %s", out.Message)
	}
	return out.Success, nil
}

// SMTPTransport sends through an SMTP relay with STARTTLS.
type SMTPTransport struct {
	cfg config.MailConfig
}

func NewSMTPTransport(cfg config.MailConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send uses the configured recipient when set, else msg.To.
func (s *SMTPTransport) Send(ctx context.Context, msg Message) (bool, error) {
	if !s.cfg.SMTPConfigured() {
		return false, nil
	}
	to := s.cfg.Recipient
	if to == "" {
		to = msg.To
	}
	if to == "" {
		return false, nil
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return false, fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(to); err != nil {
		return false, fmt.Errorf("smtp to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	c, err := mail.NewClient(s.cfg.SMTPHost,
		mail.WithPort(s.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.SMTPUser),
		mail.WithPassword(s.cfg.SMTPPass),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return false, fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return false, fmt.Errorf("smtp send: %w", err)
	}
	return true, nil
}
