// Package email sends transactional mail through the EmailJS HTTP relay.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gestortareas/internal/server/config"
)

const defaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// Client talks to the EmailJS REST API. It satisfies the recovery
// package's Mailer interface; sending is synchronous and errors bubble up
// to the caller.
type Client struct {
	endpoint         string
	serviceID        string
	publicKey        string
	privateKey       string
	templateRecovery string
	templateChanged  string
	frontendURL      string
	httpClient       *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		endpoint:         defaultEndpoint,
		serviceID:        cfg.EmailJSServiceID,
		publicKey:        cfg.EmailJSPublicKey,
		privateKey:       cfg.EmailJSPrivateKey,
		templateRecovery: cfg.EmailJSTemplateRecovery,
		templateChanged:  cfg.EmailJSTemplateConfirmation,
		frontendURL:      cfg.FrontendURL,
		httpClient:       &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// SendPasswordRecovery mails a recovery link containing the token.
func (c *Client) SendPasswordRecovery(ctx context.Context, email, username, token string) error {
	return c.send(ctx, c.templateRecovery, map[string]string{
		"to_email":     email,
		"to_name":      username,
		"recovery_url": c.frontendURL + "/recuperar-contrasena/" + token,
	})
}

// SendPasswordChanged mails a confirmation that the account password was
// just reset.
func (c *Client) SendPasswordChanged(ctx context.Context, email, username string) error {
	return c.send(ctx, c.templateChanged, map[string]string{
		"to_email": email,
		"to_name":  username,
	})
}

func (c *Client) send(ctx context.Context, templateID string, params map[string]string) error {

	payload := sendRequest{
		ServiceID:      c.serviceID,
		TemplateID:     templateID,
		UserID:         c.publicKey,
		AccessToken:    c.privateKey,
		TemplateParams: params,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email relay returned %d: %s", resp.StatusCode, detail)
	}

	return nil
}
