// Package whatssms is a client for the WhatsSMS.io messaging gateway.
package whatssms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zerodha/logf"
)

const (
	// DefaultTimeout for HTTP requests
	DefaultTimeout = 30 * time.Second
	// DefaultBaseURL for the WhatsSMS.io API
	DefaultBaseURL = "https://app.whatssms.io/api"
)

// Client is the WhatsSMS.io API client. Send is fire-and-forget: it
// reports delivery as a bool and never returns an error, because the
// webhook path must answer 200 no matter what the gateway does.
type Client struct {
	HTTPClient *http.Client
	Log        logf.Logger

	BaseURL   string
	Secret    string
	AccountID string
}

// Opts configures a Client.
type Opts struct {
	BaseURL   string
	Secret    string
	AccountID string
	Timeout   time.Duration
}

// New creates a new WhatsSMS client
func New(log logf.Logger, opts Opts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Log:       log,
		BaseURL:   opts.BaseURL,
		Secret:    opts.Secret,
		AccountID: opts.AccountID,
	}
}

// sendResponse is the gateway's reply body. The gateway returns HTTP
// 200 for rejected requests too; rejection shows up as a non-200
// status field here.
type sendResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Send delivers a text message to recipient via WhatsApp. The
// recipient should already be in E.164 format. Returns true only when
// the gateway accepted the message: HTTP 200 and body status 200.
func (c *Client) Send(ctx context.Context, recipient, message string) bool {
	form := url.Values{}
	form.Set("secret", c.Secret)
	form.Set("account", c.AccountID)
	form.Set("recipient", recipient)
	form.Set("type", "text")
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/send/whatsapp", strings.NewReader(form.Encode()))
	if err != nil {
		c.Log.Error("Failed to build gateway request", "error", err, "recipient", recipient)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("Gateway request failed", "error", err, "recipient", recipient)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Log.Error("Failed to read gateway response", "error", err, "recipient", recipient)
		return false
	}

	if resp.StatusCode != http.StatusOK {
		c.Log.Error("Gateway returned HTTP error", "status", resp.StatusCode, "recipient", recipient, "body", string(body))
		return false
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		c.Log.Error("Invalid gateway response body", "error", err, "recipient", recipient, "body", string(body))
		return false
	}
	if sr.Status != http.StatusOK {
		c.Log.Error("Gateway rejected message", "status", sr.Status, "recipient", recipient, "message", sr.Message)
		return false
	}

	c.Log.Info("WhatsApp message sent", "recipient", recipient)
	return true
}
