package handlers

import (
	"github.com/valyala/fasthttp"
	"github.com/vertexaitech/supportbot/internal/notify"
	"github.com/vertexaitech/supportbot/internal/phone"
	"github.com/zerodha/fastglue"
)

// GetConversation returns the stored conversation for a phone number
func (a *App) GetConversation(r *fastglue.Request) error {
	raw, _ := r.RequestCtx.UserValue("phone").(string)
	normalized := phone.Normalize(raw)
	if normalized == "" {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "Invalid phone number", nil, "")
	}

	conv, err := a.Store.GetOrCreate(r.RequestCtx, normalized)
	if err != nil {
		a.Log.Error("Failed to load conversation", "error", err, "phone", normalized)
		return r.SendErrorEnvelope(fasthttp.StatusInternalServerError, "Failed to load conversation", nil, "")
	}

	return r.SendEnvelope(map[string]any{
		"phone_number":  conv.PhoneNumber,
		"client_name":   conv.DisplayName(),
		"status":        conv.Status,
		"messages_used": conv.MessagesUsed,
		"turns":         conv.Turns,
		"updated_at":    conv.UpdatedAt,
	})
}

// SendMessage sends a one-off message through the gateway, outside the
// conversation ladder. Used by the dashboard for manual follow-ups.
func (a *App) SendMessage(r *fastglue.Request) error {
	var req struct {
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := r.Decode(&req, "json"); err != nil {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "Invalid request body", nil, "")
	}

	normalized := phone.Normalize(req.Phone)
	if normalized == "" || req.Message == "" {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "phone and message are required", nil, "")
	}

	if !a.Gateway.Send(r.RequestCtx, normalized, req.Message) {
		return r.SendErrorEnvelope(fasthttp.StatusBadGateway, "Failed to send message", nil, "")
	}

	return r.SendEnvelope(map[string]any{
		"sent":  true,
		"phone": normalized,
	})
}

// NotifyTeam raises a team alert on demand
func (a *App) NotifyTeam(r *fastglue.Request) error {
	var req struct {
		Message     string `json:"message"`
		ClientPhone string `json:"client_phone"`
		ClientName  string `json:"client_name"`
		Details     string `json:"details"`
	}
	if err := r.Decode(&req, "json"); err != nil {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "Invalid request body", nil, "")
	}
	if req.Message == "" {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "message is required", nil, "")
	}

	delivered := a.Notifier.Alert(r.RequestCtx, notify.Alert{
		Message:    req.Message,
		Phone:      phone.Normalize(req.ClientPhone),
		ClientName: req.ClientName,
		Details:    req.Details,
	})

	return r.SendEnvelope(map[string]any{
		"delivered": delivered,
	})
}

// TestBot runs a message through the conversation engine and reports
// whether a reply went out. Meant for smoke-testing the gateway wiring
// against a real number.
func (a *App) TestBot(r *fastglue.Request) error {
	var req struct {
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := r.Decode(&req, "json"); err != nil {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "Invalid request body", nil, "")
	}
	if req.Phone == "" || req.Message == "" {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "phone and message are required", nil, "")
	}

	sent := a.Engine.Handle(r.RequestCtx, req.Phone, req.Message)

	return r.SendEnvelope(map[string]any{
		"processed": true,
		"sent":      sent,
	})
}
