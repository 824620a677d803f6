package handlers

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"
	"github.com/vertexaitech/supportbot/internal/models"
	"github.com/vertexaitech/supportbot/internal/notify"
	"github.com/vertexaitech/supportbot/internal/phone"
	"github.com/zerodha/fastglue"
)

// CreateLead captures a sales lead from the website and greets the
// client on WhatsApp when a phone number was given.
func (a *App) CreateLead(r *fastglue.Request) error {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		RequestType string `json:"request_type"`
		Message     string `json:"message"`
	}
	if err := r.Decode(&req, "json"); err != nil {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "Invalid request body", nil, "")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "name and email are required", nil, "")
	}

	lead := models.Lead{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       phone.Normalize(req.Phone),
		RequestType: req.RequestType,
		Message:     req.Message,
	}
	if err := a.DB.Create(&lead).Error; err != nil {
		a.Log.Error("Failed to create lead", "error", err)
		return r.SendErrorEnvelope(fasthttp.StatusInternalServerError, "Failed to create lead", nil, "")
	}

	welcomed := false
	if lead.Phone != "" {
		welcome := fmt.Sprintf("Hello %s! Welcome to Vertex AI Tech. Our team will reach out to you soon.", lead.Name)
		welcomed = a.Gateway.Send(r.RequestCtx, lead.Phone, welcome)
		if !welcomed {
			a.Log.Warn("Lead welcome message failed", "lead_id", lead.ID, "phone", lead.Phone)
		}
	}

	a.Notifier.Alert(r.RequestCtx, notify.Alert{
		Message:    fmt.Sprintf("📋 NEW LEAD: %s (%s)", lead.Name, lead.RequestType),
		Phone:      lead.Phone,
		ClientName: lead.Name,
		Details:    lead.Message,
	})

	a.Log.Info("Lead created", "lead_id", lead.ID, "request_type", lead.RequestType)

	return r.SendEnvelope(map[string]any{
		"id":       lead.ID,
		"welcomed": welcomed,
	})
}
