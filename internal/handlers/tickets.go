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

// CreateSupportTicket files a support ticket and confirms on WhatsApp
// when the client left a phone number.
func (a *App) CreateSupportTicket(r *fastglue.Request) error {
	var req struct {
		Email       string `json:"email"`
		IssueType   string `json:"issue_type"`
		Description string `json:"description"`
		Phone       string `json:"phone"`
	}
	if err := r.Decode(&req, "json"); err != nil {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "Invalid request body", nil, "")
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Description = strings.TrimSpace(req.Description)
	if req.Email == "" || req.Description == "" {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "email and description are required", nil, "")
	}

	ticket := models.SupportTicket{
		Email:       req.Email,
		IssueType:   req.IssueType,
		Description: req.Description,
		Status:      "open",
		Phone:       phone.Normalize(req.Phone),
	}
	if err := a.DB.Create(&ticket).Error; err != nil {
		a.Log.Error("Failed to create support ticket", "error", err)
		return r.SendErrorEnvelope(fasthttp.StatusInternalServerError, "Failed to create support ticket", nil, "")
	}

	confirmed := false
	if ticket.Phone != "" {
		confirmation := fmt.Sprintf("Hello! Your support ticket has been created. Issue Type: %s. Our team will respond within 24 hours.", ticket.IssueType)
		confirmed = a.Gateway.Send(r.RequestCtx, ticket.Phone, confirmation)
		if !confirmed {
			a.Log.Warn("Ticket confirmation message failed", "ticket_id", ticket.ID, "phone", ticket.Phone)
		}
	}

	a.Notifier.Alert(r.RequestCtx, notify.Alert{
		Message: fmt.Sprintf("🎫 NEW SUPPORT TICKET: %s (%s)", ticket.Email, ticket.IssueType),
		Phone:   ticket.Phone,
		Details: ticket.Description,
	})

	a.Log.Info("Support ticket created", "ticket_id", ticket.ID, "issue_type", ticket.IssueType)

	return r.SendEnvelope(map[string]any{
		"id":        ticket.ID,
		"status":    ticket.Status,
		"confirmed": confirmed,
	})
}
