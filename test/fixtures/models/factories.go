// Package models provides factory functions for creating test data.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/vertexaitech/supportbot/internal/models"
)

// ConversationBuilder provides a fluent interface for creating test conversations.
type ConversationBuilder struct {
	conv models.Conversation
}

// NewConversation creates a new conversation builder with default values.
func NewConversation(phone string) *ConversationBuilder {
	return &ConversationBuilder{
		conv: models.Conversation{
			PhoneNumber: phone,
			NameState:   models.NameNotAsked,
			Status:      models.StatusPending,
			Turns:       models.TurnList{},
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		},
	}
}

// WithName sets the client name and marks it as provided.
func (b *ConversationBuilder) WithName(name string) *ConversationBuilder {
	b.conv.ClientName = name
	b.conv.NameState = models.NameProvided
	return b
}

// NameAsked marks the conversation as waiting for the client's name.
func (b *ConversationBuilder) NameAsked() *ConversationBuilder {
	b.conv.NameState = models.NameAsked
	return b
}

// Finalized sets the conversation status to finalized.
func (b *ConversationBuilder) Finalized() *ConversationBuilder {
	b.conv.Status = models.StatusFinalized
	return b
}

// WithTurn appends a turn to the conversation.
func (b *ConversationBuilder) WithTurn(role, message string) *ConversationBuilder {
	b.conv.Append(role, message)
	return b
}

// WithMessagesUsed sets the inbound message count.
func (b *ConversationBuilder) WithMessagesUsed(n int) *ConversationBuilder {
	b.conv.MessagesUsed = n
	return b
}

// Build returns the built conversation.
func (b *ConversationBuilder) Build() models.Conversation {
	return b.conv
}

// LeadBuilder provides a fluent interface for creating test leads.
type LeadBuilder struct {
	lead models.Lead
}

// NewLead creates a new lead builder with default values.
func NewLead() *LeadBuilder {
	id := uuid.New()
	return &LeadBuilder{
		lead: models.Lead{
			BaseModel: models.BaseModel{
				ID:        id,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			Name:        "Test Lead",
			Email:       "lead-" + id.String()[:8] + "@example.com",
			RequestType: "pricing",
		},
	}
}

// WithName sets the lead name.
func (b *LeadBuilder) WithName(name string) *LeadBuilder {
	b.lead.Name = name
	return b
}

// WithEmail sets the lead email.
func (b *LeadBuilder) WithEmail(email string) *LeadBuilder {
	b.lead.Email = email
	return b
}

// WithPhone sets the lead phone number.
func (b *LeadBuilder) WithPhone(phone string) *LeadBuilder {
	b.lead.Phone = phone
	return b
}

// WithRequestType sets the request type.
func (b *LeadBuilder) WithRequestType(requestType string) *LeadBuilder {
	b.lead.RequestType = requestType
	return b
}

// WithMessage sets the lead message.
func (b *LeadBuilder) WithMessage(message string) *LeadBuilder {
	b.lead.Message = message
	return b
}

// Build returns the built lead.
func (b *LeadBuilder) Build() models.Lead {
	return b.lead
}

// SupportTicketBuilder provides a fluent interface for creating test tickets.
type SupportTicketBuilder struct {
	ticket models.SupportTicket
}

// NewSupportTicket creates a new support ticket builder with default values.
func NewSupportTicket() *SupportTicketBuilder {
	id := uuid.New()
	return &SupportTicketBuilder{
		ticket: models.SupportTicket{
			BaseModel: models.BaseModel{
				ID:        id,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			Email:       "ticket-" + id.String()[:8] + "@example.com",
			IssueType:   "technical",
			Description: "Test issue description",
			Status:      "open",
		},
	}
}

// WithEmail sets the ticket email.
func (b *SupportTicketBuilder) WithEmail(email string) *SupportTicketBuilder {
	b.ticket.Email = email
	return b
}

// WithIssueType sets the issue type.
func (b *SupportTicketBuilder) WithIssueType(issueType string) *SupportTicketBuilder {
	b.ticket.IssueType = issueType
	return b
}

// WithDescription sets the description.
func (b *SupportTicketBuilder) WithDescription(desc string) *SupportTicketBuilder {
	b.ticket.Description = desc
	return b
}

// WithStatus sets the ticket status.
func (b *SupportTicketBuilder) WithStatus(status string) *SupportTicketBuilder {
	b.ticket.Status = status
	return b
}

// WithPhone sets the ticket phone number.
func (b *SupportTicketBuilder) WithPhone(phone string) *SupportTicketBuilder {
	b.ticket.Phone = phone
	return b
}

// Build returns the built support ticket.
func (b *SupportTicketBuilder) Build() models.SupportTicket {
	return b.ticket
}

// TeamAlertBuilder provides a fluent interface for creating test team alerts.
type TeamAlertBuilder struct {
	alert models.TeamAlert
}

// NewTeamAlert creates a new team alert builder with default values.
func NewTeamAlert(message string) *TeamAlertBuilder {
	return &TeamAlertBuilder{
		alert: models.TeamAlert{
			BaseModel: models.BaseModel{
				ID:        uuid.New(),
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			Message:   message,
			Delivered: true,
		},
	}
}

// WithClient sets the client phone and name.
func (b *TeamAlertBuilder) WithClient(phone, name string) *TeamAlertBuilder {
	b.alert.ClientPhone = phone
	b.alert.ClientName = name
	return b
}

// Undelivered marks the alert as not delivered.
func (b *TeamAlertBuilder) Undelivered() *TeamAlertBuilder {
	b.alert.Delivered = false
	return b
}

// Build returns the built team alert.
func (b *TeamAlertBuilder) Build() models.TeamAlert {
	return b.alert
}
