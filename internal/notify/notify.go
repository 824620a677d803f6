// Package notify delivers team alerts over the messaging gateway.
// Alerts are a best-effort side channel: a failed alert is logged and
// recorded but never surfaces to the client conversation.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/vertexaitech/supportbot/internal/models"
	"github.com/zerodha/logf"
	"gorm.io/gorm"
)

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, recipient, message string) bool
}

// Alert is one team notification. Phone, ClientName and Details are
// optional; empty fields are omitted from the rendered message.
type Alert struct {
	Message    string
	Phone      string
	ClientName string
	Details    string
}

// Notifier sends alerts to the configured team number and records
// every attempt in the team_alerts table.
type Notifier struct {
	Sender     Sender
	DB         *gorm.DB
	Log        logf.Logger
	TeamNumber string
}

// New creates a Notifier. db may be nil, in which case attempts are
// only logged.
func New(sender Sender, db *gorm.DB, log logf.Logger, teamNumber string) *Notifier {
	return &Notifier{
		Sender:     sender,
		DB:         db,
		Log:        log,
		TeamNumber: teamNumber,
	}
}

// Alert renders and sends a team alert. Returns whether the gateway
// accepted it. Never returns an error; callers are not expected to
// react to a failed alert.
func (n *Notifier) Alert(ctx context.Context, a Alert) bool {
	body := Render(a)

	delivered := n.Sender.Send(ctx, n.TeamNumber, body)
	if delivered {
		n.Log.Info("Team alert sent", "team_number", n.TeamNumber, "client_phone", a.Phone)
	} else {
		n.Log.Error("Failed to send team alert", "team_number", n.TeamNumber, "client_phone", a.Phone)
	}

	if n.DB != nil {
		record := models.TeamAlert{
			Message:     a.Message,
			ClientPhone: a.Phone,
			ClientName:  a.ClientName,
			Details:     a.Details,
			Delivered:   delivered,
		}
		if err := n.DB.WithContext(ctx).Create(&record).Error; err != nil {
			n.Log.Error("Failed to record team alert", "error", err)
		}
	}

	return delivered
}

// Render formats an alert with the team banner.
func Render(a Alert) string {
	var b strings.Builder
	b.WriteString("🚨 TEAM ALERT 🚨\n\n")
	b.WriteString(a.Message)

	if a.ClientName != "" {
		b.WriteString("\n👤 Client Name: " + a.ClientName)
	}
	if a.Phone != "" {
		b.WriteString("\n📱 Client Phone: " + a.Phone)
	}
	if a.Details != "" {
		b.WriteString("\n💼 Project Details: " + a.Details)
	}

	b.WriteString("\n\n🤖 Bot Response: Please reach out to this client for further discussion about their project requirements.")
	return b.String()
}

// Transcript renders the full conversation history for a finalization
// alert, client and assistant turns in chronological order.
func Transcript(conv *models.Conversation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s\n", conv.DisplayName())
	fmt.Fprintf(&b, "Phone: %s\n", conv.PhoneNumber)
	fmt.Fprintf(&b, "Messages: %d\n", conv.MessagesUsed)
	fmt.Fprintf(&b, "Status: %s\n\n", conv.Status)
	b.WriteString("Conversation:\n")

	for _, turn := range conv.Turns {
		emoji := "🤖"
		if turn.Role == models.RoleClient {
			emoji = "👤"
		}
		fmt.Fprintf(&b, "%s %s: %s\n", emoji, titleRole(turn.Role), turn.Message)
	}

	return b.String()
}

func titleRole(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
