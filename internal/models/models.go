package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, j)
}

// Turn is a single exchange in a conversation. Role is either "client"
// or "assistant".
type Turn struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn roles.
const (
	RoleClient    = "client"
	RoleAssistant = "assistant"
)

// TurnList stores the full conversation history as a JSONB array.
type TurnList []Turn

func (t TurnList) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *TurnList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, t)
}

// BaseModel contains common fields for all models
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Name collection states for a conversation.
const (
	NameNotAsked = "not_asked"
	NameAsked    = "asked"
	NameProvided = "provided"
)

// Conversation statuses.
const (
	StatusPending   = "pending"
	StatusFinalized = "finalized"
)

// Conversation is one chat thread with a client, keyed by the
// normalized E.164 phone number. There is no version column; concurrent
// saves are last-write-wins.
type Conversation struct {
	PhoneNumber  string    `gorm:"size:32;primaryKey" json:"phone_number"`
	ClientName   string    `gorm:"size:255" json:"client_name"`
	NameState    string    `gorm:"size:20;default:'not_asked'" json:"name_state"`
	Turns        TurnList  `gorm:"type:jsonb;default:'[]'" json:"conversation"`
	Status       string    `gorm:"size:20;default:'pending'" json:"status"`
	MessagesUsed int       `gorm:"default:0" json:"messages_used"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Append adds a turn with the current time.
func (c *Conversation) Append(role, message string) {
	c.Turns = append(c.Turns, Turn{
		Role:      role,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// DisplayName returns the client name for rendering, falling back to
// "Unknown" when the client has not provided one yet.
func (c *Conversation) DisplayName() string {
	if c.NameState == NameProvided && c.ClientName != "" {
		return c.ClientName
	}
	return "Unknown"
}

// Lead is a sales lead captured from the website or the chat widget.
type Lead struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Email       string `gorm:"size:255;not null" json:"email"`
	Phone       string `gorm:"size:32" json:"phone,omitempty"`
	RequestType string `gorm:"size:50" json:"request_type"` // pricing, demo, services
	Message     string `gorm:"type:text" json:"message,omitempty"`
}

func (Lead) TableName() string {
	return "leads"
}

// SupportTicket is a support request captured from the website.
type SupportTicket struct {
	BaseModel
	Email       string `gorm:"size:255;not null" json:"email"`
	IssueType   string `gorm:"size:50" json:"issue_type"` // login, technical, billing, general
	Description string `gorm:"type:text;not null" json:"description"`
	Status      string `gorm:"size:20;default:'open'" json:"status"` // open, in_progress, resolved
	Phone       string `gorm:"size:32" json:"phone,omitempty"`
}

func (SupportTicket) TableName() string {
	return "support_tickets"
}

// ChatMessage is one message from the direct /api/chat endpoint. Unlike
// conversation turns these are a flat log, not grouped by client.
type ChatMessage struct {
	BaseModel
	Role    string `gorm:"size:20;not null" json:"role"` // user, assistant
	Content string `gorm:"type:text;not null" json:"content"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// TeamAlert records every attempt to notify the team, delivered or not.
// Alerts are best-effort; this table is the audit trail.
type TeamAlert struct {
	BaseModel
	Message     string `gorm:"type:text;not null" json:"message"`
	ClientPhone string `gorm:"size:32" json:"client_phone,omitempty"`
	ClientName  string `gorm:"size:255" json:"client_name,omitempty"`
	Details     string `gorm:"type:text" json:"details,omitempty"`
	Delivered   bool   `gorm:"default:false" json:"delivered"`
}

func (TeamAlert) TableName() string {
	return "team_alerts"
}
