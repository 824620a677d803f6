package testutil

import (
	"context"
	"sync"

	"github.com/vertexaitech/supportbot/internal/models"
	"github.com/vertexaitech/supportbot/internal/notify"
	"github.com/vertexaitech/supportbot/pkg/groq"
)

// SentMessage records one message sent through the mock gateway.
type SentMessage struct {
	Recipient string
	Message   string
}

// MockSender is a mock gateway client.
type MockSender struct {
	mu sync.Mutex

	// Recorded calls
	Sent []SentMessage

	// Configurable behavior
	Result   bool
	SendFunc func(ctx context.Context, recipient, message string) bool
}

// NewMockSender creates a mock sender that reports success.
func NewMockSender() *MockSender {
	return &MockSender{Result: true}
}

// Send records the message and returns the configured result.
func (m *MockSender) Send(ctx context.Context, recipient, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sent = append(m.Sent, SentMessage{Recipient: recipient, Message: message})

	if m.SendFunc != nil {
		return m.SendFunc(ctx, recipient, message)
	}
	return m.Result
}

// CompleterCall records one call to the mock completer.
type CompleterCall struct {
	History []groq.Message
	Message string
}

// MockCompleter is a mock LLM client.
type MockCompleter struct {
	mu sync.Mutex

	// Recorded calls
	Calls []CompleterCall

	// Configurable behavior
	Reply        string
	CompleteFunc func(ctx context.Context, history []groq.Message, userMessage string) string
}

// NewMockCompleter creates a mock completer with a fixed reply.
func NewMockCompleter(reply string) *MockCompleter {
	return &MockCompleter{Reply: reply}
}

// Complete records the call and returns the configured reply.
func (m *MockCompleter) Complete(ctx context.Context, history []groq.Message, userMessage string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, CompleterCall{History: history, Message: userMessage})

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, history, userMessage)
	}
	return m.Reply
}

// MockNotifier is a mock team alert channel.
type MockNotifier struct {
	mu sync.Mutex

	// Recorded calls
	Alerts []notify.Alert

	// Configurable behavior
	Result bool
}

// NewMockNotifier creates a mock notifier that reports success.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{Result: true}
}

// Alert records the alert and returns the configured result.
func (m *MockNotifier) Alert(ctx context.Context, a notify.Alert) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Alerts = append(m.Alerts, a)
	return m.Result
}

// MemoryStore is an in-memory ConversationStore for engine tests.
type MemoryStore struct {
	mu sync.Mutex

	Conversations map[string]*models.Conversation

	// Configurable behavior
	GetOrCreateErr error
	SaveErr        error
	SaveCalls      int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Conversations: make(map[string]*models.Conversation)}
}

// GetOrCreate returns the stored conversation or a fresh pending one.
func (m *MemoryStore) GetOrCreate(ctx context.Context, phone string) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetOrCreateErr != nil {
		return nil, m.GetOrCreateErr
	}

	if conv, ok := m.Conversations[phone]; ok {
		copied := *conv
		return &copied, nil
	}

	conv := &models.Conversation{
		PhoneNumber: phone,
		NameState:   models.NameNotAsked,
		Status:      models.StatusPending,
		Turns:       models.TurnList{},
	}
	m.Conversations[phone] = conv
	copied := *conv
	return &copied, nil
}

// Save stores the conversation keyed by its phone number.
func (m *MemoryStore) Save(ctx context.Context, conv *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}

	copied := *conv
	m.Conversations[conv.PhoneNumber] = &copied
	return nil
}

// Get returns the stored conversation for assertions.
func (m *MemoryStore) Get(phone string) *models.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Conversations[phone]
}
