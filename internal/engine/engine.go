// Package engine runs the conversation workflow: every inbound client
// message goes through an ordered decision ladder that picks exactly
// one reply, updates conversation state, and fires team alerts on the
// way.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/vertexaitech/supportbot/internal/classifier"
	"github.com/vertexaitech/supportbot/internal/models"
	"github.com/vertexaitech/supportbot/internal/notify"
	"github.com/vertexaitech/supportbot/internal/phone"
	"github.com/vertexaitech/supportbot/internal/store"
	"github.com/vertexaitech/supportbot/pkg/groq"
	"github.com/zerodha/logf"
)

// DefaultMessageLimit is the number of inbound messages a conversation
// may use before the bot hands off to the team.
const DefaultMessageLimit = 20

// Canned ladder replies.
const (
	ReplyAskName    = "Hello! What is your name, sir?"
	ReplyEscalation = "Perfect! I'll have our team reach out to you shortly to discuss your project requirements in detail."
	ReplyFinalized  = "Great! Your project description has been saved. Our team will reach out to you soon."
	ReplyLimit      = "You've reached the message limit. Our team will contact you shortly."
)

// escalationPhrases hand the conversation to the team when the client
// asks for human contact. Substring match on the lowercased message.
var escalationPhrases = []string{
	"team reach out", "contact me", "call me", "reach out", "team contact",
	"speak with team", "talk to team", "team call", "contact team", "team reach",
}

// completionPhrases mark the project description as final.
var completionPhrases = []string{
	"finalize", "complete", "done", "finished", "ready", "proceed",
	"start project", "begin", "go ahead", "confirm", "approve",
	"that's all", "that's it", "nothing else", "perfect", "sounds good",
}

// Sender delivers the reply back to the client.
type Sender interface {
	Send(ctx context.Context, recipient, message string) bool
}

// Completer generates a free-form reply from conversation history.
type Completer interface {
	Complete(ctx context.Context, history []groq.Message, userMessage string) string
}

// Notifier delivers best-effort team alerts.
type Notifier interface {
	Alert(ctx context.Context, a notify.Alert) bool
}

// Events receives conversation updates for live consumers such as the
// dashboard websocket. May be nil.
type Events interface {
	ConversationTurn(phoneNumber string, turn models.Turn)
}

// Opts configures an Engine.
type Opts struct {
	Store        store.ConversationStore
	Classifier   *classifier.Classifier
	Completer    Completer
	Sender       Sender
	Team         Notifier
	Events       Events
	Log          logf.Logger
	MessageLimit int
}

// Engine is the conversation workflow engine. All dependencies are
// injected; the engine holds no globals and no transport state.
type Engine struct {
	store        store.ConversationStore
	classifier   *classifier.Classifier
	completer    Completer
	sender       Sender
	team         Notifier
	events       Events
	log          logf.Logger
	messageLimit int

	steps []step
}

// step is one rung of the decision ladder. run returns the reply and
// true when the step claims the message; later steps are not
// consulted. Steps mutate the conversation and fire alerts as side
// effects.
type step struct {
	name string
	run  func(ctx context.Context, conv *models.Conversation, msg string, cls classifier.Result) (string, bool)
}

// New creates an Engine.
func New(opts Opts) *Engine {
	if opts.Classifier == nil {
		opts.Classifier = classifier.New()
	}
	if opts.MessageLimit == 0 {
		opts.MessageLimit = DefaultMessageLimit
	}

	e := &Engine{
		store:        opts.Store,
		classifier:   opts.Classifier,
		completer:    opts.Completer,
		sender:       opts.Sender,
		team:         opts.Team,
		events:       opts.Events,
		log:          opts.Log,
		messageLimit: opts.MessageLimit,
	}

	// Ladder order is the contract: name collection, then classified
	// canned replies, then escalation, then finalization, then the
	// message limit check, then the LLM fallback.
	e.steps = []step{
		{name: "ask_name", run: e.stepAskName},
		{name: "capture_name", run: e.stepCaptureName},
		{name: "classified", run: e.stepClassified},
		{name: "escalation", run: e.stepEscalation},
		{name: "completion", run: e.stepCompletion},
		{name: "message_limit", run: e.stepMessageLimit},
		{name: "llm_fallback", run: e.stepFallback},
	}

	return e
}

// Handle processes one inbound message end to end: load state, walk
// the ladder, persist, reply. The returned bool reflects only whether
// the gateway accepted the outbound reply; storage and alert failures
// are logged and swallowed.
func (e *Engine) Handle(ctx context.Context, rawPhone, message string) bool {
	phoneNumber := phone.Normalize(rawPhone)

	conv, err := e.store.GetOrCreate(ctx, phoneNumber)
	if err != nil {
		e.log.Error("Failed to load conversation", "error", err, "phone", phoneNumber)
		return false
	}

	conv.Append(models.RoleClient, message)
	conv.MessagesUsed++

	cls := e.classifier.Classify(message)

	reply := ""
	for _, s := range e.steps {
		if r, ok := s.run(ctx, conv, message, cls); ok {
			e.log.Info("Ladder step matched", "step", s.name, "phone", phoneNumber, "type", cls.Type)
			reply = r
			break
		}
	}

	conv.Append(models.RoleAssistant, reply)

	if err := e.store.Save(ctx, conv); err != nil {
		// The reply still goes out; the client should not stall
		// because persistence hiccuped.
		e.log.Error("Failed to save conversation", "error", err, "phone", phoneNumber)
	}

	if e.events != nil {
		e.events.ConversationTurn(phoneNumber, conv.Turns[len(conv.Turns)-1])
	}

	sent := e.sender.Send(ctx, phoneNumber, reply)
	if sent {
		e.log.Info("Reply sent", "phone", phoneNumber)
	} else {
		e.log.Error("Failed to send reply", "phone", phoneNumber)
	}
	return sent
}

// stepAskName greets a brand new conversation by asking for the
// client's name.
func (e *Engine) stepAskName(ctx context.Context, conv *models.Conversation, msg string, cls classifier.Result) (string, bool) {
	if conv.NameState != models.NameNotAsked || conv.MessagesUsed != 1 {
		return "", false
	}
	conv.NameState = models.NameAsked
	return ReplyAskName, true
}

// stepCaptureName treats the next message after the name question as
// the client's name, whatever it says.
func (e *Engine) stepCaptureName(ctx context.Context, conv *models.Conversation, msg string, cls classifier.Result) (string, bool) {
	if conv.NameState == models.NameProvided {
		return "", false
	}
	conv.ClientName = strings.TrimSpace(msg)
	conv.NameState = models.NameProvided
	return fmt.Sprintf("Nice to meet you, %s! I'm here to help you with your project requirements. What type of app or website are you looking to build?", conv.ClientName), true
}

// stepClassified answers high-confidence classifications with their
// canned response. Pricing inquiries additionally alert the team.
func (e *Engine) stepClassified(ctx context.Context, conv *models.Conversation, msg string, cls classifier.Result) (string, bool) {
	if cls.Confidence < 0.8 {
		return "", false
	}

	if cls.Type == classifier.TypePricing {
		e.team.Alert(ctx, notify.Alert{
			Message:    fmt.Sprintf("💰 PRICING INQUIRY\n\nMessage: %s", msg),
			Phone:      conv.PhoneNumber,
			ClientName: conv.DisplayName(),
			Details:    "Client is asking about pricing for our services",
		})
	}

	return cls.Response, true
}

// stepEscalation matches explicit requests for human contact.
func (e *Engine) stepEscalation(ctx context.Context, conv *models.Conversation, msg string, cls classifier.Result) (string, bool) {
	if !containsAny(msg, escalationPhrases) {
		return "", false
	}

	e.team.Alert(ctx, notify.Alert{
		Message:    fmt.Sprintf("📞 CLIENT WANTS TEAM CONTACT\n\nMessage: %s", msg),
		Phone:      conv.PhoneNumber,
		ClientName: conv.DisplayName(),
		Details:    "Client specifically requested team to reach out for project discussion",
	})

	return ReplyEscalation, true
}

// stepCompletion finalizes the conversation and alerts the team with
// the full transcript.
func (e *Engine) stepCompletion(ctx context.Context, conv *models.Conversation, msg string, cls classifier.Result) (string, bool) {
	if !containsAny(msg, completionPhrases) {
		return "", false
	}

	conv.Status = models.StatusFinalized

	e.team.Alert(ctx, notify.Alert{
		Message:    fmt.Sprintf("✅ PROJECT FINALIZED\n\n%s", notify.Transcript(conv)),
		Phone:      conv.PhoneNumber,
		ClientName: conv.DisplayName(),
		Details:    "Client has finalized their project requirements",
	})

	return ReplyFinalized, true
}

// stepMessageLimit stops the bot after the message limit is spent. The
// counter includes the message being handled, so the limit fires on
// the Nth inbound message.
func (e *Engine) stepMessageLimit(ctx context.Context, conv *models.Conversation, msg string, cls classifier.Result) (string, bool) {
	if conv.MessagesUsed < e.messageLimit {
		return "", false
	}

	e.team.Alert(ctx, notify.Alert{
		Message:    fmt.Sprintf("⚠️ MESSAGE LIMIT REACHED\n\nMessages used: %d", conv.MessagesUsed),
		Phone:      conv.PhoneNumber,
		ClientName: conv.DisplayName(),
		Details:    "Client has reached the message limit and needs team follow-up",
	})

	return ReplyLimit, true
}

// stepFallback asks the LLM, feeding it everything said before the
// current message. Always claims the message.
func (e *Engine) stepFallback(ctx context.Context, conv *models.Conversation, msg string, cls classifier.Result) (string, bool) {
	// Exclude the just-appended inbound turn; the completer adds the
	// current message itself.
	history := make([]groq.Message, 0, len(conv.Turns)-1)
	for _, turn := range conv.Turns[:len(conv.Turns)-1] {
		role := "assistant"
		if turn.Role == models.RoleClient {
			role = "user"
		}
		history = append(history, groq.Message{Role: role, Content: turn.Message})
	}

	return e.completer.Complete(ctx, history, msg), true
}

func containsAny(msg string, phrases []string) bool {
	lower := strings.ToLower(msg)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
