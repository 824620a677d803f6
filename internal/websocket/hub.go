// Package websocket pushes live conversation updates to connected
// support dashboard clients.
package websocket

import (
	"encoding/json"
	"time"

	"github.com/vertexaitech/supportbot/internal/models"
	"github.com/zerodha/logf"
)

// Message types exchanged with dashboard clients.
const (
	TypeConversationTurn = "conversation_turn"
	TypeSetPhone         = "set_phone"
	TypePing             = "ping"
	TypePong             = "pong"
)

// WSMessage is the envelope for all websocket frames.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// TurnPayload is the payload of a conversation_turn frame.
type TurnPayload struct {
	PhoneNumber string      `json:"phone_number"`
	Turn        models.Turn `json:"turn"`
	Time        time.Time   `json:"time"`
}

// SetPhonePayload is sent by a client to watch one conversation.
type SetPhonePayload struct {
	PhoneNumber string `json:"phone_number"`
}

type turnEvent struct {
	phoneNumber string
	data        []byte
}

// Hub tracks connected dashboard clients and fans conversation turns
// out to them. Clients watching a specific phone number only receive
// that conversation's turns.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan turnEvent
	log        logf.Logger
}

// NewHub creates a Hub.
func NewHub(log logf.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan turnEvent, 64),
		log:        log,
	}
}

// Run processes registrations and broadcasts until the process exits.
// Call it once, in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug("WebSocket client connected", "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Debug("WebSocket client disconnected", "clients", len(h.clients))
			}

		case ev := <-h.events:
			for client := range h.clients {
				if !client.watches(ev.phoneNumber) {
					continue
				}
				select {
				case client.send <- ev.data:
				default:
					// Slow consumer, drop it.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// ConversationTurn broadcasts a new turn to watching clients. Never
// blocks the caller; if the hub is saturated the event is dropped.
func (h *Hub) ConversationTurn(phoneNumber string, turn models.Turn) {
	data, err := json.Marshal(WSMessage{
		Type: TypeConversationTurn,
		Payload: TurnPayload{
			PhoneNumber: phoneNumber,
			Turn:        turn,
			Time:        time.Now().UTC(),
		},
	})
	if err != nil {
		h.log.Error("Failed to marshal turn event", "error", err)
		return
	}

	select {
	case h.events <- turnEvent{phoneNumber: phoneNumber, data: data}:
	default:
		h.log.Error("WebSocket event queue full, dropping turn", "phone", phoneNumber)
	}
}
