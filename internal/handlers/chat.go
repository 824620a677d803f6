package handlers

import (
	"strings"

	"github.com/valyala/fasthttp"
	"github.com/vertexaitech/supportbot/internal/models"
	"github.com/vertexaitech/supportbot/pkg/groq"
	"github.com/zerodha/fastglue"
)

// Chat answers a single website chat message through the LLM, outside
// any WhatsApp conversation. Both sides of the exchange are logged to
// chat_messages.
func (a *App) Chat(r *fastglue.Request) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := r.Decode(&req, "json"); err != nil {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "Invalid request body", nil, "")
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "message is required", nil, "")
	}

	if err := a.DB.Create(&models.ChatMessage{Role: "user", Content: req.Message}).Error; err != nil {
		a.Log.Error("Failed to log chat message", "error", err)
	}

	messages := []groq.Message{{Role: "user", Content: req.Message}}
	reply, err := a.Groq.Completion(r.RequestCtx, messages, 0.3)
	if err != nil {
		a.Log.Error("Chat completion failed", "error", err)
		return r.SendErrorEnvelope(fasthttp.StatusBadGateway, "Failed to generate response", nil, "")
	}

	if err := a.DB.Create(&models.ChatMessage{Role: "assistant", Content: reply}).Error; err != nil {
		a.Log.Error("Failed to log chat reply", "error", err)
	}

	return r.SendEnvelope(map[string]any{
		"response": reply,
	})
}
