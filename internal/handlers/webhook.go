package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/vertexaitech/supportbot/internal/phone"
	"github.com/zerodha/fastglue"
)

// WebhookPayload is the normalized form of an inbound gateway
// delivery, whichever body shape it arrived in.
type WebhookPayload struct {
	MessageType string // whatsapp or sms
	MessageID   string
	Phone       string
	Message     string
	Timestamp   string
	Secret      string
	// BotAccount is the receiving account: wid for whatsapp, device
	// for sms, account otherwise.
	BotAccount string
}

// errIgnore marks payloads the webhook acknowledges without
// processing.
var errIgnore = fmt.Errorf("ignored")

// ParseWebhookPayload decodes the three body shapes the gateway is
// known to send:
//
//   - JSON: {"type": "...", "data": {...}}
//   - flat form: type=...&phone=...&message=...
//   - bracket form: type=...&data[phone]=...&data[message]=...
//
// Returns errIgnore for bodies that don't carry a message.
func ParseWebhookPayload(contentType string, body []byte) (*WebhookPayload, error) {
	var fields map[string]string

	if strings.Contains(contentType, "application/json") {
		f, err := parseJSONBody(body)
		if err != nil {
			return nil, err
		}
		fields = f
	} else if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		f, err := parseFormBody(body)
		if err != nil {
			return nil, err
		}
		fields = f
	} else {
		// Unknown content type: try JSON first, then form.
		if f, err := parseJSONBody(body); err == nil {
			fields = f
		} else if f, err := parseFormBody(body); err == nil {
			fields = f
		} else {
			return nil, fmt.Errorf("unparseable body")
		}
	}

	messageType := fields["type"]
	if messageType == "" || fields["__has_data"] == "" {
		return nil, errIgnore
	}

	p := &WebhookPayload{
		MessageType: messageType,
		MessageID:   fields["id"],
		Phone:       fields["phone"],
		Message:     fields["message"],
		Timestamp:   fields["timestamp"],
		Secret:      fields["secret"],
	}

	switch messageType {
	case "whatsapp":
		p.BotAccount = fields["wid"]
	case "sms":
		p.BotAccount = fields["device"]
	default:
		p.BotAccount = fields["account"]
	}

	return p, nil
}

// parseJSONBody flattens {"type","secret","data":{...}} into a field
// map. The __has_data marker distinguishes a usable payload from a
// structurally valid but message-less one.
func parseJSONBody(body []byte) (map[string]string, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}

	if data, ok := raw["data"].(map[string]interface{}); ok {
		for k, v := range data {
			fields[k] = fmt.Sprintf("%v", v)
		}
		fields["__has_data"] = "1"
	} else if fields["phone"] != "" {
		fields["__has_data"] = "1"
	}

	return fields, nil
}

// parseFormBody flattens flat and data[field] form bodies.
func parseFormBody(body []byte) (map[string]string, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("empty form body")
	}

	fields := map[string]string{}
	for k := range values {
		v := values.Get(k)
		if strings.HasPrefix(k, "data[") && strings.HasSuffix(k, "]") {
			fields[k[5:len(k)-1]] = v
			fields["__has_data"] = "1"
		} else {
			fields[k] = v
		}
	}

	if fields["phone"] != "" {
		fields["__has_data"] = "1"
	}

	return fields, nil
}

// WebhookHandler receives inbound messages from the gateway. It
// always answers 200: the gateway retries on any other status, and a
// retried message means a duplicated conversation turn.
func (a *App) WebhookHandler(r *fastglue.Request) error {
	contentType := string(r.RequestCtx.Request.Header.ContentType())
	body := r.RequestCtx.PostBody()

	payload, err := ParseWebhookPayload(contentType, body)
	if err != nil {
		if err == errIgnore {
			a.Log.Warn("Webhook payload missing required fields")
			return webhookOK(r, "ignored")
		}
		a.Log.Error("Failed to parse webhook body", "error", err, "content_type", contentType)
		return webhookOK(r, "parse_error")
	}

	a.verifyWebhookSecret(r, payload)

	sender := phone.Normalize(payload.Phone)
	if sender == "" {
		a.Log.Error("No sender in webhook payload, cannot reply")
		return webhookOK(r, "no_sender")
	}

	if a.isDuplicate(r, payload.MessageID) {
		a.Log.Info("Duplicate webhook delivery skipped", "message_id", payload.MessageID)
		return webhookOK(r, "duplicate")
	}

	a.Log.Info("Webhook message received",
		"type", payload.MessageType,
		"message_id", payload.MessageID,
		"sender", sender,
		"bot_account", payload.BotAccount)

	if sent := a.Engine.Handle(r.RequestCtx, sender, payload.Message); !sent {
		return webhookOK(r, "bot_processing_failed")
	}
	return webhookOK(r, "processed")
}

// verifyWebhookSecret compares the delivered secret against the
// configured one. Mismatches are logged, never rejected; the gateway
// does not sign payloads, so the secret is informational.
func (a *App) verifyWebhookSecret(r *fastglue.Request, payload *WebhookPayload) {
	incoming := payload.Secret
	if incoming == "" {
		incoming = string(r.RequestCtx.Request.Header.Peek("X-Webhook-Secret"))
	}

	expected := a.Config.Gateway.WebhookSecret
	switch {
	case expected == "":
		a.Log.Error("Webhook secret not configured")
	case incoming == "":
		a.Log.Info("No webhook secret provided")
	case subtle.ConstantTimeCompare([]byte(incoming), []byte(expected)) == 1:
		a.Log.Info("Webhook secret verified")
	default:
		a.Log.Warn("Invalid webhook secret")
	}
}

// isDuplicate marks the message ID as seen in Redis and reports
// whether it already was. Redis trouble counts as not-duplicate;
// processing twice beats dropping.
func (a *App) isDuplicate(r *fastglue.Request, messageID string) bool {
	if a.Redis == nil || messageID == "" {
		return false
	}

	ttl := time.Duration(a.Config.Bot.DedupTTLMins) * time.Minute
	set, err := a.Redis.SetNX(r.RequestCtx, "webhook:msg:"+messageID, 1, ttl).Result()
	if err != nil {
		a.Log.Error("Webhook dedup check failed", "error", err, "message_id", messageID)
		return false
	}
	return !set
}

// WebhookVerify answers the gateway's GET verification probe.
func (a *App) WebhookVerify(r *fastglue.Request) error {
	return webhookJSON(r, map[string]string{
		"status":  "webhook_ready",
		"service": "supportbot",
	})
}

// webhookOK writes the gateway acknowledgement. Status is always 200.
func webhookOK(r *fastglue.Request, marker string) error {
	return webhookJSON(r, map[string]string{
		"status":  "ok",
		"message": marker,
	})
}

func webhookJSON(r *fastglue.Request, body map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		data = []byte(`{"status":"ok"}`)
	}
	r.RequestCtx.SetStatusCode(fasthttp.StatusOK)
	r.RequestCtx.SetContentType("application/json")
	r.RequestCtx.SetBody(data)
	return nil
}
