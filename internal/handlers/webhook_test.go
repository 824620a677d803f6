package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookPayloadJSON(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"type": "whatsapp",
		"secret": "topsecret",
		"data": {
			"id": 42,
			"wid": "+923330000000",
			"phone": "+923001112233",
			"message": "hello there",
			"timestamp": "1724400000"
		}
	}`)

	p, err := ParseWebhookPayload("application/json", body)
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", p.MessageType)
	assert.Equal(t, "42", p.MessageID)
	assert.Equal(t, "+923001112233", p.Phone)
	assert.Equal(t, "hello there", p.Message)
	assert.Equal(t, "topsecret", p.Secret)
	assert.Equal(t, "+923330000000", p.BotAccount)
}

func TestParseWebhookPayloadFlatForm(t *testing.T) {
	t.Parallel()

	body := []byte("type=sms&id=abc123&device=dev-7&phone=03001112233&message=need+help&timestamp=1724400000")

	p, err := ParseWebhookPayload("application/x-www-form-urlencoded", body)
	require.NoError(t, err)

	assert.Equal(t, "sms", p.MessageType)
	assert.Equal(t, "abc123", p.MessageID)
	assert.Equal(t, "03001112233", p.Phone)
	assert.Equal(t, "need help", p.Message)
	assert.Equal(t, "dev-7", p.BotAccount)
}

func TestParseWebhookPayloadBracketForm(t *testing.T) {
	t.Parallel()

	body := []byte("type=whatsapp&secret=s3cret&data%5Bid%5D=77&data%5Bwid%5D=wid-1&data%5Bphone%5D=%2B923001112233&data%5Bmessage%5D=hi")

	p, err := ParseWebhookPayload("application/x-www-form-urlencoded", body)
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", p.MessageType)
	assert.Equal(t, "77", p.MessageID)
	assert.Equal(t, "+923001112233", p.Phone)
	assert.Equal(t, "hi", p.Message)
	assert.Equal(t, "s3cret", p.Secret)
	assert.Equal(t, "wid-1", p.BotAccount)
}

func TestParseWebhookPayloadAccountFallback(t *testing.T) {
	t.Parallel()

	body := []byte(`{"type":"telegram","data":{"account":"acct-9","phone":"+923001112233","message":"hi"}}`)

	p, err := ParseWebhookPayload("application/json", body)
	require.NoError(t, err)
	assert.Equal(t, "acct-9", p.BotAccount)
}

func TestParseWebhookPayloadUnknownContentType(t *testing.T) {
	t.Parallel()

	// JSON body delivered with a generic content type still parses.
	body := []byte(`{"type":"whatsapp","data":{"phone":"+923001112233","message":"hi"}}`)
	p, err := ParseWebhookPayload("text/plain", body)
	require.NoError(t, err)
	assert.Equal(t, "+923001112233", p.Phone)

	// So does a form body.
	p, err = ParseWebhookPayload("", []byte("type=sms&phone=03001112233&message=hi"))
	require.NoError(t, err)
	assert.Equal(t, "03001112233", p.Phone)
}

func TestParseWebhookPayloadIgnored(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ct   string
		body string
	}{
		{"missing type", "application/json", `{"data":{"phone":"+92300"}}`},
		{"no data or phone", "application/json", `{"type":"whatsapp"}`},
		{"form without payload", "application/x-www-form-urlencoded", "type=whatsapp"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseWebhookPayload(tc.ct, []byte(tc.body))
			assert.ErrorIs(t, err, errIgnore)
		})
	}
}

func TestParseWebhookPayloadGarbage(t *testing.T) {
	t.Parallel()

	_, err := ParseWebhookPayload("application/json", []byte("{not json"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errIgnore)
}
