package groq_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertexaitech/supportbot/pkg/groq"
	"github.com/vertexaitech/supportbot/test/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *groq.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return groq.New(testutil.NopLogger(), groq.Opts{
		APIKey:   "gsk-test",
		Endpoint: server.URL,
	})
}

func completionBody(reply string) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": reply}},
		},
	})
	return b
}

func TestComplete(t *testing.T) {
	t.Parallel()

	var captured map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(completionBody("We build custom apps."))
	})

	history := []groq.Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "Hello 👋 How can I help you today?"},
	}

	reply := client.Complete(testutil.TestContext(t), history, "what do you build?")
	assert.Equal(t, "We build custom apps.", reply)

	assert.Equal(t, groq.DefaultModel, captured["model"])
	assert.Equal(t, 0.7, captured["temperature"])
	assert.Equal(t, float64(200), captured["max_tokens"])
	assert.Equal(t, false, captured["stream"])

	// System prompt first, then history, then the current message.
	msgs := captured["messages"].([]interface{})
	require.Len(t, msgs, 4)
	first := msgs[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Contains(t, first["content"], "Vertex AI Tech")
	last := msgs[3].(map[string]interface{})
	assert.Equal(t, "user", last["role"])
	assert.Equal(t, "what do you build?", last["content"])
}

func TestCompleteMissingAPIKey(t *testing.T) {
	t.Parallel()

	client := groq.New(testutil.NopLogger(), groq.Opts{})
	reply := client.Complete(testutil.TestContext(t), nil, "hello")
	assert.Equal(t, groq.ReplyNoCredentials, reply)
}

func TestCompleteAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	})

	reply := client.Complete(testutil.TestContext(t), nil, "hello")
	assert.Equal(t, groq.ReplyAPIError, reply)
}

func TestCompleteTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := groq.New(testutil.NopLogger(), groq.Opts{APIKey: "gsk-test", Endpoint: server.URL})
	server.Close()

	reply := client.Complete(testutil.TestContext(t), nil, "hello")
	assert.Equal(t, groq.ReplyInternalError, reply)
}

func TestCompleteMalformedResponse(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`not json`))
	})

	reply := client.Complete(testutil.TestContext(t), nil, "hello")
	assert.Equal(t, groq.ReplyInternalError, reply)
}

func TestCompletionError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.Completion(testutil.TestContext(t), []groq.Message{{Role: "user", Content: "x"}}, 0.3)
	require.Error(t, err)

	var apiErr *groq.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}
