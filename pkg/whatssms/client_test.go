package whatssms_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertexaitech/supportbot/pkg/whatssms"
	"github.com/vertexaitech/supportbot/test/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *whatssms.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return whatssms.New(testutil.NopLogger(), whatssms.Opts{
		BaseURL:   server.URL,
		Secret:    "test-secret",
		AccountID: "acc-1",
	})
}

func TestClient_Send(t *testing.T) {
	t.Parallel()

	var gotForm map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"secret":    r.PostFormValue("secret"),
			"account":   r.PostFormValue("account"),
			"recipient": r.PostFormValue("recipient"),
			"type":      r.PostFormValue("type"),
			"message":   r.PostFormValue("message"),
		}
		assert.Equal(t, "/send/whatsapp", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":200,"message":"WhatsApp chat has been queued for sending!"}`))
	})

	ok := client.Send(testutil.TestContext(t), "+923001112233", "hello there")
	assert.True(t, ok)
	assert.Equal(t, map[string]string{
		"secret":    "test-secret",
		"account":   "acc-1",
		"recipient": "+923001112233",
		"type":      "text",
		"message":   "hello there",
	}, gotForm)
}

func TestClient_SendFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "gateway rejection with http 200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"status":403,"message":"Invalid account"}`))
			},
		},
		{
			name: "non-json body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`<html>error</html>`))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, tt.handler)
			assert.False(t, client.Send(testutil.TestContext(t), "+923001112233", "hi"))
		})
	}
}

// A dead gateway must yield false, never a panic or error.
func TestClient_SendTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := whatssms.New(testutil.NopLogger(), whatssms.Opts{
		BaseURL:   server.URL,
		Secret:    "s",
		AccountID: "a",
	})
	server.Close()

	assert.False(t, client.Send(testutil.TestContext(t), "+923001112233", "hi"))
}
