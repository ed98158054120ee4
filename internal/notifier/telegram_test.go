package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T, h http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = server.URL
	return n
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true}`)
	})

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramNotifier_SendWithRetryExhausted(t *testing.T) {
	var calls int32
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false}`)
	})

	err := n.SendWithRetry(context.Background(), "x", 0)
	assert.ErrorContains(t, err, "all 1 retries exhausted")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTelegramNotifier_SendWithRetryCancelled(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.SendWithRetry(ctx, "x", 3), context.Canceled)
}

func TestTelegramNotifier_GetUpdates(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("offset"))
		fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"text":" /risk "}},{"update_id":8}]}`)
	})

	updates, err := n.getUpdates(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, " /risk ", updates[0].Message.Text)
	assert.Nil(t, updates[1].Message)
}

func TestTelegramNotifier_GetUpdatesNotOK(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"ok":false,"description":"Unauthorized"}`)
	})

	_, err := n.getUpdates(context.Background(), 0, 0)
	assert.ErrorContains(t, err, "401")
}

func TestHandleSafely(t *testing.T) {
	tests := []struct {
		name    string
		handler CommandHandler
		want    string
	}{
		{
			name:    "reply passes through",
			handler: func(_ context.Context, cmd string) string { return "ok " + cmd },
			want:    "ok /risk",
		},
		{
			name:    "panic becomes error reply",
			handler: func(context.Context, string) string { panic("boom") },
			want:    "❌ internal error handling /risk",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			require.NotPanics(t, func() { got = handleSafely(context.Background(), tt.handler, "/risk") })
			assert.Equal(t, tt.want, got)
		})
	}
}
