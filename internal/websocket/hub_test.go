package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"customer-service-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestSendTargetsUser(t *testing.T) {
	hub := startHub(t)
	alice := &Client{Hub: hub, UserID: "alice@example.com", Send: make(chan []byte, 4)}
	bob := &Client{Hub: hub, UserID: "bob@example.com", Send: make(chan []byte, 4)}
	hub.register <- alice
	hub.register <- bob

	require.Eventually(t, func() bool { return hub.ConnectedClients() == 2 }, time.Second, 10*time.Millisecond)

	hub.Send("alice@example.com", Notification{Type: "payment.succeeded", Title: "Payment received"})

	msg := receive(t, alice)
	assert.Equal(t, "notification", msg["type"])
	data := msg["data"].(map[string]interface{})
	assert.Equal(t, "payment.succeeded", data["type"])
	assert.Len(t, bob.Send, 0)
}

func TestStoppedHubDoesNotBlockSenders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, logger.NewNopLogger())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := &Client{Hub: hub, UserID: "a", Send: make(chan []byte)}
	require.True(t, hub.join(c))
	cancel()
	<-stopped

	finished := make(chan struct{})
	go func() {
		hub.leave(c)
		assert.False(t, hub.join(&Client{Hub: hub, UserID: "b"}))
		// unbuffered Send is always full, delivery hands the client to leave
		hub.Send("a", Notification{Type: "payment.updated"})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("sender blocked after the hub stopped")
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := &Client{Hub: hub, UserID: "a", Send: make(chan []byte, 1)}
	hub.register <- c
	hub.unregister <- c

	require.Eventually(t, func() bool { return hub.ConnectedClients() == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}
