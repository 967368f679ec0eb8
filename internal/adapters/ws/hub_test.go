package ws_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldes/fleetcore-go/internal/adapters/ws"
)

func TestHub_PublishReachesSubscriber(t *testing.T) {
	// Arrange
	hub := ws.NewHub(16)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The register message travels over a channel; give the hub a beat
	time.Sleep(50 * time.Millisecond)

	// Act
	hub.Publish("task_started", map[string]string{"shipSymbol": "FLEET-1"})

	// Assert
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var message ws.Message
	require.NoError(t, json.Unmarshal(payload, &message))
	assert.Equal(t, "task_started", message.Event)
	assert.False(t, message.Timestamp.IsZero())

	data, ok := message.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "FLEET-1", data["shipSymbol"])
}

func TestHub_PublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub := ws.NewHub(2)
	// No Run loop: the queue fills and further publishes are dropped

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish("task_progress", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}
