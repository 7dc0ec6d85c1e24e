package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zvgcli/pkg/contracts/events"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	hub := NewHub(logger, nil, 0, 0)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func testClient(hub *Hub, id string) *Client {
	return &Client{
		id:          id,
		hub:         hub,
		send:        make(chan []byte, 256),
		connectedAt: time.Now(),
		remoteAddr:  "127.0.0.1:52428",
		pingPeriod:  defaultPingPeriod,
		pongWait:    defaultPongWait,
		logger:      slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

func TestHubStartStop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	hub := NewHub(logger, nil, 0, 0)

	hub.Start()
	assert.True(t, hub.running)

	// Idempotent
	hub.Start()
	assert.True(t, hub.running)

	time.Sleep(10 * time.Millisecond)

	hub.Stop()
	assert.False(t, hub.running)
	hub.Stop()
	assert.False(t, hub.running)
}

func TestHubClientRegistration(t *testing.T) {
	hub := testHub(t)
	client := testClient(hub, "test-client-1")

	hub.Register(client)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	// The hub greets a new client with a connection message.
	select {
	case msg := <-client.send:
		var envelope map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &envelope))
		assert.Equal(t, events.TypeConnection, envelope["type"])
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, "connected", data["status"])
		assert.Equal(t, "test-client-1", data["client_id"])
		assert.NotEmpty(t, envelope["timestamp"])
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for connection message")
	}

	hub.unregister <- client
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubBroadcastEnvelope(t *testing.T) {
	hub := testHub(t)

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = testClient(hub, fmt.Sprintf("test-client-%d", i))
		hub.Register(clients[i])
	}
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 3, hub.ClientCount())

	for _, c := range clients {
		<-c.send // drain the welcome message
	}

	hub.Broadcast("search_progress", map[string]interface{}{
		"stage": "fetched",
		"land":  "by",
		"count": 12,
	})

	for _, c := range clients {
		select {
		case msg := <-c.send:
			var envelope map[string]interface{}
			require.NoError(t, json.Unmarshal(msg, &envelope))
			assert.Equal(t, "search_progress", envelope["type"])
			data := envelope["data"].(map[string]interface{})
			assert.Equal(t, "fetched", data["stage"])
			assert.Equal(t, "by", data["land"])
			assert.Equal(t, float64(12), data["count"])
			assert.NotEmpty(t, envelope["timestamp"])
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive broadcast", c.id)
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := testHub(t)

	// A one-slot buffer that is never drained fills on the welcome message.
	slow := testClient(hub, "slow-client")
	slow.send = make(chan []byte, 1)
	hub.Register(slow)

	fast := testClient(hub, "fast-client")
	hub.Register(fast)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 2, hub.ClientCount())
	<-fast.send

	hub.Broadcast("search_progress", map[string]interface{}{"stage": "started"})
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, hub.ClientCount())

	select {
	case msg := <-fast.send:
		assert.Contains(t, string(msg), "search_progress")
	case <-time.After(time.Second):
		t.Fatal("fast client did not receive broadcast")
	}
}

func TestHubStopClosesClients(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	hub := NewHub(logger, nil, 0, 0)
	hub.Start()

	client := testClient(hub, "test-client")
	hub.Register(client)
	time.Sleep(50 * time.Millisecond)

	hub.Stop()

	// Drain until the closed channel reports !ok.
	for {
		if _, ok := <-client.send; !ok {
			break
		}
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubStats(t *testing.T) {
	hub := testHub(t)

	client := testClient(hub, "test-client")
	hub.Register(client)
	time.Sleep(50 * time.Millisecond)

	stats := hub.Stats()
	assert.Equal(t, 1, stats["active_clients"])
	assert.Equal(t, int64(1), stats["total_connections"])
}
