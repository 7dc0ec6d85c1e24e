// Package websocket fans search and export progress events out to connected
// browser clients. Services publish through Broadcast; the hub owns the
// client set and the delivery loop.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"zvgcli/internal/infrastructure"
	"zvgcli/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages to fan out
	broadcast chan []byte

	// Register requests from new connections
	register chan *Client

	// Unregister requests from closing connections
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.Metrics

	// Heartbeat settings for clients, zero values fall back to the
	// package defaults in client.go.
	pingPeriod time.Duration
	pongWait   time.Duration

	totalConnections int64
	messagesSent     int64
	droppedClients   int64

	quit    chan struct{}
	running bool
}

// NewHub creates a hub. Metrics may be nil when telemetry is disabled; ping
// and pong durations of zero use the package defaults.
func NewHub(logger *slog.Logger, metrics *infrastructure.Metrics, pingPeriod, pongWait time.Duration) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		metrics:    metrics,
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
		quit:       make(chan struct{}),
	}
}

// Start launches the hub loop. Broadcast blocks until Start has been called.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop. Start runs it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.totalConnections++
	h.mu.Unlock()

	ctx := context.Background()
	if client.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, client.traceID)
	}

	h.logger.InfoContext(ctx, "client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	infrastructure.RecordWSConnectionChange(ctx, h.metrics, 1)

	welcome := events.NewMessage(events.TypeConnection, events.Connected{
		Status:   "connected",
		ClientID: client.id,
	})
	welcome.TraceID = client.traceID

	if jsonData, err := json.Marshal(welcome); err == nil {
		select {
		case client.send <- jsonData:
		default:
			h.logger.WarnContext(ctx, "welcome message dropped, client buffer full",
				slog.String("client_id", client.id))
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := context.Background()
	if client.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, client.traceID)
	}

	h.logger.InfoContext(ctx, "client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))

	infrastructure.RecordWSConnectionChange(ctx, h.metrics, -1)
}

func (h *Hub) fanOut(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	delivered := 0
	dropped := 0
	for _, client := range clients {
		select {
		case client.send <- message:
			delivered++
		default:
			// Client cannot keep up, disconnect it.
			dropped++
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

			h.logger.Warn("client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}

	h.mu.Lock()
	h.messagesSent += int64(delivered)
	h.droppedClients += int64(dropped)
	h.mu.Unlock()

	if dropped > 0 {
		h.logger.Warn("broadcast missed clients",
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped))
	}
}

// Broadcast wraps data in the message envelope and delivers it to every
// connected client. It satisfies the broadcaster interface the services use.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	envelope := events.NewMessage(messageType, data)

	jsonData, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("marshal broadcast message",
			slog.String("type", messageType),
			slog.String("error", err.Error()))
		return
	}

	h.broadcast <- jsonData

	infrastructure.RecordWSMessagesSent(context.Background(), h.metrics, int64(h.ClientCount()), messageType)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats reports hub counters for diagnostics.
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"dropped_clients":   h.droppedClients,
	}
}

// Register queues a client for registration with the hub loop.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Stop shuts the hub down and closes all client connections.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
