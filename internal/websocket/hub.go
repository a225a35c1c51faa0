package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"enrolpulse/internal/infrastructure"
	"enrolpulse/pkg/contracts/events"
)

// Hub maintains the set of live sessions and fans dataset updates out to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex

	renderer SessionRenderer
	metrics  *infrastructure.DashboardMetrics
	logger   *slog.Logger

	pingPeriod time.Duration
	pongWait   time.Duration

	totalConnections int64
	messagesSent     atomic.Int64
	messagesReceived atomic.Int64

	// Control
	quit    chan struct{}
	running bool
}

// NewHub creates a hub whose sessions render through renderer
func NewHub(renderer SessionRenderer, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		renderer:   renderer,
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
	}
}

// SetMetrics attaches the application instruments
func (h *Hub) SetMetrics(m *infrastructure.DashboardMetrics) {
	h.metrics = m
}

// SetKeepalive overrides the ping period and pong deadline for new clients.
// The ping period must be shorter than the pong wait; other values are ignored.
func (h *Hub) SetKeepalive(ping, pong time.Duration) {
	if ping <= 0 || pong <= ping {
		h.logger.Warn("Ignoring invalid keepalive settings",
			slog.Duration("ping_period", ping),
			slog.Duration("pong_wait", pong))
		return
	}
	h.pingPeriod = ping
	h.pongWait = pong
}

// Start starts the hub loop once
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

// Run is the hub's main loop. It owns registration and broadcast delivery.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			h.metrics.RecordWebSocketClient(ctx, 1)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.sendConnect(ctx, client)

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				ctx := client.context()
				h.metrics.RecordWebSocketClient(ctx, -1)
				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			}

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// fanOut delivers message to every client, dropping clients whose buffer is full
func (h *Hub) fanOut(message []byte) {
	var slow []*Client

	h.mu.RLock()
	count := len(h.clients)
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	h.messagesSent.Add(int64(count - len(slow)))

	h.mu.Lock()
	for _, client := range slow {
		if _, ok := h.clients[client]; ok {
			delete(h.clients, client)
			close(client.send)
			h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}
	h.mu.Unlock()

	h.logger.Debug("Broadcast delivered",
		slog.Int("client_count", count),
		slog.Int("dropped", len(slow)),
		slog.Int("message_size", len(message)))
}

// deliver queues message for one client. It reports false when the client is
// gone or its buffer is full.
func (h *Hub) deliver(client *Client, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return false
	}
	select {
	case client.send <- message:
		h.messagesSent.Add(1)
		return true
	default:
		h.logger.Warn("Client send buffer full, message dropped",
			slog.String("client_id", client.id))
		return false
	}
}

func (h *Hub) sendConnect(ctx context.Context, client *Client) {
	payload := events.ConnectPayload{
		ClientID: client.id,
		Protocol: events.ProtocolName,
		Version:  events.ProtocolVersion,
	}
	if h.renderer != nil {
		regions, err := h.renderer.Regions(ctx)
		if err != nil {
			h.logger.WarnContext(ctx, "Regions unavailable for new client", slog.String("error", err.Error()))
		}
		payload.Regions = regions
	}
	client.sendMessage(ctx, events.MessageTypeConnect, payload)
}

// BroadcastDataUpdate announces a reloaded dataset, then pushes every session a
// fresh dashboard for the region it has selected.
func (h *Hub) BroadcastDataUpdate(payload events.DataUpdatePayload) {
	data, err := json.Marshal(events.NewMessage(events.MessageTypeDataUpdate, payload))
	if err != nil {
		h.logger.Error("Error marshaling data update", slog.String("error", err.Error()))
		return
	}

	clients := h.snapshot()
	h.logger.Info("Broadcasting data update",
		slog.String("fingerprint", payload.Fingerprint),
		slog.Int("rows", payload.Rows),
		slog.Int("client_count", len(clients)))

	// per client, so the update always precedes the refreshed dashboard
	ctx := context.Background()
	for _, client := range clients {
		if h.deliver(client, data) {
			client.sendDashboard(ctx, false)
		}
	}
}

// BroadcastMessage sends msg to every connected client
func (h *Hub) BroadcastMessage(msg events.WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msg.Type)))
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Stop stops the loop and closes every client
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.quit)

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// GetHubMetrics returns current hub counters
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent.Load(),
		"messages_received": h.messagesReceived.Load(),
	}
}
