package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"enrolpulse/internal/dashboard"
	"enrolpulse/internal/dataprocessing"
	apperrors "enrolpulse/internal/errors"
	"enrolpulse/internal/infrastructure"
	"enrolpulse/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Default time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Default ping period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Time allowed for one render requested by the peer
	renderTimeout = 30 * time.Second
)

// Client is one live dashboard session. It remembers the selected region for
// the life of the connection; insights are produced only for the message that
// asks for them.
type Client struct {
	hub *Hub

	// The websocket connection
	conn Connection

	// Buffered channel of outbound messages
	send chan []byte

	// Client metadata
	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger

	mu     sync.Mutex
	region string
}

// NewClient creates a session over an upgraded connection. traceID may be empty.
func NewClient(hub *Hub, conn Connection, traceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	if traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger:      logger,
		region:      dataprocessing.AllRegions,
	}
}

// ID returns the client identifier
func (c *Client) ID() string {
	return c.id
}

// Region returns the currently selected region
func (c *Client) Region() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region
}

func (c *Client) setRegion(region string) {
	c.mu.Lock()
	c.region = region
	c.mu.Unlock()
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// ReadPump reads client messages until the connection fails, answering each
// one on the send channel.
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.context(), "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.String("region", c.Region()))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	wait := c.hub.pongWait
	c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(wait)) })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.hub.messagesReceived.Add(1)
		c.handleMessage(bytes.TrimSpace(message))
	}
}

// handleMessage dispatches one client frame
func (c *Client) handleMessage(raw []byte) {
	ctx, cancel := context.WithTimeout(c.context(), renderTimeout)
	defer cancel()

	var msg events.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError(ctx, events.ErrCodeInvalidFrame, "message is not valid JSON")
		return
	}

	switch msg.Type {
	case events.MessageTypeSelect:
		var payload events.SelectPayload
		if len(msg.Data) == 0 || json.Unmarshal(msg.Data, &payload) != nil {
			c.sendError(ctx, events.ErrCodeInvalidFrame, `select needs {"state": "..."}`)
			return
		}
		region := payload.State
		if region == "" {
			region = dataprocessing.AllRegions
		}
		if vm := c.render(ctx, dashboard.Request{Region: region}); vm != nil {
			c.setRegion(vm.Region)
			c.sendMessage(ctx, events.MessageTypeDashboard, vm)
		}

	case events.MessageTypeInsights:
		c.sendDashboard(ctx, true)

	case events.MessageTypePing:
		c.sendMessage(ctx, events.MessageTypePong, nil)

	default:
		c.logger.DebugContext(ctx, "Unsupported message type", slog.String("type", string(msg.Type)))
		c.sendError(ctx, events.ErrCodeUnsupportedType, "unsupported message type "+string(msg.Type))
	}
}

// sendDashboard renders the current selection and queues it
func (c *Client) sendDashboard(ctx context.Context, insights bool) {
	if vm := c.render(ctx, dashboard.Request{Region: c.Region(), Insights: insights}); vm != nil {
		c.sendMessage(ctx, events.MessageTypeDashboard, vm)
	}
}

// render returns nil after reporting the failure to the client
func (c *Client) render(ctx context.Context, req dashboard.Request) *dashboard.ViewModel {
	if c.hub.renderer == nil {
		c.sendError(ctx, events.ErrCodeRenderFailed, "dashboard unavailable")
		return nil
	}

	vm, err := c.hub.renderer.Render(ctx, req)
	if err == nil {
		return vm
	}

	code := events.ErrCodeRenderFailed
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type == apperrors.ErrTypeValidation {
		code = events.ErrCodeInvalidRegion
	}
	c.logger.WarnContext(ctx, "Session render failed",
		slog.String("region", req.Region),
		slog.String("error", err.Error()))
	c.sendError(ctx, code, err.Error())
	return nil
}

func (c *Client) sendError(ctx context.Context, code, message string) {
	c.sendMessage(ctx, events.MessageTypeError, events.ErrorPayload{Code: code, Message: message})
}

func (c *Client) sendMessage(ctx context.Context, msgType events.MessageType, data interface{}) {
	msg := events.NewMessage(msgType, data)
	msg.TraceID = c.traceID

	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("type", string(msgType)),
			slog.String("error", err.Error()))
		return
	}
	c.hub.deliver(c, payload)
}

// WritePump writes queued messages and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.context(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

// ServeWS registers a session for conn and starts its pumps
func ServeWS(hub *Hub, conn Connection, traceID string, logger *slog.Logger) *Client {
	client := NewClient(hub, conn, traceID, logger)
	hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
	return client
}
