// Package events contains the WebSocket message contracts for live dashboard sessions.
package events

import (
	"encoding/json"
	"time"
)

// Protocol version
const (
	ProtocolVersion = "1.0"
	ProtocolName    = "enrolpulse-websocket-protocol"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client requests
	MessageTypeSelect   MessageType = "select"
	MessageTypeInsights MessageType = "insights"
	MessageTypePing     MessageType = "ping"

	// Server messages
	MessageTypeDashboard  MessageType = "dashboard"
	MessageTypeDataUpdate MessageType = "data_update"
	MessageTypePong       MessageType = "pong"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete server-to-client message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// ClientMessage is a message received from a browser.
// Data is decoded according to Type.
type ClientMessage struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SelectPayload carries a region selection.
type SelectPayload struct {
	State string `json:"state"`
}

// ConnectPayload is sent once after the upgrade.
type ConnectPayload struct {
	ClientID string   `json:"client_id"`
	Protocol string   `json:"protocol"`
	Version  string   `json:"version"`
	Regions  []string `json:"regions,omitempty"`
}

// DataUpdatePayload announces that the served dataset changed.
type DataUpdatePayload struct {
	Fingerprint string    `json:"fingerprint"`
	Rows        int       `json:"rows"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// ErrorPayload describes a failed client request.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

// Error codes sent in ErrorPayload
const (
	ErrCodeInvalidFrame    = "INVALID_FRAME"
	ErrCodeUnsupportedType = "UNSUPPORTED_TYPE"
	ErrCodeInvalidRegion   = "INVALID_REGION"
	ErrCodeRenderFailed    = "RENDER_FAILED"
)

// NewMessage builds a server message stamped with the current time.
func NewMessage(msgType MessageType, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now(),
		},
		Data: data,
	}
}
