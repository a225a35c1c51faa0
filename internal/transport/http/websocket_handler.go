package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"enrolpulse/internal/config"
	apierrors "enrolpulse/internal/errors"
	"enrolpulse/internal/infrastructure"
	ws "enrolpulse/internal/websocket"
)

// WebSocketHandler upgrades /ws requests into live dashboard sessions
type WebSocketHandler struct {
	hub            *ws.Hub
	upgrader       websocket.Upgrader
	allowedOrigins []string
	errorHandler   *apierrors.ErrorHandler
	logger         *slog.Logger
}

// NewWebSocketHandler creates the handler. Same-host origins are always accepted.
func NewWebSocketHandler(hub *ws.Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:            hub,
		allowedOrigins: allowedOrigins,
		errorHandler:   errorHandler,
		logger:         logger.With(slog.String("component", "websocket_handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error:           h.upgradeError,
	}
	return h
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgradeError already answered
		return
	}

	client := ws.ServeWS(h.hub, ws.WrapConn(conn), infrastructure.GetTraceID(r.Context()), h.logger)
	h.logger.InfoContext(r.Context(), "WebSocket session started",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", conn.RemoteAddr().String()))
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	h.logger.WarnContext(r.Context(), "WebSocket origin rejected", slog.String("origin", origin))
	return false
}

func (h *WebSocketHandler) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	apiErr := apierrors.NewWithDetails(status, "WEBSOCKET_UPGRADE_FAILED", "WebSocket upgrade failed", reason.Error())
	h.errorHandler.HandleError(w, r, apiErr)
}
