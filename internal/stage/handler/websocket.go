package handler

import (
	"bytes"
	"context"
	"errors"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/internal/session"
	"github.com/msto63/dramatica/internal/stage/schema"
)

const wsReadTimeout = 120 * time.Second

var errMissingPayload = errors.New("missing payload")

// WebSocketHandler runs interactive sessions over a WebSocket connection
type WebSocketHandler struct {
	manager   *session.Manager
	validator *schema.Validator
	logger    *mdwlog.Logger
	upgrader  websocket.Upgrader
	maxSize   int64
}

// NewWebSocketHandler creates a new WebSocket handler. With an empty
// origin list every origin is accepted. Frames larger than maxSize bytes
// close the connection; zero selects 1 MiB.
func NewWebSocketHandler(manager *session.Manager, validator *schema.Validator, logger *mdwlog.Logger, origins []string, maxSize int64) *WebSocketHandler {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	if maxSize <= 0 {
		maxSize = 1 << 20
	}
	if validator == nil {
		validator = schema.MustNew()
	}

	return &WebSocketHandler{
		manager:   manager,
		validator: validator,
		logger:    logger.WithField("component", "stage-websocket"),
		maxSize:   maxSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(origins) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// WSMessage represents a client message
type WSMessage struct {
	Type    string          `json:"type"`    // "begin", "input", "cancel", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSBeginPayload starts a session
type WSBeginPayload struct {
	Source string `json:"source"`
}

// WSInputPayload supplies a value. SessionID defaults to the session last
// started on the connection.
type WSInputPayload struct {
	SessionID string      `json:"session_id,omitempty"`
	Value     interface{} `json:"value"`
}

// WSResponse represents a server message
type WSResponse struct {
	Type    string      `json:"type"`              // "session", "cancelled", "error", "pong"
	Payload interface{} `json:"payload,omitempty"` // Response-specific payload
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnWithErr("WebSocket upgrade failed", err)
		return
	}
	h.handleConnection(conn)
}

// wsConn is the per-connection state
type wsConn struct {
	conn    *websocket.Conn
	current string
	open    map[string]struct{}
}

// handleConnection handles a single WebSocket connection
func (h *WebSocketHandler) handleConnection(conn *websocket.Conn) {
	c := &wsConn{conn: conn, open: make(map[string]struct{})}
	defer func() {
		h.cancelOpen(c)
		conn.Close()
	}()

	h.logger.Info("WebSocket connection established", mdwlog.Fields{"remote": conn.RemoteAddr().String()})

	conn.SetReadLimit(h.maxSize)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	// Read messages in a loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WarnWithErr("WebSocket read error", err)
			} else {
				h.logger.Debug("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		if err := h.validator.Validate(schema.WSMessage, data); err != nil {
			h.sendErr(c, err)
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(c, mdwerror.CodeValidationFailed, "Invalid message")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		h.dispatch(ctx, c, msg)
		cancel()
	}
}

func (h *WebSocketHandler) dispatch(ctx context.Context, c *wsConn, msg WSMessage) {
	switch msg.Type {
	case "ping":
		h.send(c, WSResponse{Type: "pong"})

	case "begin":
		var payload WSBeginPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			h.sendError(c, mdwerror.CodeValidationFailed, "begin requires a payload with source")
			return
		}
		resp, err := h.manager.BeginSource(ctx, payload.Source)
		if err != nil {
			h.sendErr(c, err)
			return
		}
		if resp.Status == session.StatusSuspended {
			c.current = resp.SessionID
			c.open[resp.SessionID] = struct{}{}
		}
		h.send(c, WSResponse{Type: "session", Payload: resp})

	case "input":
		var payload WSInputPayload
		if err := decodePayload(msg.Payload, &payload); err != nil || payload.Value == nil {
			h.sendError(c, mdwerror.CodeValidationFailed, "input requires a payload with value")
			return
		}
		id := payload.SessionID
		if id == "" {
			id = c.current
		}
		resp, err := h.manager.Resume(ctx, id, inputString(payload.Value))
		if err != nil {
			h.sendErr(c, err)
			return
		}
		if resp.Status != session.StatusSuspended {
			delete(c.open, id)
		}
		h.send(c, WSResponse{Type: "session", Payload: resp})

	case "cancel":
		var payload WSInputPayload
		_ = decodePayload(msg.Payload, &payload)
		id := payload.SessionID
		if id == "" {
			id = c.current
		}
		if err := h.manager.Cancel(ctx, id); err != nil {
			h.sendErr(c, err)
			return
		}
		delete(c.open, id)
		h.send(c, WSResponse{Type: "cancelled", Payload: map[string]string{"session_id": id}})
	}
}

// decodePayload keeps numbers as typed by the client
func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errMissingPayload
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// cancelOpen drops sessions the connection left suspended
func (h *WebSocketHandler) cancelOpen(c *wsConn) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for id := range c.open {
		if err := h.manager.Cancel(ctx, id); err != nil {
			h.logger.Debug("Session already gone on disconnect", mdwlog.Fields{"session_id": id})
		}
	}
}

// send sends a response message via WebSocket
func (h *WebSocketHandler) send(c *wsConn, resp WSResponse) {
	if err := c.conn.WriteJSON(resp); err != nil {
		h.logger.WarnWithErr("WebSocket send error", err)
	}
}

func (h *WebSocketHandler) sendErr(c *wsConn, err error) {
	h.sendError(c, scene.Classify(err), err.Error())
}

// sendError sends an error response via WebSocket
func (h *WebSocketHandler) sendError(c *wsConn, code mdwerror.Code, message string) {
	h.send(c, WSResponse{
		Type:    "error",
		Payload: ErrorBody{Code: code, Message: message},
	})
}
