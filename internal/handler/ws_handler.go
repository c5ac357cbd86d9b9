package handler

import (
	"fmt"
	"net/http"

	"pocket-mini-server/internal/middleware"
	"pocket-mini-server/internal/session"
	"pocket-mini-server/internal/websocket"
	"pocket-mini-server/pkg/jwt"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WebSocketHandler struct {
	manager  *websocket.Manager
	registry *session.Registry
	secret   string
	upgrader ws.Upgrader
	log      *logrus.Entry
}

func NewWebSocketHandler(manager *websocket.Manager, registry *session.Registry, secret string, readBuffer, writeBuffer int, logger *logrus.Entry) *WebSocketHandler {
	return &WebSocketHandler{
		manager:  manager,
		registry: registry,
		secret:   secret,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBuffer,
			WriteBufferSize: writeBuffer,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: logger,
	}
}

// HandleConnection subscribes a client to state events of its session. The
// token comes from the "token" query parameter or the Authorization header.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = middleware.BearerToken(r)
	}

	if token == "" {
		http.Error(w, "missing session token", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.ValidateToken(token, h.secret)
	if err != nil {
		h.log.WithError(err).Debug("websocket token rejected")
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	store := h.registry.GetOrCreate(claims.SessionID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("failed to upgrade connection")
		return
	}

	client := websocket.NewClient(uuid.New().String(), store.ID(), conn, h.manager)
	if !h.manager.Register(client) {
		conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.ClosePolicyViolation, "too many connections"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	if err := sendState(client, store); err != nil {
		h.log.WithError(err).Warn("failed to send initial state")
	}
}

type WebSocketMessageHandler struct {
	registry *session.Registry
}

func NewWebSocketMessageHandler(registry *session.Registry) *WebSocketMessageHandler {
	return &WebSocketMessageHandler{
		registry: registry,
	}
}

func (h *WebSocketMessageHandler) HandleWebSocketMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeStateRequest:
		// A swept session comes back with defaults, as it does over HTTP.
		return sendState(client, h.registry.GetOrCreate(client.SessionID))

	case websocket.TypePing:
		return reply(client, websocket.TypePong, nil)

	default:
		err := fmt.Errorf("unknown message type: %s", msg.Type)
		if replyErr := reply(client, websocket.TypeError, &websocket.ErrorPayload{Error: err.Error()}); replyErr != nil {
			return replyErr
		}
		return err
	}
}

func sendState(client *websocket.Client, store *session.Store) error {
	return reply(client, websocket.TypeStateUpdate, &websocket.StatePayload{State: store.Snapshot()})
}

// reply queues a message for one client without blocking.
func reply(client *websocket.Client, msgType websocket.MessageType, payload interface{}) error {
	msg, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		return err
	}

	return client.Manager.SendToClient(client.ID, msg)
}
