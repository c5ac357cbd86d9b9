package handler

import (
	"net/http"
	"time"

	"pocket-mini-server/internal/domain"
	"pocket-mini-server/internal/middleware"
	"pocket-mini-server/internal/session"
	"pocket-mini-server/pkg/jwt"
	"pocket-mini-server/pkg/response"

	"github.com/sirupsen/logrus"
)

type SessionHandler struct {
	registry *session.Registry
	secret   string
	ttl      time.Duration
	log      *logrus.Entry
}

func NewSessionHandler(registry *session.Registry, secret string, ttl time.Duration, logger *logrus.Entry) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		secret:   secret,
		ttl:      ttl,
		log:      logger,
	}
}

// Create starts a new session and returns the token that identifies it.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	store := h.registry.Create()

	token, err := jwt.GenerateToken(store.ID(), h.ttl, h.secret)
	if err != nil {
		h.registry.Remove(store.ID())
		h.log.WithError(err).Error("failed to issue session token")
		response.InternalError(w, "Failed to create session")
		return
	}

	response.Created(w, &domain.SessionResponse{
		SessionID: store.ID(),
		Token:     token,
		ExpiresAt: time.Now().Add(h.ttl).UTC(),
		State:     store.Snapshot(),
	})
}

func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	store := middleware.GetStore(r)
	response.Success(w, store.Snapshot())
}
